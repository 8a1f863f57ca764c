package handlers

import (
	"net/url"
	"strings"
	"unicode/utf8"
)

// Validation limits for content form fields.
const (
	maxTitleLen       = 300
	maxDescriptionLen = 100_000
	maxLinkURLLen     = 2_000
)

// validateTitle checks a submitted title and returns the first error found.
func validateTitle(title string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return "Title is required."
	}
	if utf8.RuneCountInString(title) > maxTitleLen {
		return "Title is too long (max 300 characters)."
	}
	return ""
}

// validateDescription checks the Markdown body length.
func validateDescription(description string) string {
	if utf8.RuneCountInString(description) > maxDescriptionLen {
		return "Description is too long (max 100,000 characters)."
	}
	return ""
}

// validateLinkURL checks an optional external link. Empty is fine; a
// non-empty value must be an absolute http or https URL.
func validateLinkURL(link string) string {
	if link == "" {
		return ""
	}
	if utf8.RuneCountInString(link) > maxLinkURLLen {
		return "Link is too long (max 2,000 characters)."
	}
	u, err := url.Parse(link)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "Link must be an absolute http(s) URL."
	}
	return ""
}
