// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package models defines the persisted record types: pages, cards, and
// their file attachments. Records are stored one JSON object per line,
// distinguished by a "kind" tag field.
package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Kind discriminates the two record types in the flat store.
type Kind string

const (
	KindPage Kind = "page"
	KindCard Kind = "card"
)

// Attachment is a file uploaded for a page or card. Name is the sanitized
// on-disk filename, unique within the owning entity's upload folder.
// URL is derived from the owner's id and Name on every read; the persisted
// value is never authoritative.
type Attachment struct {
	Name string `json:"name"`
	Ext  string `json:"ext"`
	URL  string `json:"url"`
}

// Page is a pre-seeded content record identified by its slug. Pages are
// created once at startup and afterwards only edited, never deleted.
type Page struct {
	Slug        string       `json:"slug"`
	ID          string       `json:"id"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	LinkURL     string       `json:"link_url"`
	Files       []Attachment `json:"files"`
}

// Card is a dynamically created content record identified by a generated
// hex id, grouped on listing views by its Section tag.
type Card struct {
	ID          string       `json:"id"`
	Section     Section      `json:"section"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	LinkURL     string       `json:"link_url"`
	Files       []Attachment `json:"files"`
}

// Record is the tagged variant stored on disk: exactly one of Page or Card
// is non-nil, matching Kind. It flattens to a single JSON object with a
// "kind" field when marshalled.
type Record struct {
	Kind Kind
	Page *Page
	Card *Card
}

// PageRecord wraps a page in its store representation.
func PageRecord(p *Page) Record {
	return Record{Kind: KindPage, Page: p}
}

// CardRecord wraps a card in its store representation.
func CardRecord(c *Card) Record {
	return Record{Kind: KindCard, Card: c}
}

// wireRecord is the flat on-disk shape shared by both kinds.
type wireRecord struct {
	Kind        Kind         `json:"kind"`
	Slug        string       `json:"slug,omitempty"`
	ID          string       `json:"id"`
	Section     Section      `json:"section,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	LinkURL     string       `json:"link_url"`
	Files       []Attachment `json:"files"`
}

// MarshalJSON flattens the record into a single tagged JSON object.
func (r Record) MarshalJSON() ([]byte, error) {
	switch r.Kind {
	case KindPage:
		if r.Page == nil {
			return nil, fmt.Errorf("marshal record: page kind with nil page")
		}
		p := r.Page
		return json.Marshal(wireRecord{
			Kind: KindPage, Slug: p.Slug, ID: p.ID,
			CreatedAt: p.CreatedAt, UpdatedAt: p.UpdatedAt,
			Title: p.Title, Description: p.Description, LinkURL: p.LinkURL,
			Files: p.Files,
		})
	case KindCard:
		if r.Card == nil {
			return nil, fmt.Errorf("marshal record: card kind with nil card")
		}
		c := r.Card
		return json.Marshal(wireRecord{
			Kind: KindCard, ID: c.ID, Section: c.Section,
			CreatedAt: c.CreatedAt, UpdatedAt: c.UpdatedAt,
			Title: c.Title, Description: c.Description, LinkURL: c.LinkURL,
			Files: c.Files,
		})
	default:
		return nil, fmt.Errorf("marshal record: unknown kind %q", r.Kind)
	}
}

// UnmarshalJSON decodes a tagged JSON object into the matching variant.
// An unknown or missing kind is a decode error; the store loader treats
// such lines the same as malformed JSON and skips them.
func (r *Record) UnmarshalJSON(data []byte) error {
	var w wireRecord
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	switch w.Kind {
	case KindPage:
		r.Kind = KindPage
		r.Page = &Page{
			Slug: w.Slug, ID: w.ID,
			CreatedAt: w.CreatedAt, UpdatedAt: w.UpdatedAt,
			Title: w.Title, Description: w.Description, LinkURL: w.LinkURL,
			Files: w.Files,
		}
		r.Card = nil
	case KindCard:
		r.Kind = KindCard
		r.Card = &Card{
			ID: w.ID, Section: w.Section.Normalize(),
			CreatedAt: w.CreatedAt, UpdatedAt: w.UpdatedAt,
			Title: w.Title, Description: w.Description, LinkURL: w.LinkURL,
			Files: w.Files,
		}
		r.Page = nil
	default:
		return fmt.Errorf("unmarshal record: unknown kind %q", w.Kind)
	}
	return nil
}

// Now returns the current UTC time truncated to whole seconds, the
// precision used for created_at and updated_at on disk.
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Second)
}

// AttachmentURL builds the public URL for a stored file from its owning
// entity's id and its on-disk name. Root-relative so that host or base-URL
// changes never invalidate stored records.
func AttachmentURL(entityID, name string) string {
	return "/uploads/" + entityID + "/" + name
}

// ExtOf returns the lowercased suffix after the last dot of name, or ""
// when the name has no extension.
func ExtOf(name string) string {
	i := strings.LastIndex(name, ".")
	if i < 0 || i == len(name)-1 {
		return ""
	}
	return strings.ToLower(name[i+1:])
}

// RefreshAttachments recomputes Ext and URL for every attachment from the
// owning entity's id and the persisted name. Called on every read so that
// stale or host-dependent URLs are never served from storage.
func RefreshAttachments(entityID string, files []Attachment) []Attachment {
	out := make([]Attachment, 0, len(files))
	for _, f := range files {
		if f.Name == "" {
			continue
		}
		out = append(out, Attachment{
			Name: f.Name,
			Ext:  ExtOf(f.Name),
			URL:  AttachmentURL(entityID, f.Name),
		})
	}
	return out
}
