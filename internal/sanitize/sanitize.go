// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package sanitize validates and normalizes externally supplied identifiers
// and filenames before they reach the record store or the filesystem.
// Every id and filename arriving from a request must pass through here;
// a rejection is treated as "not found" by the serving layer, never as an
// internal error.
package sanitize

import (
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

const (
	// idMinLen and idMaxLen bound entity ids: lowercase hex, 8 to 32 chars.
	idMinLen = 8
	idMaxLen = 32
)

var (
	// hexID matches a full lowercase hexadecimal identifier.
	hexID = regexp.MustCompile(`^[0-9a-f]+$`)
	// unsafeChars matches everything not allowed in a stored filename.
	unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]`)
	// multipleUnderscores collapses runs of underscores left by stripping.
	multipleUnderscores = regexp.MustCompile(`_{2,}`)
)

// AllowedExtensions is the fixed allow-list of upload file extensions:
// common image, video, and office/archive document types.
var AllowedExtensions = map[string]bool{
	// images
	"jpg": true, "jpeg": true, "png": true, "gif": true, "webp": true,
	// videos
	"mp4": true, "webm": true, "mov": true,
	// documents / archives
	"pdf": true, "txt": true, "csv": true, "zip": true, "7z": true, "rar": true,
	"doc": true, "docx": true, "xls": true, "xlsx": true, "ppt": true, "pptx": true,
}

// ID case-folds and validates an entity identifier. Only strings of 8-32
// lowercase hex digits are accepted. Applying ID to its own output is a
// no-op, so double sanitization is always safe.
func ID(raw string) (string, bool) {
	id := strings.ToLower(strings.TrimSpace(raw))
	if len(id) < idMinLen || len(id) > idMaxLen {
		return "", false
	}
	if !hexID.MatchString(id) {
		return "", false
	}
	return id, true
}

// Filename reduces a client-supplied filename to a safe basename: directory
// components from either separator convention are stripped, unsafe
// characters are removed (spaces become underscores), and leading dots and
// dashes are trimmed so the result can never be a hidden file or look like
// a flag. An empty result is a rejection.
func Filename(raw string) (string, bool) {
	name := strings.TrimSpace(raw)

	// Windows clients send backslash-separated paths.
	name = strings.ReplaceAll(name, "\\", "/")
	name = filepath.Base(name)
	if name == "." || name == ".." || name == "/" {
		return "", false
	}

	name = strings.ReplaceAll(name, " ", "_")
	name = unsafeChars.ReplaceAllString(name, "")
	name = multipleUnderscores.ReplaceAllString(name, "_")
	name = strings.TrimLeft(name, ".-")
	if name == "" {
		return "", false
	}
	return name, true
}

// AllowedExtension reports whether the suffix after the last dot of name,
// lowercased, is in the fixed allow-list. Names without a dot are rejected.
func AllowedExtension(name string) bool {
	i := strings.LastIndex(name, ".")
	if i < 0 {
		return false
	}
	return AllowedExtensions[strings.ToLower(name[i+1:])]
}

// UniqueName returns name if it does not yet exist in dir, otherwise the
// first variant with _2, _3, ... inserted before the last extension
// separator (appended when there is no extension) that is free. The live
// directory is consulted on every call; results are never cached, since
// concurrent admin edits may create files between calls.
func UniqueName(dir, name string) string {
	base, ext := name, ""
	if i := strings.LastIndex(name, "."); i >= 0 {
		base, ext = name[:i], name[i:]
	}

	candidate := name
	for i := 2; exists(filepath.Join(dir, candidate)); i++ {
		candidate = base + "_" + strconv.Itoa(i) + ext
	}
	return candidate
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
