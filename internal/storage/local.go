// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package storage manages uploaded files on local disk. Each entity (page
// or card) owns one folder under the uploads root, created on first save
// and removed wholesale when the entity is deleted. Filenames are
// sanitized and made collision-free at write time; the record store, not
// the filesystem, is the authoritative list of attachments.
package storage

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"flatpress/internal/imaging"
	"flatpress/internal/models"
	"flatpress/internal/sanitize"
)

// thumbsDir is the per-entity subfolder holding generated thumbnails.
// Sanitized upload names never start with a dot, so it cannot collide.
const thumbsDir = ".thumbs"

// Upload is one incoming file payload from a multipart form.
type Upload struct {
	Filename string // client-supplied original name
	Data     io.Reader
}

// Result reports the outcome of a batch save. Saved entries are appended
// to the owning entity's files list by the caller; Rejected holds the
// original names of files refused for a disallowed extension, surfaced to
// the admin as per-file notices.
type Result struct {
	Saved    []models.Attachment
	Rejected []string
}

// Manager stores and removes uploaded files under a root directory.
type Manager struct {
	root string
}

// NewManager creates a Manager rooted at dir, creating it if needed.
func NewManager(dir string) (*Manager, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create uploads dir: %w", err)
	}
	return &Manager{root: dir}, nil
}

// SaveAll persists a batch of uploads into the entity's folder. Per file:
// an empty or unsanitizable name is skipped silently; a disallowed
// extension is recorded in Rejected and processing continues; otherwise
// the file gets a collision-free name and is written to disk. A failure
// to write one file aborts the batch with the files saved so far.
// Image uploads additionally get a best-effort thumbnail.
func (m *Manager) SaveAll(entityID string, uploads []Upload) (Result, error) {
	var res Result

	id, ok := sanitize.ID(entityID)
	if !ok {
		return res, fmt.Errorf("save uploads: invalid entity id %q", entityID)
	}

	folder := filepath.Join(m.root, id)
	for _, up := range uploads {
		if up.Filename == "" {
			continue
		}
		name, ok := sanitize.Filename(up.Filename)
		if !ok {
			continue
		}
		if !sanitize.AllowedExtension(name) {
			res.Rejected = append(res.Rejected, up.Filename)
			continue
		}

		if err := os.MkdirAll(folder, 0o755); err != nil {
			return res, fmt.Errorf("create entity folder: %w", err)
		}

		name = sanitize.UniqueName(folder, name)
		path := filepath.Join(folder, name)
		if err := writeFile(path, up.Data); err != nil {
			return res, fmt.Errorf("save %q: %w", name, err)
		}

		ext := models.ExtOf(name)
		if imaging.Thumbable(ext) {
			m.makeThumb(id, name, path)
		}

		res.Saved = append(res.Saved, models.Attachment{
			Name: name,
			Ext:  ext,
			URL:  models.AttachmentURL(id, name),
		})
	}
	return res, nil
}

// Remove unlinks the entity's file and its thumbnail, best-effort. The
// attachment list in the record store has already been updated by the
// caller; a file that cannot be removed is logged and left behind.
func (m *Manager) Remove(entityID, name string) {
	path, ok := m.FilePath(entityID, name)
	if !ok {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		slog.Warn("could not remove uploaded file", "path", path, "error", err)
	}
	thumb := filepath.Join(filepath.Dir(path), thumbsDir, name+".jpg")
	if err := os.Remove(thumb); err != nil && !os.IsNotExist(err) {
		slog.Warn("could not remove thumbnail", "path", thumb, "error", err)
	}
}

// RemoveAll deletes the entity's whole upload folder, thumbnails included.
// A missing folder is fine; other errors are logged and ignored.
func (m *Manager) RemoveAll(entityID string) {
	id, ok := sanitize.ID(entityID)
	if !ok {
		return
	}
	folder := filepath.Join(m.root, id)
	if err := os.RemoveAll(folder); err != nil {
		slog.Warn("could not remove upload folder", "path", folder, "error", err)
	}
}

// FilePath resolves the on-disk path for an entity's file, sanitizing both
// components. The second return is false when either part is rejected;
// the serving layer answers 404 in that case.
func (m *Manager) FilePath(entityID, name string) (string, bool) {
	id, ok := sanitize.ID(entityID)
	if !ok {
		return "", false
	}
	safe, ok := sanitize.Filename(name)
	if !ok || safe != name {
		// A name that changes under sanitization was never produced by
		// SaveAll, so nothing on disk can match it.
		return "", false
	}
	return filepath.Join(m.root, id, safe), true
}

// ThumbPath resolves the on-disk path of a file's thumbnail. False when
// the components are rejected or no thumbnail exists.
func (m *Manager) ThumbPath(entityID, name string) (string, bool) {
	// FilePath carries the sanitized id; the thumbnail must live in the
	// same folder the file does, not one named after the raw input.
	file, ok := m.FilePath(entityID, name)
	if !ok {
		return "", false
	}
	path := filepath.Join(filepath.Dir(file), thumbsDir, name+".jpg")
	if _, err := os.Stat(path); err != nil {
		return "", false
	}
	return path, true
}

// makeThumb generates the thumbnail for a freshly saved image. Failures
// are logged and never affect the upload itself.
func (m *Manager) makeThumb(entityID, name, path string) {
	f, err := os.Open(path)
	if err != nil {
		slog.Warn("thumbnail source open failed", "path", path, "error", err)
		return
	}
	defer f.Close()

	data, err := imaging.Thumbnail(f, imaging.DefaultMaxWidth)
	if err != nil {
		slog.Warn("thumbnail generation failed", "file", name, "error", err)
		return
	}
	if data == nil {
		return // image already small enough
	}

	dir := filepath.Join(m.root, entityID, thumbsDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		slog.Warn("thumbnail dir create failed", "dir", dir, "error", err)
		return
	}
	if err := os.WriteFile(filepath.Join(dir, name+".jpg"), data, 0o644); err != nil {
		slog.Warn("thumbnail write failed", "file", name, "error", err)
	}
}

// writeFile streams src into a new file at path.
func writeFile(path string, src io.Reader) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, src); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
