// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package store provides the typed repositories for pages and cards,
// layered on the flat record store. Every read refreshes attachment URLs
// from the owning entity's id; every mutation runs in a single locked
// read-modify-write pass over the store file.
package store

import (
	"fmt"
	"strings"

	"flatpress/internal/models"
	"flatpress/internal/recordstore"
	"flatpress/internal/sanitize"
)

// Pages is the repository for the fixed, slug-identified page records.
// Pages are seeded at startup and afterwards only edited, never deleted.
type Pages struct {
	db *recordstore.Store
}

// NewPages creates a Pages repository over the given record store.
func NewPages(db *recordstore.Store) *Pages {
	return &Pages{db: db}
}

// normalizeSlug folds a request-supplied slug to its stored form.
func normalizeSlug(slug string) string {
	return strings.ToLower(strings.TrimSpace(slug))
}

// Get returns the page with the given slug, or (nil, nil) when no such
// page exists. Attachment URLs and extensions are recomputed from the
// page id and the persisted file names.
func (s *Pages) Get(slug string) (*models.Page, error) {
	slug = normalizeSlug(slug)
	records, err := s.db.LoadAll()
	if err != nil {
		return nil, fmt.Errorf("get page %q: %w", slug, err)
	}
	for _, r := range records {
		if r.Kind == models.KindPage && r.Page.Slug == slug {
			p := *r.Page
			p.Files = models.RefreshAttachments(p.ID, p.Files)
			return &p, nil
		}
	}
	return nil, nil
}

// List returns all pages in store order with refreshed attachment URLs.
func (s *Pages) List() ([]models.Page, error) {
	records, err := s.db.LoadAll()
	if err != nil {
		return nil, fmt.Errorf("list pages: %w", err)
	}
	var pages []models.Page
	for _, r := range records {
		if r.Kind != models.KindPage {
			continue
		}
		p := *r.Page
		p.Files = models.RefreshAttachments(p.ID, p.Files)
		pages = append(pages, p)
	}
	return pages, nil
}

// Upsert replaces the first page record matching p's slug, or appends a
// new record when none exists, then rewrites the store. UpdatedAt is
// refreshed; CreatedAt is set only when the page is new.
func (s *Pages) Upsert(p *models.Page) error {
	p.Slug = normalizeSlug(p.Slug)
	p.UpdatedAt = models.Now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = p.UpdatedAt
	}

	err := s.db.Mutate(func(records []models.Record) ([]models.Record, bool, error) {
		for i, r := range records {
			if r.Kind == models.KindPage && r.Page.Slug == p.Slug {
				// Creation time is immutable once stored.
				p.CreatedAt = r.Page.CreatedAt
				records[i] = models.PageRecord(p)
				return records, true, nil
			}
		}
		return append(records, models.PageRecord(p)), true, nil
	})
	if err != nil {
		return fmt.Errorf("upsert page %q: %w", p.Slug, err)
	}
	return nil
}

// RemoveFile drops the attachment matching the sanitized form of the
// given name from the page's files list and re-persists the page. Stored
// names are always sanitized, so the raw submitted name is folded the
// same way before matching. Returns false when the name is rejected or
// not present; that is a no-op, not an error.
func (s *Pages) RemoveFile(slug, name string) (bool, error) {
	slug = normalizeSlug(slug)
	safe, ok := sanitize.Filename(name)
	if !ok {
		return false, nil
	}
	name = safe
	removed := false

	err := s.db.Mutate(func(records []models.Record) ([]models.Record, bool, error) {
		for i, r := range records {
			if r.Kind != models.KindPage || r.Page.Slug != slug {
				continue
			}
			files, ok := dropAttachment(r.Page.Files, name)
			if !ok {
				return records, false, nil
			}
			p := *r.Page
			p.Files = files
			p.UpdatedAt = models.Now()
			records[i] = models.PageRecord(&p)
			removed = true
			return records, true, nil
		}
		return records, false, nil
	})
	if err != nil {
		return false, fmt.Errorf("remove file %q from page %q: %w", name, slug, err)
	}
	return removed, nil
}

// dropAttachment filters the attachment with the given name out of files.
// The second return is false when no entry matched.
func dropAttachment(files []models.Attachment, name string) ([]models.Attachment, bool) {
	out := make([]models.Attachment, 0, len(files))
	found := false
	for _, f := range files {
		if f.Name == name {
			found = true
			continue
		}
		out = append(out, f)
	}
	return out, found
}
