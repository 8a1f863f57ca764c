// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"fmt"
	"log/slog"

	"flatpress/internal/models"
	"flatpress/internal/recordstore"
)

// SeedPage describes one fixed page to guarantee at startup. The slugs,
// ids, and titles are deployment configuration supplied by main, not part
// of the repository contract.
type SeedPage struct {
	Slug    string
	ID      string
	Title   string
	LinkURL string
}

// Seed appends a page record for every seed whose slug is not yet in the
// store. Existing pages are left untouched, so seeding is idempotent and
// admin edits survive restarts. Runs as a single locked pass.
func Seed(db *recordstore.Store, seeds []SeedPage) error {
	err := db.Mutate(func(records []models.Record) ([]models.Record, bool, error) {
		existing := make(map[string]bool)
		for _, r := range records {
			if r.Kind == models.KindPage {
				existing[r.Page.Slug] = true
			}
		}

		changed := false
		for _, seed := range seeds {
			slug := normalizeSlug(seed.Slug)
			if existing[slug] {
				continue
			}
			now := models.Now()
			records = append(records, models.PageRecord(&models.Page{
				Slug:      slug,
				ID:        seed.ID,
				CreatedAt: now,
				UpdatedAt: now,
				Title:     seed.Title,
				LinkURL:   seed.LinkURL,
				Files:     []models.Attachment{},
			}))
			slog.Info("seeded page", "slug", slug, "id", seed.ID)
			changed = true
		}
		return records, changed, nil
	})
	if err != nil {
		return fmt.Errorf("seed pages: %w", err)
	}
	return nil
}
