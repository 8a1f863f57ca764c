// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"flatpress/internal/models"
	"flatpress/internal/recordstore"
	"flatpress/internal/sanitize"
)

// Cards is the repository for dynamically created, id-identified card
// records.
type Cards struct {
	db *recordstore.Store
}

// NewCards creates a Cards repository over the given record store.
func NewCards(db *recordstore.Store) *Cards {
	return &Cards{db: db}
}

// NewCardID generates a fresh card identifier: the 32 lowercase hex digits
// of a random UUID, satisfying the 8-32 hex id contract.
func NewCardID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// Get returns the card with the given id, or (nil, nil) when absent.
// Attachment URLs and extensions are recomputed on every read.
func (s *Cards) Get(id string) (*models.Card, error) {
	records, err := s.db.LoadAll()
	if err != nil {
		return nil, fmt.Errorf("get card %q: %w", id, err)
	}
	for _, r := range records {
		if r.Kind == models.KindCard && r.Card.ID == id {
			c := *r.Card
			c.Files = models.RefreshAttachments(c.ID, c.Files)
			return &c, nil
		}
	}
	return nil, nil
}

// List returns all cards sorted by UpdatedAt descending, ties broken by
// store order, with refreshed attachment URLs.
func (s *Cards) List() ([]models.Card, error) {
	records, err := s.db.LoadAll()
	if err != nil {
		return nil, fmt.Errorf("list cards: %w", err)
	}
	var cards []models.Card
	for _, r := range records {
		if r.Kind != models.KindCard {
			continue
		}
		c := *r.Card
		c.Files = models.RefreshAttachments(c.ID, c.Files)
		cards = append(cards, c)
	}
	sort.SliceStable(cards, func(i, j int) bool {
		return cards[i].UpdatedAt.After(cards[j].UpdatedAt)
	})
	return cards, nil
}

// Create appends a brand-new card record. This is the fast path: it writes
// one line instead of rewriting the whole store. The card's section is
// normalized and its timestamps are set here.
func (s *Cards) Create(c *models.Card) error {
	if c.ID == "" {
		c.ID = NewCardID()
	}
	c.Section = c.Section.Normalize()
	c.CreatedAt = models.Now()
	c.UpdatedAt = c.CreatedAt

	if err := s.db.Append(models.CardRecord(c)); err != nil {
		return fmt.Errorf("create card %q: %w", c.ID, err)
	}
	return nil
}

// Upsert replaces the card record matching c's id, or appends when none
// exists, then rewrites the store. UpdatedAt is refreshed; CreatedAt is
// preserved for existing cards.
func (s *Cards) Upsert(c *models.Card) error {
	c.Section = c.Section.Normalize()
	c.UpdatedAt = models.Now()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = c.UpdatedAt
	}

	err := s.db.Mutate(func(records []models.Record) ([]models.Record, bool, error) {
		for i, r := range records {
			if r.Kind == models.KindCard && r.Card.ID == c.ID {
				c.CreatedAt = r.Card.CreatedAt
				records[i] = models.CardRecord(c)
				return records, true, nil
			}
		}
		return append(records, models.CardRecord(c)), true, nil
	})
	if err != nil {
		return fmt.Errorf("upsert card %q: %w", c.ID, err)
	}
	return nil
}

// Delete filters the card record out of the store and rewrites it.
// Returns false when no card with the id exists, so a repeated delete
// reads as "not found" rather than an error. Removing the card's upload
// folder is the caller's job; the record list is the authoritative state.
func (s *Cards) Delete(id string) (bool, error) {
	deleted := false

	err := s.db.Mutate(func(records []models.Record) ([]models.Record, bool, error) {
		out := make([]models.Record, 0, len(records))
		for _, r := range records {
			if r.Kind == models.KindCard && r.Card.ID == id {
				deleted = true
				continue
			}
			out = append(out, r)
		}
		return out, deleted, nil
	})
	if err != nil {
		return false, fmt.Errorf("delete card %q: %w", id, err)
	}
	return deleted, nil
}

// RemoveFile drops the attachment matching the sanitized form of the
// given name from the card's files list. Stored names are always
// sanitized, so the raw submitted name is folded the same way before
// matching. Returns false when the name is rejected or not present.
func (s *Cards) RemoveFile(id, name string) (bool, error) {
	safe, ok := sanitize.Filename(name)
	if !ok {
		return false, nil
	}
	name = safe
	removed := false

	err := s.db.Mutate(func(records []models.Record) ([]models.Record, bool, error) {
		for i, r := range records {
			if r.Kind != models.KindCard || r.Card.ID != id {
				continue
			}
			files, ok := dropAttachment(r.Card.Files, name)
			if !ok {
				return records, false, nil
			}
			c := *r.Card
			c.Files = files
			c.UpdatedAt = models.Now()
			records[i] = models.CardRecord(&c)
			removed = true
			return records, true, nil
		}
		return records, false, nil
	})
	if err != nil {
		return false, fmt.Errorf("remove file %q from card %q: %w", name, id, err)
	}
	return removed, nil
}
