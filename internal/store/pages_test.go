package store

import (
	"testing"

	"flatpress/internal/models"
)

func TestPagesSeedAndGet(t *testing.T) {
	db := testDB(t)
	if err := Seed(db, testSeeds); err != nil {
		t.Fatalf("Seed: %v", err)
	}

	pages := NewPages(db)
	p, err := pages.Get("telegram")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if p == nil {
		t.Fatal("expected seeded page, got nil")
	}
	if p.ID != "a1b2c3d4e5" || p.Title != "Join on Telegram" {
		t.Errorf("seeded page: %+v", p)
	}
	if p.CreatedAt.IsZero() || p.UpdatedAt.IsZero() {
		t.Error("seeded page missing timestamps")
	}
}

func TestSeedIsIdempotent(t *testing.T) {
	db := testDB(t)
	if err := Seed(db, testSeeds); err != nil {
		t.Fatalf("Seed: %v", err)
	}

	// Edit a page, then reseed; the edit must survive.
	pages := NewPages(db)
	p, err := pages.Get("course")
	if err != nil || p == nil {
		t.Fatalf("Get: %v, %v", p, err)
	}
	p.Title = "Buy the Course (Updated)"
	if err := pages.Upsert(p); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	if err := Seed(db, testSeeds); err != nil {
		t.Fatalf("reseed: %v", err)
	}

	all, err := pages.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 pages after reseed, got %d", len(all))
	}
	got, err := pages.Get("course")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Title != "Buy the Course (Updated)" {
		t.Errorf("reseed clobbered edit: %q", got.Title)
	}
}

func TestPagesGetNormalizesSlugAndMisses(t *testing.T) {
	db := testDB(t)
	if err := Seed(db, testSeeds); err != nil {
		t.Fatalf("Seed: %v", err)
	}
	pages := NewPages(db)

	p, err := pages.Get("  TELEGRAM ")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if p == nil || p.Slug != "telegram" {
		t.Errorf("case-folded lookup failed: %+v", p)
	}

	missing, err := pages.Get("no-such-page")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if missing != nil {
		t.Errorf("expected nil for unknown slug, got %+v", missing)
	}
}

func TestPagesUpsertRoundTrip(t *testing.T) {
	db := testDB(t)
	if err := Seed(db, testSeeds); err != nil {
		t.Fatalf("Seed: %v", err)
	}
	pages := NewPages(db)

	p, err := pages.Get("analytics")
	if err != nil || p == nil {
		t.Fatalf("Get: %v, %v", p, err)
	}
	created := p.CreatedAt

	p.Title = "Market Analytics"
	p.Description = "Weekly **deep dives**."
	p.LinkURL = "https://example.com/analytics"
	p.Files = append(p.Files, models.Attachment{Name: "chart.png"})
	if err := pages.Upsert(p); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	got, err := pages.Get("analytics")
	if err != nil {
		t.Fatalf("Get after upsert: %v", err)
	}
	if got.Title != "Market Analytics" || got.Description != "Weekly **deep dives**." {
		t.Errorf("fields not persisted: %+v", got)
	}
	if !got.CreatedAt.Equal(created) {
		t.Errorf("created_at changed on edit: %v -> %v", created, got.CreatedAt)
	}
	if got.UpdatedAt.Before(created) {
		t.Errorf("updated_at not refreshed: %v", got.UpdatedAt)
	}
	// URL and ext are derived on read, never trusted from storage.
	if len(got.Files) != 1 {
		t.Fatalf("files: %+v", got.Files)
	}
	if got.Files[0].URL != "/uploads/b2c3d4e5f6/chart.png" || got.Files[0].Ext != "png" {
		t.Errorf("derived attachment fields: %+v", got.Files[0])
	}

	// Only one record per slug after repeated upserts.
	all, err := pages.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("expected 3 pages, got %d", len(all))
	}
}

func TestPagesRemoveFile(t *testing.T) {
	db := testDB(t)
	if err := Seed(db, testSeeds); err != nil {
		t.Fatalf("Seed: %v", err)
	}
	pages := NewPages(db)

	p, _ := pages.Get("telegram")
	p.Files = []models.Attachment{{Name: "a.png"}, {Name: "b.pdf"}}
	if err := pages.Upsert(p); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	ok, err := pages.RemoveFile("telegram", "a.png")
	if err != nil {
		t.Fatalf("RemoveFile: %v", err)
	}
	if !ok {
		t.Fatal("expected removal to report true")
	}

	got, _ := pages.Get("telegram")
	if len(got.Files) != 1 || got.Files[0].Name != "b.pdf" {
		t.Errorf("files after removal: %+v", got.Files)
	}

	// Removing a name that is not in the list is a no-op, not an error.
	ok, err = pages.RemoveFile("telegram", "a.png")
	if err != nil {
		t.Fatalf("RemoveFile repeat: %v", err)
	}
	if ok {
		t.Error("expected false for absent filename")
	}
}

func TestPagesRemoveFileSanitizesName(t *testing.T) {
	db := testDB(t)
	if err := Seed(db, testSeeds); err != nil {
		t.Fatalf("Seed: %v", err)
	}
	pages := NewPages(db)

	// Stored names are always the sanitized form.
	p, _ := pages.Get("analytics")
	p.Files = []models.Attachment{{Name: "a_b.png"}}
	if err := pages.Upsert(p); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	// The raw submitted name folds to the stored one before matching.
	ok, err := pages.RemoveFile("analytics", "a b.png")
	if err != nil {
		t.Fatalf("RemoveFile: %v", err)
	}
	if !ok {
		t.Fatal("expected sanitized name to match stored attachment")
	}
	got, _ := pages.Get("analytics")
	if len(got.Files) != 0 {
		t.Errorf("files after removal: %+v", got.Files)
	}

	// A name that sanitizes to nothing is rejected, not an error.
	ok, err = pages.RemoveFile("analytics", "../../")
	if err != nil {
		t.Fatalf("RemoveFile rejected name: %v", err)
	}
	if ok {
		t.Error("expected false for unsanitizable name")
	}
}
