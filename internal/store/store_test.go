// store_test.go provides shared test infrastructure for the repository
// tests. Each test gets its own record store in a temp directory.
package store

import (
	"testing"

	"flatpress/internal/recordstore"
)

func testDB(t *testing.T) *recordstore.Store {
	t.Helper()
	db, err := recordstore.Open(t.TempDir())
	if err != nil {
		t.Fatalf("open record store: %v", err)
	}
	return db
}

var testSeeds = []SeedPage{
	{Slug: "telegram", ID: "a1b2c3d4e5", Title: "Join on Telegram", LinkURL: "https://t.me/example"},
	{Slug: "analytics", ID: "b2c3d4e5f6", Title: "Exclusive Analytics"},
	{Slug: "course", ID: "c3d4e5f607", Title: "Buy the Course"},
}
