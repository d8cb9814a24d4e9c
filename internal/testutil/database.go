// Package testutil provides shared test fixtures: an in-memory service backend
// and a scratch notes database.
package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/r14dd/matchsentinel/internal/storage"
)

// SetupNotesStore creates a migrated SQLite store in a temp dir, seeded with
// notes. It is closed when the test ends.
//
// Example:
//
//	store := testutil.SetupNotesStore(t, storage.CaseNotes{"c1": "escalated"})
func SetupNotesStore(t *testing.T, notes storage.CaseNotes) *storage.SQLiteStorage {
	t.Helper()

	store, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "console.db"))
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})

	ctx := context.Background()
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	if len(notes) > 0 {
		if err := store.SaveNotes(ctx, notes); err != nil {
			t.Fatalf("failed to seed notes: %v", err)
		}
	}

	return store
}
