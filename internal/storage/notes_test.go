package storage

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotes_RoundTrip(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	notes, err := store.LoadNotes(ctx)
	require.NoError(t, err)
	assert.Empty(t, notes)

	_, err = store.SetNote(ctx, "c1", "called the customer")
	require.NoError(t, err)
	notes, err = store.SetNote(ctx, "c2", "waiting on KYC docs")
	require.NoError(t, err)
	assert.Equal(t, CaseNotes{"c1": "called the customer", "c2": "waiting on KYC docs"}, notes)

	loaded, err := store.LoadNotes(ctx)
	require.NoError(t, err)
	assert.Equal(t, notes, loaded)
	assert.Equal(t, []string{"c1", "c2"}, loaded.IDs())

	raw, found, err := store.GetState(ctx, NotesKey)
	require.NoError(t, err)
	require.True(t, found)
	assert.JSONEq(t, `{"c1":"called the customer","c2":"waiting on KYC docs"}`, raw)
}

func TestNotes_SetOverwritesAndBlankDeletes(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	_, err := store.SetNote(ctx, "c1", "first")
	require.NoError(t, err)
	notes, err := store.SetNote(ctx, "c1", "second")
	require.NoError(t, err)
	assert.Equal(t, "second", notes["c1"])

	notes, err = store.SetNote(ctx, "c1", "   ")
	require.NoError(t, err)
	assert.NotContains(t, notes, "c1")
}

func TestNotes_Delete(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	require.NoError(t, store.SaveNotes(ctx, CaseNotes{"c1": "a", "c2": "b"}))

	notes, err := store.DeleteNote(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, CaseNotes{"c2": "b"}, notes)

	notes, err = store.DeleteNote(ctx, "missing")
	require.NoError(t, err)
	assert.Equal(t, CaseNotes{"c2": "b"}, notes)

	_, err = store.DeleteNote(ctx, "")
	assert.ErrorIs(t, err, ErrEmptyString)
}

func TestNotes_UnreadableSnapshotStartsEmpty(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	require.NoError(t, store.PutState(ctx, NotesKey, "{not json"))

	notes, err := store.LoadNotes(ctx)
	require.NoError(t, err)
	assert.Empty(t, notes)

	notes, err = store.SetNote(ctx, "c1", "recovered")
	require.NoError(t, err)
	assert.Equal(t, CaseNotes{"c1": "recovered"}, notes)
}

func TestNotes_ConcurrentSetsAreNotLost(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	ids := []string{"c1", "c2", "c3", "c4", "c5", "c6", "c7", "c8"}
	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			_, err := store.SetNote(ctx, id, "note for "+id)
			assert.NoError(t, err)
		}(id)
	}
	wg.Wait()

	notes, err := store.LoadNotes(ctx)
	require.NoError(t, err)
	assert.Equal(t, ids, notes.IDs())
}

func TestNotes_DeletingLastNoteRemovesSnapshot(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	_, err := store.SetNote(ctx, "c1", "only note")
	require.NoError(t, err)

	notes, err := store.DeleteNote(ctx, "c1")
	require.NoError(t, err)
	assert.Empty(t, notes)

	_, found, err := store.GetState(ctx, NotesKey)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestNotes_WritersSharingOneFileDoNotLoseUpdates(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "console.db")
	ctx := context.Background()

	open := func() *SQLiteStorage {
		store, err := NewSQLiteStorage(dbPath)
		require.NoError(t, err)
		t.Cleanup(func() { _ = store.Close() })
		require.NoError(t, store.Migrate(ctx))
		return store
	}
	first, second := open(), open()

	ids := []string{"c1", "c2", "c3", "c4", "c5", "c6", "c7", "c8"}
	var wg sync.WaitGroup
	for i, id := range ids {
		store := first
		if i%2 == 1 {
			store = second
		}
		wg.Add(1)
		go func(store *SQLiteStorage, id string) {
			defer wg.Done()
			_, err := store.SetNote(ctx, id, "note for "+id)
			assert.NoError(t, err)
		}(store, id)
	}
	wg.Wait()

	notes, err := first.LoadNotes(ctx)
	require.NoError(t, err)
	assert.Equal(t, ids, notes.IDs())
}

func TestNotes_CancelledContextLeavesSnapshotUnchanged(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	_, err := store.SetNote(ctx, "c1", "kept")
	require.NoError(t, err)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = store.SetNote(cancelled, "c2", "dropped")
	require.Error(t, err)

	notes, err := store.LoadNotes(ctx)
	require.NoError(t, err)
	assert.Equal(t, CaseNotes{"c1": "kept"}, notes)
}
