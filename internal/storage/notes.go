package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
)

// NotesKey is the client_state key holding every case note as one JSON object.
const NotesKey = "matchsentinel.caseNotes"

// CaseNotes maps case id to the analyst's free-form note.
type CaseNotes map[string]string

// IDs returns the annotated case ids in sorted order.
func (n CaseNotes) IDs() []string {
	ids := make([]string, 0, len(n))
	for id := range n {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// LoadNotes reads the notes snapshot. A missing or unreadable snapshot yields an
// empty set.
func (s *SQLiteStorage) LoadNotes(ctx context.Context) (CaseNotes, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return loadNotes(ctx, s.db)
}

// SaveNotes replaces the whole snapshot. An empty set removes the row.
func (s *SQLiteStorage) SaveNotes(ctx context.Context, notes CaseNotes) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return saveNotes(ctx, s.db, notes)
}

// SetNote stores the note for caseID. Blank text removes the note.
func (s *SQLiteStorage) SetNote(ctx context.Context, caseID, text string) (CaseNotes, error) {
	if err := validateString(caseID, "caseID"); err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return s.DeleteNote(ctx, caseID)
	}
	return s.updateNotes(ctx, func(notes CaseNotes) {
		notes[caseID] = text
	})
}

// DeleteNote removes the note for caseID, if any.
func (s *SQLiteStorage) DeleteNote(ctx context.Context, caseID string) (CaseNotes, error) {
	if err := validateString(caseID, "caseID"); err != nil {
		return nil, err
	}
	return s.updateNotes(ctx, func(notes CaseNotes) {
		delete(notes, caseID)
	})
}

// updateNotes applies fn to the stored snapshot in one transaction.
func (s *SQLiteStorage) updateNotes(ctx context.Context, fn func(CaseNotes)) (CaseNotes, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	notes, err := loadNotes(ctx, tx)
	if err != nil {
		return nil, err
	}
	fn(notes)
	if err := saveNotes(ctx, tx, notes); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit case notes: %w", err)
	}
	return notes, nil
}

func loadNotes(ctx context.Context, q querier) (CaseNotes, error) {
	raw, found, err := getState(ctx, q, NotesKey)
	if err != nil {
		return nil, err
	}
	notes := make(CaseNotes)
	if !found {
		return notes, nil
	}
	if err := json.Unmarshal([]byte(raw), &notes); err != nil {
		slog.Warn("Discarding unreadable case notes", "error", err)
		return make(CaseNotes), nil
	}
	return notes, nil
}

func saveNotes(ctx context.Context, q querier, notes CaseNotes) error {
	if len(notes) == 0 {
		return deleteState(ctx, q, NotesKey)
	}
	data, err := json.Marshal(notes)
	if err != nil {
		return fmt.Errorf("failed to encode case notes: %w", err)
	}
	return putState(ctx, q, NotesKey, string(data))
}
