package testsupport

import (
	"context"
	"testing"

	"notehub/internal/config"
	"notehub/internal/notes"
	"notehub/internal/notes/sqlitestore"
)

// MustOpenStore opens a SQLite notes store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *sqlitestore.Store {
	t.Helper()

	store, err := sqlitestore.Open(cfg.Storage.SQLitePath)
	if err != nil {
		t.Fatalf("sqlitestore.Open: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

// NewAudioNote creates a raw note for tests pointing at sourcePath.
func NewAudioNote(t testing.TB, store notes.Store, title, sourcePath string) *notes.Note {
	t.Helper()

	note, err := store.CreateAudio(context.Background(), notes.NewAudio{
		Title:          title,
		SourceRef:      sourcePath,
		SourceFilename: "memo.wav",
	})
	if err != nil {
		t.Fatalf("store.CreateAudio: %v", err)
	}
	return note
}

// NewTextNote creates a transcribed note for tests.
func NewTextNote(t testing.TB, store notes.Store, title, content string) *notes.Note {
	t.Helper()

	note, err := store.CreateText(context.Background(), notes.NewText{Title: title, Content: content})
	if err != nil {
		t.Fatalf("store.CreateText: %v", err)
	}
	return note
}

// MustGet reloads a note and fails the test when it is missing.
func MustGet(t testing.TB, store notes.Store, id string) *notes.Note {
	t.Helper()

	note, err := store.GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("store.GetByID(%s): %v", id, err)
	}
	return note
}
