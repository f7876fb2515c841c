package ingest_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"notehub/internal/ingest"
	"notehub/internal/logging"
	"notehub/internal/notes"
	"notehub/internal/services"
	"notehub/internal/testsupport"
)

type failingStore struct {
	notes.Store
}

func (failingStore) CreateAudio(context.Context, notes.NewAudio) (*notes.Note, error) {
	return nil, errors.New("insert failed")
}

func TestAddAudioWritesInboxFile(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	svc, err := ingest.NewService(cfg, store, logging.NewNop())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	note, err := svc.AddAudio(context.Background(), ingest.AudioUpload{
		Filename: "Standup: monday.M4A",
		Body:     strings.NewReader("audio-bytes"),
		Title:    "  Standup ",
		Tags:     []string{"work", " ", "work"},
	})
	if err != nil {
		t.Fatalf("AddAudio: %v", err)
	}
	if note.Status != notes.StatusRaw {
		t.Fatalf("expected raw, got %s", note.Status)
	}
	want := filepath.Join(cfg.Paths.InboxDir, note.ID+".m4a")
	if note.SourceRef != want {
		t.Fatalf("source ref %q, want %q", note.SourceRef, want)
	}
	data, err := os.ReadFile(want)
	if err != nil {
		t.Fatalf("read inbox file: %v", err)
	}
	if string(data) != "audio-bytes" {
		t.Fatalf("unexpected file content %q", data)
	}
	if note.SourceFilename != "Standup- monday.M4A" {
		t.Fatalf("unexpected source filename %q", note.SourceFilename)
	}
	if note.Title != "Standup" {
		t.Fatalf("unexpected title %q", note.Title)
	}
	if len(note.Tags) != 1 || note.Tags[0] != "work" {
		t.Fatalf("unexpected tags %v", note.Tags)
	}
}

func TestAddAudioDefaultsExtension(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	svc, err := ingest.NewService(cfg, store, logging.NewNop())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	note, err := svc.AddAudio(context.Background(), ingest.AudioUpload{
		Filename: "recording",
		Body:     strings.NewReader("x"),
	})
	if err != nil {
		t.Fatalf("AddAudio: %v", err)
	}
	if filepath.Ext(note.SourceRef) != ".wav" {
		t.Fatalf("expected .wav fallback, got %q", note.SourceRef)
	}
	if note.HasTitle() {
		t.Fatalf("expected no title, got %q", note.Title)
	}
}

func TestAddAudioRejectsEmptyUpload(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	svc, err := ingest.NewService(cfg, store, logging.NewNop())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	_, err = svc.AddAudio(context.Background(), ingest.AudioUpload{Filename: "a.wav", Body: strings.NewReader("")})
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	entries, _ := os.ReadDir(cfg.Paths.InboxDir)
	if len(entries) != 0 {
		t.Fatalf("expected empty inbox, found %d entries", len(entries))
	}
}

func TestAddAudioRemovesFileWhenInsertFails(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	svc, err := ingest.NewService(cfg, failingStore{Store: store}, logging.NewNop())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	if _, err := svc.AddAudio(context.Background(), ingest.AudioUpload{Filename: "a.wav", Body: strings.NewReader("x")}); err == nil {
		t.Fatal("expected insert error")
	}
	entries, err := os.ReadDir(cfg.Paths.InboxDir)
	if err != nil {
		t.Fatalf("read inbox: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected orphaned upload to be removed, found %d entries", len(entries))
	}
}

func TestAddTextSkipsTranscription(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	svc, err := ingest.NewService(cfg, store, logging.NewNop())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	note, err := svc.AddText(context.Background(), ingest.TextInput{Content: "Buy milk", Tags: []string{"home"}})
	if err != nil {
		t.Fatalf("AddText: %v", err)
	}
	if note.Status != notes.StatusTranscribed {
		t.Fatalf("expected transcribed, got %s", note.Status)
	}
	if !note.IsTextInput() {
		t.Fatalf("expected text input source, got %q", note.SourceRef)
	}
	if note.Transcript != "Buy milk" {
		t.Fatalf("unexpected transcript %q", note.Transcript)
	}

	if _, err := svc.AddText(context.Background(), ingest.TextInput{Content: "   "}); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for blank content, got %v", err)
	}
}
