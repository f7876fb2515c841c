package extraction_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"notehub/internal/extraction"
	"notehub/internal/notes"
	"notehub/internal/services"
)

type stubCompleter struct {
	reply     string
	err       error
	available bool
	prompts   []string
}

func (s *stubCompleter) Complete(_ context.Context, prompt string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	return s.reply, s.err
}

func (s *stubCompleter) Available() bool { return s.available }

func transcribed(title, transcript string) *notes.Note {
	return &notes.Note{ID: "n1", Title: title, Status: notes.StatusTranscribed, Transcript: transcript}
}

func TestExecuteAppliesParsedReply(t *testing.T) {
	client := &stubCompleter{available: true, reply: `ok {"summary":"S","action_items":["A"],"title":"T"}`}
	stg := extraction.NewStageWithClient(client, 3000, nil)

	changes, err := stg.Execute(context.Background(), transcribed("", "we need to call the bank"))
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if *changes.Summary != "S" || len(changes.ActionItems) != 1 || changes.ActionItems[0] != "A" {
		t.Fatalf("unexpected changes %+v", changes)
	}
	if changes.Title == nil || *changes.Title != "T" {
		t.Fatalf("expected title T, got %v", changes.Title)
	}
	if err := changes.Validate(notes.StatusTranscribed, notes.StatusExtracted); err != nil {
		t.Fatalf("invalid changes: %v", err)
	}
	if !strings.Contains(client.prompts[0], "we need to call the bank") {
		t.Fatalf("prompt missing transcript: %q", client.prompts[0])
	}
}

func TestExecuteKeepsExistingTitle(t *testing.T) {
	client := &stubCompleter{available: true, reply: `{"summary":"S","action_items":[],"title":"T"}`}
	stg := extraction.NewStageWithClient(client, 3000, nil)

	changes, err := stg.Execute(context.Background(), transcribed("Mine", "text"))
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if changes.Title != nil {
		t.Fatalf("title should not be written, got %q", *changes.Title)
	}
}

func TestExecuteFallsBackToUntitledNote(t *testing.T) {
	client := &stubCompleter{available: true, reply: `{"summary":"S","action_items":["A"]}`}
	stg := extraction.NewStageWithClient(client, 3000, nil)

	changes, err := stg.Execute(context.Background(), transcribed("", "text"))
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if changes.Title == nil || *changes.Title != extraction.FallbackTitle {
		t.Fatalf("expected fallback title, got %v", changes.Title)
	}

	changes, err = stg.Execute(context.Background(), transcribed("Mine", "text"))
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if changes.Title != nil {
		t.Fatalf("existing title must be kept, got %q", *changes.Title)
	}
}

func TestExecuteDegradedReplyStillAdvances(t *testing.T) {
	client := &stubCompleter{available: true, reply: "just some prose"}
	stg := extraction.NewStageWithClient(client, 3000, nil)

	changes, err := stg.Execute(context.Background(), transcribed("", "text"))
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if *changes.Summary != "just some prose" || changes.ActionItems == nil || len(changes.ActionItems) != 0 {
		t.Fatalf("unexpected degraded changes %+v", changes)
	}
	if changes.Title != nil {
		t.Fatal("degraded reply should not set a title")
	}
}

func TestExecuteClipsTranscript(t *testing.T) {
	client := &stubCompleter{available: true, reply: `{"summary":"S"}`}
	stg := extraction.NewStageWithClient(client, 10, nil)
	long := strings.Repeat("é", 9) + "0123456789"

	for i := 0; i < 2; i++ {
		if _, err := stg.Execute(context.Background(), transcribed("", long)); err != nil {
			t.Fatalf("Execute: %v", err)
		}
	}
	want := strings.Repeat("é", 9) + "0"
	for _, prompt := range client.prompts {
		if !strings.Contains(prompt, want+"\n") || strings.Contains(prompt, want+"1") {
			t.Fatalf("transcript not clipped to 10 runes: %q", prompt)
		}
	}
	if client.prompts[0] != client.prompts[1] {
		t.Fatal("clipping is not deterministic")
	}
}

func TestExecutePlaceholderWhenUnavailable(t *testing.T) {
	client := &stubCompleter{available: false}
	stg := extraction.NewStageWithClient(client, 3000, nil)

	changes, err := stg.Execute(context.Background(), transcribed("", "text"))
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if *changes.Summary != extraction.PlaceholderSummary {
		t.Fatalf("unexpected summary %q", *changes.Summary)
	}
	if len(changes.ActionItems) != 1 || changes.ActionItems[0] != extraction.PlaceholderActionItem {
		t.Fatalf("unexpected items %v", changes.ActionItems)
	}
	if len(client.prompts) != 0 {
		t.Fatal("unavailable client must not be called")
	}
	if h := stg.HealthCheck(context.Background()); !h.Ready || h.Detail == "" {
		t.Fatalf("expected degraded health, got %+v", h)
	}
}

func TestExecuteAvailabilityDecidedAtConstruction(t *testing.T) {
	client := &stubCompleter{available: true, reply: `{"summary":"S"}`}
	stg := extraction.NewStageWithClient(client, 3000, nil)
	client.available = false

	changes, err := stg.Execute(context.Background(), transcribed("", "text"))
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if *changes.Summary != "S" {
		t.Fatalf("expected model output, got %q", *changes.Summary)
	}
}

func TestExecuteEngineErrorFails(t *testing.T) {
	client := &stubCompleter{available: true, err: errors.New("connection refused")}
	stg := extraction.NewStageWithClient(client, 3000, nil)

	_, err := stg.Execute(context.Background(), transcribed("", "text"))
	if err == nil {
		t.Fatal("expected error")
	}
	if services.KindOf(err) != services.KindExternalTool {
		t.Fatalf("unexpected kind %s", services.KindOf(err))
	}
}

func TestExecuteEmptyTranscriptSkipsModel(t *testing.T) {
	client := &stubCompleter{available: true}
	stg := extraction.NewStageWithClient(client, 3000, nil)

	changes, err := stg.Execute(context.Background(), transcribed("", "   "))
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if *changes.Summary != "" || len(changes.ActionItems) != 0 || len(client.prompts) != 0 {
		t.Fatalf("unexpected result %+v prompts=%d", changes, len(client.prompts))
	}
}
