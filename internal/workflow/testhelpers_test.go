package workflow_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"notehub/internal/config"
	"notehub/internal/notes"
	"notehub/internal/stage"
	"notehub/internal/testsupport"
	"notehub/internal/workflow"
)

type stubStage struct {
	name    string
	execute func(context.Context, *notes.Note) (notes.Changes, error)
	health  stage.Health

	mu    sync.Mutex
	calls map[string]int
}

func newStubStage(name string, execute func(context.Context, *notes.Note) (notes.Changes, error)) *stubStage {
	return &stubStage{
		name:    name,
		execute: execute,
		health:  stage.Healthy(name),
		calls:   make(map[string]int),
	}
}

func (s *stubStage) Execute(ctx context.Context, note *notes.Note) (notes.Changes, error) {
	s.mu.Lock()
	s.calls[note.ID]++
	s.mu.Unlock()
	if s.execute == nil {
		return notes.Changes{}, nil
	}
	return s.execute(ctx, note)
}

func (s *stubStage) HealthCheck(context.Context) stage.Health {
	return s.health
}

func (s *stubStage) callsFor(id string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[id]
}

func transcriberStub(text string) *stubStage {
	return newStubStage(workflow.StageTranscription, func(context.Context, *notes.Note) (notes.Changes, error) {
		return notes.Changes{Transcript: stage.Ptr(text)}, nil
	})
}

func extractorStub() *stubStage {
	return newStubStage(workflow.StageExtraction, func(_ context.Context, note *notes.Note) (notes.Changes, error) {
		return notes.Changes{
			Summary:     stage.Ptr("summary of " + note.Transcript),
			ActionItems: []string{"follow up"},
			Title:       stage.Ptr("Extracted title"),
		}, nil
	})
}

func archiverStub() *stubStage {
	return newStubStage(workflow.StageArchive, func(_ context.Context, note *notes.Note) (notes.Changes, error) {
		return notes.Changes{ArchivePath: stage.Ptr("/vault/" + note.ID + ".md")}, nil
	})
}

func startManager(t *testing.T, cfg *config.Config, store notes.Store, set workflow.StageSet, opts ...workflow.ManagerOption) *workflow.Manager {
	t.Helper()
	mgr := workflow.NewManager(cfg, store, nil, opts...)
	mgr.ConfigureStages(set)
	ctx, cancel := context.WithCancel(context.Background())
	if err := mgr.Start(ctx); err != nil {
		cancel()
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(func() {
		mgr.Stop()
		cancel()
	})
	return mgr
}

func waitForStatus(t *testing.T, store notes.Store, id string, want notes.Status) *notes.Note {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for {
		note := testsupport.MustGet(t, store, id)
		if note.Status == want {
			return note
		}
		if time.Now().After(deadline) {
			t.Fatalf("note %s stuck in %s, want %s", id, note.Status, want)
		}
		time.Sleep(10 * time.Millisecond)
	}
}
