package services_test

import (
	"context"
	"testing"

	"notehub/internal/services"
)

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithNoteID(ctx, "0f8c2a1e-aaaa-bbbb-cccc-000000000000")
	ctx = services.WithStage(ctx, "extraction")
	ctx = services.WithWorker(ctx, "extraction-1")
	ctx = services.WithRequestID(ctx, "req-123")

	if id, ok := services.NoteIDFromContext(ctx); !ok || id != "0f8c2a1e-aaaa-bbbb-cccc-000000000000" {
		t.Fatalf("unexpected note id: %v %v", id, ok)
	}
	if stage, ok := services.StageFromContext(ctx); !ok || stage != "extraction" {
		t.Fatalf("unexpected stage: %v %v", stage, ok)
	}
	if worker, ok := services.WorkerFromContext(ctx); !ok || worker != "extraction-1" {
		t.Fatalf("unexpected worker: %v %v", worker, ok)
	}
	if rid, ok := services.RequestIDFromContext(ctx); !ok || rid != "req-123" {
		t.Fatalf("unexpected request id: %v %v", rid, ok)
	}
}

func TestStageBlankPreservesContext(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithStage(ctx, "")
	if _, ok := services.StageFromContext(ctx); ok {
		t.Fatal("expected no stage value")
	}
}
