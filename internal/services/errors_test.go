package services_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"notehub/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrExternalTool, "transcription", "whisperx", "failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"transcription", "whisperx", "failed", "boom"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapDefaultsToTransient(t *testing.T) {
	err := services.Wrap(nil, "store", "claim", "", errors.New("locked"))
	if !services.IsTransient(err) {
		t.Fatalf("expected nil marker to default to transient, got %v", err)
	}
}

func TestDetailsSurvivesOuterWrapping(t *testing.T) {
	inner := services.Wrap(services.ErrTimeout, "extraction", "infer", "model did not answer", nil)
	inner = services.WithHint(inner, "raise llm.timeout_seconds")
	err := fmt.Errorf("stage run: %w", inner)

	details := services.Details(err)
	if details.Kind != services.KindTimeout {
		t.Fatalf("expected timeout kind, got %q", details.Kind)
	}
	if details.Operation != "infer" {
		t.Fatalf("unexpected operation %q", details.Operation)
	}
	if details.Message != "model did not answer" {
		t.Fatalf("unexpected message %q", details.Message)
	}
	if details.Hint != "raise llm.timeout_seconds" {
		t.Fatalf("unexpected hint %q", details.Hint)
	}
}

func TestDetailsPlainError(t *testing.T) {
	details := services.Details(errors.New("disk full"))
	if details.Kind != services.KindUnknown {
		t.Fatalf("expected unknown kind, got %q", details.Kind)
	}
	if details.Message != "disk full" {
		t.Fatalf("unexpected message %q", details.Message)
	}
}

func TestDetailsFallsBackToCauseMessage(t *testing.T) {
	err := services.Wrap(services.ErrValidation, "archive", "write", "", errors.New("permission denied"))
	if got := services.Details(err).Message; got != "permission denied" {
		t.Fatalf("expected cause message, got %q", got)
	}
}
