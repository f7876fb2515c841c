package daemonrun

import (
	"testing"

	"notehub/internal/logging"
	"notehub/internal/testsupport"
)

func TestBuildStagesWithoutTranscription(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	set := BuildStages(cfg, logging.NewNop())
	if set.Transcriber != nil {
		t.Fatal("expected transcription stage to be skipped when disabled")
	}
	if set.Extractor == nil || set.Archiver == nil {
		t.Fatal("expected extraction and archive stages")
	}
}

func TestBuildStagesWithTranscription(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries("uvx"), testsupport.WithTranscription())
	set := BuildStages(cfg, logging.NewNop())
	if set.Transcriber == nil {
		t.Fatal("expected transcription stage when uvx is available")
	}
}

func TestBuildStagesSkipsMissingEngine(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithTranscription())
	t.Setenv("PATH", t.TempDir())
	set := BuildStages(cfg, logging.NewNop())
	if set.Transcriber != nil {
		t.Fatal("expected transcription stage to be skipped without uvx")
	}
}
