package transcription

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"

	"notehub/internal/config"
	"notehub/internal/logging"
	"notehub/internal/notes"
	"notehub/internal/services"
	"notehub/internal/services/whisperx"
	"notehub/internal/stage"
)

const stageName = "transcription"

// Transcriber turns an audio file into ordered text segments.
type Transcriber interface {
	Transcribe(ctx context.Context, path string) ([]string, error)
}

// Stage is the transcription stage handler.
type Stage struct {
	engine Transcriber
	model  string
	logger *slog.Logger
}

// NewStage constructs the transcription stage using WhisperX.
func NewStage(cfg *config.Config, logger *slog.Logger) *Stage {
	svc := whisperx.NewService(whisperx.Config{
		Model:       cfg.Transcription.WhisperXModel,
		CUDAEnabled: cfg.Transcription.WhisperXCUDAEnabled,
		VADMethod:   cfg.Transcription.WhisperXVADMethod,
		HFToken:     cfg.Transcription.WhisperXHuggingFace,
		Language:    cfg.Transcription.Language,
	}, WorkDir(cfg))
	return NewStageWithEngine(svc, svc.Model(), logger)
}

// NewStageWithEngine allows injecting the engine (used in tests).
func NewStageWithEngine(engine Transcriber, model string, logger *slog.Logger) *Stage {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Stage{
		engine: engine,
		model:  model,
		logger: logger.With(logging.String(logging.FieldComponent, stageName)),
	}
}

// WorkDir is where WhisperX writes its per-run output.
func WorkDir(cfg *config.Config) string {
	return filepath.Join(cfg.Paths.DataDir, "whisperx")
}

// Execute transcribes the note's source recording.
func (s *Stage) Execute(ctx context.Context, note *notes.Note) (notes.Changes, error) {
	logger := logging.WithContext(ctx, s.logger)
	if err := stage.RequireSourceFile(stageName, note.SourceRef); err != nil {
		return notes.Changes{}, err
	}
	logger.Info("transcription started",
		logging.String("source_file", note.SourceRef),
		logging.String("model", s.model),
	)

	segments, err := s.engine.Transcribe(ctx, note.SourceRef)
	if err != nil {
		return notes.Changes{}, services.WithHint(
			services.Wrap(services.ErrExternalTool, stageName, "transcribe", "", err),
			"check that uvx can download and run whisperx",
		)
	}

	transcript := strings.TrimSpace(strings.Join(segments, ""))
	logger.Info("transcription completed",
		logging.Int("segments", len(segments)),
		logging.Int("transcript_chars", len([]rune(transcript))),
	)
	return notes.Changes{Transcript: &transcript}, nil
}

// Available reports whether the engine can run. Engines without an
// availability probe are assumed ready.
func (s *Stage) Available() bool {
	if s.engine == nil {
		return false
	}
	if avail, ok := s.engine.(interface{ Available() bool }); ok {
		return avail.Available()
	}
	return true
}

// HealthCheck reports whether the engine is installed.
func (s *Stage) HealthCheck(context.Context) stage.Health {
	if s.engine == nil {
		return stage.Unhealthy(stageName, "transcriber not configured")
	}
	if avail, ok := s.engine.(interface{ Available() bool }); ok && !avail.Available() {
		return stage.Unhealthy(stageName, "uvx not found on PATH")
	}
	return stage.Healthy(stageName)
}
