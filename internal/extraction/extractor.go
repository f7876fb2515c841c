package extraction

import (
	"context"
	"log/slog"
	"strings"

	"notehub/internal/config"
	"notehub/internal/logging"
	"notehub/internal/notes"
	"notehub/internal/services"
	"notehub/internal/services/llm"
	"notehub/internal/stage"
	"notehub/internal/textutil"
)

const stageName = "extraction"

// Placeholder output written when no LLM is configured.
const (
	PlaceholderSummary    = "Summary generation skipped (LLM not loaded)."
	PlaceholderActionItem = "Check LLM configuration"
)

// FallbackTitle names an untitled note whose parsed reply carried no title.
const FallbackTitle = "Untitled Note"

// Completer sends a prompt to a language model.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
	Available() bool
}

// Stage is the extraction stage handler.
type Stage struct {
	client    Completer
	available bool
	maxChars  int
	logger    *slog.Logger
}

// NewStage constructs the extraction stage from configuration. A disabled
// or incomplete LLM section yields a stage that writes placeholders.
func NewStage(cfg *config.Config, logger *slog.Logger) *Stage {
	var client Completer
	if cfg.LLM.Enabled {
		client = llm.NewClient(llm.Config{
			APIKey:         cfg.LLM.APIKey,
			BaseURL:        cfg.LLM.BaseURL,
			Model:          cfg.LLM.Model,
			Referer:        cfg.LLM.Referer,
			Title:          cfg.LLM.Title,
			TimeoutSeconds: cfg.LLM.TimeoutSeconds,
		})
	}
	return NewStageWithClient(client, cfg.LLM.MaxTranscriptChars, logger)
}

// NewStageWithClient allows injecting the model client (used in tests).
// Availability is decided once here.
func NewStageWithClient(client Completer, maxChars int, logger *slog.Logger) *Stage {
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logger.With(logging.String(logging.FieldComponent, stageName))
	available := client != nil && client.Available()
	if !available {
		logger.Warn("llm not available; extraction will write placeholder summaries",
			logging.String(logging.FieldEventType, "llm_unavailable"),
			logging.String(logging.FieldErrorHint, "set llm.base_url and llm.model"),
		)
	}
	return &Stage{
		client:    client,
		available: available,
		maxChars:  maxChars,
		logger:    logger,
	}
}

// Available reports whether the stage calls a model.
func (s *Stage) Available() bool {
	return s.available
}

// Execute summarizes the note transcript.
func (s *Stage) Execute(ctx context.Context, note *notes.Note) (notes.Changes, error) {
	logger := logging.WithContext(ctx, s.logger)
	if !s.available {
		logger.Warn("llm not loaded, skipping inference")
		return notes.Changes{
			Summary:     stage.Ptr(PlaceholderSummary),
			ActionItems: []string{PlaceholderActionItem},
		}, nil
	}

	transcript := textutil.ClipRunes(strings.TrimSpace(note.Transcript), s.maxChars)
	if transcript == "" {
		logger.Warn("empty transcript; nothing to summarize")
		return notes.Changes{Summary: stage.Ptr(""), ActionItems: []string{}}, nil
	}
	if clipped := len([]rune(note.Transcript)); s.maxChars > 0 && clipped > s.maxChars {
		logger.Debug("transcript clipped", logging.Int("transcript_chars", clipped), logging.Int("limit", s.maxChars))
	}

	reply, err := s.client.Complete(ctx, BuildPrompt(transcript))
	if err != nil {
		return notes.Changes{}, services.WithHint(
			services.Wrap(services.ErrExternalTool, stageName, "complete", "", err),
			"check that the llm endpoint is reachable and the model is loaded",
		)
	}

	result := ParseResponse(reply)
	if result.Outcome == Degraded {
		logger.Warn("llm reply was not valid JSON; storing raw text as summary",
			logging.String(logging.FieldEventType, "extraction_degraded"),
		)
	}

	changes := notes.Changes{
		Summary:     stage.Ptr(result.Summary),
		ActionItems: result.ActionItems,
	}
	if !note.HasTitle() {
		switch {
		case result.Title != "":
			changes.Title = stage.Ptr(result.Title)
		case result.Outcome == Parsed:
			changes.Title = stage.Ptr(FallbackTitle)
		}
	}
	logger.Info("extraction completed",
		logging.String("outcome", result.Outcome.String()),
		logging.Int("action_items", len(result.ActionItems)),
	)
	return changes, nil
}

// HealthCheck reports degraded when running without a model.
func (s *Stage) HealthCheck(context.Context) stage.Health {
	if !s.available {
		return stage.Degraded(stageName, "llm not configured; writing placeholder summaries")
	}
	return stage.Healthy(stageName)
}
