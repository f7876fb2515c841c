package workflow

import (
	"context"
	"log/slog"

	"notehub/internal/logging"
	"notehub/internal/notes"
	"notehub/internal/services"
)

func (m *Manager) componentLogger() *slog.Logger {
	return m.logger.With(logging.String(logging.FieldComponent, "workflow-worker"))
}

// workerLogger tags logs emitted outside a claimed note.
func (m *Manager) workerLogger(w *worker) *slog.Logger {
	return logging.WithContext(withStageContext(context.Background(), w, nil, ""), m.componentLogger())
}

// noteLogger tags logs emitted while a note is claimed.
func (m *Manager) noteLogger(ctx context.Context) *slog.Logger {
	return logging.WithContext(ctx, m.componentLogger())
}

func withStageContext(ctx context.Context, w *worker, note *notes.Note, requestID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if note != nil {
		ctx = services.WithNoteID(ctx, note.ID)
	}
	if w != nil {
		ctx = services.WithStage(ctx, w.stage.name)
		ctx = services.WithWorker(ctx, w.name)
	}
	if requestID != "" {
		ctx = services.WithRequestID(ctx, requestID)
	}
	return ctx
}
