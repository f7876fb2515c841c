package workflow

import (
	"context"
	"fmt"
	"strings"

	"notehub/internal/logging"
	"notehub/internal/notes"
	"notehub/internal/services"
)

// errorInfo flattens a stage error into the diagnostic persisted on the note.
func (m *Manager) errorInfo(stageName string, stageErr error) *notes.ErrorInfo {
	details := services.Details(stageErr)
	info := &notes.ErrorInfo{
		Stage:     stageName,
		Kind:      string(details.Kind),
		Operation: details.Operation,
		Message:   classifyStageFailure(stageName, details.Message),
		Hint:      details.Hint,
		FailedAt:  m.now().UTC(),
	}
	if stageErr != nil {
		info.Detail = stageErr.Error()
	}
	return info
}

func classifyStageFailure(stageName, message string) string {
	message = strings.TrimSpace(message)
	if message != "" {
		return message
	}
	if stageName != "" {
		return fmt.Sprintf("%s failed", stageName)
	}
	return "workflow failed"
}

func (m *Manager) logStageFailure(ctx context.Context, info *notes.ErrorInfo, stageErr error) {
	attrs := []logging.Attr{
		logging.String("resolved_status", string(notes.StatusFailed)),
		logging.String("error_message", info.Message),
		logging.String(logging.FieldErrorKind, info.Kind),
		logging.String(logging.FieldErrorOperation, info.Operation),
		logging.String(logging.FieldErrorHint, info.Hint),
		logging.Error(stageErr),
		logging.String(logging.FieldEventType, "stage_failure"),
	}
	m.noteLogger(ctx).Error("stage failed", logging.Args(attrs...)...)
}
