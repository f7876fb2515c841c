package workflow

import (
	"context"

	"notehub/internal/logging"
	"notehub/internal/notes"
	"notehub/internal/notifications"
)

// publishOutcome pushes a notification when note reached a terminal status.
// Delivery failures are logged and never affect the committed note.
func (m *Manager) publishOutcome(ctx context.Context, note *notes.Note) {
	if m.notifier == nil || note == nil {
		return
	}

	var event notifications.Event
	payload := notifications.Payload{"title": note.Title}
	switch note.Status {
	case notes.StatusDone:
		event = notifications.EventNoteArchived
		payload["summary"] = note.Summary
		payload["archivePath"] = note.ArchivePath
	case notes.StatusFailed:
		event = notifications.EventNoteFailed
		if info := note.ErrorInfo; info != nil {
			payload["stage"] = info.Stage
			payload["kind"] = info.Kind
			payload["error"] = info.Message
			payload["hint"] = info.Hint
		}
	default:
		return
	}

	if err := m.notifier.Publish(ctx, event, payload); err != nil {
		m.noteLogger(ctx).Warn("notification failed",
			logging.Error(err),
			logging.String(logging.FieldEventType, "notification_failed"),
			logging.String("notification", string(event)),
			logging.String(logging.FieldErrorHint, "check notifications.ntfy_topic"),
		)
	}
}
