package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"notehub/internal/config"
	"notehub/internal/textutil"
)

const (
	userAgent       = "notehub/1.0"
	maxMessageRunes = 280
)

// Event identifies a notification type.
type Event string

const (
	EventNoteArchived Event = "note_archived"
	EventNoteFailed   Event = "note_failed"
	EventTest         Event = "test"
)

// Payload carries event fields. Keys used: title, archivePath, summary,
// stage, kind, error, hint.
type Payload map[string]string

// Service publishes workflow events.
type Service interface {
	Publish(ctx context.Context, event Event, payload Payload) error
}

// NewService builds an ntfy-backed service, or a no-op when no topic is set.
func NewService(cfg *config.Config) Service {
	if cfg == nil {
		return noopService{}
	}
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &ntfyService{
		endpoint:       topic,
		client:         &http.Client{Timeout: timeout},
		notifyArchived: cfg.Notifications.NotifyArchived,
	}
}

type message struct {
	title    string
	body     string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint       string
	client         *http.Client
	notifyArchived bool
}

func (n *ntfyService) Publish(ctx context.Context, event Event, payload Payload) error {
	msg, ok := n.format(event, payload)
	if !ok {
		return nil
	}
	return n.send(ctx, msg)
}

func (n *ntfyService) format(event Event, payload Payload) (message, bool) {
	title := strings.TrimSpace(payload["title"])
	if title == "" {
		title = "Untitled note"
	}
	switch event {
	case EventNoteArchived:
		if !n.notifyArchived {
			return message{}, false
		}
		body := "Archived: " + title
		if summary := strings.TrimSpace(payload["summary"]); summary != "" {
			body += "\n" + textutil.ClipRunes(summary, maxMessageRunes)
		}
		if path := strings.TrimSpace(payload["archivePath"]); path != "" {
			body += "\nFile: " + path
		}
		return message{
			title: "notehub - Note Archived",
			body:  body,
			tags:  []string{"notehub", "archived"},
		}, true
	case EventNoteFailed:
		stage := strings.TrimSpace(payload["stage"])
		if stage == "" {
			stage = "pipeline"
		}
		var b strings.Builder
		fmt.Fprintf(&b, "Failed in %s: %s", stage, title)
		if errText := strings.TrimSpace(payload["error"]); errText != "" {
			b.WriteString("\n")
			b.WriteString(textutil.ClipRunes(errText, maxMessageRunes))
		}
		if hint := strings.TrimSpace(payload["hint"]); hint != "" {
			b.WriteString("\nHint: ")
			b.WriteString(hint)
		}
		tags := []string{"notehub", "error"}
		if kind := strings.TrimSpace(payload["kind"]); kind != "" {
			tags = append(tags, kind)
		}
		return message{
			title:    "notehub - Note Failed",
			body:     b.String(),
			tags:     tags,
			priority: "high",
		}, true
	case EventTest:
		return message{
			title:    "notehub - Test",
			body:     "Notification system test",
			tags:     []string{"notehub", "test"},
			priority: "low",
		}, true
	default:
		return message{}, false
	}
}

func (n *ntfyService) send(ctx context.Context, msg message) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(msg.body))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	req.Header.Set("Title", msg.title)
	if len(msg.tags) > 0 {
		req.Header.Set("Tags", strings.Join(msg.tags, ","))
	}
	if msg.priority != "" {
		req.Header.Set("Priority", msg.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) Publish(context.Context, Event, Payload) error { return nil }
