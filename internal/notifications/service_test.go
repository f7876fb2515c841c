package notifications_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"notehub/internal/config"
	"notehub/internal/notifications"
)

type capturedRequest struct {
	title    string
	tags     string
	priority string
	body     string
}

func newNtfyServer(t *testing.T, status int) (*httptest.Server, *[]capturedRequest) {
	t.Helper()
	var captured []capturedRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("unexpected method: %s", r.Method)
		}
		body, _ := io.ReadAll(r.Body)
		captured = append(captured, capturedRequest{
			title:    r.Header.Get("Title"),
			tags:     r.Header.Get("Tags"),
			priority: r.Header.Get("Priority"),
			body:     string(body),
		})
		w.WriteHeader(status)
	}))
	t.Cleanup(server.Close)
	return server, &captured
}

func TestNewServiceReturnsNoopWhenTopicMissing(t *testing.T) {
	cfg := config.Default()
	svc := notifications.NewService(&cfg)
	if err := svc.Publish(context.Background(), notifications.EventNoteFailed, notifications.Payload{"title": "x"}); err != nil {
		t.Fatalf("expected noop notifier to return nil, got %v", err)
	}
	if err := notifications.NewService(nil).Publish(context.Background(), notifications.EventTest, nil); err != nil {
		t.Fatalf("expected nil config to yield noop, got %v", err)
	}
}

func TestNtfyServiceFormatsPayloads(t *testing.T) {
	tests := []struct {
		name           string
		event          notifications.Event
		payload        notifications.Payload
		expectTitle    string
		expectBody     string
		expectTags     string
		expectPriority string
	}{
		{
			name:  "archived",
			event: notifications.EventNoteArchived,
			payload: notifications.Payload{
				"title":       "Weekly Sync",
				"summary":     "Agreed on the release date.",
				"archivePath": "/vault/2026-10-18-weekly-sync.md",
			},
			expectTitle: "notehub - Note Archived",
			expectBody:  "Archived: Weekly Sync\nAgreed on the release date.\nFile: /vault/2026-10-18-weekly-sync.md",
			expectTags:  "notehub,archived",
		},
		{
			name:  "failed",
			event: notifications.EventNoteFailed,
			payload: notifications.Payload{
				"title": "Voice memo",
				"stage": "transcription",
				"kind":  "external",
				"error": "whisperx exited with status 1",
				"hint":  "check the WhisperX install",
			},
			expectTitle:    "notehub - Note Failed",
			expectBody:     "Failed in transcription: Voice memo\nwhisperx exited with status 1\nHint: check the WhisperX install",
			expectTags:     "notehub,error,external",
			expectPriority: "high",
		},
		{
			name:           "test",
			event:          notifications.EventTest,
			expectTitle:    "notehub - Test",
			expectBody:     "Notification system test",
			expectTags:     "notehub,test",
			expectPriority: "low",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			server, captured := newNtfyServer(t, http.StatusOK)
			cfg := config.Default()
			cfg.Notifications.NtfyTopic = server.URL

			svc := notifications.NewService(&cfg)
			if err := svc.Publish(context.Background(), tc.event, tc.payload); err != nil {
				t.Fatalf("publish: %v", err)
			}
			if len(*captured) != 1 {
				t.Fatalf("expected one request, got %d", len(*captured))
			}
			got := (*captured)[0]
			if got.title != tc.expectTitle {
				t.Fatalf("expected title %q, got %q", tc.expectTitle, got.title)
			}
			if got.body != tc.expectBody {
				t.Fatalf("expected body %q, got %q", tc.expectBody, got.body)
			}
			if got.tags != tc.expectTags {
				t.Fatalf("expected tags %q, got %q", tc.expectTags, got.tags)
			}
			if got.priority != tc.expectPriority {
				t.Fatalf("expected priority %q, got %q", tc.expectPriority, got.priority)
			}
		})
	}
}

func TestNtfyServiceSuppressesArchivedWhenDisabled(t *testing.T) {
	server, captured := newNtfyServer(t, http.StatusOK)
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL
	cfg.Notifications.NotifyArchived = false

	svc := notifications.NewService(&cfg)
	if err := svc.Publish(context.Background(), notifications.EventNoteArchived, notifications.Payload{"title": "x"}); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if err := svc.Publish(context.Background(), notifications.Event("unknown"), nil); err != nil {
		t.Fatalf("publish unknown: %v", err)
	}
	if len(*captured) != 0 {
		t.Fatalf("expected no requests, got %d", len(*captured))
	}
}

func TestNtfyServiceReportsHTTPErrors(t *testing.T) {
	server, _ := newNtfyServer(t, http.StatusTooManyRequests)
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL

	err := notifications.NewService(&cfg).Publish(context.Background(), notifications.EventTest, nil)
	if err == nil || !strings.Contains(err.Error(), "429") {
		t.Fatalf("expected 429 error, got %v", err)
	}
}
