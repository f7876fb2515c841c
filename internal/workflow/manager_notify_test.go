package workflow_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"notehub/internal/notes"
	"notehub/internal/notifications"
	"notehub/internal/testsupport"
	"notehub/internal/workflow"
)

type recordingNotifier struct {
	mu     sync.Mutex
	events []notifications.Event
	last   map[notifications.Event]notifications.Payload
	err    error
}

func (r *recordingNotifier) Publish(_ context.Context, event notifications.Event, payload notifications.Payload) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	if r.last == nil {
		r.last = make(map[notifications.Event]notifications.Payload)
	}
	r.last[event] = payload
	return r.err
}

func (r *recordingNotifier) waitFor(t *testing.T, event notifications.Event) notifications.Payload {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		r.mu.Lock()
		payload, ok := r.last[event]
		r.mu.Unlock()
		if ok {
			return payload
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("no %s notification published", event)
	return nil
}

func TestManagerNotifiesArchivedAndFailedNotes(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	good := testsupport.NewTextNote(t, store, "Groceries", "buy milk")
	bad := testsupport.NewAudioNote(t, store, "Broken", "/inbox/broken.wav")

	notifier := &recordingNotifier{err: errors.New("ntfy down")}
	failing := newStubStage(workflow.StageTranscription, func(context.Context, *notes.Note) (notes.Changes, error) {
		return notes.Changes{}, errors.New("decoder crashed")
	})
	startManager(t, cfg, store, workflow.StageSet{
		Transcriber: failing,
		Extractor:   extractorStub(),
		Archiver:    archiverStub(),
	}, workflow.WithNotifier(notifier))

	waitForStatus(t, store, good.ID, notes.StatusDone)
	waitForStatus(t, store, bad.ID, notes.StatusFailed)

	archived := notifier.waitFor(t, notifications.EventNoteArchived)
	if archived["title"] != "Groceries" || archived["archivePath"] != "/vault/"+good.ID+".md" {
		t.Fatalf("unexpected archived payload %v", archived)
	}
	failed := notifier.waitFor(t, notifications.EventNoteFailed)
	if failed["stage"] != workflow.StageTranscription || failed["title"] != "Broken" {
		t.Fatalf("unexpected failure payload %v", failed)
	}

	notifier.mu.Lock()
	defer notifier.mu.Unlock()
	if len(notifier.events) != 2 {
		t.Fatalf("expected only terminal notifications, got %v", notifier.events)
	}
}
