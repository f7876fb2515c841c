// Package notestest holds behaviour tests every notes.Store backend must pass.
package notestest

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"notehub/internal/notes"
)

// Factory opens an empty store for one subtest.
type Factory func(t *testing.T) notes.Store

// Run exercises the Store contract against a backend.
func Run(t *testing.T, open Factory) {
	t.Helper()
	tests := []struct {
		name string
		fn   func(*testing.T, notes.Store)
	}{
		{"CreateAndGet", testCreateAndGet},
		{"GetMissing", testGetMissing},
		{"ListNewestFirst", testListNewestFirst},
		{"Stats", testStats},
		{"ClaimNothingEligible", testClaimNothingEligible},
		{"ClaimOldestFirst", testClaimOldestFirst},
		{"ClaimSkipsLiveLease", testClaimSkipsLiveLease},
		{"ClaimRecoversStaleLease", testClaimRecoversStaleLease},
		{"RenewClaim", testRenewClaim},
		{"CommitAdvances", testCommitAdvances},
		{"CommitKeepsExistingTitle", testCommitKeepsExistingTitle},
		{"CommitFailure", testCommitFailure},
		{"CommitRequiresClaim", testCommitRequiresClaim},
		{"CommitRejectsInvalidTransition", testCommitRejectsInvalidTransition},
		{"ConcurrentClaimsAreExclusive", testConcurrentClaimsAreExclusive},
		{"ContendedClaimsStillFindWork", testContendedClaimsStillFindWork},
		{"Ping", testPing},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			store := open(t)
			tc.fn(t, store)
		})
	}
}

func claim(t *testing.T, store notes.Store, from notes.Status) *notes.Note {
	t.Helper()
	note, err := store.Claim(context.Background(), notes.ClaimRequest{
		From:        from,
		Token:       uuid.NewString(),
		StaleBefore: time.Now().Add(-time.Minute),
	})
	if err != nil {
		t.Fatalf("Claim(%s): %v", from, err)
	}
	return note
}

func addAudio(t *testing.T, store notes.Store, title string) *notes.Note {
	t.Helper()
	note, err := store.CreateAudio(context.Background(), notes.NewAudio{
		Title:          title,
		SourceRef:      "/inbox/" + title + ".wav",
		SourceFilename: title + ".wav",
		Tags:           []string{"voice"},
	})
	if err != nil {
		t.Fatalf("CreateAudio: %v", err)
	}
	return note
}

func strPtr(value string) *string { return &value }

func testCreateAndGet(t *testing.T, store notes.Store) {
	ctx := context.Background()
	id := uuid.NewString()
	audio, err := store.CreateAudio(ctx, notes.NewAudio{
		ID:             id,
		SourceRef:      "/inbox/" + id + ".m4a",
		SourceFilename: "memo.m4a",
		Tags:           []string{"work", "ideas"},
	})
	if err != nil {
		t.Fatalf("CreateAudio: %v", err)
	}
	if audio.ID != id || audio.Status != notes.StatusRaw {
		t.Fatalf("unexpected audio note %+v", audio)
	}
	if audio.CreatedAt.IsZero() || audio.UpdatedAt.IsZero() {
		t.Fatal("expected timestamps")
	}

	text, err := store.CreateText(ctx, notes.NewText{Title: "Groceries", Content: "milk and eggs", Tags: []string{"home"}})
	if err != nil {
		t.Fatalf("CreateText: %v", err)
	}
	if text.Status != notes.StatusTranscribed || text.SourceRef != notes.SourceTextInput {
		t.Fatalf("unexpected text note %+v", text)
	}
	if _, err := uuid.Parse(text.ID); err != nil {
		t.Fatalf("expected uuid id, got %q", text.ID)
	}

	got, err := store.GetByID(ctx, text.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Transcript != "milk and eggs" || got.Title != "Groceries" {
		t.Fatalf("unexpected stored note %+v", got)
	}
	if len(got.Tags) != 1 || got.Tags[0] != "home" {
		t.Fatalf("unexpected tags %v", got.Tags)
	}
	if got.ErrorInfo != nil || got.ClaimToken != "" {
		t.Fatalf("unexpected error info or claim on new note: %+v", got)
	}

	gotAudio, err := store.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("GetByID audio: %v", err)
	}
	if gotAudio.SourceFilename != "memo.m4a" || len(gotAudio.Tags) != 2 {
		t.Fatalf("unexpected stored audio note %+v", gotAudio)
	}
}

func testGetMissing(t *testing.T, store notes.Store) {
	_, err := store.GetByID(context.Background(), uuid.NewString())
	if !errors.Is(err, notes.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func testListNewestFirst(t *testing.T, store notes.Store) {
	first := addAudio(t, store, "first")
	second := addAudio(t, store, "second")
	third := addAudio(t, store, "third")

	list, err := store.List(context.Background(), 0, 10)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("expected 3 summaries, got %d", len(list))
	}
	if list[0].ID != third.ID || list[1].ID != second.ID || list[2].ID != first.ID {
		t.Fatalf("unexpected order: %v", []string{list[0].Title, list[1].Title, list[2].Title})
	}
	if list[0].Status != notes.StatusRaw || len(list[0].Tags) != 1 {
		t.Fatalf("unexpected summary %+v", list[0])
	}

	page, err := store.List(context.Background(), 1, 1)
	if err != nil {
		t.Fatalf("List page: %v", err)
	}
	if len(page) != 1 || page[0].ID != second.ID {
		t.Fatalf("unexpected page %+v", page)
	}
}

func testStats(t *testing.T, store notes.Store) {
	addAudio(t, store, "a")
	addAudio(t, store, "b")
	if _, err := store.CreateText(context.Background(), notes.NewText{Content: "hello"}); err != nil {
		t.Fatalf("CreateText: %v", err)
	}
	stats, err := store.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats[notes.StatusRaw] != 2 || stats[notes.StatusTranscribed] != 1 {
		t.Fatalf("unexpected stats %v", stats)
	}
	if stats[notes.StatusDone] != 0 {
		t.Fatalf("unexpected done count %d", stats[notes.StatusDone])
	}
}

func testClaimNothingEligible(t *testing.T, store notes.Store) {
	text, err := store.CreateText(context.Background(), notes.NewText{Content: "x"})
	if err != nil {
		t.Fatalf("CreateText: %v", err)
	}
	if note := claim(t, store, notes.StatusRaw); note != nil {
		t.Fatalf("expected no claim, got %+v", note)
	}
	got, err := store.GetByID(context.Background(), text.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Status != notes.StatusTranscribed || !got.UpdatedAt.Equal(text.UpdatedAt) {
		t.Fatalf("claim with nothing eligible changed a note: %+v", got)
	}
}

func testClaimOldestFirst(t *testing.T, store notes.Store) {
	first := addAudio(t, store, "first")
	addAudio(t, store, "second")
	note := claim(t, store, notes.StatusRaw)
	if note == nil || note.ID != first.ID {
		t.Fatalf("expected oldest note, got %+v", note)
	}
	if note.ClaimToken == "" || note.ClaimedAt == nil {
		t.Fatalf("expected claim stamp, got %+v", note)
	}
}

func testClaimSkipsLiveLease(t *testing.T, store notes.Store) {
	first := addAudio(t, store, "first")
	second := addAudio(t, store, "second")
	a := claim(t, store, notes.StatusRaw)
	b := claim(t, store, notes.StatusRaw)
	if a == nil || b == nil {
		t.Fatal("expected two claims")
	}
	if a.ID != first.ID || b.ID != second.ID {
		t.Fatalf("unexpected claims %s %s", a.ID, b.ID)
	}
	if c := claim(t, store, notes.StatusRaw); c != nil {
		t.Fatalf("expected no third claim, got %+v", c)
	}
}

func testClaimRecoversStaleLease(t *testing.T, store notes.Store) {
	note := addAudio(t, store, "stale")
	ctx := context.Background()
	held, err := store.Claim(ctx, notes.ClaimRequest{From: notes.StatusRaw, Token: "old", StaleBefore: time.Now().Add(-time.Hour)})
	if err != nil || held == nil {
		t.Fatalf("first claim: %v %+v", err, held)
	}
	reclaimed, err := store.Claim(ctx, notes.ClaimRequest{From: notes.StatusRaw, Token: "new", StaleBefore: time.Now().Add(time.Second)})
	if err != nil {
		t.Fatalf("reclaim: %v", err)
	}
	if reclaimed == nil || reclaimed.ID != note.ID || reclaimed.ClaimToken != "new" {
		t.Fatalf("expected stale lease to be reclaimed, got %+v", reclaimed)
	}
	transcript := "late"
	err = store.Commit(ctx, held, notes.StatusTranscribed, notes.Changes{Transcript: &transcript})
	if !errors.Is(err, notes.ErrClaimLost) {
		t.Fatalf("expected old holder to lose claim, got %v", err)
	}
}

func testRenewClaim(t *testing.T, store notes.Store) {
	addAudio(t, store, "renew")
	ctx := context.Background()
	held := claim(t, store, notes.StatusRaw)
	if held == nil {
		t.Fatal("expected claim")
	}
	time.Sleep(5 * time.Millisecond)
	if err := store.RenewClaim(ctx, held.ID, held.ClaimToken); err != nil {
		t.Fatalf("RenewClaim: %v", err)
	}
	got, err := store.GetByID(ctx, held.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.ClaimedAt == nil || !got.ClaimedAt.After(*held.ClaimedAt) {
		t.Fatalf("expected renewed lease, got %v (was %v)", got.ClaimedAt, held.ClaimedAt)
	}
	if err := store.RenewClaim(ctx, held.ID, "other"); !errors.Is(err, notes.ErrClaimLost) {
		t.Fatalf("expected ErrClaimLost for foreign token, got %v", err)
	}
}

func testCommitAdvances(t *testing.T, store notes.Store) {
	ctx := context.Background()
	created := addAudio(t, store, "")
	held := claim(t, store, notes.StatusRaw)
	if err := store.Commit(ctx, held, notes.StatusTranscribed, notes.Changes{Transcript: strPtr("Hello world.")}); err != nil {
		t.Fatalf("Commit transcribed: %v", err)
	}
	held = claim(t, store, notes.StatusTranscribed)
	if held == nil || held.Transcript != "Hello world." {
		t.Fatalf("expected transcribed note, got %+v", held)
	}
	changes := notes.Changes{Summary: strPtr("S"), ActionItems: []string{"A"}, Title: strPtr("T")}
	if err := store.Commit(ctx, held, notes.StatusExtracted, changes); err != nil {
		t.Fatalf("Commit extracted: %v", err)
	}
	held = claim(t, store, notes.StatusExtracted)
	if err := store.Commit(ctx, held, notes.StatusDone, notes.Changes{ArchivePath: strPtr("/vault/x.md")}); err != nil {
		t.Fatalf("Commit done: %v", err)
	}

	got, err := store.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Status != notes.StatusDone || got.Summary != "S" || got.Title != "T" || got.ArchivePath != "/vault/x.md" {
		t.Fatalf("unexpected final note %+v", got)
	}
	if len(got.ActionItems) != 1 || got.ActionItems[0] != "A" {
		t.Fatalf("unexpected action items %v", got.ActionItems)
	}
	if got.ClaimToken != "" || got.ClaimedAt != nil {
		t.Fatalf("expected lease cleared, got %+v", got)
	}
	if !got.UpdatedAt.After(created.UpdatedAt) && !got.UpdatedAt.Equal(created.UpdatedAt) {
		t.Fatalf("updated_at went backwards")
	}
	if c := claim(t, store, notes.StatusDone); c != nil {
		t.Fatal("done notes must not be claimable by a stage")
	}
}

func testCommitKeepsExistingTitle(t *testing.T, store notes.Store) {
	ctx := context.Background()
	created, err := store.CreateText(ctx, notes.NewText{Title: "Mine", Content: "body"})
	if err != nil {
		t.Fatalf("CreateText: %v", err)
	}
	held := claim(t, store, notes.StatusTranscribed)
	changes := notes.Changes{Summary: strPtr("S"), ActionItems: []string{}, Title: strPtr("Generated")}
	if err := store.Commit(ctx, held, notes.StatusExtracted, changes); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	got, err := store.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Title != "Mine" {
		t.Fatalf("title overwritten: %q", got.Title)
	}
	if got.ActionItems == nil || len(got.ActionItems) != 0 {
		t.Fatalf("expected empty action items, got %#v", got.ActionItems)
	}
}

func testCommitFailure(t *testing.T, store notes.Store) {
	ctx := context.Background()
	created := addAudio(t, store, "broken")
	held := claim(t, store, notes.StatusRaw)
	info := &notes.ErrorInfo{
		Stage:    "transcription",
		Kind:     "external_tool",
		Message:  "whisperx exited 1",
		FailedAt: time.Now().UTC(),
	}
	if err := store.Commit(ctx, held, notes.StatusFailed, notes.Changes{ErrorInfo: info}); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}
	got, err := store.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Status != notes.StatusFailed || got.ErrorInfo == nil {
		t.Fatalf("expected failed note with info, got %+v", got)
	}
	if got.ErrorInfo.Stage != "transcription" || got.ErrorInfo.Message != "whisperx exited 1" {
		t.Fatalf("unexpected error info %+v", got.ErrorInfo)
	}
	if got.Transcript != "" {
		t.Fatalf("unexpected transcript on failed note %q", got.Transcript)
	}
	if c := claim(t, store, notes.StatusFailed); c != nil {
		t.Fatal("failed notes are terminal")
	}
}

func testCommitRequiresClaim(t *testing.T, store notes.Store) {
	ctx := context.Background()
	created := addAudio(t, store, "unclaimed")
	transcript := "x"
	err := store.Commit(ctx, created, notes.StatusTranscribed, notes.Changes{Transcript: &transcript})
	if !errors.Is(err, notes.ErrClaimLost) {
		t.Fatalf("expected ErrClaimLost without claim, got %v", err)
	}

	held := claim(t, store, notes.StatusRaw)
	forged := *held
	forged.ClaimToken = "forged"
	if err := store.Commit(ctx, &forged, notes.StatusTranscribed, notes.Changes{Transcript: &transcript}); !errors.Is(err, notes.ErrClaimLost) {
		t.Fatalf("expected ErrClaimLost for forged token, got %v", err)
	}
	if err := store.Commit(ctx, held, notes.StatusTranscribed, notes.Changes{Transcript: &transcript}); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if err := store.Commit(ctx, held, notes.StatusTranscribed, notes.Changes{Transcript: &transcript}); !errors.Is(err, notes.ErrClaimLost) {
		t.Fatalf("expected second commit to lose claim, got %v", err)
	}
}

func testCommitRejectsInvalidTransition(t *testing.T, store notes.Store) {
	addAudio(t, store, "skip")
	held := claim(t, store, notes.StatusRaw)
	err := store.Commit(context.Background(), held, notes.StatusDone, notes.Changes{})
	if !errors.Is(err, notes.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func testConcurrentClaimsAreExclusive(t *testing.T, store notes.Store) {
	const total = 12
	for i := 0; i < total; i++ {
		addAudio(t, store, "n")
	}

	var (
		mu      sync.Mutex
		seen    = make(map[string]int)
		wg      sync.WaitGroup
		errs    = make(chan error, 8)
		workers = 6
	)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				note, err := store.Claim(context.Background(), notes.ClaimRequest{
					From:        notes.StatusRaw,
					Token:       uuid.NewString(),
					StaleBefore: time.Now().Add(-time.Minute),
				})
				if err != nil {
					errs <- err
					return
				}
				if note == nil {
					return
				}
				transcript := "t"
				if err := store.Commit(context.Background(), note, notes.StatusTranscribed, notes.Changes{Transcript: &transcript}); err != nil {
					errs <- err
					return
				}
				mu.Lock()
				seen[note.ID]++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("worker error: %v", err)
	}
	if len(seen) != total {
		t.Fatalf("expected %d committed notes, got %d", total, len(seen))
	}
	for id, count := range seen {
		if count != 1 {
			t.Fatalf("note %s committed %d times", id, count)
		}
	}
}

// Every claimer started together must get a note while eligible notes
// remain, even after losing races to the others.
func testContendedClaimsStillFindWork(t *testing.T, store notes.Store) {
	const workers = 10
	for i := 0; i < workers; i++ {
		addAudio(t, store, "n")
	}

	var (
		start = make(chan struct{})
		wg    sync.WaitGroup
		ids   = make(chan string, workers)
		errs  = make(chan error, workers)
	)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			note, err := store.Claim(context.Background(), notes.ClaimRequest{
				From:        notes.StatusRaw,
				Token:       uuid.NewString(),
				StaleBefore: time.Now().Add(-time.Minute),
			})
			switch {
			case err != nil:
				errs <- err
			case note == nil:
				errs <- errors.New("claim returned nothing while notes were eligible")
			default:
				ids <- note.ID
			}
		}()
	}
	close(start)
	wg.Wait()
	close(errs)
	close(ids)
	for err := range errs {
		t.Fatalf("claimer: %v", err)
	}
	seen := make(map[string]bool)
	for id := range ids {
		if seen[id] {
			t.Fatalf("note %s claimed twice", id)
		}
		seen[id] = true
	}
	if len(seen) != workers {
		t.Fatalf("expected %d claims, got %d", workers, len(seen))
	}
}

func testPing(t *testing.T, store notes.Store) {
	if err := store.Ping(context.Background()); err != nil {
		t.Fatalf("Ping: %v", err)
	}
}
