package daemon

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"notehub/internal/api"
	"notehub/internal/config"
	"notehub/internal/logging"
	"notehub/internal/notes"
	"notehub/internal/stage"
	"notehub/internal/testsupport"
	"notehub/internal/workflow"
)

func newTestServer(t *testing.T, mutate func(*config.Config)) (*Daemon, *config.Config) {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	if mutate != nil {
		mutate(cfg)
	}
	store := testsupport.MustOpenStore(t, cfg)
	logger := logging.NewNop()
	mgr := workflow.NewManager(cfg, store, logger)
	mgr.ConfigureStages(workflow.StageSet{Archiver: stage.HandlerFunc(func(context.Context, *notes.Note) (notes.Changes, error) {
		return notes.Changes{}, nil
	})})
	d, err := New(cfg, store, logger, mgr)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if d.api == nil {
		t.Fatal("expected api server to be configured")
	}
	return d, cfg
}

func doRequest(t *testing.T, d *Daemon, req *http.Request) (*http.Response, []byte) {
	t.Helper()
	resp, err := d.api.app.Test(req, -1)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, body
}

func decode(t *testing.T, body []byte, v any) {
	t.Helper()
	if err := json.Unmarshal(body, v); err != nil {
		t.Fatalf("decode %s: %v", body, err)
	}
}

func TestAPIHealth(t *testing.T) {
	d, _ := newTestServer(t, nil)
	resp, body := doRequest(t, d, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, body)
	}
	var report api.HealthReport
	decode(t, body, &report)
	if report.Database != "ok" || !report.InboxWritable || !report.VaultWritable {
		t.Fatalf("unexpected health report %+v", report)
	}
	if resp.Header.Get(requestIDHeader) == "" {
		t.Fatal("expected request id header")
	}
}

func TestAPITextNoteRoundTrip(t *testing.T) {
	d, _ := newTestServer(t, nil)

	payload := `{"title":"Errands","content":"Buy milk and call the bank","tags":["home"]}`
	req := httptest.NewRequest(http.MethodPost, "/api/notes/text", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp, body := doRequest(t, d, req)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.StatusCode, body)
	}
	var created api.NoteResponse
	decode(t, body, &created)
	if created.Note.Status != string(notes.StatusTranscribed) || !created.Note.TextInput {
		t.Fatalf("unexpected created note %+v", created.Note)
	}

	resp, body = doRequest(t, d, httptest.NewRequest(http.MethodGet, "/api/notes/"+created.Note.ID, nil))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, body)
	}
	var fetched api.NoteResponse
	decode(t, body, &fetched)
	if fetched.Note.Transcript != "Buy milk and call the bank" || fetched.Note.Title != "Errands" {
		t.Fatalf("unexpected fetched note %+v", fetched.Note)
	}

	resp, body = doRequest(t, d, httptest.NewRequest(http.MethodGet, "/api/notes?offset=0&limit=10", nil))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, body)
	}
	var list api.NoteListResponse
	decode(t, body, &list)
	if len(list.Notes) != 1 || list.Notes[0].ID != created.Note.ID || list.Limit != 10 {
		t.Fatalf("unexpected list %+v", list)
	}
}

func TestAPITextNoteRejectsBlankContent(t *testing.T) {
	d, _ := newTestServer(t, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/notes/text", strings.NewReader(`{"content":"  "}`))
	req.Header.Set("Content-Type", "application/json")
	resp, body := doRequest(t, d, req)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", resp.StatusCode, body)
	}
	var errResp api.ErrorResponse
	decode(t, body, &errResp)
	if errResp.Kind != "validation" {
		t.Fatalf("unexpected error payload %+v", errResp)
	}
}

func TestAPIAudioUpload(t *testing.T) {
	d, cfg := newTestServer(t, nil)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "memo.ogg")
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	_, _ = part.Write([]byte("OggS-fake-audio"))
	_ = mw.WriteField("title", "Voice memo")
	_ = mw.WriteField("tags", "ideas, work")
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/notes/audio", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	resp, body := doRequest(t, d, req)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.StatusCode, body)
	}
	var created api.NoteResponse
	decode(t, body, &created)
	if created.Note.Status != string(notes.StatusRaw) || created.Note.SourceFilename != "memo.ogg" {
		t.Fatalf("unexpected note %+v", created.Note)
	}
	if len(created.Note.Tags) != 2 || created.Note.Tags[0] != "ideas" {
		t.Fatalf("unexpected tags %v", created.Note.Tags)
	}

	entries, err := os.ReadDir(cfg.Paths.InboxDir)
	if err != nil {
		t.Fatalf("read inbox: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != created.Note.ID+".ogg" {
		t.Fatalf("unexpected inbox contents %v", entries)
	}
}

func TestAPIAudioUploadRequiresFile(t *testing.T) {
	d, _ := newTestServer(t, nil)
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	_ = mw.WriteField("title", "no file")
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/notes/audio", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	resp, body := doRequest(t, d, req)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", resp.StatusCode, body)
	}
}

func TestAPIGetNoteErrors(t *testing.T) {
	d, _ := newTestServer(t, nil)

	resp, _ := doRequest(t, d, httptest.NewRequest(http.MethodGet, "/api/notes/not-a-uuid", nil))
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed id, got %d", resp.StatusCode)
	}
	resp, _ = doRequest(t, d, httptest.NewRequest(http.MethodGet, "/api/notes/7b0f3a52-4a53-4f0e-9a43-2f1d3c0e9b11", nil))
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown id, got %d", resp.StatusCode)
	}
}

func TestAPIStatus(t *testing.T) {
	d, _ := newTestServer(t, nil)
	resp, body := doRequest(t, d, httptest.NewRequest(http.MethodGet, "/api/status", nil))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, body)
	}
	var status api.DaemonStatus
	decode(t, body, &status)
	if status.Running {
		t.Fatal("expected daemon not running before Start")
	}
	if !strings.HasPrefix(status.Store, "sqlite:") {
		t.Fatalf("unexpected store %q", status.Store)
	}
	if len(status.Workflow.StageHealth) != 1 || status.Workflow.StageHealth[0].Name != workflow.StageArchive {
		t.Fatalf("unexpected stage health %+v", status.Workflow.StageHealth)
	}
}

func TestAPIBearerAuth(t *testing.T) {
	hash, err := HashToken("s3cret")
	if err != nil {
		t.Fatalf("HashToken: %v", err)
	}
	d, _ := newTestServer(t, func(cfg *config.Config) { cfg.Paths.APITokenHash = hash })

	resp, _ := doRequest(t, d, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected health to be exempt, got %d", resp.StatusCode)
	}

	resp, _ = doRequest(t, d, httptest.NewRequest(http.MethodGet, "/api/notes", nil))
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", resp.StatusCode)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/notes", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	resp, _ = doRequest(t, d, req)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 with wrong token, got %d", resp.StatusCode)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/notes", nil)
	req.Header.Set("Authorization", "Bearer s3cret")
	resp, body := doRequest(t, d, req)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 with token, got %d: %s", resp.StatusCode, body)
	}
}
