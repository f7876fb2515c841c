package noteaccess

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"notehub/internal/api"
)

// ErrAPIUnavailable reports that no daemon API is configured or reachable.
var ErrAPIUnavailable = errors.New("notehub API unavailable")

const probeTimeout = 2 * time.Second

// APIError is a non-2xx reply from the daemon API.
type APIError struct {
	StatusCode int
	Message    string
	Kind       string
	Hint       string
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("api returned status %d", e.StatusCode)
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Hint != "" {
		msg += " (" + e.Hint + ")"
	}
	return msg
}

// Client talks to the daemon HTTP API.
type Client struct {
	base  *url.URL
	http  *http.Client
	token string
}

// NewClient builds a client for bind (host:port or URL). It returns nil, nil
// when bind is empty.
func NewClient(bind, token string) (*Client, error) {
	bind = strings.TrimSpace(bind)
	if bind == "" {
		return nil, nil
	}
	if !strings.Contains(bind, "://") {
		bind = "http://" + bind
	}
	base, err := url.Parse(bind)
	if err != nil {
		return nil, err
	}
	base.Path = ""
	base.RawQuery = ""
	base.Fragment = ""

	return &Client{
		base: base,
		// Uploads can be large; callers bound requests with their context.
		http:  &http.Client{},
		token: strings.TrimSpace(token),
	}, nil
}

// Dial builds a client and confirms the daemon answers before returning it.
func Dial(ctx context.Context, bind, token string) (*Client, error) {
	client, err := NewClient(bind, token)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, ErrAPIUnavailable
	}
	probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()
	if _, err := client.Health(probeCtx); err != nil {
		return nil, err
	}
	return client, nil
}

// Health fetches /api/health. A degraded report is not an error.
func (c *Client) Health(ctx context.Context) (api.HealthReport, error) {
	var report api.HealthReport
	err := c.do(ctx, http.MethodGet, "/api/health", nil, "", &report, http.StatusOK, http.StatusServiceUnavailable)
	return report, err
}

// Status fetches /api/status.
func (c *Client) Status(ctx context.Context) (api.DaemonStatus, error) {
	var status api.DaemonStatus
	err := c.do(ctx, http.MethodGet, "/api/status", nil, "", &status, http.StatusOK)
	return status, err
}

// ListNotes fetches one page of notes.
func (c *Client) ListNotes(ctx context.Context, offset, limit int) (api.NoteListResponse, error) {
	values := url.Values{}
	values.Set("offset", strconv.Itoa(offset))
	if limit > 0 {
		values.Set("limit", strconv.Itoa(limit))
	}
	var resp api.NoteListResponse
	err := c.do(ctx, http.MethodGet, "/api/notes?"+values.Encode(), nil, "", &resp, http.StatusOK)
	return resp, err
}

// GetNote fetches a single note. A missing note returns nil, nil.
func (c *Client) GetNote(ctx context.Context, id string) (*api.Note, error) {
	var resp api.NoteResponse
	err := c.do(ctx, http.MethodGet, "/api/notes/"+url.PathEscape(id), nil, "", &resp, http.StatusOK)
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &resp.Note, nil
}

// AddText posts an inline text note.
func (c *Client) AddText(ctx context.Context, req api.CreateTextRequest) (*api.Note, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	var resp api.NoteResponse
	if err := c.do(ctx, http.MethodPost, "/api/notes/text", bytes.NewReader(body), "application/json", &resp, http.StatusCreated); err != nil {
		return nil, err
	}
	return &resp.Note, nil
}

// AddAudio streams a recording to the daemon as a multipart upload.
func (c *Client) AddAudio(ctx context.Context, file AudioFile) (*api.Note, error) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		err := writeAudioForm(mw, file)
		if err == nil {
			err = mw.Close()
		}
		_ = pw.CloseWithError(err)
	}()

	var resp api.NoteResponse
	err := c.do(ctx, http.MethodPost, "/api/notes/audio", pr, mw.FormDataContentType(), &resp, http.StatusCreated)
	_ = pr.Close()
	if err != nil {
		return nil, err
	}
	return &resp.Note, nil
}

func writeAudioForm(mw *multipart.Writer, file AudioFile) error {
	if strings.TrimSpace(file.Title) != "" {
		if err := mw.WriteField("title", file.Title); err != nil {
			return err
		}
	}
	for _, tag := range file.Tags {
		if err := mw.WriteField("tags", tag); err != nil {
			return err
		}
	}
	part, err := mw.CreateFormFile("file", file.Filename)
	if err != nil {
		return err
	}
	_, err = io.Copy(part, file.Body)
	return err
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, out any, accept ...int) error {
	if c == nil {
		return ErrAPIUnavailable
	}
	ref, err := url.Parse(path)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base.ResolveReference(ref).String(), body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	for _, code := range accept {
		if resp.StatusCode == code {
			if out == nil {
				return nil
			}
			if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
				return fmt.Errorf("decode %s response: %w", path, err)
			}
			return nil
		}
	}

	apiErr := &APIError{StatusCode: resp.StatusCode}
	var payload api.ErrorResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&payload); err == nil {
		apiErr.Message = payload.Error
		apiErr.Kind = payload.Kind
		apiErr.Hint = payload.Hint
	}
	return apiErr
}

// IsAPIUnavailable reports whether err means the daemon could not be reached.
func IsAPIUnavailable(err error) bool {
	if err == nil {
		return false
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Err != nil {
		err = urlErr.Err
	}
	var opErr *net.OpError
	return errors.Is(err, ErrAPIUnavailable) || errors.Is(err, context.DeadlineExceeded) || errors.As(err, &opErr)
}
