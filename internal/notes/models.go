package notes

import (
	"strings"
	"time"
)

// Status represents the pipeline position of a note.
type Status string

const (
	StatusRaw         Status = "raw"
	StatusTranscribed Status = "transcribed"
	StatusExtracted   Status = "extracted"
	StatusDone        Status = "done"
	StatusFailed      Status = "failed"
)

// SourceTextInput marks notes created from inline text instead of audio.
const SourceTextInput = "text_input"

var allStatuses = []Status{
	StatusRaw,
	StatusTranscribed,
	StatusExtracted,
	StatusDone,
	StatusFailed,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// ErrorInfo is the structured diagnostic stored on failed notes.
type ErrorInfo struct {
	Stage     string    `json:"stage"`
	Kind      string    `json:"kind"`
	Operation string    `json:"operation,omitempty"`
	Message   string    `json:"message"`
	Hint      string    `json:"hint,omitempty"`
	Detail    string    `json:"detail,omitempty"`
	FailedAt  time.Time `json:"failed_at"`
}

// Note is a single voice or text note moving through the pipeline.
type Note struct {
	ID             string
	Title          string
	Status         Status
	SourceRef      string
	SourceFilename string
	Transcript     string
	Summary        string
	ActionItems    []string
	Tags           []string
	ArchivePath    string
	ErrorInfo      *ErrorInfo
	ClaimToken     string
	ClaimedAt      *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// IsTextInput reports whether the note was created from inline text.
func (n Note) IsTextInput() bool {
	return n.SourceRef == SourceTextInput
}

// HasTitle reports whether the note carries a non-blank title.
func (n Note) HasTitle() bool {
	return strings.TrimSpace(n.Title) != ""
}

// Summary is the list projection of a note.
type Summary struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	Tags      []string  `json:"tags"`
}

// NewAudio describes an uploaded recording awaiting transcription.
type NewAudio struct {
	// ID is optional; callers that name files after the note supply it.
	ID             string
	Title          string
	SourceRef      string
	SourceFilename string
	Tags           []string
}

// NewText describes an inline text note that skips transcription.
type NewText struct {
	Title   string
	Content string
	Tags    []string
}

// ClaimRequest selects the oldest note in From whose lease is absent or
// older than StaleBefore and stamps it with Token.
type ClaimRequest struct {
	From        Status
	Token       string
	StaleBefore time.Time
}
