package notes

import "fmt"

var forward = map[Status]Status{
	StatusRaw:         StatusTranscribed,
	StatusTranscribed: StatusExtracted,
	StatusExtracted:   StatusDone,
}

// Next returns the status a successful stage advances to.
func (s Status) Next() (Status, bool) {
	next, ok := forward[s]
	return next, ok
}

// Terminal reports whether no stage will claim notes in this status.
func (s Status) Terminal() bool {
	return s == StatusDone || s == StatusFailed
}

// Rank orders statuses along the pipeline; failed ranks after done.
func (s Status) Rank() int {
	for i, status := range allStatuses {
		if status == s {
			return i
		}
	}
	return -1
}

// ValidateTransition accepts a single forward step or a move from a
// non-terminal status to failed.
func ValidateTransition(from, to Status) error {
	if _, ok := statusSet[from]; !ok {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, from)
	}
	if _, ok := statusSet[to]; !ok {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, to)
	}
	if from.Terminal() {
		return fmt.Errorf("%w: %s is terminal", ErrInvalidTransition, from)
	}
	if to == StatusFailed {
		return nil
	}
	if next, _ := from.Next(); next == to {
		return nil
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
}

// Changes carries the fields a stage writes alongside a status change.
// Nil fields leave the stored value untouched; a non-nil empty ActionItems
// slice writes an empty list.
type Changes struct {
	Transcript  *string
	Summary     *string
	ActionItems []string
	Title       *string
	ArchivePath *string
	ErrorInfo   *ErrorInfo
}

// Validate checks that the transition is legal and that every field written
// belongs to the stage that owns it.
func (c Changes) Validate(from, to Status) error {
	if err := ValidateTransition(from, to); err != nil {
		return err
	}
	if to == StatusFailed {
		if c.ErrorInfo == nil {
			return fmt.Errorf("%w: failed transition requires error info", ErrInvalidTransition)
		}
		if c.Transcript != nil || c.Summary != nil || c.ActionItems != nil || c.Title != nil || c.ArchivePath != nil {
			return fmt.Errorf("%w: failed transition may only write error info", ErrInvalidTransition)
		}
		return nil
	}
	if c.ErrorInfo != nil {
		return fmt.Errorf("%w: error info only allowed on failure", ErrInvalidTransition)
	}
	if c.Transcript != nil && to != StatusTranscribed {
		return fmt.Errorf("%w: transcript written by %s -> %s", ErrInvalidTransition, from, to)
	}
	if (c.Summary != nil || c.ActionItems != nil || c.Title != nil) && to != StatusExtracted {
		return fmt.Errorf("%w: extraction fields written by %s -> %s", ErrInvalidTransition, from, to)
	}
	if c.ArchivePath != nil && to != StatusDone {
		return fmt.Errorf("%w: archive path written by %s -> %s", ErrInvalidTransition, from, to)
	}
	return nil
}

// Apply copies the changes onto a note, mirroring the store's conditional
// update (title only fills a blank title).
func (c Changes) Apply(n *Note, to Status) {
	if n == nil {
		return
	}
	n.Status = to
	if c.Transcript != nil {
		n.Transcript = *c.Transcript
	}
	if c.Summary != nil {
		n.Summary = *c.Summary
	}
	if c.ActionItems != nil {
		n.ActionItems = append([]string(nil), c.ActionItems...)
	}
	if c.Title != nil && !n.HasTitle() {
		n.Title = *c.Title
	}
	if c.ArchivePath != nil {
		n.ArchivePath = *c.ArchivePath
	}
	if c.ErrorInfo != nil {
		info := *c.ErrorInfo
		n.ErrorInfo = &info
	}
	n.ClaimToken = ""
	n.ClaimedAt = nil
}
