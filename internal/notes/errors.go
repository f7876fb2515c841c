package notes

import "errors"

var (
	// ErrNotFound reports a lookup for a note id that does not exist.
	ErrNotFound = errors.New("note not found")
	// ErrClaimLost reports a commit whose claim no longer matches the stored note.
	ErrClaimLost = errors.New("claim lost")
	// ErrInvalidTransition reports a status change or field write outside the pipeline order.
	ErrInvalidTransition = errors.New("invalid status transition")
)
