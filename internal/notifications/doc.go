// Package notifications pushes note outcomes to ntfy.
//
// The workflow publishes an event when a note is archived or fails. Without
// a configured topic NewService returns a no-op, so callers never check
// whether notifications are enabled.
package notifications
