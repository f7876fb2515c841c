// Package api defines wire-format types and converters for the HTTP API and
// the CLI. It translates internal note and workflow models into
// transport-friendly DTOs so clients render them without coupling to
// internal types.
//
// # Key Types
//
// Note: full note view including transcript, summary, action items and the
// failure diagnostic when the note failed.
//
// NoteSummary/NoteListResponse: paged list projection, newest first.
//
// WorkflowStatus: running state, per-worker state, note counts, stage health
// and the last processed note.
//
// DaemonStatus and HealthReport: runtime and readiness payloads.
//
// # Converters
//
// FromNote, FromSummaries, FromStatusSummary, FromDependencies and
// StageHealthSlice (deterministic ordering of the stage health map).
//
// # Design Notes
//
// DTOs use snake_case JSON tags. Statuses are exposed as lowercase strings and
// timestamps use RFC3339 with milliseconds in UTC. Slices are never encoded as
// null.
package api
