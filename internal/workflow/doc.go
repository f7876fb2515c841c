// Package workflow advances notes through the transcription, extraction and
// archive stages.
//
// The Manager runs a fixed pool of workers per registered stage. Each worker
// claims the oldest eligible note under a lease token, renews the lease while
// the stage handler runs, and commits the result with a single conditional
// update guarded by that token. A worker that loses its lease discards its
// result. Handler errors, panics and timeouts move the note to failed with a
// structured ErrorInfo; store errors are retried and never fail a note.
//
// Stages are independent: a stage with no handler leaves its input status
// untouched, so notes queue up until a capable worker is configured.
package workflow
