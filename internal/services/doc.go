// Package services defines shared utilities consumed by the workflow stage
// handlers and external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp note IDs, stage and worker names, and
//     correlation identifiers for logging and tracing.
//   - Structured error markers plus the Wrap helper that classify failures
//     into the kinds persisted with failed notes.
//
// Subpackages wrap the external engines: whisperx for transcription and llm
// for chat-completion inference.
package services
