// Package extraction implements the transcribed -> extracted stage.
//
// The stage clips the transcript, asks the configured LLM for a JSON object
// with summary, action_items and title, and parses the reply with
// ParseResponse. Replies that cannot be decoded degrade to a raw-text summary
// instead of failing the note. When no LLM is configured the stage writes a
// placeholder summary so notes still reach the archive.
package extraction
