// Package ingest is the entry point for new notes.
//
// AddAudio streams an upload into the inbox directory under the note's id and
// inserts a raw note; AddText inserts a transcribed note directly so it skips
// the transcription stage. Both are used by the HTTP API and the CLI.
package ingest
