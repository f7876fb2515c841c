// Package transcription implements the raw -> transcribed stage. It hands
// the note's source recording to a Transcriber, joins the returned segments
// and trims the result into the note transcript.
package transcription
