// Package language normalizes the transcription language setting into the
// ISO 639-1 codes WhisperX expects.
package language
