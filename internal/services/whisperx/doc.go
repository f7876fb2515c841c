// Package whisperx runs WhisperX through uvx and loads its JSON segments.
//
// Service.Transcribe writes WhisperX output into a throwaway directory under
// the configured work dir and returns segment texts verbatim; callers decide
// how to join them. Configuration options (model, CUDA, VAD method,
// language) are passed via Config.
package whisperx
