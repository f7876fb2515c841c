package workflow

import (
	"notehub/internal/notes"
	"notehub/internal/stage"
)

// StageSet bundles the concrete stage handlers the manager orchestrates.
// A nil handler leaves its input status unclaimed.
type StageSet struct {
	Transcriber stage.Handler
	Extractor   stage.Handler
	Archiver    stage.Handler
}

// Stage names used in logs, status output and persisted diagnostics.
const (
	StageTranscription = "transcription"
	StageExtraction    = "extraction"
	StageArchive       = "archive"
)

type pipelineStage struct {
	name    string
	handler stage.Handler
	from    notes.Status
	to      notes.Status
}

// WorkerState is the position of a stage worker in its claim loop.
type WorkerState string

const (
	WorkerIdle       WorkerState = "idle"
	WorkerClaiming   WorkerState = "claiming"
	WorkerProcessing WorkerState = "processing"
	WorkerCommitting WorkerState = "committing"
	WorkerStopped    WorkerState = "stopped"
)

type iterationOutcome int

const (
	outcomeIdle iterationOutcome = iota
	outcomeAdvanced
	outcomeFailed
	outcomeClaimLost
	outcomeInfraError
)

func (o iterationOutcome) String() string {
	switch o {
	case outcomeIdle:
		return "idle"
	case outcomeAdvanced:
		return "advanced"
	case outcomeFailed:
		return "failed"
	case outcomeClaimLost:
		return "claim_lost"
	case outcomeInfraError:
		return "infra_error"
	default:
		return "unknown"
	}
}

type worker struct {
	name  string
	stage pipelineStage

	state     WorkerState
	noteID    string
	processed int
	failed    int
	lastErr   error
}
