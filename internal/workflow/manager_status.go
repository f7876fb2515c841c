package workflow

import (
	"context"

	"notehub/internal/logging"
	"notehub/internal/notes"
	"notehub/internal/stage"
)

// WorkerStatus is a point-in-time view of one stage worker.
type WorkerStatus struct {
	Name      string      `json:"name"`
	Stage     string      `json:"stage"`
	State     WorkerState `json:"state"`
	NoteID    string      `json:"note_id,omitempty"`
	Processed int         `json:"processed"`
	Failed    int         `json:"failed"`
	LastError string      `json:"last_error,omitempty"`
}

// StatusSummary represents lightweight workflow diagnostics.
type StatusSummary struct {
	Running     bool
	Workers     []WorkerStatus
	LastError   string
	LastNote    *notes.Note
	NoteStats   map[notes.Status]int
	StageHealth map[string]stage.Health
}

// Status returns the latest workflow information.
func (m *Manager) Status(ctx context.Context) StatusSummary {
	m.mu.RLock()
	running := m.running
	lastErr := m.lastErr
	lastNote := m.lastNote
	stages := append([]pipelineStage(nil), m.stages...)
	workers := make([]WorkerStatus, 0, len(m.workers))
	for _, w := range m.workers {
		ws := WorkerStatus{
			Name:      w.name,
			Stage:     w.stage.name,
			State:     w.state,
			NoteID:    w.noteID,
			Processed: w.processed,
			Failed:    w.failed,
		}
		if w.lastErr != nil {
			ws.LastError = w.lastErr.Error()
		}
		workers = append(workers, ws)
	}
	m.mu.RUnlock()

	stats, err := m.store.Stats(ctx)
	if err != nil {
		m.logger.Warn("failed to read note stats", logging.Error(err))
	}

	health := make(map[string]stage.Health, len(stages))
	for _, stg := range stages {
		health[stg.name] = stg.handler.HealthCheck(ctx)
	}

	summary := StatusSummary{
		Running:     running,
		Workers:     workers,
		NoteStats:   stats,
		StageHealth: health,
	}
	if lastErr != nil {
		summary.LastError = lastErr.Error()
	}
	if lastNote != nil {
		copy := *lastNote
		summary.LastNote = &copy
	}
	return summary
}

// Running reports whether workers are active.
func (m *Manager) Running() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.running
}

func (m *Manager) setWorkerState(w *worker, state WorkerState, noteID string) {
	m.mu.Lock()
	w.state = state
	w.noteID = noteID
	m.mu.Unlock()
}

func (m *Manager) recordWorkerSuccess(w *worker) {
	m.mu.Lock()
	w.processed++
	m.mu.Unlock()
}

func (m *Manager) recordWorkerFailure(w *worker, err error) {
	m.mu.Lock()
	w.processed++
	w.failed++
	w.lastErr = err
	m.lastErr = err
	m.mu.Unlock()
}

func (m *Manager) recordWorkerError(w *worker, err error) {
	m.mu.Lock()
	w.lastErr = err
	m.lastErr = err
	m.mu.Unlock()
}

func (m *Manager) setLastNote(note *notes.Note) {
	m.mu.Lock()
	if note != nil {
		copy := *note
		m.lastNote = &copy
	} else {
		m.lastNote = nil
	}
	m.mu.Unlock()
}
