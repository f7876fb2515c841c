package workflow

import (
	"fmt"

	"notehub/internal/notes"
)

// ConfigureStages registers the concrete stage handlers the workflow will run.
func (m *Manager) ConfigureStages(set StageSet) {
	var stages []pipelineStage
	if set.Transcriber != nil {
		stages = append(stages, pipelineStage{
			name:    StageTranscription,
			handler: set.Transcriber,
			from:    notes.StatusRaw,
			to:      notes.StatusTranscribed,
		})
	}
	if set.Extractor != nil {
		stages = append(stages, pipelineStage{
			name:    StageExtraction,
			handler: set.Extractor,
			from:    notes.StatusTranscribed,
			to:      notes.StatusExtracted,
		})
	}
	if set.Archiver != nil {
		stages = append(stages, pipelineStage{
			name:    StageArchive,
			handler: set.Archiver,
			from:    notes.StatusExtracted,
			to:      notes.StatusDone,
		})
	}

	workers := make([]*worker, 0, len(stages)*m.workersPerStage)
	for _, stg := range stages {
		for i := 1; i <= m.workersPerStage; i++ {
			workers = append(workers, &worker{
				name:  fmt.Sprintf("%s-%d", stg.name, i),
				stage: stg,
				state: WorkerIdle,
			})
		}
	}

	m.mu.Lock()
	m.stages = stages
	m.workers = workers
	m.mu.Unlock()
}
