package api

import (
	"slices"
	"time"

	"notehub/internal/deps"
	"notehub/internal/notes"
	"notehub/internal/preflight"
	"notehub/internal/stage"
	"notehub/internal/workflow"
)

// FromNote converts a stored note to its API representation.
func FromNote(note *notes.Note) Note {
	if note == nil {
		return Note{}
	}
	dto := Note{
		ID:          note.ID,
		Title:       note.Title,
		Status:      string(note.Status),
		TextInput:   note.IsTextInput(),
		Transcript:  note.Transcript,
		Summary:     note.Summary,
		ActionItems: nonNil(note.ActionItems),
		Tags:        nonNil(note.Tags),
		ArchivePath: note.ArchivePath,
		CreatedAt:   FormatTime(note.CreatedAt),
		UpdatedAt:   FormatTime(note.UpdatedAt),
	}
	if !dto.TextInput {
		dto.SourceFilename = note.SourceFilename
	}
	if info := note.ErrorInfo; info != nil {
		dto.Error = &NoteError{
			Stage:     info.Stage,
			Kind:      info.Kind,
			Operation: info.Operation,
			Message:   info.Message,
			Hint:      info.Hint,
			Detail:    info.Detail,
			FailedAt:  FormatTime(info.FailedAt),
		}
	}
	return dto
}

// FromSummary converts a list projection.
func FromSummary(summary notes.Summary) NoteSummary {
	return NoteSummary{
		ID:        summary.ID,
		Title:     summary.Title,
		Status:    string(summary.Status),
		CreatedAt: FormatTime(summary.CreatedAt),
		Tags:      nonNil(summary.Tags),
	}
}

// FromSummaries converts a page of list projections.
func FromSummaries(summaries []notes.Summary) []NoteSummary {
	out := make([]NoteSummary, 0, len(summaries))
	for _, s := range summaries {
		out = append(out, FromSummary(s))
	}
	return out
}

// FromStatusSummary converts workflow diagnostics for transport.
func FromStatusSummary(summary workflow.StatusSummary) WorkflowStatus {
	workers := make([]WorkerStatus, 0, len(summary.Workers))
	for _, w := range summary.Workers {
		workers = append(workers, WorkerStatus{
			Name:      w.Name,
			Stage:     w.Stage,
			State:     string(w.State),
			NoteID:    w.NoteID,
			Processed: w.Processed,
			Failed:    w.Failed,
			LastError: w.LastError,
		})
	}

	wf := WorkflowStatus{
		Running:     summary.Running,
		NoteStats:   MergeNoteStats(summary.NoteStats),
		Workers:     workers,
		LastError:   summary.LastError,
		StageHealth: StageHealthSlice(summary.StageHealth),
	}
	if wf.StageHealth == nil {
		wf.StageHealth = []StageHealth{}
	}
	if last := summary.LastNote; last != nil {
		wf.LastNote = &NoteSummary{
			ID:        last.ID,
			Title:     last.Title,
			Status:    string(last.Status),
			CreatedAt: FormatTime(last.CreatedAt),
			Tags:      nonNil(last.Tags),
		}
	}
	return wf
}

// FromDependencies converts binary checks for transport.
func FromDependencies(statuses []deps.Status) []DependencyStatus {
	out := make([]DependencyStatus, 0, len(statuses))
	for _, dep := range statuses {
		out = append(out, DependencyStatus{
			Name:        dep.Name,
			Command:     dep.Command,
			Description: dep.Description,
			Optional:    dep.Optional,
			Available:   dep.Available,
			Detail:      dep.Detail,
		})
	}
	return out
}

// MergeNoteStats produces a string-keyed count for every known status.
func MergeNoteStats(stats map[notes.Status]int) map[string]int {
	out := make(map[string]int, len(notes.AllStatuses()))
	for _, status := range notes.AllStatuses() {
		out[string(status)] = 0
	}
	for status, count := range stats {
		out[string(status)] = count
	}
	return out
}

// StageHealthSlice converts a stage health map into a deterministic slice.
func StageHealthSlice(health map[string]stage.Health) []StageHealth {
	if len(health) == 0 {
		return nil
	}
	names := make([]string, 0, len(health))
	for name := range health {
		names = append(names, name)
	}
	slices.Sort(names)

	out := make([]StageHealth, 0, len(names))
	for _, name := range names {
		h := health[name]
		out = append(out, StageHealth{Name: name, Ready: h.Ready, Detail: h.Detail})
	}
	return out
}

// FormatTime converts a time to RFC3339 or returns empty string.
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(dateTimeFormat)
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

// FromHealthResults builds the health payload from preflight results.
func FromHealthResults(results []preflight.Result) HealthReport {
	report := HealthReport{Status: "ok", Database: "unknown", Checks: []HealthCheck{}}
	for _, r := range results {
		report.Checks = append(report.Checks, HealthCheck{Name: r.Name, Passed: r.Passed, Detail: r.Detail})
		if !r.Passed {
			report.Status = "degraded"
		}
		switch r.Name {
		case preflight.HealthDatabase:
			if r.Passed {
				report.Database = "ok"
			} else {
				report.Database = "error: " + r.Detail
			}
		case preflight.HealthInbox:
			report.InboxWritable = r.Passed
		case preflight.HealthVault:
			report.VaultWritable = r.Passed
		}
	}
	return report
}
