package api

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// Note describes a note in a transport-friendly format.
type Note struct {
	ID             string     `json:"id"`
	Title          string     `json:"title"`
	Status         string     `json:"status"`
	SourceFilename string     `json:"source_filename,omitempty"`
	TextInput      bool       `json:"text_input"`
	Transcript     string     `json:"transcript,omitempty"`
	Summary        string     `json:"summary,omitempty"`
	ActionItems    []string   `json:"action_items"`
	Tags           []string   `json:"tags"`
	ArchivePath    string     `json:"archive_path,omitempty"`
	Error          *NoteError `json:"error,omitempty"`
	CreatedAt      string     `json:"created_at,omitempty"`
	UpdatedAt      string     `json:"updated_at,omitempty"`
}

// NoteError mirrors the diagnostic stored on failed notes.
type NoteError struct {
	Stage     string `json:"stage"`
	Kind      string `json:"kind"`
	Operation string `json:"operation,omitempty"`
	Message   string `json:"message"`
	Hint      string `json:"hint,omitempty"`
	Detail    string `json:"detail,omitempty"`
	FailedAt  string `json:"failed_at,omitempty"`
}

// NoteSummary is the list projection of a note.
type NoteSummary struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Status    string   `json:"status"`
	CreatedAt string   `json:"created_at,omitempty"`
	Tags      []string `json:"tags"`
}

// NoteListResponse wraps a page of note summaries.
type NoteListResponse struct {
	Notes  []NoteSummary `json:"notes"`
	Offset int           `json:"offset"`
	Limit  int           `json:"limit"`
}

// NoteResponse wraps a single note.
type NoteResponse struct {
	Note Note `json:"note"`
}

// CreateTextRequest is the body of POST /api/notes/text.
type CreateTextRequest struct {
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Tags    []string `json:"tags"`
}

// ErrorResponse is returned for every non-2xx API reply.
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
	Hint  string `json:"hint,omitempty"`
}

// WorkerStatus reports one stage worker.
type WorkerStatus struct {
	Name      string `json:"name"`
	Stage     string `json:"stage"`
	State     string `json:"state"`
	NoteID    string `json:"note_id,omitempty"`
	Processed int    `json:"processed"`
	Failed    int    `json:"failed"`
	LastError string `json:"last_error,omitempty"`
}

// WorkflowStatus summarizes workflow execution state.
type WorkflowStatus struct {
	Running     bool           `json:"running"`
	NoteStats   map[string]int `json:"note_stats"`
	Workers     []WorkerStatus `json:"workers"`
	LastError   string         `json:"last_error,omitempty"`
	LastNote    *NoteSummary   `json:"last_note,omitempty"`
	StageHealth []StageHealth  `json:"stage_health"`
}

// StageHealth mirrors readiness reporting for workflow stages.
type StageHealth struct {
	Name   string `json:"name"`
	Ready  bool   `json:"ready"`
	Detail string `json:"detail,omitempty"`
}

// DependencyStatus captures availability of an external dependency.
type DependencyStatus struct {
	Name        string `json:"name"`
	Command     string `json:"command"`
	Description string `json:"description"`
	Optional    bool   `json:"optional"`
	Available   bool   `json:"available"`
	Detail      string `json:"detail,omitempty"`
}

// DaemonStatus aggregates daemon runtime information for API consumers.
type DaemonStatus struct {
	Running      bool               `json:"running"`
	PID          int                `json:"pid"`
	Store        string             `json:"store"`
	LockFilePath string             `json:"lock_file_path"`
	Workflow     WorkflowStatus     `json:"workflow"`
	Dependencies []DependencyStatus `json:"dependencies"`
}

// HealthCheck is one line of the health report.
type HealthCheck struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail,omitempty"`
}

// HealthReport is returned by GET /api/health.
type HealthReport struct {
	Status        string        `json:"status"`
	Database      string        `json:"database"`
	InboxWritable bool          `json:"inbox_writable"`
	VaultWritable bool          `json:"vault_writable"`
	Checks        []HealthCheck `json:"checks"`
}

// Healthy reports whether every check passed.
func (r HealthReport) Healthy() bool {
	return r.Status == "ok"
}
