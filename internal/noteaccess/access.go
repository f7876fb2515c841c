package noteaccess

import (
	"context"
	"fmt"
	"io"

	"notehub/internal/api"
	"notehub/internal/config"
	"notehub/internal/deps"
	"notehub/internal/ingest"
	"notehub/internal/logging"
	"notehub/internal/notes"
	"notehub/internal/preflight"
	"notehub/internal/storage"
)

// AudioFile is a recording to add.
type AudioFile struct {
	Filename string
	Body     io.Reader
	Title    string
	Tags     []string
}

// Access provides note operations regardless of API or direct store backing.
type Access interface {
	Status(ctx context.Context) (api.DaemonStatus, error)
	Health(ctx context.Context) (api.HealthReport, error)
	List(ctx context.Context, offset, limit int) (api.NoteListResponse, error)
	Describe(ctx context.Context, id string) (*api.Note, error)
	AddAudio(ctx context.Context, file AudioFile) (*api.Note, error)
	AddText(ctx context.Context, req api.CreateTextRequest) (*api.Note, error)
	// Live reports whether a running daemon serves the calls.
	Live() bool
}

// NewAPIAccess returns an Access backed by the daemon HTTP API.
func NewAPIAccess(client *Client) Access {
	return &apiAccess{client: client}
}

type apiAccess struct {
	client *Client
}

func (a *apiAccess) Status(ctx context.Context) (api.DaemonStatus, error) {
	return a.client.Status(ctx)
}

func (a *apiAccess) Health(ctx context.Context) (api.HealthReport, error) {
	return a.client.Health(ctx)
}

func (a *apiAccess) List(ctx context.Context, offset, limit int) (api.NoteListResponse, error) {
	return a.client.ListNotes(ctx, offset, limit)
}

func (a *apiAccess) Describe(ctx context.Context, id string) (*api.Note, error) {
	return a.client.GetNote(ctx, id)
}

func (a *apiAccess) AddAudio(ctx context.Context, file AudioFile) (*api.Note, error) {
	return a.client.AddAudio(ctx, file)
}

func (a *apiAccess) AddText(ctx context.Context, req api.CreateTextRequest) (*api.Note, error) {
	return a.client.AddText(ctx, req)
}

func (a *apiAccess) Live() bool { return true }

// NewStoreAccess returns an Access backed by direct store access. Notes added
// this way are picked up the next time the daemon runs.
func NewStoreAccess(cfg *config.Config, store notes.Store) (Access, error) {
	ingestSvc, err := ingest.NewService(cfg, store, logging.NewNop())
	if err != nil {
		return nil, err
	}
	return &storeAccess{
		cfg:     cfg,
		store:   store,
		service: api.NewNoteService(store),
		ingest:  ingestSvc,
	}, nil
}

type storeAccess struct {
	cfg     *config.Config
	store   notes.Store
	service *api.NoteService
	ingest  *ingest.Service
}

func (a *storeAccess) Status(ctx context.Context) (api.DaemonStatus, error) {
	stats, err := a.service.Stats(ctx)
	if err != nil {
		return api.DaemonStatus{}, fmt.Errorf("note stats: %w", err)
	}
	return api.DaemonStatus{
		Running:      false,
		Store:        storage.Describe(a.cfg),
		LockFilePath: a.cfg.LockPath(),
		Workflow: api.WorkflowStatus{
			NoteStats:   stats,
			Workers:     []api.WorkerStatus{},
			StageHealth: []api.StageHealth{},
		},
		Dependencies: api.FromDependencies(deps.CheckBinaries(deps.Requirements(a.cfg))),
	}, nil
}

func (a *storeAccess) Health(ctx context.Context) (api.HealthReport, error) {
	return api.FromHealthResults(preflight.RunHealthChecks(ctx, a.cfg, a.store)), nil
}

func (a *storeAccess) List(ctx context.Context, offset, limit int) (api.NoteListResponse, error) {
	return a.service.List(ctx, offset, limit)
}

func (a *storeAccess) Describe(ctx context.Context, id string) (*api.Note, error) {
	return a.service.Describe(ctx, id)
}

func (a *storeAccess) AddAudio(ctx context.Context, file AudioFile) (*api.Note, error) {
	note, err := a.ingest.AddAudio(ctx, ingest.AudioUpload{
		Filename: file.Filename,
		Body:     file.Body,
		Title:    file.Title,
		Tags:     file.Tags,
	})
	if err != nil {
		return nil, err
	}
	dto := api.FromNote(note)
	return &dto, nil
}

func (a *storeAccess) AddText(ctx context.Context, req api.CreateTextRequest) (*api.Note, error) {
	note, err := a.ingest.AddText(ctx, ingest.TextInput{Title: req.Title, Content: req.Content, Tags: req.Tags})
	if err != nil {
		return nil, err
	}
	dto := api.FromNote(note)
	return &dto, nil
}

func (a *storeAccess) Live() bool { return false }
