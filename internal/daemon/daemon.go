package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"notehub/internal/api"
	"notehub/internal/config"
	"notehub/internal/deps"
	"notehub/internal/ingest"
	"notehub/internal/logging"
	"notehub/internal/notes"
	"notehub/internal/preflight"
	"notehub/internal/storage"
	"notehub/internal/workflow"
)

const healthPingTimeout = 5 * time.Second

// Daemon coordinates the background processing services and enforces single-instance execution.
type Daemon struct {
	cfg      *config.Config
	logger   *slog.Logger
	store    notes.Store
	workflow *workflow.Manager
	ingest   *ingest.Service
	notes    *api.NoteService

	lockPath string
	lock     *flock.Flock

	mu      sync.Mutex
	running atomic.Bool
	cancel  context.CancelFunc
	api     *apiServer
}

// Status represents daemon runtime information.
type Status struct {
	Running      bool
	PID          int
	Workflow     workflow.StatusSummary
	Store        string
	LockFilePath string
	Dependencies []deps.Status
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, store notes.Store, logger *slog.Logger, wf *workflow.Manager) (*Daemon, error) {
	if cfg == nil || store == nil || logger == nil || wf == nil {
		return nil, errors.New("daemon requires config, store, logger, and workflow manager")
	}
	ingestSvc, err := ingest.NewService(cfg, store, logger)
	if err != nil {
		return nil, fmt.Errorf("ingest: %w", err)
	}

	lockPath := cfg.LockPath()
	d := &Daemon{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "daemon"),
		store:    store,
		workflow: wf,
		ingest:   ingestSvc,
		notes:    api.NewNoteService(store),
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}
	apiSrv, err := newAPIServer(cfg, d, logger)
	if err != nil {
		return nil, err
	}
	d.api = apiSrv
	return d, nil
}

// Start acquires the daemon lock, then launches the workflow manager and the API server.
func (d *Daemon) Start(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another notehub daemon instance is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	if err := d.workflow.Start(runCtx); err != nil {
		_ = d.lock.Unlock()
		cancel()
		return fmt.Errorf("start workflow: %w", err)
	}
	if err := d.api.start(runCtx); err != nil {
		d.workflow.Stop()
		_ = d.lock.Unlock()
		cancel()
		return err
	}

	d.cancel = cancel
	d.running.Store(true)
	d.logger.Info("notehub daemon started",
		logging.String("lock", d.lockPath),
		logging.String("store", storage.Describe(d.cfg)),
		logging.String("api", d.APIAddress()),
	)
	return nil
}

// Stop stops background processing and releases the daemon lock.
func (d *Daemon) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.running.Load() {
		return
	}

	d.api.stop()
	d.workflow.Stop()
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("notehub daemon stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// APIAddress returns the bound API address, or "" when the API is disabled or not started.
func (d *Daemon) APIAddress() string {
	return d.api.address()
}

// Status returns the current daemon status.
func (d *Daemon) Status(ctx context.Context) Status {
	return Status{
		Running:      d.running.Load(),
		PID:          os.Getpid(),
		Workflow:     d.workflow.Status(ctx),
		Store:        storage.Describe(d.cfg),
		LockFilePath: d.lockPath,
		Dependencies: deps.CheckBinaries(deps.Requirements(d.cfg)),
	}
}

// Health pings the store and checks that the inbox and vault directories are writable.
func (d *Daemon) Health(ctx context.Context) api.HealthReport {
	pingCtx, cancel := context.WithTimeout(ctx, healthPingTimeout)
	defer cancel()
	return api.FromHealthResults(preflight.RunHealthChecks(pingCtx, d.cfg, d.store))
}

// AddAudio stores an uploaded recording and queues it for transcription.
func (d *Daemon) AddAudio(ctx context.Context, upload ingest.AudioUpload) (*notes.Note, error) {
	return d.ingest.AddAudio(ctx, upload)
}

// AddText queues an inline text note for extraction.
func (d *Daemon) AddText(ctx context.Context, in ingest.TextInput) (*notes.Note, error) {
	return d.ingest.AddText(ctx, in)
}

// ListNotes returns one page of notes, newest first.
func (d *Daemon) ListNotes(ctx context.Context, offset, limit int) (api.NoteListResponse, error) {
	return d.notes.List(ctx, offset, limit)
}

// DescribeNote returns a single note, or nil when it does not exist.
func (d *Daemon) DescribeNote(ctx context.Context, id string) (*api.Note, error) {
	return d.notes.Describe(ctx, id)
}
