package workflow

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"notehub/internal/config"
	"notehub/internal/logging"
	"notehub/internal/notes"
	"notehub/internal/notifications"
)

const (
	minIdleSleep      = 10 * time.Millisecond
	commitRetryWindow = 30 * time.Second
)

// Manager runs one claim/process/commit loop per stage worker against the
// shared note store.
type Manager struct {
	cfg    *config.Config
	store  notes.Store
	logger *slog.Logger

	pollInterval       time.Duration
	errorRetryInterval time.Duration
	stageTimeout       time.Duration
	heartbeatTimeout   time.Duration
	workersPerStage    int
	newToken           func() string
	now                func() time.Time

	heartbeat *HeartbeatMonitor
	notifier  notifications.Service

	mu       sync.RWMutex
	stages   []pipelineStage
	workers  []*worker
	running  bool
	cancel   func()
	stopCh   chan struct{}
	wg       sync.WaitGroup
	lastErr  error
	lastNote *notes.Note
}

// ManagerOption configures optional Manager behavior.
type ManagerOption func(*Manager)

// WithPollInterval overrides the idle sleep between claim attempts.
func WithPollInterval(d time.Duration) ManagerOption {
	return func(m *Manager) { m.pollInterval = d }
}

// WithErrorRetryInterval overrides the sleep after an infrastructure error.
func WithErrorRetryInterval(d time.Duration) ManagerOption {
	return func(m *Manager) { m.errorRetryInterval = d }
}

// WithStageTimeout bounds each handler call; zero disables the bound.
func WithStageTimeout(d time.Duration) ManagerOption {
	return func(m *Manager) { m.stageTimeout = d }
}

// WithHeartbeat overrides lease renewal timing.
func WithHeartbeat(interval, timeout time.Duration) ManagerOption {
	return func(m *Manager) {
		m.heartbeat.interval = interval
		m.heartbeatTimeout = timeout
	}
}

// WithWorkersPerStage overrides the number of concurrent workers per stage.
func WithWorkersPerStage(n int) ManagerOption {
	return func(m *Manager) {
		if n > 0 {
			m.workersPerStage = n
		}
	}
}

// WithNotifier replaces the notification service built from the config.
func WithNotifier(n notifications.Service) ManagerOption {
	return func(m *Manager) {
		if n != nil {
			m.notifier = n
		}
	}
}

// NewManager constructs a workflow manager.
func NewManager(cfg *config.Config, store notes.Store, logger *slog.Logger, opts ...ManagerOption) *Manager {
	if logger == nil {
		logger = logging.NewNop()
	}
	m := &Manager{
		cfg:                cfg,
		store:              store,
		logger:             logger,
		pollInterval:       cfg.PollInterval(),
		errorRetryInterval: cfg.ErrorRetryInterval(),
		stageTimeout:       cfg.StageTimeout(),
		heartbeatTimeout:   time.Duration(cfg.Workflow.HeartbeatTimeout) * time.Second,
		workersPerStage:    cfg.Workflow.WorkersPerStage,
		newToken:           uuid.NewString,
		now:                time.Now,
		notifier:           notifications.NewService(cfg),
		heartbeat: NewHeartbeatMonitor(
			store,
			logger,
			time.Duration(cfg.Workflow.HeartbeatInterval)*time.Second,
		),
	}
	if m.workersPerStage < 1 {
		m.workersPerStage = 1
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}
