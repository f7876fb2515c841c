package workflow

import (
	"context"
	"errors"
	"time"

	"notehub/internal/logging"
)

// Start launches every stage worker. Workers stop when ctx is cancelled or
// Stop is called; either signal is only observed between iterations.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return errors.New("workflow already running")
	}
	if len(m.workers) == 0 {
		m.mu.Unlock()
		return errors.New("workflow stages not configured")
	}

	runCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.stopCh = make(chan struct{})
	m.running = true
	workers := append([]*worker(nil), m.workers...)
	for _, w := range workers {
		w.state = WorkerIdle
	}
	m.wg.Add(len(workers))
	m.mu.Unlock()

	go m.logPreflight(runCtx)

	for _, w := range workers {
		go m.runWorker(runCtx, w)
	}
	m.logger.Info("workflow started",
		logging.Int("workers", len(workers)),
		logging.String(logging.FieldEventType, "workflow_start"),
	)
	return nil
}

// Stop signals every worker and waits for in-flight notes to be committed.
func (m *Manager) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	close(m.stopCh)
	cancel := m.cancel
	m.running = false
	m.cancel = nil
	m.mu.Unlock()

	m.wg.Wait()
	cancel()
	m.logger.Info("workflow stopped", logging.String(logging.FieldEventType, "workflow_stop"))
}

// Wait blocks until every worker has exited.
func (m *Manager) Wait() {
	m.wg.Wait()
}

func (m *Manager) runWorker(ctx context.Context, w *worker) {
	defer m.wg.Done()
	defer m.setWorkerState(w, WorkerStopped, "")

	m.mu.RLock()
	stopCh := m.stopCh
	m.mu.RUnlock()

	logger := m.workerLogger(w)
	logger.Debug("worker started")

	for {
		if stopRequested(ctx, stopCh) {
			logger.Debug("worker stopping")
			return
		}

		switch m.runIteration(ctx, w) {
		case outcomeIdle:
			m.sleep(ctx, stopCh, m.pollInterval)
		case outcomeInfraError:
			m.sleep(ctx, stopCh, m.errorRetryInterval)
		}
	}
}

func stopRequested(ctx context.Context, stopCh <-chan struct{}) bool {
	select {
	case <-ctx.Done():
		return true
	case <-stopCh:
		return true
	default:
		return false
	}
}

func (m *Manager) sleep(ctx context.Context, stopCh <-chan struct{}, d time.Duration) {
	if d < minIdleSleep {
		d = minIdleSleep
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-stopCh:
	case <-timer.C:
	}
}
