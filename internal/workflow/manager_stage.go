package workflow

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"

	"notehub/internal/logging"
	"notehub/internal/notes"
	"notehub/internal/services"
)

// runIteration claims at most one note for w's stage, runs the handler and
// commits the outcome.
func (m *Manager) runIteration(ctx context.Context, w *worker) iterationOutcome {
	stg := w.stage
	m.setWorkerState(w, WorkerClaiming, "")

	token := m.newToken()
	note, err := m.store.Claim(ctx, notes.ClaimRequest{
		From:        stg.from,
		Token:       token,
		StaleBefore: m.now().Add(-m.heartbeatTimeout),
	})
	if err != nil {
		m.setWorkerState(w, WorkerIdle, "")
		if ctx.Err() != nil {
			return outcomeIdle
		}
		m.workerLogger(w).Warn("claim failed",
			logging.Error(err),
			logging.String(logging.FieldEventType, "claim_failed"),
			logging.String(logging.FieldErrorHint, "check that the note database is reachable"),
		)
		m.recordWorkerError(w, err)
		return outcomeInfraError
	}
	if note == nil {
		m.setWorkerState(w, WorkerIdle, "")
		return outcomeIdle
	}

	// The claimed note is finished even if shutdown starts mid-stage.
	stageCtx := withStageContext(context.WithoutCancel(ctx), w, note, uuid.NewString())
	logger := m.noteLogger(stageCtx)
	m.setWorkerState(w, WorkerProcessing, note.ID)

	start := m.now()
	logger.Info("stage started",
		logging.String(logging.FieldEventType, "stage_start"),
		logging.String("status", string(note.Status)),
		logging.Bool("text_input", note.IsTextInput()),
	)

	changes, stageErr := m.execute(stageCtx, stg, note, token)
	if stageErr == nil {
		if err := changes.Validate(stg.from, stg.to); err != nil {
			stageErr = fmt.Errorf("stage %s returned invalid changes: %w", stg.name, err)
		}
	}

	next := stg.to
	if stageErr != nil {
		next = notes.StatusFailed
		changes = notes.Changes{ErrorInfo: m.errorInfo(stg.name, stageErr)}
		m.logStageFailure(stageCtx, changes.ErrorInfo, stageErr)
	}

	m.setWorkerState(w, WorkerCommitting, note.ID)
	if err := m.commit(stageCtx, note, next, changes); err != nil {
		m.setWorkerState(w, WorkerIdle, "")
		if errors.Is(err, notes.ErrClaimLost) {
			logger.Warn("claim lost before commit; result discarded",
				logging.String(logging.FieldEventType, "claim_lost"),
				logging.String(logging.FieldErrorHint, "raise workflow.heartbeat_timeout if stages run long"),
			)
			return outcomeClaimLost
		}
		logger.Error("commit failed",
			logging.Error(err),
			logging.String(logging.FieldEventType, "commit_failed"),
			logging.String(logging.FieldErrorHint, "the lease will expire and another worker will retry the note"),
		)
		m.recordWorkerError(w, err)
		return outcomeInfraError
	}

	committed := *note
	changes.Apply(&committed, next)
	m.setLastNote(&committed)
	m.setWorkerState(w, WorkerIdle, "")
	m.publishOutcome(stageCtx, &committed)

	if next == notes.StatusFailed {
		m.recordWorkerFailure(w, stageErr)
		return outcomeFailed
	}
	m.recordWorkerSuccess(w)
	logger.Info("stage completed",
		logging.String(logging.FieldEventType, "stage_complete"),
		logging.String("next_status", string(next)),
		logging.Duration("stage_duration", m.now().Sub(start)),
	)
	return outcomeAdvanced
}

type stageResult struct {
	changes notes.Changes
	err     error
}

// execute runs the handler with a lease heartbeat and the stage timeout. The
// handler receives a copy of the claimed note.
func (m *Manager) execute(ctx context.Context, stg pipelineStage, note *notes.Note, token string) (notes.Changes, error) {
	hbCtx, hbCancel := context.WithCancel(ctx)
	var hbWG sync.WaitGroup
	hbWG.Add(1)
	go m.heartbeat.StartLoop(hbCtx, &hbWG, note.ID, token)
	defer func() {
		hbCancel()
		hbWG.Wait()
	}()

	runCtx := ctx
	cancel := func() {}
	if m.stageTimeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, m.stageTimeout)
	}
	defer cancel()

	input := *note
	input.ActionItems = append([]string(nil), note.ActionItems...)

	done := make(chan stageResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- stageResult{err: fmt.Errorf("stage %s panicked: %v", stg.name, r)}
			}
		}()
		changes, err := stg.handler.Execute(runCtx, &input)
		done <- stageResult{changes: changes, err: err}
	}()

	select {
	case res := <-done:
		if res.err != nil && errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			return notes.Changes{}, m.timeoutError(stg.name)
		}
		return res.changes, res.err
	case <-runCtx.Done():
		return notes.Changes{}, m.timeoutError(stg.name)
	}
}

func (m *Manager) timeoutError(stageName string) error {
	return services.WithHint(
		services.Wrap(services.ErrTimeout, stageName, "execute",
			fmt.Sprintf("stage exceeded %s", m.stageTimeout), context.DeadlineExceeded),
		"raise workflow.stage_timeout for long recordings",
	)
}

// commit retries transient store failures; lost claims and rejected
// transitions are final.
func (m *Manager) commit(ctx context.Context, note *notes.Note, next notes.Status, changes notes.Changes) error {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 100 * time.Millisecond
	policy.MaxInterval = 2 * time.Second
	policy.MaxElapsedTime = commitRetryWindow
	return backoff.Retry(func() error {
		err := m.store.Commit(ctx, note, next, changes)
		switch {
		case err == nil:
			return nil
		case errors.Is(err, notes.ErrClaimLost),
			errors.Is(err, notes.ErrInvalidTransition),
			errors.Is(err, notes.ErrNotFound):
			return backoff.Permanent(err)
		default:
			return err
		}
	}, backoff.WithContext(policy, ctx))
}
