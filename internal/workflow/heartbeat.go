package workflow

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"notehub/internal/logging"
	"notehub/internal/notes"
)

// HeartbeatMonitor renews claim leases while a handler runs. A lease that
// stops being renewed becomes claimable again after the heartbeat timeout.
type HeartbeatMonitor struct {
	store    notes.Store
	logger   *slog.Logger
	interval time.Duration
}

// NewHeartbeatMonitor creates a new monitor.
func NewHeartbeatMonitor(store notes.Store, logger *slog.Logger, interval time.Duration) *HeartbeatMonitor {
	return &HeartbeatMonitor{
		store:    store,
		logger:   logger,
		interval: interval,
	}
}

// StartLoop renews the lease for a claimed note until ctx is cancelled.
func (h *HeartbeatMonitor) StartLoop(ctx context.Context, wg *sync.WaitGroup, noteID, token string) {
	defer wg.Done()
	if h.interval <= 0 {
		return
	}
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	logger := logging.WithContext(ctx, h.logger.With(logging.String(logging.FieldComponent, "workflow-heartbeat")))

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			err := h.store.RenewClaim(ctx, noteID, token)
			switch {
			case err == nil:
			case errors.Is(err, context.Canceled):
				return
			case errors.Is(err, notes.ErrClaimLost):
				logger.Warn("claim lease lost; another worker may reprocess this note",
					logging.String(logging.FieldEventType, "claim_lost"),
					logging.String(logging.FieldErrorHint, "raise workflow.heartbeat_timeout if stages run long"),
				)
				return
			default:
				logger.Warn("heartbeat update failed", logging.Error(err))
			}
		}
	}
}
