package workflow

import (
	"context"

	"notehub/internal/logging"
	"notehub/internal/preflight"
)

// logPreflight reports external dependency readiness at startup. Failures
// are logged only; the affected stages surface them through health checks.
func (m *Manager) logPreflight(ctx context.Context) {
	if m.cfg == nil {
		return
	}
	logger := m.componentLogger()
	for _, r := range preflight.RunFeatureChecks(ctx, m.cfg) {
		if r.Passed {
			logger.Info("preflight check passed",
				logging.String("check", r.Name),
				logging.String("detail", r.Detail),
				logging.String(logging.FieldEventType, "preflight_passed"),
			)
			continue
		}
		logger.Warn("preflight check failed",
			logging.String("check", r.Name),
			logging.String("detail", r.Detail),
			logging.String(logging.FieldEventType, "preflight_failed"),
			logging.String(logging.FieldErrorHint, "fix the reported issue and restart the daemon"),
		)
	}
}
