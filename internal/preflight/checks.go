package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"golang.org/x/sys/unix"

	"notehub/internal/config"
	"notehub/internal/deps"
	"notehub/internal/services/llm"
)

const llmCheckTimeout = 15 * time.Second

// CheckLLM verifies that the chat completion endpoint answers.
// It uses a single attempt (no retries).
func CheckLLM(ctx context.Context, name string, cfg config.LLM) Result {
	client := llm.NewClient(llm.Config{
		APIKey:  cfg.APIKey,
		BaseURL: cfg.BaseURL,
		Model:   cfg.Model,
		Referer: cfg.Referer,
		Title:   cfg.Title,
	}, llm.WithRetryMaxAttempts(1))
	if !client.Available() {
		return Result{Name: name, Detail: "base url or model missing"}
	}

	checkCtx, cancel := context.WithTimeout(ctx, llmCheckTimeout)
	defer cancel()
	if err := client.HealthCheck(checkCtx); err != nil {
		return Result{Name: name, Detail: summarizeLLMError(err)}
	}
	return Result{Name: name, Passed: true, Detail: "endpoint reachable (" + client.Model() + ")"}
}

// Pinger is implemented by note stores.
type Pinger interface {
	Ping(ctx context.Context) error
}

// CheckDatabase verifies the note store answers a ping.
func CheckDatabase(ctx context.Context, name string, db Pinger) Result {
	if db == nil {
		return Result{Name: name, Detail: "not opened"}
	}
	if err := db.Ping(ctx); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("ping failed: %v", err)}
	}
	return Result{Name: name, Passed: true, Detail: "reachable"}
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckBinaries reports the external binaries the enabled stages need.
// Optional binaries always pass, with a detail when missing.
func CheckBinaries(cfg *config.Config) []Result {
	statuses := deps.CheckBinaries(deps.Requirements(cfg))
	results := make([]Result, 0, len(statuses))
	for _, st := range statuses {
		r := Result{Name: st.Name, Passed: st.Available || st.Optional, Detail: st.Detail}
		if st.Available {
			r.Detail = st.Command + " found"
		} else if st.Optional {
			r.Detail = st.Detail + " (optional)"
		}
		results = append(results, r)
	}
	return results
}

// summarizeLLMError produces a human-readable summary for LLM health check failures.
func summarizeLLMError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "health check timed out (LLM endpoint unresponsive)"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "health check timed out (LLM endpoint unreachable)"
	}
	return err.Error()
}
