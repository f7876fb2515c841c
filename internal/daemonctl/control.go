package daemonctl

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"syscall"
	"time"

	"notehub/internal/noteaccess"
)

const pollInterval = 200 * time.Millisecond

// ErrDaemonNotRunning indicates no live daemon process was found.
var ErrDaemonNotRunning = errors.New("daemon not running")

// LaunchOptions controls daemon process launch behavior.
type LaunchOptions struct {
	Executable string
	ConfigPath string
	APIBind    string
	LogLevel   string
}

// StartOptions controls EnsureStarted.
type StartOptions struct {
	Launch  LaunchOptions
	PIDPath string
	APIBind string
	Token   string
	Timeout time.Duration
}

type StartState string

const (
	StartStateStarted        StartState = "started"
	StartStateAlreadyRunning StartState = "already_running"
)

// StartResult captures daemon start orchestration state.
type StartResult struct {
	State StartState
	PID   int
}

// StopResult captures daemon stop outcome.
type StopResult struct {
	PID        int
	ForcedKill bool
}

// launch is replaced in tests.
var launch = Launch

// Launch starts a detached `notehub daemon` process in its own session.
func Launch(opts LaunchOptions) error {
	if strings.TrimSpace(opts.Executable) == "" {
		return fmt.Errorf("resolve executable: executable path is empty")
	}

	args := []string{"daemon"}
	if cfg := strings.TrimSpace(opts.ConfigPath); cfg != "" {
		args = append(args, "--config", cfg)
	}
	if bind := strings.TrimSpace(opts.APIBind); bind != "" {
		args = append(args, "--api", bind)
	}
	if level := strings.TrimSpace(opts.LogLevel); level != "" {
		args = append(args, "--log-level", level)
	}

	proc := exec.Command(opts.Executable, args...)
	proc.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	if err := proc.Start(); err != nil {
		return fmt.Errorf("launch daemon: %w", err)
	}
	return proc.Process.Release()
}

// EnsureStarted launches the daemon unless one is already running, then waits
// until it is ready: its API answers or, with the API disabled, its pid file
// names a live process.
func EnsureStarted(ctx context.Context, opts StartOptions) (StartResult, error) {
	if pid, err := RunningPID(opts.PIDPath); err == nil {
		return StartResult{State: StartStateAlreadyRunning, PID: pid}, nil
	} else if !errors.Is(err, ErrDaemonNotRunning) {
		return StartResult{}, err
	}

	if err := launch(opts.Launch); err != nil {
		return StartResult{}, err
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	pid, err := waitReady(waitCtx, opts)
	if err != nil {
		return StartResult{}, fmt.Errorf("daemon failed to start: %w (see `notehub logs`)", err)
	}
	return StartResult{State: StartStateStarted, PID: pid}, nil
}

func waitReady(ctx context.Context, opts StartOptions) (int, error) {
	var lastErr error
	for {
		pid, err := RunningPID(opts.PIDPath)
		if err == nil {
			if strings.TrimSpace(opts.APIBind) == "" {
				return pid, nil
			}
			if _, err = noteaccess.Dial(ctx, opts.APIBind, opts.Token); err == nil {
				return pid, nil
			}
		}
		lastErr = err

		select {
		case <-ctx.Done():
			if lastErr == nil {
				lastErr = ctx.Err()
			}
			return 0, lastErr
		case <-time.After(pollInterval):
		}
	}
}

// Stop sends SIGTERM to the daemon named by pidPath and waits up to
// gracePeriod for it to exit before sending SIGKILL.
func Stop(ctx context.Context, pidPath string, gracePeriod time.Duration) (StopResult, error) {
	pid, err := RunningPID(pidPath)
	if err != nil {
		return StopResult{}, err
	}
	result := StopResult{PID: pid}

	proc, err := os.FindProcess(pid)
	if err != nil {
		return result, fmt.Errorf("locate daemon process %d: %w", pid, err)
	}
	if err := proc.Signal(syscall.SIGTERM); err != nil {
		if errors.Is(err, os.ErrProcessDone) {
			return result, nil
		}
		return result, fmt.Errorf("signal daemon process %d: %w", pid, err)
	}

	if waitExit(ctx, pid, gracePeriod) {
		return result, nil
	}
	if err := proc.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return result, fmt.Errorf("kill daemon process %d: %w", pid, err)
	}
	_ = os.Remove(pidPath)
	result.ForcedKill = true
	return result, nil
}

func waitExit(ctx context.Context, pid int, within time.Duration) bool {
	deadline := time.Now().Add(within)
	for time.Now().Before(deadline) {
		if !processAlive(pid) {
			return true
		}
		select {
		case <-ctx.Done():
			return !processAlive(pid)
		case <-time.After(pollInterval):
		}
	}
	return !processAlive(pid)
}

// RunningPID returns the pid recorded in pidPath when that process is alive.
// A missing file or a dead process yields ErrDaemonNotRunning; a stale file
// is removed.
func RunningPID(pidPath string) (int, error) {
	pid, err := ReadPID(pidPath)
	if err != nil {
		return 0, err
	}
	if pid == os.Getpid() {
		return 0, fmt.Errorf("pid file %s names the current process", pidPath)
	}
	if !processAlive(pid) {
		_ = os.Remove(pidPath)
		return 0, ErrDaemonNotRunning
	}
	return pid, nil
}

// ReadPID parses the pid file written by the daemon.
func ReadPID(pidPath string) (int, error) {
	data, err := os.ReadFile(pidPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, ErrDaemonNotRunning
		}
		return 0, fmt.Errorf("read daemon pid file %q: %w", pidPath, err)
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return 0, fmt.Errorf("daemon pid file %q is malformed", pidPath)
	}
	return pid, nil
}

func processAlive(pid int) bool {
	err := syscall.Kill(pid, 0)
	return err == nil || errors.Is(err, syscall.EPERM)
}
