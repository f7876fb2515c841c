package daemonctl

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"
)

func writePID(t *testing.T, path string, pid int) {
	t.Helper()
	if err := os.WriteFile(path, []byte(strconv.Itoa(pid)+"\n"), 0o644); err != nil {
		t.Fatalf("write pid file: %v", err)
	}
}

// startSleeper runs a child that lives until killed and is reaped in the
// background so it does not linger as a zombie.
func startSleeper(t *testing.T) (*exec.Cmd, <-chan struct{}) {
	t.Helper()
	cmd := exec.Command("sleep", "30")
	if err := cmd.Start(); err != nil {
		t.Skipf("sleep unavailable: %v", err)
	}
	done := make(chan struct{})
	go func() {
		_ = cmd.Wait()
		close(done)
	}()
	t.Cleanup(func() {
		_ = cmd.Process.Kill()
		<-done
	})
	return cmd, done
}

func TestReadPIDErrors(t *testing.T) {
	dir := t.TempDir()
	if _, err := ReadPID(filepath.Join(dir, "missing.pid")); !errors.Is(err, ErrDaemonNotRunning) {
		t.Fatalf("expected ErrDaemonNotRunning, got %v", err)
	}
	bad := filepath.Join(dir, "bad.pid")
	if err := os.WriteFile(bad, []byte("abc"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := ReadPID(bad); err == nil || !strings.Contains(err.Error(), "malformed") {
		t.Fatalf("expected malformed error, got %v", err)
	}
}

func TestRunningPIDRemovesStaleFile(t *testing.T) {
	cmd := exec.Command("true")
	if err := cmd.Run(); err != nil {
		t.Skipf("true unavailable: %v", err)
	}
	path := filepath.Join(t.TempDir(), "notehubd.pid")
	writePID(t, path, cmd.ProcessState.Pid())

	if _, err := RunningPID(path); !errors.Is(err, ErrDaemonNotRunning) {
		t.Fatalf("expected ErrDaemonNotRunning, got %v", err)
	}
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected stale pid file to be removed, got %v", err)
	}
}

func TestStopTerminatesProcess(t *testing.T) {
	cmd, done := startSleeper(t)
	path := filepath.Join(t.TempDir(), "notehubd.pid")
	writePID(t, path, cmd.Process.Pid)

	result, err := Stop(context.Background(), path, 5*time.Second)
	if err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if result.PID != cmd.Process.Pid || result.ForcedKill {
		t.Fatalf("unexpected result %+v", result)
	}
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("process still running after Stop")
	}
}

func TestStopWithoutDaemon(t *testing.T) {
	_, err := Stop(context.Background(), filepath.Join(t.TempDir(), "none.pid"), time.Second)
	if !errors.Is(err, ErrDaemonNotRunning) {
		t.Fatalf("expected ErrDaemonNotRunning, got %v", err)
	}
}

func TestEnsureStartedAlreadyRunning(t *testing.T) {
	cmd, _ := startSleeper(t)
	path := filepath.Join(t.TempDir(), "notehubd.pid")
	writePID(t, path, cmd.Process.Pid)

	launch = func(LaunchOptions) error {
		t.Fatal("launch must not be called when a daemon is running")
		return nil
	}
	t.Cleanup(func() { launch = Launch })

	result, err := EnsureStarted(context.Background(), StartOptions{PIDPath: path})
	if err != nil {
		t.Fatalf("EnsureStarted: %v", err)
	}
	if result.State != StartStateAlreadyRunning || result.PID != cmd.Process.Pid {
		t.Fatalf("unexpected result %+v", result)
	}
}

func TestEnsureStartedWaitsForAPI(t *testing.T) {
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}))
	defer api.Close()

	path := filepath.Join(t.TempDir(), "notehubd.pid")
	var launchedPID int
	launch = func(opts LaunchOptions) error {
		if opts.ConfigPath != "/etc/notehub.toml" {
			t.Errorf("unexpected config path %q", opts.ConfigPath)
		}
		cmd, _ := startSleeper(t)
		launchedPID = cmd.Process.Pid
		writePID(t, path, launchedPID)
		return nil
	}
	t.Cleanup(func() { launch = Launch })

	result, err := EnsureStarted(context.Background(), StartOptions{
		Launch:  LaunchOptions{Executable: "notehub", ConfigPath: "/etc/notehub.toml"},
		PIDPath: path,
		APIBind: api.URL,
		Timeout: 5 * time.Second,
	})
	if err != nil {
		t.Fatalf("EnsureStarted: %v", err)
	}
	if result.State != StartStateStarted || result.PID != launchedPID {
		t.Fatalf("unexpected result %+v", result)
	}
}

func TestEnsureStartedTimesOut(t *testing.T) {
	launch = func(LaunchOptions) error { return nil }
	t.Cleanup(func() { launch = Launch })

	_, err := EnsureStarted(context.Background(), StartOptions{
		PIDPath: filepath.Join(t.TempDir(), "notehubd.pid"),
		Timeout: 300 * time.Millisecond,
	})
	if err == nil || !strings.Contains(err.Error(), "failed to start") {
		t.Fatalf("expected start failure, got %v", err)
	}
}
