package whisperx

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func argValue(args []string, flag string) string {
	for i, arg := range args {
		if arg == flag && i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}

func TestTranscribeLoadsSegments(t *testing.T) {
	work := t.TempDir()
	var gotName string
	var gotArgs []string
	svc := NewService(Config{Model: "small", Language: "english"}, work).
		WithCommandRunner(func(_ context.Context, name string, args ...string) error {
			gotName, gotArgs = name, args
			out := argValue(args, "--output_dir")
			payload := `{"segments":[{"text":"Hello ","start":0,"end":1},{"text":"world.","start":1,"end":2}]}`
			return os.WriteFile(filepath.Join(out, "memo.json"), []byte(payload), 0o644)
		})

	segments, err := svc.Transcribe(context.Background(), "/inbox/memo.m4a")
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if len(segments) != 2 || segments[0] != "Hello " || segments[1] != "world." {
		t.Fatalf("unexpected segments %q", segments)
	}
	if gotName != UVXCommand {
		t.Fatalf("expected uvx, got %s", gotName)
	}
	if argValue(gotArgs, "--model") != "small" || argValue(gotArgs, "--language") != "en" {
		t.Fatalf("unexpected args %v", gotArgs)
	}
	if argValue(gotArgs, "--device") != CPUDevice {
		t.Fatalf("expected cpu device, got %v", gotArgs)
	}
	entries, _ := os.ReadDir(work)
	if len(entries) != 0 {
		t.Fatalf("output dir not cleaned up: %v", entries)
	}
}

func TestTranscribeReportsRunnerFailure(t *testing.T) {
	svc := NewService(Config{}, t.TempDir()).
		WithCommandRunner(func(context.Context, string, ...string) error {
			return errors.New("exit status 1: CUDA out of memory")
		})
	_, err := svc.Transcribe(context.Background(), "/inbox/memo.wav")
	if err == nil || !strings.Contains(err.Error(), "CUDA out of memory") {
		t.Fatalf("expected runner error, got %v", err)
	}
}

func TestTranscribeMissingOutput(t *testing.T) {
	svc := NewService(Config{}, t.TempDir()).
		WithCommandRunner(func(context.Context, string, ...string) error { return nil })
	if _, err := svc.Transcribe(context.Background(), "/inbox/memo.wav"); err == nil {
		t.Fatal("expected error when whisperx writes no json")
	}
}

func TestBuildArgsCUDAAndPyannote(t *testing.T) {
	svc := NewService(Config{CUDAEnabled: true, VADMethod: VADMethodPyannote, HFToken: "hf"}, "")
	args := svc.buildArgs("/a.wav", "/out")
	if argValue(args, "--device") != CUDADevice {
		t.Fatalf("expected cuda device: %v", args)
	}
	if argValue(args, "--hf_token") != "hf" || argValue(args, "--vad_method") != VADMethodPyannote {
		t.Fatalf("expected pyannote settings: %v", args)
	}
	if argValue(args, "--extra-index-url") != PypiIndexURL {
		t.Fatalf("expected extra index url: %v", args)
	}
	if argValue(args, "--language") != "" {
		t.Fatalf("unexpected language flag: %v", args)
	}
}

func TestAvailableUsesLookPath(t *testing.T) {
	svc := NewService(Config{}, "")
	svc.lookPath = func(string) (string, error) { return "", errors.New("not found") }
	if svc.Available() {
		t.Fatal("expected unavailable without uvx")
	}
	svc.lookPath = func(name string) (string, error) { return "/usr/bin/" + name, nil }
	if !svc.Available() {
		t.Fatal("expected available with uvx")
	}
}
