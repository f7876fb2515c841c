package daemonrun

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"notehub/internal/archive"
	"notehub/internal/config"
	"notehub/internal/daemon"
	"notehub/internal/deps"
	"notehub/internal/extraction"
	"notehub/internal/logging"
	"notehub/internal/storage"
	"notehub/internal/transcription"
	"notehub/internal/workflow"
)

// Options configures daemon process runtime behavior.
type Options struct {
	LogLevel string
}

// Run starts the notehub daemon runtime loop and blocks until ctx is
// cancelled or the process receives SIGINT/SIGTERM.
func Run(cmdCtx context.Context, cfg *config.Config, opts Options) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}

	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}

	logCfg := *cfg
	if level := strings.TrimSpace(opts.LogLevel); level != "" {
		logCfg.Logging.Level = level
	}
	logger, err := logging.NewFromConfig(&logCfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	logDependencySnapshot(logger, cfg)

	store, err := storage.Open(signalCtx, cfg)
	if err != nil {
		logger.Error("open note store",
			logging.Error(err),
			logging.String("store", storage.Describe(cfg)),
			logging.String(logging.FieldErrorHint, "check storage settings and database access"),
		)
		return err
	}

	workflowManager := workflow.NewManager(cfg, store, logger)
	workflowManager.ConfigureStages(BuildStages(cfg, logger))

	d, err := daemon.New(cfg, store, logger, workflowManager)
	if err != nil {
		_ = store.Close()
		return fmt.Errorf("create daemon: %w", err)
	}
	defer d.Close()

	if err := d.Start(signalCtx); err != nil {
		logger.Error("daemon start failed",
			logging.Error(err),
			logging.String(logging.FieldEventType, "daemon_start_failed"),
			logging.String(logging.FieldErrorHint, "check configuration, the lock file and store access"),
		)
		return err
	}

	// The pid file belongs to whichever instance holds the lock.
	pidPath := cfg.PIDPath()
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	defer os.Remove(pidPath)

	<-signalCtx.Done()
	logger.Info("notehub daemon shutting down")
	return nil
}

// BuildStages constructs the stage handlers for cfg. The transcription stage
// is left out when it is disabled or WhisperX cannot run, so raw notes wait
// instead of failing.
func BuildStages(cfg *config.Config, logger *slog.Logger) workflow.StageSet {
	set := workflow.StageSet{
		Extractor: extraction.NewStage(cfg, logger),
		Archiver:  archive.NewArchiver(cfg, logger),
	}
	if !cfg.Transcription.Enabled {
		logger.Info("transcription stage disabled by configuration")
		return set
	}
	stg := transcription.NewStage(cfg, logger)
	if !stg.Available() {
		logger.Warn("transcription stage unavailable; raw notes will wait",
			logging.String(logging.FieldErrorHint, "install uv so uvx is on PATH"),
		)
		return set
	}
	set.Transcriber = stg
	return set
}

func writePIDFile(path string) error {
	if path == "" {
		return nil
	}
	value := strconv.Itoa(os.Getpid()) + "\n"
	return os.WriteFile(path, []byte(value), 0o644)
}

func logDependencySnapshot(logger *slog.Logger, cfg *config.Config) {
	if logger == nil || cfg == nil {
		return
	}
	attrs := []logging.Attr{
		logging.String(logging.FieldEventType, "dependency_snapshot"),
		logging.String("store", storage.Describe(cfg)),
		logging.Bool("transcription_enabled", cfg.Transcription.Enabled),
		logging.String("whisperx_model", cfg.Transcription.WhisperXModel),
		logging.Bool("whisperx_cuda", cfg.Transcription.WhisperXCUDAEnabled),
		logging.Bool("llm_enabled", cfg.LLM.Enabled),
		logging.String("llm_model", cfg.LLM.Model),
		logging.Bool("llm_key_present", strings.TrimSpace(cfg.LLM.APIKey) != ""),
	}
	for _, st := range deps.CheckBinaries(deps.Requirements(cfg)) {
		attrs = append(attrs, logging.Bool(st.Command+"_available", st.Available))
	}
	logger.Info("dependency snapshot", logging.Args(attrs...)...)
}
