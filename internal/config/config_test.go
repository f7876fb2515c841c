package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"notehub/internal/config"
)

func clearEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, key := range keys {
		t.Setenv(key, "")
		if err := os.Unsetenv(key); err != nil {
			t.Fatalf("unset %s: %v", key, err)
		}
	}
}

var fallbackKeys = []string{
	"INBOX_DIR", "VAULT_DIR", "DATABASE_URL", "WHISPER_MODEL_SIZE",
	"LLM_API_KEY", "LLM_BASE_URL", "LLM_MODEL", "HF_TOKEN", "NTFY_TOPIC",
}

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	clearEnv(t, fallbackKeys...)
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantInbox := filepath.Join(tempHome, ".local", "share", "notehub", "inbox")
	if cfg.Paths.InboxDir != wantInbox {
		t.Fatalf("unexpected inbox dir: got %q want %q", cfg.Paths.InboxDir, wantInbox)
	}
	if cfg.Paths.VaultDir != filepath.Join(tempHome, "notes") {
		t.Fatalf("unexpected vault dir: %q", cfg.Paths.VaultDir)
	}
	if cfg.Paths.APIBind != "127.0.0.1:8000" {
		t.Fatalf("unexpected api bind: %q", cfg.Paths.APIBind)
	}
	if cfg.Storage.Driver != config.DriverSQLite {
		t.Fatalf("expected sqlite driver by default, got %q", cfg.Storage.Driver)
	}
	wantDB := filepath.Join(tempHome, ".local", "share", "notehub", "notes.db")
	if cfg.Storage.SQLitePath != wantDB {
		t.Fatalf("unexpected sqlite path: got %q want %q", cfg.Storage.SQLitePath, wantDB)
	}
	if cfg.LLM.MaxTranscriptChars != 3000 {
		t.Fatalf("expected transcript limit 3000, got %d", cfg.LLM.MaxTranscriptChars)
	}
	if cfg.LLM.Model != "" {
		t.Fatalf("expected empty LLM model by default, got %q", cfg.LLM.Model)
	}
	if cfg.Transcription.WhisperXVADMethod != "silero" {
		t.Fatalf("expected WhisperX VAD default to silero, got %q", cfg.Transcription.WhisperXVADMethod)
	}
	if cfg.Workflow.WorkersPerStage != 1 {
		t.Fatalf("expected one worker per stage, got %d", cfg.Workflow.WorkersPerStage)
	}
	if cfg.StageTimeout().Minutes() != 30 {
		t.Fatalf("unexpected stage timeout: %s", cfg.StageTimeout())
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}

	for _, dir := range []string{cfg.Paths.InboxDir, cfg.Paths.VaultDir, cfg.Paths.DataDir, cfg.Paths.LogDir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
}

func TestLoadCustomPath(t *testing.T) {
	clearEnv(t, fallbackKeys...)
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "notehub.toml")

	type payload struct {
		Paths struct {
			VaultDir string `toml:"vault_dir"`
		} `toml:"paths"`
		LLM struct {
			Model              string `toml:"model"`
			MaxTranscriptChars int    `toml:"max_transcript_chars"`
		} `toml:"llm"`
		Workflow struct {
			HeartbeatInterval int `toml:"heartbeat_interval"`
			HeartbeatTimeout  int `toml:"heartbeat_timeout"`
			WorkersPerStage   int `toml:"workers_per_stage"`
		} `toml:"workflow"`
	}
	custom := payload{}
	custom.Paths.VaultDir = filepath.Join(tempDir, "vault")
	custom.LLM.Model = "llama-3"
	custom.LLM.MaxTranscriptChars = 500
	custom.Workflow.HeartbeatInterval = 20
	custom.Workflow.HeartbeatTimeout = 200
	custom.Workflow.WorkersPerStage = 3
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected exists to be true")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, configPath)
	}
	if cfg.Paths.VaultDir != filepath.Join(tempDir, "vault") {
		t.Fatalf("expected vault dir from file, got %q", cfg.Paths.VaultDir)
	}
	if cfg.LLM.Model != "llama-3" {
		t.Fatalf("expected model from file, got %q", cfg.LLM.Model)
	}
	if cfg.LLM.MaxTranscriptChars != 500 {
		t.Fatalf("expected transcript limit 500, got %d", cfg.LLM.MaxTranscriptChars)
	}
	if cfg.Workflow.HeartbeatInterval != 20 || cfg.Workflow.HeartbeatTimeout != 200 {
		t.Fatalf("unexpected heartbeat settings: %+v", cfg.Workflow)
	}
	if cfg.Workflow.WorkersPerStage != 3 {
		t.Fatalf("expected three workers per stage, got %d", cfg.Workflow.WorkersPerStage)
	}
}

func TestEnvFallbacksFillUnsetValues(t *testing.T) {
	clearEnv(t, fallbackKeys...)
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "notehub.toml")
	contents := "[storage]\ndriver = \"postgres\"\n\n[llm]\nmodel = \"from-file\"\n"
	if err := os.WriteFile(configPath, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("INBOX_DIR", filepath.Join(tempDir, "inbox"))
	t.Setenv("DATABASE_URL", "postgres://notehub@localhost/notehub")
	t.Setenv("LLM_MODEL", "from-env")
	t.Setenv("LLM_API_KEY", "env-key")
	t.Setenv("WHISPER_MODEL_SIZE", "large-v3")

	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Paths.InboxDir != filepath.Join(tempDir, "inbox") {
		t.Errorf("expected inbox dir from env, got %q", cfg.Paths.InboxDir)
	}
	if cfg.Storage.PostgresURL != "postgres://notehub@localhost/notehub" {
		t.Errorf("expected postgres url from env, got %q", cfg.Storage.PostgresURL)
	}
	if cfg.LLM.Model != "from-file" {
		t.Errorf("expected file model to win over env, got %q", cfg.LLM.Model)
	}
	if cfg.LLM.APIKey != "env-key" {
		t.Errorf("expected api key from env, got %q", cfg.LLM.APIKey)
	}
	if cfg.Transcription.WhisperXModel != "large-v3" {
		t.Errorf("expected whisper model from env, got %q", cfg.Transcription.WhisperXModel)
	}
}

func TestLoadReadsDotEnvNextToConfig(t *testing.T) {
	clearEnv(t, fallbackKeys...)
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "notehub.toml")
	if err := os.WriteFile(configPath, []byte("[logging]\nlevel = \"debug\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	dotenv := "LLM_MODEL=dotenv-model\nLLM_BASE_URL=http://dotenv/v1\nVAULT_DIR=" + filepath.Join(tempDir, "vault") + "\n"
	if err := os.WriteFile(filepath.Join(tempDir, ".env"), []byte(dotenv), 0o644); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	t.Setenv("LLM_BASE_URL", "http://real-env/v1/chat/completions")

	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.LLM.Model != "dotenv-model" {
		t.Fatalf("expected model from .env, got %q", cfg.LLM.Model)
	}
	if cfg.Paths.VaultDir != filepath.Join(tempDir, "vault") {
		t.Fatalf("expected vault dir from .env, got %q", cfg.Paths.VaultDir)
	}
	if cfg.LLM.BaseURL != "http://real-env/v1/chat/completions" {
		t.Fatalf("expected real environment to win, got %q", cfg.LLM.BaseURL)
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("expected debug level, got %q", cfg.Logging.Level)
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(contents), "[workflow]") {
		t.Fatalf("sample config missing workflow section: %s", contents)
	}

	var cfg config.Config
	if err := toml.Unmarshal(contents, &cfg); err != nil {
		t.Fatalf("unmarshal sample: %v", err)
	}
	if !strings.Contains(cfg.Paths.InboxDir, "notehub") {
		t.Fatalf("expected inbox dir to contain notehub, got %q", cfg.Paths.InboxDir)
	}
	if cfg.Workflow.StageTimeout != 1800 {
		t.Fatalf("expected sample stage timeout 1800, got %d", cfg.Workflow.StageTimeout)
	}
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"heartbeat interval", func(c *config.Config) { c.Workflow.HeartbeatInterval = 0 }},
		{"timeout not above interval", func(c *config.Config) { c.Workflow.HeartbeatTimeout = c.Workflow.HeartbeatInterval }},
		{"workers", func(c *config.Config) { c.Workflow.WorkersPerStage = 0 }},
		{"negative stage timeout", func(c *config.Config) { c.Workflow.StageTimeout = -1 }},
		{"driver", func(c *config.Config) { c.Storage.Driver = "mysql" }},
		{"postgres without url", func(c *config.Config) { c.Storage.Driver = config.DriverPostgres }},
		{"log format", func(c *config.Config) { c.Logging.Format = "xml" }},
		{"token hash", func(c *config.Config) { c.Paths.APITokenHash = "plaintext" }},
		{"transcript limit", func(c *config.Config) { c.LLM.MaxTranscriptChars = 10 }},
		{"vad method", func(c *config.Config) { c.Transcription.WhisperXVADMethod = "webrtc" }},
		{"ntfy topic", func(c *config.Config) { c.Notifications.NtfyTopic = "my-notes" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}

	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
}
