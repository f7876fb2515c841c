package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateStorage(); err != nil {
		return err
	}
	if err := c.validateTranscription(); err != nil {
		return err
	}
	if err := c.validateLLM(); err != nil {
		return err
	}
	if err := c.validateWorkflow(); err != nil {
		return err
	}
	if err := c.validateNotifications(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	if c.Paths.InboxDir == "" {
		return errors.New("paths.inbox_dir must be set")
	}
	if c.Paths.VaultDir == "" {
		return errors.New("paths.vault_dir must be set")
	}
	if c.Paths.DataDir == "" {
		return errors.New("paths.data_dir must be set")
	}
	if c.Paths.APITokenHash != "" && !strings.HasPrefix(c.Paths.APITokenHash, "$2") {
		return errors.New("paths.api_token_hash must be a bcrypt hash (create one with 'notehub config hash-token')")
	}
	return nil
}

func (c *Config) validateStorage() error {
	switch c.Storage.Driver {
	case DriverSQLite:
		return nil
	case DriverPostgres:
		if c.Storage.PostgresURL == "" {
			return errors.New("storage.postgres_url must be set when storage.driver is postgres (or export DATABASE_URL)")
		}
		return nil
	default:
		return fmt.Errorf("storage.driver: unsupported value %q (use sqlite or postgres)", c.Storage.Driver)
	}
}

func (c *Config) validateTranscription() error {
	switch c.Transcription.WhisperXVADMethod {
	case "silero", "pyannote":
	default:
		return fmt.Errorf("transcription.whisperx_vad_method: unsupported value %q", c.Transcription.WhisperXVADMethod)
	}
	return nil
}

func (c *Config) validateLLM() error {
	if c.LLM.MaxTranscriptChars < 100 {
		return errors.New("llm.max_transcript_chars must be at least 100")
	}
	return nil
}

func (c *Config) validateWorkflow() error {
	if c.Workflow.PollInterval < 0 {
		return errors.New("workflow.poll_interval must not be negative")
	}
	if c.Workflow.ErrorRetryInterval < 0 {
		return errors.New("workflow.error_retry_interval must not be negative")
	}
	if c.Workflow.HeartbeatInterval <= 0 {
		return errors.New("workflow.heartbeat_interval must be positive")
	}
	if c.Workflow.HeartbeatTimeout <= c.Workflow.HeartbeatInterval {
		return errors.New("workflow.heartbeat_timeout must be greater than workflow.heartbeat_interval")
	}
	if c.Workflow.StageTimeout < 0 {
		return errors.New("workflow.stage_timeout must not be negative (0 disables it)")
	}
	if c.Workflow.WorkersPerStage < 1 {
		return errors.New("workflow.workers_per_stage must be at least 1")
	}
	return nil
}

func (c *Config) validateNotifications() error {
	topic := c.Notifications.NtfyTopic
	if topic == "" {
		return nil
	}
	if !strings.HasPrefix(topic, "http://") && !strings.HasPrefix(topic, "https://") {
		return fmt.Errorf("notifications.ntfy_topic must be a full URL such as https://ntfy.sh/my-notes, got %q", topic)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	return nil
}
