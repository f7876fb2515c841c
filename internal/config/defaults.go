package config

const (
	defaultConfigPath         = "~/.config/notehub/config.toml"
	defaultInboxDir           = "~/.local/share/notehub/inbox"
	defaultVaultDir           = "~/notes"
	defaultDataDir            = "~/.local/share/notehub"
	defaultLogDir             = "~/.local/share/notehub/logs"
	defaultAPIBind            = "127.0.0.1:8000"
	defaultStorageDriver      = DriverSQLite
	defaultSQLiteFile         = "notes.db"
	defaultWhisperXModel      = "base"
	defaultWhisperXVADMethod  = "silero"
	defaultLLMBaseURL         = "http://127.0.0.1:8080/v1/chat/completions"
	defaultLLMTitle           = "notehub"
	defaultLLMTimeoutSeconds  = 120
	defaultMaxTranscriptChars = 3000
	defaultPollInterval       = 5
	defaultErrorRetryInterval = 10
	defaultHeartbeatInterval  = 15
	defaultHeartbeatTimeout   = 120
	defaultStageTimeout       = 1800
	defaultWorkersPerStage    = 1
	defaultNtfyTimeout        = 10
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
)

// Storage drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			InboxDir: defaultInboxDir,
			VaultDir: defaultVaultDir,
			DataDir:  defaultDataDir,
			LogDir:   defaultLogDir,
			APIBind:  defaultAPIBind,
		},
		Storage: Storage{
			Driver: defaultStorageDriver,
		},
		Transcription: Transcription{
			Enabled:           true,
			WhisperXModel:     defaultWhisperXModel,
			WhisperXVADMethod: defaultWhisperXVADMethod,
		},
		LLM: LLM{
			Enabled:            true,
			BaseURL:            defaultLLMBaseURL,
			Title:              defaultLLMTitle,
			TimeoutSeconds:     defaultLLMTimeoutSeconds,
			MaxTranscriptChars: defaultMaxTranscriptChars,
		},
		Workflow: Workflow{
			PollInterval:       defaultPollInterval,
			ErrorRetryInterval: defaultErrorRetryInterval,
			HeartbeatInterval:  defaultHeartbeatInterval,
			HeartbeatTimeout:   defaultHeartbeatTimeout,
			StageTimeout:       defaultStageTimeout,
			WorkersPerStage:    defaultWorkersPerStage,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNtfyTimeout,
			NotifyArchived: true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
