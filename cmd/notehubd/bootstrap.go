package main

import (
	"strings"

	"notehub/internal/daemonrun"
)

const (
	envConfigPath = "NOTEHUB_CONFIG"
	envLogLevel   = "NOTEHUB_LOG_LEVEL"
)

func optionsFromEnv(getenv func(string) string) (string, daemonrun.Options) {
	return strings.TrimSpace(getenv(envConfigPath)), daemonrun.Options{
		LogLevel: strings.ToLower(strings.TrimSpace(getenv(envLogLevel))),
	}
}
