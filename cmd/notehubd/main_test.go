package main

import "testing"

func TestOptionsFromEnv(t *testing.T) {
	env := map[string]string{
		envConfigPath: " /etc/notehub/config.toml ",
		envLogLevel:   "DEBUG",
	}
	path, opts := optionsFromEnv(func(key string) string { return env[key] })
	if path != "/etc/notehub/config.toml" {
		t.Fatalf("unexpected config path %q", path)
	}
	if opts.LogLevel != "debug" {
		t.Fatalf("unexpected log level %q", opts.LogLevel)
	}

	path, opts = optionsFromEnv(func(string) string { return "" })
	if path != "" || opts.LogLevel != "" {
		t.Fatalf("expected empty defaults, got %q %+v", path, opts)
	}
}
