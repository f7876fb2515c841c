// Package config loads, normalizes, and validates notehub configuration.
//
// Configuration lives in TOML (~/.config/notehub/config.toml or ./notehub.toml).
// Load applies defaults, expands ~ paths, honours .env files and environment
// fallbacks, and validates the result. Callers should always go through Load
// (or Default in tests) so every component sees the same normalized values.
package config
