// Package daemon coordinates the long-running notehub process.
//
// It wires configuration, the note store, the workflow manager, ingestion and
// the HTTP API into a single lifecycle with flock-based locking to prevent
// multiple instances. The API is served with fiber; when paths.api_token_hash
// is set every route except /api/health requires a bearer token whose bcrypt
// hash matches.
//
// Keep orchestration logic here: individual workflow steps live in their
// respective packages while the daemon focuses on startup, shutdown, and high
// level coordination.
package daemon
