// Package logs reads the daemon log file for the CLI: the last N lines, then
// optionally new lines as the daemon appends them.
package logs
