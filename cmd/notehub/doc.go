// Package main hosts the notehub CLI.
//
// Commands talk to a running daemon over its HTTP API when one answers on
// the configured bind address, and otherwise open the note store directly so
// notes can be added and inspected while the daemon is down. Notes added
// offline are processed the next time the daemon starts.
package main
