// Package noteaccess gives the CLI one interface over two backings: the
// running daemon's HTTP API, or the note store opened directly when no daemon
// answers. OpenWithFallback picks between them.
package noteaccess
