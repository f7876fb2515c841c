// Package daemonctl starts and stops a background notehub daemon from the
// CLI using the daemon's pid file and HTTP API.
package daemonctl
