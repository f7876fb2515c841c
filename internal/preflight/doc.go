// Package preflight provides readiness checks for the directories, binaries
// and endpoints notehub depends on.
//
// The workflow manager logs RunFeatureChecks results when it starts, the
// daemon health endpoint reuses CheckDatabase and CheckDirectoryAccess, and
// the archive stage reports vault access through CheckDirectoryAccess. Each
// check is gated by its config toggle.
package preflight
