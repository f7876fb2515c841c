// Package deps checks that the external binaries used by enabled stages are
// on PATH.
package deps
