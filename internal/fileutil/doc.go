// Package fileutil writes files atomically for the inbox and the vault.
package fileutil
