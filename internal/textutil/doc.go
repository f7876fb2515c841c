// Package textutil provides small text helpers shared by the stages and the
// CLI: archive slugs, rune-safe clipping, filename sanitization and display
// casing.
package textutil
