// Package export writes the note listing to an xlsx workbook for review
// outside the vault.
package export
