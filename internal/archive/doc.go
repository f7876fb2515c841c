// Package archive implements the extracted -> done stage: it renders a note
// as markdown with YAML front matter and writes it into the vault under a
// date-based layout.
package archive
