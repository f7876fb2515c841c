package archive

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"notehub/internal/notes"
	"notehub/internal/textutil"
)

// UntitledTitle is written when a note reaches the archive without a title.
const UntitledTitle = "Untitled"

type frontMatter struct {
	ID        string   `yaml:"id"`
	Title     string   `yaml:"title"`
	CreatedAt string   `yaml:"created_at"`
	Tags      []string `yaml:"tags"`
	Status    string   `yaml:"status"`
}

// Render produces the markdown document for note. Empty sections are omitted.
func Render(note *notes.Note) ([]byte, error) {
	title := strings.TrimSpace(note.Title)
	if title == "" {
		title = UntitledTitle
	}
	tags := note.Tags
	if tags == nil {
		tags = []string{}
	}
	meta, err := yaml.Marshal(frontMatter{
		ID:        note.ID,
		Title:     title,
		CreatedAt: note.CreatedAt.UTC().Format(time.RFC3339),
		Tags:      tags,
		Status:    string(notes.StatusDone),
	})
	if err != nil {
		return nil, fmt.Errorf("encode front matter: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString("---\n")
	buf.Write(meta)
	buf.WriteString("---\n")

	if summary := strings.TrimSpace(note.Summary); summary != "" {
		writeSection(&buf, "Summary", summary)
	}
	if len(note.ActionItems) > 0 {
		var items strings.Builder
		for i, item := range note.ActionItems {
			if i > 0 {
				items.WriteByte('\n')
			}
			items.WriteString("- [ ] ")
			items.WriteString(strings.TrimSpace(item))
		}
		writeSection(&buf, "Action Items", items.String())
	}
	if transcript := strings.TrimSpace(note.Transcript); transcript != "" {
		writeSection(&buf, "Transcript", transcript)
	}
	return buf.Bytes(), nil
}

func writeSection(buf *bytes.Buffer, heading, body string) {
	buf.WriteString("\n# ")
	buf.WriteString(heading)
	buf.WriteString("\n\n")
	buf.WriteString(body)
	buf.WriteByte('\n')
}

// RelativePath returns <YYYY>/<MM>/<DD>-<slug>-<id prefix>.md for a note
// archived at the given time.
func RelativePath(note *notes.Note, at time.Time) string {
	slug := textutil.Slugify(note.Title)
	if slug == "" {
		slug = "note"
	}
	name := fmt.Sprintf("%02d-%s-%s.md", at.Day(), slug, idPrefix(note.ID))
	return filepath.Join(fmt.Sprintf("%04d", at.Year()), fmt.Sprintf("%02d", int(at.Month())), name)
}

// idPrefix returns the first eight hex digits of the note id.
func idPrefix(id string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(id) {
		if (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f') {
			b.WriteRune(r)
			if b.Len() == 8 {
				break
			}
		}
	}
	if b.Len() == 0 {
		return "00000000"
	}
	return b.String()
}
