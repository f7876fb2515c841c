package export

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"notehub/internal/notes"
)

const (
	notesSheet  = "Notes"
	statusSheet = "Status"
	timeLayout  = "2006-01-02 15:04:05"
)

var noteHeader = []any{"ID", "Title", "Status", "Created At", "Tags", "Summary", "Action Items", "Archive Path", "Error"}

// Source is the read side of the note store needed for an export.
type Source interface {
	List(ctx context.Context, offset, limit int) ([]notes.Summary, error)
	GetByID(ctx context.Context, id string) (*notes.Note, error)
	Stats(ctx context.Context) (map[notes.Status]int, error)
}

// WriteWorkbook writes every note, newest first, to an xlsx workbook with a
// second sheet of per-status counts. It returns the number of notes written.
func WriteWorkbook(ctx context.Context, src Source, w io.Writer) (int, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", notesSheet); err != nil {
		return 0, fmt.Errorf("rename sheet: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return 0, fmt.Errorf("create style: %w", err)
	}
	if err := f.SetSheetRow(notesSheet, "A1", &noteHeader); err != nil {
		return 0, fmt.Errorf("write header: %w", err)
	}
	_ = f.SetRowStyle(notesSheet, 1, 1, bold)
	_ = f.SetColWidth(notesSheet, "A", "A", 38)
	_ = f.SetColWidth(notesSheet, "B", "B", 32)
	_ = f.SetColWidth(notesSheet, "F", "G", 60)

	written := 0
	for offset := 0; ; offset += notes.MaxListLimit {
		page, err := src.List(ctx, offset, notes.MaxListLimit)
		if err != nil {
			return written, fmt.Errorf("list notes: %w", err)
		}
		for _, summary := range page {
			note, err := src.GetByID(ctx, summary.ID)
			if err != nil {
				return written, fmt.Errorf("load note %s: %w", summary.ID, err)
			}
			cell, err := excelize.CoordinatesToCellName(1, written+2)
			if err != nil {
				return written, err
			}
			row := noteRow(note)
			if err := f.SetSheetRow(notesSheet, cell, &row); err != nil {
				return written, fmt.Errorf("write row: %w", err)
			}
			written++
		}
		if len(page) < notes.MaxListLimit {
			break
		}
	}

	if err := writeStatusSheet(ctx, f, src, bold); err != nil {
		return written, err
	}
	if err := f.Write(w); err != nil {
		return written, fmt.Errorf("write workbook: %w", err)
	}
	return written, nil
}

func noteRow(note *notes.Note) []any {
	var errText string
	if info := note.ErrorInfo; info != nil {
		errText = info.Stage + ": " + info.Message
	}
	return []any{
		note.ID,
		note.Title,
		string(note.Status),
		note.CreatedAt.UTC().Format(timeLayout),
		strings.Join(note.Tags, ", "),
		note.Summary,
		strings.Join(note.ActionItems, "\n"),
		note.ArchivePath,
		errText,
	}
}

func writeStatusSheet(ctx context.Context, f *excelize.File, src Source, style int) error {
	stats, err := src.Stats(ctx)
	if err != nil {
		return fmt.Errorf("note stats: %w", err)
	}
	if _, err := f.NewSheet(statusSheet); err != nil {
		return fmt.Errorf("create status sheet: %w", err)
	}
	if err := f.SetSheetRow(statusSheet, "A1", &[]any{"Status", "Count"}); err != nil {
		return err
	}
	_ = f.SetRowStyle(statusSheet, 1, 1, style)
	for i, status := range notes.AllStatuses() {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(statusSheet, cell, &[]any{string(status), stats[status]}); err != nil {
			return err
		}
	}
	return nil
}
