package export_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/xuri/excelize/v2"

	"notehub/internal/export"
	"notehub/internal/notes"
	"notehub/internal/testsupport"
)

func TestWriteWorkbook(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	first := testsupport.NewTextNote(t, store, "First", "alpha")
	second := testsupport.NewAudioNote(t, store, "Second", "/tmp/second.wav")

	var buf bytes.Buffer
	count, err := export.WriteWorkbook(context.Background(), store, &buf)
	if err != nil {
		t.Fatalf("WriteWorkbook: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 notes, got %d", count)
	}

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Notes")
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d", len(rows))
	}
	if rows[0][0] != "ID" || rows[0][2] != "Status" {
		t.Fatalf("unexpected header %v", rows[0])
	}
	ids := map[string]string{rows[1][0]: rows[1][2], rows[2][0]: rows[2][2]}
	if ids[first.ID] != string(notes.StatusTranscribed) || ids[second.ID] != string(notes.StatusRaw) {
		t.Fatalf("unexpected rows %v", rows[1:])
	}

	statusRows, err := f.GetRows("Status")
	if err != nil {
		t.Fatalf("GetRows status: %v", err)
	}
	counts := map[string]string{}
	for _, row := range statusRows[1:] {
		counts[row[0]] = row[1]
	}
	if counts["raw"] != "1" || counts["transcribed"] != "1" || counts["done"] != "0" {
		t.Fatalf("unexpected status counts %v", counts)
	}
}

func TestWriteWorkbookEmptyStore(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	var buf bytes.Buffer
	count, err := export.WriteWorkbook(context.Background(), store, &buf)
	if err != nil {
		t.Fatalf("WriteWorkbook: %v", err)
	}
	if count != 0 || buf.Len() == 0 {
		t.Fatalf("expected an empty but valid workbook, count=%d size=%d", count, buf.Len())
	}
}
