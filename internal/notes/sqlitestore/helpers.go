package sqlitestore

import (
	"database/sql"
	"errors"
	"time"

	"notehub/internal/notes"
)

// timeLayout is fixed width so lexical order matches chronological order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const noteColumns = "id, title, status, source_ref, source_filename, transcript, summary, action_items, tags, archive_path, error_info, claim_token, claimed_at, created_at, updated_at"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(timeLayout, value); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339Nano, value)
}

func scanNote(scanner interface{ Scan(dest ...any) error }) (*notes.Note, error) {
	var (
		id             string
		title          sql.NullString
		statusStr      string
		sourceRef      string
		sourceFilename sql.NullString
		transcript     sql.NullString
		summary        sql.NullString
		actionItems    sql.NullString
		tags           sql.NullString
		archivePath    sql.NullString
		errorInfo      sql.NullString
		claimToken     sql.NullString
		claimedRaw     sql.NullString
		createdRaw     string
		updatedRaw     string
	)
	if err := scanner.Scan(
		&id,
		&title,
		&statusStr,
		&sourceRef,
		&sourceFilename,
		&transcript,
		&summary,
		&actionItems,
		&tags,
		&archivePath,
		&errorInfo,
		&claimToken,
		&claimedRaw,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}

	note := &notes.Note{
		ID:             id,
		Title:          title.String,
		Status:         notes.Status(statusStr),
		SourceRef:      sourceRef,
		SourceFilename: sourceFilename.String,
		Transcript:     transcript.String,
		Summary:        summary.String,
		ActionItems:    notes.DecodeList(actionItems.String),
		Tags:           notes.DecodeList(tags.String),
		ArchivePath:    archivePath.String,
		ErrorInfo:      notes.DecodeErrorInfo(errorInfo.String),
		ClaimToken:     claimToken.String,
	}
	if claimedRaw.Valid {
		if claimed, err := parseTimeString(claimedRaw.String); err == nil {
			note.ClaimedAt = &claimed
		}
	}
	if created, err := parseTimeString(createdRaw); err == nil {
		note.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw); err == nil {
		note.UpdatedAt = updated
	}
	return note, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullablePtr(value *string) any {
	if value == nil {
		return nil
	}
	return *value
}

func nullableList(values []string) any {
	if values == nil {
		return nil
	}
	return notes.EncodeList(values)
}
