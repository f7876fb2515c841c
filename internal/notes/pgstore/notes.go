package pgstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"notehub/internal/notes"
)

const noteColumns = "id, title, status, source_ref, source_filename, transcript, summary, action_items, tags, archive_path, error_info, claim_token, claimed_at, created_at, updated_at"

func scanNote(row pgx.Row) (*notes.Note, error) {
	var (
		note           notes.Note
		title          *string
		status         string
		sourceFilename *string
		transcript     *string
		summary        *string
		actionItems    string
		tags           string
		archivePath    *string
		errorInfo      *string
		claimToken     *string
	)
	if err := row.Scan(
		&note.ID,
		&title,
		&status,
		&note.SourceRef,
		&sourceFilename,
		&transcript,
		&summary,
		&actionItems,
		&tags,
		&archivePath,
		&errorInfo,
		&claimToken,
		&note.ClaimedAt,
		&note.CreatedAt,
		&note.UpdatedAt,
	); err != nil {
		return nil, err
	}
	note.Title = deref(title)
	note.Status = notes.Status(status)
	note.SourceFilename = deref(sourceFilename)
	note.Transcript = deref(transcript)
	note.Summary = deref(summary)
	note.ActionItems = notes.DecodeList(actionItems)
	note.Tags = notes.DecodeList(tags)
	note.ArchivePath = deref(archivePath)
	note.ErrorInfo = notes.DecodeErrorInfo(deref(errorInfo))
	note.ClaimToken = deref(claimToken)
	return &note, nil
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

func nullableString(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}

func nullableList(values []string) *string {
	if values == nil {
		return nil
	}
	encoded := notes.EncodeList(values)
	return &encoded
}

// CreateAudio inserts a raw note pointing at an uploaded recording.
func (s *Store) CreateAudio(ctx context.Context, in notes.NewAudio) (*notes.Note, error) {
	if strings.TrimSpace(in.SourceRef) == "" {
		return nil, errors.New("audio note requires a source reference")
	}
	id := strings.TrimSpace(in.ID)
	if id == "" {
		id = uuid.NewString()
	}
	return s.insert(ctx, "insert audio note",
		`INSERT INTO notes (id, title, status, source_ref, source_filename, tags, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
        RETURNING `+noteColumns,
		id,
		nullableString(strings.TrimSpace(in.Title)),
		string(notes.StatusRaw),
		in.SourceRef,
		nullableString(in.SourceFilename),
		notes.EncodeList(notes.CleanTags(in.Tags)),
		time.Now().UTC(),
	)
}

// CreateText inserts an inline text note that starts at transcribed.
func (s *Store) CreateText(ctx context.Context, in notes.NewText) (*notes.Note, error) {
	return s.insert(ctx, "insert text note",
		`INSERT INTO notes (id, title, status, source_ref, transcript, tags, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
        RETURNING `+noteColumns,
		uuid.NewString(),
		nullableString(strings.TrimSpace(in.Title)),
		string(notes.StatusTranscribed),
		notes.SourceTextInput,
		in.Content,
		notes.EncodeList(notes.CleanTags(in.Tags)),
		time.Now().UTC(),
	)
}

func (s *Store) insert(ctx context.Context, op, query string, args ...any) (*notes.Note, error) {
	var note *notes.Note
	err := withRetry(ctx, func() error {
		var scanErr error
		note, scanErr = scanNote(s.pool.QueryRow(ctx, query, args...))
		return scanErr
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return note, nil
}

// GetByID fetches a note by identifier.
func (s *Store) GetByID(ctx context.Context, id string) (*notes.Note, error) {
	var note *notes.Note
	err := withRetry(ctx, func() error {
		var scanErr error
		note, scanErr = scanNote(s.pool.QueryRow(ctx, `SELECT `+noteColumns+` FROM notes WHERE id = $1`, id))
		return scanErr
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", notes.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get note: %w", err)
	}
	return note, nil
}

// List returns note summaries, newest first.
func (s *Store) List(ctx context.Context, offset, limit int) ([]notes.Summary, error) {
	offset, limit = notes.ClampPage(offset, limit)
	rows, err := s.pool.Query(ctx,
		`SELECT id, title, status, created_at, tags FROM notes
        ORDER BY created_at DESC, seq DESC LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	summaries, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (notes.Summary, error) {
		var (
			summary notes.Summary
			title   *string
			status  string
			tags    string
		)
		if err := row.Scan(&summary.ID, &title, &status, &summary.CreatedAt, &tags); err != nil {
			return notes.Summary{}, err
		}
		summary.Title = deref(title)
		summary.Status = notes.Status(status)
		summary.Tags = notes.DecodeList(tags)
		return summary, nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan note summaries: %w", err)
	}
	return summaries, nil
}

// Stats returns the number of notes in every status.
func (s *Store) Stats(ctx context.Context) (map[notes.Status]int, error) {
	rows, err := s.pool.Query(ctx, `SELECT status, COUNT(*) FROM notes GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("note stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[notes.Status]int, len(notes.AllStatuses()))
	for _, status := range notes.AllStatuses() {
		stats[status] = 0
	}
	for rows.Next() {
		var (
			status string
			count  int64
		)
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("scan stats: %w", err)
		}
		stats[notes.Status(status)] = int(count)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate stats: %w", err)
	}
	return stats, nil
}
