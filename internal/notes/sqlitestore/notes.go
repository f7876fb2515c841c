package sqlitestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"notehub/internal/notes"
)

// CreateAudio inserts a raw note pointing at an uploaded recording.
func (s *Store) CreateAudio(ctx context.Context, in notes.NewAudio) (*notes.Note, error) {
	if strings.TrimSpace(in.SourceRef) == "" {
		return nil, errors.New("audio note requires a source reference")
	}
	id := strings.TrimSpace(in.ID)
	if id == "" {
		id = uuid.NewString()
	}
	timestamp := formatTime(time.Now())
	_, err := s.execWithRetry(
		ctx,
		`INSERT INTO notes (
            id, title, status, source_ref, source_filename, tags, created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id,
		nullableString(strings.TrimSpace(in.Title)),
		notes.StatusRaw,
		in.SourceRef,
		nullableString(in.SourceFilename),
		notes.EncodeList(notes.CleanTags(in.Tags)),
		timestamp,
		timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("insert audio note: %w", err)
	}
	return s.GetByID(ctx, id)
}

// CreateText inserts an inline text note that starts at transcribed.
func (s *Store) CreateText(ctx context.Context, in notes.NewText) (*notes.Note, error) {
	id := uuid.NewString()
	timestamp := formatTime(time.Now())
	_, err := s.execWithRetry(
		ctx,
		`INSERT INTO notes (
            id, title, status, source_ref, transcript, tags, created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id,
		nullableString(strings.TrimSpace(in.Title)),
		notes.StatusTranscribed,
		notes.SourceTextInput,
		in.Content,
		notes.EncodeList(notes.CleanTags(in.Tags)),
		timestamp,
		timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("insert text note: %w", err)
	}
	return s.GetByID(ctx, id)
}

// GetByID fetches a note by identifier.
func (s *Store) GetByID(ctx context.Context, id string) (*notes.Note, error) {
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(ctx, `SELECT `+noteColumns+` FROM notes WHERE id = ?`, id)
	note, err := scanNote(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", notes.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get note: %w", err)
	}
	return note, nil
}

// List returns note summaries, newest first.
func (s *Store) List(ctx context.Context, offset, limit int) ([]notes.Summary, error) {
	ctx = ensureContext(ctx)
	offset, limit = notes.ClampPage(offset, limit)
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, title, status, created_at, tags FROM notes
        ORDER BY created_at DESC, seq DESC LIMIT ? OFFSET ?`,
		limit,
		offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	defer rows.Close()

	summaries := make([]notes.Summary, 0, limit)
	for rows.Next() {
		var (
			summary    notes.Summary
			title      sql.NullString
			status     string
			createdRaw string
			tags       sql.NullString
		)
		if err := rows.Scan(&summary.ID, &title, &status, &createdRaw, &tags); err != nil {
			return nil, fmt.Errorf("scan note summary: %w", err)
		}
		summary.Title = title.String
		summary.Status = notes.Status(status)
		summary.Tags = notes.DecodeList(tags.String)
		if created, err := parseTimeString(createdRaw); err == nil {
			summary.CreatedAt = created
		}
		summaries = append(summaries, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate notes: %w", err)
	}
	return summaries, nil
}

// Stats returns the number of notes in every status.
func (s *Store) Stats(ctx context.Context) (map[notes.Status]int, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM notes GROUP BY status`)
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
			count  int
		)
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("scan stats: %w", err)
		}
		stats[notes.Status(status)] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate stats: %w", err)
	}
	return stats, nil
}
