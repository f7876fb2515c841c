package api

import (
	"context"
	"errors"

	"notehub/internal/notes"
)

// NoteReader abstracts store interactions needed for API queries.
type NoteReader interface {
	List(ctx context.Context, offset, limit int) ([]notes.Summary, error)
	Stats(ctx context.Context) (map[notes.Status]int, error)
	GetByID(ctx context.Context, id string) (*notes.Note, error)
}

// NoteService exposes read-only note operations returning API DTOs.
type NoteService struct {
	store NoteReader
}

// NewNoteService constructs a NoteService around the provided reader.
func NewNoteService(store NoteReader) *NoteService {
	if store == nil {
		return nil
	}
	return &NoteService{store: store}
}

// List returns one page of notes, newest first.
func (s *NoteService) List(ctx context.Context, offset, limit int) (NoteListResponse, error) {
	offset, limit = notes.ClampPage(offset, limit)
	resp := NoteListResponse{Notes: []NoteSummary{}, Offset: offset, Limit: limit}
	if s == nil || s.store == nil {
		return resp, nil
	}
	summaries, err := s.store.List(ctx, offset, limit)
	if err != nil {
		return resp, err
	}
	resp.Notes = FromSummaries(summaries)
	return resp, nil
}

// Stats returns note counts keyed by status string.
func (s *NoteService) Stats(ctx context.Context) (map[string]int, error) {
	if s == nil || s.store == nil {
		return MergeNoteStats(nil), nil
	}
	stats, err := s.store.Stats(ctx)
	if err != nil {
		return nil, err
	}
	return MergeNoteStats(stats), nil
}

// Describe fetches a single note. A missing note returns nil, nil.
func (s *NoteService) Describe(ctx context.Context, id string) (*Note, error) {
	if s == nil || s.store == nil {
		return nil, nil
	}
	note, err := s.store.GetByID(ctx, id)
	if errors.Is(err, notes.ErrNotFound) {
		return nil, nil
	}
	if err != nil || note == nil {
		return nil, err
	}
	dto := FromNote(note)
	return &dto, nil
}
