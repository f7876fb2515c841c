package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"notehub/internal/config"
	"notehub/internal/fileutil"
	"notehub/internal/logging"
	"notehub/internal/notes"
	"notehub/internal/services"
	"notehub/internal/textutil"
)

// defaultAudioExt is used when an upload carries no usable extension.
const defaultAudioExt = ".wav"

// Service accepts new notes and hands them to the pipeline.
type Service struct {
	store    notes.Store
	inboxDir string
	logger   *slog.Logger
	newID    func() string
}

// NewService constructs an ingest service writing uploads to cfg.Paths.InboxDir.
func NewService(cfg *config.Config, store notes.Store, logger *slog.Logger) (*Service, error) {
	if cfg == nil || store == nil {
		return nil, errors.New("ingest requires config and store")
	}
	if strings.TrimSpace(cfg.Paths.InboxDir) == "" {
		return nil, errors.New("ingest requires paths.inbox_dir")
	}
	return &Service{
		store:    store,
		inboxDir: cfg.Paths.InboxDir,
		logger:   logging.NewComponentLogger(logger, "ingest"),
		newID:    uuid.NewString,
	}, nil
}

// AudioUpload describes an uploaded recording.
type AudioUpload struct {
	Filename string
	Body     io.Reader
	Title    string
	Tags     []string
}

// AddAudio stores the recording in the inbox as <id><ext> and creates a raw
// note pointing at it. The file is removed again if the insert fails.
func (s *Service) AddAudio(ctx context.Context, upload AudioUpload) (*notes.Note, error) {
	if upload.Body == nil {
		return nil, services.Wrap(services.ErrValidation, "ingest", "read upload", "Upload has no body", nil)
	}
	id := s.newID()
	target := filepath.Join(s.inboxDir, id+audioExt(upload.Filename))

	written, err := fileutil.WriteReaderAtomic(ctx, target, upload.Body, 0o644)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "ingest", "save upload", "Could not save upload", err)
	}
	if written == 0 {
		_ = os.Remove(target)
		return nil, services.Wrap(services.ErrValidation, "ingest", "read upload", "Upload is empty", nil)
	}

	original := textutil.SanitizeFileName(filepath.Base(upload.Filename))
	if original == "" || original == "." {
		original = "unknown"
	}
	note, err := s.store.CreateAudio(ctx, notes.NewAudio{
		ID:             id,
		Title:          strings.TrimSpace(upload.Title),
		SourceRef:      target,
		SourceFilename: original,
		Tags:           notes.CleanTags(upload.Tags),
	})
	if err != nil {
		if rmErr := os.Remove(target); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			s.logger.Warn("failed to remove orphaned upload",
				logging.String("path", target),
				logging.Error(rmErr),
			)
		}
		return nil, fmt.Errorf("create audio note: %w", err)
	}

	s.logger.Info("audio note received",
		logging.String(logging.FieldNoteID, note.ID),
		logging.String("source_filename", original),
		logging.Int64("bytes", written),
	)
	return note, nil
}

// TextInput describes an inline text note.
type TextInput struct {
	Title   string
	Content string
	Tags    []string
}

// AddText creates a transcribed note that skips the transcription stage.
func (s *Service) AddText(ctx context.Context, in TextInput) (*notes.Note, error) {
	if strings.TrimSpace(in.Content) == "" {
		return nil, services.Wrap(services.ErrValidation, "ingest", "read text", "Text note content is empty", nil)
	}
	note, err := s.store.CreateText(ctx, notes.NewText{
		Title:   strings.TrimSpace(in.Title),
		Content: in.Content,
		Tags:    notes.CleanTags(in.Tags),
	})
	if err != nil {
		return nil, fmt.Errorf("create text note: %w", err)
	}
	s.logger.Info("text note received",
		logging.String(logging.FieldNoteID, note.ID),
		logging.Int("chars", len([]rune(in.Content))),
	)
	return note, nil
}

func audioExt(filename string) string {
	ext := strings.ToLower(filepath.Ext(strings.TrimSpace(filename)))
	if len(ext) < 2 || len(ext) > 8 {
		return defaultAudioExt
	}
	for _, r := range ext[1:] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return defaultAudioExt
		}
	}
	return ext
}
