package archive

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"path/filepath"
	"time"

	"notehub/internal/config"
	"notehub/internal/fileutil"
	"notehub/internal/logging"
	"notehub/internal/notes"
	"notehub/internal/preflight"
	"notehub/internal/services"
	"notehub/internal/stage"
)

const stageName = "archive"

// Archiver is the archive stage handler.
type Archiver struct {
	vaultDir string
	now      func() time.Time
	logger   *slog.Logger
}

// NewArchiver constructs the archive stage writing into cfg.Paths.VaultDir.
func NewArchiver(cfg *config.Config, logger *slog.Logger) *Archiver {
	return NewArchiverWithClock(cfg.Paths.VaultDir, time.Now, logger)
}

// NewArchiverWithClock allows pinning the archive date (used in tests).
func NewArchiverWithClock(vaultDir string, now func() time.Time, logger *slog.Logger) *Archiver {
	if logger == nil {
		logger = logging.NewNop()
	}
	if now == nil {
		now = time.Now
	}
	return &Archiver{
		vaultDir: vaultDir,
		now:      now,
		logger:   logger.With(logging.String(logging.FieldComponent, stageName)),
	}
}

// Execute writes the note into the vault and records the final path.
func (a *Archiver) Execute(ctx context.Context, note *notes.Note) (notes.Changes, error) {
	logger := logging.WithContext(ctx, a.logger)
	if err := ctx.Err(); err != nil {
		return notes.Changes{}, abandoned(err)
	}

	content, err := Render(note)
	if err != nil {
		return notes.Changes{}, services.Wrap(services.ErrValidation, stageName, "render", "", err)
	}

	target := filepath.Join(a.vaultDir, RelativePath(note, a.now()))
	if err := fileutil.WriteFileAtomic(ctx, target, content, 0o644); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
			return notes.Changes{}, abandoned(err)
		}
		marker := services.ErrTransient
		hint := "check free space in the vault"
		if errors.Is(err, fs.ErrPermission) {
			marker = services.ErrConfiguration
			hint = "make paths.vault_dir writable by the daemon user"
		}
		return notes.Changes{}, services.WithHint(
			services.Wrap(marker, stageName, "write", "Could not write "+target, err),
			hint,
		)
	}

	logger.Info("note archived",
		logging.String("archive_path", target),
		logging.Int("bytes", len(content)),
	)
	return notes.Changes{ArchivePath: &target}, nil
}

// abandoned reports a write skipped because the stage was cancelled or timed
// out; the vault is left untouched.
func abandoned(err error) error {
	return services.Wrap(services.ErrTimeout, stageName, "write", "Archive write abandoned", err)
}

// HealthCheck verifies the vault is writable.
func (a *Archiver) HealthCheck(context.Context) stage.Health {
	if result := preflight.CheckDirectoryAccess("vault", a.vaultDir); !result.Passed {
		return stage.Unhealthy(stageName, result.Detail)
	}
	return stage.Healthy(stageName)
}
