package stage

import (
	"errors"
	"io/fs"
	"os"
	"strings"

	"notehub/internal/services"
)

// RequireSourceFile checks that a note's source file exists and is a regular file.
// On failure it returns a services.ErrValidation suitable for stage Execute methods.
func RequireSourceFile(stageName, path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return services.Wrap(services.ErrValidation, stageName, "locate source",
			"Note has no source file", nil)
	}
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return services.WithHint(services.Wrap(services.ErrValidation, stageName, "locate source",
				"Source file missing: "+path, err), "Re-upload the recording")
		}
		return services.Wrap(services.ErrValidation, stageName, "locate source",
			"Source file unreadable: "+path, err)
	}
	if info.IsDir() {
		return services.Wrap(services.ErrValidation, stageName, "locate source",
			"Source path is a directory: "+path, nil)
	}
	return nil
}

// Ptr returns a pointer to v, for populating notes.Changes.
func Ptr[T any](v T) *T {
	return &v
}
