package fileutil

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// WriteFileAtomic writes data to path through a temp file in the same
// directory followed by a rename, so readers never observe a partial file.
// Nothing is renamed into place once ctx is done.
func WriteFileAtomic(ctx context.Context, path string, data []byte, mode os.FileMode) error {
	_, err := WriteReaderAtomic(ctx, path, bytes.NewReader(data), mode)
	return err
}

// WriteReaderAtomic streams r into path the same way as WriteFileAtomic and
// returns the number of bytes written. The temp file is removed on any error.
func WriteReaderAtomic(ctx context.Context, path string, r io.Reader, mode os.FileMode) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("ensure dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return 0, fmt.Errorf("create temp: %w", err)
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	written, err := io.Copy(tmp, r)
	if err != nil {
		return written, fmt.Errorf("write temp: %w", err)
	}
	if err := tmp.Chmod(mode); err != nil {
		return written, fmt.Errorf("chmod temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return written, fmt.Errorf("sync temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return written, fmt.Errorf("close temp: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return written, err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		committed = true
		return written, fmt.Errorf("rename: %w", err)
	}
	committed = true
	return written, nil
}
