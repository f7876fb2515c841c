package logs

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"notehub/internal/config"
	"notehub/internal/logging"
)

const (
	defaultPollInterval = 250 * time.Millisecond
	maxLineBytes        = 1024 * 1024
)

// TailOptions controls Tail.
type TailOptions struct {
	// Lines is how many trailing lines to emit first; zero emits none.
	Lines int
	// Follow keeps reading appended lines until ctx is cancelled.
	Follow       bool
	PollInterval time.Duration
}

// Path returns the daemon log file for cfg.
func Path(cfg *config.Config) string {
	return filepath.Join(cfg.Paths.LogDir, logging.FileName)
}

// Tail emits the last opts.Lines lines of path and, with opts.Follow, every
// line appended afterwards. A missing file yields no lines; when following,
// Tail waits for it to appear. A file that shrinks is read again from the
// start. Cancelling ctx while following returns nil.
func Tail(ctx context.Context, path string, opts TailOptions, emit func(string) error) error {
	interval := opts.PollInterval
	if interval <= 0 {
		interval = defaultPollInterval
	}

	lines, offset, err := lastLines(path, opts.Lines)
	if err != nil {
		return err
	}
	for _, line := range lines {
		if err := emit(line); err != nil {
			return err
		}
	}
	if !opts.Follow {
		return nil
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		size, err := fileSize(path)
		if err != nil {
			return err
		}
		if size < offset {
			offset = 0
		}
		if size == offset {
			continue
		}
		lines, next, err := readFrom(path, offset)
		if err != nil {
			return err
		}
		offset = next
		for _, line := range lines {
			if err := emit(line); err != nil {
				return err
			}
		}
	}
}

func fileSize(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return 0, fmt.Errorf("stat log file: %w", err)
	}
	if info.IsDir() {
		return 0, fmt.Errorf("log path %q is a directory", path)
	}
	return info.Size(), nil
}

// lastLines returns up to limit trailing complete lines and the offset just
// past them.
func lastLines(path string, limit int) ([]string, int64, error) {
	size, err := fileSize(path)
	if err != nil || size == 0 {
		return nil, 0, err
	}
	if limit <= 0 {
		return nil, size, nil
	}

	all, offset, err := readFrom(path, 0)
	if err != nil {
		return nil, 0, err
	}
	if len(all) > limit {
		all = all[len(all)-limit:]
	}
	return all, offset, nil
}

// readFrom returns the complete lines after offset. A trailing partial line
// is left for the next read.
func readFrom(path string, offset int64) ([]string, int64, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, offset, nil
		}
		return nil, offset, fmt.Errorf("open log file: %w", err)
	}
	defer file.Close()

	if _, err := file.Seek(offset, io.SeekStart); err != nil {
		return nil, offset, fmt.Errorf("seek log file: %w", err)
	}

	reader := bufio.NewReaderSize(file, 64*1024)
	var lines []string
	for {
		chunk, err := reader.ReadString('\n')
		if err != nil {
			if errors.Is(err, io.EOF) {
				return lines, offset, nil
			}
			return nil, offset, fmt.Errorf("read log file: %w", err)
		}
		offset += int64(len(chunk))
		line := chunk[:len(chunk)-1]
		if len(line) > maxLineBytes {
			line = line[:maxLineBytes]
		}
		if n := len(line); n > 0 && line[n-1] == '\r' {
			line = line[:n-1]
		}
		lines = append(lines, line)
	}
}
