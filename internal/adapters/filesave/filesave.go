package filesave

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// ErrInvalidName is returned for names that do not denote a plain file.
var ErrInvalidName = errors.New("invalid file name")

// DiskSaver writes artifacts into a directory.
type DiskSaver struct {
	Dir string
}

// NewDiskSaver creates a saver rooted at dir ("" means the working directory).
func NewDiskSaver(dir string) *DiskSaver {
	if dir == "" {
		dir = "."
	}
	return &DiskSaver{Dir: dir}
}

// Save writes data to Dir/name atomically.
// PRE: name is a bare file name; any directory part is discarded
// POST: the file exists with the full content, or no file was created; returns its path
func (s *DiskSaver) Save(name, contentType string, data []byte) (string, error) {
	base, err := cleanName(name)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp(s.Dir, ".evenex-*.tmp")
	if err != nil {
		return "", err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return "", err
	}

	path := filepath.Join(s.Dir, base)
	if err := os.Rename(tmpName, path); err != nil {
		return "", err
	}
	slog.Debug("file_saved", "path", path, "content_type", contentType, "bytes", len(data))
	return path, nil
}

// WriterSaver streams artifacts to a writer, typically stdout.
type WriterSaver struct {
	W io.Writer
}

// Save writes data to the writer and reports "-" as the path.
func (s WriterSaver) Save(name, _ string, data []byte) (string, error) {
	if _, err := cleanName(name); err != nil {
		return "", err
	}
	if _, err := s.W.Write(data); err != nil {
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	return "-", nil
}

func cleanName(name string) (string, error) {
	base := filepath.Base(strings.TrimSpace(name))
	if base == "" || base == "." || base == ".." || base == string(filepath.Separator) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return base, nil
}
