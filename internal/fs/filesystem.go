package fs

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"mediakit/internal/media"
)

// OSFilesystem is the real filesystem implementation of media.Filesystem.
type OSFilesystem struct {
	dirPerm  fs.FileMode
	filePerm fs.FileMode
}

// NewOSFilesystem creates a filesystem that operates on the real disk.
func NewOSFilesystem() *OSFilesystem {
	return &OSFilesystem{dirPerm: 0755, filePerm: 0644}
}

// Exists reports whether path exists.
func (m *OSFilesystem) Exists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("stat path: %w", err)
}

// MkdirAll creates path and any missing parents.
func (m *OSFilesystem) MkdirAll(path string) error {
	return os.MkdirAll(path, m.dirPerm)
}

// Copy copies the regular file at src to dst.
func (m *OSFilesystem) Copy(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("source is not a regular file: %s", src)
	}

	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening source: %w", err)
	}
	defer in.Close()

	if _, err := m.WriteFile(dst, in); err != nil {
		return err
	}
	return nil
}

// Stat returns fresh file info for path.
func (m *OSFilesystem) Stat(path string) (fs.FileInfo, error) {
	return os.Stat(path)
}

// Open opens a file for reading.
func (m *OSFilesystem) Open(path string) (io.ReadCloser, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("cannot open directory as file: %s", path)
	}
	return os.Open(path)
}

// WriteFile writes r to path using a temp file in the same directory and an
// atomic rename.
func (m *OSFilesystem) WriteFile(path string, r io.Reader) (int64, error) {
	dir := filepath.Dir(path)
	tmpFile, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return 0, fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	written, err := io.Copy(tmpFile, r)
	if err != nil {
		tmpFile.Close()
		return 0, fmt.Errorf("writing data: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return 0, fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, m.filePerm); err != nil {
		return 0, fmt.Errorf("setting permissions: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return 0, fmt.Errorf("renaming temp file: %w", err)
	}

	success = true
	return written, nil
}

// Compile-time check that OSFilesystem implements media.Filesystem
var _ media.Filesystem = (*OSFilesystem)(nil)
