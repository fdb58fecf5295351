package store

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"mediakit/internal/media"
)

// FileSystemStore is a filesystem-based implementation of the media.RemoteStore
// interface, for hosts where the "remote" store is a mounted share.
// Objects are stored under their key:
//
//	<root>/
//	  <type>/
//	    <millis>_<name>
//
// and are addressed by file:// URLs.
type FileSystemStore struct {
	name string
	root string
}

// NewFileSystemStore creates a new filesystem store rooted at the given path.
func NewFileSystemStore(name, root string) (*FileSystemStore, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving store root: %w", err)
	}
	if err := os.MkdirAll(abs, 0755); err != nil {
		return nil, fmt.Errorf("failed to create store root: %w", err)
	}
	return &FileSystemStore{name: name, root: abs}, nil
}

// Put writes r to <root>/<key> atomically and returns its file:// URL.
func (v *FileSystemStore) Put(ctx context.Context, key string, r io.Reader, contentType string) (string, error) {
	destPath, err := v.objectPath(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return "", fmt.Errorf("failed to create object directory: %w", err)
	}
	if err := v.writeFile(ctx, destPath, r); err != nil {
		return "", err
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(destPath)}
	return u.String(), nil
}

// Open opens the object addressed by a file:// URL inside the store root.
func (v *FileSystemStore) Open(ctx context.Context, rawURL string) (*media.RemoteObject, error) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme != "file" {
		return nil, fmt.Errorf("url not served by store %q: %s", v.name, rawURL)
	}
	srcPath := filepath.Clean(filepath.FromSlash(u.Path))
	if !v.contains(srcPath) {
		return nil, fmt.Errorf("url outside store root: %s", rawURL)
	}

	f, err := os.Open(srcPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("object not found: %s", rawURL)
		}
		return nil, fmt.Errorf("failed to open object: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat object: %w", err)
	}
	return &media.RemoteObject{Body: f, ContentLength: info.Size()}, nil
}

// ValidateSetup verifies that the store root is an accessible directory.
func (v *FileSystemStore) ValidateSetup(context.Context) error {
	info, err := os.Stat(v.root)
	if err != nil {
		return fmt.Errorf("store root not accessible: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("store root is not a directory: %s", v.root)
	}
	return nil
}

func (v *FileSystemStore) objectPath(key string) (string, error) {
	p := filepath.Join(v.root, filepath.FromSlash(key))
	if !v.contains(p) || p == v.root {
		return "", fmt.Errorf("invalid object key: %q", key)
	}
	return p, nil
}

func (v *FileSystemStore) contains(p string) bool {
	return p == v.root || strings.HasPrefix(p, v.root+string(filepath.Separator))
}

// writeFile writes data from r to the specified path using atomic write (temp file + rename).
func (v *FileSystemStore) writeFile(ctx context.Context, destPath string, r io.Reader) error {
	dir := filepath.Dir(destPath)
	tmpFile, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	// Clean up temp file on failure
	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := io.Copy(tmpFile, r); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to write data: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	success = true
	return nil
}

// Compile-time check that FileSystemStore implements media.RemoteStore interface
var _ media.RemoteStore = (*FileSystemStore)(nil)
