package testutil

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"mediakit/internal/media"
)

// MemFile represents a file in the in-memory filesystem.
type MemFile struct {
	Content     []byte
	ModTime     time.Time
	IsDirectory bool
}

// MemFilesystem is an in-memory media.Filesystem with failure injection.
// Set the *Err fields to make the matching operation fail.
type MemFilesystem struct {
	mu    sync.Mutex
	files map[string]*MemFile
	free  int64

	MkdirErr error
	CopyErr  error
	WriteErr error
	StatErr  error
}

// Compile-time check that MemFilesystem implements media.Filesystem interface
var _ media.Filesystem = (*MemFilesystem)(nil)

// NewMemFilesystem creates an empty filesystem that cannot report free space.
func NewMemFilesystem() *MemFilesystem {
	return &MemFilesystem{
		files: map[string]*MemFile{"/": {IsDirectory: true}},
		free:  -1,
	}
}

// AddFile adds a file, creating its parent directories.
func (m *MemFilesystem) AddFile(path string, content []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	path = filepath.Clean(path)
	m.mkdirAllLocked(filepath.Dir(path))
	m.files[path] = &MemFile{Content: append([]byte(nil), content...), ModTime: time.Now()}
}

// ReadFile returns the content of a file.
func (m *MemFilesystem) ReadFile(path string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.files[filepath.Clean(path)]
	if !ok || f.IsDirectory {
		return nil, false
	}
	return append([]byte(nil), f.Content...), true
}

// Paths lists every file and directory below root, sorted.
func (m *MemFilesystem) Paths(root string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	root = filepath.Clean(root)
	var out []string
	for p := range m.files {
		if rel, err := filepath.Rel(root, p); err == nil && rel != "." && !startsWithDotDot(rel) {
			out = append(out, p)
		}
	}
	sort.Strings(out)
	return out
}

// SetFreeSpace sets the value FreeSpace reports. -1 means unknown.
func (m *MemFilesystem) SetFreeSpace(n int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.free = n
}

func (m *MemFilesystem) Exists(path string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.files[filepath.Clean(path)]
	return ok, nil
}

func (m *MemFilesystem) MkdirAll(path string) error {
	if m.MkdirErr != nil {
		return m.MkdirErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if f, ok := m.files[filepath.Clean(path)]; ok && !f.IsDirectory {
		return fmt.Errorf("not a directory: %s", path)
	}
	m.mkdirAllLocked(filepath.Clean(path))
	return nil
}

func (m *MemFilesystem) Copy(src, dst string) error {
	if m.CopyErr != nil {
		return m.CopyErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	f, ok := m.files[filepath.Clean(src)]
	if !ok {
		return fmt.Errorf("file not found: %s", src)
	}
	if f.IsDirectory {
		return fmt.Errorf("source is not a regular file: %s", src)
	}
	if err := m.checkParentLocked(dst); err != nil {
		return err
	}
	m.files[filepath.Clean(dst)] = &MemFile{Content: append([]byte(nil), f.Content...), ModTime: time.Now()}
	return nil
}

func (m *MemFilesystem) Stat(path string) (fs.FileInfo, error) {
	if m.StatErr != nil {
		return nil, m.StatErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	path = filepath.Clean(path)
	f, ok := m.files[path]
	if !ok {
		return nil, fmt.Errorf("file not found: %s", path)
	}
	return &memFileInfo{name: filepath.Base(path), file: f}, nil
}

func (m *MemFilesystem) Open(path string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.files[filepath.Clean(path)]
	if !ok {
		return nil, fmt.Errorf("file not found: %s", path)
	}
	if f.IsDirectory {
		return nil, fmt.Errorf("cannot open directory: %s", path)
	}
	return io.NopCloser(bytes.NewReader(append([]byte(nil), f.Content...))), nil
}

func (m *MemFilesystem) WriteFile(path string, r io.Reader) (int64, error) {
	if m.WriteErr != nil {
		return 0, m.WriteErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return 0, fmt.Errorf("reading content: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkParentLocked(path); err != nil {
		return 0, err
	}
	m.files[filepath.Clean(path)] = &MemFile{Content: data, ModTime: time.Now()}
	return int64(len(data)), nil
}

func (m *MemFilesystem) FreeSpace(string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.free, nil
}

func (m *MemFilesystem) mkdirAllLocked(path string) {
	for p := path; ; p = filepath.Dir(p) {
		if _, ok := m.files[p]; !ok {
			m.files[p] = &MemFile{IsDirectory: true, ModTime: time.Now()}
		}
		if p == filepath.Dir(p) {
			return
		}
	}
}

func (m *MemFilesystem) checkParentLocked(path string) error {
	dir := filepath.Dir(filepath.Clean(path))
	if d, ok := m.files[dir]; !ok || !d.IsDirectory {
		return fmt.Errorf("parent directory does not exist: %s", dir)
	}
	return nil
}

func startsWithDotDot(rel string) bool {
	return rel == ".." || len(rel) > 2 && rel[:3] == ".."+string(filepath.Separator)
}

// memFileInfo implements fs.FileInfo
type memFileInfo struct {
	name string
	file *MemFile
}

func (i *memFileInfo) Name() string { return i.name }
func (i *memFileInfo) Size() int64  { return int64(len(i.file.Content)) }
func (i *memFileInfo) Mode() fs.FileMode {
	if i.file.IsDirectory {
		return fs.ModeDir | 0755
	}
	return 0644
}
func (i *memFileInfo) ModTime() time.Time { return i.file.ModTime }
func (i *memFileInfo) IsDir() bool        { return i.file.IsDirectory }
func (i *memFileInfo) Sys() any           { return i.file }
