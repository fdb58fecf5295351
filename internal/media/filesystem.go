package media

import (
	"io"
	"io/fs"
)

// Filesystem abstracts the local file operations the pipeline needs so the
// layout and transfer logic can be tested against failure injection.
type Filesystem interface {
	// Exists reports whether path exists.
	Exists(path string) (bool, error)

	// MkdirAll creates path and any missing parents. Safe to call repeatedly.
	MkdirAll(path string) error

	// Copy copies the regular file at src to dst, replacing dst.
	Copy(src, dst string) error

	// Stat returns fresh file info for path.
	Stat(path string) (fs.FileInfo, error)

	// Open opens a file for reading.
	Open(path string) (io.ReadCloser, error)

	// WriteFile writes everything read from r to path using a temp file and
	// rename, so a failed write never leaves a partial file behind.
	// Returns the number of bytes written.
	WriteFile(path string, r io.Reader) (int64, error)

	// FreeSpace returns the bytes available to the current user on the
	// filesystem holding path, or -1 when the platform cannot tell.
	FreeSpace(path string) (int64, error)
}
