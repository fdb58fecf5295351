package media

import (
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"strings"
)

var categories = map[MediaType]string{
	TypeImage:    "images",
	TypeAudio:    "audio",
	TypeVideo:    "videos",
	TypeDocument: "documents",
}

// Layout derives local file paths per media category under the app's
// private document root.
//
//	<root>/
//	  audio/       recording_<millis>.m4a
//	  images/
//	  videos/
//	  documents/
type Layout struct {
	root  string
	fsys  Filesystem
	clock Clock
}

// NewLayout creates a Layout rooted at root.
func NewLayout(root string, fsys Filesystem, clock Clock) *Layout {
	return &Layout{root: root, fsys: fsys, clock: clock}
}

// Root returns the document root.
func (l *Layout) Root() string {
	return l.root
}

// ResolveDirectory returns the directory for t, creating it if absent.
// Calling it repeatedly returns the same directory.
func (l *Layout) ResolveDirectory(t MediaType) (string, error) {
	category, ok := categories[t]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedMediaType, t)
	}
	dir := filepath.Join(l.root, category)

	exists, err := l.fsys.Exists(dir)
	if err != nil {
		return "", fmt.Errorf("checking directory %s: %w", dir, err)
	}
	if !exists {
		if err := l.fsys.MkdirAll(dir); err != nil {
			return "", fmt.Errorf("creating directory %s: %w", dir, err)
		}
	}
	return dir, nil
}

// ResolveFileName picks the local file name for a new artifact.
// Captured audio (empty source) gets a timestamp name. Downloads use the
// trailing segment of the source URL and fall back to a timestamp name when
// the URL has none. Two downloads whose URLs end in the same segment resolve
// to the same name; the later one overwrites the earlier.
func (l *Layout) ResolveFileName(t MediaType, source string) string {
	if source != "" {
		if name := trailingSegment(source); name != "" {
			return name
		}
	}
	return l.timestampName(t, source == "")
}

// ResolveLocalName picks the name for a file imported from a local path.
// The base name is kept as is; it is never read as a URL.
func (l *Layout) ResolveLocalName(t MediaType, localPath string) string {
	name := filepath.Base(localPath)
	if name == "." || name == ".." || name == string(filepath.Separator) {
		return l.timestampName(t, false)
	}
	return name
}

func (l *Layout) timestampName(t MediaType, captured bool) string {
	millis := l.clock.Now().UnixMilli()
	if t == TypeAudio && captured {
		return fmt.Sprintf("recording_%d%s", millis, t.Extension())
	}
	return fmt.Sprintf("%s_%d%s", t, millis, t.Extension())
}

// trailingSegment returns the last non-empty path segment of a URL,
// unescaped. Escaped '#', '?' and '%' survive as part of the name.
func trailingSegment(raw string) string {
	p := raw
	if u, err := url.Parse(raw); err == nil {
		p = u.Path
		if u.Opaque != "" {
			if op, err := url.PathUnescape(u.Opaque); err == nil {
				p = op
			} else {
				p = u.Opaque
			}
		}
	} else if i := strings.IndexAny(raw, "?#"); i >= 0 {
		p = raw[:i]
	}
	p = strings.TrimRight(p, "/")
	if p == "" {
		return ""
	}
	name := path.Base(p)
	if name == "." || name == "/" || name == ".." {
		return ""
	}
	return name
}
