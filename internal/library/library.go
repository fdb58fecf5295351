// Package library implements the device media library on a host directory.
//
//	<root>/
//	  DCIM/            direct saves
//	  assets/<id>/     registered assets
//	  albums/<name>/   album membership, one copy per asset
package library

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"mediakit/internal/media"
)

// Platform selects which library API the directory library imitates.
type Platform string

const (
	// PlatformIOS saves audio directly like images and videos.
	PlatformIOS Platform = "ios"
	// PlatformAndroid only accepts audio as an asset grouped into an album.
	PlatformAndroid Platform = "android"
)

// ParsePlatform validates a configured platform name.
func ParsePlatform(s string) (Platform, error) {
	switch p := Platform(strings.ToLower(s)); p {
	case PlatformIOS, PlatformAndroid:
		return p, nil
	default:
		return "", fmt.Errorf("unknown library platform: %q", s)
	}
}

// DirectoryLibrary is a media.Library backed by a directory tree.
type DirectoryLibrary struct {
	root     string
	platform Platform
	fsys     media.Filesystem
	ids      media.IDGenerator
	logger   media.Logger
}

// Compile-time check that DirectoryLibrary implements media.Library interface
var _ media.Library = (*DirectoryLibrary)(nil)

// NewDirectoryLibrary creates a library rooted at root.
func NewDirectoryLibrary(root string, platform Platform, fsys media.Filesystem, ids media.IDGenerator, logger media.Logger) *DirectoryLibrary {
	return &DirectoryLibrary{root: root, platform: platform, fsys: fsys, ids: ids, logger: logger}
}

func (l *DirectoryLibrary) Capabilities() media.LibraryCapabilities {
	return media.LibraryCapabilities{DirectAudioSave: l.platform == PlatformIOS}
}

// SaveToLibrary copies localPath into the camera roll directory.
func (l *DirectoryLibrary) SaveToLibrary(ctx context.Context, localPath string) error {
	dest, err := l.place(filepath.Join(l.root, "DCIM"), localPath)
	if err != nil {
		return err
	}
	l.logger.Info("saved to library", "path", dest)
	return nil
}

// CreateAsset registers localPath as a new asset.
func (l *DirectoryLibrary) CreateAsset(ctx context.Context, localPath string) (*media.Asset, error) {
	id := l.ids.New()
	dest, err := l.place(filepath.Join(l.root, "assets", id), localPath)
	if err != nil {
		return nil, err
	}
	return &media.Asset{ID: id, URI: dest}, nil
}

// AddToAlbum copies the asset into the album directory, creating the album
// on first use.
func (l *DirectoryLibrary) AddToAlbum(ctx context.Context, album string, asset *media.Asset) error {
	name := strings.TrimSpace(album)
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return fmt.Errorf("invalid album name: %q", album)
	}
	if asset == nil || asset.URI == "" {
		return fmt.Errorf("adding to album %q: asset has no uri", name)
	}

	dir := filepath.Join(l.root, "albums", name)
	dest := filepath.Join(dir, asset.ID+"_"+filepath.Base(asset.URI))
	if err := l.fsys.MkdirAll(dir); err != nil {
		return fmt.Errorf("creating album %q: %w", name, err)
	}
	if err := l.fsys.Copy(asset.URI, dest); err != nil {
		return fmt.Errorf("adding asset %s to album %q: %w", asset.ID, name, err)
	}
	l.logger.Info("asset added to album", "album", name, "asset", asset.ID)
	return nil
}

// AlbumPath returns the directory holding an album.
func (l *DirectoryLibrary) AlbumPath(album string) string {
	return filepath.Join(l.root, "albums", album)
}

func (l *DirectoryLibrary) place(dir, src string) (string, error) {
	if err := l.fsys.MkdirAll(dir); err != nil {
		return "", fmt.Errorf("creating library directory: %w", err)
	}
	dest := filepath.Join(dir, filepath.Base(src))
	if err := l.fsys.Copy(src, dest); err != nil {
		return "", fmt.Errorf("copying %s into library: %w", src, err)
	}
	return dest, nil
}
