package testutil

import (
	"context"
	"fmt"
	"sync"

	"mediakit/internal/media"
)

// FakeLibrary records what the exporter asks of the device library.
type FakeLibrary struct {
	mu sync.Mutex

	Caps     media.LibraryCapabilities
	SaveErr  error
	AssetErr error
	AlbumErr error

	Saved  []string
	Assets []*media.Asset
	Albums map[string][]string
}

// Compile-time check that FakeLibrary implements media.Library interface
var _ media.Library = (*FakeLibrary)(nil)

// NewFakeLibrary creates a FakeLibrary with the given capabilities.
func NewFakeLibrary(caps media.LibraryCapabilities) *FakeLibrary {
	return &FakeLibrary{Caps: caps, Albums: make(map[string][]string)}
}

func (l *FakeLibrary) Capabilities() media.LibraryCapabilities { return l.Caps }

func (l *FakeLibrary) SaveToLibrary(ctx context.Context, localPath string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.SaveErr != nil {
		return l.SaveErr
	}
	l.Saved = append(l.Saved, localPath)
	return nil
}

func (l *FakeLibrary) CreateAsset(ctx context.Context, localPath string) (*media.Asset, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.AssetErr != nil {
		return nil, l.AssetErr
	}
	a := &media.Asset{ID: fmt.Sprintf("asset-%d", len(l.Assets)+1), URI: localPath}
	l.Assets = append(l.Assets, a)
	return a, nil
}

func (l *FakeLibrary) AddToAlbum(ctx context.Context, album string, asset *media.Asset) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.AlbumErr != nil {
		return l.AlbumErr
	}
	l.Albums[album] = append(l.Albums[album], asset.ID)
	return nil
}
