package media

import "context"

// LibraryCapabilities describes what the device media library can do.
type LibraryCapabilities struct {
	// DirectAudioSave is true when audio files can be saved like images.
	// Otherwise audio must be registered as an asset and grouped into an album.
	DirectAudioSave bool
}

// Asset is a file registered with the device media library.
type Asset struct {
	ID  string
	URI string
}

// Library is the device's shared media gallery.
type Library interface {
	Capabilities() LibraryCapabilities
	SaveToLibrary(ctx context.Context, localPath string) error
	CreateAsset(ctx context.Context, localPath string) (*Asset, error)

	// AddToAlbum groups asset into the named album, creating it if needed.
	AddToAlbum(ctx context.Context, album string, asset *Asset) error
}
