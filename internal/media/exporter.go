package media

import (
	"context"
	"fmt"
)

// DefaultAudioAlbum is the album voice notes are grouped into on libraries
// without direct audio saves.
const DefaultAudioAlbum = "Audio"

// AudioExportStrategy saves an audio file into the device library.
// The strategy is chosen once from the library's capabilities.
type AudioExportStrategy interface {
	ExportAudio(ctx context.Context, lib Library, localPath string) error
}

// directAudioStrategy saves audio the same way as images and videos.
type directAudioStrategy struct{}

func (directAudioStrategy) ExportAudio(ctx context.Context, lib Library, localPath string) error {
	if err := lib.SaveToLibrary(ctx, localPath); err != nil {
		return fmt.Errorf("saving audio to library: %w", err)
	}
	return nil
}

// albumAudioStrategy registers the file as an asset and then groups it into
// an album. The export only succeeds when both steps do.
type albumAudioStrategy struct {
	album string
}

func (s albumAudioStrategy) ExportAudio(ctx context.Context, lib Library, localPath string) error {
	asset, err := lib.CreateAsset(ctx, localPath)
	if err != nil {
		return fmt.Errorf("creating library asset: %w", err)
	}
	if err := lib.AddToAlbum(ctx, s.album, asset); err != nil {
		return fmt.Errorf("adding asset %s to album %q: %w", asset.ID, s.album, err)
	}
	return nil
}

// SelectAudioStrategy picks the audio export path for a library.
func SelectAudioStrategy(caps LibraryCapabilities, album string) AudioExportStrategy {
	if caps.DirectAudioSave {
		return directAudioStrategy{}
	}
	if album == "" {
		album = DefaultAudioAlbum
	}
	return albumAudioStrategy{album: album}
}

// Exporter copies MediaFile records into the device's shared media library.
type Exporter struct {
	perms  Permissions
	lib    Library
	audio  AudioExportStrategy
	logger Logger
}

// NewExporter creates an Exporter whose audio strategy is selected from the
// library's capabilities.
func NewExporter(perms Permissions, lib Library, album string, logger Logger) *Exporter {
	return &Exporter{
		perms:  perms,
		lib:    lib,
		audio:  SelectAudioStrategy(lib.Capabilities(), album),
		logger: logger,
	}
}

// Export saves f into the device library. Documents are rejected with
// ErrUnsupportedMediaType since no media library accepts them.
func (e *Exporter) Export(ctx context.Context, f *MediaFile) error {
	if f.Type == TypeDocument {
		return fmt.Errorf("exporting %s: %w: %s", f.Name, ErrUnsupportedMediaType, f.Type)
	}
	if !f.HasLocalCopy() {
		return fmt.Errorf("exporting %s: %w", f.Name, ErrNoLocalCopy)
	}

	granted, err := e.perms.Request(ctx, PermissionLibraryWrite)
	if err != nil {
		return fmt.Errorf("requesting library permission: %w", err)
	}
	if !granted {
		return fmt.Errorf("media library: %w", ErrPermissionDenied)
	}

	switch f.Type {
	case TypeImage, TypeVideo:
		if err := e.lib.SaveToLibrary(ctx, f.LocalPath); err != nil {
			return fmt.Errorf("saving %s to library: %w", f.Type, err)
		}
	case TypeAudio:
		if err := e.audio.ExportAudio(ctx, e.lib, f.LocalPath); err != nil {
			return err
		}
	default:
		return fmt.Errorf("exporting %s: %w: %s", f.Name, ErrUnsupportedMediaType, f.Type)
	}

	e.logger.Info("media exported", "id", f.ID, "type", string(f.Type))
	return nil
}
