package media

import (
	"context"
	"fmt"
	"path/filepath"
)

// Deps holds the collaborators a Pipeline is built from.
// Logger, Clock, IDs and Picker fall back to defaults when nil.
type Deps struct {
	DocumentRoot string
	Filesystem   Filesystem
	Permissions  Permissions
	Audio        AudioSession
	Player       Player
	Store        RemoteStore
	Sealer       Sealer
	Library      Library
	AudioAlbum   string
	Picker       ImagePicker
	Registry     Registry
	Logger       Logger
	Clock        Clock
	IDs          IDGenerator
}

// Pipeline is the orchestration layer the UI talks to. It coordinates the
// recorder, transfer service, exporter and playback, and records every
// MediaFile it produces in the registry.
type Pipeline struct {
	layout   *Layout
	builder  *Builder
	recorder *Recorder
	transfer *TransferService
	exporter *Exporter
	playback *Playback
	picker   ImagePicker
	registry Registry
	fsys     Filesystem
	logger   Logger
}

// NewPipeline wires the pipeline components from d.
func NewPipeline(d Deps) *Pipeline {
	if d.Logger == nil {
		d.Logger = NewNopLogger()
	}
	if d.Clock == nil {
		d.Clock = RealClock{}
	}
	if d.IDs == nil {
		d.IDs = UUIDGenerator{}
	}
	if d.Picker == nil {
		d.Picker = UnavailablePicker{}
	}

	layout := NewLayout(d.DocumentRoot, d.Filesystem, d.Clock)
	builder := NewBuilder(d.Filesystem, d.Clock, d.IDs)

	return &Pipeline{
		layout:   layout,
		builder:  builder,
		recorder: NewRecorder(d.Permissions, d.Audio, layout, builder, d.Filesystem, d.Logger, d.Clock),
		transfer: NewTransferService(d.Store, d.Sealer, layout, builder, d.Filesystem, d.Logger, d.Clock),
		exporter: NewExporter(d.Permissions, d.Library, d.AudioAlbum, d.Logger),
		playback: NewPlayback(d.Player, d.Logger),
		picker:   d.Picker,
		registry: d.Registry,
		fsys:     d.Filesystem,
		logger:   d.Logger,
	}
}

// Layout exposes the local storage layout.
func (p *Pipeline) Layout() *Layout {
	return p.layout
}

// StartRecording begins a voice capture.
func (p *Pipeline) StartRecording(ctx context.Context) (RecordingState, error) {
	return p.recorder.Start(ctx)
}

// StopRecording finalizes the capture and registers the resulting file.
func (p *Pipeline) StopRecording(ctx context.Context) (*MediaFile, error) {
	f, err := p.recorder.Stop(ctx)
	if err != nil {
		return nil, err
	}
	if err := p.registry.Save(ctx, f); err != nil {
		return f, fmt.Errorf("registering recording: %w", err)
	}
	return f, nil
}

// CancelRecording discards the active capture.
func (p *Pipeline) CancelRecording(ctx context.Context) error {
	return p.recorder.Cancel(ctx)
}

// RecordingState returns the current recorder state.
func (p *Pipeline) RecordingState() RecordingState {
	return p.recorder.State()
}

// PlayAudio starts playback of uri.
func (p *Pipeline) PlayAudio(ctx context.Context, uri string) (*PlaybackSession, error) {
	return p.playback.Play(ctx, uri)
}

// PickImage asks the installed picker for an image. Without a picker
// integration the result has Status PickUnavailable.
func (p *Pipeline) PickImage(ctx context.Context) (PickResult, error) {
	res, err := p.picker.PickImage(ctx)
	if err != nil {
		return PickResult{}, fmt.Errorf("picking image: %w", err)
	}
	if res.Status == PickSelected && res.File != nil {
		if err := p.registry.Save(ctx, res.File); err != nil {
			return res, fmt.Errorf("registering picked image: %w", err)
		}
	}
	return res, nil
}

// UploadMediaFile uploads f and records the upload. If the upload succeeded
// but the registry write failed, the URL is returned together with the error
// and f is already marked uploaded.
func (p *Pipeline) UploadMediaFile(ctx context.Context, f *MediaFile) (string, error) {
	url, err := p.transfer.Upload(ctx, f)
	if err != nil {
		return "", err
	}
	if err := p.registry.MarkUploaded(ctx, f.ID, url); err != nil {
		return url, fmt.Errorf("recording upload of %s: %w", f.ID, err)
	}
	return url, nil
}

// DownloadMediaFile fetches url into local storage and registers it.
func (p *Pipeline) DownloadMediaFile(ctx context.Context, url string, t MediaType) (*MediaFile, error) {
	f, err := p.transfer.Download(ctx, url, t)
	if err != nil {
		return nil, err
	}
	if err := p.registry.Save(ctx, f); err != nil {
		return f, fmt.Errorf("registering download: %w", err)
	}
	return f, nil
}

// SaveMediaToLibrary exports f into the device media library.
func (p *Pipeline) SaveMediaToLibrary(ctx context.Context, f *MediaFile) error {
	return p.exporter.Export(ctx, f)
}

// ImportFile copies an existing file into the local layout and registers it.
func (p *Pipeline) ImportFile(ctx context.Context, srcPath string, t MediaType) (*MediaFile, error) {
	dir, err := p.layout.ResolveDirectory(t)
	if err != nil {
		return nil, err
	}
	dest := filepath.Join(dir, p.layout.ResolveLocalName(t, srcPath))
	if err := p.fsys.Copy(srcPath, dest); err != nil {
		return nil, fmt.Errorf("copying %s: %w", srcPath, err)
	}

	f, err := p.builder.FromLocalFile(dest, t)
	if err != nil {
		return nil, err
	}
	if err := p.registry.Save(ctx, f); err != nil {
		return f, fmt.Errorf("registering import: %w", err)
	}
	p.logger.Info("file imported", "id", f.ID, "path", dest)
	return f, nil
}

// FindMedia returns a registered record, or nil if there is none.
func (p *Pipeline) FindMedia(ctx context.Context, id string) (*MediaFile, error) {
	return p.registry.Find(ctx, id)
}

// ListMedia returns all registered records, newest first.
func (p *Pipeline) ListMedia(ctx context.Context) ([]*MediaFile, error) {
	return p.registry.List(ctx)
}
