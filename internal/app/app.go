package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"mediakit/internal/config"
	"mediakit/internal/encryption"
	"mediakit/internal/fs"
	"mediakit/internal/library"
	"mediakit/internal/media"
	"mediakit/internal/native"
	"mediakit/internal/permission"
	"mediakit/internal/registry"
	"mediakit/internal/registry/migrations"
	"mediakit/internal/store"
)

// App is the application layer between the CLI and the media pipeline.
// It constructs all dependencies from config, exposes high-level operations
// that accept raw strings, and releases resources on Close.
type App struct {
	cfg      *config.Config
	pipeline *media.Pipeline
	store    media.RemoteStore
	registry media.Registry
	audio    *native.AudioSession
	clock    media.Clock
	op       *Operation
	logger   *slog.Logger
	logFile  *os.File
}

// IO is where the App reads permission answers and writes diagnostics.
type IO struct {
	In     *os.File
	Stderr io.Writer
	// Verbose mirrors info-level logs to Stderr; warnings always are.
	Verbose bool
}

// StdIO uses the process's stdin and stderr.
func StdIO(verbose bool) IO {
	return IO{In: os.Stdin, Stderr: os.Stderr, Verbose: verbose}
}

// NewApp creates a fully wired App from the given config.
// operation identifies the CLI command being run (e.g. "Record", "Upload").
// The caller must call Close when done.
func NewApp(ctx context.Context, cfg *config.Config, operation string, stdio IO) (*App, error) {
	clock := media.RealClock{}
	op := NewOperation(operation, clock.Now())

	stderrLevel := slog.LevelWarn
	if stdio.Verbose {
		stderrLevel = slog.LevelInfo
	}
	logger, logFile, err := newLogger(cfg.LogDir, op.ID, stdio.Stderr, stderrLevel)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	log := media.Logger(logger)

	fsys := fs.NewOSFilesystem()

	remote, err := store.NewStoreFromConfig(ctx, cfg.Store)
	if err != nil {
		logFile.Close()
		return nil, fmt.Errorf("creating store: %w", err)
	}

	sealer, err := encryption.NewSealerFromConfig(cfg.Encryption)
	if err != nil {
		logFile.Close()
		return nil, fmt.Errorf("creating sealer: %w", err)
	}

	platform, err := library.ParsePlatform(cfg.Library.Platform)
	if err != nil {
		logFile.Close()
		return nil, err
	}

	prompter := permission.NewTerminalPrompter(stdio.In, stdio.Stderr)
	perms, err := permission.NewPolicyFromConfig(cfg.Permissions, prompter)
	if err != nil {
		logFile.Close()
		return nil, fmt.Errorf("creating permission policy: %w", err)
	}

	reg, err := registry.NewRegistryFromConfig(cfg.Registry, cfg.DeviceID, clock)
	if err != nil {
		logFile.Close()
		return nil, fmt.Errorf("creating registry: %w", err)
	}

	ids := media.UUIDGenerator{}
	audio := native.NewAudioSession(fsys, filepath.Join(cfg.BaseDir, "cache", "recordings"), clock, cfg.Capture.SampleRate, log)

	p := media.NewPipeline(media.Deps{
		DocumentRoot: cfg.DocumentDir,
		Filesystem:   fsys,
		Permissions:  perms,
		Audio:        audio,
		Player:       native.NewPlayer(fsys, cfg.Capture.SampleRate, log),
		Store:        remote,
		Sealer:       sealer,
		Library:      library.NewDirectoryLibrary(cfg.Library.Root, platform, fsys, ids, log),
		AudioAlbum:   cfg.Library.Album,
		Registry:     reg,
		Logger:       log,
		Clock:        clock,
		IDs:          ids,
	})

	logger.Debug("operation started", "operation", operation)
	return &App{
		cfg:      cfg,
		pipeline: p,
		store:    remote,
		registry: reg,
		audio:    audio,
		clock:    clock,
		op:       op,
		logger:   logger,
		logFile:  logFile,
	}, nil
}

// track marks the operation failed when err is non-nil and passes err through.
func (a *App) track(err error) error {
	if err != nil {
		a.op.Fail()
	}
	return err
}

// RecordResult is the outcome of a Record call.
type RecordResult struct {
	File      *media.MediaFile
	RemoteURL string
}

// RecordOptions controls a Record call.
type RecordOptions struct {
	Duration time.Duration
	// BackgroundAfter, when positive, moves the app to the background this
	// long into the capture. The recording mode does not stay active in
	// background, so no audio is captured after that point.
	BackgroundAfter time.Duration
	Upload          bool
	Export          bool
}

// Record captures audio for opts.Duration, or until ctx is cancelled, and
// then optionally uploads and exports the result.
func (a *App) Record(ctx context.Context, opts RecordOptions) (*RecordResult, error) {
	if _, err := a.pipeline.StartRecording(ctx); err != nil {
		return nil, a.track(err)
	}

	var background <-chan time.Time
	if opts.BackgroundAfter > 0 && opts.BackgroundAfter < opts.Duration {
		bt := time.NewTimer(opts.BackgroundAfter)
		defer bt.Stop()
		background = bt.C
		defer a.audio.EnterForeground()
	}

	timer := time.NewTimer(opts.Duration)
	defer timer.Stop()
wait:
	for {
		select {
		case <-background:
			a.logger.Info("app moved to background", "after", opts.BackgroundAfter)
			a.audio.EnterBackground()
			background = nil
		case <-timer.C:
			break wait
		case <-ctx.Done():
			a.logger.Info("recording interrupted", "reason", ctx.Err())
			break wait
		}
	}

	// ctx may be done already; finishing the capture must not depend on it.
	stopCtx := context.WithoutCancel(ctx)
	f, err := a.pipeline.StopRecording(stopCtx)
	if err != nil {
		return nil, a.track(err)
	}
	res := &RecordResult{File: f}

	if opts.Upload {
		url, err := a.pipeline.UploadMediaFile(stopCtx, f)
		if err != nil {
			return res, a.track(err)
		}
		res.RemoteURL = url
	}
	if opts.Export {
		if err := a.pipeline.SaveMediaToLibrary(stopCtx, f); err != nil {
			return res, a.track(err)
		}
	}
	return res, nil
}

// Play plays the audio file at rawPath and blocks until it finishes or ctx
// is cancelled.
func (a *App) Play(ctx context.Context, rawPath string) error {
	absPath, err := filepath.Abs(rawPath)
	if err != nil {
		return a.track(fmt.Errorf("resolving path: %w", err))
	}
	s, err := a.pipeline.PlayAudio(ctx, absPath)
	if err != nil {
		return a.track(err)
	}
	select {
	case <-s.Done():
		return a.track(s.Err())
	case <-ctx.Done():
		s.Stop()
		return a.track(ctx.Err())
	}
}

// Import copies the file at rawPath into local storage as rawType.
func (a *App) Import(ctx context.Context, rawPath, rawType string) (*media.MediaFile, error) {
	t, err := media.ParseMediaType(rawType)
	if err != nil {
		return nil, a.track(err)
	}
	absPath, err := filepath.Abs(rawPath)
	if err != nil {
		return nil, a.track(fmt.Errorf("resolving path: %w", err))
	}
	f, err := a.pipeline.ImportFile(ctx, absPath, t)
	return f, a.track(err)
}

// Upload uploads the registered media file with the given ID.
func (a *App) Upload(ctx context.Context, id string) (string, error) {
	f, err := a.find(ctx, id)
	if err != nil {
		return "", a.track(err)
	}
	url, err := a.pipeline.UploadMediaFile(ctx, f)
	return url, a.track(err)
}

// Download fetches url into local storage as rawType.
func (a *App) Download(ctx context.Context, url, rawType string) (*media.MediaFile, error) {
	t, err := media.ParseMediaType(rawType)
	if err != nil {
		return nil, a.track(err)
	}
	f, err := a.pipeline.DownloadMediaFile(ctx, url, t)
	return f, a.track(err)
}

// Export saves the registered media file with the given ID to the library.
func (a *App) Export(ctx context.Context, id string) error {
	f, err := a.find(ctx, id)
	if err != nil {
		return a.track(err)
	}
	return a.track(a.pipeline.SaveMediaToLibrary(ctx, f))
}

// List returns all registered media files, newest first.
func (a *App) List(ctx context.Context) ([]*media.MediaFile, error) {
	files, err := a.pipeline.ListMedia(ctx)
	return files, a.track(err)
}

// PickImage asks the image picker for an image.
func (a *App) PickImage(ctx context.Context) (media.PickResult, error) {
	res, err := a.pipeline.PickImage(ctx)
	return res, a.track(err)
}

// CheckStore verifies the remote store is reachable and writable.
func (a *App) CheckStore(ctx context.Context) error {
	if err := a.store.ValidateSetup(ctx); err != nil {
		return a.track(fmt.Errorf("store %s: %w", a.cfg.Store.Type, err))
	}
	return nil
}

// uploadHistory is implemented by registries that keep every upload of a
// record, not only the latest.
type uploadHistory interface {
	Uploads(ctx context.Context, id string) ([]registry.Upload, error)
}

// Uploads returns the upload history of the media file with the given ID,
// oldest first.
func (a *App) Uploads(ctx context.Context, id string) ([]registry.Upload, error) {
	h, ok := a.registry.(uploadHistory)
	if !ok {
		return nil, a.track(fmt.Errorf("registry %s keeps no upload history", a.cfg.Registry.Type))
	}
	if _, err := a.find(ctx, id); err != nil {
		return nil, a.track(err)
	}
	uploads, err := h.Uploads(ctx, id)
	return uploads, a.track(err)
}

// schemaReporter is implemented by registries backed by a migrated schema.
type schemaReporter interface {
	SchemaStatus() (migrations.Status, error)
}

// CheckRegistry verifies the registry schema is at the version this binary
// expects. It returns nil status for a registry without a schema.
func (a *App) CheckRegistry() (*migrations.Status, error) {
	r, ok := a.registry.(schemaReporter)
	if !ok {
		return nil, nil
	}
	st, err := r.SchemaStatus()
	if err != nil {
		return &st, a.track(fmt.Errorf("registry %s: %w", a.cfg.Registry.Type, err))
	}
	return &st, nil
}

func (a *App) find(ctx context.Context, id string) (*media.MediaFile, error) {
	f, err := a.pipeline.FindMedia(ctx, id)
	if err != nil {
		return nil, err
	}
	if f == nil {
		return nil, fmt.Errorf("media file %s: %w", id, registry.ErrNotFound)
	}
	return f, nil
}

// Close finalizes the operation and closes all resources.
func (a *App) Close() error {
	var firstErr error

	a.logger.Debug("operation finished",
		"operation", a.op.Name,
		"status", a.op.Status,
		"elapsed", a.op.Elapsed(a.clock.Now()))

	if err := a.registry.Close(); err != nil {
		firstErr = fmt.Errorf("closing registry: %w", err)
	}
	if a.logFile != nil {
		if err := a.logFile.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("closing log file: %w", err)
		}
	}
	return firstErr
}
