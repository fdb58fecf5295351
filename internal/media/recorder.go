package media

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"
)

// Recorder owns the single in-flight audio recording session.
// Each Recorder has its own state; there is no package-level session.
type Recorder struct {
	perms   Permissions
	audio   AudioSession
	layout  *Layout
	builder *Builder
	fsys    Filesystem
	logger  Logger
	clock   Clock

	mu        sync.Mutex
	recording NativeRecording
	startedAt time.Time
	lastURI   string
}

// NewRecorder creates a Recorder with no active session.
func NewRecorder(perms Permissions, audio AudioSession, layout *Layout, builder *Builder, fsys Filesystem, logger Logger, clock Clock) *Recorder {
	return &Recorder{
		perms:   perms,
		audio:   audio,
		layout:  layout,
		builder: builder,
		fsys:    fsys,
		logger:  logger,
		clock:   clock,
	}
}

// Start begins a new recording. It fails with ErrSessionAlreadyActive while
// another session is running, leaving that session untouched.
func (r *Recorder) Start(ctx context.Context) (RecordingState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.recording != nil {
		return r.stateLocked(), fmt.Errorf("starting recording: %w", ErrSessionAlreadyActive)
	}

	granted, err := r.perms.Request(ctx, PermissionMicrophone)
	if err != nil {
		return RecordingState{}, fmt.Errorf("requesting microphone permission: %w", err)
	}
	if !granted {
		return RecordingState{}, fmt.Errorf("microphone: %w", ErrPermissionDenied)
	}

	if err := r.audio.SetAudioMode(ctx, foregroundCapture); err != nil {
		return RecordingState{}, fmt.Errorf("configuring audio session: %w", err)
	}

	rec, err := r.audio.CreateRecording(ctx, RecordingOptions{Quality: QualityHigh})
	if err != nil {
		return RecordingState{}, fmt.Errorf("starting recording: %w", err)
	}

	r.recording = rec
	r.startedAt = r.clock.Now()
	r.lastURI = ""

	r.logger.Info("recording started")
	return RecordingState{IsRecording: true, Duration: 0}, nil
}

// Stop finalizes the active recording, copies it into the audio directory
// and returns the resulting record. The session is released on every exit
// path, so a later Start is never blocked by a failed Stop.
func (r *Recorder) Stop(ctx context.Context) (*MediaFile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec := r.recording
	if rec == nil {
		return nil, fmt.Errorf("stopping recording: %w", ErrNoActiveSession)
	}
	defer r.releaseLocked()

	if err := rec.StopAndUnload(ctx); err != nil {
		return nil, fmt.Errorf("stopping recording: %w", err)
	}

	status, err := rec.Status(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading recording status: %w", err)
	}

	uri := rec.URI()
	if uri == "" {
		return nil, fmt.Errorf("finalizing recording: %w", ErrEmptyRecordingURI)
	}

	dir, err := r.layout.ResolveDirectory(TypeAudio)
	if err != nil {
		return nil, fmt.Errorf("resolving audio directory: %w", err)
	}
	dest := filepath.Join(dir, r.layout.ResolveFileName(TypeAudio, ""))

	if err := r.fsys.Copy(uri, dest); err != nil {
		return nil, fmt.Errorf("copying recording to %s: %w", dest, err)
	}

	file, err := r.builder.FromCapture(dest, status.DurationMillis)
	if err != nil {
		return nil, err
	}

	r.lastURI = dest
	r.logger.Info("recording saved", "path", dest, "duration_ms", status.DurationMillis, "size", file.Size)
	return file, nil
}

// Cancel stops and releases the active session without keeping its artifact.
func (r *Recorder) Cancel(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec := r.recording
	if rec == nil {
		return fmt.Errorf("cancelling recording: %w", ErrNoActiveSession)
	}
	defer r.releaseLocked()

	if err := rec.StopAndUnload(ctx); err != nil {
		return fmt.Errorf("stopping recording: %w", err)
	}
	r.logger.Info("recording cancelled")
	return nil
}

// State returns a snapshot of the recording state.
func (r *Recorder) State() RecordingState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stateLocked()
}

func (r *Recorder) stateLocked() RecordingState {
	if r.recording == nil {
		return RecordingState{RecordingURI: r.lastURI}
	}
	return RecordingState{
		IsRecording: true,
		Duration:    r.clock.Now().Sub(r.startedAt).Milliseconds(),
	}
}

func (r *Recorder) releaseLocked() {
	r.recording = nil
	r.startedAt = time.Time{}
}
