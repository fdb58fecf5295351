// Package native provides host stand-ins for the device audio subsystem.
// Recordings produce 16-bit mono PCM silence for the time that elapsed while
// recording; playback lasts as long as the file's PCM payload.
package native

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"sync"
	"time"

	"mediakit/internal/media"
)

const bytesPerSample = 2

// AudioSession simulates the OS audio session.
type AudioSession struct {
	fsys       media.Filesystem
	cacheDir   string
	clock      media.Clock
	sampleRate int
	logger     media.Logger

	mu         sync.Mutex
	mode       media.AudioMode
	background bool
	active     *Recording
}

// Compile-time check that AudioSession implements media.AudioSession interface
var _ media.AudioSession = (*AudioSession)(nil)

// NewAudioSession creates a session that writes finished recordings to cacheDir.
func NewAudioSession(fsys media.Filesystem, cacheDir string, clock media.Clock, sampleRate int, logger media.Logger) *AudioSession {
	return &AudioSession{
		fsys:       fsys,
		cacheDir:   cacheDir,
		clock:      clock,
		sampleRate: sampleRate,
		logger:     logger,
	}
}

func (s *AudioSession) SetAudioMode(ctx context.Context, mode media.AudioMode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mode = mode
	return nil
}

// Mode returns the last mode set.
func (s *AudioSession) Mode() media.AudioMode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

func (s *AudioSession) CreateRecording(ctx context.Context, opts media.RecordingOptions) (media.NativeRecording, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.mode.AllowsRecording {
		return nil, fmt.Errorf("audio mode does not allow recording")
	}
	if s.background {
		return nil, fmt.Errorf("cannot start recording in background")
	}
	if s.active != nil {
		return nil, fmt.Errorf("audio input busy")
	}
	if s.sampleRate <= 0 {
		return nil, fmt.Errorf("invalid sample rate: %d", s.sampleRate)
	}

	rate := s.sampleRate
	if opts.Quality == media.QualityLow {
		rate /= 2
	}
	rec := &Recording{
		session:    s,
		sampleRate: rate,
		startedAt:  s.clock.Now(),
	}
	s.active = rec
	s.logger.Debug("native recording created", "sample_rate", rate)
	return rec, nil
}

// EnterBackground simulates the app leaving the foreground. Unless the mode
// keeps the session active in background, the running recording stops
// accumulating audio.
func (s *AudioSession) EnterBackground() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.background = true
	if s.active != nil && !s.mode.StaysActiveInBackground {
		s.active.interrupt(s.clock.Now())
		s.logger.Info("recording interrupted by background transition")
	}
}

// EnterForeground simulates the app returning to the foreground.
// An interrupted recording does not resume.
func (s *AudioSession) EnterForeground() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.background = false
}

func (s *AudioSession) release(r *Recording) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == r {
		s.active = nil
	}
}

// Recording is one simulated capture.
type Recording struct {
	session    *AudioSession
	sampleRate int
	startedAt  time.Time

	mu       sync.Mutex
	endedAt  time.Time
	unloaded bool
	uri      string
}

// Compile-time check that Recording implements media.NativeRecording interface
var _ media.NativeRecording = (*Recording)(nil)

func (r *Recording) interrupt(at time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.endedAt.IsZero() {
		r.endedAt = at
	}
}

// StopAndUnload ends capture and writes the artifact into the cache dir.
func (r *Recording) StopAndUnload(ctx context.Context) error {
	s := r.session
	r.mu.Lock()
	if r.unloaded {
		r.mu.Unlock()
		return fmt.Errorf("recording already unloaded")
	}
	r.unloaded = true
	if r.endedAt.IsZero() {
		r.endedAt = s.clock.Now()
	}
	elapsed := r.endedAt.Sub(r.startedAt)
	r.mu.Unlock()

	defer s.release(r)

	if err := s.fsys.MkdirAll(s.cacheDir); err != nil {
		return fmt.Errorf("creating recording cache: %w", err)
	}
	path := filepath.Join(s.cacheDir, fmt.Sprintf("capture_%d.m4a", r.startedAt.UnixNano()))
	n := PCMBytes(elapsed, r.sampleRate)
	if _, err := s.fsys.WriteFile(path, io.LimitReader(zeros{}, n)); err != nil {
		return fmt.Errorf("writing recording: %w", err)
	}

	r.mu.Lock()
	r.uri = path
	r.mu.Unlock()
	s.logger.Debug("native recording finalized", "path", path, "bytes", n)
	return nil
}

func (r *Recording) Status(ctx context.Context) (media.RecordingStatus, error) {
	now := r.session.clock.Now()

	r.mu.Lock()
	defer r.mu.Unlock()
	end := now
	if !r.endedAt.IsZero() {
		end = r.endedAt
	}
	return media.RecordingStatus{
		IsRecording:    r.endedAt.IsZero(),
		DurationMillis: end.Sub(r.startedAt).Milliseconds(),
	}, nil
}

func (r *Recording) URI() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.uri
}

// PCMBytes is the size of d of 16-bit mono audio at sampleRate.
func PCMBytes(d time.Duration, sampleRate int) int64 {
	if d <= 0 {
		return 0
	}
	return d.Milliseconds() * int64(sampleRate) * bytesPerSample / 1000
}

// PCMDuration is the playing time of n bytes of 16-bit mono audio.
func PCMDuration(n int64, sampleRate int) time.Duration {
	if sampleRate <= 0 || n <= 0 {
		return 0
	}
	return time.Duration(n) * time.Second / time.Duration(sampleRate*bytesPerSample)
}

type zeros struct{}

func (zeros) Read(p []byte) (int, error) {
	clear(p)
	return len(p), nil
}
