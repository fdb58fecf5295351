package testutil

import (
	"context"
	"fmt"
	"sync"

	"mediakit/internal/media"
)

// FakeAudioSession records the calls made to it and hands out FakeRecordings
// built from its Next* fields.
type FakeAudioSession struct {
	mu sync.Mutex

	SetModeErr error
	CreateErr  error

	// Template for the next recording.
	NextURI       string
	NextDuration  int64
	NextStopErr   error
	NextStatusErr error

	Modes      []media.AudioMode
	Options    []media.RecordingOptions
	Recordings []*FakeRecording
}

// Compile-time check that FakeAudioSession implements media.AudioSession interface
var _ media.AudioSession = (*FakeAudioSession)(nil)

func (s *FakeAudioSession) SetAudioMode(ctx context.Context, mode media.AudioMode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Modes = append(s.Modes, mode)
	return s.SetModeErr
}

func (s *FakeAudioSession) CreateRecording(ctx context.Context, opts media.RecordingOptions) (media.NativeRecording, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Options = append(s.Options, opts)
	if s.CreateErr != nil {
		return nil, s.CreateErr
	}
	rec := &FakeRecording{
		uri:       s.NextURI,
		duration:  s.NextDuration,
		stopErr:   s.NextStopErr,
		statusErr: s.NextStatusErr,
	}
	s.Recordings = append(s.Recordings, rec)
	return rec, nil
}

// Last returns the most recently created recording.
func (s *FakeAudioSession) Last() *FakeRecording {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.Recordings) == 0 {
		return nil
	}
	return s.Recordings[len(s.Recordings)-1]
}

// FakeRecording is a native recording whose outcome is fixed at creation.
type FakeRecording struct {
	mu        sync.Mutex
	uri       string
	duration  int64
	stopErr   error
	statusErr error
	stopped   int
}

func (r *FakeRecording) StopAndUnload(context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stopped++
	return r.stopErr
}

func (r *FakeRecording) Status(context.Context) (media.RecordingStatus, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.statusErr != nil {
		return media.RecordingStatus{}, r.statusErr
	}
	return media.RecordingStatus{IsRecording: r.stopped == 0, DurationMillis: r.duration}, nil
}

func (r *FakeRecording) URI() string { return r.uri }

// Stopped returns how many times StopAndUnload was called.
func (r *FakeRecording) Stopped() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stopped
}

// FakePlayer loads FakeSounds and lets the test drive their status.
type FakePlayer struct {
	mu sync.Mutex

	LoadErr error
	// FinishDuringLoad reports completion before LoadSound returns.
	FinishDuringLoad bool
	UnloadErr        error

	Sounds []*FakeSound
}

// Compile-time check that FakePlayer implements media.Player interface
var _ media.Player = (*FakePlayer)(nil)

func (p *FakePlayer) LoadSound(ctx context.Context, uri string, opts media.SoundOptions, onStatus func(media.PlaybackStatus)) (media.Sound, error) {
	p.mu.Lock()
	if p.LoadErr != nil {
		p.mu.Unlock()
		return nil, p.LoadErr
	}
	s := &FakeSound{URI: uri, Options: opts, onStatus: onStatus, unloadErr: p.UnloadErr}
	p.Sounds = append(p.Sounds, s)
	finish := p.FinishDuringLoad
	p.mu.Unlock()

	if finish {
		s.Finish()
	}
	return s, nil
}

// Last returns the most recently loaded sound.
func (p *FakePlayer) Last() *FakeSound {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.Sounds) == 0 {
		return nil
	}
	return p.Sounds[len(p.Sounds)-1]
}

// FakeSound counts unloads and reports status on demand.
type FakeSound struct {
	URI     string
	Options media.SoundOptions

	mu        sync.Mutex
	onStatus  func(media.PlaybackStatus)
	unloadErr error
	unloads   int
}

// Finish reports that playback completed.
func (s *FakeSound) Finish() {
	s.onStatus(media.PlaybackStatus{IsLoaded: true, DidJustFinish: true})
}

// Progress reports an intermediate playing status.
func (s *FakeSound) Progress(positionMillis int64) {
	s.onStatus(media.PlaybackStatus{IsLoaded: true, IsPlaying: true, PositionMillis: positionMillis})
}

// Fail reports a playback error.
func (s *FakeSound) Fail(err error) {
	s.onStatus(media.PlaybackStatus{IsLoaded: true, Err: err})
}

func (s *FakeSound) Unload() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unloads++
	if s.unloadErr != nil {
		return fmt.Errorf("unload: %w", s.unloadErr)
	}
	return nil
}

// Unloads returns how many times Unload was called.
func (s *FakeSound) Unloads() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unloads
}
