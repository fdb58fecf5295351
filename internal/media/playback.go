package media

import (
	"context"
	"fmt"
	"sync"
)

// Playback plays audio files through the native player.
type Playback struct {
	player Player
	logger Logger
}

// NewPlayback creates a Playback.
func NewPlayback(player Player, logger Logger) *Playback {
	return &Playback{player: player, logger: logger}
}

// PlaybackSession is one started playback. Its sound is unloaded exactly
// once: when the player reports completion, or on Stop, whichever is first.
type PlaybackSession struct {
	uri    string
	logger Logger

	mu       sync.Mutex
	sound    Sound
	finished bool
	cause    error
	err      error

	once sync.Once
	done chan struct{}
}

// Play loads uri, starts playing immediately and releases the sound when
// playback completes.
func (p *Playback) Play(ctx context.Context, uri string) (*PlaybackSession, error) {
	s := &PlaybackSession{
		uri:    uri,
		logger: p.logger,
		done:   make(chan struct{}),
	}

	sound, err := p.player.LoadSound(ctx, uri, SoundOptions{ShouldPlay: true}, s.onStatus)
	if err != nil {
		return nil, fmt.Errorf("loading sound %s: %w", uri, err)
	}

	s.mu.Lock()
	s.sound = sound
	finished := s.finished
	s.mu.Unlock()

	// The player may report completion before LoadSound returned.
	if finished {
		s.release(sound)
	}
	return s, nil
}

func (s *PlaybackSession) onStatus(st PlaybackStatus) {
	if !st.DidJustFinish && st.Err == nil {
		return
	}
	if st.Err != nil {
		s.logger.Warn("playback error", "uri", s.uri, "error", st.Err)
	}

	s.mu.Lock()
	s.finished = true
	if st.Err != nil {
		s.cause = st.Err
	}
	sound := s.sound
	s.mu.Unlock()

	if sound != nil {
		s.release(sound)
	}
}

// Stop releases the sound early. Safe to call after completion.
func (s *PlaybackSession) Stop() error {
	s.mu.Lock()
	sound := s.sound
	s.mu.Unlock()
	if sound != nil {
		s.release(sound)
	}
	return s.Err()
}

// Done is closed once the sound has been released.
func (s *PlaybackSession) Done() <-chan struct{} {
	return s.done
}

// Err returns the playback or unload error, if any.
func (s *PlaybackSession) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *PlaybackSession) release(sound Sound) {
	s.once.Do(func() {
		uerr := sound.Unload()

		s.mu.Lock()
		switch {
		case s.cause != nil:
			s.err = s.cause
		case uerr != nil:
			s.err = fmt.Errorf("unloading sound: %w", uerr)
		}
		s.mu.Unlock()

		close(s.done)
		s.logger.Debug("sound released", "uri", s.uri)
	})
}
