package native

import (
	"context"
	"fmt"
	"sync"
	"time"

	"mediakit/internal/media"
)

// Player simulates the native player: a sound "plays" for the PCM duration
// of its file and then reports that it finished.
type Player struct {
	fsys       media.Filesystem
	sampleRate int
	logger     media.Logger

	// afterFunc schedules completion. Replaced in tests.
	afterFunc func(d time.Duration, f func()) stopper
}

type stopper interface {
	Stop() bool
}

// Compile-time check that Player implements media.Player interface
var _ media.Player = (*Player)(nil)

// NewPlayer creates a Player for files recorded at sampleRate.
func NewPlayer(fsys media.Filesystem, sampleRate int, logger media.Logger) *Player {
	return &Player{
		fsys:       fsys,
		sampleRate: sampleRate,
		logger:     logger,
		afterFunc: func(d time.Duration, f func()) stopper {
			return time.AfterFunc(d, f)
		},
	}
}

func (p *Player) LoadSound(ctx context.Context, uri string, opts media.SoundOptions, onStatus func(media.PlaybackStatus)) (media.Sound, error) {
	info, err := p.fsys.Stat(uri)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", uri, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("loading %s: is a directory", uri)
	}

	duration := PCMDuration(info.Size(), p.sampleRate)
	s := &Sound{uri: uri, duration: duration, onStatus: onStatus}
	p.logger.Debug("sound loaded", "uri", uri, "duration", duration)

	if opts.ShouldPlay {
		onStatus(media.PlaybackStatus{IsLoaded: true, IsPlaying: true})
		s.mu.Lock()
		s.timer = p.afterFunc(duration, s.finish)
		s.mu.Unlock()
	}
	return s, nil
}

// Sound is a loaded simulated sound.
type Sound struct {
	uri      string
	duration time.Duration
	onStatus func(media.PlaybackStatus)

	mu       sync.Mutex
	timer    stopper
	unloaded bool
}

// Compile-time check that Sound implements media.Sound interface
var _ media.Sound = (*Sound)(nil)

// Duration returns the playing time of the sound.
func (s *Sound) Duration() time.Duration {
	return s.duration
}

func (s *Sound) finish() {
	s.mu.Lock()
	unloaded := s.unloaded
	s.mu.Unlock()
	if unloaded {
		return
	}
	s.onStatus(media.PlaybackStatus{
		IsLoaded:       true,
		DidJustFinish:  true,
		PositionMillis: s.duration.Milliseconds(),
	})
}

func (s *Sound) Unload() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.unloaded {
		return fmt.Errorf("sound %s already unloaded", s.uri)
	}
	s.unloaded = true
	if s.timer != nil {
		s.timer.Stop()
	}
	return nil
}
