package media

import "context"

// AudioMode configures the OS audio session.
type AudioMode struct {
	AllowsRecording         bool
	PlaysInSilentMode       bool
	StaysActiveInBackground bool
}

// foregroundCapture is the mode used for voice notes: recording stops once
// the app leaves the foreground.
var foregroundCapture = AudioMode{
	AllowsRecording:         true,
	PlaysInSilentMode:       true,
	StaysActiveInBackground: false,
}

// RecordingQuality selects a native recording preset.
type RecordingQuality string

const (
	QualityHigh RecordingQuality = "high"
	QualityLow  RecordingQuality = "low"
)

// RecordingOptions are passed to the native layer when a session is created.
type RecordingOptions struct {
	Quality RecordingQuality
}

// RecordingStatus is what the native layer reports about a recording.
type RecordingStatus struct {
	IsRecording    bool
	DurationMillis int64
}

// AudioSession is the native audio subsystem.
type AudioSession interface {
	// SetAudioMode configures the session before recording starts.
	SetAudioMode(ctx context.Context, mode AudioMode) error

	// CreateRecording creates and starts a native recording.
	CreateRecording(ctx context.Context, opts RecordingOptions) (NativeRecording, error)
}

// NativeRecording is a handle to one native capture.
type NativeRecording interface {
	// StopAndUnload finalizes the artifact and tears down the native resource.
	StopAndUnload(ctx context.Context) error

	Status(ctx context.Context) (RecordingStatus, error)

	// URI is the location of the finalized artifact, or "" if none exists.
	URI() string
}

// PlaybackStatus is reported to the observer registered with LoadSound.
type PlaybackStatus struct {
	IsLoaded       bool
	IsPlaying      bool
	DidJustFinish  bool
	PositionMillis int64
	Err            error
}

// SoundOptions control how a sound is loaded.
type SoundOptions struct {
	ShouldPlay bool
}

// Player is the native playback subsystem.
type Player interface {
	// LoadSound loads the sound at uri. onStatus is called from the native
	// layer on every status change until the sound is unloaded.
	LoadSound(ctx context.Context, uri string, opts SoundOptions, onStatus func(PlaybackStatus)) (Sound, error)
}

// Sound is a loaded playback resource.
type Sound interface {
	Unload() error
}
