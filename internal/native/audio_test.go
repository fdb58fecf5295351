package native

import (
	"context"
	"testing"
	"time"

	"mediakit/internal/media"
	"mediakit/internal/testutil"
)

var recordingMode = media.AudioMode{AllowsRecording: true, PlaysInSilentMode: true}

func newTestSession(t *testing.T) (*AudioSession, *testutil.MemFilesystem, *testutil.StubClock) {
	t.Helper()
	fsys := testutil.NewMemFilesystem()
	clock := testutil.FixedClock()
	s := NewAudioSession(fsys, "/cache/audio", clock, 16000, media.NewNopLogger())
	if err := s.SetAudioMode(context.Background(), recordingMode); err != nil {
		t.Fatalf("SetAudioMode() error = %v", err)
	}
	return s, fsys, clock
}

func TestAudioSession_RecordWritesElapsedAudio(t *testing.T) {
	s, fsys, clock := newTestSession(t)
	ctx := context.Background()

	rec, err := s.CreateRecording(ctx, media.RecordingOptions{Quality: media.QualityHigh})
	if err != nil {
		t.Fatalf("CreateRecording() error = %v", err)
	}
	if rec.URI() != "" {
		t.Errorf("URI() before stop = %q, want empty", rec.URI())
	}

	clock.Advance(1500 * time.Millisecond)
	st, _ := rec.Status(ctx)
	if !st.IsRecording || st.DurationMillis != 1500 {
		t.Errorf("Status() = %+v, want recording for 1500ms", st)
	}

	if err := rec.StopAndUnload(ctx); err != nil {
		t.Fatalf("StopAndUnload() error = %v", err)
	}
	clock.Advance(time.Second)

	st, _ = rec.Status(ctx)
	if st.IsRecording || st.DurationMillis != 1500 {
		t.Errorf("Status() after stop = %+v, want stopped at 1500ms", st)
	}
	data, ok := fsys.ReadFile(rec.URI())
	if !ok {
		t.Fatalf("artifact %q not written", rec.URI())
	}
	if want := 1500 * 16000 * 2 / 1000; len(data) != want {
		t.Errorf("artifact size = %d, want %d", len(data), want)
	}

	if err := rec.StopAndUnload(ctx); err == nil {
		t.Error("second StopAndUnload() expected error")
	}
}

func TestAudioSession_CreateRecordingRules(t *testing.T) {
	ctx := context.Background()

	t.Run("mode must allow recording", func(t *testing.T) {
		s := NewAudioSession(testutil.NewMemFilesystem(), "/cache", testutil.FixedClock(), 16000, media.NewNopLogger())
		if _, err := s.CreateRecording(ctx, media.RecordingOptions{}); err == nil {
			t.Error("CreateRecording() expected error without recording mode")
		}
	})

	t.Run("one recording at a time", func(t *testing.T) {
		s, _, _ := newTestSession(t)
		rec, err := s.CreateRecording(ctx, media.RecordingOptions{})
		if err != nil {
			t.Fatalf("CreateRecording() error = %v", err)
		}
		if _, err := s.CreateRecording(ctx, media.RecordingOptions{}); err == nil {
			t.Error("second CreateRecording() expected error")
		}
		rec.StopAndUnload(ctx)
		if _, err := s.CreateRecording(ctx, media.RecordingOptions{}); err != nil {
			t.Errorf("CreateRecording() after unload error = %v", err)
		}
	})

	t.Run("low quality halves the rate", func(t *testing.T) {
		s, fsys, clock := newTestSession(t)
		rec, _ := s.CreateRecording(ctx, media.RecordingOptions{Quality: media.QualityLow})
		clock.Advance(time.Second)
		rec.StopAndUnload(ctx)
		data, _ := fsys.ReadFile(rec.URI())
		if len(data) != 16000 {
			t.Errorf("artifact size = %d, want 16000", len(data))
		}
	})
}

func TestAudioSession_BackgroundInterrupts(t *testing.T) {
	s, _, clock := newTestSession(t)
	ctx := context.Background()

	rec, _ := s.CreateRecording(ctx, media.RecordingOptions{})
	clock.Advance(2 * time.Second)
	s.EnterBackground()
	clock.Advance(5 * time.Second)

	st, _ := rec.Status(ctx)
	if st.IsRecording || st.DurationMillis != 2000 {
		t.Errorf("Status() after background = %+v, want stopped at 2000ms", st)
	}
	if _, err := s.CreateRecording(ctx, media.RecordingOptions{}); err == nil {
		t.Error("CreateRecording() in background expected error")
	}

	s.EnterForeground()
	if err := rec.StopAndUnload(ctx); err != nil {
		t.Errorf("StopAndUnload() error = %v", err)
	}
}

func TestAudioSession_BackgroundAllowed(t *testing.T) {
	s, _, clock := newTestSession(t)
	ctx := context.Background()
	s.SetAudioMode(ctx, media.AudioMode{AllowsRecording: true, StaysActiveInBackground: true})

	rec, _ := s.CreateRecording(ctx, media.RecordingOptions{})
	s.EnterBackground()
	clock.Advance(time.Second)

	if st, _ := rec.Status(ctx); !st.IsRecording || st.DurationMillis != 1000 {
		t.Errorf("Status() = %+v, want still recording", st)
	}
}

func TestPCMConversions(t *testing.T) {
	if got := PCMBytes(time.Second, 8000); got != 16000 {
		t.Errorf("PCMBytes(1s, 8000) = %d, want 16000", got)
	}
	if got := PCMBytes(-time.Second, 8000); got != 0 {
		t.Errorf("PCMBytes(-1s) = %d, want 0", got)
	}
	if got := PCMDuration(16000, 8000); got != time.Second {
		t.Errorf("PCMDuration(16000, 8000) = %v, want 1s", got)
	}
	if got := PCMDuration(100, 0); got != 0 {
		t.Errorf("PCMDuration with zero rate = %v, want 0", got)
	}
}
