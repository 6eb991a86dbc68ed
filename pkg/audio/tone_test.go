package audio_test

import (
	"testing"
	"time"

	"github.com/rhymeforge/rhymeforge/pkg/audio"
)

func TestTone_Deterministic(t *testing.T) {
	a := audio.Tone(440, 100*time.Millisecond, 0.8, 44100)
	b := audio.Tone(440, 100*time.Millisecond, 0.8, 44100)
	if a.Frames() != b.Frames() {
		t.Fatalf("frame mismatch: %d vs %d", a.Frames(), b.Frames())
	}
	for i := range a.Samples() {
		if a.Samples()[i] != b.Samples()[i] {
			t.Fatalf("sample %d differs between identical calls", i)
		}
	}
}

func TestTone_DurationAndAmplitude(t *testing.T) {
	s := audio.Tone(60, 150*time.Millisecond, 0.8, 44100)
	if got := s.Duration(); got != 150*time.Millisecond {
		t.Errorf("duration = %v, want 150ms", got)
	}
	peak := s.Peak()
	if peak < 0.75 || peak > 0.85 {
		t.Errorf("peak = %f, want ≈0.8", peak)
	}
	if s.Channels() != 1 {
		t.Errorf("channels = %d, want mono", s.Channels())
	}
}

func TestTone_StartsAtZeroCrossing(t *testing.T) {
	s := audio.Tone(1000, 10*time.Millisecond, 1.0, 44100)
	if got := s.Samples()[0]; got != 0 {
		t.Errorf("first sample = %d, want 0 (sine starts at phase 0)", got)
	}
}
