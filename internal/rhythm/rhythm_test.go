package rhythm_test

import (
	"testing"
	"time"

	"github.com/rhymeforge/rhymeforge/internal/rhythm"
)

func TestStyleIsValid(t *testing.T) {
	for _, tt := range []struct {
		style rhythm.Style
		want  bool
	}{
		{rhythm.StyleTrap, true},
		{rhythm.StyleBoomBap, true},
		{rhythm.StyleLofi, true},
		{rhythm.Style("jazz"), false},
		{rhythm.Style(""), false},
	} {
		if got := tt.style.IsValid(); got != tt.want {
			t.Errorf("Style(%q).IsValid() = %v, want %v", tt.style, got, tt.want)
		}
	}
}

func TestRenderExactDuration(t *testing.T) {
	const sampleRate = 22050

	for _, style := range []rhythm.Style{rhythm.StyleTrap, rhythm.StyleBoomBap, rhythm.StyleLofi} {
		for _, d := range []time.Duration{
			time.Second,
			2500 * time.Millisecond,
			// Shorter than a single bar: events must truncate, not extend.
			300 * time.Millisecond,
			3 * time.Minute,
		} {
			seg := rhythm.Render(style, d, sampleRate)

			wantFrames := int(int64(d) * sampleRate / int64(time.Second))
			if seg.Frames() != wantFrames {
				t.Errorf("Render(%q, %v).Frames() = %d, want %d", style, d, seg.Frames(), wantFrames)
			}
			if seg.Channels() != 1 {
				t.Errorf("Render(%q, %v).Channels() = %d, want 1", style, d, seg.Channels())
			}
			if seg.SampleRate() != sampleRate {
				t.Errorf("Render(%q, %v).SampleRate() = %d, want %d", style, d, seg.SampleRate(), sampleRate)
			}
		}
	}
}

func TestRenderNotSilent(t *testing.T) {
	for _, style := range []rhythm.Style{rhythm.StyleTrap, rhythm.StyleBoomBap, rhythm.StyleLofi} {
		seg := rhythm.Render(style, 4*time.Second, 22050)
		if seg.Peak() == 0 {
			t.Errorf("Render(%q) produced silence", style)
		}
	}
}

func TestRenderDeterministic(t *testing.T) {
	a := rhythm.Render(rhythm.StyleLofi, 5*time.Second, 22050)
	b := rhythm.Render(rhythm.StyleLofi, 5*time.Second, 22050)

	for i, v := range a.Samples() {
		if b.Samples()[i] != v {
			t.Fatalf("renders diverge at sample %d: %d vs %d", i, v, b.Samples()[i])
		}
	}
}

func TestRenderUnknownStyleFallsBackToTrap(t *testing.T) {
	unknown := rhythm.Render(rhythm.Style("jazz"), 2*time.Second, 22050)
	trap := rhythm.Render(rhythm.StyleTrap, 2*time.Second, 22050)

	for i, v := range unknown.Samples() {
		if trap.Samples()[i] != v {
			t.Fatalf("unknown style diverges from trap at sample %d", i)
		}
	}
}

// TestTrapSubBassEveryEightBars checks the sub-bass periodicity by comparing
// the opening window of each bar. At 120 BPM a bar is 2 s, so bars 0 and 8
// (which carry the sub-bass) must be sample-identical to each other and
// differ from bars 1..7 (which are identical among themselves).
func TestTrapSubBassEveryEightBars(t *testing.T) {
	const (
		sampleRate = 22050
		barFrames  = 2 * sampleRate
		// The sub-bass hit lasts 400 ms from the bar start.
		windowFrames = sampleRate * 400 / 1000
	)

	seg := rhythm.Render(rhythm.StyleTrap, 18*time.Second, sampleRate) // 9 bars
	samples := seg.Samples()

	bar := func(n int) []int16 {
		start := n * barFrames
		return samples[start : start+windowFrames]
	}

	equal := func(a, b []int16) bool {
		for i := range a {
			if a[i] != b[i] {
				return false
			}
		}
		return true
	}

	if !equal(bar(0), bar(8)) {
		t.Error("bars 0 and 8 differ; sub-bass should recur every eight bars")
	}
	if equal(bar(0), bar(1)) {
		t.Error("bars 0 and 1 identical; bar 0 should carry the sub-bass")
	}
	for n := 2; n < 8; n++ {
		if !equal(bar(1), bar(n)) {
			t.Errorf("bars 1 and %d differ; only every eighth bar should carry the sub-bass", n)
		}
	}
}
