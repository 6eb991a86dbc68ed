package effects_test

import (
	"testing"
	"time"

	"github.com/rhymeforge/rhymeforge/internal/effects"
	"github.com/rhymeforge/rhymeforge/pkg/audio"
)

func TestProcessPreservesFormat(t *testing.T) {
	chain := effects.NewChain(effects.Config{CompressionRatio: 4})
	in := audio.Tone(220, time.Second, 0.5, 22050)

	out := chain.Process(in)

	if out.Frames() != in.Frames() {
		t.Errorf("Frames() = %d, want %d", out.Frames(), in.Frames())
	}
	if out.SampleRate() != in.SampleRate() {
		t.Errorf("SampleRate() = %d, want %d", out.SampleRate(), in.SampleRate())
	}
	if out.Channels() != in.Channels() {
		t.Errorf("Channels() = %d, want %d", out.Channels(), in.Channels())
	}
}

func TestProcessLimitsPeak(t *testing.T) {
	chain := effects.NewChain(effects.Config{CompressionRatio: 4})
	in := audio.Tone(440, 500*time.Millisecond, 1.0, 22050)

	out := chain.Process(in)

	// The soft clip bounds the chain output at 0.95; allow a little slack
	// for int16 rounding.
	if peak := out.Peak(); peak > 0.96 {
		t.Errorf("Peak() = %f, want <= 0.95", peak)
	}
	if out.Peak() == 0 {
		t.Error("Process returned silence for a non-silent input")
	}
}

func TestProcessCompressesPeaks(t *testing.T) {
	chain := effects.NewChain(effects.Config{CompressionRatio: 4})

	// A quiet tone followed by a loud one. After normalisation and
	// compression the loud part should sit closer to the quiet part than in
	// the raw input.
	quiet := audio.Tone(220, 500*time.Millisecond, 0.1, 22050)
	loud := audio.Tone(220, 500*time.Millisecond, 0.9, 22050)
	in := quiet.Append(loud)

	out := chain.Process(in)

	half := out.Duration() / 2
	quietOut := out.Slice(0, half)
	loudOut := out.Slice(half, out.Duration())

	inRatio := loud.Peak() / quiet.Peak()
	outRatio := loudOut.Peak() / quietOut.Peak()
	if outRatio >= inRatio {
		t.Errorf("peak ratio %f did not shrink from %f", outRatio, inRatio)
	}
}

func TestProcessEmptySegmentDegrades(t *testing.T) {
	degraded := 0
	chain := effects.NewChain(effects.Config{CompressionRatio: 4},
		effects.WithDegradeHook(func() { degraded++ }))

	in, err := audio.NewSegment(nil, 22050, 1)
	if err != nil {
		t.Fatalf("NewSegment: %v", err)
	}

	out := chain.Process(in)

	if out == nil {
		t.Fatal("Process returned nil")
	}
	if degraded != 1 {
		t.Errorf("degrade hook fired %d times, want 1", degraded)
	}
}

func TestProcessDeterministic(t *testing.T) {
	chain := effects.NewChain(effects.Config{CompressionRatio: 4})
	in := audio.Tone(330, 250*time.Millisecond, 0.6, 22050)

	a := chain.Process(in)
	b := chain.Process(in)

	for i, v := range a.Samples() {
		if b.Samples()[i] != v {
			t.Fatalf("outputs diverge at sample %d", i)
		}
	}
}
