package audio

import (
	"math"
	"time"
)

// Tone synthesises a single sine-wave event — the building block the rhythm
// synthesiser stamps onto its grid for kicks, snares, hats, and bass hits.
// amplitude is normalised (0–1); the output is mono at the given rate.
//
// The wave is scaled to the int16 range and truncated the same way on every
// call, so identical parameters always produce identical samples.
func Tone(freq float64, d time.Duration, amplitude float64, sampleRate int) *Segment {
	frames := framesForDuration(d, sampleRate)
	samples := make([]int16, frames)
	step := 2 * math.Pi * freq / float64(sampleRate)
	for i := 0; i < frames; i++ {
		w := math.Sin(float64(i)*step) * amplitude
		samples[i] = clampSample(int32(w * (1 << 15)))
	}
	return &Segment{samples: samples, sampleRate: sampleRate, channels: 1}
}
