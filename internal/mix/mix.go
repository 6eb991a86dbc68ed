// Package mix combines the processed vocal with a rhythm bed and applies
// final mastering.
package mix

import (
	"time"

	"github.com/rhymeforge/rhymeforge/pkg/audio"
)

// Gain staging: the vocal carries the track, the bed sits behind it.
const (
	vocalGainDB = 12.0
	bedGainDB   = -6.0
)

// Ducking parameters for [Ducked]: bed attenuation follows the combined
// signal energy over 100 ms windows, capped at 70%.
const (
	duckWindow    = 100 * time.Millisecond
	duckEnergyMul = 2.0
	duckMax       = 0.7
)

// Mix overlays the bed under the vocal and normalises the result. The bed is
// conformed to the vocal's format and looped (or trimmed) to its length, so
// the output always has exactly the vocal's frame count.
func Mix(vocal, bed *audio.Segment) *audio.Segment {
	bed = prepareBed(vocal, bed)
	return vocal.Gain(vocalGainDB).Overlay(bed, 0).Normalize(1.0)
}

// Ducked mixes with a simulated sidechain: per 100 ms window, the bed is
// attenuated in proportion to the energy of the combined signal, so the bed
// pumps down while the vocal speaks and swells back in the gaps. Unlike
// [Mix] the result is not normalised; callers master it afterwards.
func Ducked(vocal, bed *audio.Segment) *audio.Segment {
	bed = prepareBed(vocal, bed)
	vocalStaged := vocal.Gain(vocalGainDB)

	combined := vocalStaged.Overlay(bed, 0)

	channels := vocal.Channels()
	window := framesFor(duckWindow, vocal.SampleRate()) * channels
	if window == 0 {
		return combined
	}

	combinedSamples := combined.Samples()
	bedSamples := bed.Samples()
	ducked := make([]float64, len(bedSamples))
	for i, v := range bedSamples {
		ducked[i] = float64(v) / (1 << 15)
	}

	for start := 0; start+window <= len(combinedSamples); start += window {
		energy := 0.0
		for _, v := range combinedSamples[start : start+window] {
			energy += abs(float64(v) / (1 << 15))
		}
		energy /= float64(window)

		duck := min(duckMax, energy*duckEnergyMul)
		for i := start; i < start+window && i < len(ducked); i++ {
			ducked[i] *= 1 - duck
		}
	}

	vocalSamples := vocalStaged.Samples()
	out := make([]int16, len(vocalSamples))
	for i, v := range vocalSamples {
		sum := float64(v) + ducked[i]*(1<<15)
		if sum > 32767 {
			sum = 32767
		} else if sum < -32768 {
			sum = -32768
		}
		out[i] = int16(sum)
	}

	seg, err := audio.NewSegment(out, vocal.SampleRate(), channels)
	if err != nil {
		// Unreachable: the buffer mirrors the staged vocal's layout.
		return combined
	}
	return seg
}

// prepareBed conforms the bed to the vocal's format, loops or trims it to
// the vocal's exact frame count, and applies the bed gain.
func prepareBed(vocal, bed *audio.Segment) *audio.Segment {
	bed = bed.Conform(vocal.SampleRate(), vocal.Channels())

	want := vocal.Frames() * vocal.Channels()
	src := bed.Samples()
	looped := make([]int16, want)
	if len(src) > 0 {
		for i := 0; i < want; i++ {
			looped[i] = src[i%len(src)]
		}
	}

	exact, err := audio.NewSegment(looped, vocal.SampleRate(), vocal.Channels())
	if err != nil {
		// Unreachable: the buffer mirrors the vocal's layout.
		return audio.Silence(vocal.Duration(), vocal.SampleRate(), vocal.Channels())
	}
	return exact.Gain(bedGainDB)
}

func framesFor(d time.Duration, sampleRate int) int {
	return int(int64(d) * int64(sampleRate) / int64(time.Second))
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
