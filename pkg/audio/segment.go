// Package audio provides the in-memory PCM sample buffer that flows through
// the Rhymeforge pipeline, plus the composition operations the synthesis and
// mixing stages are built from: overlay, gain, slicing, looping, and
// normalisation. Segments are 16-bit little-endian PCM with explicit sample
// rate and channel metadata.
//
// Segments are immutable by convention — every operation returns a new
// Segment and never mutates its receiver or arguments. This keeps the
// pipeline stages free to share segments across goroutines without locking.
package audio

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// BytesPerSample is the sample width used throughout the pipeline.
// All segments are 16-bit PCM; other widths are converted at the codec
// boundary (see DecodeWAV / DecodeMP3).
const BytesPerSample = 2

const (
	maxSample = 32767
	minSample = -32768
)

// ErrEmptySegment is returned by codecs and constructors when asked to
// produce a segment with no samples.
var ErrEmptySegment = errors.New("audio: empty segment")

// Segment is an in-memory PCM sample buffer. Samples are interleaved int16
// values (L R L R … for stereo). The zero value is not usable; construct
// segments via [NewSegment], [Silence], [Tone], or one of the decoders.
type Segment struct {
	samples    []int16
	sampleRate int
	channels   int
}

// NewSegment wraps the given interleaved int16 samples in a Segment.
// The sample slice is used directly, not copied; callers must not mutate it
// afterwards. Returns an error if rate or channels are non-positive, or if
// the sample count is not aligned to the channel count.
func NewSegment(samples []int16, sampleRate, channels int) (*Segment, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("audio: sample rate %d must be positive", sampleRate)
	}
	if channels <= 0 {
		return nil, fmt.Errorf("audio: channel count %d must be positive", channels)
	}
	if len(samples)%channels != 0 {
		return nil, fmt.Errorf("audio: %d samples not aligned to %d channels", len(samples), channels)
	}
	return &Segment{samples: samples, sampleRate: sampleRate, channels: channels}, nil
}

// Silence returns a segment of duration d containing only zero samples.
func Silence(d time.Duration, sampleRate, channels int) *Segment {
	frames := framesForDuration(d, sampleRate)
	return &Segment{
		samples:    make([]int16, frames*channels),
		sampleRate: sampleRate,
		channels:   channels,
	}
}

// SampleRate returns the segment's sample rate in Hz.
func (s *Segment) SampleRate() int { return s.sampleRate }

// Channels returns the segment's channel count (1 = mono, 2 = stereo).
func (s *Segment) Channels() int { return s.channels }

// Samples returns the segment's interleaved int16 samples. The returned
// slice is the segment's backing array — treat it as read-only.
func (s *Segment) Samples() []int16 { return s.samples }

// Frames returns the number of sample frames (samples per channel).
func (s *Segment) Frames() int { return len(s.samples) / s.channels }

// Duration returns the playback duration of the segment.
func (s *Segment) Duration() time.Duration {
	return time.Duration(int64(s.Frames()) * int64(time.Second) / int64(s.sampleRate))
}

// Clone returns a deep copy of the segment.
func (s *Segment) Clone() *Segment {
	cp := make([]int16, len(s.samples))
	copy(cp, s.samples)
	return &Segment{samples: cp, sampleRate: s.sampleRate, channels: s.channels}
}

// Overlay additively mixes other onto s starting at the given offset and
// returns the result. The output has exactly the receiver's length — any
// part of other extending past the end of s is dropped. Sums are clamped to
// the int16 range so loud overlays clip instead of wrapping around.
//
// If other has a different sample rate or channel count it is conformed to
// the receiver's format first (see [Segment.Conform]).
func (s *Segment) Overlay(other *Segment, offset time.Duration) *Segment {
	other = other.Conform(s.sampleRate, s.channels)

	out := s.Clone()
	start := framesForDuration(offset, s.sampleRate) * s.channels
	if start < 0 || start >= len(out.samples) {
		return out
	}
	for i, v := range other.samples {
		j := start + i
		if j >= len(out.samples) {
			break
		}
		out.samples[j] = clampSample(int32(out.samples[j]) + int32(v))
	}
	return out
}

// Gain returns a copy of s with the given gain in decibels applied.
// Samples that would exceed the int16 range are clamped.
func (s *Segment) Gain(db float64) *Segment {
	scale := math.Pow(10, db/20)
	out := &Segment{
		samples:    make([]int16, len(s.samples)),
		sampleRate: s.sampleRate,
		channels:   s.channels,
	}
	for i, v := range s.samples {
		out.samples[i] = clampSample(int32(math.Round(float64(v) * scale)))
	}
	return out
}

// Slice returns the sub-segment [from, to). Bounds are clamped to the
// segment's duration; a degenerate range yields an empty segment.
func (s *Segment) Slice(from, to time.Duration) *Segment {
	start := framesForDuration(from, s.sampleRate) * s.channels
	end := framesForDuration(to, s.sampleRate) * s.channels
	start = min(max(start, 0), len(s.samples))
	end = min(max(end, start), len(s.samples))

	cp := make([]int16, end-start)
	copy(cp, s.samples[start:end])
	return &Segment{samples: cp, sampleRate: s.sampleRate, channels: s.channels}
}

// Append returns the concatenation of s followed by other. other is
// conformed to the receiver's format first.
func (s *Segment) Append(other *Segment) *Segment {
	other = other.Conform(s.sampleRate, s.channels)
	cp := make([]int16, 0, len(s.samples)+len(other.samples))
	cp = append(cp, s.samples...)
	cp = append(cp, other.samples...)
	return &Segment{samples: cp, sampleRate: s.sampleRate, channels: s.channels}
}

// LoopTo repeats s until it is at least d long, then trims the result to
// exactly d. An empty source segment yields silence of the requested length,
// keeping the "output length equals requested length" guarantee total.
func (s *Segment) LoopTo(d time.Duration) *Segment {
	wantFrames := framesForDuration(d, s.sampleRate)
	if s.Frames() == 0 {
		return Silence(d, s.sampleRate, s.channels)
	}

	want := wantFrames * s.channels
	cp := make([]int16, 0, want)
	for len(cp) < want {
		cp = append(cp, s.samples...)
	}
	cp = cp[:want]
	return &Segment{samples: cp, sampleRate: s.sampleRate, channels: s.channels}
}

// Peak returns the absolute peak amplitude of the segment normalised to
// [0, 1]. An empty segment has a peak of 0.
func (s *Segment) Peak() float64 {
	var peak int32
	for _, v := range s.samples {
		a := int32(v)
		if a < 0 {
			a = -a
		}
		if a > peak {
			peak = a
		}
	}
	return float64(peak) / -minSample
}

// RMS returns the root-mean-square level of the segment normalised to
// [0, 1]. An empty segment has an RMS of 0.
func (s *Segment) RMS() float64 {
	if len(s.samples) == 0 {
		return 0
	}
	var sum float64
	for _, v := range s.samples {
		f := float64(v) / -minSample
		sum += f * f
	}
	return math.Sqrt(sum / float64(len(s.samples)))
}

// Normalize scales the segment so its peak reaches targetPeak (normalised,
// e.g. 0.99 for just under full scale). A silent segment is returned
// unchanged — there is nothing to scale.
func (s *Segment) Normalize(targetPeak float64) *Segment {
	peak := s.Peak()
	if peak == 0 {
		return s.Clone()
	}
	return s.Gain(20 * math.Log10(targetPeak/peak))
}

// clampSample clamps a 32-bit intermediate sum to the int16 sample range.
func clampSample(v int32) int16 {
	if v > maxSample {
		return maxSample
	}
	if v < minSample {
		return minSample
	}
	return int16(v)
}

// framesForDuration converts a duration to a frame count at the given rate
// using integer arithmetic, so millisecond-exact durations map to exact
// frame counts.
func framesForDuration(d time.Duration, sampleRate int) int {
	return int(int64(d) * int64(sampleRate) / int64(time.Second))
}
