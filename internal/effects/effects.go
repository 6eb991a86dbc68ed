// Package effects implements the vocal processing chain.
//
// The full chain runs peak normalisation, gentle compression, a small-room
// reverb and a soft clip. It is built to degrade rather than fail: when the
// full chain cannot run, [Chain.Process] falls back to a simpler
// filter-based chain and reports the degradation through the configured
// logger and hook. Process never returns an error.
package effects

import (
	"log/slog"
	"math"

	"github.com/rhymeforge/rhymeforge/pkg/audio"
)

// Full-chain parameters. Tuned for clarity: the compressor only catches
// peaks and the reverb adds presence without an audible tail.
const (
	compThresholdDB = -12.0
	compRatio       = 2.0
	compAttackMs    = 5.0
	compReleaseMs   = 100.0

	reverbRoomSize = 0.3
	reverbDamping  = 0.7
	reverbWet      = 0.1
	reverbDry      = 0.9

	clipCeiling = 0.95
)

// Basic-chain parameters. The compression ratio comes from [Config].
const (
	basicThresholdDB = -20.0
	basicLowPassHz   = 8000.0
	basicHighPassHz  = 100.0
	basicGainDB      = 3.0
)

// Config carries the per-request knobs of the chain.
type Config struct {
	// CompressionRatio is the ratio used by the fallback chain. Values
	// below 1 are treated as 1 (no compression).
	CompressionRatio float64
}

// Chain processes vocal segments.
type Chain struct {
	cfg       Config
	log       *slog.Logger
	onDegrade func()
}

// Option configures a [Chain].
type Option func(*Chain)

// WithLogger sets the logger used to report degradation. Defaults to
// [slog.Default].
func WithLogger(log *slog.Logger) Option {
	return func(c *Chain) {
		c.log = log
	}
}

// WithDegradeHook registers fn to be called once per Process invocation that
// falls back to the basic chain. Used to feed the degradation counter.
func WithDegradeHook(fn func()) Option {
	return func(c *Chain) {
		c.onDegrade = fn
	}
}

// NewChain creates a vocal effects chain.
func NewChain(cfg Config, opts ...Option) *Chain {
	c := &Chain{cfg: cfg, log: slog.Default()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Process runs the full chain over seg and returns the processed copy. On
// any full-chain failure it logs a warning and runs the basic chain instead,
// so the caller always gets usable audio back.
func (c *Chain) Process(seg *audio.Segment) *audio.Segment {
	out, err := c.full(seg)
	if err == nil {
		return out
	}

	c.log.Warn("effects chain degraded to basic processing", "error", err)
	if c.onDegrade != nil {
		c.onDegrade()
	}
	return c.basic(seg)
}

// full is the primary chain: normalize, compress, reverb, soft clip.
func (c *Chain) full(seg *audio.Segment) (*audio.Segment, error) {
	if seg == nil || seg.Frames() == 0 {
		return nil, audio.ErrEmptySegment
	}

	out := seg.Normalize(1.0)
	samples := toFloat(out)

	compress(samples, out.SampleRate(), out.Channels(),
		compThresholdDB, compRatio, compAttackMs, compReleaseMs)
	reverb(samples, out.SampleRate(), out.Channels())
	for i, v := range samples {
		samples[i] = max(-clipCeiling, min(clipCeiling, v))
	}

	return fromFloat(samples, out.SampleRate(), out.Channels())
}

// basic is the fallback chain: compress with the configured ratio, trim the
// spectrum to the vocal band, add a little drive, re-normalize. Every step
// is total, so the fallback itself cannot fail.
func (c *Chain) basic(seg *audio.Segment) *audio.Segment {
	if seg == nil || seg.Frames() == 0 {
		return seg
	}

	ratio := max(1.0, c.cfg.CompressionRatio)

	samples := toFloat(seg)
	compress(samples, seg.SampleRate(), seg.Channels(),
		basicThresholdDB, ratio, compAttackMs, compReleaseMs)
	lowPass(samples, seg.SampleRate(), seg.Channels(), basicLowPassHz)
	highPass(samples, seg.SampleRate(), seg.Channels(), basicHighPassHz)

	gain := math.Pow(10, basicGainDB/20)
	for i, v := range samples {
		samples[i] = v * gain
	}

	out, err := fromFloat(samples, seg.SampleRate(), seg.Channels())
	if err != nil {
		return seg
	}
	return out.Normalize(1.0)
}

// toFloat converts the segment's samples to the [-1, 1) float domain.
func toFloat(seg *audio.Segment) []float64 {
	src := seg.Samples()
	out := make([]float64, len(src))
	for i, v := range src {
		out[i] = float64(v) / (1 << 15)
	}
	return out
}

// fromFloat converts a float buffer back to an int16 segment, clamping
// anything the chain pushed out of range.
func fromFloat(samples []float64, sampleRate, channels int) (*audio.Segment, error) {
	out := make([]int16, len(samples))
	for i, v := range samples {
		s := math.Round(v * (1 << 15))
		if s > 32767 {
			s = 32767
		} else if s < -32768 {
			s = -32768
		}
		out[i] = int16(s)
	}
	return audio.NewSegment(out, sampleRate, channels)
}

// compress applies feed-forward dynamic range compression with an
// exponential envelope follower. Gain reduction is shared across channels so
// the stereo image stays put.
func compress(samples []float64, sampleRate, channels int, thresholdDB, ratio, attackMs, releaseMs float64) {
	attack := envCoeff(attackMs, sampleRate)
	release := envCoeff(releaseMs, sampleRate)
	slope := 1 - 1/ratio

	env := 0.0
	frames := len(samples) / channels
	for f := 0; f < frames; f++ {
		peak := 0.0
		for ch := 0; ch < channels; ch++ {
			if v := math.Abs(samples[f*channels+ch]); v > peak {
				peak = v
			}
		}

		if peak > env {
			env = attack*env + (1-attack)*peak
		} else {
			env = release*env + (1-release)*peak
		}

		envDB := -96.0
		if env > 0 {
			envDB = 20 * math.Log10(env)
		}
		if envDB <= thresholdDB {
			continue
		}

		reduction := math.Pow(10, -slope*(envDB-thresholdDB)/20)
		for ch := 0; ch < channels; ch++ {
			samples[f*channels+ch] *= reduction
		}
	}
}

func envCoeff(ms float64, sampleRate int) float64 {
	return math.Exp(-1 / (float64(sampleRate) * ms / 1000))
}

// Comb delays of the reverb, in samples at 44.1 kHz. Scaled to the actual
// sample rate at run time.
var reverbCombTunings = [4]int{1116, 1188, 1277, 1356}

// reverb mixes a small-room parallel-comb reverb into the signal. Damping
// is a one-pole low-pass inside each feedback loop, which shortens the tail
// on the high end.
func reverb(samples []float64, sampleRate, channels int) {
	feedback := reverbRoomSize*0.28 + 0.7
	scale := float64(sampleRate) / 44100

	frames := len(samples) / channels
	for ch := 0; ch < channels; ch++ {
		wet := make([]float64, frames)
		for _, tuning := range reverbCombTunings {
			delay := max(1, int(float64(tuning)*scale))
			buf := make([]float64, delay)
			filtered := 0.0
			for f := 0; f < frames; f++ {
				out := buf[f%delay]
				filtered = out*(1-reverbDamping) + filtered*reverbDamping
				buf[f%delay] = samples[f*channels+ch] + filtered*feedback
				wet[f] += out
			}
		}
		for f := 0; f < frames; f++ {
			i := f*channels + ch
			samples[i] = samples[i]*reverbDry + wet[f]/float64(len(reverbCombTunings))*reverbWet
		}
	}
}

// lowPass applies a one-pole low-pass filter per channel.
func lowPass(samples []float64, sampleRate, channels int, cutoffHz float64) {
	alpha := onePoleAlpha(cutoffHz, sampleRate)
	for ch := 0; ch < channels; ch++ {
		prev := 0.0
		for f := 0; f < len(samples)/channels; f++ {
			i := f*channels + ch
			prev += alpha * (samples[i] - prev)
			samples[i] = prev
		}
	}
}

// highPass applies a one-pole high-pass filter per channel.
func highPass(samples []float64, sampleRate, channels int, cutoffHz float64) {
	alpha := 1 - onePoleAlpha(cutoffHz, sampleRate)
	for ch := 0; ch < channels; ch++ {
		prevIn := 0.0
		prevOut := 0.0
		for f := 0; f < len(samples)/channels; f++ {
			i := f*channels + ch
			out := alpha * (prevOut + samples[i] - prevIn)
			prevIn = samples[i]
			prevOut = out
			samples[i] = out
		}
	}
}

func onePoleAlpha(cutoffHz float64, sampleRate int) float64 {
	dt := 1 / float64(sampleRate)
	rc := 1 / (2 * math.Pi * cutoffHz)
	return dt / (rc + dt)
}
