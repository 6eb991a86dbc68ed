// Package tempo estimates the tempo of a vocal segment and time-stretches
// it towards a target BPM.
//
// Synchronisation is best effort: estimation works poorly on sparse or very
// short material, and a bad stretch sounds worse than an off-tempo vocal, so
// [Synchronizer.Sync] returns the input unchanged on any failure instead of
// propagating an error.
package tempo

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/rhymeforge/rhymeforge/pkg/audio"
)

// Tempo search range. Spoken vocals land well inside it.
const (
	minBPM = 60
	maxBPM = 180
)

// Estimation parameters: onset energy is measured over 20 ms hops, and at
// least four seconds of audio are needed for the autocorrelation to see a
// few beat periods.
const (
	hopMillis   = 20
	minEstimate = 4 * time.Second
)

// Stretch ratios further than this from 1.0 trigger an actual stretch;
// smaller deviations are inaudible next to the artefacts of correcting them.
const syncThreshold = 0.1

var (
	// ErrTooShort indicates the segment is too short to estimate a tempo.
	ErrTooShort = errors.New("tempo: segment too short to estimate")

	// ErrNoOnsets indicates the segment has no usable energy transients.
	ErrNoOnsets = errors.New("tempo: no onsets detected")
)

// Estimate returns the estimated tempo of seg in beats per minute.
//
// It builds an onset-strength envelope (positive deltas of per-hop energy)
// and autocorrelates it over the lag range corresponding to 60-180 BPM; the
// lag with the strongest correlation wins.
func Estimate(seg *audio.Segment) (float64, error) {
	if seg == nil || seg.Duration() < minEstimate {
		return 0, ErrTooShort
	}

	onsets := onsetEnvelope(seg)

	hopsPerSecond := 1000.0 / hopMillis
	minLag := int(hopsPerSecond * 60 / maxBPM)
	maxLag := int(hopsPerSecond * 60 / minBPM)
	if maxLag >= len(onsets) {
		maxLag = len(onsets) - 1
	}
	if minLag < 1 || minLag > maxLag {
		return 0, ErrTooShort
	}

	bestLag, bestScore := 0, 0.0
	for lag := minLag; lag <= maxLag; lag++ {
		score := 0.0
		for i := lag; i < len(onsets); i++ {
			score += onsets[i] * onsets[i-lag]
		}
		// Normalise by overlap length so long lags aren't penalised.
		score /= float64(len(onsets) - lag)
		if score > bestScore {
			bestScore = score
			bestLag = lag
		}
	}
	if bestLag == 0 || bestScore == 0 {
		return 0, ErrNoOnsets
	}

	return 60 * hopsPerSecond / float64(bestLag), nil
}

// onsetEnvelope returns the half-wave rectified energy delta per hop,
// computed on a mono downmix.
func onsetEnvelope(seg *audio.Segment) []float64 {
	mono := seg.Conform(seg.SampleRate(), 1)
	samples := mono.Samples()

	hop := seg.SampleRate() * hopMillis / 1000
	energies := make([]float64, 0, len(samples)/hop)
	for start := 0; start+hop <= len(samples); start += hop {
		sum := 0.0
		for _, v := range samples[start : start+hop] {
			f := float64(v) / (1 << 15)
			sum += f * f
		}
		energies = append(energies, sum/float64(hop))
	}

	onsets := make([]float64, len(energies))
	for i := 1; i < len(energies); i++ {
		if d := energies[i] - energies[i-1]; d > 0 {
			onsets[i] = d
		}
	}
	return onsets
}

// Stretch changes the duration of seg by 1/ratio without changing its pitch,
// using windowed overlap-add: a ratio of 2 halves the duration, 0.5 doubles
// it. Sample rate and channel count are preserved.
func Stretch(seg *audio.Segment, ratio float64) (*audio.Segment, error) {
	if ratio <= 0 || math.IsNaN(ratio) || math.IsInf(ratio, 0) {
		return nil, fmt.Errorf("tempo: invalid stretch ratio %f", ratio)
	}
	if seg == nil || seg.Frames() == 0 {
		return nil, audio.ErrEmptySegment
	}
	if math.Abs(ratio-1) < 1e-9 {
		return seg, nil
	}

	const windowMillis = 50
	window := seg.SampleRate() * windowMillis / 1000
	if window > seg.Frames() {
		// Too short to stretch windowed; leave as is.
		return seg, nil
	}
	synthHop := window / 2
	analysisHop := float64(synthHop) * ratio

	channels := seg.Channels()
	src := seg.Samples()
	srcFrames := seg.Frames()

	outFrames := int(float64(srcFrames) / ratio)
	acc := make([]float64, outFrames*channels)
	norm := make([]float64, outFrames)

	hann := make([]float64, window)
	for i := 0; i < window; i++ {
		hann[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(window-1)))
	}

	for outPos := 0; outPos+window <= outFrames; outPos += synthHop {
		inPos := int(float64(outPos) / float64(synthHop) * analysisHop)
		if inPos+window > srcFrames {
			break
		}
		for i := 0; i < window; i++ {
			w := hann[i]
			norm[outPos+i] += w
			for ch := 0; ch < channels; ch++ {
				acc[(outPos+i)*channels+ch] += w * float64(src[(inPos+i)*channels+ch])
			}
		}
	}

	out := make([]int16, outFrames*channels)
	for f := 0; f < outFrames; f++ {
		n := norm[f]
		if n < 1e-6 {
			continue
		}
		for ch := 0; ch < channels; ch++ {
			v := math.Round(acc[f*channels+ch] / n)
			if v > 32767 {
				v = 32767
			} else if v < -32768 {
				v = -32768
			}
			out[f*channels+ch] = int16(v)
		}
	}

	return audio.NewSegment(out, seg.SampleRate(), channels)
}

// Synchronizer wraps estimation and stretching into the best-effort sync
// step of the vocal path.
type Synchronizer struct {
	log *slog.Logger
}

// NewSynchronizer creates a Synchronizer logging through log. A nil logger
// falls back to [slog.Default].
func NewSynchronizer(log *slog.Logger) *Synchronizer {
	if log == nil {
		log = slog.Default()
	}
	return &Synchronizer{log: log}
}

// Sync nudges seg towards targetBPM. The vocal is stretched only when the
// estimated tempo deviates from the target by more than 10%; estimation or
// stretch failures return the input unchanged.
func (s *Synchronizer) Sync(seg *audio.Segment, targetBPM int) *audio.Segment {
	if targetBPM <= 0 {
		return seg
	}

	bpm, err := Estimate(seg)
	if err != nil {
		s.log.Warn("tempo estimation failed, skipping sync", "error", err)
		return seg
	}

	ratio := bpm / float64(targetBPM)
	s.log.Info("estimated vocal tempo",
		"bpm", fmt.Sprintf("%.1f", bpm),
		"target_bpm", targetBPM)

	if math.Abs(ratio-1) <= syncThreshold {
		return seg
	}

	out, err := Stretch(seg, ratio)
	if err != nil {
		s.log.Warn("time stretch failed, using original timing", "error", err)
		return seg
	}
	return out
}
