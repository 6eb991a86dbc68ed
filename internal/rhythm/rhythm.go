// Package rhythm synthesises procedural rhythm beds. When no pre-recorded
// beat asset is available, the pipeline falls back to these fully
// deterministic patterns: short sine tones stamped onto a fixed musical grid.
package rhythm

import (
	"time"

	"github.com/rhymeforge/rhymeforge/pkg/audio"
)

// Style selects one of the built-in beat patterns.
type Style string

const (
	// StyleTrap is an EDM-trap fusion: four-on-the-floor kicks, snares on 2
	// and 4, sixteenth-note hats, and a sub-bass drop every eight bars.
	StyleTrap Style = "trap"

	// StyleBoomBap fills the boom-bap slot with a house pattern: kicks on
	// every beat, claps on 2 and 4, alternating closed/open hats on the
	// off-eighths.
	StyleBoomBap Style = "boom_bap"

	// StyleLofi fills the lofi slot with a progressive pattern: syncopated
	// kicks, a snare on 2, off-grid percussion, and a bass note every two
	// bars.
	StyleLofi Style = "lofi"
)

// IsValid reports whether s is a recognised beat style.
func (s Style) IsValid() bool {
	switch s {
	case StyleTrap, StyleBoomBap, StyleLofi:
		return true
	}
	return false
}

// Sequencing grid. All patterns run at a fixed 120 BPM: 500 ms per beat,
// four beats per bar.
const (
	gridBPM    = 120
	beatMillis = 60_000 / gridBPM
	barMillis  = beatMillis * 4
)

// Render synthesises a rhythm bed of exactly the requested duration at the
// given sample rate. Output is mono; the mixer conforms it to the vocal's
// format. Unknown styles render the trap pattern — the renderer is total so
// the pipeline never has to handle a pattern error.
func Render(style Style, d time.Duration, sampleRate int) *audio.Segment {
	seq := newSequencer(d, sampleRate)
	switch style {
	case StyleBoomBap:
		seq.stampHouse()
	case StyleLofi:
		seq.stampProgressive()
	default:
		seq.stampTrap()
	}
	return seq.segment()
}

// sequencer accumulates tone events into a single sample buffer. Stamping
// adds samples in place with int16 clamping, so rendering a three-minute bed
// is linear in its length rather than quadratic in the event count.
type sequencer struct {
	samples    []int16
	sampleRate int
	durMillis  int
}

func newSequencer(d time.Duration, sampleRate int) *sequencer {
	frames := int(int64(d) * int64(sampleRate) / int64(time.Second))
	return &sequencer{
		samples:    make([]int16, frames),
		sampleRate: sampleRate,
		durMillis:  int(d / time.Millisecond),
	}
}

func (q *sequencer) segment() *audio.Segment {
	seg, err := audio.NewSegment(q.samples, q.sampleRate, 1)
	if err != nil {
		// Unreachable: mono buffers are always aligned.
		panic("rhythm: " + err.Error())
	}
	return seg
}

// stamp adds the tone's samples into the buffer starting at offsetMillis.
// Events extending past the end of the bed are truncated, never extended —
// the bed's length is the contract.
func (q *sequencer) stamp(tone *audio.Segment, offsetMillis int) {
	start := int(int64(offsetMillis) * int64(q.sampleRate) / 1000)
	if start < 0 || start >= len(q.samples) {
		return
	}
	for i, v := range tone.Samples() {
		j := start + i
		if j >= len(q.samples) {
			break
		}
		sum := int32(q.samples[j]) + int32(v)
		if sum > 32767 {
			sum = 32767
		} else if sum < -32768 {
			sum = -32768
		}
		q.samples[j] = int16(sum)
	}
}

// tone pre-renders one instrument voice for repeated stamping.
func (q *sequencer) tone(freq float64, durMillis int, amplitude float64) *audio.Segment {
	return audio.Tone(freq, time.Duration(durMillis)*time.Millisecond, amplitude, q.sampleRate)
}

// stampTrap renders the EDM-trap pattern.
func (q *sequencer) stampTrap() {
	kick := q.tone(60, 150, 0.8)
	snare := q.tone(200, 100, 0.6)
	hat := q.tone(8000, 25, 0.3)
	subBass := q.tone(40, 400, 0.7)

	for barStart := 0; barStart < q.durMillis; barStart += barMillis {
		// Four-on-the-floor kicks.
		for beat := 0; beat < 4; beat++ {
			q.stamp(kick, barStart+beat*beatMillis)
		}

		// Snare on beats 2 and 4.
		q.stamp(snare, barStart+beatMillis)
		q.stamp(snare, barStart+3*beatMillis)

		// Sixteenth-note hats, skipping the kick positions.
		for sixteenth := 0; sixteenth < 16; sixteenth++ {
			if sixteenth%4 != 0 {
				q.stamp(hat, barStart+sixteenth*(beatMillis/4))
			}
		}

		// Sub-bass drop every eight bars.
		if (barStart/barMillis)%8 == 0 {
			q.stamp(subBass, barStart)
		}
	}
}

// stampHouse renders the four-on-the-floor house pattern (boom-bap slot).
func (q *sequencer) stampHouse() {
	kick := q.tone(80, 120, 0.9)
	clap := q.tone(1500, 80, 0.5)
	hatClosed := q.tone(12000, 20, 0.2)
	hatOpen := q.tone(8000, 60, 0.3)

	for barStart := 0; barStart < q.durMillis; barStart += barMillis {
		for beat := 0; beat < 4; beat++ {
			q.stamp(kick, barStart+beat*beatMillis)
		}

		// Clap on beats 2 and 4.
		q.stamp(clap, barStart+beatMillis)
		q.stamp(clap, barStart+3*beatMillis)

		// Hats on the off-eighths, opening up on the last one.
		for eighth := 0; eighth < 8; eighth++ {
			if eighth%2 == 1 {
				hat := hatClosed
				if eighth == 7 {
					hat = hatOpen
				}
				q.stamp(hat, barStart+eighth*(beatMillis/2))
			}
		}
	}
}

// stampProgressive renders the progressive pattern (lofi slot).
func (q *sequencer) stampProgressive() {
	kick := q.tone(70, 180, 0.8)
	snare := q.tone(250, 90, 0.4)
	perc := q.tone(4000, 30, 0.25)
	bass := q.tone(55, 300, 0.6)

	for barStart := 0; barStart < q.durMillis; barStart += barMillis {
		// Syncopated kick pattern.
		for _, kickBeat := range []float64{0, 2.5, 3.5} {
			q.stamp(kick, barStart+int(kickBeat*beatMillis))
		}

		// Snare on beat 2.
		q.stamp(snare, barStart+beatMillis)

		// Off-grid percussion hits.
		for _, percBeat := range []float64{1.5, 2.75, 3.25} {
			q.stamp(perc, barStart+int(percBeat*beatMillis))
		}

		// Bass note every two bars.
		if (barStart/barMillis)%2 == 0 {
			q.stamp(bass, barStart)
		}
	}
}
