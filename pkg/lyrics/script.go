// Package lyrics models the scored lyric script consumed by the audio
// pipeline and provides the deterministic text transform that prepares a
// script for spoken synthesis.
package lyrics

import (
	"strings"
	"time"
)

// Mark is an optional timing annotation attaching a line or section of the
// script to an offset within the finished track.
type Mark struct {
	// Offset is the position of the line relative to the start of the track.
	Offset time.Duration `yaml:"offset" json:"offset"`

	// Duration is how long the line is expected to occupy.
	Duration time.Duration `yaml:"duration" json:"duration"`

	// Line is the lyric line or section label the mark refers to.
	Line string `yaml:"line" json:"line"`
}

// Script is a scored lyric script: an intro, ordered verses, a hook, and an
// outro, plus the combined text with bracketed section markers as it is fed
// to the formatter.
type Script struct {
	Intro  string   `yaml:"intro" json:"intro"`
	Verses []string `yaml:"verses" json:"verses"`
	Hook   string   `yaml:"hook" json:"hook"`
	Outro  string   `yaml:"outro" json:"outro"`

	// Full is the combined script with [SECTION] markers. If empty it is
	// assembled from the individual parts via [Script.FullText].
	Full string `yaml:"full" json:"full"`

	// Marks optionally carries per-line timing annotations.
	Marks []Mark `yaml:"marks,omitempty" json:"marks,omitempty"`
}

// FullText returns the combined script with bracketed section markers,
// preferring the pre-assembled Full field when present.
func (s *Script) FullText() string {
	if s.Full != "" {
		return s.Full
	}

	var b strings.Builder
	section := func(name, text string) {
		if text == "" {
			return
		}
		b.WriteString("[" + name + "]\n")
		b.WriteString(text)
		b.WriteString("\n\n")
	}

	section("INTRO", s.Intro)
	for _, v := range s.Verses {
		section("VERSE", v)
	}
	section("HOOK", s.Hook)
	section("OUTRO", s.Outro)
	return strings.TrimRight(b.String(), "\n")
}
