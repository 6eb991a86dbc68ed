package lyrics_test

import (
	"strings"
	"testing"

	"github.com/rhymeforge/rhymeforge/pkg/lyrics"
)

func TestFormatForSpeech_SectionMarkers(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"hook marker", "[HOOK]", "... YO! ..."},
		{"chorus marker", "[CHORUS]", "... YO! ..."},
		{"lowercase hook", "[hook]", "... YO! ..."},
		{"verse marker", "[VERSE]", "..."},
		{"intro marker", "[INTRO]", "..."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := lyrics.FormatForSpeech(tt.in); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatForSpeech_WordEnhancement(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"emphasis keyword", "spitting fire daily", "spitting, FIRE daily"},
		{"keyword inside token", "fireproof bars", "FIREPROOF bars"},
		{"rhyme suffix tion", "what a sensation", "what a sensation,"},
		{"rhyme suffix ack", "watch your back", "watch your back,"},
		{"exclamation", "let's go!", "let's go! YEAH!"},
		{"question", "you mad?", "you mad? UH!"},
		{"plain line", "nothing special here", "nothing special here"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := lyrics.FormatForSpeech(tt.in); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatForSpeech_JoinsWithPauses(t *testing.T) {
	in := "[INTRO]\nline one\nline two"
	got := lyrics.FormatForSpeech(in)
	want := "... ... line one ... line two"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestFormatForSpeech_HookAndFireScenario(t *testing.T) {
	in := strings.Join([]string{
		"[VERSE]",
		"my rhymes are pure fire tonight",
		"[HOOK]",
		"this is the hook",
	}, "\n")

	got := lyrics.FormatForSpeech(in)
	if !strings.Contains(got, "... YO! ...") {
		t.Errorf("formatted output missing hook pause token: %q", got)
	}
	if !strings.Contains(got, "FIRE") {
		t.Errorf("formatted output missing emphasised keyword: %q", got)
	}
}

func TestFormatForSpeech_Deterministic(t *testing.T) {
	in := "[HOOK]\ndrop the beat now!\nis this your flow?"
	first := lyrics.FormatForSpeech(in)
	for i := 0; i < 10; i++ {
		if got := lyrics.FormatForSpeech(in); got != first {
			t.Fatalf("output changed between calls: %q vs %q", got, first)
		}
	}
}

func TestFullText_AssemblesSections(t *testing.T) {
	s := &lyrics.Script{
		Intro:  "yo yo",
		Verses: []string{"verse one", "verse two"},
		Hook:   "the hook",
		Outro:  "we out",
	}
	got := s.FullText()

	for _, marker := range []string{"[INTRO]", "[VERSE]", "[HOOK]", "[OUTRO]"} {
		if !strings.Contains(got, marker) {
			t.Errorf("missing %s marker in %q", marker, got)
		}
	}
	if strings.Count(got, "[VERSE]") != 2 {
		t.Errorf("want 2 verse markers, got %d", strings.Count(got, "[VERSE]"))
	}
}

func TestFullText_PrefersPreassembled(t *testing.T) {
	s := &lyrics.Script{Full: "[CUSTOM]\nalready built", Intro: "ignored"}
	if got := s.FullText(); got != "[CUSTOM]\nalready built" {
		t.Errorf("got %q", got)
	}
}
