package main

import (
	"context"
	"testing"

	"github.com/rhymeforge/rhymeforge/internal/config"
	"github.com/rhymeforge/rhymeforge/internal/encode"
	"github.com/rhymeforge/rhymeforge/internal/resilience"
	"github.com/rhymeforge/rhymeforge/pkg/provider/speech"
)

func TestBuildSpeechSynthesizerWrapsConfiguredBackend(t *testing.T) {
	reg := config.NewRegistry()
	registerBuiltinProviders(reg)

	synth, ok := buildSpeechSynthesizer(reg, config.ProviderEntry{Name: "openai", APIKey: "test-key"})
	if !ok {
		t.Fatal("configured backend reported as unusable")
	}
	if _, wrapped := synth.(*resilience.SpeechFallback); !wrapped {
		t.Fatalf("synthesizer is %T, want *resilience.SpeechFallback", synth)
	}
}

func TestBuildSpeechSynthesizerSkipsBreakerForStub(t *testing.T) {
	reg := config.NewRegistry()
	registerBuiltinProviders(reg)

	// No breaker wrapping: the stub fails every call by design, a breaker
	// would only trip and log on it.
	synth, ok := buildSpeechSynthesizer(reg, config.ProviderEntry{Name: "unknown"})
	if ok {
		t.Fatal("unusable backend reported as ok")
	}
	if _, stub := synth.(speech.Unavailable); !stub {
		t.Fatalf("synthesizer is %T, want the bare speech.Unavailable stub", synth)
	}
}

func TestReadinessCheckersReportDegradedSpeech(t *testing.T) {
	checkers := readinessCheckers(&config.Config{}, false)

	for _, c := range checkers {
		if c.Name != "speech" {
			continue
		}
		if err := c.Check(context.Background()); err == nil {
			t.Error("speech probe passed without a usable provider")
		}
		return
	}
	t.Fatal("no speech checker built")
}

func TestReadinessCheckersProbeBeatsDir(t *testing.T) {
	cfg := &config.Config{}
	cfg.Beats.Dir = t.TempDir()

	for _, c := range readinessCheckers(cfg, true) {
		if err := c.Check(context.Background()); err != nil {
			t.Errorf("%s probe failed: %v", c.Name, err)
		}
	}

	cfg.Beats.Dir = "/nonexistent/beats"
	for _, c := range readinessCheckers(cfg, true) {
		if c.Name != "beats" {
			continue
		}
		if err := c.Check(context.Background()); err == nil {
			t.Error("beats probe passed on a missing directory")
		}
	}
}

func TestWithFormatExt(t *testing.T) {
	for _, tt := range []struct {
		path   string
		format encode.Format
		want   string
	}{
		{"track.mp3", encode.FormatMP3, "track.mp3"},
		{"track.mp3", encode.FormatWAV, "track.wav"},
		{"track", encode.FormatMP3, "track.mp3"},
	} {
		if got := withFormatExt(tt.path, tt.format); got != tt.want {
			t.Errorf("withFormatExt(%q, %q) = %q, want %q", tt.path, tt.format, got, tt.want)
		}
	}
}
