package config_test

import (
	"errors"
	"testing"

	"github.com/rhymeforge/rhymeforge/internal/config"
	"github.com/rhymeforge/rhymeforge/internal/rhythm"
	"github.com/rhymeforge/rhymeforge/pkg/provider/beats"
	beatsmock "github.com/rhymeforge/rhymeforge/pkg/provider/beats/mock"
	"github.com/rhymeforge/rhymeforge/pkg/provider/speech"
	speechmock "github.com/rhymeforge/rhymeforge/pkg/provider/speech/mock"
)

func TestDefaultAudio(t *testing.T) {
	cfg := config.DefaultAudio()

	if cfg.Voice != "echo" {
		t.Errorf("Voice = %q, want %q", cfg.Voice, "echo")
	}
	if cfg.Speed != 1.1 {
		t.Errorf("Speed = %f, want 1.1", cfg.Speed)
	}
	if cfg.BeatStyle != rhythm.StyleTrap {
		t.Errorf("BeatStyle = %q, want %q", cfg.BeatStyle, rhythm.StyleTrap)
	}
	if cfg.TargetBPM != 90 {
		t.Errorf("TargetBPM = %d, want 90", cfg.TargetBPM)
	}
}

func TestStyleAudio(t *testing.T) {
	for _, tt := range []struct {
		style        config.Style
		wantRatio    float64
		wantAutotune float64
	}{
		{config.StyleAggressive, 6.0, 0.3},
		{config.StyleWitty, 3.0, 0.5},
		{config.StylePlayful, 4.0, 0.7},
		{config.Style("unknown"), 4.0, 0.7},
	} {
		cfg := config.StyleAudio(tt.style)
		if cfg.CompressionRatio != tt.wantRatio {
			t.Errorf("StyleAudio(%q).CompressionRatio = %f, want %f", tt.style, cfg.CompressionRatio, tt.wantRatio)
		}
		if cfg.AutotuneStrength != tt.wantAutotune {
			t.Errorf("StyleAudio(%q).AutotuneStrength = %f, want %f", tt.style, cfg.AutotuneStrength, tt.wantAutotune)
		}
	}
}

func TestMergedFillsZeroValues(t *testing.T) {
	cfg := config.AudioConfig{Voice: "onyx"}.Merged()

	if cfg.Voice != "onyx" {
		t.Errorf("Voice = %q, want explicit value kept", cfg.Voice)
	}
	if cfg.Speed != 1.1 {
		t.Errorf("Speed = %f, want default 1.1", cfg.Speed)
	}
	if cfg.CompressionRatio != 4.0 {
		t.Errorf("CompressionRatio = %f, want default 4.0", cfg.CompressionRatio)
	}
}

func TestRegistrySpeech(t *testing.T) {
	reg := config.NewRegistry()
	reg.RegisterSpeech("mock", func(entry config.ProviderEntry) (speech.Synthesizer, error) {
		return &speechmock.Synthesizer{Payload: []byte(entry.Model)}, nil
	})

	syn, err := reg.CreateSpeech(config.ProviderEntry{Name: "mock", Model: "tts-test"})
	if err != nil {
		t.Fatalf("CreateSpeech: %v", err)
	}
	if syn == nil {
		t.Fatal("CreateSpeech returned nil synthesizer")
	}

	if _, err := reg.CreateSpeech(config.ProviderEntry{Name: "nope"}); !errors.Is(err, config.ErrProviderNotRegistered) {
		t.Errorf("CreateSpeech(unregistered) error = %v, want ErrProviderNotRegistered", err)
	}
}

func TestRegistryBeats(t *testing.T) {
	reg := config.NewRegistry()
	reg.RegisterBeats("mock", func(config.BeatsConfig) (beats.Store, error) {
		return &beatsmock.Store{}, nil
	})

	store, err := reg.CreateBeats("mock", config.BeatsConfig{Dir: "x"})
	if err != nil {
		t.Fatalf("CreateBeats: %v", err)
	}
	if store == nil {
		t.Fatal("CreateBeats returned nil store")
	}

	if _, err := reg.CreateBeats("nope", config.BeatsConfig{}); !errors.Is(err, config.ErrProviderNotRegistered) {
		t.Errorf("CreateBeats(unregistered) error = %v, want ErrProviderNotRegistered", err)
	}
}
