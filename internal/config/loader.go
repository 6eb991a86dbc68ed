package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

// ValidProviderNames lists known provider names per provider kind.
// Used by [Validate] to warn about unrecognised provider names.
var ValidProviderNames = map[string][]string{
	"speech": {"openai"},
}

// Load reads the YAML configuration file at path and returns a validated [Config].
// It is a convenience wrapper around [LoadFromReader] and [Validate].
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r and validates the result.
// Useful in tests where configs are constructed from string literals.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	// Server
	if cfg.Server.LogLevel != "" && !cfg.Server.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("server.log_level %q is invalid; valid values: debug, info, warn, error", cfg.Server.LogLevel))
	}

	// Provider name validation — warn for unknown provider names.
	validateProviderName("speech", cfg.Providers.Speech.Name)

	// Provider availability warnings
	if cfg.Providers.Speech.Name == "" {
		slog.Warn("no speech provider configured; generation will fall back to silence")
	}
	if cfg.Beats.Dir == "" {
		slog.Warn("beats.dir is empty; rhythm beds will always be synthesised procedurally")
	}

	// Audio parameters
	audio := cfg.Audio
	if audio.Speed != 0 {
		if audio.Speed < 0.5 || audio.Speed > 2.0 {
			errs = append(errs, fmt.Errorf("audio.speed %.2f is out of range [0.5, 2.0]", audio.Speed))
		}
	}
	if audio.PitchShift < -10 || audio.PitchShift > 10 {
		errs = append(errs, fmt.Errorf("audio.pitch_shift %.2f is out of range [-10, 10]", audio.PitchShift))
	}
	if audio.AutotuneStrength < 0 || audio.AutotuneStrength > 1 {
		errs = append(errs, fmt.Errorf("audio.autotune_strength %.2f is out of range [0, 1]", audio.AutotuneStrength))
	}
	if audio.ReverbLevel < 0 || audio.ReverbLevel > 1 {
		errs = append(errs, fmt.Errorf("audio.reverb_level %.2f is out of range [0, 1]", audio.ReverbLevel))
	}
	if audio.CompressionRatio < 0 {
		errs = append(errs, fmt.Errorf("audio.compression_ratio %.2f must not be negative", audio.CompressionRatio))
	}
	if audio.BeatStyle != "" && !audio.BeatStyle.IsValid() {
		errs = append(errs, fmt.Errorf("audio.beat_style %q is invalid; valid values: trap, boom_bap, lofi", audio.BeatStyle))
	}
	if audio.TargetBPM < 0 {
		errs = append(errs, fmt.Errorf("audio.target_bpm %d must not be negative", audio.TargetBPM))
	}

	return errors.Join(errs...)
}

// validateProviderName logs a warning if name is non-empty and not found in
// the [ValidProviderNames] list for the given kind.
func validateProviderName(kind, name string) {
	if name == "" {
		return
	}
	known, ok := ValidProviderNames[kind]
	if !ok {
		return
	}
	if slices.Contains(known, name) {
		return
	}
	slog.Warn("unknown provider name — may be a typo or third-party provider",
		"kind", kind,
		"name", name,
		"known", known,
	)
}
