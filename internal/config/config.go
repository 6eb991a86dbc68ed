// Package config provides the configuration schema, loader, and provider
// registry for the rhymeforge audio pipeline.
package config

import "github.com/rhymeforge/rhymeforge/internal/rhythm"

// LogLevel controls log verbosity.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// Style selects a delivery preset that tunes the audio defaults.
type Style string

const (
	StyleAggressive Style = "aggressive"
	StyleWitty      Style = "witty"
	StylePlayful    Style = "playful"
)

// IsValid reports whether s is a recognised delivery style.
func (s Style) IsValid() bool {
	switch s {
	case StyleAggressive, StyleWitty, StylePlayful:
		return true
	}
	return false
}

// Config is the root configuration structure. It is typically loaded from a
// YAML file using [Load] or [LoadFromReader].
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Providers ProvidersConfig `yaml:"providers"`
	Beats     BeatsConfig     `yaml:"beats"`
	Audio     AudioConfig     `yaml:"audio"`
}

// ServerConfig holds logging and telemetry settings.
type ServerConfig struct {
	// LogLevel controls verbosity.
	LogLevel LogLevel `yaml:"log_level"`

	// MetricsAddr is the optional TCP address of the Prometheus /metrics
	// endpoint (e.g., ":9090"). Empty disables the endpoint.
	MetricsAddr string `yaml:"metrics_addr"`
}

// ProvidersConfig declares which provider implementation to use for each
// external dependency. Each field selects a named provider registered in the
// [Registry].
type ProvidersConfig struct {
	Speech ProviderEntry `yaml:"speech"`
}

// ProviderEntry is the common configuration block shared by all provider
// types. The Name field is used to look up the constructor in the [Registry].
type ProviderEntry struct {
	// Name selects the registered provider implementation (e.g., "openai").
	Name string `yaml:"name"`

	// APIKey is the authentication key for the provider's API if any.
	APIKey string `yaml:"api_key"`

	// BaseURL overrides the provider's default API endpoint.
	// Leave empty to use the provider's built-in default.
	BaseURL string `yaml:"base_url"`

	// Model selects a specific model within the provider (e.g., "tts-1").
	Model string `yaml:"model"`

	// Options holds provider-specific configuration values not covered by the
	// standard fields above. Values may be strings, numbers, booleans, or nested maps.
	Options map[string]any `yaml:"options"`
}

// BeatsConfig locates pre-recorded beat assets.
type BeatsConfig struct {
	// Dir is the directory holding "<style>_beat.mp3"/".wav" files. A missing
	// or empty directory is fine — beds are synthesised procedurally instead.
	Dir string `yaml:"dir"`
}

// AudioConfig holds the per-track generation parameters. Zero values are
// replaced by the defaults in [DefaultAudio].
type AudioConfig struct {
	// Voice is the provider-specific voice identifier (e.g., "echo").
	Voice string `yaml:"voice"`

	// Speed adjusts speaking rate in the range [0.5, 2.0]. 0 means default.
	Speed float64 `yaml:"speed"`

	// PitchShift adjusts pitch in the range [-10, +10]. 0 means default.
	PitchShift float64 `yaml:"pitch_shift"`

	// AutotuneStrength blends pitch correction in [0, 1].
	AutotuneStrength float64 `yaml:"autotune_strength"`

	// ReverbLevel sets the vocal reverb amount in [0, 1].
	ReverbLevel float64 `yaml:"reverb_level"`

	// CompressionRatio is the ratio used by the fallback effects chain.
	CompressionRatio float64 `yaml:"compression_ratio"`

	// BeatStyle selects the rhythm bed pattern.
	BeatStyle rhythm.Style `yaml:"beat_style"`

	// TargetBPM is the tempo the vocal is nudged towards.
	TargetBPM int `yaml:"target_bpm"`

	// Ducking enables sidechain-style bed attenuation under the vocal.
	Ducking bool `yaml:"ducking"`
}

// DefaultAudio returns the baseline audio parameters.
func DefaultAudio() AudioConfig {
	return AudioConfig{
		Voice:            "echo",
		Speed:            1.1,
		PitchShift:       0,
		AutotuneStrength: 0.7,
		ReverbLevel:      0.3,
		CompressionRatio: 4.0,
		BeatStyle:        rhythm.StyleTrap,
		TargetBPM:        90,
	}
}

// StyleAudio returns the audio parameters for a delivery style: aggressive
// tracks compress hard with little autotune, witty tracks stay light, and
// playful (the default) sits in between.
func StyleAudio(style Style) AudioConfig {
	cfg := DefaultAudio()
	switch style {
	case StyleAggressive:
		cfg.CompressionRatio = 6.0
		cfg.AutotuneStrength = 0.3
	case StyleWitty:
		cfg.CompressionRatio = 3.0
		cfg.AutotuneStrength = 0.5
	}
	return cfg
}

// Merged returns cfg with zero-valued fields filled from the defaults.
func (c AudioConfig) Merged() AudioConfig {
	def := DefaultAudio()
	if c.Voice == "" {
		c.Voice = def.Voice
	}
	if c.Speed == 0 {
		c.Speed = def.Speed
	}
	if c.AutotuneStrength == 0 {
		c.AutotuneStrength = def.AutotuneStrength
	}
	if c.ReverbLevel == 0 {
		c.ReverbLevel = def.ReverbLevel
	}
	if c.CompressionRatio == 0 {
		c.CompressionRatio = def.CompressionRatio
	}
	if c.BeatStyle == "" {
		c.BeatStyle = def.BeatStyle
	}
	if c.TargetBPM == 0 {
		c.TargetBPM = def.TargetBPM
	}
	return c
}
