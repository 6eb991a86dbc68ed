// Command rhymeforge turns a lyric script into a mixed, mastered rap track.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gopkg.in/yaml.v3"

	"github.com/rhymeforge/rhymeforge/internal/config"
	"github.com/rhymeforge/rhymeforge/internal/encode"
	"github.com/rhymeforge/rhymeforge/internal/health"
	"github.com/rhymeforge/rhymeforge/internal/observe"
	"github.com/rhymeforge/rhymeforge/internal/pipeline"
	"github.com/rhymeforge/rhymeforge/internal/resilience"
	"github.com/rhymeforge/rhymeforge/internal/rhythm"
	"github.com/rhymeforge/rhymeforge/pkg/lyrics"
	"github.com/rhymeforge/rhymeforge/pkg/provider/beats"
	"github.com/rhymeforge/rhymeforge/pkg/provider/beats/fsstore"
	"github.com/rhymeforge/rhymeforge/pkg/provider/speech"
	oaispeech "github.com/rhymeforge/rhymeforge/pkg/provider/speech/openai"
)

// renderBeatDuration matches the length of the shipped beat assets.
const renderBeatDuration = 180 * time.Second

// renderBeatSampleRate is the rate beat assets are rendered at.
const renderBeatSampleRate = 44100

func main() {
	os.Exit(run())
}

func run() int {
	// ── CLI flags ──────────────────────────────────────────────────────────────
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	scriptPath := flag.String("script", "", "path to the lyric script (YAML or plain text)")
	outPath := flag.String("out", "track.mp3", "path of the generated track")
	style := flag.String("style", "", "delivery style preset: aggressive, witty, or playful")
	renderBeats := flag.Bool("render-beats", false, "render the built-in beat patterns into beats.dir and exit")
	flag.Parse()

	// ── Load configuration ────────────────────────────────────────────────────
	cfg, err := config.Load(*configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "rhymeforge: config file %q not found — copy configs/example.yaml to get started\n", *configPath)
		} else {
			fmt.Fprintf(os.Stderr, "rhymeforge: %v\n", err)
		}
		return 1
	}

	// ── Logger ────────────────────────────────────────────────────────────────
	logger := newLogger(cfg.Server.LogLevel)
	slog.SetDefault(logger)

	// ── Signal context ────────────────────────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Telemetry ─────────────────────────────────────────────────────────────
	shutdownTelemetry, err := observe.InitProvider(ctx, observe.ProviderConfig{})
	if err != nil {
		slog.Error("failed to initialise telemetry", "err", err)
		return 1
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			slog.Warn("telemetry shutdown error", "err", err)
		}
	}()

	// ── Beat rendering mode ───────────────────────────────────────────────────
	if *renderBeats {
		if err := renderBeatAssets(ctx, cfg.Beats.Dir); err != nil {
			slog.Error("failed to render beat assets", "err", err)
			return 1
		}
		return 0
	}

	// ── Lyric script ──────────────────────────────────────────────────────────
	if *scriptPath == "" {
		fmt.Fprintln(os.Stderr, "rhymeforge: -script is required")
		return 1
	}
	script, err := readScript(*scriptPath)
	if err != nil {
		slog.Error("failed to read lyric script", "err", err)
		return 1
	}

	// ── Providers ─────────────────────────────────────────────────────────────
	reg := config.NewRegistry()
	registerBuiltinProviders(reg)

	guarded, speechOK := buildSpeechSynthesizer(reg, cfg.Providers.Speech)

	store, err := reg.CreateBeats("fs", cfg.Beats)
	if err != nil {
		slog.Error("failed to build beat store", "err", err)
		return 1
	}

	if cfg.Server.MetricsAddr != "" {
		startMetricsServer(ctx, cfg.Server.MetricsAddr, readinessCheckers(cfg, speechOK))
	}

	// ── Generate ──────────────────────────────────────────────────────────────
	audioCfg := cfg.Audio
	if *style != "" {
		preset := config.Style(*style)
		if !preset.IsValid() {
			fmt.Fprintf(os.Stderr, "rhymeforge: unknown style %q; valid values: aggressive, witty, playful\n", *style)
			return 1
		}
		audioCfg = config.StyleAudio(preset)
	}

	gen := pipeline.New(guarded, store, pipeline.WithLogger(logger))

	slog.Info("generating track",
		"script", *scriptPath,
		"style", audioCfg.BeatStyle,
		"voice", audioCfg.Merged().Voice,
	)
	res := gen.Generate(ctx, script, audioCfg)

	out := withFormatExt(*outPath, res.Format)
	if err := os.WriteFile(out, res.Data, 0o644); err != nil {
		slog.Error("failed to write track", "path", out, "err", err)
		return 1
	}

	slog.Info("track written",
		"path", out,
		"outcome", res.Outcome,
		"format", res.Format,
		"bytes", len(res.Data),
	)
	return 0
}

// ── Provider wiring ───────────────────────────────────────────────────────────

// buildSpeechSynthesizer creates the configured speech backend wrapped in
// circuit-breaker failover. When no backend can be built the pipeline gets
// the bare [speech.Unavailable] stub instead — it fails every call by
// design, and a breaker around it would only trip and log on a backend
// that cannot recover. The returned bool reports whether a real backend is
// in place.
func buildSpeechSynthesizer(reg *config.Registry, entry config.ProviderEntry) (speech.Synthesizer, bool) {
	synth, err := reg.CreateSpeech(entry)
	if err != nil {
		// Generation still works without a speech backend — the pipeline
		// degrades to an encoded silent track.
		slog.Warn("no usable speech provider, tracks will be silent", "err", err)
		return speech.Unavailable{}, false
	}
	// Further fallback synthesizers can be added on the returned wrapper.
	return resilience.NewSpeechFallback(synth, entry.Name, resilience.FallbackConfig{}), true
}

// registerBuiltinProviders wires all built-in provider factories into reg.
func registerBuiltinProviders(reg *config.Registry) {
	reg.RegisterSpeech("openai", func(entry config.ProviderEntry) (speech.Synthesizer, error) {
		var opts []oaispeech.Option
		if entry.BaseURL != "" {
			opts = append(opts, oaispeech.WithBaseURL(entry.BaseURL))
		}
		if entry.Model != "" {
			opts = append(opts, oaispeech.WithModel(entry.Model))
		}
		return oaispeech.New(entry.APIKey, opts...)
	})

	reg.RegisterBeats("fs", func(cfg config.BeatsConfig) (beats.Store, error) {
		return fsstore.New(cfg.Dir), nil
	})
}

// ── Script loading ────────────────────────────────────────────────────────────

// readScript loads a lyric script. YAML files use the structured
// [lyrics.Script] schema; anything else is treated as the full lyric text.
func readScript(path string) (lyrics.Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return lyrics.Script{}, fmt.Errorf("read %q: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		var script lyrics.Script
		if err := yaml.Unmarshal(data, &script); err != nil {
			return lyrics.Script{}, fmt.Errorf("parse %q: %w", path, err)
		}
		return script, nil
	default:
		return lyrics.Script{Full: string(data)}, nil
	}
}

// ── Beat asset rendering ──────────────────────────────────────────────────────

// renderBeatAssets writes the three built-in beat patterns into dir so they
// can be served by the filesystem beat store (and auditioned by hand).
func renderBeatAssets(ctx context.Context, dir string) error {
	if dir == "" {
		return fmt.Errorf("beats.dir is not configured")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %q: %w", dir, err)
	}

	enc := encode.New()
	for _, style := range []rhythm.Style{rhythm.StyleTrap, rhythm.StyleBoomBap, rhythm.StyleLofi} {
		seg := rhythm.Render(style, renderBeatDuration, renderBeatSampleRate)

		data, format, err := enc.Encode(ctx, seg)
		if err != nil {
			return fmt.Errorf("encode %q bed: %w", style, err)
		}

		path := filepath.Join(dir, fmt.Sprintf("%s_beat.%s", style, format))
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("write %q: %w", path, err)
		}
		slog.Info("beat asset rendered", "path", path, "format", format)
	}
	return nil
}

// ── Metrics endpoint ──────────────────────────────────────────────────────────

// readinessCheckers builds the /readyz probes. Ready means a track
// generated right now would come out fully produced rather than degraded:
// the speech backend is usable and, when a beat library is configured, its
// directory is reachable.
func readinessCheckers(cfg *config.Config, speechOK bool) []health.Checker {
	checkers := []health.Checker{{
		Name: "speech",
		Check: func(context.Context) error {
			if !speechOK {
				return errors.New("no usable speech provider, tracks degrade to silence")
			}
			return nil
		},
	}}
	if cfg.Beats.Dir != "" {
		checkers = append(checkers, health.Checker{
			Name: "beats",
			Check: func(context.Context) error {
				_, err := os.Stat(cfg.Beats.Dir)
				return err
			},
		})
	}
	return checkers
}

// startMetricsServer serves /metrics plus liveness and readiness probes in
// the background. Generation is not blocked on it; errors are only logged.
func startMetricsServer(ctx context.Context, addr string, checkers []health.Checker) {
	h := health.New(checkers...)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	h.Register(mux)

	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Warn("metrics server error", "err", err)
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	slog.Info("metrics endpoint listening", "addr", addr)
}

// ── Logging ───────────────────────────────────────────────────────────────────

func newLogger(level config.LogLevel) *slog.Logger {
	var lvl slog.Level
	switch level {
	case config.LogDebug:
		lvl = slog.LevelDebug
	case config.LogWarn:
		lvl = slog.LevelWarn
	case config.LogError:
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

// withFormatExt aligns the output path's extension with the actual payload
// format, so a WAV fallback is never written into a file named ".mp3".
func withFormatExt(path string, format encode.Format) string {
	want := "." + string(format)
	if strings.EqualFold(filepath.Ext(path), want) {
		return path
	}
	return strings.TrimSuffix(path, filepath.Ext(path)) + want
}
