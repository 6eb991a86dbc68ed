// Package pipeline orchestrates the full lyric-to-track generation flow.
//
// A generation walks a strict degradation ladder:
//
//  1. Full production: synthesize speech, process the vocal, sync its tempo,
//     mix it over a rhythm bed, encode.
//  2. Speech only: if any full-production stage fails, return the raw
//     synthesized speech.
//  3. Silence: if speech synthesis itself is unavailable, return 30 seconds
//     of encoded silence.
//
// Transitions run one way (full → speech only → silence) and every
// degradation is logged and counted. [Generator.Generate] never returns an
// error and never returns an empty payload: the worst possible outcome is a
// playable silent track.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/rhymeforge/rhymeforge/internal/config"
	"github.com/rhymeforge/rhymeforge/internal/effects"
	"github.com/rhymeforge/rhymeforge/internal/encode"
	"github.com/rhymeforge/rhymeforge/internal/mix"
	"github.com/rhymeforge/rhymeforge/internal/observe"
	"github.com/rhymeforge/rhymeforge/internal/rhythm"
	"github.com/rhymeforge/rhymeforge/internal/tempo"
	"github.com/rhymeforge/rhymeforge/pkg/audio"
	"github.com/rhymeforge/rhymeforge/pkg/lyrics"
	"github.com/rhymeforge/rhymeforge/pkg/provider/beats"
	"github.com/rhymeforge/rhymeforge/pkg/provider/speech"
)

// Outcome identifies which ladder state produced the final payload.
type Outcome string

const (
	OutcomeFull       Outcome = "full"
	OutcomeSpeechOnly Outcome = "speech_only"
	OutcomeSilence    Outcome = "silence"
)

// Silent-track parameters for the last ladder state.
const (
	silenceDuration   = 30 * time.Second
	silenceSampleRate = 22050
)

// minRapSpeed is the slowest delivery used on the full-production path.
// Rap phrasing falls apart below it; the speech-only fallback keeps the
// configured speed instead.
const minRapSpeed = 1.2

// Result is the outcome of a generation. Data is never empty.
type Result struct {
	// Data is the encoded audio payload.
	Data []byte

	// Format is the container of Data.
	Format encode.Format

	// Outcome records how far down the ladder the generation landed.
	Outcome Outcome
}

// Generator runs generations. Construct with [New]; safe for concurrent use.
type Generator struct {
	synth   speech.Synthesizer
	store   beats.Store
	sync    *tempo.Synchronizer
	enc     *encode.Encoder
	metrics *observe.Metrics
	log     *slog.Logger

	// dspSem bounds concurrent CPU-heavy DSP work so parallel generations
	// don't starve the synthesis I/O.
	dspSem *semaphore.Weighted
}

// Option configures a [Generator].
type Option func(*Generator)

// WithLogger sets the generator's logger. Defaults to [slog.Default].
func WithLogger(log *slog.Logger) Option {
	return func(g *Generator) {
		g.log = log
	}
}

// WithMetrics sets the metrics instance. Defaults to
// [observe.DefaultMetrics].
func WithMetrics(m *observe.Metrics) Option {
	return func(g *Generator) {
		g.metrics = m
	}
}

// WithEncoder overrides the encoder.
func WithEncoder(enc *encode.Encoder) Option {
	return func(g *Generator) {
		g.enc = enc
	}
}

// WithDSPConcurrency bounds the number of generations doing DSP work at
// once. Defaults to GOMAXPROCS.
func WithDSPConcurrency(n int64) Option {
	return func(g *Generator) {
		if n > 0 {
			g.dspSem = semaphore.NewWeighted(n)
		}
	}
}

// New creates a Generator using synth for speech and store for beat assets.
func New(synth speech.Synthesizer, store beats.Store, opts ...Option) *Generator {
	g := &Generator{
		synth:  synth,
		store:  store,
		enc:    encode.New(),
		log:    slog.Default(),
		dspSem: semaphore.NewWeighted(int64(runtime.GOMAXPROCS(0))),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.metrics == nil {
		g.metrics = observe.DefaultMetrics()
	}
	g.sync = tempo.NewSynchronizer(g.log)
	return g
}

// Generate produces a finished track for the given script and settings. It
// never fails: on full-production errors it degrades to raw speech, and on
// speech errors to encoded silence.
func (g *Generator) Generate(ctx context.Context, script lyrics.Script, cfg config.AudioConfig) Result {
	cfg = cfg.Merged()

	ctx, span := observe.StartSpan(ctx, "pipeline.generate")
	defer span.End()
	log := observe.Logger(ctx, g.log)

	g.metrics.ActiveGenerations.Add(ctx, 1)
	defer g.metrics.ActiveGenerations.Add(ctx, -1)

	text := lyrics.FormatForSpeech(script.FullText())

	res, err := g.fullProduction(ctx, text, cfg)
	if err == nil {
		g.metrics.RecordGeneration(ctx, string(OutcomeFull))
		return res
	}
	log.Warn("full production failed, degrading to speech only", "error", err)
	g.metrics.RecordFallback(ctx, string(OutcomeFull), string(OutcomeSpeechOnly))

	res, err = g.speechOnly(ctx, text, cfg)
	if err == nil {
		g.metrics.RecordGeneration(ctx, string(OutcomeSpeechOnly))
		return res
	}
	log.Warn("speech-only generation failed, degrading to silence", "error", err)
	g.metrics.RecordFallback(ctx, string(OutcomeSpeechOnly), string(OutcomeSilence))

	g.metrics.RecordGeneration(ctx, string(OutcomeSilence))
	return g.silence(ctx)
}

// fullProduction is the first ladder state: the complete vocal + bed mix.
func (g *Generator) fullProduction(ctx context.Context, text string, cfg config.AudioConfig) (Result, error) {
	ctx, span := observe.StartSpan(ctx, "pipeline.full_production")
	defer span.End()
	log := observe.Logger(ctx, g.log)

	if cfg.Speed < minRapSpeed {
		cfg.Speed = minRapSpeed
	}
	vocalRaw, err := g.synthesize(ctx, text, cfg)
	if err != nil {
		return Result{}, err
	}

	vocal, err := audio.Decode(vocalRaw)
	if err != nil {
		return Result{}, fmt.Errorf("decode vocal: %w", err)
	}

	// The beat asset lookup is I/O and doesn't depend on the processed
	// vocal, so it runs alongside the DSP. A miss or store failure is not
	// fatal — the bed is synthesised procedurally instead.
	var bed *audio.Segment
	grp, grpCtx := errgroup.WithContext(ctx)
	grp.Go(func() error {
		seg, err := g.store.Load(grpCtx, string(cfg.BeatStyle))
		switch {
		case err == nil:
			bed = seg
		case errors.Is(err, beats.ErrNotFound):
		default:
			log.Warn("beat store failed, synthesising bed", "style", cfg.BeatStyle, "error", err)
		}
		return nil
	})

	if err := g.dspSem.Acquire(ctx, 1); err != nil {
		_ = grp.Wait()
		return Result{}, fmt.Errorf("acquire dsp slot: %w", err)
	}
	defer g.dspSem.Release(1)

	chain := effects.NewChain(
		effects.Config{CompressionRatio: cfg.CompressionRatio},
		effects.WithLogger(g.log),
		effects.WithDegradeHook(func() { g.metrics.EffectsDegradations.Add(ctx, 1) }),
	)

	start := time.Now()
	vocal = chain.Process(vocal)
	observe.Timed(ctx, g.metrics.EffectsDuration, start)

	start = time.Now()
	vocal = g.sync.Sync(vocal, cfg.TargetBPM)
	observe.Timed(ctx, g.metrics.TempoDuration, start)

	_ = grp.Wait()
	if bed == nil {
		bed = rhythm.Render(cfg.BeatStyle, vocal.Duration(), vocal.SampleRate())
	}

	start = time.Now()
	var mixed *audio.Segment
	if cfg.Ducking {
		mixed = mix.Ducked(vocal, bed).Normalize(1.0)
	} else {
		mixed = mix.Mix(vocal, bed)
	}
	observe.Timed(ctx, g.metrics.MixDuration, start)

	start = time.Now()
	data, format, err := g.enc.Encode(ctx, mixed)
	observe.Timed(ctx, g.metrics.EncodeDuration, start)
	if err != nil {
		return Result{}, fmt.Errorf("encode mix: %w", err)
	}

	return Result{Data: data, Format: format, Outcome: OutcomeFull}, nil
}

// speechOnly is the second ladder state: the raw synthesized vocal with no
// processing. The provider payload is already a playable MP3 stream.
func (g *Generator) speechOnly(ctx context.Context, text string, cfg config.AudioConfig) (Result, error) {
	ctx, span := observe.StartSpan(ctx, "pipeline.speech_only")
	defer span.End()

	data, err := g.synthesize(ctx, text, cfg)
	if err != nil {
		return Result{}, err
	}
	if len(data) == 0 {
		return Result{}, fmt.Errorf("speech provider returned an empty payload")
	}
	return Result{Data: data, Format: encode.FormatMP3, Outcome: OutcomeSpeechOnly}, nil
}

// silence is the terminal ladder state. It cannot fail: the encoder's WAV
// fallback handles machines without ffmpeg.
func (g *Generator) silence(ctx context.Context) Result {
	ctx, span := observe.StartSpan(ctx, "pipeline.silence")
	defer span.End()

	seg := audio.Silence(silenceDuration, silenceSampleRate, 1)

	data, format, err := g.enc.Encode(ctx, seg)
	if err != nil {
		// Encode only rejects empty segments; keep the guarantee anyway.
		data = audio.EncodeWAV(seg)
		format = encode.FormatWAV
	}
	return Result{Data: data, Format: format, Outcome: OutcomeSilence}
}

// synthesize calls the speech provider and records latency and errors.
func (g *Generator) synthesize(ctx context.Context, text string, cfg config.AudioConfig) ([]byte, error) {
	start := time.Now()
	data, err := g.synth.Synthesize(ctx, text, speech.Voice{ID: cfg.Voice, Speed: cfg.Speed})
	observe.Timed(ctx, g.metrics.SynthDuration, start)
	if err != nil {
		kind := "request"
		if errors.Is(err, speech.ErrUnavailable) {
			kind = "unavailable"
		}
		g.metrics.RecordProviderError(ctx, "speech", kind)
		return nil, fmt.Errorf("synthesize speech: %w", err)
	}
	return data, nil
}
