// Package observe provides application-wide observability primitives:
// OpenTelemetry metrics, tracing helpers, and structured logging glue.
//
// Metrics are recorded through the OpenTelemetry Metrics API. A Prometheus
// exporter bridge is available via [InitProvider] so that metrics can still be
// scraped via the standard /metrics endpoint. A package-level default
// [Metrics] instance ([DefaultMetrics]) is provided for convenience; tests
// should use [NewMetrics] with a custom [metric.MeterProvider] to avoid
// cross-test pollution.
package observe

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name used for all metrics.
const meterName = "github.com/rhymeforge/rhymeforge"

// Metrics holds all OpenTelemetry metric instruments for the application.
// All fields are safe for concurrent use — the underlying OTel types handle
// their own synchronisation.
type Metrics struct {
	// --- Latency histograms per pipeline stage ---

	// SynthDuration tracks speech synthesis latency.
	SynthDuration metric.Float64Histogram

	// EffectsDuration tracks vocal effects processing latency.
	EffectsDuration metric.Float64Histogram

	// TempoDuration tracks tempo estimation and stretch latency.
	TempoDuration metric.Float64Histogram

	// MixDuration tracks mixing and mastering latency.
	MixDuration metric.Float64Histogram

	// EncodeDuration tracks final encode latency.
	EncodeDuration metric.Float64Histogram

	// --- Counters ---

	// GenerationRequests counts completed generations. Use with attribute:
	//   attribute.String("outcome", ...) — "full", "speech_only", "silence"
	GenerationRequests metric.Int64Counter

	// FallbackTransitions counts pipeline downgrades. Use with attributes:
	//   attribute.String("from", ...), attribute.String("to", ...)
	FallbackTransitions metric.Int64Counter

	// EffectsDegradations counts effects-chain fallbacks to basic processing.
	EffectsDegradations metric.Int64Counter

	// --- Error counters ---

	// ProviderErrors counts provider errors. Use with attributes:
	//   attribute.String("provider", ...), attribute.String("kind", ...)
	ProviderErrors metric.Int64Counter

	// BreakerTransitions counts circuit breaker state changes per guarded
	// backend. Use with attributes:
	//   attribute.String("backend", ...), attribute.String("from", ...),
	//   attribute.String("to", ...)
	BreakerTransitions metric.Int64Counter

	// --- Gauges ---

	// ActiveGenerations tracks the number of generations in flight.
	ActiveGenerations metric.Int64UpDownCounter
}

// latencyBuckets defines histogram bucket boundaries (in seconds). Stages
// range from millisecond DSP passes to multi-second synthesis calls.
var latencyBuckets = []float64{
	0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60,
}

// NewMetrics creates a fully initialised [Metrics] struct using the given
// [metric.MeterProvider]. Returns an error if any instrument creation fails.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	// Histograms.
	if met.SynthDuration, err = m.Float64Histogram("rhymeforge.synth.duration",
		metric.WithDescription("Latency of speech synthesis."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.EffectsDuration, err = m.Float64Histogram("rhymeforge.effects.duration",
		metric.WithDescription("Latency of vocal effects processing."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.TempoDuration, err = m.Float64Histogram("rhymeforge.tempo.duration",
		metric.WithDescription("Latency of tempo estimation and stretching."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.MixDuration, err = m.Float64Histogram("rhymeforge.mix.duration",
		metric.WithDescription("Latency of mixing and mastering."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.EncodeDuration, err = m.Float64Histogram("rhymeforge.encode.duration",
		metric.WithDescription("Latency of the final encode."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}

	// Counters.
	if met.GenerationRequests, err = m.Int64Counter("rhymeforge.generation.requests",
		metric.WithDescription("Total completed generations by outcome."),
	); err != nil {
		return nil, err
	}
	if met.FallbackTransitions, err = m.Int64Counter("rhymeforge.fallback.transitions",
		metric.WithDescription("Total pipeline downgrades by source and target state."),
	); err != nil {
		return nil, err
	}
	if met.EffectsDegradations, err = m.Int64Counter("rhymeforge.effects.degradations",
		metric.WithDescription("Total effects-chain fallbacks to basic processing."),
	); err != nil {
		return nil, err
	}

	// Error counters.
	if met.ProviderErrors, err = m.Int64Counter("rhymeforge.provider.errors",
		metric.WithDescription("Total provider errors by provider and kind."),
	); err != nil {
		return nil, err
	}
	if met.BreakerTransitions, err = m.Int64Counter("rhymeforge.breaker.transitions",
		metric.WithDescription("Total circuit breaker state changes by backend."),
	); err != nil {
		return nil, err
	}

	// Gauges (UpDownCounters).
	if met.ActiveGenerations, err = m.Int64UpDownCounter("rhymeforge.active_generations",
		metric.WithDescription("Number of generations currently in flight."),
	); err != nil {
		return nil, err
	}

	return met, nil
}

// defaultMetrics is the lazily-initialised package-level Metrics instance.
var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns the package-level [Metrics] instance, creating it on
// first call using [otel.GetMeterProvider]. Subsequent calls return the same
// pointer. Panics if instrument creation fails (should not happen with the
// global provider).
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		var err error
		defaultMetrics, err = NewMetrics(otel.GetMeterProvider())
		if err != nil {
			panic("observe: failed to create default metrics: " + err.Error())
		}
	})
	return defaultMetrics
}

// Attr is a convenience alias for [attribute.String] to reduce verbosity at
// call sites.
func Attr(key, value string) attribute.KeyValue {
	return attribute.String(key, value)
}

// Timed records the elapsed time since start on the given histogram.
// Intended as a one-liner around pipeline stages:
//
//	start := time.Now()
//	out := chain.Process(seg)
//	observe.Timed(ctx, m.EffectsDuration, start)
func Timed(ctx context.Context, h metric.Float64Histogram, start time.Time) {
	h.Record(ctx, time.Since(start).Seconds())
}

// RecordGeneration is a convenience method that records a completed
// generation with its outcome ("full", "speech_only", or "silence").
func (m *Metrics) RecordGeneration(ctx context.Context, outcome string) {
	m.GenerationRequests.Add(ctx, 1,
		metric.WithAttributes(Attr("outcome", outcome)),
	)
}

// RecordFallback is a convenience method that records a pipeline downgrade
// from one state to the next.
func (m *Metrics) RecordFallback(ctx context.Context, from, to string) {
	m.FallbackTransitions.Add(ctx, 1,
		metric.WithAttributes(Attr("from", from), Attr("to", to)),
	)
}

// RecordProviderError is a convenience method that records a provider error
// counter increment.
func (m *Metrics) RecordProviderError(ctx context.Context, provider, kind string) {
	m.ProviderErrors.Add(ctx, 1,
		metric.WithAttributes(Attr("provider", provider), Attr("kind", kind)),
	)
}

// RecordBreakerTransition is a convenience method that records a circuit
// breaker state change for the named backend.
func (m *Metrics) RecordBreakerTransition(ctx context.Context, backend, from, to string) {
	m.BreakerTransitions.Add(ctx, 1,
		metric.WithAttributes(Attr("backend", backend), Attr("from", from), Attr("to", to)),
	)
}
