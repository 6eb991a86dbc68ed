package resilience

import (
	"context"

	"github.com/rhymeforge/rhymeforge/internal/observe"
	"github.com/rhymeforge/rhymeforge/pkg/provider/speech"
)

// SpeechFallback implements [speech.Synthesizer] with automatic failover
// across multiple speech backends. Each backend has its own circuit breaker,
// so a provider that keeps timing out is bypassed without waiting for it.
// Breaker state changes are counted through the observe metrics unless the
// config supplies its own OnStateChange hook.
type SpeechFallback struct {
	group *FallbackGroup[speech.Synthesizer]
}

// Compile-time interface assertion.
var _ speech.Synthesizer = (*SpeechFallback)(nil)

// NewSpeechFallback creates a [SpeechFallback] with primary as the preferred
// backend.
func NewSpeechFallback(primary speech.Synthesizer, primaryName string, cfg FallbackConfig) *SpeechFallback {
	if cfg.CircuitBreaker.OnStateChange == nil {
		cfg.CircuitBreaker.OnStateChange = func(name string, from, to State) {
			observe.DefaultMetrics().RecordBreakerTransition(
				context.Background(), name, from.String(), to.String())
		}
	}
	return &SpeechFallback{
		group: NewFallbackGroup(primary, primaryName, cfg),
	}
}

// AddFallback registers an additional speech synthesizer as a fallback.
func (f *SpeechFallback) AddFallback(name string, s speech.Synthesizer) {
	f.group.AddFallback(name, s)
}

// Synthesize renders text with the first healthy backend.
func (f *SpeechFallback) Synthesize(ctx context.Context, text string, voice speech.Voice) ([]byte, error) {
	return ExecuteWithResult(f.group, func(s speech.Synthesizer) ([]byte, error) {
		return s.Synthesize(ctx, text, voice)
	})
}
