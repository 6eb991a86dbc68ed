// Package speech defines the Synthesizer interface for speech-synthesis
// backends.
//
// A speech provider wraps an external TTS service (e.g. the OpenAI speech
// API) and turns formatted lyric text into compressed audio bytes. The
// pipeline owns retry and timeout discipline through the context it passes
// in; providers perform a single attempt per call.
//
// Implementations must be safe for concurrent use — many pipeline
// invocations run at once, one per job.
package speech

import (
	"context"
	"errors"
)

// ErrUnavailable indicates that no speech backend is configured or the
// backend is not reachable at all. The pipeline treats it as a signal to
// degrade straight to its silence fallback rather than retrying.
var ErrUnavailable = errors.New("speech: synthesizer unavailable")

// Voice selects the delivery parameters for a synthesis call.
type Voice struct {
	// ID is the provider-specific voice identifier (e.g. "echo").
	ID string

	// Speed is the speaking-rate multiplier (1.0 = provider default).
	// Providers clamp to their supported range.
	Speed float64
}

// Synthesizer is the abstraction over any speech-synthesis backend.
type Synthesizer interface {
	// Synthesize converts text to compressed audio bytes (typically MP3)
	// using the given voice. It returns [ErrUnavailable] if no backend is
	// configured, or a provider-specific error for a failed call. A nil
	// error implies a non-empty payload.
	Synthesize(ctx context.Context, text string, voice Voice) ([]byte, error)
}

// Unavailable is a Synthesizer that always fails with [ErrUnavailable].
// It stands in when no backend is configured, so callers degrade through
// their normal fallback path instead of special-casing a nil provider.
type Unavailable struct{}

// Compile-time interface assertion.
var _ Synthesizer = Unavailable{}

// Synthesize always returns [ErrUnavailable].
func (Unavailable) Synthesize(context.Context, string, Voice) ([]byte, error) {
	return nil, ErrUnavailable
}
