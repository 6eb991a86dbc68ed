package resilience

import (
	"errors"
	"fmt"
	"log/slog"
)

// ErrAllFailed is returned when every backend in a [FallbackGroup] fails
// or sits behind an open breaker.
var ErrAllFailed = errors.New("resilience: all backends failed")

// FallbackConfig configures a [FallbackGroup].
type FallbackConfig struct {
	// CircuitBreaker is the template applied to each backend's breaker;
	// its Name is overwritten per backend.
	CircuitBreaker CircuitBreakerConfig

	// Logger receives failover logs. Default: [slog.Default].
	Logger *slog.Logger
}

// fallbackEntry pairs a backend with its dedicated breaker.
type fallbackEntry[T any] struct {
	name    string
	backend T
	breaker *CircuitBreaker
}

// FallbackGroup chains a primary and zero or more fallback backends of the
// same type. Calls go to the first backend whose breaker admits them and
// that answers successfully, in registration order.
//
// FallbackGroup is safe for concurrent use once all backends are
// registered.
type FallbackGroup[T any] struct {
	entries []fallbackEntry[T]
	cfg     FallbackConfig
	log     *slog.Logger
}

// NewFallbackGroup creates a group with primary as the preferred backend.
// Register more with [FallbackGroup.AddFallback] before first use.
func NewFallbackGroup[T any](primary T, primaryName string, cfg FallbackConfig) *FallbackGroup[T] {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	fg := &FallbackGroup[T]{cfg: cfg, log: log}
	fg.add(primaryName, primary)
	return fg
}

// AddFallback appends a backend tried after all earlier entries.
func (fg *FallbackGroup[T]) AddFallback(name string, backend T) {
	fg.add(name, backend)
}

func (fg *FallbackGroup[T]) add(name string, backend T) {
	bc := fg.cfg.CircuitBreaker
	bc.Name = name
	if bc.Logger == nil {
		bc.Logger = fg.log
	}
	fg.entries = append(fg.entries, fallbackEntry[T]{
		name:    name,
		backend: backend,
		breaker: NewCircuitBreaker(bc),
	})
}

// Execute tries fn against each backend in order until one succeeds.
// Backends with open breakers are skipped. Returns [ErrAllFailed] wrapping
// the last error when nothing answers.
func (fg *FallbackGroup[T]) Execute(fn func(T) error) error {
	_, err := ExecuteWithResult(fg, func(backend T) (struct{}, error) {
		return struct{}{}, fn(backend)
	})
	return err
}

// ExecuteWithResult is [FallbackGroup.Execute] for calls that produce a
// value. It is a package-level function because Go methods cannot carry
// their own type parameters.
func ExecuteWithResult[T any, R any](fg *FallbackGroup[T], fn func(T) (R, error)) (R, error) {
	var lastErr error
	for i := range fg.entries {
		e := &fg.entries[i]

		var out R
		err := e.breaker.Execute(func() error {
			var callErr error
			out, callErr = fn(e.backend)
			return callErr
		})
		if err == nil {
			return out, nil
		}
		lastErr = err

		if errors.Is(err, ErrCircuitOpen) {
			fg.log.Debug("backend circuit open, skipping", "backend", e.name)
		} else {
			fg.log.Warn("backend failed, trying next", "backend", e.name, "error", err)
		}
	}

	var zero R
	return zero, fmt.Errorf("%w: %v", ErrAllFailed, lastErr)
}
