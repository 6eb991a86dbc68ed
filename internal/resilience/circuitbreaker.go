// Package resilience keeps track generation going when a speech backend
// misbehaves.
//
// [CircuitBreaker] guards a single backend: after a streak of failures it
// rejects calls outright, then probes the backend again once a reset
// timeout has passed. [FallbackGroup] chains several backends behind
// per-backend breakers so a flapping primary is bypassed in favour of
// whatever still answers. [SpeechFallback] binds the group to the
// [speech.Synthesizer] interface the pipeline consumes.
//
// All types are safe for concurrent use.
package resilience

import (
	"errors"
	"log/slog"
	"sync"
	"time"
)

// ErrCircuitOpen is returned by [CircuitBreaker.Execute] while the breaker
// rejects calls without forwarding them.
var ErrCircuitOpen = errors.New("resilience: circuit open")

// State is the operating mode of a [CircuitBreaker].
type State int

const (
	// StateClosed forwards every call.
	StateClosed State = iota

	// StateOpen rejects every call with [ErrCircuitOpen] until the reset
	// timeout elapses.
	StateOpen

	// StateHalfOpen lets a bounded number of probe calls through to decide
	// whether the backend has recovered.
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// CircuitBreakerConfig tunes a [CircuitBreaker]. Zero-value fields take
// defaults.
type CircuitBreakerConfig struct {
	// Name labels the guarded backend in logs and metrics.
	Name string

	// MaxFailures is the consecutive-failure streak that trips the
	// breaker. Default: 5.
	MaxFailures int

	// ResetTimeout is how long a tripped breaker rejects calls before
	// probing the backend again. Default: 30s.
	ResetTimeout time.Duration

	// HalfOpenMax caps probe calls while half-open. Default: 3.
	HalfOpenMax int

	// OnStateChange, when set, observes every state transition. It is
	// invoked with the breaker's lock held and must not call back into
	// the breaker.
	OnStateChange func(name string, from, to State)

	// Logger receives transition logs. Default: [slog.Default].
	Logger *slog.Logger
}

// CircuitBreaker is a three-state breaker (closed → open → half-open)
// guarding one backend.
type CircuitBreaker struct {
	name         string
	maxFailures  int
	resetTimeout time.Duration
	halfOpenMax  int
	onChange     func(name string, from, to State)
	log          *slog.Logger

	mu          sync.Mutex
	state       State
	failStreak  int
	lastFailure time.Time
	probes      int
	probeFails  int
}

// NewCircuitBreaker creates a breaker from cfg, filling in defaults for
// zero-value fields.
func NewCircuitBreaker(cfg CircuitBreakerConfig) *CircuitBreaker {
	if cfg.MaxFailures <= 0 {
		cfg.MaxFailures = 5
	}
	if cfg.ResetTimeout <= 0 {
		cfg.ResetTimeout = 30 * time.Second
	}
	if cfg.HalfOpenMax <= 0 {
		cfg.HalfOpenMax = 3
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &CircuitBreaker{
		name:         cfg.Name,
		maxFailures:  cfg.MaxFailures,
		resetTimeout: cfg.ResetTimeout,
		halfOpenMax:  cfg.HalfOpenMax,
		onChange:     cfg.OnStateChange,
		log:          cfg.Logger,
		state:        StateClosed,
	}
}

// Execute runs fn if the breaker admits the call, folding the result back
// into the breaker state. While open it returns [ErrCircuitOpen] without
// calling fn.
func (cb *CircuitBreaker) Execute(fn func() error) error {
	probing, err := cb.admit()
	if err != nil {
		return err
	}

	err = fn()
	cb.settle(probing, err)
	return err
}

// admit decides whether a call may proceed and whether it counts against
// the half-open probe budget.
func (cb *CircuitBreaker) admit() (probing bool, err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateOpen:
		if time.Since(cb.lastFailure) < cb.resetTimeout {
			return false, ErrCircuitOpen
		}
		cb.probes, cb.probeFails = 0, 0
		cb.transition(StateHalfOpen, "reset timeout elapsed")

	case StateHalfOpen:
		if cb.probes >= cb.halfOpenMax {
			// Probe budget spent; wait for the in-flight probes to settle.
			return false, ErrCircuitOpen
		}
	}

	if cb.state == StateHalfOpen {
		cb.probes++
		return true, nil
	}
	return false, nil
}

// settle folds one call result into the breaker state.
func (cb *CircuitBreaker) settle(probing bool, err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if err == nil {
		if !probing {
			cb.failStreak = 0
			return
		}
		if cb.probes-cb.probeFails >= cb.halfOpenMax {
			cb.failStreak = 0
			cb.probes, cb.probeFails = 0, 0
			cb.transition(StateClosed, "probes succeeded")
		}
		return
	}

	cb.lastFailure = time.Now()
	if probing {
		// One failed probe is enough to re-open.
		cb.probeFails++
		cb.failStreak = cb.maxFailures
		cb.transition(StateOpen, "probe failed")
		return
	}

	cb.failStreak++
	if cb.failStreak >= cb.maxFailures {
		cb.transition(StateOpen, "failure streak")
	}
}

// transition moves the breaker to next, logging and notifying the observer
// hook. Callers hold cb.mu.
func (cb *CircuitBreaker) transition(next State, reason string) {
	from := cb.state
	if from == next {
		return
	}
	cb.state = next

	if next == StateOpen {
		cb.log.Warn("circuit breaker opened",
			"backend", cb.name, "from", from.String(), "reason", reason)
	} else {
		cb.log.Info("circuit breaker state change",
			"backend", cb.name, "from", from.String(), "to", next.String(), "reason", reason)
	}
	if cb.onChange != nil {
		cb.onChange(cb.name, from, next)
	}
}

// State reports the breaker's current state. An open breaker whose reset
// timeout has elapsed reports [StateHalfOpen]; the stored transition
// happens on the next [CircuitBreaker.Execute].
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state == StateOpen && time.Since(cb.lastFailure) >= cb.resetTimeout {
		return StateHalfOpen
	}
	return cb.state
}

// Reset forces the breaker back to [StateClosed] and clears all counters.
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.failStreak = 0
	cb.probes, cb.probeFails = 0, 0
	cb.transition(StateClosed, "manual reset")
}
