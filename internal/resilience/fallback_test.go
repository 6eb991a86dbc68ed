package resilience

import (
	"errors"
	"testing"
	"time"
)

func newTestGroup(cfg CircuitBreakerConfig) *FallbackGroup[string] {
	fg := NewFallbackGroup("primary", "primary", FallbackConfig{
		CircuitBreaker: cfg,
		Logger:         quiet,
	})
	fg.AddFallback("backup", "backup")
	return fg
}

func TestFallbackPrefersPrimary(t *testing.T) {
	fg := newTestGroup(CircuitBreakerConfig{})

	var served string
	if err := fg.Execute(func(backend string) error {
		served = backend
		return nil
	}); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if served != "primary" {
		t.Fatalf("served by %q, want primary", served)
	}
}

func TestFallbackFailsOverToBackup(t *testing.T) {
	fg := newTestGroup(CircuitBreakerConfig{})

	var served string
	if err := fg.Execute(func(backend string) error {
		if backend == "primary" {
			return errBackend
		}
		served = backend
		return nil
	}); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if served != "backup" {
		t.Fatalf("served by %q, want backup", served)
	}
}

func TestFallbackAllFail(t *testing.T) {
	fg := newTestGroup(CircuitBreakerConfig{})

	err := fg.Execute(func(string) error { return errBackend })
	if !errors.Is(err, ErrAllFailed) {
		t.Fatalf("err = %v, want ErrAllFailed", err)
	}
}

func TestFallbackSkipsOpenBreaker(t *testing.T) {
	fg := newTestGroup(CircuitBreakerConfig{
		MaxFailures:  2,
		ResetTimeout: time.Hour,
	})

	// Trip the primary's breaker.
	for i := 0; i < 2; i++ {
		_ = fg.Execute(func(backend string) error {
			if backend == "primary" {
				return errBackend
			}
			return nil
		})
	}

	primaryCalls := 0
	var served string
	if err := fg.Execute(func(backend string) error {
		if backend == "primary" {
			primaryCalls++
		}
		served = backend
		return nil
	}); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if primaryCalls != 0 {
		t.Errorf("open primary was called %d times", primaryCalls)
	}
	if served != "backup" {
		t.Fatalf("served by %q, want backup", served)
	}
}

func TestExecuteWithResultReturnsValue(t *testing.T) {
	fg := newTestGroup(CircuitBreakerConfig{})

	got, err := ExecuteWithResult(fg, func(backend string) ([]byte, error) {
		return []byte("audio from " + backend), nil
	})
	if err != nil {
		t.Fatalf("ExecuteWithResult: %v", err)
	}
	if string(got) != "audio from primary" {
		t.Fatalf("result = %q, want the primary's payload", got)
	}
}

func TestExecuteWithResultFailsOver(t *testing.T) {
	fg := newTestGroup(CircuitBreakerConfig{})

	got, err := ExecuteWithResult(fg, func(backend string) ([]byte, error) {
		if backend == "primary" {
			return nil, errBackend
		}
		return []byte("audio from " + backend), nil
	})
	if err != nil {
		t.Fatalf("ExecuteWithResult: %v", err)
	}
	if string(got) != "audio from backup" {
		t.Fatalf("result = %q, want the backup's payload", got)
	}
}

func TestExecuteWithResultAllFail(t *testing.T) {
	fg := newTestGroup(CircuitBreakerConfig{})

	_, err := ExecuteWithResult(fg, func(string) ([]byte, error) {
		return nil, errBackend
	})
	if !errors.Is(err, ErrAllFailed) {
		t.Fatalf("err = %v, want ErrAllFailed", err)
	}
}
