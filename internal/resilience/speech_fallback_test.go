package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rhymeforge/rhymeforge/pkg/provider/speech"
	"github.com/rhymeforge/rhymeforge/pkg/provider/speech/mock"
)

func TestSpeechFallbackPrimarySuccess(t *testing.T) {
	primary := &mock.Synthesizer{Payload: []byte("primary audio")}
	secondary := &mock.Synthesizer{Payload: []byte("secondary audio")}

	f := NewSpeechFallback(primary, "primary", FallbackConfig{Logger: quiet})
	f.AddFallback("secondary", secondary)

	data, err := f.Synthesize(context.Background(), "yo", speech.Voice{ID: "echo"})
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if string(data) != "primary audio" {
		t.Fatalf("data = %q, want primary payload", data)
	}
	if secondary.CallCount() != 0 {
		t.Errorf("secondary called %d times, want 0", secondary.CallCount())
	}
}

func TestSpeechFallbackFailsOver(t *testing.T) {
	primary := &mock.Synthesizer{Err: errBackend}
	secondary := &mock.Synthesizer{Payload: []byte("secondary audio")}

	f := NewSpeechFallback(primary, "primary", FallbackConfig{Logger: quiet})
	f.AddFallback("secondary", secondary)

	data, err := f.Synthesize(context.Background(), "yo", speech.Voice{ID: "echo"})
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if string(data) != "secondary audio" {
		t.Fatalf("data = %q, want secondary payload", data)
	}
}

func TestSpeechFallbackAllFail(t *testing.T) {
	f := NewSpeechFallback(&mock.Synthesizer{Err: errBackend}, "primary", FallbackConfig{Logger: quiet})
	f.AddFallback("secondary", &mock.Synthesizer{Err: errBackend})

	_, err := f.Synthesize(context.Background(), "yo", speech.Voice{ID: "echo"})
	if !errors.Is(err, ErrAllFailed) {
		t.Fatalf("err = %v, want ErrAllFailed", err)
	}
}

func TestSpeechFallbackSurfacesBreakerTrips(t *testing.T) {
	var trips []string
	f := NewSpeechFallback(&mock.Synthesizer{Err: errBackend}, "openai", FallbackConfig{
		Logger: quiet,
		CircuitBreaker: CircuitBreakerConfig{
			MaxFailures:  2,
			ResetTimeout: time.Hour,
			OnStateChange: func(name string, from, to State) {
				trips = append(trips, name+":"+from.String()+">"+to.String())
			},
		},
	})

	for i := 0; i < 2; i++ {
		_, _ = f.Synthesize(context.Background(), "yo", speech.Voice{ID: "echo"})
	}

	if len(trips) != 1 || trips[0] != "openai:closed>open" {
		t.Fatalf("transitions = %v, want [openai:closed>open]", trips)
	}
}
