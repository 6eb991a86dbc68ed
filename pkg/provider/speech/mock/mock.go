// Package mock provides a test double for the speech.Synthesizer interface.
//
// Use Synthesizer to return canned audio payloads or scripted errors, and to
// verify the text and voice passed to the backend:
//
//	m := &mock.Synthesizer{Payload: []byte("mp3 bytes")}
//	data, err := m.Synthesize(ctx, "yo", speech.Voice{ID: "echo"})
package mock

import (
	"context"
	"sync"

	"github.com/rhymeforge/rhymeforge/pkg/provider/speech"
)

// Call records a single invocation of Synthesize.
type Call struct {
	// Text is the formatted lyric text passed to Synthesize.
	Text string

	// Voice is the voice passed to Synthesize.
	Voice speech.Voice
}

// Synthesizer is a mock implementation of speech.Synthesizer.
type Synthesizer struct {
	mu sync.Mutex

	// Payload is returned by Synthesize when Err is nil.
	Payload []byte

	// Err, if non-nil, is returned by every Synthesize call.
	Err error

	// ErrOnce, if non-nil, is returned by the first Synthesize call only;
	// later calls fall through to Payload/Err. Useful for exercising one
	// fallback transition.
	ErrOnce error

	// Calls records every invocation in order.
	Calls []Call
}

// Compile-time interface assertion.
var _ speech.Synthesizer = (*Synthesizer)(nil)

// Synthesize records the call and returns the scripted response.
func (m *Synthesizer) Synthesize(_ context.Context, text string, voice speech.Voice) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, Call{Text: text, Voice: voice})

	if m.ErrOnce != nil {
		err := m.ErrOnce
		m.ErrOnce = nil
		return nil, err
	}
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Payload, nil
}

// CallCount returns the number of recorded Synthesize calls. Thread-safe.
func (m *Synthesizer) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}
