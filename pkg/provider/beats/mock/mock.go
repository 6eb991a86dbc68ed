// Package mock provides a test double for the beats.Store interface.
package mock

import (
	"context"
	"sync"

	"github.com/rhymeforge/rhymeforge/pkg/audio"
	"github.com/rhymeforge/rhymeforge/pkg/provider/beats"
)

// Store is a mock implementation of beats.Store.
type Store struct {
	mu sync.Mutex

	// Segment is returned by Load when Err is nil. A nil Segment with a nil
	// Err yields beats.ErrNotFound, which is the common test setup.
	Segment *audio.Segment

	// Err, if non-nil, is returned by every Load call.
	Err error

	// Styles records the style argument of every Load call in order.
	Styles []string
}

// Compile-time interface assertion.
var _ beats.Store = (*Store)(nil)

// Load records the call and returns the scripted response.
func (m *Store) Load(_ context.Context, style string) (*audio.Segment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Styles = append(m.Styles, style)

	if m.Err != nil {
		return nil, m.Err
	}
	if m.Segment == nil {
		return nil, beats.ErrNotFound
	}
	return m.Segment, nil
}
