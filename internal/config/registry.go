package config

import (
	"errors"
	"fmt"
	"sync"

	"github.com/rhymeforge/rhymeforge/pkg/provider/beats"
	"github.com/rhymeforge/rhymeforge/pkg/provider/speech"
)

// ErrProviderNotRegistered is returned by Create* methods when no factory has
// been registered under the requested provider name.
var ErrProviderNotRegistered = errors.New("config: provider not registered")

// Registry maps provider names to their constructor functions for each
// provider type. It is safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	speech map[string]func(ProviderEntry) (speech.Synthesizer, error)
	beats  map[string]func(BeatsConfig) (beats.Store, error)
}

// NewRegistry returns an empty, ready-to-use [Registry].
func NewRegistry() *Registry {
	return &Registry{
		speech: make(map[string]func(ProviderEntry) (speech.Synthesizer, error)),
		beats:  make(map[string]func(BeatsConfig) (beats.Store, error)),
	}
}

// RegisterSpeech registers a speech synthesizer factory under name.
// Subsequent calls with the same name overwrite the previous registration.
func (r *Registry) RegisterSpeech(name string, factory func(ProviderEntry) (speech.Synthesizer, error)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.speech[name] = factory
}

// RegisterBeats registers a beat store factory under name.
func (r *Registry) RegisterBeats(name string, factory func(BeatsConfig) (beats.Store, error)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.beats[name] = factory
}

// CreateSpeech instantiates a speech synthesizer using the factory registered
// under entry.Name. Returns [ErrProviderNotRegistered] if no factory has been
// registered for that name.
func (r *Registry) CreateSpeech(entry ProviderEntry) (speech.Synthesizer, error) {
	r.mu.RLock()
	factory, ok := r.speech[entry.Name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: speech/%q", ErrProviderNotRegistered, entry.Name)
	}
	return factory(entry)
}

// CreateBeats instantiates a beat store using the factory registered under
// name.
func (r *Registry) CreateBeats(name string, cfg BeatsConfig) (beats.Store, error) {
	r.mu.RLock()
	factory, ok := r.beats[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: beats/%q", ErrProviderNotRegistered, name)
	}
	return factory(cfg)
}
