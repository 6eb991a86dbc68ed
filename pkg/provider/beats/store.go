// Package beats defines the Store interface for pre-recorded rhythm-bed
// assets.
//
// A beat store maps a beat style to a full instrumental segment. A miss is a
// normal condition — the pipeline synthesises a procedural bed instead — so
// implementations report it with [ErrNotFound] rather than a hard failure.
package beats

import (
	"context"
	"errors"

	"github.com/rhymeforge/rhymeforge/pkg/audio"
)

// ErrNotFound indicates that no asset exists for the requested style.
// Callers should fall back to procedural synthesis, not treat it as an error.
var ErrNotFound = errors.New("beats: no asset for style")

// Store is the abstraction over any beat-asset source.
type Store interface {
	// Load returns the instrumental segment for the given style, or
	// [ErrNotFound] when the store has no asset for it.
	Load(ctx context.Context, style string) (*audio.Segment, error)
}
