// Package fsstore provides a beats.Store backed by a directory of audio
// files. Assets are named "<style>_beat.mp3" (or .wav) — the layout the
// beat-rendering CLI mode produces.
package fsstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rhymeforge/rhymeforge/pkg/audio"
	"github.com/rhymeforge/rhymeforge/pkg/provider/beats"
)

// Store loads beat assets from a directory on disk.
type Store struct {
	dir string
}

// Compile-time interface assertion.
var _ beats.Store = (*Store)(nil)

// New creates a Store rooted at dir. The directory does not have to exist —
// a missing directory behaves like an empty store.
func New(dir string) *Store {
	return &Store{dir: dir}
}

// Load implements beats.Store. It tries "<style>_beat.mp3" then
// "<style>_beat.wav"; a file that exists but fails to decode is reported as
// an error, not as a miss, so a corrupt asset is visible in logs rather than
// silently replaced.
func (s *Store) Load(_ context.Context, style string) (*audio.Segment, error) {
	for _, try := range []struct {
		ext    string
		decode func([]byte) (*audio.Segment, error)
	}{
		{".mp3", audio.DecodeMP3},
		{".wav", audio.DecodeWAV},
	} {
		path := filepath.Join(s.dir, style+"_beat"+try.ext)
		data, err := os.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("fsstore: read %q: %w", path, err)
		}

		seg, err := try.decode(data)
		if err != nil {
			return nil, fmt.Errorf("fsstore: decode %q: %w", path, err)
		}
		return seg, nil
	}
	return nil, fmt.Errorf("%w: %q in %q", beats.ErrNotFound, style, s.dir)
}
