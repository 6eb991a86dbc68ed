// Package encode turns finished segments into playable byte streams.
//
// MP3 encoding shells out to ffmpeg; machines without it (or a failed run)
// fall back to an in-process WAV encode, so [Encoder.Encode] always produces
// a playable payload for a non-empty segment.
package encode

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strconv"

	"github.com/rhymeforge/rhymeforge/pkg/audio"
)

// DefaultBinPath is the ffmpeg binary used when no explicit path is
// configured.
const DefaultBinPath = "ffmpeg"

// DefaultBitrateKbps is the MP3 bitrate of the final track.
const DefaultBitrateKbps = 192

// Format identifies the container of an encoded payload.
type Format string

const (
	FormatMP3 Format = "mp3"
	FormatWAV Format = "wav"
)

// Encoder encodes segments to MP3 with a WAV fallback.
type Encoder struct {
	binPath     string
	bitrateKbps int
	log         *slog.Logger
}

// Option configures an [Encoder].
type Option func(*Encoder)

// WithBinPath overrides the ffmpeg binary path.
func WithBinPath(path string) Option {
	return func(e *Encoder) {
		e.binPath = path
	}
}

// WithBitrate overrides the MP3 bitrate in kbit/s.
func WithBitrate(kbps int) Option {
	return func(e *Encoder) {
		e.bitrateKbps = kbps
	}
}

// WithLogger sets the logger used to report MP3 fallbacks. Defaults to
// [slog.Default].
func WithLogger(log *slog.Logger) Option {
	return func(e *Encoder) {
		e.log = log
	}
}

// New creates an Encoder.
func New(opts ...Option) *Encoder {
	e := &Encoder{
		binPath:     DefaultBinPath,
		bitrateKbps: DefaultBitrateKbps,
		log:         slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Encode returns seg as MP3 when ffmpeg is available, falling back to WAV
// otherwise. It fails only for a nil or empty segment.
func (e *Encoder) Encode(ctx context.Context, seg *audio.Segment) ([]byte, Format, error) {
	if seg == nil || seg.Frames() == 0 {
		return nil, "", audio.ErrEmptySegment
	}

	data, err := e.EncodeMP3(ctx, seg)
	if err == nil {
		return data, FormatMP3, nil
	}

	e.log.Warn("mp3 encode failed, falling back to wav", "error", err)
	return audio.EncodeWAV(seg), FormatWAV, nil
}

// EncodeMP3 encodes seg to MP3 at the configured bitrate by piping raw PCM
// through ffmpeg.
func (e *Encoder) EncodeMP3(ctx context.Context, seg *audio.Segment) ([]byte, error) {
	if seg == nil || seg.Frames() == 0 {
		return nil, audio.ErrEmptySegment
	}
	if _, err := exec.LookPath(e.binPath); err != nil {
		return nil, fmt.Errorf("encode: ffmpeg not available: %w", err)
	}

	pcm := make([]byte, 0, len(seg.Samples())*audio.BytesPerSample)
	for _, s := range seg.Samples() {
		pcm = append(pcm, byte(s), byte(s>>8))
	}

	cmd := exec.CommandContext(ctx, e.binPath,
		"-hide_banner", "-loglevel", "error",
		"-f", "s16le",
		"-ar", strconv.Itoa(seg.SampleRate()),
		"-ac", strconv.Itoa(seg.Channels()),
		"-i", "pipe:0",
		"-f", "mp3",
		"-b:a", fmt.Sprintf("%dk", e.bitrateKbps),
		"pipe:1",
	)
	cmd.Stdin = bytes.NewReader(pcm)

	var out, errBuf bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errBuf

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("encode: ffmpeg: %w: %s", err, errBuf.String())
	}
	if out.Len() == 0 {
		return nil, fmt.Errorf("encode: ffmpeg produced no output")
	}
	return out.Bytes(), nil
}
