package encode_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/rhymeforge/rhymeforge/internal/encode"
	"github.com/rhymeforge/rhymeforge/pkg/audio"
)

// quiet discards fallback warnings during tests.
var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestEncodeAlwaysPlayable(t *testing.T) {
	// Point at a binary that cannot exist so the encoder must take the WAV
	// path regardless of the host machine.
	enc := encode.New(
		encode.WithBinPath("/nonexistent/ffmpeg"),
		encode.WithLogger(quiet),
	)

	seg := audio.Tone(440, time.Second, 0.5, 22050)
	data, format, err := enc.Encode(context.Background(), seg)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if format != encode.FormatWAV {
		t.Errorf("format = %q, want %q", format, encode.FormatWAV)
	}
	if len(data) == 0 {
		t.Fatal("Encode returned an empty payload")
	}

	// The fallback payload must decode back to the same audio.
	decoded, err := audio.DecodeWAV(data)
	if err != nil {
		t.Fatalf("DecodeWAV: %v", err)
	}
	if decoded.Frames() != seg.Frames() {
		t.Errorf("decoded frames = %d, want %d", decoded.Frames(), seg.Frames())
	}
}

func TestEncodeEmptySegment(t *testing.T) {
	enc := encode.New(encode.WithLogger(quiet))

	if _, _, err := enc.Encode(context.Background(), nil); !errors.Is(err, audio.ErrEmptySegment) {
		t.Errorf("Encode(nil) error = %v, want ErrEmptySegment", err)
	}

	empty, err := audio.NewSegment(nil, 22050, 1)
	if err != nil {
		t.Fatalf("NewSegment: %v", err)
	}
	if _, _, err := enc.Encode(context.Background(), empty); !errors.Is(err, audio.ErrEmptySegment) {
		t.Errorf("Encode(empty) error = %v, want ErrEmptySegment", err)
	}
}

func TestEncodeMP3MissingBinary(t *testing.T) {
	enc := encode.New(
		encode.WithBinPath("/nonexistent/ffmpeg"),
		encode.WithLogger(quiet),
	)

	seg := audio.Tone(440, 100*time.Millisecond, 0.5, 22050)
	if _, err := enc.EncodeMP3(context.Background(), seg); err == nil {
		t.Error("EncodeMP3 succeeded without ffmpeg")
	}
}
