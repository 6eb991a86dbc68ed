package audio

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	mp3 "github.com/hajimehoshi/go-mp3"
)

// DecodeMP3 decodes an MP3 stream (speech-adapter output or a pre-recorded
// beat asset) into a Segment. go-mp3 always emits 16-bit little-endian
// stereo PCM at the stream's native sample rate.
func DecodeMP3(data []byte) (*Segment, error) {
	dec, err := mp3.NewDecoder(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("audio: decode mp3: %w", err)
	}

	pcm, err := io.ReadAll(dec)
	if err != nil {
		return nil, fmt.Errorf("audio: read mp3 samples: %w", err)
	}
	if len(pcm) < BytesPerSample {
		return nil, ErrEmptySegment
	}

	samples := make([]int16, len(pcm)/BytesPerSample)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(pcm[i*2:]))
	}
	return NewSegment(samples, dec.SampleRate(), 2)
}
