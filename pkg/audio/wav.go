package audio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
)

// WAV container constants for 16-bit PCM.
const (
	wavHeaderSize = 44
	wavFmtPCM     = 1
)

var errNotWAV = errors.New("audio: not a RIFF/WAVE stream")

// EncodeWAV serialises the segment as a 16-bit PCM WAV file. WAV is the
// pipeline's uncompressed interchange format: it feeds the external encoder
// and doubles as the playable fallback payload when no encoder is available.
func EncodeWAV(s *Segment) []byte {
	dataSize := len(s.samples) * BytesPerSample
	byteRate := s.sampleRate * s.channels * BytesPerSample
	blockAlign := s.channels * BytesPerSample

	buf := bytes.NewBuffer(make([]byte, 0, wavHeaderSize+dataSize))
	buf.WriteString("RIFF")
	binary.Write(buf, binary.LittleEndian, uint32(36+dataSize))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	binary.Write(buf, binary.LittleEndian, uint32(16))
	binary.Write(buf, binary.LittleEndian, uint16(wavFmtPCM))
	binary.Write(buf, binary.LittleEndian, uint16(s.channels))
	binary.Write(buf, binary.LittleEndian, uint32(s.sampleRate))
	binary.Write(buf, binary.LittleEndian, uint32(byteRate))
	binary.Write(buf, binary.LittleEndian, uint16(blockAlign))
	binary.Write(buf, binary.LittleEndian, uint16(8*BytesPerSample))

	buf.WriteString("data")
	binary.Write(buf, binary.LittleEndian, uint32(dataSize))
	for _, v := range s.samples {
		binary.Write(buf, binary.LittleEndian, v)
	}
	return buf.Bytes()
}

// DecodeWAV parses a 16-bit PCM WAV file into a Segment. Chunks other than
// fmt and data (LIST, cue, …) are skipped. 8-bit and 24/32-bit PCM are
// rejected rather than misread; the speech backends and beat assets this
// pipeline consumes are all 16-bit.
func DecodeWAV(data []byte) (*Segment, error) {
	if len(data) < wavHeaderSize ||
		string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return nil, errNotWAV
	}

	var (
		sampleRate int
		channels   int
		bitDepth   int
		pcm        []byte
	)

	// Walk the chunk list after the 12-byte RIFF header.
	off := 12
	for off+8 <= len(data) {
		id := string(data[off : off+4])
		size := int(binary.LittleEndian.Uint32(data[off+4 : off+8]))
		body := off + 8
		if body+size > len(data) {
			size = len(data) - body
		}

		switch id {
		case "fmt ":
			if size < 16 {
				return nil, fmt.Errorf("audio: wav fmt chunk too short (%d bytes)", size)
			}
			format := binary.LittleEndian.Uint16(data[body : body+2])
			if format != wavFmtPCM {
				return nil, fmt.Errorf("audio: unsupported wav format %d (want PCM)", format)
			}
			channels = int(binary.LittleEndian.Uint16(data[body+2 : body+4]))
			sampleRate = int(binary.LittleEndian.Uint32(data[body+4 : body+8]))
			bitDepth = int(binary.LittleEndian.Uint16(data[body+14 : body+16]))
		case "data":
			pcm = data[body : body+size]
		}

		// Chunks are word-aligned.
		off = body + size
		if size%2 == 1 {
			off++
		}
	}

	if sampleRate == 0 || channels == 0 {
		return nil, errors.New("audio: wav stream missing fmt chunk")
	}
	if bitDepth != 8*BytesPerSample {
		return nil, fmt.Errorf("audio: unsupported wav bit depth %d (want 16)", bitDepth)
	}
	if len(pcm) == 0 {
		return nil, ErrEmptySegment
	}

	samples := make([]int16, len(pcm)/BytesPerSample)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(pcm[i*2:]))
	}
	return NewSegment(samples, sampleRate, channels)
}
