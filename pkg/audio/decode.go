package audio

import "bytes"

// Decode decodes an audio payload by sniffing its container: RIFF/WAVE data
// decodes as WAV, everything else is treated as an MP3 stream. Speech
// providers return MP3 by default but some backends (and the beat-render
// tooling) produce WAV.
func Decode(data []byte) (*Segment, error) {
	if len(data) >= 12 && bytes.Equal(data[:4], []byte("RIFF")) && bytes.Equal(data[8:12], []byte("WAVE")) {
		return DecodeWAV(data)
	}
	return DecodeMP3(data)
}
