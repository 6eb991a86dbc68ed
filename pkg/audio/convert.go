package audio

// Conform converts the segment to the given sample rate and channel count.
// Two-segment operations ([Segment.Overlay], [Segment.Append]) require both
// sides to share a format; Conform is how a mismatched side is brought in
// line rather than silently misinterpreting its samples.
//
// If the segment already matches, it is returned unchanged (zero copy).
// Conversion order: resample first, then channel-convert, so stereo input
// is never resampled twice on its way to mono.
func (s *Segment) Conform(sampleRate, channels int) *Segment {
	if s.sampleRate == sampleRate && s.channels == channels {
		return s
	}

	samples := s.samples
	curChannels := s.channels

	if s.sampleRate != sampleRate {
		samples = resampleLinear(samples, curChannels, s.sampleRate, sampleRate)
	}
	if curChannels != channels {
		switch {
		case curChannels == 1 && channels == 2:
			samples = monoToStereo(samples)
		case curChannels == 2 && channels == 1:
			samples = stereoToMono(samples)
		default:
			// Uncommon layouts collapse through mono.
			if curChannels > 1 {
				samples = downmixMono(samples, curChannels)
			}
			if channels == 2 {
				samples = monoToStereo(samples)
			}
		}
	}

	return &Segment{samples: samples, sampleRate: sampleRate, channels: channels}
}

// resampleLinear resamples interleaved int16 PCM from srcRate to dstRate
// using per-channel linear interpolation.
func resampleLinear(in []int16, channels, srcRate, dstRate int) []int16 {
	if srcRate == dstRate || len(in) < channels {
		return in
	}
	srcFrames := len(in) / channels
	dstFrames := int(int64(srcFrames) * int64(dstRate) / int64(srcRate))
	if dstFrames == 0 {
		return nil
	}

	out := make([]int16, dstFrames*channels)
	ratio := float64(srcRate) / float64(dstRate)

	for i := 0; i < dstFrames; i++ {
		srcPos := float64(i) * ratio
		srcIdx := int(srcPos)
		frac := srcPos - float64(srcIdx)

		for c := 0; c < channels; c++ {
			s0 := in[srcIdx*channels+c]
			s1 := s0
			if srcIdx+1 < srcFrames {
				s1 = in[(srcIdx+1)*channels+c]
			}
			out[i*channels+c] = int16(float64(s0)*(1-frac) + float64(s1)*frac)
		}
	}
	return out
}

// monoToStereo duplicates each mono sample into an L+R pair.
func monoToStereo(in []int16) []int16 {
	out := make([]int16, len(in)*2)
	for i, v := range in {
		out[i*2] = v
		out[i*2+1] = v
	}
	return out
}

// stereoToMono averages L+R per frame. int32 arithmetic prevents overflow.
func stereoToMono(in []int16) []int16 {
	frames := len(in) / 2
	out := make([]int16, frames)
	for i := 0; i < frames; i++ {
		out[i] = clampSample((int32(in[i*2]) + int32(in[i*2+1])) / 2)
	}
	return out
}

// downmixMono averages all channels of each frame into a single sample.
func downmixMono(in []int16, channels int) []int16 {
	frames := len(in) / channels
	out := make([]int16, frames)
	for i := 0; i < frames; i++ {
		var sum int32
		for c := 0; c < channels; c++ {
			sum += int32(in[i*channels+c])
		}
		out[i] = clampSample(sum / int32(channels))
	}
	return out
}
