package vad

// trimShortBufferThresholdSamples is "20 seconds at 16kHz" — below this
// length, trimming is skipped because the VAD pass is not worth its CPU
// cost on short clips (spec §4.4).
const trimShortBufferThresholdSamples = 20 * 16000

// trimMarginSamples is the 200ms margin added on each side of the detected
// speech range, expressed at 16kHz.
const trimMarginSamples = 200 * 16000 / 1000

// TrimSilence locates the speech region within a buffer of mono float32
// samples and returns a [start, end) range expanded by a 200ms margin on
// each side and clamped to the buffer.
//
// sampleRate need not be 16kHz: frames are classified at whatever duration
// the caller configures, after a low-quality resample to 16kHz inside this
// function when sampleRate differs — acceptable because only the frame
// boundary indices are used, not the audio content itself.
//
// If the buffer is shorter than ~20 seconds at 16kHz, or if no speech frame
// is found, the full range (0, len(samples)) is returned.
func TrimSilence(samples []float32, sampleRate int, cfg Config) (start, end int) {
	n := len(samples)
	if n == 0 {
		return 0, 0
	}

	scaledThreshold := trimShortBufferThresholdSamples
	if sampleRate > 0 && sampleRate != 16000 {
		scaledThreshold = trimShortBufferThresholdSamples * sampleRate / 16000
	}
	if n < scaledThreshold {
		return 0, n
	}

	frame16k := cfg.withDefaults()
	frameLen := frame16k.FrameDuration.SamplesPerFrame()

	var working []float32
	if sampleRate > 0 && sampleRate != 16000 {
		working = decimateToRate(samples, sampleRate, 16000)
	} else {
		working = samples
	}

	det := NewDetector(cfg)
	firstSpeechFrame := -1
	lastSpeechFrame := -1
	frameIdx := 0

	for i := 0; i+frameLen <= len(working); i += frameLen {
		pcm := make([]int16, frameLen)
		for j := 0; j < frameLen; j++ {
			v := working[i+j]
			if v > 1 {
				v = 1
			} else if v < -1 {
				v = -1
			}
			pcm[j] = int16(v * 32767)
		}
		isSpeech := classify(pcm, det.cfg.Aggressiveness)
		if isSpeech {
			if firstSpeechFrame == -1 {
				firstSpeechFrame = frameIdx
			}
			lastSpeechFrame = frameIdx
		}
		frameIdx++
	}

	if firstSpeechFrame == -1 {
		return 0, n
	}

	firstSample16k := firstSpeechFrame * frameLen
	lastSample16k := (lastSpeechFrame + 1) * frameLen

	// Map 16kHz working-buffer indices back to the original sample rate.
	ratio := 1.0
	if sampleRate > 0 {
		ratio = float64(sampleRate) / 16000.0
	}
	firstOrig := int(float64(firstSample16k) * ratio)
	lastOrig := int(float64(lastSample16k) * ratio)

	margin := trimMarginSamples
	if sampleRate > 0 {
		margin = trimMarginSamples * sampleRate / 16000
	}

	start = firstOrig - margin
	if start < 0 {
		start = 0
	}
	end = lastOrig + margin
	if end > n {
		end = n
	}
	return start, end
}

// decimateToRate does a cheap (non-sinc) decimation/duplication resample of
// mono float32 samples, used only to produce frame-classification input for
// the trimmer — the trimmer never returns resampled audio, only indices, so
// resample quality does not matter here.
func decimateToRate(samples []float32, srcRate, dstRate int) []float32 {
	if srcRate == dstRate || srcRate <= 0 || dstRate <= 0 {
		return samples
	}
	outLen := len(samples) * dstRate / srcRate
	if outLen <= 0 {
		return nil
	}
	out := make([]float32, outLen)
	for i := range out {
		srcIdx := i * srcRate / dstRate
		if srcIdx >= len(samples) {
			srcIdx = len(samples) - 1
		}
		out[i] = samples[srcIdx]
	}
	return out
}
