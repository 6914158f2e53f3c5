// Package whisper implements the GPU-accelerated whisper-family Recognizer
// backend over the whisper.cpp CGO bindings. Model loading and CUDA/Metal/
// HIP/Vulkan GPU selection happen once at startup; each Transcribe call
// opens a fresh whisper.cpp context from the shared model, so concurrent
// calls do not interfere with one another.
//
// Adapted from the teacher's streaming session-based NativeProvider
// (pkg/provider/stt/whisper/native.go in the teacher repo) down to the
// synchronous transcribe(path)/transcribe_samples(samples) contract spec §6
// calls for.
package whisper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/scribekey/scribekey/internal/audio"
	whisperlib "github.com/ggerganov/whisper.cpp/bindings/go/pkg/whisper"
)

const (
	defaultLanguage = "en"

	// maxSingleChunkSeconds bounds how much trailing silence may be
	// appended before inference — never push a chunk over this limit.
	maxSingleChunkSeconds = 15.0

	// trailingSilenceSeconds is the amount of silence appended so the model
	// can finalize its last segment, per spec §6.
	trailingSilenceSeconds = 1.0

	sampleRate = 16000
)

// Option configures a Provider.
type Option func(*Provider)

// WithLanguage sets the BCP-47 language code for transcription. Defaults to
// "en".
func WithLanguage(lang string) Option {
	return func(p *Provider) { p.language = lang }
}

// Provider implements recognizer.Recognizer using whisper.cpp's native Go
// bindings.
type Provider struct {
	model    whisperlib.Model
	language string
}

// New loads the whisper.cpp model at modelPath. The model is retained for
// the lifetime of the Provider and shared across all Transcribe calls; Close
// releases it.
func New(modelPath string, opts ...Option) (*Provider, error) {
	if modelPath == "" {
		return nil, errors.New("whisper: modelPath must not be empty")
	}
	model, err := whisperlib.New(modelPath)
	if err != nil {
		return nil, fmt.Errorf("whisper: load model %q: %w", modelPath, err)
	}

	p := &Provider{model: model, language: defaultLanguage}
	for _, o := range opts {
		o(p)
	}
	return p, nil
}

// Name identifies this backend for logging and history records.
func (p *Provider) Name() string { return "whisper" }

// Close releases the whisper.cpp model.
func (p *Provider) Close() error {
	if p.model != nil {
		return p.model.Close()
	}
	return nil
}

// Transcribe decodes the WAV at path to 16kHz mono float32 samples and
// delegates to TranscribeSamples.
func (p *Provider) Transcribe(ctx context.Context, path string) (string, error) {
	samples, err := readWavSamples(path)
	if err != nil {
		return "", fmt.Errorf("whisper: read %q: %w", path, err)
	}
	return p.TranscribeSamples(ctx, samples)
}

// TranscribeSamples runs whisper.cpp inference on an in-memory buffer of
// 16kHz mono float32 samples. Up to trailingSilenceSeconds of silence is
// appended so the model can finalize its last segment, unless doing so would
// push the chunk over maxSingleChunkSeconds.
func (p *Provider) TranscribeSamples(ctx context.Context, samples []float32) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("whisper: context already cancelled: %w", err)
	}

	durationSeconds := float64(len(samples)) / sampleRate
	if durationSeconds+trailingSilenceSeconds <= maxSingleChunkSeconds {
		pad := make([]float32, int(trailingSilenceSeconds*sampleRate))
		samples = append(append([]float32(nil), samples...), pad...)
	}

	wctx, err := p.model.NewContext()
	if err != nil {
		return "", fmt.Errorf("whisper: create context: %w", err)
	}
	if err := wctx.SetLanguage(p.language); err != nil {
		slog.Warn("whisper: failed to set language, using default", "language", p.language, "error", err)
	}
	if err := wctx.Process(samples, nil, nil, nil); err != nil {
		return "", fmt.Errorf("whisper: process audio: %w", err)
	}

	var parts []string
	for {
		segment, err := wctx.NextSegment()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("whisper: read segment: %w", err)
		}
		text := strings.TrimSpace(segment.Text)
		if text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " "), nil
}

func readWavSamples(path string) ([]float32, error) {
	pcm, info, err := audio.ReadWavPCM(path)
	if err != nil {
		return nil, err
	}
	samples := make([]float32, len(pcm)/2)
	for i := range samples {
		s := int16(pcm[i*2]) | int16(pcm[i*2+1])<<8
		samples[i] = float32(s) / 32768.0
	}
	if info.SampleRate != sampleRate {
		slog.Warn("whisper: wav sample rate is not 16kHz, results may be degraded", "sampleRate", info.SampleRate)
	}
	return samples, nil
}
