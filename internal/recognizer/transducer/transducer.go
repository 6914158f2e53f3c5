// Package transducer implements the transducer-family fallback Recognizer
// backend over sherpa-onnx's offline recognizer, loading the four files
// (encoder, decoder, joiner, tokens) from a model directory as described in
// spec §6.
//
// Grounded on the examples pack's agalue-sherpa-voice-assistant
// (internal/stt/recognizer.go), which wires sherpa.OfflineRecognizerConfig
// with a ModelConfig.Transducer block the same way.
package transducer

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/scribekey/scribekey/internal/audio"
	sherpa "github.com/k2-fsa/sherpa-onnx-go-linux/sherpa_onnx"
)

const (
	sampleRate = 16000

	// leadingSilenceSeconds and trailingSilenceSeconds give the transducer
	// model initialization and finalization headroom, per spec §6.
	leadingSilenceSeconds  = 0.5
	trailingSilenceSeconds = 1.5
)

// ModelDir describes the four files a transducer model directory must
// contain.
type ModelDir struct {
	Encoder string
	Decoder string
	Joiner  string
	Tokens  string
}

func (m ModelDir) resolve(dir string) ModelDir {
	join := func(name string) string {
		if name == "" {
			return ""
		}
		return filepath.Join(dir, name)
	}
	return ModelDir{
		Encoder: join(m.Encoder),
		Decoder: join(m.Decoder),
		Joiner:  join(m.Joiner),
		Tokens:  join(m.Tokens),
	}
}

// Provider implements recognizer.Recognizer using a sherpa-onnx offline
// transducer recognizer.
type Provider struct {
	recognizer *sherpa.OfflineRecognizer
}

// New loads a transducer model directory and constructs the offline
// recognizer. numThreads <= 0 defaults to 1.
func New(dir string, files ModelDir, numThreads int) (*Provider, error) {
	resolved := files.resolve(dir)
	if resolved.Encoder == "" || resolved.Decoder == "" || resolved.Joiner == "" || resolved.Tokens == "" {
		return nil, fmt.Errorf("transducer: model directory %q missing required files", dir)
	}
	if numThreads <= 0 {
		numThreads = 1
	}

	cfg := sherpa.OfflineRecognizerConfig{
		ModelConfig: sherpa.OfflineModelConfig{
			Transducer: sherpa.OfflineTransducerModelConfig{
				Encoder: resolved.Encoder,
				Decoder: resolved.Decoder,
				Joiner:  resolved.Joiner,
			},
			Tokens:     resolved.Tokens,
			NumThreads: numThreads,
			Provider:   "cpu",
			Debug:      0,
		},
	}

	rec := sherpa.NewOfflineRecognizer(&cfg)
	if rec == nil {
		return nil, fmt.Errorf("transducer: failed to construct recognizer from %q", dir)
	}
	return &Provider{recognizer: rec}, nil
}

// Name identifies this backend for logging and history records.
func (p *Provider) Name() string { return "transducer" }

// Close releases the sherpa-onnx recognizer.
func (p *Provider) Close() error {
	sherpa.DeleteOfflineRecognizer(p.recognizer)
	return nil
}

// Transcribe decodes the WAV at path and delegates to TranscribeSamples.
func (p *Provider) Transcribe(ctx context.Context, path string) (string, error) {
	pcm, _, err := audio.ReadWavPCM(path)
	if err != nil {
		return "", fmt.Errorf("transducer: read %q: %w", path, err)
	}
	samples := make([]float32, len(pcm)/2)
	for i := range samples {
		s := int16(pcm[i*2]) | int16(pcm[i*2+1])<<8
		samples[i] = float32(s) / 32768.0
	}
	return p.TranscribeSamples(ctx, samples)
}

// TranscribeSamples runs the transducer recognizer on an in-memory buffer of
// 16kHz mono float32 samples, surrounded by leading/trailing silence padding
// so the model has initialization and finalization headroom.
func (p *Provider) TranscribeSamples(ctx context.Context, samples []float32) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("transducer: context already cancelled: %w", err)
	}

	leading := make([]float32, int(leadingSilenceSeconds*sampleRate))
	trailing := make([]float32, int(trailingSilenceSeconds*sampleRate))
	padded := make([]float32, 0, len(leading)+len(samples)+len(trailing))
	padded = append(padded, leading...)
	padded = append(padded, samples...)
	padded = append(padded, trailing...)

	stream := sherpa.NewOfflineStream(p.recognizer)
	defer sherpa.DeleteOfflineStream(stream)

	stream.AcceptWaveform(sampleRate, padded)
	p.recognizer.Decode(stream)

	result := stream.GetResult()
	return strings.TrimSpace(result.Text), nil
}
