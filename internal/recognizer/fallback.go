package recognizer

import (
	"context"

	"github.com/scribekey/scribekey/internal/resilience"
)

// FallbackRecognizer dispatches Transcribe/TranscribeSamples across a
// primary Recognizer and zero or more fallbacks, using the same
// FallbackGroup/CircuitBreaker primitives the rest of the module uses for
// provider failover: a backend that keeps failing has its breaker open and
// is skipped until its reset timeout elapses.
type FallbackRecognizer struct {
	group *resilience.FallbackGroup[Recognizer]
	all   []Recognizer
}

// NewFallbackRecognizer builds a FallbackRecognizer with primary tried
// first. Use AddFallback to register additional backends in priority order
// (for example: whisper primary, transducer fallback, per spec §6).
func NewFallbackRecognizer(primary Recognizer, cfg resilience.FallbackConfig) *FallbackRecognizer {
	return &FallbackRecognizer{
		group: resilience.NewFallbackGroup(primary, primary.Name(), cfg),
		all:   []Recognizer{primary},
	}
}

// AddFallback registers an additional backend, tried after the primary and
// any previously added fallbacks.
func (f *FallbackRecognizer) AddFallback(r Recognizer) {
	f.group.AddFallback(r.Name(), r)
	f.all = append(f.all, r)
}

// Name identifies this dispatcher for logging.
func (f *FallbackRecognizer) Name() string { return "fallback" }

// Transcribe tries each registered backend in order until one succeeds.
func (f *FallbackRecognizer) Transcribe(ctx context.Context, path string) (string, error) {
	return resilience.ExecuteWithResult(f.group, func(r Recognizer) (string, error) {
		return r.Transcribe(ctx, path)
	})
}

// TranscribeSamples tries each registered backend in order until one
// succeeds.
func (f *FallbackRecognizer) TranscribeSamples(ctx context.Context, samples []float32) (string, error) {
	return resilience.ExecuteWithResult(f.group, func(r Recognizer) (string, error) {
		return r.TranscribeSamples(ctx, samples)
	})
}

// Close releases every registered backend, returning the first error
// encountered (if any) after attempting to close them all.
func (f *FallbackRecognizer) Close() error {
	var firstErr error
	for _, r := range f.all {
		if err := r.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
