// Package recognizer defines the Recognizer abstraction over local
// speech-to-text backends and the primary/fallback dispatch between them.
//
// Unlike a streaming session (the shape the teacher corpus uses for
// network-backed STT providers), a Recognizer here is a simple synchronous
// function over a finished recording: spec §6 calls for
// transcribe(path) -> String and/or transcribe_samples(samples) -> String,
// which this package models directly rather than adapting a
// StartStream/SessionHandle shape that has no file/buffer equivalent.
package recognizer

import "context"

// Recognizer transcribes a finished 16kHz mono recording. Implementations
// must accept the canonical on-disk WAV layout (spec §6) and must be safe
// for concurrent use — the same Recognizer instance may serve overlapping
// Pipeline and HandsfreeController sessions.
type Recognizer interface {
	// Name identifies the backend for logging and history records.
	Name() string

	// Transcribe reads path (a 16kHz mono 16-bit PCM WAV file) and returns
	// its transcript. An empty string is a valid (non-error) result.
	Transcribe(ctx context.Context, path string) (string, error)

	// TranscribeSamples transcribes an in-memory buffer of 16kHz mono
	// float32 samples directly, without a round-trip through disk.
	TranscribeSamples(ctx context.Context, samples []float32) (string, error)

	// Close releases any resources (loaded models, native contexts) held by
	// the backend.
	Close() error
}
