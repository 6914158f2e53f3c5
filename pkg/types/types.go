// Package types defines the shared data types used across scribekey's
// packages — the lingua franca between audio capture, VAD, recognizers,
// filters, and the pipeline orchestrator. Cross-cutting data structures live
// here to avoid circular imports between the packages that produce and
// consume them.
package types

import "time"

// PcmFrame is a sequence of interleaved samples. Its length must always be a
// multiple of Channels.
type PcmFrame struct {
	// Data holds Channels-interleaved signed 16-bit little-endian samples.
	Data []byte

	// SampleRate in Hz.
	SampleRate int

	// Channels is the interleaving factor (1 = mono, 2 = stereo).
	Channels int

	// Timestamp marks when this frame was captured, relative to stream start.
	Timestamp time.Duration
}

// VadEventType enumerates the boundary events the VoiceActivityDetector can
// emit.
type VadEventType int

const (
	// VadSpeechStart marks the first frame of a detected utterance, reported
	// retroactively to include the configured pre-speech padding.
	VadSpeechStart VadEventType = iota

	// VadSpeechEnd marks the end of a detected utterance, reported with the
	// configured post-speech padding already applied.
	VadSpeechEnd

	// VadAutoStopTriggered fires when silence has persisted long enough after
	// a completed utterance that the caller should stop recording.
	VadAutoStopTriggered
)

// String returns the human-readable name of the event type.
func (t VadEventType) String() string {
	switch t {
	case VadSpeechStart:
		return "speech-start"
	case VadSpeechEnd:
		return "speech-end"
	case VadAutoStopTriggered:
		return "auto-stop-triggered"
	default:
		return "unknown"
	}
}

// VadEvent is a tagged boundary event emitted by the VoiceActivityDetector.
type VadEvent struct {
	Type VadEventType

	// TimestampMs is the frame-derived timestamp, in milliseconds, at which
	// this event logically occurred.
	TimestampMs int64

	// DurationMs is set on VadSpeechEnd: the length of the utterance that
	// just ended.
	DurationMs int64

	// SilenceDurationMs is set on VadAutoStopTriggered: how long silence had
	// persisted when the auto-stop fired.
	SilenceDurationMs int64
}

// PipelineState enumerates the states of the manual-toggle transcription
// pipeline (see internal/pipeline).
type PipelineState int

const (
	PipelineIdle PipelineState = iota
	PipelineRecording
	PipelineConverting
	PipelineTranscribing
	PipelineFiltering
	PipelineEnhancing
	PipelineOutputting
	PipelineCompleted
	PipelineFailed
)

// String returns the human-readable name of the pipeline state.
func (s PipelineState) String() string {
	switch s {
	case PipelineIdle:
		return "idle"
	case PipelineRecording:
		return "recording"
	case PipelineConverting:
		return "converting"
	case PipelineTranscribing:
		return "transcribing"
	case PipelineFiltering:
		return "filtering"
	case PipelineEnhancing:
		return "enhancing"
	case PipelineOutputting:
		return "outputting"
	case PipelineCompleted:
		return "completed"
	case PipelineFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// HandsfreeState enumerates the states of the VAD-driven hands-free
// controller (see internal/pipeline.HandsfreeController).
type HandsfreeState int

const (
	HandsfreeIdle HandsfreeState = iota
	HandsfreeListening
	HandsfreeRecording
	HandsfreeProcessing
	HandsfreeOutput
)

// String returns the human-readable name of the hands-free state.
func (s HandsfreeState) String() string {
	switch s {
	case HandsfreeIdle:
		return "idle"
	case HandsfreeListening:
		return "listening"
	case HandsfreeRecording:
		return "recording"
	case HandsfreeProcessing:
		return "processing"
	case HandsfreeOutput:
		return "output"
	default:
		return "unknown"
	}
}

// Cancellable reports whether this state may be interrupted by a Cancel
// event (see spec §4.10).
func (s HandsfreeState) Cancellable() bool {
	switch s {
	case HandsfreeListening, HandsfreeRecording, HandsfreeProcessing:
		return true
	default:
		return false
	}
}

// Capturing reports whether audio is actively being captured in this state.
func (s HandsfreeState) Capturing() bool {
	switch s {
	case HandsfreeListening, HandsfreeRecording:
		return true
	default:
		return false
	}
}

// Transcript is the final record produced by one pipeline run.
type Transcript struct {
	// Text is the final text — filtered, and enhanced if enhancement ran.
	Text string

	// RawText is the recognizer's unfiltered output.
	RawText string

	// IsEnhanced reports whether Text was produced by the Enhancer.
	IsEnhanced bool

	// DurationSeconds is the audio duration, when known.
	DurationSeconds float64

	// AudioPath is the WAV file transcribed, when the source was a file.
	AudioPath string

	TranscriptionModelName     string
	TranscriptionDurationSecs  float64
	EnhancementModelName       string
	EnhancementDurationSeconds float64
}

// KeywordBoost is a vocabulary hint offered to a Recognizer to increase
// recognition probability for uncommon words. Not every backend honors it.
type KeywordBoost struct {
	Keyword string
	Boost   float64
}
