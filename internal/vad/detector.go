// Package vad implements the voice-activity detector: a frame-synchronous
// classifier that reduces a stream of 16kHz mono PCM frames to speech
// boundary events via a four-state hysteresis machine, plus a whole-buffer
// silence trimmer used for long recordings.
//
// The per-frame speech/non-speech classifier is an RMS-energy threshold,
// the same approach the teacher corpus uses throughout (rmsEnergy in
// voicetyped's engine/vad.go, computeRMS in the whisper provider) rather
// than a dedicated external VAD binding — the examples pack carries only one
// weak reference to a webrtcvad-style Go binding, not enough to ground an
// external dependency for this classifier.
package vad

import (
	"errors"
	"math"
	"sync/atomic"
)

// Aggressiveness controls how conservatively the classifier treats a frame
// as speech: higher settings require more energy before calling a frame
// "speech", trading sensitivity for fewer false triggers.
type Aggressiveness int

const (
	// Aggressive is the zero value, so an unset Config.Aggressiveness
	// selects it.
	Aggressive Aggressiveness = iota
	Quality
	LowBitrate
	VeryAggressive
)

// energyThreshold returns the per-sample RMS threshold (on a [-1,1] scale)
// above which a frame is classified as speech.
func (a Aggressiveness) energyThreshold() float64 {
	switch a {
	case Quality:
		return 0.010
	case LowBitrate:
		return 0.015
	case Aggressive:
		return 0.020
	case VeryAggressive:
		return 0.030
	default:
		return 0.020
	}
}

// State is one of the four hysteresis states the detector can be in.
type State int

const (
	Silence State = iota
	PossibleSpeech
	Speaking
	PossibleSilence
)

func (s State) String() string {
	switch s {
	case Silence:
		return "silence"
	case PossibleSpeech:
		return "possible-speech"
	case Speaking:
		return "speaking"
	case PossibleSilence:
		return "possible-silence"
	default:
		return "unknown"
	}
}

// FrameDurationMs is one of the three permitted frame durations.
type FrameDurationMs int

const (
	Frame10ms FrameDurationMs = 10
	Frame20ms FrameDurationMs = 20
	Frame30ms FrameDurationMs = 30
)

// SamplesPerFrame returns the exact 16kHz-mono frame length for this
// duration: 160, 320, or 480 samples.
func (d FrameDurationMs) SamplesPerFrame() int {
	return int(d) * 16000 / 1000
}

// Config holds the tuning knobs for a Detector. Zero-value fields are
// replaced with the spec-mandated defaults by NewDetector:
// Aggressive, 30ms, speech_start_frames=3, speech_end_frames=15,
// pre_speech_padding_ms=300, post_speech_padding_ms=300,
// auto_stop_silence_ms=2000.
type Config struct {
	Aggressiveness     Aggressiveness
	FrameDuration       FrameDurationMs
	SpeechStartFrames  int
	SpeechEndFrames    int
	PreSpeechPaddingMs int
	PostSpeechPaddingMs int

	// AutoStopSilenceMs is optional: zero selects the 2000ms default and a
	// negative value disables auto-stop.
	AutoStopSilenceMs int
}

func (c Config) withDefaults() Config {
	if c.FrameDuration == 0 {
		c.FrameDuration = Frame30ms
	}
	if c.SpeechStartFrames == 0 {
		c.SpeechStartFrames = 3
	}
	if c.SpeechEndFrames == 0 {
		c.SpeechEndFrames = 15
	}
	if c.PreSpeechPaddingMs == 0 {
		c.PreSpeechPaddingMs = 300
	}
	if c.PostSpeechPaddingMs == 0 {
		c.PostSpeechPaddingMs = 300
	}
	if c.AutoStopSilenceMs == 0 {
		c.AutoStopSilenceMs = 2000
	}
	return c
}

// EventType enumerates the boundary events a Detector can emit.
type EventType int

const (
	SpeechStart EventType = iota
	SpeechEnd
	AutoStopTriggered
)

// Event is a boundary event produced by ProcessFrame or CheckAutoStop.
type Event struct {
	Type              EventType
	TimestampMs       int64
	DurationMs        int64
	SilenceDurationMs int64
}

var errFrameSize = errors.New("vad: frame length does not match configured frame size")

// Detector implements the four-state VAD machine described in spec §4.4.
// Not safe for concurrent use — one goroutine drives ProcessFrame.
type Detector struct {
	cfg Config

	state                    State
	consecutiveSpeechFrames  int
	consecutiveSilenceFrames int
	frameCount               int64
	speechStartFrame         int64
	speechEndFrame           int64
	hasSpeechEndFrame        bool
	hasDetectedSpeech        bool

	// Disabled, when set, makes ProcessFrame a frame-counting no-op.
	Disabled atomic.Bool
}

// NewDetector constructs a Detector in the Silence state with all counters
// zeroed, applying spec defaults to any zero-value Config fields.
func NewDetector(cfg Config) *Detector {
	return &Detector{cfg: cfg.withDefaults(), state: Silence}
}

// Reset returns the detector to its construction state: Silence, all
// counters zero.
func (d *Detector) Reset() {
	d.state = Silence
	d.consecutiveSpeechFrames = 0
	d.consecutiveSilenceFrames = 0
	d.frameCount = 0
	d.speechStartFrame = 0
	d.speechEndFrame = 0
	d.hasSpeechEndFrame = false
	d.hasDetectedSpeech = false
}

func (d *Detector) prePaddingFrames() int64 {
	return int64(d.cfg.PreSpeechPaddingMs) / int64(d.cfg.FrameDuration)
}

func (d *Detector) postPaddingFrames() int64 {
	return int64(d.cfg.PostSpeechPaddingMs) / int64(d.cfg.FrameDuration)
}

func (d *Detector) frameToMs(n int64) int64 {
	return n * int64(d.cfg.FrameDuration)
}

// ProcessFrame classifies one frame of 16kHz mono signed-16-bit PCM and
// advances the state machine, returning an Event when a boundary is
// crossed. The frame must have exactly SamplesPerFrame() samples.
func (d *Detector) ProcessFrame(frame []int16) (*Event, error) {
	if len(frame) != d.cfg.FrameDuration.SamplesPerFrame() {
		return nil, errFrameSize
	}

	if d.Disabled.Load() {
		d.frameCount++
		return nil, nil
	}

	isSpeech := classify(frame, d.cfg.Aggressiveness)
	ev := d.transition(isSpeech)
	d.frameCount++
	return ev, nil
}

// ProcessFrameF32 is the float variant: samples are clamped to [-1,1] and
// cast to signed 16-bit before delegating to ProcessFrame.
func (d *Detector) ProcessFrameF32(frame []float32) (*Event, error) {
	pcm := make([]int16, len(frame))
	for i, s := range frame {
		if s > 1 {
			s = 1
		} else if s < -1 {
			s = -1
		}
		pcm[i] = int16(s * 32767)
	}
	return d.ProcessFrame(pcm)
}

func (d *Detector) transition(isSpeech bool) *Event {
	switch d.state {
	case Silence:
		if isSpeech {
			d.state = PossibleSpeech
			d.consecutiveSpeechFrames = 1
		}
		return nil

	case PossibleSpeech:
		if isSpeech {
			d.consecutiveSpeechFrames++
			if d.consecutiveSpeechFrames >= d.cfg.SpeechStartFrames {
				d.state = Speaking
				d.hasDetectedSpeech = true
				startFrame := d.frameCount - int64(d.consecutiveSpeechFrames) - d.prePaddingFrames() + 1
				if startFrame < 0 {
					startFrame = 0
				}
				d.speechStartFrame = startFrame
				d.consecutiveSilenceFrames = 0
				return &Event{Type: SpeechStart, TimestampMs: d.frameToMs(startFrame)}
			}
			return nil
		}
		d.state = Silence
		d.consecutiveSpeechFrames = 0
		return nil

	case Speaking:
		if isSpeech {
			d.consecutiveSilenceFrames = 0
			return nil
		}
		d.state = PossibleSilence
		d.consecutiveSilenceFrames = 1
		return nil

	case PossibleSilence:
		if isSpeech {
			d.state = Speaking
			d.consecutiveSilenceFrames = 0
			return nil
		}
		d.consecutiveSilenceFrames++
		if d.consecutiveSilenceFrames >= d.cfg.SpeechEndFrames {
			d.state = Silence
			d.speechEndFrame = d.frameCount
			d.hasSpeechEndFrame = true
			paddedEndFrame := d.frameCount + d.postPaddingFrames()
			startMs := d.frameToMs(d.speechStartFrame)
			endMs := d.frameToMs(paddedEndFrame)
			d.consecutiveSpeechFrames = 0
			d.consecutiveSilenceFrames = 0
			return &Event{Type: SpeechEnd, TimestampMs: endMs, DurationMs: endMs - startMs}
		}
		return nil
	}
	return nil
}

// CheckAutoStop returns an AutoStopTriggered event when auto-stop is
// configured, speech has previously been detected, the machine is currently
// in Silence, a speech-end frame has been recorded, and enough silence has
// elapsed since that frame.
func (d *Detector) CheckAutoStop() *Event {
	if d.cfg.AutoStopSilenceMs <= 0 || !d.hasDetectedSpeech || d.state != Silence || !d.hasSpeechEndFrame {
		return nil
	}
	elapsedFrames := d.frameCount - d.speechEndFrame
	if elapsedFrames < 0 {
		return nil
	}
	elapsedMs := d.frameToMs(elapsedFrames)
	if elapsedMs < int64(d.cfg.AutoStopSilenceMs) {
		return nil
	}
	return &Event{Type: AutoStopTriggered, TimestampMs: d.frameToMs(d.frameCount), SilenceDurationMs: elapsedMs}
}

// State returns the detector's current state, for diagnostics/tests.
func (d *Detector) State() State { return d.state }

// classify is the RMS-energy speech/non-speech classifier shared by every
// aggressiveness level; only the threshold varies.
func classify(frame []int16, a Aggressiveness) bool {
	return rmsEnergy(frame) >= a.energyThreshold()
}

func rmsEnergy(frame []int16) float64 {
	if len(frame) == 0 {
		return 0
	}
	var sumSquares float64
	for _, s := range frame {
		v := float64(s) / 32768.0
		sumSquares += v * v
	}
	mean := sumSquares / float64(len(frame))
	return math.Sqrt(mean)
}
