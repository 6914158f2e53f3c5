// Package indicator provides the pure-sink UI adapters the pipeline posts
// events to: a recording indicator window, a system tray icon, and an
// optional sound-cue player. Per spec §9's cyclic-reference fix, these
// adapters never hold a reference back to the pipeline — they only receive
// calls.
package indicator

import "github.com/scribekey/scribekey/pkg/types"

// RecordingIndicator surfaces recording state to the user via a small
// always-on-top window. show_instant must be idempotent and appear within
// 16ms per spec §4.12 — implementations achieve this by pre-warming the
// window off-screen at construction time.
type RecordingIndicator interface {
	// ShowInstant makes the indicator visible immediately. Idempotent.
	ShowInstant()

	// Hide removes the indicator from the screen (or parks it off-screen).
	Hide()

	// SetState updates the indicator's visual state to reflect the current
	// pipeline or hands-free state.
	SetState(state string)
}

// Tray surfaces pipeline/hands-free status and the last transcription via a
// system tray icon and menu.
type Tray interface {
	// SetPipelineState updates the tray's displayed pipeline state.
	SetPipelineState(state types.PipelineState)

	// SetLastTranscription records the text of the most recently completed
	// transcription, shown in the tray menu.
	SetLastTranscription(text string)
}

// SoundCue plays short notification sounds on pipeline transitions, per the
// §4.15 supplement. Implementations are out of scope for actual audio
// playback; NoOpSoundCue is always a valid choice.
type SoundCue interface {
	// PlayStart plays the "recording started" cue.
	PlayStart()

	// PlayStop plays the "recording stopped" cue.
	PlayStop()

	// PlayError plays the "pipeline failed" cue.
	PlayError()
}

// Emitter is the single capability the pipeline and hands-free controller
// hold to reach the UI layer: one outward-only handle bundling the
// indicator, tray, and sound-cue sinks plus a progress-event callback,
// eliminating the indicator/tray ↔ pipeline cycle (spec §9).
type Emitter struct {
	Indicator RecordingIndicator
	Tray      Tray
	SoundCue  SoundCue

	// OnProgress is invoked for every pipeline-progress event: state,
	// a human-readable message, and an optional device name.
	OnProgress func(state types.PipelineState, message, deviceName string)

	// OnHandsfreeStateChange is invoked on every hands-free transition.
	OnHandsfreeStateChange func(previous, next types.HandsfreeState, reason string)

	// OnDeviceFallbackWarning is invoked when a configured device id
	// resolved to a different device.
	OnDeviceFallbackWarning func(configuredID, actualName string)
}

// Progress reports a pipeline progress event through OnProgress, the
// indicator, and the tray, tolerating a nil Emitter or nil OnProgress.
func (e *Emitter) Progress(state types.PipelineState, message string) {
	if e == nil {
		return
	}
	if e.Indicator != nil {
		e.Indicator.SetState(state.String())
	}
	if e.Tray != nil {
		e.Tray.SetPipelineState(state)
	}
	if e.OnProgress != nil {
		e.OnProgress(state, message, "")
	}
}

// ProgressWithDevice is Progress plus a resolved device name, used for the
// Recording state.
func (e *Emitter) ProgressWithDevice(state types.PipelineState, message, deviceName string) {
	if e == nil {
		return
	}
	if e.Indicator != nil {
		e.Indicator.SetState(state.String())
	}
	if e.Tray != nil {
		e.Tray.SetPipelineState(state)
	}
	if e.OnProgress != nil {
		e.OnProgress(state, message, deviceName)
	}
}

// DeviceFallbackWarning reports a device-fallback-warning event.
func (e *Emitter) DeviceFallbackWarning(configuredID, actualName string) {
	if e == nil || e.OnDeviceFallbackWarning == nil {
		return
	}
	e.OnDeviceFallbackWarning(configuredID, actualName)
}

// HandsfreeStateChange reports a handsfree-state-change event.
func (e *Emitter) HandsfreeStateChange(previous, next types.HandsfreeState, reason string) {
	if e == nil || e.OnHandsfreeStateChange == nil {
		return
	}
	e.OnHandsfreeStateChange(previous, next, reason)
}

// NoOpSoundCue is a SoundCue that plays nothing, the default until a
// platform audio-playback adapter is wired in.
type NoOpSoundCue struct{}

func (NoOpSoundCue) PlayStart() {}
func (NoOpSoundCue) PlayStop()  {}
func (NoOpSoundCue) PlayError() {}
