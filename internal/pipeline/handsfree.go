package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/scribekey/scribekey/internal/audio"
	"github.com/scribekey/scribekey/internal/enhancer"
	"github.com/scribekey/scribekey/internal/filter"
	"github.com/scribekey/scribekey/internal/indicator"
	"github.com/scribekey/scribekey/internal/recognizer"
	"github.com/scribekey/scribekey/internal/vad"
	"github.com/scribekey/scribekey/pkg/types"
)

// defaultListenTimeout is the Listening->Timeout deadline, per spec §4.10.
const defaultListenTimeout = 30 * time.Second

// HandsfreeController drives the pipeline automatically from VAD events,
// implementing the five-state machine of spec §4.10. Exactly one event
// handler runs at a time (serialized by mu); a controller-owned timer
// fires Timeout when Listening is entered and no VoiceDetected follows
// within ListenTimeout.
type HandsfreeController struct {
	capture    *audio.AudioCapture
	recorder   *vad.Recorder
	recognizer recognizer.Recognizer
	filter     *filter.Filter
	enhancer   *enhancer.Enhancer
	clipboard  *indicator.ClipboardBridge
	emitter    *indicator.Emitter
	history    HistoryRecorder

	// ListenTimeout overrides defaultListenTimeout when non-zero.
	ListenTimeout time.Duration

	mu             sync.Mutex
	state          types.HandsfreeState
	lastTranscript types.Transcript
	outputPath     string
	timeoutTimer   *time.Timer

	cfg            ProcessConfig
	eventLoopStop  chan struct{}
	eventLoopDone  chan struct{}
}

// NewHandsfreeController constructs a controller in the Idle state. capture
// and recognizer must be non-nil; the rest may be nil to skip that stage.
func NewHandsfreeController(capture *audio.AudioCapture, vadCfg vad.Config, sourceRate, sourceChannels int, rec recognizer.Recognizer, f *filter.Filter, enh *enhancer.Enhancer, clipboard *indicator.ClipboardBridge, emitter *indicator.Emitter, history HistoryRecorder) *HandsfreeController {
	h := &HandsfreeController{
		capture:    capture,
		recognizer: rec,
		filter:     f,
		enhancer:   enh,
		clipboard:  clipboard,
		emitter:    emitter,
		history:    history,
		state:      types.HandsfreeIdle,
	}
	h.recorder = vad.NewRecorder(capture, vadCfg, sourceRate, sourceChannels)
	return h
}

// State reports the current state.
func (h *HandsfreeController) State() types.HandsfreeState {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

// LastTranscript reports the most recently completed transcript.
func (h *HandsfreeController) LastTranscript() types.Transcript {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.lastTranscript
}

func (h *HandsfreeController) listenTimeout() time.Duration {
	if h.ListenTimeout > 0 {
		return h.ListenTimeout
	}
	return defaultListenTimeout
}

// Activate fires the Activate event: Idle->Listening (starting capture and
// the VadRecorder) or Output->Listening (re-arming directly).
func (h *HandsfreeController) Activate(outputPath string, cfg ProcessConfig) {
	h.mu.Lock()
	defer h.mu.Unlock()

	switch h.state {
	case types.HandsfreeIdle, types.HandsfreeOutput:
	default:
		return
	}

	h.cfg = cfg
	h.outputPath = outputPath

	if err := h.capture.Start(outputPath); err != nil {
		slog.Warn("handsfree: failed to start capture", "error", err)
		return
	}
	h.recorder.Start()
	h.eventLoopStop = make(chan struct{})
	h.eventLoopDone = make(chan struct{})
	go h.runEventLoop(h.eventLoopStop, h.eventLoopDone)

	h.transitionLocked(types.HandsfreeListening, "activate")
	h.armTimeoutLocked()
}

func (h *HandsfreeController) armTimeoutLocked() {
	h.cancelTimeoutLocked()
	h.timeoutTimer = time.AfterFunc(h.listenTimeout(), h.onTimeout)
}

func (h *HandsfreeController) cancelTimeoutLocked() {
	if h.timeoutTimer != nil {
		h.timeoutTimer.Stop()
		h.timeoutTimer = nil
	}
}

func (h *HandsfreeController) onTimeout() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.state != types.HandsfreeListening {
		return
	}
	h.teardownCaptureLocked()
	h.transitionLocked(types.HandsfreeIdle, "timeout")
}

// Cancel fires the Cancel event, valid from Listening, Recording, and
// Processing, per the Cancellable predicate.
func (h *HandsfreeController) Cancel() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.state.Cancellable() {
		return
	}
	h.cancelTimeoutLocked()
	if h.state.Capturing() {
		h.teardownCaptureLocked()
	}
	h.transitionLocked(types.HandsfreeIdle, "cancel")
}

// OutputAcknowledged fires the OutputAcknowledged event: Output->Idle.
func (h *HandsfreeController) OutputAcknowledged() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.state != types.HandsfreeOutput {
		return
	}
	h.transitionLocked(types.HandsfreeIdle, "output-acknowledged")
}

func (h *HandsfreeController) teardownCaptureLocked() {
	if h.eventLoopStop != nil {
		close(h.eventLoopStop)
		<-h.eventLoopDone
		h.eventLoopStop = nil
	}
	h.recorder.Stop()
	if h.capture.IsRecording() {
		_, _ = h.capture.Stop()
	}
}

func (h *HandsfreeController) transitionLocked(next types.HandsfreeState, reason string) {
	prev := h.state
	h.state = next
	h.emitter.HandsfreeStateChange(prev, next, reason)
	h.emitter.Progress(pipelineStateFor(next), reason)
}

func pipelineStateFor(s types.HandsfreeState) types.PipelineState {
	switch s {
	case types.HandsfreeListening, types.HandsfreeRecording:
		return types.PipelineRecording
	case types.HandsfreeProcessing:
		return types.PipelineTranscribing
	case types.HandsfreeOutput:
		return types.PipelineCompleted
	default:
		return types.PipelineIdle
	}
}

// runEventLoop consumes VAD events and applies them as VoiceDetected /
// SilenceDetected transitions, until stopCh closes.
func (h *HandsfreeController) runEventLoop(stopCh, doneCh chan struct{}) {
	defer close(doneCh)
	for {
		select {
		case <-stopCh:
			return
		case ev := <-h.recorder.Events():
			switch ev.Type {
			case vad.SpeechStart:
				h.onVoiceDetected()
			case vad.SpeechEnd, vad.AutoStopTriggered:
				h.onSilenceDetected()
			}
		}
	}
}

func (h *HandsfreeController) onVoiceDetected() {
	h.mu.Lock()
	if h.state != types.HandsfreeListening {
		h.mu.Unlock()
		return
	}
	h.cancelTimeoutLocked()
	h.transitionLocked(types.HandsfreeRecording, "voice-detected")
	h.mu.Unlock()
}

func (h *HandsfreeController) onSilenceDetected() {
	h.mu.Lock()
	if h.state != types.HandsfreeRecording {
		h.mu.Unlock()
		return
	}
	h.recorder.Stop()
	path, err := h.capture.Stop()
	if h.eventLoopStop != nil {
		close(h.eventLoopStop)
		h.eventLoopStop = nil
	}
	h.transitionLocked(types.HandsfreeProcessing, "silence-detected")
	cfg := h.cfg
	h.mu.Unlock()

	if err != nil {
		h.onTranscriptionFailed(err)
		return
	}
	go h.transcribe(path, cfg)
}

func (h *HandsfreeController) transcribe(path string, cfg ProcessConfig) {
	p := &Pipeline{
		recognizer: h.recognizer,
		filter:     h.filter,
		enhancer:   h.enhancer,
		clipboard:  h.clipboard,
		emitter:    nil, // suppress Pipeline's own progress events; the controller emits its own
		history:    h.history,
	}
	transcript, err := p.processAudio(context.Background(), path, cfg)
	if err != nil {
		h.onTranscriptionFailed(err)
		return
	}
	h.onTranscriptionComplete(transcript)
}

func (h *HandsfreeController) onTranscriptionFailed(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.state != types.HandsfreeProcessing {
		return
	}
	slog.Warn("handsfree: transcription failed", "error", err)
	h.transitionLocked(types.HandsfreeIdle, fmt.Sprintf("transcription-failed: %v", err))
}

func (h *HandsfreeController) onTranscriptionComplete(transcript types.Transcript) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.state != types.HandsfreeProcessing {
		return
	}
	h.lastTranscript = transcript
	h.transitionLocked(types.HandsfreeOutput, "transcription-complete")
}
