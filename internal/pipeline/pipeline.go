// Package pipeline sequences one user-initiated transcription from key
// press to output (§4.9) and automates the same flow under VAD control
// (§4.10, see handsfree.go).
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/scribekey/scribekey/internal/audio"
	"github.com/scribekey/scribekey/internal/enhancer"
	"github.com/scribekey/scribekey/internal/filter"
	"github.com/scribekey/scribekey/internal/indicator"
	"github.com/scribekey/scribekey/internal/recognizer"
	pkgaudio "github.com/scribekey/scribekey/pkg/audio"
	"github.com/scribekey/scribekey/pkg/types"
)

// silentInputRMSThreshold is the RMS gate below which the recognizer is
// skipped entirely, per spec §4.9 step 2 (~-54dB).
const silentInputRMSThreshold = 0.002

// pasteSettleDelay is the wait before text insertion on auto-paste, per
// spec §4.9 step 5.
const pasteSettleDelay = 50 * time.Millisecond

// Sentinel errors, per spec §7's error-kind catalogue.
var (
	ErrAlreadyRunning    = errors.New("pipeline: already running")
	ErrRecognizerMissing = errors.New("pipeline: no recognizer ready")
	ErrEmptyTranscript   = errors.New("pipeline: transcription produced no text")
)

// HistoryRecorder persists a completed Transcript to the external history
// store (out of scope per spec §1; this is the narrow seam this module
// calls through).
type HistoryRecorder interface {
	Record(types.Transcript) error
}

// ProcessConfig configures one process_audio run.
type ProcessConfig struct {
	AutoCopy           bool
	AutoPaste          bool
	TextInserter       indicator.TextInserter
	EnhancementEnabled bool
	EnhancementModel   string
	PromptTemplate     enhancer.PromptTemplate
}

// Pipeline orchestrates one manual-toggle recording session at a time. It
// is safe for concurrent use; start_recording/stop_and_process/cancel may
// be called from any goroutine, though only one recording may be active.
type Pipeline struct {
	capture    *audio.AudioCapture
	recognizer recognizer.Recognizer
	filter     *filter.Filter
	enhancer   *enhancer.Enhancer
	clipboard  *indicator.ClipboardBridge
	emitter    *indicator.Emitter
	history    HistoryRecorder

	isRunning  atomic.Bool
	cancelFlag atomic.Bool

	mu          sync.Mutex
	currentPath string
}

// New constructs a Pipeline. StartRecording refuses with
// ErrRecognizerMissing when recognizer is nil. filter, enhancer, clipboard,
// emitter, and history may be nil (filtering/enhancement/clipboard copy/UI/
// persistence are then skipped silently).
func New(capture *audio.AudioCapture, rec recognizer.Recognizer, f *filter.Filter, enh *enhancer.Enhancer, clipboard *indicator.ClipboardBridge, emitter *indicator.Emitter, history HistoryRecorder) *Pipeline {
	return &Pipeline{
		capture:    capture,
		recognizer: rec,
		filter:     f,
		enhancer:   enh,
		clipboard:  clipboard,
		emitter:    emitter,
		history:    history,
	}
}

// IsRunning reports whether a recording session is currently active, from
// entry to start_recording through return of stop_and_process or cancel.
func (p *Pipeline) IsRunning() bool { return p.isRunning.Load() }

// StartRecording begins a new recording session, writing to outputPath.
// Refuses if a session is already running or no recognizer is ready.
func (p *Pipeline) StartRecording(outputPath string) (string, error) {
	if p.recognizer == nil {
		return "", ErrRecognizerMissing
	}
	if !p.isRunning.CompareAndSwap(false, true) {
		return "", ErrAlreadyRunning
	}

	if err := p.capture.Start(outputPath); err != nil {
		p.isRunning.Store(false)
		return "", fmt.Errorf("pipeline: start recording: %w", err)
	}

	p.mu.Lock()
	p.currentPath = outputPath
	p.mu.Unlock()

	if p.emitter != nil && p.emitter.Indicator != nil {
		p.emitter.Indicator.ShowInstant()
	}
	p.emitter.Progress(types.PipelineRecording, "recording")

	return outputPath, nil
}

// StopAndProcess stops the active recording and runs it through the
// recognize/filter/enhance/output pipeline. is_running is guaranteed false
// after this returns, even on panic in any stage.
func (p *Pipeline) StopAndProcess(ctx context.Context, cfg ProcessConfig) (result types.Transcript, err error) {
	defer func() {
		p.isRunning.Store(false)
		if r := recover(); r != nil {
			err = fmt.Errorf("pipeline: panic during processing: %v", r)
			p.emitter.Progress(types.PipelineFailed, err.Error())
		}
	}()

	path, stopErr := p.capture.Stop()
	if stopErr != nil {
		return types.Transcript{}, fmt.Errorf("pipeline: stop capture: %w", stopErr)
	}

	return p.processAudio(ctx, path, cfg)
}

func (p *Pipeline) processAudio(ctx context.Context, path string, cfg ProcessConfig) (types.Transcript, error) {
	pcm, header, err := audio.ReadWavPCM(path)
	if err != nil {
		p.emitter.Progress(types.PipelineFailed, err.Error())
		return types.Transcript{}, fmt.Errorf("pipeline: read recording: %w", err)
	}
	duration := header.DurationSeconds()

	p.emitter.Progress(types.PipelineTranscribing, "transcribing")

	samples := pcm16MonoToFloat32(pcm, int(header.Channels))
	if computeRMS(samples) < silentInputRMSThreshold {
		slog.Debug("pipeline: input below silence threshold, skipping recognizer")
		p.emitter.Progress(types.PipelineFailed, ErrEmptyTranscript.Error())
		return types.Transcript{}, ErrEmptyTranscript
	}

	transcribeStart := time.Now()
	rawText, err := p.recognizer.Transcribe(ctx, path)
	transcribeElapsed := time.Since(transcribeStart).Seconds()
	if err != nil {
		p.emitter.Progress(types.PipelineFailed, err.Error())
		return types.Transcript{}, fmt.Errorf("pipeline: transcribe: %w", err)
	}
	if strings.TrimSpace(rawText) == "" {
		p.emitter.Progress(types.PipelineFailed, ErrEmptyTranscript.Error())
		return types.Transcript{}, ErrEmptyTranscript
	}

	p.emitter.Progress(types.PipelineFiltering, "filtering")
	filtered := rawText
	if p.filter != nil {
		filtered = p.filter.Filter(rawText)
	}

	transcript := types.Transcript{
		Text:                      filtered,
		RawText:                  rawText,
		DurationSeconds:           duration,
		AudioPath:                 path,
		TranscriptionModelName:    p.recognizer.Name(),
		TranscriptionDurationSecs: transcribeElapsed,
	}

	if cfg.EnhancementEnabled && cfg.EnhancementModel != "" && p.enhancer != nil {
		p.emitter.Progress(types.PipelineEnhancing, "enhancing")
		enhanceStart := time.Now()
		enhanced, enhErr := p.enhancer.Enhance(ctx, filtered, cfg.EnhancementModel, cfg.PromptTemplate)
		if enhErr != nil {
			slog.Warn("pipeline: enhancement failed, keeping filtered text", "error", enhErr)
		} else {
			transcript.Text = enhanced
			transcript.IsEnhanced = true
			transcript.EnhancementModelName = cfg.EnhancementModel
			transcript.EnhancementDurationSeconds = time.Since(enhanceStart).Seconds()
		}
	}

	return p.finish(ctx, transcript, cfg)
}

func (p *Pipeline) finish(ctx context.Context, transcript types.Transcript, cfg ProcessConfig) (types.Transcript, error) {
	p.emitter.Progress(types.PipelineOutputting, "outputting")

	if transcript.Text != "" {
		if cfg.AutoCopy && p.clipboard != nil {
			if err := p.clipboard.Write(transcript.Text); err != nil {
				slog.Warn("pipeline: clipboard write failed", "error", err)
			}
		}
		if cfg.AutoPaste && cfg.TextInserter != nil {
			time.Sleep(pasteSettleDelay)
			if err := cfg.TextInserter.Insert(transcript.Text); err != nil {
				slog.Warn("pipeline: text insertion failed", "error", err)
			}
		}
	}

	if p.history != nil {
		if err := p.history.Record(transcript); err != nil {
			slog.Warn("pipeline: failed to persist history record", "error", err)
		}
	}
	if p.emitter != nil && p.emitter.Tray != nil {
		p.emitter.Tray.SetLastTranscription(transcript.Text)
	}

	p.emitter.Progress(types.PipelineCompleted, "completed")
	return transcript, nil
}

// Cancel stops the active recording, if any, clears IsRunning, hides the
// indicator, and emits Idle. It does not reach a file import: fileimport.Import
// observes only its own ctx.
func (p *Pipeline) Cancel() {
	p.cancelFlag.Store(true)
	defer p.cancelFlag.Store(false)

	if p.capture.IsRecording() {
		_, _ = p.capture.Stop()
	}
	p.isRunning.Store(false)

	if p.emitter != nil && p.emitter.Indicator != nil {
		p.emitter.Indicator.Hide()
	}
	p.emitter.Progress(types.PipelineIdle, "cancelled")
}

// CancelFlag reports whether a Cancel call is in progress: it is set on
// entry to Cancel and cleared when Cancel returns. Nothing in this module
// reads it.
func (p *Pipeline) CancelFlag() bool { return p.cancelFlag.Load() }

func computeRMS(samples []float32) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sumSquares float64
	for _, s := range samples {
		sumSquares += float64(s) * float64(s)
	}
	return math.Sqrt(sumSquares / float64(len(samples)))
}

func pcm16MonoToFloat32(pcm []byte, channels int) []float32 {
	if channels <= 0 {
		channels = 1
	}
	if channels == 2 {
		pcm = pkgaudio.StereoToMono(pcm)
	}
	n := len(pcm) / 2
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		s := int16(pcm[i*2]) | int16(pcm[i*2+1])<<8
		out[i] = float32(s) / 32768.0
	}
	return out
}
