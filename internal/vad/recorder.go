package vad

import (
	"sync/atomic"
	"time"

	"github.com/scribekey/scribekey/internal/audio"
)

// eventChannelCapacity is the bounded event channel size from spec §4.5.
const eventChannelCapacity = 64

// recorderScratchSize is the scratch buffer size the worker reads the
// secondary RingBuffer into, matching AudioCapture's own writer worker.
const recorderScratchSize = 4096

// Recorder adds speech-boundary detection on top of an audio.AudioCapture
// without opening a second input stream: it attaches a secondary
// RingBuffer to the capture, and a worker thread downsamples, frames, and
// feeds a Detector, forwarding any emitted events to a bounded channel.
type Recorder struct {
	capture   *audio.AudioCapture
	secondary *audio.RingBuffer
	detector  *Detector

	events chan Event
	stop   atomic.Bool
	done   chan struct{}

	autoStopTriggered atomic.Bool

	sourceRate     int
	sourceChannels int
}

// NewRecorder attaches a fresh secondary RingBuffer to capture and prepares
// a Detector with cfg. sourceRate/sourceChannels describe the capture
// device's native format, used by the fast-path decimation step.
func NewRecorder(capture *audio.AudioCapture, cfg Config, sourceRate, sourceChannels int) *Recorder {
	secondary := audio.NewRingBuffer()
	capture.AttachSecondary(secondary)
	return &Recorder{
		capture:        capture,
		secondary:      secondary,
		detector:       NewDetector(cfg),
		events:         make(chan Event, eventChannelCapacity),
		done:           make(chan struct{}),
		sourceRate:     sourceRate,
		sourceChannels: sourceChannels,
	}
}

// Events exposes the event channel. Loss on a full channel is acceptable and
// must not block the worker — callers must tolerate event loss and rely on
// "last event wins" semantics downstream.
func (r *Recorder) Events() <-chan Event { return r.events }

// AutoStopTriggered reports whether the worker has observed an auto-stop
// condition since the last Start.
func (r *Recorder) AutoStopTriggered() bool { return r.autoStopTriggered.Load() }

// Start spawns the worker goroutine.
func (r *Recorder) Start() {
	r.stop.Store(false)
	r.autoStopTriggered.Store(false)
	go r.run()
}

// Stop signals the worker to exit and waits for it to do so.
func (r *Recorder) Stop() {
	r.stop.Store(true)
	<-r.done
	r.capture.DetachSecondary()
}

func (r *Recorder) run() {
	defer close(r.done)

	scratch := make([]float32, recorderScratchSize)
	var accumulator []float32
	frameLen := r.detector.cfg.FrameDuration.SamplesPerFrame()

	emit := func(ev *Event) {
		if ev == nil {
			return
		}
		select {
		case r.events <- *ev:
		default:
		}
		if ev.Type == AutoStopTriggered {
			r.autoStopTriggered.Store(true)
		}
	}

	for !r.stop.Load() {
		n := r.secondary.Read(scratch)
		if n == 0 {
			time.Sleep(10 * time.Millisecond)
		} else {
			pcm := audio.DecimateToPCM16Mono(scratch[:n], r.sourceRate, r.sourceChannels)
			accumulator = append(accumulator, pcm16BytesToFloat32(pcm)...)

			for len(accumulator) >= frameLen {
				frame := accumulator[:frameLen]
				accumulator = accumulator[frameLen:]
				ev, err := r.detector.ProcessFrameF32(frame)
				if err == nil {
					emit(ev)
				}
			}
		}

		emit(r.detector.CheckAutoStop())
	}
}

func pcm16BytesToFloat32(pcm []byte) []float32 {
	n := len(pcm) / 2
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		s := int16(pcm[i*2]) | int16(pcm[i*2+1])<<8
		out[i] = float32(s) / 32768.0
	}
	return out
}
