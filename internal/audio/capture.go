package audio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"
	"time"
	"unsafe"

	"github.com/gen2brain/malgo"
)

// ErrAlreadyRecording is returned by Start when a capture session already
// exists.
var ErrAlreadyRecording = errors.New("audio: already recording")

// ErrAudioUnavailable is returned when no usable input device/configuration
// (32-bit float samples) can be found.
var ErrAudioUnavailable = errors.New("audio: no usable input device")

const writerScratchSize = 4096

// AudioCapture owns a platform input stream. Its real-time callback writes
// captured samples to a primary RingBuffer and, if attached, a secondary
// RingBuffer, then a writer worker drains the primary buffer into a 16 kHz
// mono 16-bit PCM WAV file.
//
// The callback performs no allocation, locking, or syscalls beyond what the
// platform stream API itself requires — its only side effects are the
// RingBuffer writes.
type AudioCapture struct {
	ctx *malgo.AllocatedContext

	mu        sync.Mutex
	device    *malgo.Device
	primary   *RingBuffer
	secondary *RingBuffer
	stopFlag  atomic.Bool
	writerWG  sync.WaitGroup
	writerErr error
	outputPath string
	dropCount  atomic.Uint64
}

// NewAudioCapture initializes the malgo audio context used to enumerate and
// open input devices. Callers must call Close when finished.
func NewAudioCapture() (*AudioCapture, error) {
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, func(string) {})
	if err != nil {
		return nil, fmt.Errorf("audio: init context: %w", err)
	}
	return &AudioCapture{ctx: ctx}, nil
}

// Close releases the malgo context. Call after Stop.
func (c *AudioCapture) Close() error {
	c.ctx.Uninit()
	c.ctx.Free()
	return nil
}

// AttachSecondary registers a secondary RingBuffer that receives the
// identical sample batches as the primary buffer, from the same callback
// invocation. Must be called before Start. If the secondary buffer is full,
// samples are silently dropped.
func (c *AudioCapture) AttachSecondary(rb *RingBuffer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.secondary = rb
}

// DetachSecondary removes the secondary RingBuffer. Must be called before
// Start.
func (c *AudioCapture) DetachSecondary() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.secondary = nil
}

// IsRecording reports whether a capture session is currently active.
func (c *AudioCapture) IsRecording() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.device != nil
}

// Start opens the default input device in 32-bit float format, begins
// streaming into a fresh primary RingBuffer (and the attached secondary, if
// any), and spawns the writer worker that produces outputPath.
func (c *AudioCapture) Start(outputPath string) error {
	c.mu.Lock()
	if c.device != nil {
		c.mu.Unlock()
		return ErrAlreadyRecording
	}

	cfg := malgo.DefaultDeviceConfig(malgo.Capture)
	cfg.Capture.Format = malgo.FormatF32
	cfg.Capture.Channels = 0 // device default
	cfg.SampleRate = 0       // device default
	cfg.Alsa.NoMMap = 1

	primary := NewRingBuffer()
	c.primary = primary
	c.outputPath = outputPath
	c.stopFlag.Store(false)
	c.dropCount.Store(0)
	secondary := c.secondary
	c.mu.Unlock()

	var sourceRate, sourceChannels int

	onRecv := func(_, input []byte, _ uint32) {
		// Converted by malgo's device callback contract; input is
		// interleaved float32 PCM. It is reinterpreted in place as a
		// []float32 over the byte slice the driver hands us, so the callback
		// allocates nothing, matching the real-time discipline of "no locks,
		// no blocking syscalls".
		var samples []float32
		if len(input) >= 4 {
			samples = unsafe.Slice((*float32)(unsafe.Pointer(&input[0])), len(input)/4)
		}
		n := primary.Write(samples)
		if n < len(samples) {
			c.dropCount.Add(uint64(len(samples) - n))
		}
		if secondary != nil {
			secondary.Write(samples)
		}
	}

	device, err := malgo.InitDevice(c.ctx.Context, cfg, malgo.DeviceCallbacks{
		Data: func(_, input []byte, frames uint32) {
			onRecv(nil, input, frames)
		},
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrAudioUnavailable, err)
	}
	sourceRate = int(cfg.SampleRate)
	sourceChannels = int(cfg.Capture.Channels)
	if sourceRate == 0 {
		sourceRate = 48000
	}
	if sourceChannels == 0 {
		sourceChannels = 1
	}

	if err := device.Start(); err != nil {
		device.Uninit()
		return fmt.Errorf("%w: %v", ErrAudioUnavailable, err)
	}

	c.mu.Lock()
	c.device = device
	c.mu.Unlock()

	c.writerWG.Add(1)
	go c.runWriter(primary, sourceRate, sourceChannels, outputPath)

	return nil
}

// Stop signals the writer worker, stops and releases the stream, joins the
// writer, and returns the finished output path.
func (c *AudioCapture) Stop() (string, error) {
	c.mu.Lock()
	device := c.device
	outputPath := c.outputPath
	c.mu.Unlock()

	if device == nil {
		return "", errors.New("audio: not recording")
	}

	c.stopFlag.Store(true)
	device.Stop()
	device.Uninit()

	c.writerWG.Wait()

	c.mu.Lock()
	c.device = nil
	c.mu.Unlock()

	if c.writerErr != nil {
		return "", c.writerErr
	}
	return outputPath, nil
}

// DroppedSamples returns the number of samples dropped so far because the
// primary RingBuffer was full.
func (c *AudioCapture) DroppedSamples() uint64 {
	return c.dropCount.Load()
}

// runWriter implements the writer-worker algorithm from spec §4.2: drain the
// primary buffer in 4096-sample scratch blocks, downsample-and-convert using
// simple decimation, append to the WAV, sleeping 10ms when the buffer is
// empty, until the stop flag is observed — then drain once more and
// finalize.
func (c *AudioCapture) runWriter(rb *RingBuffer, sourceRate, channels int, outputPath string) {
	defer c.writerWG.Done()

	w, err := CreateWavWriter(outputPath)
	if err != nil {
		c.writerErr = err
		return
	}

	scratch := make([]float32, writerScratchSize)
	drain := func() {
		for {
			n := rb.Read(scratch)
			if n == 0 {
				return
			}
			pcm := DecimateToPCM16Mono(scratch[:n], sourceRate, channels)
			if err := w.Write(pcm); err != nil {
				slog.Error("audio capture: writer failed", "error", err)
				c.writerErr = err
				return
			}
		}
	}

	for !c.stopFlag.Load() {
		n := rb.Read(scratch)
		if n == 0 {
			time.Sleep(10 * time.Millisecond)
			continue
		}
		pcm := DecimateToPCM16Mono(scratch[:n], sourceRate, channels)
		if err := w.Write(pcm); err != nil {
			slog.Error("audio capture: writer failed", "error", err)
			c.writerErr = err
			break
		}
	}
	drain()

	if err := w.Close(); err != nil && c.writerErr == nil {
		c.writerErr = err
	}
}

// DecimateToPCM16Mono implements the "simple decimation" downsample-and-
// convert variant from spec §4.2: used when the file output must start
// immediately (the realtime writer fast path). ratio is rounded toward 1;
// every ratio-th frame is averaged across channels to mono, scaled, clamped,
// and cast to signed 16-bit.
func DecimateToPCM16Mono(samples []float32, sourceRate, channels int) []byte {
	if channels <= 0 {
		channels = 1
	}
	ratio := sourceRate / 16000
	if ratio < 1 {
		ratio = 1
	}

	frames := len(samples) / channels
	out := make([]byte, 0, (frames/ratio+1)*2)

	for frame := 0; frame < frames; frame += ratio {
		var sum float32
		for ch := 0; ch < channels; ch++ {
			idx := frame*channels + ch
			if idx < len(samples) {
				sum += samples[idx]
			}
		}
		avg := sum / float32(channels)

		v := avg * 32767
		if v > 32767 {
			v = 32767
		} else if v < -32768 {
			v = -32768
		}
		s := int16(v)
		out = append(out, byte(s), byte(s>>8))
	}
	return out
}

func bytesToFloat32(b []byte) []float32 {
	n := len(b) / 4
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		bits := binary.LittleEndian.Uint32(b[i*4:])
		out[i] = math.Float32frombits(bits)
	}
	return out
}
