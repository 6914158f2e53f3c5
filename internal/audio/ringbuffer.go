// Package audio implements the real-time capture path: the lock-free
// RingBuffer, the platform-input-stream AudioCapture, and the WAV encoding
// used by both the realtime writer and file import.
package audio

import "sync/atomic"

// RingBufferSize is the fixed capacity of a RingBuffer: roughly four seconds
// of audio at 16 kHz mono.
const RingBufferSize = 65536

// RingBuffer is a single-producer/single-consumer lock-free circular buffer
// of 32-bit floating-point samples. It is pre-allocated and performs no
// allocation, locking, or blocking on the hot path — the producer side is
// safe to call from a real-time audio callback.
//
// Exactly one producer goroutine may call Write and exactly one consumer
// goroutine may call Read/Available/Clear; no other mutator may exist for
// the lifetime of the buffer.
type RingBuffer struct {
	buf      [RingBufferSize]float32
	writePos atomic.Uint64
	readPos  atomic.Uint64
}

// NewRingBuffer returns an empty RingBuffer ready for use.
func NewRingBuffer() *RingBuffer {
	return &RingBuffer{}
}

// Capacity returns the total backing-array size. Usable capacity is
// Capacity()-1: one slot is always kept empty so a full buffer can be
// distinguished from an empty one using only the two indices.
func (r *RingBuffer) Capacity() int {
	return RingBufferSize
}

// Available returns the number of samples currently available for reading.
func (r *RingBuffer) Available() int {
	write := r.writePos.Load()
	read := r.readPos.Load()
	if write >= read {
		return int(write - read)
	}
	return RingBufferSize - int(read) + int(write)
}

// Write copies as many samples from src into the buffer as will fit, never
// blocking and never allocating. It returns the number of samples actually
// accepted; when the buffer is full the tail of src is silently dropped and
// the caller is expected to log the drop count.
func (r *RingBuffer) Write(src []float32) int {
	write := r.writePos.Load()
	read := r.readPos.Load()

	var free int
	if write >= read {
		free = RingBufferSize - int(write-read) - 1
	} else {
		free = int(read-write) - 1
	}

	toWrite := len(src)
	if toWrite > free {
		toWrite = free
	}
	if toWrite <= 0 {
		return 0
	}

	for i := 0; i < toWrite; i++ {
		idx := (int(write) + i) % RingBufferSize
		r.buf[idx] = src[i]
	}

	r.writePos.Store((write + uint64(toWrite)) % RingBufferSize)
	return toWrite
}

// Read copies as many samples as are available into dst, up to len(dst). It
// returns the number of samples written into dst and may return 0 when the
// buffer is empty.
func (r *RingBuffer) Read(dst []float32) int {
	write := r.writePos.Load()
	read := r.readPos.Load()

	var available int
	if write >= read {
		available = int(write - read)
	} else {
		available = RingBufferSize - int(read) + int(write)
	}

	toRead := len(dst)
	if toRead > available {
		toRead = available
	}
	if toRead <= 0 {
		return 0
	}

	for i := 0; i < toRead; i++ {
		idx := (int(read) + i) % RingBufferSize
		dst[i] = r.buf[idx]
	}

	r.readPos.Store((read + uint64(toRead)) % RingBufferSize)
	return toRead
}

// Clear discards all buffered samples by advancing the read position to the
// write position. Safe to call only from the consumer goroutine.
func (r *RingBuffer) Clear() {
	r.readPos.Store(r.writePos.Load())
}
