package audio

import (
	"math/rand"
	"testing"
)

func TestRingBufferWriteReadRoundTrip(t *testing.T) {
	rb := NewRingBuffer()
	in := []float32{0.1, 0.2, 0.3, 0.4, 0.5}

	n := rb.Write(in)
	if n != len(in) {
		t.Fatalf("Write() = %d, want %d", n, len(in))
	}
	if got := rb.Available(); got != len(in) {
		t.Fatalf("Available() = %d, want %d", got, len(in))
	}

	out := make([]float32, len(in))
	n = rb.Read(out)
	if n != len(in) {
		t.Fatalf("Read() = %d, want %d", n, len(in))
	}
	for i := range in {
		if out[i] != in[i] {
			t.Fatalf("out[%d] = %v, want %v", i, out[i], in[i])
		}
	}
	if got := rb.Available(); got != 0 {
		t.Fatalf("Available() after drain = %d, want 0", got)
	}
}

func TestRingBufferFullDropsTail(t *testing.T) {
	rb := NewRingBuffer()
	usable := rb.Capacity() - 1
	big := make([]float32, usable+10)
	for i := range big {
		big[i] = float32(i)
	}

	n := rb.Write(big)
	if n != usable {
		t.Fatalf("Write() = %d, want %d (usable capacity)", n, usable)
	}
	if got := rb.Available(); got != usable {
		t.Fatalf("Available() = %d, want %d", got, usable)
	}

	// Buffer is full — a further write accepts nothing.
	n = rb.Write([]float32{1, 2, 3})
	if n != 0 {
		t.Fatalf("Write() on full buffer = %d, want 0", n)
	}
}

func TestRingBufferFIFOOrderAcrossWraparound(t *testing.T) {
	rb := NewRingBuffer()
	var written, read []float32

	src := rand.New(rand.NewSource(1))
	scratch := make([]float32, 4096)

	for round := 0; round < 64; round++ {
		n := 100 + src.Intn(900)
		batch := make([]float32, n)
		for i := range batch {
			batch[i] = src.Float32()
		}
		accepted := rb.Write(batch)
		written = append(written, batch[:accepted]...)

		got := rb.Read(scratch[:len(scratch)/2])
		read = append(read, scratch[:got]...)
	}
	// Drain whatever remains.
	for {
		got := rb.Read(scratch)
		if got == 0 {
			break
		}
		read = append(read, scratch[:got]...)
	}

	if len(read) != len(written) {
		t.Fatalf("read %d samples, wrote %d", len(read), len(written))
	}
	for i := range written {
		if read[i] != written[i] {
			t.Fatalf("FIFO order violated at index %d: got %v, want %v", i, read[i], written[i])
		}
	}
}

func TestRingBufferClear(t *testing.T) {
	rb := NewRingBuffer()
	rb.Write([]float32{1, 2, 3})
	rb.Clear()
	if got := rb.Available(); got != 0 {
		t.Fatalf("Available() after Clear() = %d, want 0", got)
	}
	if n := rb.Read(make([]float32, 10)); n != 0 {
		t.Fatalf("Read() after Clear() = %d, want 0", n)
	}
}
