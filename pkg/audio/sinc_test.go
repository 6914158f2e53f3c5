package audio

import "testing"

func TestSincResamplerProducesExpectedLengthOrder(t *testing.T) {
	r := NewSincResampler(44100, 16000)
	block := make([]float32, 4410) // 0.1s @ 44.1kHz
	for i := range block {
		block[i] = 0.5
	}

	out := r.Process(block)
	out = append(out, r.Flush()...)

	if len(out) == 0 {
		t.Fatal("expected some resampled output")
	}
	// Roughly 16000/44100 of the input length, loosely bounded.
	wantApprox := len(block) * 16000 / 44100
	if len(out) < wantApprox/2 || len(out) > wantApprox*3 {
		t.Fatalf("output length %d far from expected ~%d", len(out), wantApprox)
	}
}

func TestSincResamplerClampsOutputRange(t *testing.T) {
	r := NewSincResampler(8000, 16000)
	block := make([]float32, 512)
	for i := range block {
		if i%2 == 0 {
			block[i] = 1.0
		} else {
			block[i] = -1.0
		}
	}
	out := r.Process(block)
	out = append(out, r.Flush()...)
	for _, s := range out {
		if s > 1.0 || s < -1.0 {
			t.Fatalf("sample %v out of [-1,1] range", s)
		}
	}
}

func TestSincResamplerRatioClampedToMax(t *testing.T) {
	r := NewSincResampler(1000, 100000)
	ratio := float64(r.dstRate) / float64(r.srcRate)
	if ratio > sincMaxRatio+1e-9 {
		t.Fatalf("ratio %v exceeds max %v", ratio, sincMaxRatio)
	}
}
