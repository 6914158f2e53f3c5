package vad

import "testing"

func speechFrame(n int) []int16 {
	f := make([]int16, n)
	for i := range f {
		if i%2 == 0 {
			f[i] = 12000
		} else {
			f[i] = -12000
		}
	}
	return f
}

func silenceFrame(n int) []int16 {
	return make([]int16, n)
}

func TestDetectorEmitsSpeechStartThenSpeechEnd(t *testing.T) {
	d := NewDetector(Config{FrameDuration: Frame30ms, SpeechStartFrames: 3, SpeechEndFrames: 5})
	n := Frame30ms.SamplesPerFrame()

	var sawStart, sawEnd bool
	var startMs, endMs int64

	feed := func(speech bool, count int) {
		for i := 0; i < count; i++ {
			var ev *Event
			var err error
			if speech {
				ev, err = d.ProcessFrame(speechFrame(n))
			} else {
				ev, err = d.ProcessFrame(silenceFrame(n))
			}
			if err != nil {
				t.Fatalf("ProcessFrame: %v", err)
			}
			if ev == nil {
				continue
			}
			switch ev.Type {
			case SpeechStart:
				if sawStart {
					t.Fatal("SpeechStart emitted twice without SpeechEnd")
				}
				sawStart = true
				startMs = ev.TimestampMs
			case SpeechEnd:
				if !sawStart {
					t.Fatal("SpeechEnd emitted before SpeechStart")
				}
				sawEnd = true
				endMs = ev.TimestampMs
				if ev.DurationMs != endMs-startMs {
					t.Fatalf("DurationMs = %d, want %d", ev.DurationMs, endMs-startMs)
				}
			}
		}
	}

	feed(false, 5)
	feed(true, 10)
	feed(false, 10)

	if !sawStart {
		t.Fatal("expected SpeechStart")
	}
	if !sawEnd {
		t.Fatal("expected SpeechEnd")
	}
}

func TestDetectorRejectsWrongFrameSize(t *testing.T) {
	d := NewDetector(Config{FrameDuration: Frame30ms})
	_, err := d.ProcessFrame(make([]int16, 100))
	if err == nil {
		t.Fatal("expected error for wrong frame size")
	}
}

func TestDetectorResetRestoresConstructionState(t *testing.T) {
	d := NewDetector(Config{FrameDuration: Frame30ms, SpeechStartFrames: 2, SpeechEndFrames: 2})
	n := Frame30ms.SamplesPerFrame()
	for i := 0; i < 5; i++ {
		d.ProcessFrame(speechFrame(n))
	}
	d.Reset()
	if d.State() != Silence {
		t.Fatalf("state after reset = %v, want Silence", d.State())
	}
	if d.hasDetectedSpeech || d.frameCount != 0 {
		t.Fatal("reset did not clear internal counters")
	}
}

func TestDetectorDisabledStillAdvancesFrameCount(t *testing.T) {
	d := NewDetector(Config{FrameDuration: Frame30ms})
	d.Disabled.Store(true)
	n := Frame30ms.SamplesPerFrame()
	ev, err := d.ProcessFrame(speechFrame(n))
	if err != nil {
		t.Fatalf("ProcessFrame: %v", err)
	}
	if ev != nil {
		t.Fatal("expected no event while disabled")
	}
	if d.frameCount != 1 {
		t.Fatalf("frameCount = %d, want 1", d.frameCount)
	}
}

func TestCheckAutoStopRequiresPriorSpeechEnd(t *testing.T) {
	d := NewDetector(Config{FrameDuration: Frame30ms, SpeechStartFrames: 1, SpeechEndFrames: 1, AutoStopSilenceMs: 60})
	n := Frame30ms.SamplesPerFrame()

	if ev := d.CheckAutoStop(); ev != nil {
		t.Fatal("expected no auto-stop before any speech")
	}

	d.ProcessFrame(speechFrame(n))
	d.ProcessFrame(speechFrame(n))
	d.ProcessFrame(silenceFrame(n))

	for i := 0; i < 5; i++ {
		d.ProcessFrame(silenceFrame(n))
	}
	if ev := d.CheckAutoStop(); ev == nil {
		t.Fatal("expected auto-stop after sufficient silence")
	}
}
