package pipeline

import (
	"errors"
	"testing"

	"github.com/scribekey/scribekey/pkg/types"
)

func newIdleController() *HandsfreeController {
	return &HandsfreeController{state: types.HandsfreeIdle}
}

func TestHandsfreeCancelIsNoOpWhenIdle(t *testing.T) {
	h := newIdleController()
	h.Cancel()
	if h.State() != types.HandsfreeIdle {
		t.Errorf("Cancel from Idle should be a no-op, got state %v", h.State())
	}
}

func TestHandsfreeOutputAcknowledgedTransitionsToIdle(t *testing.T) {
	h := newIdleController()
	h.state = types.HandsfreeOutput
	h.OutputAcknowledged()
	if h.State() != types.HandsfreeIdle {
		t.Errorf("OutputAcknowledged should move Output->Idle, got %v", h.State())
	}
}

func TestHandsfreeOutputAcknowledgedNoOpFromOtherStates(t *testing.T) {
	for _, s := range []types.HandsfreeState{types.HandsfreeIdle, types.HandsfreeListening, types.HandsfreeRecording, types.HandsfreeProcessing} {
		h := newIdleController()
		h.state = s
		h.OutputAcknowledged()
		if h.State() != s {
			t.Errorf("OutputAcknowledged from %v should be a no-op, got %v", s, h.State())
		}
	}
}

func TestHandsfreeCancellablePredicateMatchesStateMachine(t *testing.T) {
	cancellable := map[types.HandsfreeState]bool{
		types.HandsfreeIdle:       false,
		types.HandsfreeListening:  true,
		types.HandsfreeRecording:  true,
		types.HandsfreeProcessing: true,
		types.HandsfreeOutput:     false,
	}
	for s, want := range cancellable {
		if got := s.Cancellable(); got != want {
			t.Errorf("%v.Cancellable() = %v, want %v", s, got, want)
		}
	}
}

func TestHandsfreeOnTranscriptionCompleteNoOpUnlessProcessing(t *testing.T) {
	h := newIdleController()
	h.onTranscriptionComplete(types.Transcript{Text: "hello"})
	if h.State() != types.HandsfreeIdle {
		t.Errorf("expected no-op from Idle, got %v", h.State())
	}

	h.state = types.HandsfreeProcessing
	h.onTranscriptionComplete(types.Transcript{Text: "hello"})
	if h.State() != types.HandsfreeOutput {
		t.Errorf("expected Processing->Output, got %v", h.State())
	}
	if h.LastTranscript().Text != "hello" {
		t.Errorf("LastTranscript = %q", h.LastTranscript().Text)
	}
}

func TestHandsfreeOnTranscriptionFailedReturnsToIdle(t *testing.T) {
	h := newIdleController()
	h.state = types.HandsfreeProcessing
	h.onTranscriptionFailed(errors.New("boom"))
	if h.State() != types.HandsfreeIdle {
		t.Errorf("expected Processing->Idle on failure, got %v", h.State())
	}
}
