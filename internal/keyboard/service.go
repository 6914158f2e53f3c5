package keyboard

import (
	"log/slog"
	"sync"
	"time"
)

// pollInterval is the KeyboardService's single polling-loop interval, per
// spec §4.6.
const pollInterval = 20 * time.Millisecond

// pressDebounce absorbs key bounce, independent of the per-shortcut cooldown.
const pressDebounce = 50 * time.Millisecond

// cooldown rate-limits repeated triggers of the same shortcut.
const cooldown = 500 * time.Millisecond

// briefTapThreshold is the press-duration boundary between a normal
// press/release cycle and a hands-free-arming brief tap.
const briefTapThreshold = 500 * time.Millisecond

// Mode is the KeyboardService's single atomic mode.
type Mode int

const (
	// ModeIdle: no shortcuts are monitored and no keys are captured. Start
	// still launches the polling goroutine in this mode, and it keeps
	// running until Stop.
	ModeIdle Mode = iota
	// ModeMonitoring: poll for registered standalone-modifier shortcuts.
	ModeMonitoring
	// ModeCapturing: poll for any key combination for settings-UI capture.
	ModeCapturing
)

// KeyStateSource supplies the current set of OS-level pressed key tokens.
// This is the external "OS device-state query" collaborator spec §1 treats
// as out of scope; HotkeySource is one concrete adapter.
type KeyStateSource interface {
	PressedKeys() []string
}

type keyState struct {
	isPressed        bool
	pressTime        time.Time
	lastTrigger      time.Time
	lastPressAttempt time.Time
	handsFreeMode    bool
}

type registeredShortcut struct {
	spec  ShortcutSpec
	state keyState
}

// Events is the set of callbacks the KeyboardService invokes. Any field may
// be nil.
type Events struct {
	OnPressed          func(id ShortcutId)
	OnReleased         func(id ShortcutId)
	OnCaptureUpdate    func(keys []string, accelerator string, valid bool)
	OnCaptureComplete  func(accelerator string, valid bool)
	// ShowIndicatorInstant is called synchronously before a
	// toggle_recording-family shortcut's Pressed event is dispatched, per
	// spec §4.6's latency-reduction rule.
	ShowIndicatorInstant func(id ShortcutId)
	// CopyLastTranscription is invoked inline for the
	// copy_last_transcription shortcut instead of emitting a Pressed
	// event.
	CopyLastTranscription func()
	// IsScreenLocked gates press events per spec §4.6's suppression rule.
	IsScreenLocked func() bool
}

// KeyboardService runs one polling goroutine multiplexing shortcut
// monitoring and key-chord capture. It must not be used from more than one
// goroutine concurrently except via its exported methods, which are safe
// for concurrent use.
type KeyboardService struct {
	source KeyStateSource
	events Events

	mu          sync.Mutex
	mode        Mode
	shortcuts   map[ShortcutId]*registeredShortcut
	previousKeys map[string]bool

	stopCh chan struct{}
	doneCh chan struct{}
}

// New constructs a KeyboardService in ModeIdle.
func New(source KeyStateSource, events Events) *KeyboardService {
	return &KeyboardService{
		source:       source,
		events:       events,
		shortcuts:    make(map[ShortcutId]*registeredShortcut),
		previousKeys: make(map[string]bool),
	}
}

// RegisterShortcut adds spec to the monitored set. Safe to call while the
// service is running; in ModeMonitoring it takes effect on the next poll
// iteration. It does not move a service in ModeIdle to ModeMonitoring.
func (s *KeyboardService) RegisterShortcut(spec ShortcutSpec) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shortcuts[spec.ID] = &registeredShortcut{spec: spec}
}

// UnregisterShortcut removes id from the monitored set.
func (s *KeyboardService) UnregisterShortcut(id ShortcutId) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.shortcuts, id)
}

// Mode returns the current mode.
func (s *KeyboardService) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// Start begins the polling loop in Monitoring mode if any shortcuts are
// registered, Idle otherwise.
func (s *KeyboardService) Start() {
	s.mu.Lock()
	if s.stopCh != nil {
		s.mu.Unlock()
		return
	}
	if len(s.shortcuts) > 0 {
		s.mode = ModeMonitoring
	} else {
		s.mode = ModeIdle
	}
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})
	s.mu.Unlock()

	go s.run()
}

// Stop halts the polling loop and joins it. Safe to call even if not
// running.
func (s *KeyboardService) Stop() {
	s.mu.Lock()
	stopCh := s.stopCh
	doneCh := s.doneCh
	s.mu.Unlock()
	if stopCh == nil {
		return
	}
	close(stopCh)
	<-doneCh

	s.mu.Lock()
	s.stopCh = nil
	s.doneCh = nil
	s.mode = ModeIdle
	s.mu.Unlock()
}

// EnterCapture unregisters OS-level shortcuts (conceptually — the polling
// loop simply stops firing them), clears all per-shortcut key states, and
// flips the mode to Capturing, ensuring the polling thread is running.
func (s *KeyboardService) EnterCapture() {
	s.mu.Lock()
	for _, rs := range s.shortcuts {
		rs.state = keyState{}
	}
	s.mode = ModeCapturing
	needStart := s.stopCh == nil
	if needStart {
		s.stopCh = make(chan struct{})
		s.doneCh = make(chan struct{})
	}
	s.mu.Unlock()

	if needStart {
		go s.run()
	}
}

// ExitCapture flips the mode back to Monitoring (or Idle if nothing is
// registered) and re-registers all shortcuts from a clean slate, seeding
// previous_keys with the currently held keys so an already-held modifier is
// not re-interpreted as a fresh press.
func (s *KeyboardService) ExitCapture() {
	held := s.source.PressedKeys()
	heldSet := make(map[string]bool, len(held))
	for _, k := range held {
		heldSet[k] = true
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.shortcuts) > 0 {
		s.mode = ModeMonitoring
	} else {
		s.mode = ModeIdle
	}
	s.previousKeys = heldSet

	now := time.Now()
	for _, rs := range s.shortcuts {
		if rs.spec.IsStandaloneModifier() && heldSet[string(rs.spec.StandaloneModifier)] {
			rs.state = keyState{isPressed: true, pressTime: now, lastTrigger: now}
		}
	}
}

func (s *KeyboardService) run() {
	defer close(s.doneCh)
	defer func() {
		if r := recover(); r != nil {
			slog.Error("keyboard: polling loop panicked, stopping", "recover", r)
		}
	}()

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.poll()
		}
	}
}

func (s *KeyboardService) poll() {
	held := s.source.PressedKeys()
	heldSet := make(map[string]bool, len(held))
	for _, k := range held {
		heldSet[k] = true
	}

	s.mu.Lock()
	mode := s.mode
	prev := s.previousKeys
	s.previousKeys = heldSet
	s.mu.Unlock()

	switch mode {
	case ModeMonitoring:
		s.pollMonitoring(heldSet)
	case ModeCapturing:
		s.pollCapturing(held, prev)
	}
}

func (s *KeyboardService) pollMonitoring(held map[string]bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for id, rs := range s.shortcuts {
		if !rs.spec.IsStandaloneModifier() {
			continue
		}
		key := string(rs.spec.StandaloneModifier)
		currentlyPressed := held[key]
		s.applyMonitoringTransition(id, rs, currentlyPressed, now)
	}
}

func (s *KeyboardService) applyMonitoringTransition(id ShortcutId, rs *registeredShortcut, currentlyPressed bool, now time.Time) {
	st := &rs.state

	switch {
	case !st.isPressed && currentlyPressed:
		if now.Sub(st.lastPressAttempt) < pressDebounce {
			st.lastPressAttempt = now
			return
		}
		st.lastPressAttempt = now
		if now.Sub(st.lastTrigger) < cooldown {
			return
		}
		if st.handsFreeMode {
			st.handsFreeMode = false
		}
		st.pressTime = now
		st.isPressed = true
		st.lastTrigger = now
		s.dispatchPressed(id)

	case st.isPressed && currentlyPressed:
		// no-op

	case st.isPressed && !currentlyPressed:
		pressDuration := now.Sub(st.pressTime)
		if pressDuration < briefTapThreshold {
			st.handsFreeMode = true
		} else {
			st.handsFreeMode = false
			st.lastTrigger = now
			s.dispatchReleased(id)
		}
		st.isPressed = false
		st.pressTime = time.Time{}

	default:
		// no-op: neither previously nor currently pressed.
	}
}

func (s *KeyboardService) dispatchPressed(id ShortcutId) {
	if s.events.IsScreenLocked != nil && s.events.IsScreenLocked() {
		return
	}
	if id == "copy_last_transcription" {
		if s.events.CopyLastTranscription != nil {
			s.events.CopyLastTranscription()
		}
		return
	}
	if s.events.ShowIndicatorInstant != nil {
		s.events.ShowIndicatorInstant(id)
	}
	if s.events.OnPressed != nil {
		s.events.OnPressed(id)
	}
}

func (s *KeyboardService) dispatchReleased(id ShortcutId) {
	if s.events.OnReleased != nil {
		s.events.OnReleased(id)
	}
}

func (s *KeyboardService) pollCapturing(held []string, prev map[string]bool) {
	changed := len(held) != len(prev)
	if !changed {
		for _, k := range held {
			if !prev[k] {
				changed = true
				break
			}
		}
	}
	if !changed {
		return
	}

	accelerator, valid := FormatChord(held)
	if s.events.OnCaptureUpdate != nil {
		s.events.OnCaptureUpdate(held, accelerator, valid)
	}
	if valid && s.events.OnCaptureComplete != nil {
		s.events.OnCaptureComplete(accelerator, valid)
	}
}
