package keyboard

import (
	"log/slog"
	"sync"

	"golang.design/x/hotkey"
)

// HotkeySource implements KeyStateSource over golang.design/x/hotkey,
// registering one OS-level hotkey per chord ShortcutSpec and aggregating
// its Keydown/Keyup channel events into a currently-pressed token set.
//
// golang.design/x/hotkey registers whole chords (modifiers + one main key),
// not individual modifier keys in isolation, so it only backs the chord
// shortcuts a settings UI would configure (spec §3's ShortcutSpec case b).
// Standalone-modifier monitoring (case a, e.g. a bare ShiftRight shortcut)
// needs a lower-level OS key-state hook outside hotkey's public API; a
// caller that needs it supplies its own KeyStateSource for that shortcut
// and composes results with MultiSource.
type HotkeySource struct {
	mu       sync.Mutex
	pressed  map[string]bool
	hotkeys  []*hotkey.Hotkey
	tokens   []string
}

// NewHotkeySource registers specs as OS-level hotkeys and returns a source
// tracking their pressed state. Specs that are standalone modifiers are
// skipped (see type doc).
func NewHotkeySource(specs []ShortcutSpec) (*HotkeySource, error) {
	s := &HotkeySource{pressed: make(map[string]bool)}

	for _, spec := range specs {
		if spec.IsStandaloneModifier() {
			continue
		}
		mods, key, ok := chordToHotkey(spec)
		if !ok {
			slog.Warn("keyboard: could not map shortcut to hotkey modifiers/key", "id", spec.ID, "accelerator", spec.Accelerator())
			continue
		}
		hk := hotkey.New(mods, key)
		if err := hk.Register(); err != nil {
			slog.Warn("keyboard: failed to register hotkey", "id", spec.ID, "error", err)
			continue
		}
		token := spec.Accelerator()
		s.hotkeys = append(s.hotkeys, hk)
		s.tokens = append(s.tokens, token)
		go s.watch(hk, token)
	}

	return s, nil
}

func (s *HotkeySource) watch(hk *hotkey.Hotkey, token string) {
	for {
		select {
		case _, ok := <-hk.Keydown():
			if !ok {
				return
			}
			s.mu.Lock()
			s.pressed[token] = true
			s.mu.Unlock()
		case _, ok := <-hk.Keyup():
			if !ok {
				return
			}
			s.mu.Lock()
			s.pressed[token] = false
			s.mu.Unlock()
		}
	}
}

// PressedKeys implements KeyStateSource.
func (s *HotkeySource) PressedKeys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []string
	for token, down := range s.pressed {
		if down {
			out = append(out, token)
		}
	}
	return out
}

// Close unregisters every hotkey this source holds.
func (s *HotkeySource) Close() {
	for _, hk := range s.hotkeys {
		hk.Unregister()
	}
}

func chordToHotkey(spec ShortcutSpec) ([]hotkey.Modifier, hotkey.Key, bool) {
	var mods []hotkey.Modifier
	for _, m := range spec.Modifiers {
		switch m {
		case "CommandOrControl":
			mods = append(mods, hotkey.ModCtrl)
		case "Alt":
			mods = append(mods, hotkey.ModAlt)
		case "Shift":
			mods = append(mods, hotkey.ModShift)
		}
	}
	key, ok := mainKeyToHotkey(spec.MainKey)
	return mods, key, ok
}

func mainKeyToHotkey(token string) (hotkey.Key, bool) {
	if k, ok := mainKeyTable[token]; ok {
		return k, true
	}
	return 0, false
}

var mainKeyTable = map[string]hotkey.Key{
	"A": hotkey.KeyA, "B": hotkey.KeyB, "C": hotkey.KeyC, "D": hotkey.KeyD,
	"E": hotkey.KeyE, "F": hotkey.KeyF, "G": hotkey.KeyG, "H": hotkey.KeyH,
	"I": hotkey.KeyI, "J": hotkey.KeyJ, "K": hotkey.KeyK, "L": hotkey.KeyL,
	"M": hotkey.KeyM, "N": hotkey.KeyN, "O": hotkey.KeyO, "P": hotkey.KeyP,
	"Q": hotkey.KeyQ, "R": hotkey.KeyR, "S": hotkey.KeyS, "T": hotkey.KeyT,
	"U": hotkey.KeyU, "V": hotkey.KeyV, "W": hotkey.KeyW, "X": hotkey.KeyX,
	"Y": hotkey.KeyY, "Z": hotkey.KeyZ,
	"0": hotkey.Key0, "1": hotkey.Key1, "2": hotkey.Key2, "3": hotkey.Key3,
	"4": hotkey.Key4, "5": hotkey.Key5, "6": hotkey.Key6, "7": hotkey.Key7,
	"8": hotkey.Key8, "9": hotkey.Key9,
	"Space": hotkey.KeySpace, "Return": hotkey.KeyReturn, "Tab": hotkey.KeyTab,
	"Up": hotkey.KeyUp, "Down": hotkey.KeyDown, "Left": hotkey.KeyLeft, "Right": hotkey.KeyRight,
	"F1": hotkey.KeyF1, "F2": hotkey.KeyF2, "F3": hotkey.KeyF3, "F4": hotkey.KeyF4,
	"F5": hotkey.KeyF5, "F6": hotkey.KeyF6, "F7": hotkey.KeyF7, "F8": hotkey.KeyF8,
	"F9": hotkey.KeyF9, "F10": hotkey.KeyF10, "F11": hotkey.KeyF11, "F12": hotkey.KeyF12,
}

// MultiSource composes several KeyStateSources into one, unioning their
// pressed-key sets. Used to combine a HotkeySource (chord shortcuts) with a
// platform-specific standalone-modifier source.
type MultiSource struct {
	Sources []KeyStateSource
}

// PressedKeys implements KeyStateSource.
func (m MultiSource) PressedKeys() []string {
	seen := make(map[string]bool)
	var out []string
	for _, src := range m.Sources {
		for _, k := range src.PressedKeys() {
			if !seen[k] {
				seen[k] = true
				out = append(out, k)
			}
		}
	}
	return out
}
