// Package keyboard implements the single-threaded KeyboardService that
// multiplexes runtime shortcut monitoring and settings-UI key capture, per
// spec §4.6 and the §9 "keyboard race" design note.
package keyboard

import "strings"

// ModifierKey enumerates the eight modifier keys distinguished by side, per
// spec §3.
type ModifierKey string

const (
	ShiftLeft    ModifierKey = "ShiftLeft"
	ShiftRight   ModifierKey = "ShiftRight"
	ControlLeft  ModifierKey = "ControlLeft"
	ControlRight ModifierKey = "ControlRight"
	AltLeft      ModifierKey = "AltLeft"
	AltRight     ModifierKey = "AltRight"
	MetaLeft     ModifierKey = "MetaLeft"
	MetaRight    ModifierKey = "MetaRight"
)

// isRightModifier reports whether k is one of the four right-side
// modifiers, relevant to the "standalone modifier" chord-validity rule.
func isRightModifier(k string) bool {
	switch ModifierKey(k) {
	case ShiftRight, ControlRight, AltRight, MetaRight:
		return true
	default:
		return false
	}
}

// ShortcutId is a stable identifier for a registered shortcut, e.g.
// "toggle_recording" or "copy_last_transcription".
type ShortcutId string

// ShortcutSpec describes one registered accelerator: either a single
// standalone modifier, or a `+`-joined sequence of modifier tokens followed
// by one non-modifier main key.
type ShortcutSpec struct {
	ID ShortcutId

	// StandaloneModifier is set when this shortcut is a single modifier
	// key used on its own (e.g. ShiftRight); Modifiers/MainKey are unused
	// in that case.
	StandaloneModifier ModifierKey

	// Modifiers holds the canonical modifier tokens ("CommandOrControl",
	// "Alt", "Shift") for a chord shortcut.
	Modifiers []string

	// MainKey is the non-modifier key token for a chord shortcut (e.g.
	// "Space", "A", "F5").
	MainKey string
}

// IsStandaloneModifier reports whether this spec targets a single modifier
// key rather than a chord.
func (s ShortcutSpec) IsStandaloneModifier() bool {
	return s.StandaloneModifier != "" && s.MainKey == ""
}

// Accelerator renders the canonical accelerator string for this spec, e.g.
// "CommandOrControl+Shift+Space" or "ShiftRight".
func (s ShortcutSpec) Accelerator() string {
	if s.IsStandaloneModifier() {
		return string(s.StandaloneModifier)
	}
	tokens := append(append([]string(nil), s.Modifiers...), s.MainKey)
	return strings.Join(tokens, "+")
}

// FormatChord builds a canonical accelerator from a set of currently held
// key tokens, per spec §4.6's chord-formatting rule: CommandOrControl (if
// any of LMeta/RMeta/LControl/RControl held) then Alt then Shift, followed
// by the single non-modifier key in canonical spelling. A set of exactly
// one right-side modifier becomes that modifier's own token. It reports
// whether the resulting chord is valid: at least one main key, or exactly
// one right-modifier token.
func FormatChord(held []string) (accelerator string, valid bool) {
	if len(held) == 1 && isRightModifier(held[0]) {
		return held[0], true
	}

	var hasCmdOrCtrl, hasAlt, hasShift bool
	var mainKeys []string

	for _, k := range held {
		switch ModifierKey(k) {
		case MetaLeft, MetaRight, ControlLeft, ControlRight:
			hasCmdOrCtrl = true
		case AltLeft, AltRight:
			hasAlt = true
		case ShiftLeft, ShiftRight:
			hasShift = true
		default:
			mainKeys = append(mainKeys, k)
		}
	}

	var tokens []string
	if hasCmdOrCtrl {
		tokens = append(tokens, "CommandOrControl")
	}
	if hasAlt {
		tokens = append(tokens, "Alt")
	}
	if hasShift {
		tokens = append(tokens, "Shift")
	}

	if len(mainKeys) != 1 {
		return strings.Join(append(tokens, mainKeys...), "+"), false
	}
	tokens = append(tokens, mainKeys[0])
	return strings.Join(tokens, "+"), true
}
