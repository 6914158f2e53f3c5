package keyboard

import "testing"

func TestFormatChordStandaloneRightModifier(t *testing.T) {
	accel, valid := FormatChord([]string{string(ShiftRight)})
	if !valid || accel != "ShiftRight" {
		t.Fatalf("FormatChord() = (%q, %v), want (\"ShiftRight\", true)", accel, valid)
	}
}

func TestFormatChordFullCombo(t *testing.T) {
	accel, valid := FormatChord([]string{string(ControlLeft), string(ShiftLeft), "Space"})
	if !valid {
		t.Fatalf("expected valid chord")
	}
	if accel != "CommandOrControl+Shift+Space" {
		t.Errorf("FormatChord() = %q", accel)
	}
}

func TestFormatChordNoMainKeyInvalid(t *testing.T) {
	_, valid := FormatChord([]string{string(ControlLeft), string(AltLeft)})
	if valid {
		t.Error("expected invalid chord with no main key and no standalone right modifier")
	}
}

func TestShortcutSpecAccelerator(t *testing.T) {
	spec := ShortcutSpec{Modifiers: []string{"CommandOrControl", "Shift"}, MainKey: "Space"}
	if got := spec.Accelerator(); got != "CommandOrControl+Shift+Space" {
		t.Errorf("Accelerator() = %q", got)
	}

	standalone := ShortcutSpec{StandaloneModifier: ShiftRight}
	if got := standalone.Accelerator(); got != "ShiftRight" {
		t.Errorf("Accelerator() = %q", got)
	}
}
