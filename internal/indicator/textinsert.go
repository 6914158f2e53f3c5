package indicator

import (
	"fmt"
	"time"

	"github.com/atotto/clipboard"
)

// TextInserter delivers recognized text to whatever application currently
// has focus, per spec §4.12.
type TextInserter interface {
	// Insert delivers text to the focused application.
	Insert(text string) error
}

// KeystrokeFunc synthesizes a single keystroke through the OS input API.
// Platform adapters (not part of this module's scope) provide a concrete
// implementation.
type KeystrokeFunc func(r rune) error

// PasteChordFunc synthesizes the platform paste key combination (e.g.
// Cmd+V / Ctrl+V) through the OS input API.
type PasteChordFunc func() error

// TypingInserter synthesizes one keystroke per rune, with a configurable
// delay between keystrokes.
type TypingInserter struct {
	SendKey KeystrokeFunc
	Delay   time.Duration
}

// Insert implements TextInserter by typing text one rune at a time.
func (t TypingInserter) Insert(text string) error {
	for _, r := range text {
		if err := t.SendKey(r); err != nil {
			return fmt.Errorf("indicator: type keystroke: %w", err)
		}
		if t.Delay > 0 {
			time.Sleep(t.Delay)
		}
	}
	return nil
}

// PasteInserter sets the clipboard to text, waits InitialDelay to let focus
// settle, then synthesizes the platform paste chord. Defaults to the 50ms
// initial delay spec §4.12 specifies.
type PasteInserter struct {
	SendPaste    PasteChordFunc
	InitialDelay time.Duration
}

// DefaultPasteInitialDelay is the default delay before the paste chord is
// sent, per spec §4.12.
const DefaultPasteInitialDelay = 50 * time.Millisecond

// Insert implements TextInserter by pasting text via the clipboard.
func (p PasteInserter) Insert(text string) error {
	if err := clipboard.WriteAll(text); err != nil {
		return fmt.Errorf("indicator: set clipboard for paste: %w", err)
	}
	delay := p.InitialDelay
	if delay <= 0 {
		delay = DefaultPasteInitialDelay
	}
	time.Sleep(delay)
	if err := p.SendPaste(); err != nil {
		return fmt.Errorf("indicator: send paste chord: %w", err)
	}
	return nil
}
