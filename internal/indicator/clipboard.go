package indicator

import (
	"sync"
	"time"

	"github.com/atotto/clipboard"
)

// ClipboardBridge writes text to the OS clipboard and, when configured,
// restores the prior contents after a delay — spec §4.12's "preserve the
// prior clipboard contents" behavior.
type ClipboardBridge struct {
	RestoreAfter time.Duration

	mu         sync.Mutex
	generation uint64
}

// NewClipboardBridge constructs a bridge that restores the prior clipboard
// contents after restoreAfter, or never if restoreAfter <= 0.
func NewClipboardBridge(restoreAfter time.Duration) *ClipboardBridge {
	return &ClipboardBridge{RestoreAfter: restoreAfter}
}

// Write sets the clipboard to text. If RestoreAfter is positive, the
// clipboard's previous contents are captured first and restored on a timer
// unless another Write supersedes it first.
func (c *ClipboardBridge) Write(text string) error {
	var previous string
	var havePrevious bool
	if c.RestoreAfter > 0 {
		if prev, err := clipboard.ReadAll(); err == nil {
			previous = prev
			havePrevious = true
		}
	}

	if err := clipboard.WriteAll(text); err != nil {
		return err
	}

	if havePrevious {
		c.scheduleRestore(previous)
	}
	return nil
}

func (c *ClipboardBridge) scheduleRestore(previous string) {
	c.mu.Lock()
	c.generation++
	gen := c.generation
	c.mu.Unlock()

	go func() {
		time.Sleep(c.RestoreAfter)
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.generation != gen {
			return
		}
		_ = clipboard.WriteAll(previous)
	}()
}

// CancelPendingRestore prevents any scheduled restore from firing, used when
// a later Write has already superseded it.
func (c *ClipboardBridge) CancelPendingRestore() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation++
}
