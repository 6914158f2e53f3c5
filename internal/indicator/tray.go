package indicator

import (
	"fmt"

	"github.com/getlantern/systray"

	"github.com/scribekey/scribekey/pkg/types"
)

// SystemTray implements Tray over github.com/getlantern/systray. Run must be
// called once from main (it blocks until systray.Quit is called), typically
// in its own goroutine.
type SystemTray struct {
	stateItem      *systray.MenuItem
	lastTransItem  *systray.MenuItem
	quitItem       *systray.MenuItem
	onQuit         func()
}

// NewSystemTray constructs a tray not yet attached to the OS. Call Run to
// start it.
func NewSystemTray(onQuit func()) *SystemTray {
	return &SystemTray{onQuit: onQuit}
}

// Run starts the systray event loop. It blocks until Quit is called; run it
// in its own goroutine.
func (t *SystemTray) Run(iconBytes []byte, tooltip string) {
	systray.Run(func() {
		systray.SetIcon(iconBytes)
		systray.SetTooltip(tooltip)
		t.stateItem = systray.AddMenuItem("Idle", "Current pipeline state")
		t.stateItem.Disable()
		t.lastTransItem = systray.AddMenuItem("No transcription yet", "Last transcription")
		t.lastTransItem.Disable()
		systray.AddSeparator()
		t.quitItem = systray.AddMenuItem("Quit", "Quit scribekey")

		go func() {
			for range t.quitItem.ClickedCh {
				if t.onQuit != nil {
					t.onQuit()
				}
				systray.Quit()
				return
			}
		}()
	}, func() {})
}

// Quit stops the tray event loop.
func (t *SystemTray) Quit() {
	systray.Quit()
}

// SetPipelineState implements Tray.
func (t *SystemTray) SetPipelineState(state types.PipelineState) {
	if t.stateItem == nil {
		return
	}
	t.stateItem.SetTitle(fmt.Sprintf("State: %s", state))
}

// SetLastTranscription implements Tray.
func (t *SystemTray) SetLastTranscription(text string) {
	if t.lastTransItem == nil {
		return
	}
	if len(text) > 60 {
		text = text[:57] + "..."
	}
	t.lastTransItem.SetTitle(fmt.Sprintf("Last: %s", text))
}
