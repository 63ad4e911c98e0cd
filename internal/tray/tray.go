// Package tray provides a system tray menu for airpaint.
package tray

import (
	"sync"

	"github.com/getlantern/systray"
)

// Tray is the menu bar controller: an enable toggle, the last gesture, a
// link to the viewer and quit.
type Tray struct {
	onToggle func(enabled bool)
	onViewer func()
	onQuit   func()
	enabled  bool
	mu       sync.RWMutex

	menuToggle      *systray.MenuItem
	menuLastGesture *systray.MenuItem
}

// New creates a Tray with painting enabled.
func New() *Tray {
	return &Tray{
		enabled: true,
	}
}

// OnToggle sets the callback for the enable toggle.
func (t *Tray) OnToggle(fn func(enabled bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onToggle = fn
}

// OnViewer sets the callback for the "Open Viewer" item.
func (t *Tray) OnViewer(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onViewer = fn
}

// OnQuit sets the callback for the quit item.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run blocks until Quit is called. It must run on the main goroutine.
func (t *Tray) Run() {
	systray.Run(t.onReady, func() {})
}

// Quit stops Run.
func (t *Tray) Quit() {
	systray.Quit()
}

func (t *Tray) onReady() {
	systray.SetTitle("AirPaint")
	systray.SetTooltip("AirPaint gesture drawing")

	t.mu.Lock()
	t.menuToggle = systray.AddMenuItem(toggleTitle(t.enabled), "Toggle gesture painting")
	systray.AddSeparator()
	t.menuLastGesture = systray.AddMenuItem(gestureTitle(""), "Last detected gesture")
	t.menuLastGesture.Disable()
	t.mu.Unlock()
	systray.AddSeparator()

	menuViewer := systray.AddMenuItem("Open Viewer...", "Open the live viewer in a browser")
	systray.AddSeparator()
	menuQuit := systray.AddMenuItem("Quit", "Quit AirPaint")

	go func() {
		for {
			select {
			case <-t.menuToggle.ClickedCh:
				t.toggle()
			case <-menuViewer.ClickedCh:
				t.call(t.onViewerFunc())
			case <-menuQuit.ClickedCh:
				t.call(t.onQuitFunc())
				systray.Quit()
				return
			}
		}
	}()
}

// toggle flips the enabled state and reports it to the callback outside the lock.
func (t *Tray) toggle() {
	t.mu.Lock()
	t.enabled = !t.enabled
	enabled := t.enabled
	if t.menuToggle != nil {
		t.menuToggle.SetTitle(toggleTitle(enabled))
	}
	callback := t.onToggle
	t.mu.Unlock()

	if callback != nil {
		callback(enabled)
	}
}

func (t *Tray) onViewerFunc() func() {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.onViewer
}

func (t *Tray) onQuitFunc() func() {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.onQuit
}

func (t *Tray) call(fn func()) {
	if fn != nil {
		fn()
	}
}

// SetLastGesture shows name as the last gesture. Safe before Run.
func (t *Tray) SetLastGesture(name string) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.menuLastGesture != nil {
		t.menuLastGesture.SetTitle(gestureTitle(name))
	}
}

// IsEnabled returns the current enabled state.
func (t *Tray) IsEnabled() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.enabled
}

func toggleTitle(enabled bool) string {
	if enabled {
		return "● Painting"
	}
	return "○ Paused"
}

func gestureTitle(name string) string {
	if name == "" || name == "none" {
		return "Last: none"
	}
	return "Last: " + name
}
