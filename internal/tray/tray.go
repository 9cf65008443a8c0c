// Package tray renders the menubar UI: an enable/disable toggle, read-only
// status lines for the last confirmed gesture and motion action, and entries
// for settings and quit.
package tray

import (
	"sync"

	"github.com/getlantern/systray"
)

const (
	titleEnabled  = "● Enabled"
	titleDisabled = "○ Disabled"
)

// Tray owns the menubar menu and fans clicks out to registered callbacks.
type Tray struct {
	mu      sync.RWMutex
	enabled bool

	onToggle   func(enabled bool)
	onSettings func()
	onQuit     func()

	toggleItem  *systray.MenuItem
	gestureItem *systray.MenuItem
	actionItem  *systray.MenuItem
}

// New returns a Tray that starts in the enabled state.
func New() *Tray {
	return &Tray{enabled: true}
}

// OnToggle registers the callback invoked when recognition is toggled.
func (t *Tray) OnToggle(fn func(enabled bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onToggle = fn
}

// OnSettings registers the callback invoked from the settings entry.
func (t *Tray) OnSettings(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onSettings = fn
}

// OnQuit registers the callback invoked before the tray exits.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run hands control to systray and blocks until Quit.
func (t *Tray) Run() {
	systray.Run(t.onReady, func() {})
}

func (t *Tray) onReady() {
	systray.SetTitle("Mudra")
	systray.SetTooltip("Mudra Gesture Control")

	t.toggleItem = systray.AddMenuItem(titleEnabled, "Toggle gesture recognition")
	systray.AddSeparator()

	t.gestureItem = newStatusItem("Gesture", "Last confirmed gesture")
	t.actionItem = newStatusItem("Action", "Last confirmed motion action")
	systray.AddSeparator()

	settingsItem := systray.AddMenuItem("Open Settings...", "Open settings in browser")
	systray.AddSeparator()
	quitItem := systray.AddMenuItem("Quit", "Quit Mudra")

	go t.handleClicks(settingsItem, quitItem)
}

// newStatusItem adds a non-clickable display row to the menu.
func newStatusItem(prefix, tooltip string) *systray.MenuItem {
	item := systray.AddMenuItem(prefix+": none", tooltip)
	item.Disable()
	return item
}

func (t *Tray) handleClicks(settingsItem, quitItem *systray.MenuItem) {
	for {
		select {
		case <-t.toggleItem.ClickedCh:
			t.toggle()
		case <-settingsItem.ClickedCh:
			if fn := t.callback(&t.onSettings); fn != nil {
				fn()
			}
		case <-quitItem.ClickedCh:
			if fn := t.callback(&t.onQuit); fn != nil {
				fn()
			}
			systray.Quit()
			return
		}
	}
}

// callback snapshots a registered callback under the read lock.
func (t *Tray) callback(fn *func()) func() {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return *fn
}

func (t *Tray) toggle() {
	t.mu.Lock()
	t.enabled = !t.enabled
	enabled := t.enabled
	if enabled {
		t.toggleItem.SetTitle(titleEnabled)
	} else {
		t.toggleItem.SetTitle(titleDisabled)
	}
	fn := t.onToggle
	t.mu.Unlock()

	// Invoke outside the lock so the callback can query the tray
	if fn != nil {
		fn(enabled)
	}
}

// SetLastGesture updates the gesture status row.
func (t *Tray) SetLastGesture(name string) {
	t.setStatus(t.gestureItem, "Gesture", name)
}

// SetLastAction updates the motion action status row.
func (t *Tray) SetLastAction(name string) {
	t.setStatus(t.actionItem, "Action", name)
}

func (t *Tray) setStatus(item *systray.MenuItem, prefix, name string) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if item == nil {
		return
	}
	if name == "" {
		name = "none"
	}
	item.SetTitle(prefix + ": " + name)
}

// IsEnabled reports whether recognition is currently enabled.
func (t *Tray) IsEnabled() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.enabled
}
