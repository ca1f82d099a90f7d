package ui

import "github.com/usbdeck/usbdeck/internal/panel"

// refreshDoneMsg carries an enumeration completion into the update loop.
type refreshDoneMsg struct {
	res panel.RefreshResult
}

// ejectDoneMsg carries an eject completion into the update loop.
type ejectDoneMsg struct {
	res panel.EjectResult
}

// deviceChangedMsg signals that the watcher saw the device set change.
type deviceChangedMsg struct{}

// autoRefreshMsg fires when the change debounce window elapsed.
type autoRefreshMsg struct{}

// watcherStoppedMsg signals that the watcher channel closed.
type watcherStoppedMsg struct{}
