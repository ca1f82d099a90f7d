package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/usbdeck/usbdeck/internal/device"
	"github.com/usbdeck/usbdeck/internal/panel"
)

// awaitRefresh turns a refresh completion channel into a message. A nil
// channel means the request was dropped, so there is nothing to wait for.
func awaitRefresh(ch <-chan panel.RefreshResult) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		return refreshDoneMsg{res: <-ch}
	}
}

func awaitEject(ch <-chan panel.EjectResult) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		return ejectDoneMsg{res: <-ch}
	}
}

// watchDevices waits for the next watcher event. The command re-arms itself
// from the update loop after each message.
func watchDevices(w *device.Watcher) tea.Cmd {
	if w == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-w.Events(); !ok {
			return watcherStoppedMsg{}
		}
		return deviceChangedMsg{}
	}
}

func debounce(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return autoRefreshMsg{}
	})
}
