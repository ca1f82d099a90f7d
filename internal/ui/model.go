// Package ui renders the panel and translates key presses into intents on
// the state aggregate. Views here are passive: every piece of device or
// navigation state they show comes out of a panel snapshot, and every
// change they want goes through a panel method on the update loop.
package ui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/samber/lo"
	"github.com/usbdeck/usbdeck/internal/browser"
	"github.com/usbdeck/usbdeck/internal/config"
	"github.com/usbdeck/usbdeck/internal/device"
	"github.com/usbdeck/usbdeck/internal/panel"
)

const (
	sidebarWidth  = 24
	defaultWidth  = 96
	defaultHeight = 28
)

type Model struct {
	area    *panel.MainArea
	watcher *device.Watcher
	ctx     context.Context

	keyMap *KeyMap
	styles styles
	cfg    config.UI

	list     list.Model
	viewport viewport.Model
	spinner  spinner.Model
	help     help.Model

	showDetail    bool
	detail        device.StorageInfo
	fileCursor    int
	pendingAuto   bool
	debounceDelay time.Duration

	width    int
	height   int
	quitting bool
}

func New(area *panel.MainArea, watcher *device.Watcher, cfg config.Config) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	delegate := list.NewDefaultDelegate()
	l := list.New(nil, delegate, defaultWidth-sidebarWidth, defaultHeight-4)
	l.Title = "Devices"
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)

	return Model{
		area:          area,
		watcher:       watcher,
		ctx:           context.Background(),
		keyMap:        defaultKeyMap(),
		styles:        initStyles(cfg.UI.Style),
		cfg:           cfg.UI,
		list:          l,
		viewport:      viewport.New(defaultWidth-sidebarWidth, defaultHeight-4),
		spinner:       sp,
		help:          help.New(),
		debounceDelay: config.Duration(cfg.Watcher.Debounce, 600*time.Millisecond),
		width:         defaultWidth,
		height:        defaultHeight,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		awaitRefresh(m.area.RequestRefresh(m.ctx)),
		watchDevices(m.watcher),
		m.spinner.Tick,
	)
}

// syncList rebuilds the overview items from the latest snapshot.
func (m *Model) syncList(resetSelection bool) {
	snap := m.area.Snapshot()
	items := lo.Map(snap.Devices, func(d device.Device, _ int) list.Item {
		return deviceItem{dev: d}
	})
	m.list.SetItems(items)
	if resetSelection {
		m.list.Select(0)
	}
}

// selectedStorage reports the storage device under the overview cursor. The
// selection lives in the list widget, not in the aggregate; it is read on
// demand when an action fires.
func (m *Model) selectedStorage() (device.ID, bool) {
	item, ok := m.list.SelectedItem().(deviceItem)
	if !ok {
		return "", false
	}
	return item.storageID()
}

// loadPage refreshes the listing of the given page and resets the cursor.
// Directory listing is synchronous by design; enumeration is the panel's
// only asynchronous boundary.
func (m *Model) loadPage(page *browser.Page) {
	if page == nil {
		return
	}
	_ = page.Load(m.ctx)
	m.fileCursor = 0
}
