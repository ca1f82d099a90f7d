package ui

import (
	"log/slog"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/usbdeck/usbdeck/internal/panel"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(msg.Width-sidebarWidth-4, msg.Height-4)
		m.viewport.Width = msg.Width - sidebarWidth - 4
		m.viewport.Height = msg.Height - 4
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case refreshDoneMsg:
		return m.handleRefreshDone(msg)

	case ejectDoneMsg:
		if m.area.ApplyEject(msg.res) {
			// The device set changed underneath us; re-enumerate right away.
			return m, awaitRefresh(m.area.RequestRefresh(m.ctx))
		}
		return m, nil

	case deviceChangedMsg:
		slog.Debug("device change detected, debouncing")
		return m, tea.Batch(
			debounce(m.debounceDelay),
			watchDevices(m.watcher),
		)

	case autoRefreshMsg:
		if m.area.Scanning() {
			// Re-arm once the in-flight scan settles.
			m.pendingAuto = true
			return m, nil
		}
		return m, awaitRefresh(m.area.RequestRefresh(m.ctx))

	case watcherStoppedMsg:
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) handleRefreshDone(msg refreshDoneMsg) (tea.Model, tea.Cmd) {
	m.area.ApplyRefresh(msg.res)
	m.syncList(msg.res.Err() == nil)

	// If a device page is still showing, revalidate it against the new
	// mount root and reload its listing.
	if view := m.area.CurrentView(); view.Kind == panel.ViewDevice {
		if page := m.area.ShowDevice(view.Device); page != nil {
			m.loadPage(page)
		}
	}

	if m.pendingAuto && !m.area.Scanning() {
		m.pendingAuto = false
		return m, awaitRefresh(m.area.RequestRefresh(m.ctx))
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// The close affordance stays active no matter what.
	if key.Matches(msg, m.keyMap.Quit) {
		m.area.SetClosing()
		m.quitting = true
		return m, tea.Quit
	}

	// Global interactivity lock while a scan is in flight.
	if m.area.Scanning() {
		return m, nil
	}

	if m.showDetail {
		return m.handleDetailKey(msg)
	}

	if m.area.CurrentView().Kind == panel.ViewDevice {
		return m.handleFilePageKey(msg)
	}
	return m.handleOverviewKey(msg)
}

func (m Model) handleOverviewKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keyMap.Refresh):
		return m, awaitRefresh(m.area.RequestRefresh(m.ctx))

	case key.Matches(msg, m.keyMap.Open):
		if id, ok := m.selectedStorage(); ok {
			if page := m.area.ShowDevice(id); page != nil {
				m.loadPage(page)
			}
		}
		return m, nil

	case key.Matches(msg, m.keyMap.Details):
		if id, ok := m.selectedStorage(); ok {
			if storage, ok := m.area.StorageDetails(id); ok {
				m.showDetail = true
				m.detail = storage
				m.viewport.SetContent(renderDetails(storage))
				m.viewport.GotoTop()
			}
		}
		return m, nil

	case key.Matches(msg, m.keyMap.Eject):
		if id, ok := m.selectedStorage(); ok {
			return m, awaitEject(m.area.RequestEject(m.ctx, id))
		}
		return m, nil

	case key.Matches(msg, m.keyMap.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) handleFilePageKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	page := m.area.CurrentPage()
	if page == nil {
		m.area.ShowOverview()
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keyMap.Up):
		if m.fileCursor > 0 {
			m.fileCursor--
		}

	case key.Matches(msg, m.keyMap.Down):
		if m.fileCursor < len(page.Entries())-1 {
			m.fileCursor++
		}

	case key.Matches(msg, m.keyMap.Open):
		entries := page.Entries()
		if m.fileCursor < len(entries) && entries[m.fileCursor].IsDir {
			if page.Enter(entries[m.fileCursor].Name) {
				m.loadPage(page)
			}
		}

	case key.Matches(msg, m.keyMap.Parent):
		if page.Up() {
			m.loadPage(page)
		}

	case key.Matches(msg, m.keyMap.Overview):
		m.area.ShowOverview()

	case key.Matches(msg, m.keyMap.Refresh):
		return m, awaitRefresh(m.area.RequestRefresh(m.ctx))

	case key.Matches(msg, m.keyMap.Help):
		m.help.ShowAll = !m.help.ShowAll
	}
	return m, nil
}

func (m Model) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keyMap.Overview), key.Matches(msg, m.keyMap.Details):
		m.showDetail = false
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}
