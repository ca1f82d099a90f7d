package ui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/usbdeck/usbdeck/internal/device"
	"github.com/usbdeck/usbdeck/internal/panel"
)

func (m Model) View() string {
	if m.quitting {
		if m.cfg.ExitMessage != "" {
			return m.cfg.ExitMessage + "\n"
		}
		return ""
	}

	snap := m.area.Snapshot()

	var content string
	switch {
	case m.showDetail:
		content = m.viewport.View()
	case snap.View.Kind == panel.ViewDevice:
		content = m.renderFilePage()
	default:
		content = m.list.View()
	}

	body := lipgloss.JoinHorizontal(
		lipgloss.Top,
		m.renderSidebar(snap),
		lipgloss.NewStyle().PaddingLeft(2).Render(content),
	)

	return lipgloss.JoinVertical(lipgloss.Left, body, m.renderStatus(snap), m.help.View(m.keyMap))
}

func (m Model) renderSidebar(snap panel.Snapshot) string {
	var b strings.Builder
	b.WriteString(m.styles.title.Render("usbdeck"))
	b.WriteString("\n\n")

	writeEntry := func(label string, selected bool) {
		if selected {
			b.WriteString(m.styles.sidebarSelected.Render("> " + label))
		} else {
			b.WriteString(m.styles.sidebarItem.Render(label))
		}
		b.WriteString("\n")
	}

	writeEntry("Overview", snap.View.Kind == panel.ViewOverview && !m.showDetail)

	for _, storage := range sortedStorages(snap.Storages) {
		selected := snap.View.Kind == panel.ViewDevice && snap.View.Device == storage.ID
		writeEntry(storage.Label(), selected)
	}

	return m.styles.sidebar.Height(m.height - 3).Render(b.String())
}

func (m Model) renderFilePage() string {
	page := m.area.CurrentPage()
	if page == nil {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.styles.pathBar.Render(page.Dir()))
	b.WriteString("\n\n")

	if err := page.Err(); err != nil {
		b.WriteString(m.styles.errLine.Render(err.Error()))
		b.WriteString("\n")
		return b.String()
	}

	entries := page.Entries()
	if len(entries) == 0 {
		b.WriteString(m.styles.fileEntry.Render("(empty)"))
		b.WriteString("\n")
		return b.String()
	}

	for i, entry := range entries {
		name := entry.Name
		if entry.IsDir {
			name += "/"
		}
		line := fmt.Sprintf("%-40s %8s", name, entrySize(entry.IsDir, entry.Size))
		if i == m.fileCursor {
			b.WriteString(m.styles.fileCursor.Render("> " + line))
		} else {
			b.WriteString(m.styles.fileEntry.Render(line))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderStatus(snap panel.Snapshot) string {
	if snap.Scanning {
		return m.styles.status.Render(m.spinner.View() + " scanning devices...")
	}
	if snap.LastError != "" {
		return m.styles.errLine.Render(snap.LastError)
	}
	return m.styles.status.Render(fmt.Sprintf("%d device(s), %d with storage", len(snap.Devices), len(snap.Storages)))
}

func entrySize(isDir bool, size int64) string {
	if isDir {
		return "-"
	}
	return humanize.Bytes(uint64(size))
}

func sortedStorages(storages map[device.ID]device.StorageInfo) []device.StorageInfo {
	sorted := make([]device.StorageInfo, 0, len(storages))
	for _, s := range storages {
		sorted = append(sorted, s)
	}
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Label() != sorted[j].Label() {
			return sorted[i].Label() < sorted[j].Label()
		}
		return sorted[i].ID < sorted[j].ID
	})
	return sorted
}
