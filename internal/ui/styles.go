package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/usbdeck/usbdeck/internal/config"
)

type styles struct {
	sidebar         lipgloss.Style
	sidebarItem     lipgloss.Style
	sidebarSelected lipgloss.Style
	title           lipgloss.Style
	status          lipgloss.Style
	errLine         lipgloss.Style
	fileCursor      lipgloss.Style
	fileEntry       lipgloss.Style
	pathBar         lipgloss.Style
}

func initStyles(c config.StyleConfig) styles {
	s := styles{}
	s.sidebar = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderRight(true).
		BorderForeground(lipgloss.Color(c.Sidebar.Border)).
		PaddingRight(1).
		Width(sidebarWidth)
	s.sidebarItem = lipgloss.NewStyle().PaddingLeft(2)
	s.sidebarSelected = lipgloss.NewStyle().
		PaddingLeft(0).
		Foreground(lipgloss.Color(c.Sidebar.Cursor)).
		Bold(true)
	s.title = lipgloss.NewStyle().Bold(true).Underline(true)
	s.status = lipgloss.NewStyle().Foreground(lipgloss.Color(c.StatusFg))
	s.errLine = lipgloss.NewStyle().Foreground(lipgloss.Color(c.ErrorFg))
	s.fileCursor = lipgloss.NewStyle().
		Foreground(lipgloss.Color(c.Sidebar.Cursor)).
		Bold(true)
	s.fileEntry = lipgloss.NewStyle().PaddingLeft(2)
	s.pathBar = lipgloss.NewStyle().Faint(true)
	return s
}
