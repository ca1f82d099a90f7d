package ui

import "github.com/charmbracelet/bubbles/key"

type KeyMap struct {
	Up       key.Binding
	Down     key.Binding
	Open     key.Binding
	Details  key.Binding
	Eject    key.Binding
	Refresh  key.Binding
	Parent   key.Binding
	Overview key.Binding
	Help     key.Binding
	Quit     key.Binding
}

func defaultKeyMap() *KeyMap {
	return &KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Open: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "open"),
		),
		Details: key.NewBinding(
			key.WithKeys("i"),
			key.WithHelp("i", "details"),
		),
		Eject: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "eject"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		Parent: key.NewBinding(
			key.WithKeys("backspace", "h"),
			key.WithHelp("⌫/h", "parent dir"),
		),
		Overview: key.NewBinding(
			key.WithKeys("esc", "o"),
			key.WithHelp("esc/o", "overview"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Open, k.Refresh, k.Eject, k.Help, k.Quit}
}

func (k *KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Open, k.Parent, k.Overview},
		{k.Refresh, k.Details, k.Eject, k.Help, k.Quit},
	}
}
