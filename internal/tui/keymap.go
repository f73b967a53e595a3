package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all keyboard shortcuts.
type KeyMap struct {
	Submit        key.Binding
	HistoryPrev   key.Binding
	HistoryNext   key.Binding
	ToggleExplain key.Binding
	ToggleStrict  key.Binding
	FocusTable    key.Binding
	Quit          key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "consultar"),
		),
		HistoryPrev: key.NewBinding(
			key.WithKeys("ctrl+p"),
			key.WithHelp("ctrl+p", "anterior"),
		),
		HistoryNext: key.NewBinding(
			key.WithKeys("ctrl+n"),
			key.WithHelp("ctrl+n", "siguiente"),
		),
		ToggleExplain: key.NewBinding(
			key.WithKeys("ctrl+e"),
			key.WithHelp("ctrl+e", "ver consulta"),
		),
		ToggleStrict: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "entidad estricta"),
		),
		FocusTable: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "tabla/entrada"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "esc"),
			key.WithHelp("esc", "salir"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Submit, k.ToggleExplain, k.ToggleStrict, k.FocusTable, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Submit, k.HistoryPrev, k.HistoryNext},
		{k.ToggleExplain, k.ToggleStrict, k.FocusTable, k.Quit},
	}
}
