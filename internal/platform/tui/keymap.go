package tui

import (
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap holds the keys the tester itself reacts to. Every key, these
// included, is still routed as an input event.
type KeyMap struct {
	Quit     key.Binding
	ClearLog key.Binding
}

// DefaultKeyMap returns the tester bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
		ClearLog: key.NewBinding(
			key.WithKeys("ctrl+l"),
			key.WithHelp("ctrl+l", "clear log"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Quit, k.ClearLog}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}
