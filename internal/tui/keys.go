package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all key bindings
type keyMap struct {
	Up        key.Binding
	Down      key.Binding
	Tab       key.Binding
	Enter     key.Binding
	Compose   key.Binding
	Refresh   key.Binding
	Switch    key.Binding
	Help      key.Binding
	Quit      key.Binding
	ForceQuit key.Binding
	Escape    key.Binding
	Logout    key.Binding
}

var keys = keyMap{
	Up:        key.NewBinding(key.WithKeys("up", "ctrl+k"), key.WithHelp("↑", "up")),
	Down:      key.NewBinding(key.WithKeys("down", "ctrl+j"), key.WithHelp("↓", "down")),
	Tab:       key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next field")),
	Enter:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "submit")),
	Compose:   key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "compose post")),
	Refresh:   key.NewBinding(key.WithKeys("r", "R"), key.WithHelp("r", "refresh feed")),
	Switch:    key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "switch login/signup")),
	Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	Quit:      key.NewBinding(key.WithKeys("ctrl+c", "q"), key.WithHelp("q", "quit")),
	ForceQuit: key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	Escape:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
	Logout:    key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "logout")),
}
