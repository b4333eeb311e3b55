package ui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the timeline view keybindings.
type KeyMap struct {
	Left     key.Binding
	Right    key.Binding
	Up       key.Binding
	Down     key.Binding
	Carry    key.Binding
	Cancel   key.Binding
	Complete key.Binding
	Past     key.Binding
	Future   key.Binding
	Reload   key.Binding
	Quit     key.Binding
}

func defaultKeyMap() KeyMap {
	return KeyMap{
		Left:     key.NewBinding(key.WithKeys("left", "h")),
		Right:    key.NewBinding(key.WithKeys("right", "l")),
		Up:       key.NewBinding(key.WithKeys("up", "k")),
		Down:     key.NewBinding(key.WithKeys("down", "j")),
		Carry:    key.NewBinding(key.WithKeys(" ", "enter")),
		Cancel:   key.NewBinding(key.WithKeys("esc")),
		Complete: key.NewBinding(key.WithKeys("c")),
		Past:     key.NewBinding(key.WithKeys("[")),
		Future:   key.NewBinding(key.WithKeys("]")),
		Reload:   key.NewBinding(key.WithKeys("r")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c")),
	}
}
