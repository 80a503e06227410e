package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	Increase key.Binding
	Decrease key.Binding
	Hold     key.Binding
	Pause    key.Binding
	Reset    key.Binding
	Restart  key.Binding
	Help     key.Binding
	Quit     key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "select")),
		Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "select")),
		Increase: key.NewBinding(key.WithKeys("right", "l", "+", "="), key.WithHelp("→/+", "increase")),
		Decrease: key.NewBinding(key.WithKeys("left", "h", "-", "_"), key.WithHelp("←/-", "decrease")),
		Hold:     key.NewBinding(key.WithKeys("b"), key.WithHelp("b", "hold ball")),
		Pause:    key.NewBinding(key.WithKeys(" ", "p"), key.WithHelp("space", "pause")),
		Reset:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reset")),
		Restart:  key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "restart with defaults")),
		Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more keys")),
		Quit:     key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Increase, k.Decrease, k.Hold, k.Pause, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Increase, k.Decrease},
		{k.Hold, k.Pause, k.Reset, k.Restart},
		{k.Help, k.Quit},
	}
}
