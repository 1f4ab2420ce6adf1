package viz

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/san-kum/pedaltrainer/internal/input"
)

type keyMap struct {
	Quit      key.Binding
	ForceQuit key.Binding
	Toggle    key.Binding
	TolUp     key.Binding
	TolDown   key.Binding
	HoldUp    key.Binding
	HoldDown  key.Binding
	Theme     key.Binding
	Help      key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Quit:      key.NewBinding(key.WithKeys("esc", "q"), key.WithHelp("esc/q", "quit")),
		ForceQuit: key.NewBinding(key.WithKeys("ctrl+c")),
		Toggle:    key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "switch pedal")),
		TolUp:     key.NewBinding(key.WithKeys("left"), key.WithHelp("←", "wider band")),
		TolDown:   key.NewBinding(key.WithKeys("right"), key.WithHelp("→", "narrower band")),
		HoldUp:    key.NewBinding(key.WithKeys("up"), key.WithHelp("↑", "longer hold")),
		HoldDown:  key.NewBinding(key.WithKeys("down"), key.WithHelp("↓", "shorter hold")),
		Theme:     key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "theme")),
		Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.TolUp, k.HoldUp, k.Quit, k.Help}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Toggle, k.Quit},
		{k.TolUp, k.TolDown},
		{k.HoldUp, k.HoldDown},
		{k.Theme, k.Help},
	}
}

// logicalKey translates a terminal key press into a trainer key.
func (k keyMap) logicalKey(msg tea.KeyMsg) (input.Key, bool) {
	switch {
	case key.Matches(msg, k.Quit):
		return input.KeyEscape, true
	case key.Matches(msg, k.Toggle):
		return input.KeyTab, true
	case key.Matches(msg, k.TolUp):
		return input.KeyLeft, true
	case key.Matches(msg, k.TolDown):
		return input.KeyRight, true
	case key.Matches(msg, k.HoldUp):
		return input.KeyUp, true
	case key.Matches(msg, k.HoldDown):
		return input.KeyDown, true
	}
	return 0, false
}
