package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap holds the dashboard bindings. It satisfies help.KeyMap so the footer
// can list them.
type KeyMap struct {
	Tab       key.Binding
	ShiftTab  key.Binding
	Jump      [tabCount]key.Binding
	Quit      key.Binding
	ForceQuit key.Binding

	CycleSurface key.Binding
	Pause        key.Binding
}

var DefaultKeyMap = KeyMap{
	Tab:      key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next screen")),
	ShiftTab: key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "previous screen")),
	Jump: [tabCount]key.Binding{
		TabMarket:    key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "market")),
		TabPortfolio: key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "portfolio")),
		TabAnalysis:  key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "analysis")),
	},
	Quit:      key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
	ForceQuit: key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit from any screen")),

	CycleSurface: key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "next surface")),
	Pause:        key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "pause ticks")),
}

func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Tab, k.CycleSurface, k.Pause, k.Quit}
}

func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Tab, k.ShiftTab, k.Jump[TabMarket], k.Jump[TabPortfolio], k.Jump[TabAnalysis]},
		{k.CycleSurface, k.Pause},
		{k.Quit, k.ForceQuit},
	}
}
