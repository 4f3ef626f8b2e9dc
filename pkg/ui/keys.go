package ui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up           key.Binding
	Down         key.Binding
	Collapse     key.Binding
	Expand       key.Binding
	Toggle       key.Binding
	ExpandAll    key.Binding
	CollapseAll  key.Binding
	Top          key.Binding
	Bottom       key.Binding
	PageUp       key.Binding
	PageDown     key.Binding
	SwitchFocus  key.Binding
	NextDiff     key.Binding
	PrevDiff     key.Binding
	ToggleSync   key.Binding
	ToggleDecode key.Binding
	Copy         key.Binding
	ScrollDown   key.Binding
	ScrollUp     key.Binding
	Help         key.Binding
	Close        key.Binding
	Quit         key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("↓/j", "down"),
		),
		Collapse: key.NewBinding(
			key.WithKeys("h", "left"),
			key.WithHelp("←/h", "collapse / parent"),
		),
		Expand: key.NewBinding(
			key.WithKeys("l", "right"),
			key.WithHelp("→/l", "expand / child"),
		),
		Toggle: key.NewBinding(
			key.WithKeys("enter", " "),
			key.WithHelp("enter", "toggle"),
		),
		ExpandAll: key.NewBinding(
			key.WithKeys("E"),
			key.WithHelp("E", "expand all"),
		),
		CollapseAll: key.NewBinding(
			key.WithKeys("C"),
			key.WithHelp("C", "collapse all"),
		),
		Top: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "top"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "bottom"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup", "ctrl+b"),
			key.WithHelp("pgup", "page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown", "ctrl+f"),
			key.WithHelp("pgdn", "page down"),
		),
		SwitchFocus: key.NewBinding(
			key.WithKeys("tab", "shift+tab"),
			key.WithHelp("tab", "switch tree"),
		),
		NextDiff: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "next difference"),
		),
		PrevDiff: key.NewBinding(
			key.WithKeys("N"),
			key.WithHelp("N", "previous difference"),
		),
		ToggleSync: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "toggle sync"),
		),
		ToggleDecode: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "toggle base64"),
		),
		Copy: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "copy message"),
		),
		ScrollDown: key.NewBinding(
			key.WithKeys("ctrl+d"),
			key.WithHelp("ctrl+d", "scroll detail down"),
		),
		ScrollUp: key.NewBinding(
			key.WithKeys("ctrl+u"),
			key.WithHelp("ctrl+u", "scroll detail up"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Close: key.NewBinding(
			key.WithKeys("esc", "?", "q"),
			key.WithHelp("esc", "close"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp is shown in the footer
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.SwitchFocus, k.NextDiff, k.ToggleSync, k.ToggleDecode, k.Copy, k.Help, k.Quit}
}

// FullHelp is shown in the help overlay, one column per group
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Collapse, k.Expand, k.Toggle, k.Top, k.Bottom, k.PageUp, k.PageDown},
		{k.ExpandAll, k.CollapseAll, k.SwitchFocus, k.NextDiff, k.PrevDiff},
		{k.ToggleSync, k.ToggleDecode, k.Copy, k.ScrollDown, k.ScrollUp, k.Help, k.Quit},
	}
}
