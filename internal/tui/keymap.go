package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all keyboard shortcuts.
type KeyMap struct {
	// Navigation
	Up      key.Binding
	Down    key.Binding
	NextTab key.Binding
	PrevTab key.Binding
	Open    key.Binding
	Back    key.Binding

	// Filters
	Search      key.Binding
	RaiseRisk   key.Binding
	LowerRisk   key.Binding
	CycleStatus key.Binding
	CycleChan   key.Binding

	// Actions
	Refresh     key.Binding
	Scenario    key.Binding
	EditNote    key.Binding
	MarkOpen    key.Binding
	MarkReview  key.Binding
	MarkApprove key.Binding
	MarkReject  key.Binding

	// Application
	Help key.Binding
	Quit key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("↓/j", "down"),
		),
		NextTab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next list"),
		),
		PrevTab: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "previous list"),
		),
		Open: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "open detail"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search"),
		),
		RaiseRisk: key.NewBinding(
			key.WithKeys("+", "="),
			key.WithHelp("+", "min risk up"),
		),
		LowerRisk: key.NewBinding(
			key.WithKeys("-"),
			key.WithHelp("-", "min risk down"),
		),
		CycleStatus: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "status filter"),
		),
		CycleChan: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "channel filter"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		Scenario: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "run scenario"),
		),
		EditNote: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "edit note"),
		),
		MarkOpen: key.NewBinding(
			key.WithKeys("1"),
			key.WithHelp("1", "open"),
		),
		MarkReview: key.NewBinding(
			key.WithKeys("2"),
			key.WithHelp("2", "under review"),
		),
		MarkApprove: key.NewBinding(
			key.WithKeys("3"),
			key.WithHelp("3", "approve"),
		),
		MarkReject: key.NewBinding(
			key.WithKeys("4"),
			key.WithHelp("4", "reject"),
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

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Open, k.NextTab, k.Search, k.Refresh, k.Scenario, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.NextTab, k.PrevTab, k.Open, k.Back},
		{k.Search, k.RaiseRisk, k.LowerRisk, k.CycleStatus, k.CycleChan},
		{k.Refresh, k.Scenario, k.EditNote},
		{k.MarkOpen, k.MarkReview, k.MarkApprove, k.MarkReject},
		{k.Help, k.Quit},
	}
}
