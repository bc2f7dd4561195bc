package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all keyboard bindings for the application.
type keyMap struct {
	// Global
	Quit       key.Binding
	Help       key.Binding
	CycleTheme key.Binding
	Tab        key.Binding
	ShiftTab   key.Binding
	Refresh    key.Binding
	ClearError key.Binding

	// View switching
	ViewDashboard key.Binding
	ViewOrders    key.Binding
	ViewCustomers key.Binding
	ViewInventory key.Binding
	ViewLogs      key.Binding

	// Navigation
	Up     key.Binding
	Down   key.Binding
	Top    key.Binding
	Bottom key.Binding

	// Orders
	AdvanceOrder key.Binding
	CancelOrder  key.Binding

	// Inventory
	StockUp   key.Binding
	StockDown key.Binding

	// Logs
	ToggleFollow key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "e"),
			key.WithHelp("e", "Quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("h", "?"),
			key.WithHelp("h/?", "Toggle help"),
		),
		CycleTheme: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "Cycle theme"),
		),
		Tab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "Next view"),
		),
		ShiftTab: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "Previous view"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "Refresh now"),
		),
		ClearError: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "Dismiss error"),
		),

		ViewDashboard: key.NewBinding(
			key.WithKeys("1"),
			key.WithHelp("1", "Dashboard"),
		),
		ViewOrders: key.NewBinding(
			key.WithKeys("2"),
			key.WithHelp("2", "Orders"),
		),
		ViewCustomers: key.NewBinding(
			key.WithKeys("3"),
			key.WithHelp("3", "Customers"),
		),
		ViewInventory: key.NewBinding(
			key.WithKeys("4"),
			key.WithHelp("4", "Inventory"),
		),
		ViewLogs: key.NewBinding(
			key.WithKeys("5"),
			key.WithHelp("5", "Logs"),
		),

		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/up", "Move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/down", "Move down"),
		),
		Top: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "Go to top"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "Go to bottom"),
		),

		AdvanceOrder: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "Advance status"),
		),
		CancelOrder: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "Cancel order"),
		),

		StockUp: key.NewBinding(
			key.WithKeys("+", "="),
			key.WithHelp("+", "Stock +1"),
		),
		StockDown: key.NewBinding(
			key.WithKeys("-"),
			key.WithHelp("-", "Stock -1"),
		),

		ToggleFollow: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("Space", "Toggle follow mode"),
		),
	}
}

// helpSections groups bindings for the help overlay.
func (k keyMap) helpSections() []helpSection {
	return []helpSection{
		{title: "Views", bindings: []key.Binding{k.ViewDashboard, k.ViewOrders, k.ViewCustomers, k.ViewInventory, k.ViewLogs, k.Tab}},
		{title: "Navigation", bindings: []key.Binding{k.Up, k.Down, k.Top, k.Bottom}},
		{title: "Orders", bindings: []key.Binding{k.AdvanceOrder, k.CancelOrder}},
		{title: "Inventory", bindings: []key.Binding{k.StockUp, k.StockDown}},
		{title: "Logs", bindings: []key.Binding{k.ToggleFollow}},
		{title: "General", bindings: []key.Binding{k.Refresh, k.ClearError, k.CycleTheme, k.Help, k.Quit}},
	}
}
