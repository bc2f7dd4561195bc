// Package ui provides the Bubble Tea terminal interface for Stockroom.
//
// # Architecture Overview
//
// Model is the root tea.Model. It never talks to the store directly: every
// tick it copies the cached views out of the entity hooks together with the
// connectivity state and the notifier's last error (see collect), and renders
// that snapshot. Mutations (order status changes, stock adjustments) run as
// tea.Cmds through the hooks, so the affected collection re-syncs afterwards
// whether the write succeeded or not.
//
// # Package Structure
//
//   - app.go: Model, Options, message types, commands and Run
//   - data.go: snapshot collection and derived stats
//   - header.go: status bar (online state, last sync, errors, toasts) and command bar
//   - dashboard.go, orders.go, customers.go, inventory.go, logs.go: views
//   - table.go: table, box and formatting helpers
//   - keys.go, help.go: key bindings and the help overlay
//   - theme.go: color themes and Lipgloss styles
//
// # Views
//
//   - Dashboard: collection freshness, marketplace split, inventory and sales summaries
//   - Orders: order list with the selected order's status history
//   - Customers: customer list
//   - Inventory: products by stock level and recent stock movements
//   - Logs: tail of the configured log file
//
// # Notifications
//
// The notifier's persistent error stays in the header until it auto-clears or
// the user dismisses it with x. Transient messages arrive on Options.Toasts
// and show for their duration.
//
// # Preferences
//
// The theme (T cycles Nightfox, Kanagawa and Slate) and the current view are
// saved to the prefs file on theme change and on quit.
package ui
