package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/stockroom/internal/notify"
)

// renderHeader renders the status bar: connectivity, last sync, loading
// state, the persistent error and the current toast.
func (m Model) renderHeader() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	compact := m.width < 100

	parts := []string{styles.Logo.Render("stockroom")}

	if m.data.conn.Online {
		parts = append(parts, styles.SuccessText.Render("● ONLINE"))
	} else {
		parts = append(parts, styles.DangerText.Render("● OFFLINE"))
	}

	if m.data.conn.HasSynced {
		parts = append(parts,
			styles.MutedText.Render("Synced")+styles.Text.Render(" ")+
				styles.Text.Render(formatTimestamp(m.now(), m.data.conn.LastSync)))
	} else {
		parts = append(parts, styles.WarningText.Render("Never synced"))
	}

	switch {
	case m.refreshing:
		parts = append(parts, styles.InfoText.Render("Syncing..."))
	case m.data.loading:
		parts = append(parts, styles.InfoText.Render("Loading..."))
	}

	maxErr := 80
	if compact {
		maxErr = 40
	}
	if m.data.lastError != "" {
		parts = append(parts,
			styles.DangerText.Render("ERROR")+styles.Text.Render(" ")+
				styles.DangerText.Render(truncate(m.data.lastError, maxErr)))
	}

	if toast, ok := m.activeToast(); ok && toast.Severity != notify.SeverityError {
		parts = append(parts, m.toastStyle(styles, toast.Severity).Render(truncate(formatToast(toast), maxErr)))
	}

	return styles.Header.Width(m.width).Render(strings.Join(parts, styles.Text.Render("  ")))
}

func (m Model) activeToast() (notify.Message, bool) {
	if m.toastUntil.IsZero() || !m.now().Before(m.toastUntil) {
		return notify.Message{}, false
	}
	return m.toast, true
}

func (m Model) toastStyle(styles Styles, sev notify.Severity) lipgloss.Style {
	switch sev {
	case notify.SeveritySuccess:
		return styles.SuccessText
	case notify.SeverityWarning:
		return styles.WarningText
	case notify.SeverityError:
		return styles.DangerText
	default:
		return styles.InfoText
	}
}

func formatToast(msg notify.Message) string {
	if msg.Body == "" {
		return msg.Title
	}
	return msg.Title + ": " + msg.Body
}

// renderCommandBar renders the command hints bar.
func (m Model) renderCommandBar() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)

	type cmd struct{ key, desc string }
	commands := []cmd{{"1-5", m.currentView.title()}}

	switch m.currentView {
	case ViewOrders:
		commands = append(commands, cmd{"s", "Advance"}, cmd{"c", "Cancel"}, cmd{"j/k", "Navigate"})
	case ViewCustomers:
		commands = append(commands, cmd{"j/k", "Navigate"})
	case ViewInventory:
		commands = append(commands, cmd{"+/-", "Stock"}, cmd{"j/k", "Navigate"})
	case ViewLogs:
		follow := "Pause"
		if !m.logFollow {
			follow = "Follow"
		}
		commands = append(commands, cmd{"Space", follow}, cmd{"j/k", "Scroll"})
	}
	commands = append(commands, cmd{"r", "Refresh"})
	if m.data.lastError != "" {
		commands = append(commands, cmd{"x", "Dismiss"})
	}
	commands = append(commands, cmd{"?", "More"})

	colon := styles.FaintText.Render(":")
	segments := make([]string, 0, len(commands)+1)
	for _, c := range commands {
		segments = append(segments, styles.AccentText.Render(c.key)+colon+styles.MutedText.Render(c.desc))
	}
	segments = append(segments, styles.AccentText.Render("T")+colon+styles.FaintText.Render(m.theme.Name))

	return styles.Header.Width(m.width).Render(strings.Join(segments, styles.Text.Render("  ")))
}

func (v View) title() string {
	switch v {
	case ViewOrders:
		return "Orders"
	case ViewCustomers:
		return "Customers"
	case ViewInventory:
		return "Inventory"
	case ViewLogs:
		return "Logs"
	default:
		return "Dashboard"
	}
}

// formatTimestamp formats t as clock time with a relative hint.
func formatTimestamp(now, t time.Time) string {
	if t.IsZero() {
		return ""
	}
	since := now.Sub(t)
	out := t.Local().Format("15:04:05")
	switch {
	case since < time.Minute:
		out += " (now)"
	case since < time.Hour:
		out += fmt.Sprintf(" (%dm ago)", int(since.Minutes()))
	case since < 24*time.Hour:
		out += fmt.Sprintf(" (%dh ago)", int(since.Hours()))
	default:
		out = t.Local().Format("2006-01-02 15:04")
	}
	return out
}
