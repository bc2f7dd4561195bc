package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"
)

// resizeLogViewport fits the viewport inside the logs box: header, command
// bar, box title and borders take five lines.
func (m *Model) resizeLogViewport() {
	w := max(m.width-2, 1)
	h := max(m.height-5, 1)
	if m.logViewport.Width == 0 && m.logViewport.Height == 0 {
		m.logViewport = viewport.New(w, h)
	} else {
		m.logViewport.Width = w
		m.logViewport.Height = h
	}
	m.updateLogViewport()
}

// updateLogViewport renders the parsed entries into the viewport.
func (m *Model) updateLogViewport() {
	m.logViewport.SetContent(m.renderLogContent())
	if m.logFollow {
		m.logViewport.GotoBottom()
	}
}

func (m Model) renderLogContent() string {
	styles := m.theme.Styles()
	switch {
	case m.config == nil || m.config.LogFile == "":
		return styles.MutedText.Render("Logging to stderr; set log_file to view logs here")
	case m.logErr != nil:
		return styles.DangerText.Render(fmt.Sprintf("read log: %v", m.logErr))
	case len(m.logEntries) == 0:
		return styles.MutedText.Render("No log entries")
	}

	var b strings.Builder
	for i, e := range m.logEntries {
		if i > 0 {
			b.WriteString("\n")
		}
		if e.HasTime {
			b.WriteString(styles.FaintText.Render(e.Time.Format("15:04:05") + " "))
		}
		b.WriteString(styles.LevelStyle(e.Level).Render(e.Message))
	}
	return b.String()
}

func (m Model) renderLogs() string {
	title := "Logs"
	if m.config != nil && m.config.LogFile != "" {
		title = fmt.Sprintf("Logs · %s", truncate(m.config.LogFile, 60))
	}
	if !m.logFollow {
		title += " · paused"
	}
	content := lipgloss.NewStyle().MaxWidth(max(m.width-2, 1)).Render(m.logViewport.View())
	return m.renderBox(title, content, m.width, m.contentHeight())
}
