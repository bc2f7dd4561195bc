package ui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// column describes one table column. A zero width makes the column take the
// remaining space.
type column struct {
	title string
	width int
	right bool
}

// cell is one rendered table cell; style is applied unless the row is
// selected.
type cell struct {
	text  string
	style *lipgloss.Style
}

// renderTable lays out rows in fixed-width columns and scrolls so the
// selected row stays visible. selected < 0 disables highlighting.
func (m Model) renderTable(cols []column, rows [][]cell, selected, width, height int) string {
	styles := m.theme.Styles()
	widths := columnWidths(cols, width)

	var b strings.Builder
	header := make([]string, len(cols))
	for i, c := range cols {
		header[i] = fit(c.title, widths[i], c.right)
	}
	b.WriteString(styles.Heading.Render(strings.Join(header, " ")))

	visible := max(height-1, 0)
	if len(rows) == 0 {
		if visible > 0 {
			b.WriteString("\n")
			b.WriteString(styles.MutedText.Render("No records"))
		}
		return b.String()
	}

	start := 0
	if selected >= visible && visible > 0 {
		start = selected - visible + 1
	}
	end := min(start+visible, len(rows))

	for i := start; i < end; i++ {
		b.WriteString("\n")
		texts := make([]string, len(cols))
		for j := range cols {
			text := ""
			if j < len(rows[i]) {
				text = rows[i][j].text
			}
			texts[j] = fit(text, widths[j], cols[j].right)
		}
		if i == selected {
			b.WriteString(styles.Selected.Width(width).Render(strings.Join(texts, " ")))
			continue
		}
		for j, text := range texts {
			if j > 0 {
				b.WriteString(" ")
			}
			style := styles.Text
			if j < len(rows[i]) && rows[i][j].style != nil {
				style = *rows[i][j].style
			}
			b.WriteString(style.Render(text))
		}
	}
	return b.String()
}

func columnWidths(cols []column, total int) []int {
	widths := make([]int, len(cols))
	fixed, flex := 0, 0
	for i, c := range cols {
		widths[i] = c.width
		fixed += c.width
		if c.width == 0 {
			flex++
		}
	}
	fixed += len(cols) - 1 // separators
	if flex > 0 {
		share := max((total-fixed)/flex, 8)
		for i := range widths {
			if widths[i] == 0 {
				widths[i] = share
			}
		}
	}
	return widths
}

// renderBox draws a titled, bordered panel of the given outer size.
func (m Model) renderBox(title, content string, width, height int) string {
	styles := m.theme.Styles()
	innerW := max(width-2, 1)
	innerH := max(height-3, 1)
	body := lipgloss.NewStyle().
		Width(innerW).
		Height(innerH).
		MaxHeight(innerH).
		Render(content)
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(m.theme.BorderFocus)).
		Render(body)
	return styles.Heading.Render(" "+title) + "\n" + box
}

// fit truncates or pads s to exactly width columns.
func fit(s string, width int, right bool) string {
	s = truncate(s, width)
	pad := width - lipgloss.Width(s)
	if pad <= 0 {
		return s
	}
	if right {
		return strings.Repeat(" ", pad) + s
	}
	return s + strings.Repeat(" ", pad)
}

// truncate shortens s to max runes with an ellipsis.
func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}

// shortID keeps the first segment of a UUID so tables stay narrow.
func shortID(id string) string {
	if len(id) == 36 && id[8] == '-' {
		return id[:8]
	}
	return truncate(id, 10)
}

// formatMoney renders an amount with space-separated thousands and two
// decimals, e.g. 12 345.50.
func formatMoney(v float64) string {
	neg := v < 0
	cents := int64(math.Round(math.Abs(v) * 100))
	whole, frac := cents/100, cents%100

	digits := fmt.Sprintf("%d", whole)
	var b strings.Builder
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(d)
	}
	out := fmt.Sprintf("%s.%02d", b.String(), frac)
	if neg {
		out = "-" + out
	}
	return out
}
