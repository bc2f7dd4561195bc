package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/stockroom/internal/shop"
)

// orderDetailLines is the height reserved under the orders table for the
// selected order's status history.
const orderDetailLines = 7

var orderColumns = []column{
	{title: "ID", width: 8},
	{title: "Created", width: 16},
	{title: "Customer", width: 0},
	{title: "Source", width: 12},
	{title: "Status", width: 11},
	{title: "Items", width: 5, right: true},
	{title: "Total", width: 12, right: true},
}

func (m Model) renderOrders() string {
	styles := m.theme.Styles()
	height := m.contentHeight()
	innerW := max(m.width-2, 20)
	tableH := max(height-3-orderDetailLines, 2)

	rows := make([][]cell, 0, len(m.data.orders.Items))
	for _, o := range m.data.orders.Items {
		status := m.statusText(styles, o.Status)
		rows = append(rows, []cell{
			{text: shortID(o.ID)},
			{text: formatCreated(o.CreatedAt)},
			{text: o.CustomerName},
			{text: o.Source},
			{text: o.Status, style: &status},
			{text: fmt.Sprintf("%d", o.ItemsCount)},
			{text: formatMoney(o.Total)},
		})
	}

	table := m.renderTable(orderColumns, rows, m.selected[ViewOrders], innerW, tableH)
	table = lipgloss.NewStyle().Height(tableH).MaxHeight(tableH).Render(table)
	body := table + "\n" + m.renderOrderDetail(innerW)

	return m.renderBox(m.listTitle("Orders", len(rows), m.data.orders.ConsecutiveFailures), body, m.width, height)
}

func (m Model) renderOrderDetail(width int) string {
	styles := m.theme.Styles()
	var b strings.Builder
	b.WriteString(styles.FaintText.Render(strings.Repeat("─", width)))
	b.WriteString("\n")

	order, ok := m.selectedOrder()
	if !ok {
		b.WriteString(styles.MutedText.Render("No order selected"))
		return b.String()
	}

	b.WriteString(styles.Text.Bold(true).Render("Order " + order.ID))
	b.WriteString("  ")
	b.WriteString(styles.StatusStyle(order.Status).Render(order.Status))
	if next, ok := shop.NextStatus(order.Status); ok {
		b.WriteString(styles.MutedText.Render("  s → " + next))
	}
	b.WriteString("\n")

	history := m.data.orderHistory(order.ID)
	if len(history) == 0 {
		b.WriteString(styles.MutedText.Render("No status history"))
		return b.String()
	}
	for i, h := range history {
		if i >= orderDetailLines-3 {
			b.WriteString(styles.FaintText.Render(fmt.Sprintf("+%d earlier", len(history)-i)))
			break
		}
		line := fmt.Sprintf("%s  %-10s %s", formatCreated(h.ChangedAt), h.Status, h.Comment)
		b.WriteString(styles.MutedText.Render(truncate(line, width)))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m Model) statusText(styles Styles, status string) lipgloss.Style {
	color := m.theme.StatusColors[strings.ToLower(strings.TrimSpace(status))]
	if color == "" {
		return styles.MutedText
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color))
}

// listTitle renders "Orders (12)" with a stale marker while refreshes fail.
func (m Model) listTitle(name string, count, failures int) string {
	title := fmt.Sprintf("%s (%d)", name, count)
	if failures > 0 {
		title += fmt.Sprintf(" · stale, %d failed refreshes", failures)
	}
	return title
}

// formatCreated shortens a stored timestamp to local "2006-01-02 15:04".
func formatCreated(ts string) string {
	t := shop.ParseTime(ts)
	if t.IsZero() {
		return ts
	}
	return t.Local().Format("2006-01-02 15:04")
}
