package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/stockroom/internal/shop"
	"github.com/five82/stockroom/internal/stats"
)

// movementLines is how many recent stock movements show under the table.
const movementLines = 5

var inventoryColumns = []column{
	{title: "Product", width: 0},
	{title: "Article", width: 14},
	{title: "Stock", width: 6, right: true},
	{title: "State", width: 12},
	{title: "WB", width: 3},
	{title: "Price", width: 12, right: true},
}

func (m Model) renderInventory() string {
	styles := m.theme.Styles()
	height := m.contentHeight()
	innerW := max(m.width-2, 20)
	tableH := max(height-3-movementLines-2, 2)

	threshold := stats.DefaultLowStockThreshold
	if m.config != nil && m.config.Inventory.LowStockThreshold > 0 {
		threshold = m.config.Inventory.LowStockThreshold
	}

	rows := make([][]cell, 0, len(m.data.products.Items))
	for _, p := range m.data.products.Items {
		label, style := stockState(styles, p, threshold)
		mapped := ""
		if stats.IsMapped(p) {
			mapped = "✓"
		}
		rows = append(rows, []cell{
			{text: p.Title},
			{text: p.ArticleNumber},
			{text: fmt.Sprintf("%d", p.StockQuantity)},
			{text: label, style: &style},
			{text: mapped},
			{text: formatMoney(p.Price)},
		})
	}

	table := m.renderTable(inventoryColumns, rows, m.selected[ViewInventory], innerW, tableH)
	table = lipgloss.NewStyle().Height(tableH).MaxHeight(tableH).Render(table)
	body := table + "\n" + m.renderMovements(innerW)

	return m.renderBox(m.listTitle("Inventory", len(rows), m.data.products.ConsecutiveFailures), body, m.width, height)
}

func stockState(styles Styles, p shop.Product, threshold int) (string, lipgloss.Style) {
	switch {
	case p.StockQuantity <= 0:
		return "out of stock", styles.DangerText
	case p.StockQuantity <= threshold:
		return "low", styles.WarningText
	default:
		return "in stock", styles.SuccessText
	}
}

func (m Model) renderMovements(width int) string {
	styles := m.theme.Styles()
	var b strings.Builder
	b.WriteString(styles.FaintText.Render(strings.Repeat("─", width)))
	b.WriteString("\n")
	b.WriteString(styles.Heading.Render("Recent movements"))

	items := m.data.movements.Items
	if len(items) == 0 {
		b.WriteString("\n")
		b.WriteString(styles.MutedText.Render("No stock movements"))
		return b.String()
	}
	for i, h := range items {
		if i >= movementLines {
			break
		}
		change := fmt.Sprintf("%+d", h.Change)
		changeStyle := styles.SuccessText
		if h.Change < 0 {
			changeStyle = styles.DangerText
		}
		title := h.ProductTitle
		if title == "" {
			title = shortID(h.ProductID)
		}
		b.WriteString("\n")
		b.WriteString(styles.MutedText.Render(formatCreated(h.CreatedAt) + "  "))
		b.WriteString(changeStyle.Render(fit(change, 5, true)))
		b.WriteString(styles.Text.Render(fmt.Sprintf("  → %-4d ", h.QuantityAfter)))
		b.WriteString(styles.MutedText.Render(truncate(title+" · "+h.Reason, max(width-36, 10))))
	}
	return b.String()
}
