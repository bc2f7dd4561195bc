package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/stockroom/internal/shop"
	"github.com/five82/stockroom/internal/state"
)

// freshness summarizes one cached collection for the dashboard.
type freshness struct {
	name     string
	count    int
	loading  bool
	failures int
	updated  time.Time
	err      error
}

func freshnessOf[T any](name string, v state.View[T]) freshness {
	return freshness{
		name:     name,
		count:    len(v.Items),
		loading:  v.Loading,
		failures: v.ConsecutiveFailures,
		updated:  v.UpdatedAt,
		err:      v.LastError,
	}
}

func (m Model) renderDashboard() string {
	height := m.contentHeight()
	innerW := max(m.width-2, 20)

	panels := []string{
		m.panelCollections(),
		m.panelMarketplaces(),
		m.panelInventory(),
		m.panelSales(),
		m.panelOrderStatuses(),
	}

	var body string
	if innerW >= 100 {
		colW := innerW/2 - 1
		left := lipgloss.NewStyle().Width(colW).Render(strings.Join([]string{panels[0], panels[1], panels[4]}, "\n\n"))
		right := lipgloss.NewStyle().Width(colW).Render(strings.Join([]string{panels[2], panels[3]}, "\n\n"))
		body = lipgloss.JoinHorizontal(lipgloss.Top, left, "  ", right)
	} else {
		body = strings.Join(panels, "\n\n")
	}
	return m.renderBox("Dashboard", body, m.width, height)
}

func (m Model) panelCollections() string {
	styles := m.theme.Styles()
	rows := []freshness{
		freshnessOf(shop.CollectionOrders, m.data.orders),
		freshnessOf(shop.CollectionProducts, m.data.products),
		freshnessOf(shop.CollectionCustomers, m.data.customers),
		freshnessOf(shop.CollectionInventoryHistory, m.data.movements),
	}

	var b strings.Builder
	b.WriteString(styles.Heading.Render("Collections"))
	for _, f := range rows {
		b.WriteString("\n")
		b.WriteString(styles.Text.Render(fit(f.name, 18, false)))
		b.WriteString(styles.Text.Render(fit(fmt.Sprintf("%d", f.count), 6, true)))
		b.WriteString("  ")
		switch {
		case f.loading:
			b.WriteString(styles.InfoText.Render("loading"))
		case f.failures > 0:
			b.WriteString(styles.WarningText.Render(fmt.Sprintf("stale (%d failed)", f.failures)))
		default:
			b.WriteString(styles.MutedText.Render(formatTimestamp(m.now(), f.updated)))
		}
	}
	return b.String()
}

func (m Model) panelMarketplaces() string {
	styles := m.theme.Styles()
	mk := m.data.market

	var b strings.Builder
	b.WriteString(styles.Heading.Render("Marketplaces"))
	b.WriteString("\n")
	b.WriteString(kv(styles, "Active products", fmt.Sprintf("%d", mk.ActiveProducts)))
	b.WriteString("\n")
	b.WriteString(kv(styles, "Wildberries", fmt.Sprintf("%d products · %d orders", mk.WB.Products, mk.WB.Orders)))
	b.WriteString("\n")
	b.WriteString(kv(styles, "Ozon", fmt.Sprintf("%d products · %d orders", mk.Ozon.Products, mk.Ozon.Orders)))
	b.WriteString("\n")
	b.WriteString(kv(styles, "Other orders", fmt.Sprintf("%d", mk.OtherOrders)))
	return b.String()
}

func (m Model) panelInventory() string {
	styles := m.theme.Styles()
	inv := m.data.stock

	low := styles.Text
	if inv.LowStock > 0 {
		low = styles.WarningText
	}
	out := styles.Text
	if inv.OutOfStock > 0 {
		out = styles.DangerText
	}

	var b strings.Builder
	b.WriteString(styles.Heading.Render("Inventory"))
	b.WriteString("\n")
	b.WriteString(kv(styles, "Products", fmt.Sprintf("%d", inv.Products)))
	b.WriteString("\n")
	b.WriteString(kv(styles, "Units on hand", fmt.Sprintf("%d", inv.TotalUnits)))
	b.WriteString("\n")
	b.WriteString(styles.MutedText.Render(fit("In stock", 18, false)) + styles.Text.Render(fmt.Sprintf("%d", inv.InStock)))
	b.WriteString("\n")
	b.WriteString(styles.MutedText.Render(fit("Low stock", 18, false)) + low.Render(fmt.Sprintf("%d", inv.LowStock)))
	b.WriteString("\n")
	b.WriteString(styles.MutedText.Render(fit("Out of stock", 18, false)) + out.Render(fmt.Sprintf("%d", inv.OutOfStock)))
	b.WriteString("\n")
	b.WriteString(kv(styles, "WB SKU coverage", fmt.Sprintf("%d/%d (%.0f%%)", inv.MappedSKUs, inv.Products, inv.CoveragePercent)))
	return b.String()
}

func (m Model) panelSales() string {
	styles := m.theme.Styles()
	s := m.data.sales

	var b strings.Builder
	b.WriteString(styles.Heading.Render("Sales"))
	b.WriteString("\n")
	b.WriteString(kv(styles, "Revenue", formatMoney(s.TotalRevenue)))
	b.WriteString("\n")
	b.WriteString(kv(styles, "Orders", fmt.Sprintf("%d", s.TotalOrders)))
	b.WriteString("\n")
	b.WriteString(kv(styles, "Average order", formatMoney(s.AverageOrder)))
	if s.BestPeriod != "" {
		b.WriteString("\n")
		b.WriteString(kv(styles, "Best period", fmt.Sprintf("%s (%s)", s.BestPeriod, formatMoney(s.BestRevenue))))
	}
	if s.TopCategory != "" {
		b.WriteString("\n")
		b.WriteString(kv(styles, "Top category", fmt.Sprintf("%s (%s)", s.TopCategory, formatMoney(s.TopCatRevenue))))
	}
	return b.String()
}

func (m Model) panelOrderStatuses() string {
	styles := m.theme.Styles()
	counts := m.data.statusCounts()

	var b strings.Builder
	b.WriteString(styles.Heading.Render("Orders by status"))
	b.WriteString("\n")
	statuses := []string{shop.StatusNew, shop.StatusProcessing, shop.StatusShipped, shop.StatusDelivered, shop.StatusCancelled}
	badges := make([]string, 0, len(statuses))
	for _, st := range statuses {
		badges = append(badges, styles.StatusStyle(st).Render(fmt.Sprintf("%s %d", st, counts[st])))
	}
	b.WriteString(strings.Join(badges, " "))
	return b.String()
}

func kv(styles Styles, label, value string) string {
	return styles.MutedText.Render(fit(label, 18, false)) + styles.Text.Render(value)
}
