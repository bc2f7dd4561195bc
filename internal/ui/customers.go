package ui

import "fmt"

var customerColumns = []column{
	{title: "Name", width: 0},
	{title: "Email", width: 26},
	{title: "Phone", width: 16},
	{title: "City", width: 14},
	{title: "Orders", width: 6, right: true},
	{title: "Spent", width: 12, right: true},
}

func (m Model) renderCustomers() string {
	height := m.contentHeight()
	innerW := max(m.width-2, 20)

	rows := make([][]cell, 0, len(m.data.customers.Items))
	for _, c := range m.data.customers.Items {
		rows = append(rows, []cell{
			{text: c.Name},
			{text: c.Email},
			{text: c.Phone},
			{text: c.City},
			{text: fmt.Sprintf("%d", c.OrdersCount)},
			{text: formatMoney(c.TotalSpent)},
		})
	}

	table := m.renderTable(customerColumns, rows, m.selected[ViewCustomers], innerW, height-3)
	return m.renderBox(m.listTitle("Customers", len(rows), m.data.customers.ConsecutiveFailures), table, m.width, height)
}
