package stats

import "github.com/five82/stockroom/internal/shop"

// SalesSnapshot summarizes the sales and category aggregates.
type SalesSnapshot struct {
	TotalRevenue  float64
	TotalOrders   int
	AverageOrder  float64
	BestPeriod    string
	BestRevenue   float64
	TopCategory   string
	TopCatRevenue float64
}

// Sales totals the aggregates and picks the strongest period and category.
// Ties keep the first entry seen.
func Sales(sales []shop.SalesData, categories []shop.CategoryData) SalesSnapshot {
	var snap SalesSnapshot
	for i, s := range sales {
		snap.TotalRevenue += s.Revenue
		snap.TotalOrders += s.Orders
		if i == 0 || s.Revenue > snap.BestRevenue {
			snap.BestPeriod = s.Period
			snap.BestRevenue = s.Revenue
		}
	}
	if snap.TotalOrders > 0 {
		snap.AverageOrder = snap.TotalRevenue / float64(snap.TotalOrders)
	}
	for i, c := range categories {
		if i == 0 || c.Revenue > snap.TopCatRevenue {
			snap.TopCategory = c.Category
			snap.TopCatRevenue = c.Revenue
		}
	}
	return snap
}
