package stats

import (
	"strings"

	"github.com/five82/stockroom/internal/shop"
)

const DefaultLowStockThreshold = 5

// InventoryConfig tunes Inventory.
type InventoryConfig struct {
	// LowStockThreshold marks in-stock products at or below this quantity.
	// Zero uses DefaultLowStockThreshold.
	LowStockThreshold int
}

// InventorySnapshot summarizes stock levels and Wildberries SKU coverage.
type InventorySnapshot struct {
	Products     int
	MappedSKUs   int
	UnmappedSKUs int
	// CoveragePercent is MappedSKUs over Products, 0 when there are none.
	CoveragePercent float64
	InStock         int
	OutOfStock      int
	LowStock        int
	TotalUnits      int
}

// Inventory computes stock counts and how many products carry a Wildberries
// mapping (an article number or a Wildberries URL).
func Inventory(products []shop.Product, cfg InventoryConfig) InventorySnapshot {
	threshold := cfg.LowStockThreshold
	if threshold <= 0 {
		threshold = DefaultLowStockThreshold
	}

	var snap InventorySnapshot
	for _, p := range products {
		snap.Products++
		if IsMapped(p) {
			snap.MappedSKUs++
		}
		qty := max(p.StockQuantity, 0)
		snap.TotalUnits += qty
		if qty == 0 {
			snap.OutOfStock++
			continue
		}
		snap.InStock++
		if qty <= threshold {
			snap.LowStock++
		}
	}
	snap.UnmappedSKUs = snap.Products - snap.MappedSKUs
	if snap.Products > 0 {
		snap.CoveragePercent = float64(snap.MappedSKUs) * 100 / float64(snap.Products)
	}
	return snap
}

// IsMapped reports whether a product is linked to a Wildberries card.
func IsMapped(p shop.Product) bool {
	return strings.TrimSpace(p.ArticleNumber) != "" || strings.TrimSpace(p.WildberriesURL) != ""
}
