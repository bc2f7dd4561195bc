package stats

import (
	"math"
	"testing"

	"github.com/five82/stockroom/internal/shop"
)

func activeProducts(n int) []shop.Product {
	out := make([]shop.Product, 0, n)
	for range n {
		out = append(out, shop.Product{Status: shop.ProductActive})
	}
	return out
}

func TestMarketplace_SplitsAndCountsAliases(t *testing.T) {
	orders := []shop.Order{{Source: "wb"}, {Source: "Ozon"}, {Source: "WB"}}

	got := Marketplace(activeProducts(10), orders, DefaultMarketplaceConfig())

	if got.WB.Products != 6 || got.Ozon.Products != 4 {
		t.Fatalf("products split = %d/%d, want 6/4", got.WB.Products, got.Ozon.Products)
	}
	if got.WB.Orders != 2 || got.Ozon.Orders != 1 {
		t.Fatalf("orders = %d/%d, want 2/1", got.WB.Orders, got.Ozon.Orders)
	}
}

func TestMarketplace_RoundsEachBucketDown(t *testing.T) {
	got := Marketplace(activeProducts(7), nil, DefaultMarketplaceConfig())
	// 7*0.6 = 4.2, 7*0.4 = 2.8
	if got.WB.Products != 4 || got.Ozon.Products != 2 {
		t.Fatalf("split = %d/%d, want 4/2", got.WB.Products, got.Ozon.Products)
	}
}

func TestMarketplace_IgnoresInactiveProductsAndUnknownSources(t *testing.T) {
	products := append(activeProducts(5),
		shop.Product{Status: shop.ProductDraft},
		shop.Product{Status: shop.ProductArchived},
		shop.Product{Status: " Active "},
	)
	orders := []shop.Order{
		{Source: " Wildberries "},
		{Source: "ВБ"},
		{Source: "озон"},
		{Source: "site"},
		{Source: ""},
	}

	got := Marketplace(products, orders, MarketplaceConfig{WBSharePercent: 50})
	if got.ActiveProducts != 6 {
		t.Fatalf("ActiveProducts = %d, want 6", got.ActiveProducts)
	}
	if got.WB.Products != 3 || got.Ozon.Products != 3 {
		t.Fatalf("split = %d/%d, want 3/3", got.WB.Products, got.Ozon.Products)
	}
	if got.WB.Orders != 2 || got.Ozon.Orders != 1 || got.OtherOrders != 2 {
		t.Fatalf("orders = wb %d ozon %d other %d, want 2/1/2", got.WB.Orders, got.Ozon.Orders, got.OtherOrders)
	}
}

func TestMarketplace_CustomAliasesOverrideDefaults(t *testing.T) {
	cfg := MarketplaceConfig{
		WBSharePercent: 100,
		WBAliases:      []string{"wild"},
		OzonAliases:    []string{"oz"},
	}
	orders := []shop.Order{{Source: "wb"}, {Source: "WILD"}, {Source: "oz"}}

	got := Marketplace(activeProducts(3), orders, cfg)
	if got.WB.Products != 3 || got.Ozon.Products != 0 {
		t.Fatalf("split = %d/%d, want 3/0", got.WB.Products, got.Ozon.Products)
	}
	if got.WB.Orders != 1 || got.Ozon.Orders != 1 || got.OtherOrders != 1 {
		t.Fatalf("orders = %+v / %+v other %d", got.WB, got.Ozon, got.OtherOrders)
	}
}

func TestMarketplace_IsDeterministic(t *testing.T) {
	products := activeProducts(9)
	orders := []shop.Order{{Source: "wb"}, {Source: "ozon"}}
	cfg := DefaultMarketplaceConfig()

	first := Marketplace(products, orders, cfg)
	second := Marketplace(products, orders, cfg)
	if first != second {
		t.Fatalf("results differ: %+v vs %+v", first, second)
	}
}

func TestInventory_CoverageAndStock(t *testing.T) {
	products := []shop.Product{
		{ArticleNumber: "A-1", StockQuantity: 10},
		{WildberriesURL: "https://www.wildberries.ru/catalog/1/detail.aspx", StockQuantity: 3},
		{StockQuantity: 0},
		{StockQuantity: -2},
	}

	got := Inventory(products, InventoryConfig{})
	if got.Products != 4 || got.MappedSKUs != 2 || got.UnmappedSKUs != 2 {
		t.Fatalf("coverage counts = %+v", got)
	}
	if math.Abs(got.CoveragePercent-50) > 1e-9 {
		t.Fatalf("CoveragePercent = %v, want 50", got.CoveragePercent)
	}
	if got.InStock != 2 || got.OutOfStock != 2 || got.LowStock != 1 {
		t.Fatalf("stock counts = in %d out %d low %d", got.InStock, got.OutOfStock, got.LowStock)
	}
	if got.TotalUnits != 13 {
		t.Fatalf("TotalUnits = %d, want 13", got.TotalUnits)
	}
}

func TestInventory_EmptyHasZeroCoverage(t *testing.T) {
	got := Inventory(nil, InventoryConfig{LowStockThreshold: 1})
	if got.CoveragePercent != 0 || got.Products != 0 {
		t.Fatalf("empty inventory = %+v", got)
	}
}

func TestSales_TotalsAndLeaders(t *testing.T) {
	sales := []shop.SalesData{
		{Period: "2024-01", Revenue: 100, Orders: 4},
		{Period: "2024-02", Revenue: 300, Orders: 6},
		{Period: "2024-03", Revenue: 300, Orders: 10},
	}
	categories := []shop.CategoryData{
		{Category: "Mugs", Revenue: 50},
		{Category: "Shirts", Revenue: 80},
	}

	got := Sales(sales, categories)
	if got.TotalRevenue != 700 || got.TotalOrders != 20 {
		t.Fatalf("totals = %v / %d", got.TotalRevenue, got.TotalOrders)
	}
	if got.AverageOrder != 35 {
		t.Fatalf("AverageOrder = %v, want 35", got.AverageOrder)
	}
	if got.BestPeriod != "2024-02" {
		t.Fatalf("BestPeriod = %q, want first of the tied periods", got.BestPeriod)
	}
	if got.TopCategory != "Shirts" {
		t.Fatalf("TopCategory = %q, want Shirts", got.TopCategory)
	}
}
