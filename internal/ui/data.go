package ui

import (
	"cmp"
	"slices"

	"github.com/five82/stockroom/internal/config"
	"github.com/five82/stockroom/internal/entity"
	"github.com/five82/stockroom/internal/notify"
	"github.com/five82/stockroom/internal/shop"
	"github.com/five82/stockroom/internal/state"
	"github.com/five82/stockroom/internal/stats"
)

// snapshot is everything one frame renders, copied out of the hooks.
type snapshot struct {
	customers state.View[shop.Customer]
	orders    state.View[shop.Order]
	products  state.View[shop.Product]
	movements state.View[shop.InventoryHistory]
	history   state.View[shop.OrderStatusHistory]
	loading   bool

	conn      state.ConnectivitySnapshot
	lastError string

	market stats.MarketplaceSnapshot
	stock  stats.InventorySnapshot
	sales  stats.SalesSnapshot
}

func collect(hooks *entity.Set, conn *state.Connectivity, notifier *notify.Notifier, cfg *config.Config) snapshot {
	var snap snapshot
	if conn != nil {
		snap.conn = conn.Snapshot()
	}
	if notifier != nil {
		snap.lastError = notifier.LastError()
	}
	if hooks == nil {
		return snap
	}

	snap.customers = hooks.Customers.View()
	snap.orders = hooks.Orders.View()
	snap.products = hooks.Products.View()
	snap.movements = hooks.Inventory.View()
	snap.history = hooks.StatusHistory.View()
	snap.loading = hooks.Loading()

	// Low stock first so the inventory view leads with what needs attention.
	slices.SortStableFunc(snap.products.Items, func(a, b shop.Product) int {
		if c := cmp.Compare(a.StockQuantity, b.StockQuantity); c != 0 {
			return c
		}
		return cmp.Compare(a.Title, b.Title)
	})

	snap.market = stats.Marketplace(snap.products.Items, snap.orders.Items, marketplaceConfig(cfg))
	snap.stock = stats.Inventory(snap.products.Items, inventoryConfig(cfg))
	snap.sales = hooks.Analytics.Summary()
	return snap
}

func marketplaceConfig(cfg *config.Config) stats.MarketplaceConfig {
	if cfg == nil {
		return stats.DefaultMarketplaceConfig()
	}
	return stats.MarketplaceConfig{
		WBSharePercent: cfg.Marketplace.WBSharePercent,
		WBAliases:      cfg.Marketplace.WBAliases,
		OzonAliases:    cfg.Marketplace.OzonAliases,
	}
}

func inventoryConfig(cfg *config.Config) stats.InventoryConfig {
	if cfg == nil {
		return stats.InventoryConfig{}
	}
	return stats.InventoryConfig{LowStockThreshold: cfg.Inventory.LowStockThreshold}
}

// orderHistory returns the status transitions of one order, newest first.
func (s snapshot) orderHistory(orderID string) []shop.OrderStatusHistory {
	var out []shop.OrderStatusHistory
	for _, h := range s.history.Items {
		if h.OrderID == orderID {
			out = append(out, h)
		}
	}
	return out
}

// statusCounts counts orders per status.
func (s snapshot) statusCounts() map[string]int {
	counts := make(map[string]int)
	for _, o := range s.orders.Items {
		counts[o.Status]++
	}
	return counts
}
