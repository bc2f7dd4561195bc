package stats

import (
	"slices"
	"strings"

	"github.com/five82/stockroom/internal/shop"
)

// DefaultWBSharePercent is the share of active products attributed to
// Wildberries. Products carry no marketplace field, so the split is an
// estimate.
const DefaultWBSharePercent = 60

var (
	DefaultWBAliases   = []string{"wb", "wildberries", "вб"}
	DefaultOzonAliases = []string{"ozon", "озон"}
)

// MarketplaceConfig tunes the marketplace estimate. Empty alias lists fall
// back to the defaults.
type MarketplaceConfig struct {
	WBSharePercent int
	WBAliases      []string
	OzonAliases    []string
}

// DefaultMarketplaceConfig returns the stock ratio and alias lists.
func DefaultMarketplaceConfig() MarketplaceConfig {
	return MarketplaceConfig{
		WBSharePercent: DefaultWBSharePercent,
		WBAliases:      slices.Clone(DefaultWBAliases),
		OzonAliases:    slices.Clone(DefaultOzonAliases),
	}
}

// Bucket is one marketplace's share of products and orders.
type Bucket struct {
	Products int
	Orders   int
}

// MarketplaceSnapshot is the result of Marketplace.
type MarketplaceSnapshot struct {
	ActiveProducts int
	WB             Bucket
	Ozon           Bucket
	// OtherOrders counts orders whose source matched neither alias list.
	OtherOrders int
}

// Marketplace splits active products between Wildberries and Ozon by the
// configured ratio, rounding each bucket down, and counts orders per
// marketplace by case-insensitive source alias.
func Marketplace(products []shop.Product, orders []shop.Order, cfg MarketplaceConfig) MarketplaceSnapshot {
	share := min(max(cfg.WBSharePercent, 0), 100)
	wbAliases := aliasSet(cfg.WBAliases, DefaultWBAliases)
	ozonAliases := aliasSet(cfg.OzonAliases, DefaultOzonAliases)

	var snap MarketplaceSnapshot
	for _, p := range products {
		if strings.EqualFold(strings.TrimSpace(p.Status), shop.ProductActive) {
			snap.ActiveProducts++
		}
	}
	snap.WB.Products = snap.ActiveProducts * share / 100
	snap.Ozon.Products = snap.ActiveProducts * (100 - share) / 100

	for _, o := range orders {
		source := normalizeAlias(o.Source)
		switch {
		case wbAliases[source]:
			snap.WB.Orders++
		case ozonAliases[source]:
			snap.Ozon.Orders++
		default:
			snap.OtherOrders++
		}
	}
	return snap
}

func aliasSet(aliases, fallback []string) map[string]bool {
	if len(aliases) == 0 {
		aliases = fallback
	}
	set := make(map[string]bool, len(aliases))
	for _, a := range aliases {
		if a = normalizeAlias(a); a != "" {
			set[a] = true
		}
	}
	return set
}

func normalizeAlias(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
