package entity

import (
	"context"
	"sync"
	"time"

	"github.com/five82/stockroom/internal/shop"
	"github.com/five82/stockroom/internal/stats"
	"github.com/five82/stockroom/internal/store"
)

func NewCustomers(client store.Client, opts Options) *Hook[shop.Customer] {
	return New[shop.Customer](client, shop.CollectionCustomers, opts)
}

// NewOrders lists orders newest first.
func NewOrders(client store.Client, opts Options) *Hook[shop.Order] {
	opts.Query = store.Query{OrderBy: "created_at", Direction: store.Descending}
	return New[shop.Order](client, shop.CollectionOrders, opts)
}

func NewProducts(client store.Client, opts Options) *Hook[shop.Product] {
	return New[shop.Product](client, shop.CollectionProducts, opts)
}

// NewInventoryHistory lists stock movements newest first.
func NewInventoryHistory(client store.Client, opts Options) *Hook[shop.InventoryHistory] {
	opts.Query = store.Query{OrderBy: "created_at", Direction: store.Descending}
	return New[shop.InventoryHistory](client, shop.CollectionInventoryHistory, opts)
}

// NewOrderStatusHistory lists status transitions newest first, limited to one
// order when orderID is set.
func NewOrderStatusHistory(client store.Client, orderID string, opts Options) *Hook[shop.OrderStatusHistory] {
	opts.Query = store.Query{OrderBy: "changed_at", Direction: store.Descending}
	if orderID != "" {
		opts.Query.Where = map[string]string{"order_id": orderID}
	}
	return New[shop.OrderStatusHistory](client, shop.CollectionOrderStatusHistory, opts)
}

// Analytics pairs the sales and category aggregates.
type Analytics struct {
	Sales      *Hook[shop.SalesData]
	Categories *Hook[shop.CategoryData]
}

// NewAnalytics lists sales periods in ascending order.
func NewAnalytics(client store.Client, opts Options) *Analytics {
	salesOpts := opts
	salesOpts.Query = store.Query{OrderBy: "period", Direction: store.Ascending}
	catOpts := opts
	catOpts.Query = store.Query{}
	return &Analytics{
		Sales:      New[shop.SalesData](client, shop.CollectionSalesData, salesOpts),
		Categories: New[shop.CategoryData](client, shop.CollectionCategoryData, catOpts),
	}
}

func (a *Analytics) Activate(ctx context.Context) {
	a.Sales.Activate(ctx)
	a.Categories.Activate(ctx)
}

func (a *Analytics) Refresh(ctx context.Context) {
	a.Sales.Refresh(ctx)
	a.Categories.Refresh(ctx)
}

// Loading reports whether either aggregate has not settled yet.
func (a *Analytics) Loading() bool {
	return a.Sales.View().Loading || a.Categories.View().Loading
}

// Summary computes the sales summary from the cached aggregates.
func (a *Analytics) Summary() stats.SalesSnapshot {
	return stats.Sales(a.Sales.View().Items, a.Categories.View().Items)
}

// Set is every hook the back office uses, sharing one client.
type Set struct {
	Customers     *Hook[shop.Customer]
	Orders        *Hook[shop.Order]
	Products      *Hook[shop.Product]
	Inventory     *Hook[shop.InventoryHistory]
	StatusHistory *Hook[shop.OrderStatusHistory]
	Analytics     *Analytics

	now func() time.Time
}

// NewSet builds all hooks with the same logger and fencing. opts.Query is
// ignored; each hook sets its own.
func NewSet(client store.Client, opts Options) *Set {
	opts.Query = store.Query{}
	return &Set{
		Customers:     NewCustomers(client, opts),
		Orders:        NewOrders(client, opts),
		Products:      NewProducts(client, opts),
		Inventory:     NewInventoryHistory(client, opts),
		StatusHistory: NewOrderStatusHistory(client, "", opts),
		Analytics:     NewAnalytics(client, opts),
		now:           time.Now,
	}
}

// Activate runs every hook's initial refresh concurrently and waits.
func (s *Set) Activate(ctx context.Context) {
	s.each(func(h refresher) { h.Activate(ctx) })
}

// RefreshAll re-reads every collection concurrently and waits.
func (s *Set) RefreshAll(ctx context.Context) {
	s.each(func(h refresher) { h.Refresh(ctx) })
}

type refresher interface {
	Activate(context.Context)
	Refresh(context.Context)
}

func (s *Set) each(fn func(refresher)) {
	hooks := []refresher{s.Customers, s.Orders, s.Products, s.Inventory, s.StatusHistory, s.Analytics}

	var wg sync.WaitGroup
	for _, h := range hooks {
		wg.Go(func() { fn(h) })
	}
	wg.Wait()
}

// Loading reports whether any hook has not settled yet.
func (s *Set) Loading() bool {
	return s.Customers.View().Loading ||
		s.Orders.View().Loading ||
		s.Products.View().Loading ||
		s.Inventory.View().Loading ||
		s.StatusHistory.View().Loading ||
		s.Analytics.Loading()
}
