package entity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/five82/stockroom/internal/shop"
	"github.com/five82/stockroom/internal/store"
)

func newTestSet(t *testing.T) (*Set, *fakeClient) {
	t.Helper()
	client := newFakeClient()
	set := NewSet(client, Options{Logger: &recordingLogger{}})
	set.now = func() time.Time { return time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC) }
	return set, client
}

func TestSet_ActivateSettlesEveryHook(t *testing.T) {
	set, client := newTestSet(t)
	seed(t, client, shop.CollectionSalesData,
		store.Record{"id": "s2", "period": "2024-02", "revenue": 200, "orders": 4},
		store.Record{"id": "s1", "period": "2024-01", "revenue": 100, "orders": 1},
	)
	seed(t, client, shop.CollectionCategoryData, store.Record{"id": "c1", "category": "Mugs", "revenue": 300})

	if !set.Loading() {
		t.Fatal("Loading() = false before activation")
	}
	set.Activate(context.Background())
	if set.Loading() {
		t.Fatal("Loading() = true after activation")
	}

	sales := set.Analytics.Sales.View().Items
	if len(sales) != 2 || sales[0].Period != "2024-01" {
		t.Fatalf("sales = %#v, want ascending periods", sales)
	}
	summary := set.Analytics.Summary()
	if summary.TotalRevenue != 300 || summary.BestPeriod != "2024-02" || summary.TopCategory != "Mugs" {
		t.Fatalf("summary = %+v", summary)
	}

	calls := client.listCalls()
	set.Activate(context.Background())
	if client.listCalls() != calls {
		t.Fatal("second Activate issued refreshes")
	}
	set.RefreshAll(context.Background())
	if got := client.listCalls() - calls; got != 7 {
		t.Fatalf("RefreshAll issued %d lists, want 7", got)
	}
}

func TestSet_AdvanceOrderRecordsHistory(t *testing.T) {
	set, client := newTestSet(t)
	seed(t, client, shop.CollectionOrders, store.Record{"id": "o-1", "status": "new", "source": "wb"})
	ctx := context.Background()
	set.Activate(ctx)

	updated, err := set.AdvanceOrder(ctx, "o-1")
	if err != nil {
		t.Fatalf("AdvanceOrder returned error: %v", err)
	}
	if updated.Status != shop.StatusProcessing {
		t.Fatalf("status = %q, want processing", updated.Status)
	}
	if got := set.Orders.View().Items[0].Status; got != shop.StatusProcessing {
		t.Fatalf("cached status = %q, want processing", got)
	}

	history := set.StatusHistory.View().Items
	if len(history) != 1 || history[0].OrderID != "o-1" || history[0].Status != shop.StatusProcessing {
		t.Fatalf("history = %#v", history)
	}
	if history[0].ChangedAt != "2024-06-01T09:30:00Z" {
		t.Fatalf("ChangedAt = %q", history[0].ChangedAt)
	}
}

func TestSet_OrderTransitionsRejected(t *testing.T) {
	set, client := newTestSet(t)
	seed(t, client, shop.CollectionOrders,
		store.Record{"id": "done", "status": "delivered"},
		store.Record{"id": "gone", "status": "cancelled"},
	)
	ctx := context.Background()
	set.Activate(ctx)

	if _, err := set.AdvanceOrder(ctx, "done"); !errors.Is(err, ErrTransition) {
		t.Fatalf("AdvanceOrder(delivered) err = %v, want ErrTransition", err)
	}
	if _, err := set.CancelOrder(ctx, "gone", ""); !errors.Is(err, ErrTransition) {
		t.Fatalf("CancelOrder(cancelled) err = %v, want ErrTransition", err)
	}
	if _, err := set.CancelOrder(ctx, "missing", ""); !errors.Is(err, ErrNotLoaded) {
		t.Fatalf("CancelOrder(missing) err = %v, want ErrNotLoaded", err)
	}
}

func TestSet_CancelOrder(t *testing.T) {
	set, client := newTestSet(t)
	seed(t, client, shop.CollectionOrders, store.Record{"id": "o-9", "status": "shipped"})
	ctx := context.Background()
	set.Activate(ctx)

	updated, err := set.CancelOrder(ctx, "o-9", "customer request")
	if err != nil {
		t.Fatalf("CancelOrder returned error: %v", err)
	}
	if updated.Status != shop.StatusCancelled {
		t.Fatalf("status = %q, want cancelled", updated.Status)
	}
	history := set.StatusHistory.View().Items
	if len(history) != 1 || history[0].Comment != "customer request" {
		t.Fatalf("history = %#v", history)
	}
}

func TestSet_AdjustStock(t *testing.T) {
	set, client := newTestSet(t)
	seed(t, client, shop.CollectionProducts, store.Record{"id": "p-1", "title": "Mug", "stock_quantity": 2, "in_stock": true})
	ctx := context.Background()
	set.Activate(ctx)

	if _, err := set.AdjustStock(ctx, "p-1", -3, "sale"); !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("err = %v, want ErrInsufficientStock", err)
	}

	updated, err := set.AdjustStock(ctx, "p-1", -2, "sale")
	if err != nil {
		t.Fatalf("AdjustStock returned error: %v", err)
	}
	if updated.StockQuantity != 0 || updated.InStock {
		t.Fatalf("product = %+v, want empty stock", updated)
	}

	moves := set.Inventory.View().Items
	if len(moves) != 1 || moves[0].Change != -2 || moves[0].QuantityAfter != 0 || moves[0].ProductTitle != "Mug" {
		t.Fatalf("inventory history = %#v", moves)
	}
}
