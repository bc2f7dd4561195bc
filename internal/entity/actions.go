package entity

import (
	"context"
	"errors"
	"fmt"

	"github.com/five82/stockroom/internal/shop"
	"github.com/five82/stockroom/internal/store"
)

var (
	// ErrNotLoaded is returned when an action targets a record missing from
	// the cached view.
	ErrNotLoaded = errors.New("record not in cached view")
	// ErrTransition is returned for a status change the order flow forbids.
	ErrTransition = errors.New("status transition not allowed")
	// ErrInsufficientStock is returned when a stock change would go below zero.
	ErrInsufficientStock = errors.New("insufficient stock")
)

// AdvanceOrder moves an order to the next fulfilment status and records the
// transition in the status history.
func (s *Set) AdvanceOrder(ctx context.Context, id string) (shop.Order, error) {
	order, err := s.cachedOrder(id)
	if err != nil {
		return shop.Order{}, err
	}
	next, ok := shop.NextStatus(order.Status)
	if !ok {
		return order, fmt.Errorf("%w: order %s is %s", ErrTransition, id, order.Status)
	}
	return s.setOrderStatus(ctx, order, next, "")
}

// CancelOrder cancels an order that has not been delivered yet.
func (s *Set) CancelOrder(ctx context.Context, id, comment string) (shop.Order, error) {
	order, err := s.cachedOrder(id)
	if err != nil {
		return shop.Order{}, err
	}
	if shop.IsTerminal(order.Status) {
		return order, fmt.Errorf("%w: order %s is %s", ErrTransition, id, order.Status)
	}
	return s.setOrderStatus(ctx, order, shop.StatusCancelled, comment)
}

func (s *Set) cachedOrder(id string) (shop.Order, error) {
	order, ok := s.Orders.Find(func(o shop.Order) bool { return o.ID == id })
	if !ok {
		return shop.Order{}, fmt.Errorf("%w: order %s", ErrNotLoaded, id)
	}
	return order, nil
}

func (s *Set) setOrderStatus(ctx context.Context, order shop.Order, status, comment string) (shop.Order, error) {
	now := shop.Timestamp(s.now())
	updated, err := s.Orders.Update(ctx, order.ID, store.Record{
		"status":     status,
		"updated_at": now,
	})
	if err != nil {
		return order, fmt.Errorf("update order %s: %w", order.ID, err)
	}
	_, err = s.StatusHistory.Add(ctx, shop.OrderStatusHistory{
		OrderID:   order.ID,
		Status:    status,
		Comment:   comment,
		ChangedAt: now,
	})
	if err != nil {
		return updated, fmt.Errorf("record status history for order %s: %w", order.ID, err)
	}
	return updated, nil
}

// AdjustStock changes a product's stock by delta and records the movement.
func (s *Set) AdjustStock(ctx context.Context, productID string, delta int, reason string) (shop.Product, error) {
	product, ok := s.Products.Find(func(p shop.Product) bool { return p.ID == productID })
	if !ok {
		return shop.Product{}, fmt.Errorf("%w: product %s", ErrNotLoaded, productID)
	}
	qty := product.StockQuantity + delta
	if qty < 0 {
		return product, fmt.Errorf("%w: product %s has %d, change %d", ErrInsufficientStock, productID, product.StockQuantity, delta)
	}

	updated, err := s.Products.Update(ctx, productID, store.Record{
		"stock_quantity": qty,
		"in_stock":       qty > 0,
	})
	if err != nil {
		return product, fmt.Errorf("update stock for %s: %w", productID, err)
	}
	_, err = s.Inventory.Add(ctx, shop.InventoryHistory{
		ProductID:     productID,
		ProductTitle:  product.Title,
		Change:        delta,
		QuantityAfter: qty,
		Reason:        reason,
		CreatedAt:     shop.Timestamp(s.now()),
	})
	if err != nil {
		return updated, fmt.Errorf("record inventory movement for %s: %w", productID, err)
	}
	return updated, nil
}
