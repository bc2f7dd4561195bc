// Package entity provides the per-collection hooks that keep client-side
// cached views in step with the remote store.
//
// # Overview
//
// A Hook owns one state.Cache and the CRUD calls for its collection. Every
// hook follows the same policy:
//
//   - Activate performs the first refresh exactly once
//   - Refresh re-reads the whole collection; failures are logged and the
//     previous items stay visible
//   - Add, Update and Delete issue the mutation and then always refresh,
//     returning the mutation's own result to the caller
//
// The value a mutation returns is the store's answer, not the cached view.
// Callers that need the authoritative list read View after the call returns.
//
// # Refresh Ordering
//
// Refreshes of the same collection are not sequenced by default: the result
// that arrives last wins. Options.Fenced switches a hook to sequence-numbered
// refreshes that ignore results older than one already applied.
//
// # Instances
//
//	set := entity.NewSet(client, entity.Options{Logger: logger})
//	set.Activate(ctx)
//	orders := set.Orders.View()
//
// NewSet builds customers, orders, products, inventory history, order status
// history and the analytics aggregates. Set also carries the order and stock
// actions used by the TUI, each built from hook mutations.
package entity
