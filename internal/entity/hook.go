package entity

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/five82/stockroom/internal/state"
	"github.com/five82/stockroom/internal/store"
)

// Logger receives refresh failures.
type Logger interface {
	Printf(format string, args ...any)
}

// Options configure a Hook.
type Options struct {
	// Logger defaults to the standard logger.
	Logger Logger
	// Query shapes every refresh (ordering, filters).
	Query store.Query
	// Fenced drops refresh results that arrive after a newer one was applied.
	// Without it the last result to arrive wins, whatever order the refreshes
	// were issued in.
	Fenced bool
}

// Hook owns the cached view of one collection. Every mutation is followed by
// a full refresh; the value a mutation returns is the store's answer, and the
// cached view only reflects it once that refresh settles.
type Hook[T any] struct {
	client     store.Client
	collection string
	query      store.Query
	logger     Logger
	fenced     bool

	cache    state.Cache[T]
	activate sync.Once
}

// New builds a hook for collection. The view reports Loading until the first
// refresh settles.
func New[T any](client store.Client, collection string, opts Options) *Hook[T] {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Hook[T]{
		client:     client,
		collection: collection,
		query:      opts.Query,
		logger:     logger,
		fenced:     opts.Fenced,
	}
}

func (h *Hook[T]) Collection() string {
	return h.collection
}

// Activate runs the initial refresh. Only the first call does anything.
func (h *Hook[T]) Activate(ctx context.Context) {
	h.activate.Do(func() {
		h.Refresh(ctx)
	})
}

// Refresh re-reads the collection. Failures are logged and recorded in the
// view; previous items stay in place.
func (h *Hook[T]) Refresh(ctx context.Context) {
	var seq uint64
	if h.fenced {
		seq = h.cache.Begin()
	}

	items, err := h.fetch(ctx)
	if err != nil {
		h.logger.Printf("refresh %s failed: %v", h.collection, err)
	}

	if h.fenced {
		h.cache.UpdateSeq(seq, items, err)
		return
	}
	h.cache.Update(items, err)
}

func (h *Hook[T]) fetch(ctx context.Context) ([]T, error) {
	rows, err := h.client.List(ctx, h.collection, h.query)
	if err != nil {
		return nil, err
	}
	items, err := store.DecodeAll[T](rows)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", h.collection, err)
	}
	return items, nil
}

// View returns a copy of the cached view.
func (h *Hook[T]) View() state.View[T] {
	return h.cache.Snapshot()
}

// Add inserts item and refreshes.
func (h *Hook[T]) Add(ctx context.Context, item T) (T, error) {
	defer h.Refresh(ctx)

	var zero T
	rec, err := store.Encode(item)
	if err != nil {
		return zero, err
	}
	created, err := h.client.Insert(ctx, h.collection, rec)
	if err != nil {
		return zero, err
	}
	return store.Decode[T](created)
}

// Update applies patch to the record with id and refreshes.
func (h *Hook[T]) Update(ctx context.Context, id string, patch store.Record) (T, error) {
	defer h.Refresh(ctx)

	var zero T
	updated, err := h.client.Update(ctx, h.collection, id, patch)
	if err != nil {
		return zero, err
	}
	return store.Decode[T](updated)
}

// Delete removes the record with id and refreshes. The boolean reports
// whether a record was removed.
func (h *Hook[T]) Delete(ctx context.Context, id string) (bool, error) {
	defer h.Refresh(ctx)
	return h.client.Delete(ctx, h.collection, id)
}

// Find returns the cached item matching pred.
func (h *Hook[T]) Find(pred func(T) bool) (T, bool) {
	for _, item := range h.View().Items {
		if pred(item) {
			return item, true
		}
	}
	var zero T
	return zero, false
}
