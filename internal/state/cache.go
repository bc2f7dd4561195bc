package state

import (
	"fmt"
	"sync"
	"time"
)

// View is a point-in-time copy of a Cache.
type View[T any] struct {
	Items               []T
	Loading             bool
	LastError           error
	UpdatedAt           time.Time
	ConsecutiveFailures int // Number of consecutive failed refreshes
}

// Stale reports whether the items predate the most recent refresh attempt.
func (v View[T]) Stale() bool {
	return v.ConsecutiveFailures > 0
}

// Cache holds the client-side copy of one collection. The zero value is ready
// to use and reports Loading until the first Update.
type Cache[T any] struct {
	mu        sync.RWMutex
	settled   bool
	items     []T
	lastErr   error
	updatedAt time.Time
	failures  int

	issued  uint64
	applied uint64
}

// Update records the outcome of a refresh. When err is non-nil the previous
// items are kept and the error is recorded.
func (c *Cache[T]) Update(items []T, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.apply(items, err)
}

// Begin reserves a sequence number for a refresh about to be issued.
func (c *Cache[T]) Begin() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.issued++
	return c.issued
}

// UpdateSeq is Update for a refresh started with Begin. Outcomes older than
// one already applied are dropped; the return value reports whether this one
// was applied.
func (c *Cache[T]) UpdateSeq(seq uint64, items []T, err error) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if seq <= c.applied {
		return false
	}
	c.applied = seq
	c.apply(items, err)
	return true
}

func (c *Cache[T]) apply(items []T, err error) {
	c.settled = true
	c.updatedAt = time.Now()
	if err != nil {
		c.lastErr = err
		c.failures++
		return
	}
	c.items = cloneItems(items)
	c.lastErr = nil
	c.failures = 0
}

// Snapshot returns a copy of the current view.
func (c *Cache[T]) Snapshot() View[T] {
	c.mu.RLock()
	defer c.mu.RUnlock()

	view := View[T]{
		Items:               cloneItems(c.items),
		Loading:             !c.settled,
		UpdatedAt:           c.updatedAt,
		ConsecutiveFailures: c.failures,
	}
	if c.lastErr != nil {
		view.LastError = fmt.Errorf("%w", c.lastErr)
	}
	return view
}

func cloneItems[T any](items []T) []T {
	if len(items) == 0 {
		return nil
	}
	dup := make([]T, len(items))
	copy(dup, items)
	return dup
}
