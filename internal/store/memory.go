package store

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Memory is an in-process Client. Collections are created on first insert and
// keep insertion order.
type Memory struct {
	mu          sync.RWMutex
	collections map[string][]Record
	closed      bool
	newID       func() string
	now         func() time.Time
}

var _ Client = (*Memory)(nil)

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		collections: map[string][]Record{},
		newID:       func() string { return uuid.New().String() },
		now:         time.Now,
	}
}

func (m *Memory) List(ctx context.Context, collection string, q Query) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, opError("list", collection, err)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, opError("list", collection, ErrClosed)
	}

	rows := m.collections[collection]
	out := make([]Record, 0, len(rows))
	for _, rec := range rows {
		if matches(rec, q.Where) {
			out = append(out, rec.Clone())
		}
	}
	if q.OrderBy != "" {
		desc := q.descending()
		slices.SortStableFunc(out, func(a, b Record) int {
			c := compareValues(a[q.OrderBy], b[q.OrderBy])
			if desc {
				return -c
			}
			return c
		})
	}
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (m *Memory) Insert(ctx context.Context, collection string, rec Record) (Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, opError("insert", collection, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, opError("insert", collection, ErrClosed)
	}

	row := rec.Clone()
	if row == nil {
		row = Record{}
	}
	id := row.ID()
	if id == "" {
		id = m.newID()
	}
	row["id"] = id
	if _, ok := row["created_at"]; !ok {
		row["created_at"] = m.now().UTC().Format(timestampLayout)
	}
	if m.indexOf(collection, id) >= 0 {
		return nil, opError("insert", collection, fmt.Errorf("%w: id %s", ErrConflict, id))
	}
	m.collections[collection] = append(m.collections[collection], row)
	return row.Clone(), nil
}

func (m *Memory) Update(ctx context.Context, collection, id string, patch Record) (Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, opError("update", collection, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, opError("update", collection, ErrClosed)
	}

	idx := m.indexOf(collection, id)
	if idx < 0 {
		return nil, opError("update", collection, fmt.Errorf("%w: id %s", ErrNotFound, id))
	}
	row := m.collections[collection][idx].Clone()
	for k, v := range patch {
		if k == "id" {
			continue
		}
		row[k] = v
	}
	m.collections[collection][idx] = row
	return row.Clone(), nil
}

func (m *Memory) Delete(ctx context.Context, collection, id string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, opError("delete", collection, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return false, opError("delete", collection, ErrClosed)
	}

	idx := m.indexOf(collection, id)
	if idx < 0 {
		return false, nil
	}
	m.collections[collection] = slices.Delete(m.collections[collection], idx, idx+1)
	return true, nil
}

func (m *Memory) Probe(ctx context.Context, collection string) error {
	_, err := m.List(ctx, collection, Query{Limit: 1})
	if err != nil {
		return opError("probe", collection, err)
	}
	return nil
}

func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *Memory) indexOf(collection, id string) int {
	for i, rec := range m.collections[collection] {
		if rec.ID() == id {
			return i
		}
	}
	return -1
}

func matches(rec Record, where map[string]string) bool {
	for field, want := range where {
		if textValue(rec[field]) != want {
			return false
		}
	}
	return true
}

// compareValues orders nil first, then numbers, then timestamps by instant,
// then everything else by its textual form.
func compareValues(a, b any) int {
	if a == nil || b == nil {
		switch {
		case a == nil && b == nil:
			return 0
		case a == nil:
			return -1
		default:
			return 1
		}
	}
	af, aNum := number(a)
	bf, bNum := number(b)
	switch {
	case aNum && bNum:
		return cmp.Compare(af, bf)
	case aNum:
		return -1
	case bNum:
		return 1
	}
	if at, bt, ok := timestamps(a, b); ok {
		return at.Compare(bt)
	}
	return cmp.Compare(textValue(a), textValue(b))
}

// timestamps parses both values as RFC 3339 times. Fraction widths vary
// between writers, so text order is not chronological.
func timestamps(a, b any) (time.Time, time.Time, bool) {
	as, aok := a.(string)
	bs, bok := b.(string)
	if !aok || !bok {
		return time.Time{}, time.Time{}, false
	}
	at, err := time.Parse(time.RFC3339Nano, as)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	bt, err := time.Parse(time.RFC3339Nano, bs)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	return at, bt, true
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}
