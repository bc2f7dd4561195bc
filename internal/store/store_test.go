package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type backend struct {
	name string
	open func(t *testing.T) Client
}

func backends() []backend {
	return []backend{
		{name: "memory", open: func(t *testing.T) Client {
			return NewMemory()
		}},
		{name: "sqlite", open: func(t *testing.T) Client {
			c, err := OpenSQLite(filepath.Join(t.TempDir(), "stockroom.db"), Options{})
			require.NoError(t, err)
			return c
		}},
	}
}

func TestClientConformance(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			t.Run("insert assigns id and created_at", func(t *testing.T) {
				c := b.open(t)
				t.Cleanup(func() { _ = c.Close() })
				ctx := context.Background()

				rec, err := c.Insert(ctx, "customers", Record{"name": "Anna"})
				require.NoError(t, err)
				assert.NotEmpty(t, rec.ID())
				assert.NotEmpty(t, rec["created_at"])
				assert.Equal(t, "Anna", rec["name"])

				rows, err := c.List(ctx, "customers", Query{})
				require.NoError(t, err)
				require.Len(t, rows, 1)
				assert.Equal(t, rec.ID(), rows[0].ID())
			})

			t.Run("insert rejects duplicate id", func(t *testing.T) {
				c := b.open(t)
				t.Cleanup(func() { _ = c.Close() })
				ctx := context.Background()

				_, err := c.Insert(ctx, "orders", Record{"id": "o-1"})
				require.NoError(t, err)
				_, err = c.Insert(ctx, "orders", Record{"id": "o-1"})
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrConflict), "err = %v", err)

				var storeErr *Error
				require.True(t, errors.As(err, &storeErr))
				assert.Equal(t, "insert", storeErr.Op)
				assert.Equal(t, "orders", storeErr.Collection)
			})

			t.Run("order by and limit", func(t *testing.T) {
				c := b.open(t)
				t.Cleanup(func() { _ = c.Close() })
				ctx := context.Background()

				base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
				for i, id := range []string{"a", "b", "c"} {
					_, err := c.Insert(ctx, "orders", Record{
						"id":         id,
						"created_at": base.Add(time.Duration(i) * time.Hour).Format(time.RFC3339Nano),
						"total":      float64(10 * (3 - i)),
					})
					require.NoError(t, err)
				}

				rows, err := ListOrdered(ctx, c, "orders", "created_at", Descending)
				require.NoError(t, err)
				assert.Equal(t, []string{"c", "b", "a"}, ids(rows))

				rows, err = c.List(ctx, "orders", Query{OrderBy: "total", Direction: Ascending, Limit: 2})
				require.NoError(t, err)
				assert.Equal(t, []string{"c", "b"}, ids(rows))
			})

			t.Run("where filters on text form", func(t *testing.T) {
				c := b.open(t)
				t.Cleanup(func() { _ = c.Close() })
				ctx := context.Background()

				for _, rec := range []Record{
					{"id": "1", "order_id": "o-1", "status": "new"},
					{"id": "2", "order_id": "o-2", "status": "new"},
					{"id": "3", "order_id": "o-1", "status": "processing"},
				} {
					_, err := c.Insert(ctx, "order_status_history", rec)
					require.NoError(t, err)
				}

				rows, err := c.List(ctx, "order_status_history", Query{Where: map[string]string{"order_id": "o-1"}})
				require.NoError(t, err)
				assert.ElementsMatch(t, []string{"1", "3"}, ids(rows))
			})

			t.Run("update merges patch", func(t *testing.T) {
				c := b.open(t)
				t.Cleanup(func() { _ = c.Close() })
				ctx := context.Background()

				_, err := c.Insert(ctx, "products", Record{"id": "p-1", "title": "Mug", "stock_quantity": float64(4)})
				require.NoError(t, err)

				updated, err := c.Update(ctx, "products", "p-1", Record{"id": "ignored", "stock_quantity": float64(9)})
				require.NoError(t, err)
				assert.Equal(t, "p-1", updated.ID())
				assert.Equal(t, "Mug", updated["title"])
				assert.EqualValues(t, 9, updated["stock_quantity"])

				_, err = c.Update(ctx, "products", "missing", Record{"title": "x"})
				assert.True(t, errors.Is(err, ErrNotFound), "err = %v", err)
			})

			t.Run("delete reports whether a row went away", func(t *testing.T) {
				c := b.open(t)
				t.Cleanup(func() { _ = c.Close() })
				ctx := context.Background()

				_, err := c.Insert(ctx, "customers", Record{"id": "c-1"})
				require.NoError(t, err)

				ok, err := c.Delete(ctx, "customers", "c-1")
				require.NoError(t, err)
				assert.True(t, ok)

				ok, err = c.Delete(ctx, "customers", "c-1")
				require.NoError(t, err)
				assert.False(t, ok)
			})

			t.Run("probe succeeds on empty collection", func(t *testing.T) {
				c := b.open(t)
				t.Cleanup(func() { _ = c.Close() })
				assert.NoError(t, c.Probe(context.Background(), "inventory_history"))
			})
		})
	}
}

func TestMemoryClosed(t *testing.T) {
	m := NewMemory()
	require.NoError(t, m.Close())

	_, err := m.List(context.Background(), "orders", Query{})
	assert.True(t, errors.Is(err, ErrClosed), "err = %v", err)
	assert.Error(t, m.Probe(context.Background(), "orders"))
}

func TestMemoryHonorsCanceledContext(t *testing.T) {
	m := NewMemory()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := m.Insert(ctx, "orders", Record{})
	assert.True(t, errors.Is(err, context.Canceled), "err = %v", err)
}

func TestOpenDispatch(t *testing.T) {
	c, err := Open("memory://", Options{})
	require.NoError(t, err)
	_, ok := c.(*Memory)
	assert.True(t, ok, "memory dsn built %T", c)

	c, err = Open("https://shop.example.com", Options{APIKey: "k"})
	require.NoError(t, err)
	rest, ok := c.(*REST)
	require.True(t, ok, "https dsn built %T", c)
	assert.Equal(t, "/rest/v1", rest.baseURL.Path)

	path := filepath.Join(t.TempDir(), "data.db")
	c, err = Open("sqlite://"+path, Options{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	_, ok = c.(*SQL)
	assert.True(t, ok, "sqlite dsn built %T", c)

	_, err = Open("ftp://example.com", Options{})
	assert.True(t, errors.Is(err, ErrUnsupported), "err = %v", err)

	_, err = Open("", Options{})
	assert.True(t, errors.Is(err, ErrUnsupported), "err = %v", err)
}

func TestRegisterOverridesScheme(t *testing.T) {
	want := NewMemory()
	Register("fake", func(dsn string, opts Options) (Client, error) {
		return want, nil
	})

	got, err := Open("FAKE://anything", Options{})
	require.NoError(t, err)
	assert.Same(t, want, got)
}

func TestDecodeAllReportsBadRecord(t *testing.T) {
	type item struct {
		ID    string  `json:"id"`
		Total float64 `json:"total"`
	}
	_, err := DecodeAll[item]([]Record{
		{"id": "ok", "total": 1.5},
		{"id": "bad", "total": "lots"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `id "bad"`)

	rec, err := Encode(item{ID: "x", Total: 2})
	require.NoError(t, err)
	assert.Equal(t, "x", rec.ID())
	assert.EqualValues(t, 2, rec["total"])
}

func TestRecordIDFormatsNumbers(t *testing.T) {
	assert.Equal(t, "42", Record{"id": float64(42)}.ID())
	assert.Equal(t, "", Record{}.ID())
	assert.Equal(t, "abc", Record{"id": "abc"}.ID())
}

func ids(rows []Record) []string {
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.ID())
	}
	return out
}

func TestMemoryCreatedAtSortsWithinOneSecond(t *testing.T) {
	m := NewMemory()
	base := time.Date(2026, 10, 19, 5, 0, 0, 0, time.UTC)
	for i, offset := range []time.Duration{0, 500 * time.Millisecond, 120 * time.Millisecond} {
		m.now = func() time.Time { return base.Add(offset) }
		_, err := m.Insert(context.Background(), "inventory_history", Record{"id": string(rune('a' + i))})
		require.NoError(t, err)
	}

	rows, err := ListOrdered(context.Background(), m, "inventory_history", "created_at", Descending)
	require.NoError(t, err)
	ids := make([]string, 0, len(rows))
	widths := map[int]bool{}
	for _, r := range rows {
		ids = append(ids, r.ID())
		widths[len(r["created_at"].(string))] = true
	}
	assert.Equal(t, []string{"b", "c", "a"}, ids)
	assert.Len(t, widths, 1, "created_at values differ in width")
}
