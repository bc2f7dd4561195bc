package ui

import (
	"context"
	"errors"
	"io"
	"log"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/stockroom/internal/config"
	"github.com/five82/stockroom/internal/entity"
	"github.com/five82/stockroom/internal/notify"
	"github.com/five82/stockroom/internal/prefs"
	"github.com/five82/stockroom/internal/shop"
	"github.com/five82/stockroom/internal/state"
	"github.com/five82/stockroom/internal/store"
)

type captureSink struct {
	mu   sync.Mutex
	msgs []notify.Message
}

func (s *captureSink) Notify(msg notify.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.msgs = append(s.msgs, msg)
}

func (s *captureSink) last() notify.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.msgs) == 0 {
		return notify.Message{}
	}
	return s.msgs[len(s.msgs)-1]
}

type failingRefresher struct{ err error }

func (r failingRefresher) RefreshNow(context.Context) error { return r.err }

type fixture struct {
	model    Model
	hooks    *entity.Set
	sink     *captureSink
	notifier *notify.Notifier
	prefs    string
}

func newFixture(t *testing.T, seed map[string][]store.Record) *fixture {
	t.Helper()
	ctx := context.Background()

	client := store.NewMemory()
	t.Cleanup(func() { _ = client.Close() })
	for collection, records := range seed {
		for _, rec := range records {
			if _, err := client.Insert(ctx, collection, rec); err != nil {
				t.Fatalf("seed %s: %v", collection, err)
			}
		}
	}

	hooks := entity.NewSet(client, entity.Options{Logger: log.New(io.Discard, "", 0)})
	hooks.Activate(ctx)

	sink := &captureSink{}
	notifier := notify.New(sink, notify.Options{})
	t.Cleanup(notifier.Close)

	prefsPath := filepath.Join(t.TempDir(), "prefs.toml")
	m := New(Options{
		Context:   ctx,
		Hooks:     hooks,
		Conn:      state.NewConnectivity(true),
		Notifier:  notifier,
		Config:    &config.Config{},
		PrefsPath: prefsPath,
	})
	m = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	m = update(t, m, snapshotMsg(collect(hooks, m.conn, notifier, m.config)))

	return &fixture{model: m, hooks: hooks, sink: sink, notifier: notifier, prefs: prefsPath}
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(Model)
}

// press sends a key and runs the resulting command once, feeding its message
// back into the model.
func press(t *testing.T, m Model, k tea.KeyMsg) Model {
	t.Helper()
	next, cmd := m.Update(k)
	m = next.(Model)
	if cmd == nil {
		return m
	}
	if msg := cmd(); msg != nil {
		if _, ok := msg.(tea.QuitMsg); ok {
			return m
		}
		m = update(t, m, msg)
	}
	return m
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestParseView(t *testing.T) {
	for v := range viewCount {
		if got := ParseView(v.String()); got != v {
			t.Fatalf("ParseView(%q) = %v, want %v", v.String(), got, v)
		}
	}
	if got := ParseView(" Orders "); got != ViewOrders {
		t.Fatalf("ParseView(Orders) = %v", got)
	}
	if got := ParseView("queue"); got != ViewDashboard {
		t.Fatalf("ParseView(unknown) = %v, want dashboard", got)
	}
}

func TestModel_SwitchesViews(t *testing.T) {
	f := newFixture(t, nil)
	m := f.model

	m = press(t, m, runes("2"))
	if m.currentView != ViewOrders {
		t.Fatalf("view = %v, want orders", m.currentView)
	}
	m = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if m.currentView != ViewCustomers {
		t.Fatalf("view after tab = %v, want customers", m.currentView)
	}
	m = press(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
	m = press(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
	if m.currentView != ViewDashboard {
		t.Fatalf("view after shift+tab = %v, want dashboard", m.currentView)
	}
	m = press(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
	if m.currentView != ViewLogs {
		t.Fatalf("view = %v, want logs (wraps)", m.currentView)
	}
}

func TestModel_AdvanceOrderGoesThroughHooks(t *testing.T) {
	f := newFixture(t, map[string][]store.Record{
		shop.CollectionOrders: {{"id": "o-1", "status": "new", "source": "wb", "total": 1200.0}},
	})
	m := press(t, f.model, runes("2"))
	m = press(t, m, runes("s"))

	order, ok := f.hooks.Orders.Find(func(o shop.Order) bool { return o.ID == "o-1" })
	if !ok || order.Status != shop.StatusProcessing {
		t.Fatalf("order = %+v, want processing", order)
	}
	history := f.hooks.StatusHistory.View().Items
	if len(history) != 1 || history[0].Status != shop.StatusProcessing {
		t.Fatalf("history = %+v", history)
	}
	if got := f.sink.last(); got.Severity != notify.SeveritySuccess || !strings.Contains(got.Body, "processing") {
		t.Fatalf("notification = %+v", got)
	}
	if f.notifier.LastError() != "" {
		t.Fatalf("LastError = %q, want empty", f.notifier.LastError())
	}
	_ = m
}

func TestModel_FailedOrderActionShowsPersistentError(t *testing.T) {
	f := newFixture(t, map[string][]store.Record{
		shop.CollectionOrders: {{"id": "o-9", "status": "delivered", "source": "ozon"}},
	})
	m := press(t, f.model, runes("2"))
	m = press(t, m, runes("c"))

	if !strings.Contains(f.notifier.LastError(), "not allowed") {
		t.Fatalf("LastError = %q", f.notifier.LastError())
	}
	if m.data.lastError == "" {
		t.Fatal("header error not set")
	}
	if got := f.sink.last(); got.Severity != notify.SeverityError || got.Title != "Order update failed" {
		t.Fatalf("notification = %+v", got)
	}

	m = press(t, m, runes("x"))
	if f.notifier.LastError() != "" || m.data.lastError != "" {
		t.Fatal("x did not clear the error")
	}
}

func TestModel_StockAdjustmentRecordsMovement(t *testing.T) {
	f := newFixture(t, map[string][]store.Record{
		shop.CollectionProducts: {{"id": "p-1", "title": "Mug", "stock_quantity": 1.0, "status": "active"}},
	})
	m := press(t, f.model, runes("4"))
	m = press(t, m, runes("-"))

	product, _ := f.hooks.Products.Find(func(p shop.Product) bool { return p.ID == "p-1" })
	if product.StockQuantity != 0 || product.InStock {
		t.Fatalf("product = %+v, want empty stock", product)
	}
	if got := len(f.hooks.Inventory.View().Items); got != 1 {
		t.Fatalf("movements = %d, want 1", got)
	}

	m = press(t, m, runes("-"))
	if !strings.Contains(f.notifier.LastError(), "insufficient stock") {
		t.Fatalf("LastError = %q", f.notifier.LastError())
	}
	_ = m
}

func TestModel_RefreshFailureIsReported(t *testing.T) {
	f := newFixture(t, nil)
	m := f.model
	m.refresher = failingRefresher{err: errors.New("probe orders: timeout")}

	next, cmd := m.Update(runes("r"))
	m = next.(Model)
	if !m.refreshing {
		t.Fatal("refreshing not set")
	}
	if _, again := m.Update(runes("r")); again != nil {
		t.Fatal("second refresh started while one is running")
	}

	m = update(t, m, cmd())
	if m.refreshing {
		t.Fatal("refreshing still set")
	}
	if f.notifier.LastError() != "probe orders: timeout" {
		t.Fatalf("LastError = %q", f.notifier.LastError())
	}
}

func TestModel_ToastExpiresOnTick(t *testing.T) {
	f := newFixture(t, nil)
	m := f.model
	now := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }

	m = update(t, m, toastMsg(notify.Message{Title: "Saved", Severity: notify.SeveritySuccess, Duration: time.Minute}))
	if _, ok := m.activeToast(); !ok {
		t.Fatal("toast not active")
	}
	if !strings.Contains(m.renderHeader(), "Saved") {
		t.Fatal("header does not show toast")
	}

	now = now.Add(2 * time.Minute)
	m = update(t, m, tickMsg(now))
	if _, ok := m.activeToast(); ok {
		t.Fatal("toast still active after its duration")
	}
}

func TestModel_SelectionClampsAfterShrink(t *testing.T) {
	f := newFixture(t, map[string][]store.Record{
		shop.CollectionCustomers: {{"id": "c-1", "name": "Anna"}, {"id": "c-2", "name": "Boris"}},
	})
	m := press(t, f.model, runes("3"))
	m = press(t, m, runes("G"))
	if m.selected[ViewCustomers] != 1 {
		t.Fatalf("selected = %d, want 1", m.selected[ViewCustomers])
	}

	data := m.data
	data.customers.Items = data.customers.Items[:1]
	m = update(t, m, snapshotMsg(data))
	if m.selected[ViewCustomers] != 0 {
		t.Fatalf("selected = %d, want 0 after shrink", m.selected[ViewCustomers])
	}
}

func TestModel_ThemeCycleSavesPrefs(t *testing.T) {
	f := newFixture(t, nil)
	m := press(t, f.model, runes("2"))
	m = press(t, m, runes("T"))

	if m.theme.Name != "Kanagawa" {
		t.Fatalf("theme = %q, want Kanagawa", m.theme.Name)
	}
	saved := prefs.Load(f.prefs)
	if saved.Theme != "Kanagawa" || saved.View != "orders" {
		t.Fatalf("saved prefs = %+v", saved)
	}
}

func TestModel_ViewRendersEveryScreen(t *testing.T) {
	f := newFixture(t, map[string][]store.Record{
		shop.CollectionOrders:   {{"id": "o-1", "status": "new", "source": "Wildberries", "customer_name": "Anna"}},
		shop.CollectionProducts: {{"id": "p-1", "title": "Mug", "stock_quantity": 3.0, "status": "active", "article_number": "A-1"}},
	})
	m := f.model

	out := m.View()
	if !strings.Contains(out, "stockroom") || !strings.Contains(out, "ONLINE") {
		t.Fatalf("dashboard header missing:\n%s", out)
	}
	if !strings.Contains(out, "Marketplaces") {
		t.Fatal("dashboard missing marketplace panel")
	}

	for _, k := range []string{"2", "3", "4", "5"} {
		m = press(t, m, runes(k))
		if out := m.View(); out == "" {
			t.Fatalf("view %q rendered nothing", k)
		}
	}

	m = press(t, m, runes("?"))
	if !strings.Contains(m.View(), "Keyboard Shortcuts") {
		t.Fatal("help overlay not shown")
	}
	m = press(t, m, runes("j"))
	if m.showHelp {
		t.Fatal("any key should close help")
	}
}

func TestCollect_DerivesStats(t *testing.T) {
	f := newFixture(t, map[string][]store.Record{
		shop.CollectionProducts: {
			{"id": "p-1", "title": "B", "stock_quantity": 9.0, "status": "active"},
			{"id": "p-2", "title": "A", "stock_quantity": 2.0, "status": "active"},
		},
		shop.CollectionOrders: {{"id": "o-1", "status": "new", "source": "WB"}},
	})
	snap := f.model.data

	if snap.products.Items[0].ID != "p-2" {
		t.Fatalf("products not sorted by stock: %+v", snap.products.Items)
	}
	if snap.market.ActiveProducts != 2 || snap.market.WB.Orders != 1 {
		t.Fatalf("market = %+v", snap.market)
	}
	if snap.stock.LowStock != 1 {
		t.Fatalf("stock = %+v", snap.stock)
	}
	if !snap.conn.Online {
		t.Fatal("connectivity not copied")
	}
}
