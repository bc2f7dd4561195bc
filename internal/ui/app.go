package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/stockroom/internal/config"
	"github.com/five82/stockroom/internal/entity"
	"github.com/five82/stockroom/internal/logtail"
	"github.com/five82/stockroom/internal/notify"
	"github.com/five82/stockroom/internal/prefs"
	"github.com/five82/stockroom/internal/shop"
	"github.com/five82/stockroom/internal/state"
)

// View represents the current active view.
type View int

const (
	ViewDashboard View = iota
	ViewOrders
	ViewCustomers
	ViewInventory
	ViewLogs
	viewCount
)

var viewNames = [viewCount]string{"dashboard", "orders", "customers", "inventory", "logs"}

func (v View) String() string {
	if v < 0 || v >= viewCount {
		return viewNames[ViewDashboard]
	}
	return viewNames[v]
}

// ParseView maps a saved view name back to a View. Unknown names return the
// dashboard.
func ParseView(name string) View {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range viewNames {
		if n == name {
			return View(i)
		}
	}
	return ViewDashboard
}

// Refresher runs an out-of-band sweep and records its outcome.
type Refresher interface {
	RefreshNow(ctx context.Context) error
}

// Options configures the UI.
type Options struct {
	Context   context.Context
	Hooks     *entity.Set
	Conn      *state.Connectivity
	Refresher Refresher
	Notifier  *notify.Notifier
	Toasts    <-chan notify.Message
	Config    *config.Config
	Tick      time.Duration
	ThemeName string
	View      string
	PrefsPath string
}

const (
	logTailLines = 400
	stockReason  = "manual adjustment"
	cancelReason = "cancelled from back office"
)

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx       context.Context
	hooks     *entity.Set
	conn      *state.Connectivity
	refresher Refresher
	notifier  *notify.Notifier
	toasts    <-chan notify.Message
	config    *config.Config
	prefsPath string
	tick      time.Duration
	keys      keyMap
	now       func() time.Time

	// UI state
	theme       Theme
	currentView View
	width       int
	height      int
	ready       bool
	showHelp    bool
	selected    [viewCount]int

	// Data state
	data        snapshot
	lastUpdated time.Time
	refreshing  bool

	// Transient notification
	toast      notify.Message
	toastUntil time.Time

	// Log state
	logViewport viewport.Model
	logEntries  []logtail.Entry
	logErr      error
	logFollow   bool
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	tick := opts.Tick
	if tick <= 0 {
		tick = time.Second
	}

	themeName := opts.ThemeName
	if themeName == "" {
		themeName = prefs.Default().Theme
	}

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	return Model{
		ctx:         ctx,
		hooks:       opts.Hooks,
		conn:        opts.Conn,
		refresher:   opts.Refresher,
		notifier:    opts.Notifier,
		toasts:      opts.Toasts,
		config:      opts.Config,
		prefsPath:   prefsPath,
		tick:        tick,
		keys:        DefaultKeyMap(),
		now:         time.Now,
		theme:       GetTheme(themeName),
		currentView: ParseView(opts.View),
		logFollow:   true,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		tickCmd(m.tick),
		m.fetchSnapshotCmd(),
	}
	if m.toasts != nil {
		cmds = append(cmds, waitForToast(m.toasts))
	}
	if m.currentView == ViewLogs {
		cmds = append(cmds, m.readLogsCmd())
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.resizeLogViewport()
		return m, nil

	case tickMsg:
		return m.handleTick()

	case snapshotMsg:
		m.data = snapshot(msg)
		m.lastUpdated = m.now()
		m.clampSelection()
		return m, nil

	case toastMsg:
		m.toast = notify.Message(msg)
		d := m.toast.Duration
		if d <= 0 {
			d = notify.DefaultTransient
		}
		m.toastUntil = m.now().Add(d)
		return m, waitForToast(m.toasts)

	case actionDoneMsg:
		if msg.err != nil {
			m.showError(msg.title, msg.err)
		} else if m.notifier != nil {
			m.notifier.Notify(msg.title, msg.detail, notify.SeveritySuccess)
		}
		return m, m.fetchSnapshotCmd()

	case refreshDoneMsg:
		m.refreshing = false
		if msg.err != nil {
			m.showError("Sync failed", msg.err)
		}
		return m, m.fetchSnapshotCmd()

	case logLinesMsg:
		m.logEntries = msg.entries
		m.logErr = msg.err
		m.updateLogViewport()
		return m, nil
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}
	return m.renderMain()
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Any key closes help
	if m.showHelp {
		m.showHelp = false
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.savePrefs()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.savePrefs()
		return m, nil

	case key.Matches(msg, m.keys.Tab):
		return m.switchView((m.currentView + 1) % viewCount)

	case key.Matches(msg, m.keys.ShiftTab):
		return m.switchView((m.currentView + viewCount - 1) % viewCount)

	case key.Matches(msg, m.keys.ViewDashboard):
		return m.switchView(ViewDashboard)
	case key.Matches(msg, m.keys.ViewOrders):
		return m.switchView(ViewOrders)
	case key.Matches(msg, m.keys.ViewCustomers):
		return m.switchView(ViewCustomers)
	case key.Matches(msg, m.keys.ViewInventory):
		return m.switchView(ViewInventory)
	case key.Matches(msg, m.keys.ViewLogs):
		return m.switchView(ViewLogs)

	case key.Matches(msg, m.keys.Refresh):
		if m.refreshing {
			return m, nil
		}
		m.refreshing = true
		return m, m.refreshCmd()

	case key.Matches(msg, m.keys.ClearError):
		if m.notifier != nil {
			m.notifier.ClearError()
		}
		m.data.lastError = ""
		return m, nil
	}

	switch m.currentView {
	case ViewOrders:
		return m.handleOrdersKey(msg)
	case ViewCustomers:
		return m.handleListKey(msg)
	case ViewInventory:
		return m.handleInventoryKey(msg)
	case ViewLogs:
		return m.handleLogsKey(msg)
	}
	return m, nil
}

func (m Model) switchView(v View) (tea.Model, tea.Cmd) {
	m.currentView = v
	if v == ViewLogs {
		return m, m.readLogsCmd()
	}
	return m, nil
}

// handleListKey moves the selection of the current table view.
func (m Model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	count := m.rowCount(m.currentView)
	if count == 0 {
		return m, nil
	}
	sel := &m.selected[m.currentView]
	switch {
	case key.Matches(msg, m.keys.Down):
		if *sel < count-1 {
			*sel++
		}
	case key.Matches(msg, m.keys.Up):
		if *sel > 0 {
			*sel--
		}
	case key.Matches(msg, m.keys.Top):
		*sel = 0
	case key.Matches(msg, m.keys.Bottom):
		*sel = count - 1
	}
	return m, nil
}

func (m Model) handleOrdersKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	order, ok := m.selectedOrder()
	switch {
	case key.Matches(msg, m.keys.AdvanceOrder):
		if !ok {
			return m, nil
		}
		return m, m.orderActionCmd(order, false)
	case key.Matches(msg, m.keys.CancelOrder):
		if !ok {
			return m, nil
		}
		return m, m.orderActionCmd(order, true)
	}
	return m.handleListKey(msg)
}

func (m Model) handleInventoryKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	product, ok := m.selectedProduct()
	switch {
	case key.Matches(msg, m.keys.StockUp):
		if !ok {
			return m, nil
		}
		return m, m.adjustStockCmd(product, 1)
	case key.Matches(msg, m.keys.StockDown):
		if !ok {
			return m, nil
		}
		return m, m.adjustStockCmd(product, -1)
	}
	return m.handleListKey(msg)
}

func (m Model) handleLogsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.ToggleFollow) {
		m.logFollow = !m.logFollow
		if m.logFollow {
			m.logViewport.GotoBottom()
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.logViewport, cmd = m.logViewport.Update(msg)
	return m, cmd
}

// handleTick processes the polling tick.
func (m Model) handleTick() (tea.Model, tea.Cmd) {
	cmds := []tea.Cmd{m.fetchSnapshotCmd()}

	if !m.toastUntil.IsZero() && !m.now().Before(m.toastUntil) {
		m.toast = notify.Message{}
		m.toastUntil = time.Time{}
	}

	if m.currentView == ViewLogs && m.logFollow {
		cmds = append(cmds, m.readLogsCmd())
	}

	cmds = append(cmds, tickCmd(m.tick))
	return m, tea.Batch(cmds...)
}

func (m *Model) showError(title string, err error) {
	if m.notifier != nil {
		m.notifier.ShowPersistentError(title, err.Error())
	}
	m.data.lastError = err.Error()
}

func (m Model) savePrefs() {
	if m.prefsPath == "" {
		return
	}
	_ = prefs.Save(m.prefsPath, prefs.Prefs{Theme: m.theme.Name, View: m.currentView.String()})
}

func (m Model) rowCount(v View) int {
	switch v {
	case ViewOrders:
		return len(m.data.orders.Items)
	case ViewCustomers:
		return len(m.data.customers.Items)
	case ViewInventory:
		return len(m.data.products.Items)
	}
	return 0
}

// clampSelection keeps selections inside the rows that survived a refresh.
func (m *Model) clampSelection() {
	for v := range viewCount {
		n := m.rowCount(v)
		switch {
		case n == 0:
			m.selected[v] = 0
		case m.selected[v] >= n:
			m.selected[v] = n - 1
		}
	}
}

func (m Model) selectedOrder() (shop.Order, bool) {
	items := m.data.orders.Items
	idx := m.selected[ViewOrders]
	if idx < 0 || idx >= len(items) {
		return shop.Order{}, false
	}
	return items[idx], true
}

func (m Model) selectedProduct() (shop.Product, bool) {
	items := m.data.products.Items
	idx := m.selected[ViewInventory]
	if idx < 0 || idx >= len(items) {
		return shop.Product{}, false
	}
	return items[idx], true
}

// renderMain renders the full UI.
func (m Model) renderMain() string {
	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderCommandBar())
	b.WriteString("\n")
	b.WriteString(m.renderContent())
	return b.String()
}

// renderContent renders the main content area based on current view.
func (m Model) renderContent() string {
	switch m.currentView {
	case ViewOrders:
		return m.renderOrders()
	case ViewCustomers:
		return m.renderCustomers()
	case ViewInventory:
		return m.renderInventory()
	case ViewLogs:
		return m.renderLogs()
	default:
		return m.renderDashboard()
	}
}

// contentHeight is what remains below the header and command bar.
func (m Model) contentHeight() int {
	return max(m.height-2, 3)
}

// Messages

type tickMsg time.Time

type snapshotMsg snapshot

type toastMsg notify.Message

type actionDoneMsg struct {
	title  string
	detail string
	err    error
}

type refreshDoneMsg struct{ err error }

type logLinesMsg struct {
	entries []logtail.Entry
	err     error
}

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) fetchSnapshotCmd() tea.Cmd {
	hooks, conn, notifier, cfg := m.hooks, m.conn, m.notifier, m.config
	return func() tea.Msg {
		return snapshotMsg(collect(hooks, conn, notifier, cfg))
	}
}

func waitForToast(ch <-chan notify.Message) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return nil
		}
		return toastMsg(msg)
	}
}

// refreshCmd runs the sweep and then re-reads every collection. The hooks
// refresh even when the sweep fails so cached views pick up whatever is
// reachable.
func (m Model) refreshCmd() tea.Cmd {
	ctx, refresher, hooks := m.ctx, m.refresher, m.hooks
	return func() tea.Msg {
		var err error
		if refresher != nil {
			err = refresher.RefreshNow(ctx)
		}
		if hooks != nil {
			hooks.RefreshAll(ctx)
		}
		return refreshDoneMsg{err: err}
	}
}

func (m Model) orderActionCmd(order shop.Order, cancel bool) tea.Cmd {
	ctx, hooks := m.ctx, m.hooks
	return func() tea.Msg {
		if hooks == nil {
			return actionDoneMsg{title: "Order update failed", err: errors.New("no data source")}
		}
		var (
			updated shop.Order
			err     error
		)
		if cancel {
			updated, err = hooks.CancelOrder(ctx, order.ID, cancelReason)
		} else {
			updated, err = hooks.AdvanceOrder(ctx, order.ID)
		}
		if err != nil {
			return actionDoneMsg{title: "Order update failed", err: err}
		}
		return actionDoneMsg{
			title:  "Order updated",
			detail: fmt.Sprintf("%s is now %s", shortID(updated.ID), updated.Status),
		}
	}
}

func (m Model) adjustStockCmd(product shop.Product, delta int) tea.Cmd {
	ctx, hooks := m.ctx, m.hooks
	return func() tea.Msg {
		if hooks == nil {
			return actionDoneMsg{title: "Stock update failed", err: errors.New("no data source")}
		}
		updated, err := hooks.AdjustStock(ctx, product.ID, delta, stockReason)
		if err != nil {
			return actionDoneMsg{title: "Stock update failed", err: err}
		}
		return actionDoneMsg{
			title:  "Stock updated",
			detail: fmt.Sprintf("%s: %d left", truncate(updated.Title, 30), updated.StockQuantity),
		}
	}
}

func (m Model) readLogsCmd() tea.Cmd {
	path := ""
	if m.config != nil {
		path = m.config.LogFile
	}
	return func() tea.Msg {
		if path == "" {
			return logLinesMsg{}
		}
		lines, err := logtail.Read(path, logTailLines)
		return logLinesMsg{entries: logtail.ParseAll(lines), err: err}
	}
}

// Run starts the Bubble Tea program and blocks until the user quits or ctx
// is canceled.
func Run(opts Options) error {
	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(m.ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && m.ctx.Err() != nil {
		return nil
	}
	return err
}
