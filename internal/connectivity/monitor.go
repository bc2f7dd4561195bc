package connectivity

import (
	"context"
	"sync"
	"time"

	"github.com/five82/stockroom/internal/state"
)

const DefaultSweepInterval = 5 * time.Minute

// Sweeper runs one cross-collection refresh sweep.
type Sweeper interface {
	Run(ctx context.Context) error
}

// Options configure a Monitor.
type Options struct {
	// Interval between sweeps while online.
	Interval time.Duration
	Now      func() time.Time
}

// Monitor follows a Signal and keeps state.Connectivity current. Going online
// runs one sweep at once and starts a ticker; going offline stops the ticker
// and touches no data. At most one ticker exists at a time.
type Monitor struct {
	signal   Signal
	sweeper  Sweeper
	conn     *state.Connectivity
	interval time.Duration
	now      func() time.Time

	wg sync.WaitGroup
}

// New reads the initial state from signal.
func New(signal Signal, sweeper Sweeper, conn *state.Connectivity, opts Options) *Monitor {
	interval := opts.Interval
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	conn.SetOnline(signal.Online())
	return &Monitor{
		signal:   signal,
		sweeper:  sweeper,
		conn:     conn,
		interval: interval,
		now:      now,
	}
}

// Run blocks until ctx is done, then waits for in-flight sweeps.
func (m *Monitor) Run(ctx context.Context) {
	var ticker *time.Ticker
	var tick <-chan time.Time
	stop := func() {
		if ticker != nil {
			ticker.Stop()
			ticker = nil
			tick = nil
		}
	}
	start := func() {
		stop()
		ticker = time.NewTicker(m.interval)
		tick = ticker.C
	}
	defer func() {
		stop()
		m.wg.Wait()
	}()

	if m.conn.Online() {
		start()
	}
	changes := m.signal.Changes()
	for {
		select {
		case <-ctx.Done():
			return
		case online, ok := <-changes:
			if !ok {
				changes = nil
				continue
			}
			if !m.conn.SetOnline(online) {
				continue
			}
			if online {
				start()
				m.launch(ctx)
			} else {
				stop()
			}
		case <-tick:
			m.launch(ctx)
		}
	}
}

func (m *Monitor) launch(ctx context.Context) {
	m.wg.Go(func() {
		_ = m.RefreshNow(ctx)
	})
}

// RefreshNow runs one sweep and records its outcome. lastSync only moves on
// success.
func (m *Monitor) RefreshNow(ctx context.Context) error {
	err := m.sweeper.Run(ctx)
	m.conn.RecordSweep(m.now(), err)
	return err
}
