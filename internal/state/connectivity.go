package state

import (
	"fmt"
	"sync"
	"time"
)

// ConnectivitySnapshot is a copy of the process-wide connectivity state.
type ConnectivitySnapshot struct {
	Online         bool
	LastSync       time.Time
	HasSynced      bool
	LastSweepError error
	Sweeps         int
	FailedSweeps   int
}

// Connectivity tracks whether the store is reachable and when the last
// successful sweep finished. The connectivity monitor is its only writer.
type Connectivity struct {
	mu       sync.RWMutex
	online   bool
	lastSync time.Time
	synced   bool
	sweepErr error
	sweeps   int
	failed   int
}

// NewConnectivity starts in the given state with no sync recorded.
func NewConnectivity(online bool) *Connectivity {
	return &Connectivity{online: online}
}

// SetOnline records the current reachability and reports whether it changed.
func (c *Connectivity) SetOnline(online bool) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.online == online {
		return false
	}
	c.online = online
	return true
}

// RecordSweep records a finished sweep. lastSync only moves forward on
// success.
func (c *Connectivity) RecordSweep(at time.Time, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sweeps++
	if err != nil {
		c.failed++
		c.sweepErr = err
		return
	}
	c.sweepErr = nil
	c.lastSync = at
	c.synced = true
}

func (c *Connectivity) Online() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.online
}

// Snapshot returns a copy of the current state.
func (c *Connectivity) Snapshot() ConnectivitySnapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	snap := ConnectivitySnapshot{
		Online:       c.online,
		LastSync:     c.lastSync,
		HasSynced:    c.synced,
		Sweeps:       c.sweeps,
		FailedSweeps: c.failed,
	}
	if c.sweepErr != nil {
		snap.LastSweepError = fmt.Errorf("%w", c.sweepErr)
	}
	return snap
}
