package state

import (
	"errors"
	"testing"
	"time"
)

func TestConnectivity_SetOnlineReportsChanges(t *testing.T) {
	c := NewConnectivity(false)

	if c.SetOnline(false) {
		t.Fatal("SetOnline(false) reported a change while offline")
	}
	if !c.SetOnline(true) {
		t.Fatal("SetOnline(true) did not report the transition")
	}
	if !c.Online() {
		t.Fatal("Online() = false after going online")
	}
	if c.SetOnline(true) {
		t.Fatal("repeated SetOnline(true) reported a change")
	}
}

func TestConnectivity_LastSyncOnlyMovesOnSuccess(t *testing.T) {
	c := NewConnectivity(true)

	c.RecordSweep(time.Now(), errors.New("probe orders: boom"))
	snap := c.Snapshot()
	if snap.HasSynced || !snap.LastSync.IsZero() {
		t.Fatalf("failed sweep set lastSync: %#v", snap)
	}
	if snap.LastSweepError == nil {
		t.Fatal("LastSweepError = nil after failure")
	}

	synced := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	c.RecordSweep(synced, nil)
	c.RecordSweep(synced.Add(time.Minute), errors.New("again"))

	snap = c.Snapshot()
	if !snap.HasSynced || !snap.LastSync.Equal(synced) {
		t.Fatalf("LastSync = %v, want %v", snap.LastSync, synced)
	}
	if snap.Sweeps != 3 || snap.FailedSweeps != 2 {
		t.Fatalf("sweeps = %d failed = %d, want 3/2", snap.Sweeps, snap.FailedSweeps)
	}
}
