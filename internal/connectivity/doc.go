// Package connectivity tracks whether the record store is reachable and
// schedules the cross-collection refresh sweep.
//
// A Monitor has two states, online and offline, seeded from a Signal at
// construction:
//
//	offline → online   mark online, run one sweep now, start the ticker
//	online  → offline  mark offline, stop the ticker
//	tick (online)      run one sweep
//
// Sweeps run on their own goroutines; Run waits for them before it returns.
// ProbeSignal turns periodic TCP dials to the store host into transitions;
// ManualSignal is flipped by hand.
package connectivity
