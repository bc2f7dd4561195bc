// Package state holds the thread-safe client-side state shared between the
// background refresh machinery and the UI.
//
// # Core Types
//
// Cache[T]:
//   - Cached view of one remote collection (items, loading flag, last error)
//   - Zero value is usable and reports Loading until the first Update
//   - Failed updates keep the previous items and count consecutive failures
//   - Begin/UpdateSeq drop outcomes older than one already applied
//
// Connectivity:
//   - Process-wide online flag plus the time of the last successful sweep
//   - Written only by the connectivity monitor; everyone else reads snapshots
//
// # Update Semantics
//
//	// Success case: replace items
//	cache.Update(items, nil)
//	→ view.Items = items
//	→ view.Loading = false
//	→ view.LastError = nil
//
//	// Error case: keep old items, record error
//	cache.Update(nil, err)
//	→ view.Items = <unchanged>
//	→ view.Loading = false
//	→ view.LastError = err
//
// Stale-but-present data is always preferred to an empty screen.
//
// # Concurrency Model
//
// Both types use a sync.RWMutex held only while copying. Snapshots clone the
// item slice and the error value so readers never share memory with writers.
package state
