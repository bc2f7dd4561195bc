// Package app provides the orchestration layer for the Stockroom application.
//
// # Overview
//
// This package wires configuration, the record store, the entity hooks, the
// connectivity monitor and the notifier to the TUI. It is the composition
// root: every long-lived object is built here and handed to the packages that
// use it.
//
// # Startup
//
//  1. Load the config (~/.config/stockroom/config.toml by default)
//  2. Run a one-shot command and return when -export-template or -import-wb
//     is set
//  3. Redirect logging to log_file; the terminal belongs to the UI
//  4. Open the store from store_dsn (seeded with generated data under -demo)
//  5. Pick a connectivity signal: manual for -offline and local stores, a TCP
//     probe of the store host otherwise
//  6. Start the probe, the connectivity monitor and the background loader
//  7. Start the TUI and block until the user exits or the context ends
//
// # Components
//
//   - app.go: Run, the one-shot commands and signal selection
//   - loader.go: background activation of the hooks; collections whose first
//     load failed are reloaded once per later successful sweep
//   - seed.go: demo data generated with gofakeit
//
// # Data Flow
//
//	┌──────────────┐
//	│   Run()      │
//	└──────┬───────┘
//	       ├─────> config.Load()        Read config
//	       ├─────> store.Open()         memory / REST / postgres / sqlite
//	       ├─────> selectSignal()       ManualSignal or ProbeSignal
//	       ├─────> connectivity.New()   Sweep on reconnect and on a ticker
//	       ├─────> startLoader()        Activate hooks, reload after sweeps
//	       └─────> ui.Run()             Start TUI (blocks)
//
// # Error Handling
//
// Run returns fatal errors: an unreadable or invalid config, a store DSN that
// cannot be opened, a log file that cannot be created, and one-shot command
// failures. Everything after startup is recoverable: failed refreshes keep the
// previous rows and are shown as stale, failed actions reach the persistent
// error notifier, and failed sweeps leave the last sync time unchanged.
package app
