// Package config loads Stockroom's configuration file.
//
// # Configuration Discovery
//
// The Load function follows this resolution order:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/stockroom/config.toml
//  3. If the file doesn't exist, fall back to Default()
//  4. If the file exists but fields are missing/empty, use defaults per field
//
// Files ending in .yaml or .yml are parsed as YAML; anything else as TOML.
//
// # Default Values
//
//   - store_dsn: memory://
//   - sweep_interval: 5m
//   - probe_interval: 10s
//   - critical_collections: products, orders, customers, inventory_history
//   - error_display: 30s
//   - error_clear_after: 60s
//   - request_rate: 10 requests/second (REST backend only, 0 disables)
//   - log_file: ~/.local/state/stockroom/stockroom.log
//   - marketplace.wb_share_percent: 60
//   - inventory.low_stock_threshold: 5
//
// # TOML Format
//
//	store_dsn = "https://shop.example.com"
//	api_key = "service-role-key"
//	sweep_interval = "5m"
//	critical_collections = ["products", "orders", "customers", "inventory_history"]
//
//	[marketplace]
//	wb_share_percent = 60
//	wb_aliases = ["wb", "wildberries", "вб"]
//	ozon_aliases = ["ozon", "озон"]
//
//	[inventory]
//	low_stock_threshold = 5
//
// Durations use Go syntax ("90s", "5m"). Tilde expansion is applied to
// log_file.
//
// # Error Handling
//
// Load returns errors for:
//   - Path expansion failures (e.g., cannot determine home directory)
//   - File read errors (except os.ErrNotExist, which triggers defaults)
//   - Parse errors, including malformed durations
//   - Validate failures (non-positive durations, share outside 0..100)
//
// Missing config files are NOT an error. Stockroom starts against an empty
// in-memory store without any configuration.
package config
