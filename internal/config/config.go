package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config holds everything Stockroom reads from its config file.
type Config struct {
	StoreDSN            string
	APIKey              string
	SweepInterval       time.Duration
	ProbeInterval       time.Duration
	ProbeAddress        string
	CriticalCollections []string
	ErrorDisplay        time.Duration
	ErrorClearAfter     time.Duration
	RequestRate         float64
	LogFile             string
	Marketplace         Marketplace
	Inventory           Inventory
}

// Marketplace tunes the marketplace estimate.
type Marketplace struct {
	WBSharePercent int
	WBAliases      []string
	OzonAliases    []string
}

// Inventory tunes the inventory summary.
type Inventory struct {
	LowStockThreshold int
}

const (
	defaultConfigPath      = "~/.config/stockroom/config.toml"
	defaultStoreDSN        = "memory://"
	defaultLogFile         = "~/.local/state/stockroom/stockroom.log"
	defaultSweepInterval   = 5 * time.Minute
	defaultProbeInterval   = 10 * time.Second
	defaultErrorDisplay    = 30 * time.Second
	defaultErrorClearAfter = 60 * time.Second
	defaultRequestRate     = 10
	defaultWBSharePercent  = 60
	defaultLowStock        = 5
)

var (
	defaultCriticalCollections = []string{"products", "orders", "customers", "inventory_history"}
	defaultWBAliases           = []string{"wb", "wildberries", "вб"}
	defaultOzonAliases         = []string{"ozon", "озон"}
)

type rawConfig struct {
	StoreDSN            string         `toml:"store_dsn" yaml:"store_dsn"`
	APIKey              string         `toml:"api_key" yaml:"api_key"`
	SweepInterval       string         `toml:"sweep_interval" yaml:"sweep_interval"`
	ProbeInterval       string         `toml:"probe_interval" yaml:"probe_interval"`
	ProbeAddress        string         `toml:"probe_address" yaml:"probe_address"`
	CriticalCollections []string       `toml:"critical_collections" yaml:"critical_collections"`
	ErrorDisplay        string         `toml:"error_display" yaml:"error_display"`
	ErrorClearAfter     string         `toml:"error_clear_after" yaml:"error_clear_after"`
	RequestRate         *float64       `toml:"request_rate" yaml:"request_rate"`
	LogFile             string         `toml:"log_file" yaml:"log_file"`
	Marketplace         rawMarketplace `toml:"marketplace" yaml:"marketplace"`
	Inventory           rawInventory   `toml:"inventory" yaml:"inventory"`
}

type rawMarketplace struct {
	WBSharePercent *int     `toml:"wb_share_percent" yaml:"wb_share_percent"`
	WBAliases      []string `toml:"wb_aliases" yaml:"wb_aliases"`
	OzonAliases    []string `toml:"ozon_aliases" yaml:"ozon_aliases"`
}

type rawInventory struct {
	LowStockThreshold int `toml:"low_stock_threshold" yaml:"low_stock_threshold"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		StoreDSN:            defaultStoreDSN,
		SweepInterval:       defaultSweepInterval,
		ProbeInterval:       defaultProbeInterval,
		CriticalCollections: slices.Clone(defaultCriticalCollections),
		ErrorDisplay:        defaultErrorDisplay,
		ErrorClearAfter:     defaultErrorClearAfter,
		RequestRate:         defaultRequestRate,
		LogFile:             mustExpand(defaultLogFile),
		Marketplace: Marketplace{
			WBSharePercent: defaultWBSharePercent,
			WBAliases:      slices.Clone(defaultWBAliases),
			OzonAliases:    slices.Clone(defaultOzonAliases),
		},
		Inventory: Inventory{LowStockThreshold: defaultLowStock},
	}
}

// Load locates and parses the config, falling back to defaults when missing.
// Files ending in .yaml or .yml are read as YAML, everything else as TOML.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw rawConfig
	switch strings.ToLower(filepath.Ext(resolved)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(bytes, &raw)
	default:
		err = toml.Unmarshal(bytes, &raw)
	}
	if err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	cfg, err := raw.resolve()
	if err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (raw rawConfig) resolve() (Config, error) {
	cfg := Default()

	if v := strings.TrimSpace(raw.StoreDSN); v != "" {
		cfg.StoreDSN = v
	}
	cfg.APIKey = strings.TrimSpace(raw.APIKey)
	cfg.ProbeAddress = strings.TrimSpace(raw.ProbeAddress)
	if v := strings.TrimSpace(raw.LogFile); v != "" {
		cfg.LogFile = mustExpand(v)
	}
	if cols := cleanList(raw.CriticalCollections); len(cols) > 0 {
		cfg.CriticalCollections = cols
	}
	if raw.RequestRate != nil {
		cfg.RequestRate = *raw.RequestRate
	}

	durations := []struct {
		name  string
		value string
		dest  *time.Duration
	}{
		{"sweep_interval", raw.SweepInterval, &cfg.SweepInterval},
		{"probe_interval", raw.ProbeInterval, &cfg.ProbeInterval},
		{"error_display", raw.ErrorDisplay, &cfg.ErrorDisplay},
		{"error_clear_after", raw.ErrorClearAfter, &cfg.ErrorClearAfter},
	}
	for _, d := range durations {
		v := strings.TrimSpace(d.value)
		if v == "" {
			continue
		}
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", d.name, err)
		}
		*d.dest = parsed
	}

	if raw.Marketplace.WBSharePercent != nil {
		cfg.Marketplace.WBSharePercent = *raw.Marketplace.WBSharePercent
	}
	if aliases := cleanList(raw.Marketplace.WBAliases); len(aliases) > 0 {
		cfg.Marketplace.WBAliases = aliases
	}
	if aliases := cleanList(raw.Marketplace.OzonAliases); len(aliases) > 0 {
		cfg.Marketplace.OzonAliases = aliases
	}
	if raw.Inventory.LowStockThreshold > 0 {
		cfg.Inventory.LowStockThreshold = raw.Inventory.LowStockThreshold
	}
	return cfg, nil
}

// Validate rejects settings the refresh machinery cannot run with.
func (c Config) Validate() error {
	var errs []error
	for _, d := range []struct {
		name  string
		value time.Duration
	}{
		{"sweep_interval", c.SweepInterval},
		{"probe_interval", c.ProbeInterval},
		{"error_display", c.ErrorDisplay},
		{"error_clear_after", c.ErrorClearAfter},
	} {
		if d.value <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %s", d.name, d.value))
		}
	}
	if c.RequestRate < 0 {
		errs = append(errs, fmt.Errorf("request_rate must not be negative, got %g", c.RequestRate))
	}
	if p := c.Marketplace.WBSharePercent; p < 0 || p > 100 {
		errs = append(errs, fmt.Errorf("marketplace.wb_share_percent must be within 0..100, got %d", p))
	}
	if len(c.CriticalCollections) == 0 {
		errs = append(errs, errors.New("critical_collections must not be empty"))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// DefaultPath returns the expanded default config location.
func DefaultPath() string {
	return mustExpand(defaultConfigPath)
}

func cleanList(values []string) []string {
	var out []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

// ExpandPath resolves a leading ~ and returns an absolute path.
func ExpandPath(path string) (string, error) {
	return expandPath(path)
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
