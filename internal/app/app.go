package app

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/five82/stockroom/internal/config"
	"github.com/five82/stockroom/internal/connectivity"
	"github.com/five82/stockroom/internal/entity"
	"github.com/five82/stockroom/internal/export"
	"github.com/five82/stockroom/internal/notify"
	"github.com/five82/stockroom/internal/prefs"
	"github.com/five82/stockroom/internal/state"
	"github.com/five82/stockroom/internal/store"
	"github.com/five82/stockroom/internal/sweep"
	"github.com/five82/stockroom/internal/ui"
	"github.com/five82/stockroom/internal/wbimport"
)

// Options configure the Stockroom application.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/stockroom/prefs.toml
	PollEvery  int    // seconds; overrides sweep_interval when positive

	Demo    bool // memory store seeded with generated data
	Offline bool // start offline and stay there

	ExportTemplate string // write the product template and exit
	ImportWB       string // apply a Wildberries mapping file and exit
	DryRun         bool   // with ImportWB: report matches, write nothing

	// Out receives one-shot command output; nil means stdout.
	Out io.Writer
}

const (
	demoDSN     = "memory://"
	demoSeed    = 20240601
	uiTick      = time.Second
	toastBuffer = 16
)

// Run executes a one-shot command when one is requested, otherwise boots the
// TUI until the context is cancelled.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if opts.PollEvery > 0 {
		cfg.SweepInterval = time.Duration(opts.PollEvery) * time.Second
	}
	if opts.Demo {
		cfg.StoreDSN = demoDSN
	}
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}

	if opts.ExportTemplate != "" {
		if err := export.WriteTemplateFile(opts.ExportTemplate); err != nil {
			return fmt.Errorf("export template: %w", err)
		}
		fmt.Fprintf(out, "template written to %s\n", opts.ExportTemplate)
		return nil
	}

	if opts.ImportWB != "" {
		logger := log.New(os.Stderr, "", log.LstdFlags)
		client, err := openStore(ctx, cfg, opts.Demo, logger)
		if err != nil {
			return err
		}
		defer client.Close()
		return runImport(ctx, client, logger, opts, out)
	}

	logFile, err := openLogFile(cfg.LogFile)
	if err != nil {
		return err
	}
	defer logFile.Close()
	// The terminal belongs to the UI; stray log calls go to the file too.
	prevOutput := log.Writer()
	log.SetOutput(logFile)
	defer log.SetOutput(prevOutput)
	logger := log.New(logFile, "", log.LstdFlags)

	client, err := openStore(ctx, cfg, opts.Demo, logger)
	if err != nil {
		return err
	}
	defer client.Close()
	return runTUI(ctx, cfg, client, logger, opts)
}

func openStore(ctx context.Context, cfg config.Config, demo bool, logger *log.Logger) (store.Client, error) {
	client, err := store.Open(cfg.StoreDSN, store.Options{
		APIKey:      cfg.APIKey,
		RequestRate: cfg.RequestRate,
	})
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	if demo {
		if err := seedDemo(ctx, client, demoSeed, time.Now()); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("seed demo data: %w", err)
		}
		logger.Printf("[info] demo store seeded")
	}
	return client, nil
}

func runImport(ctx context.Context, client store.Client, logger *log.Logger, opts Options, out io.Writer) error {
	mappings, err := wbimport.ReadFile(opts.ImportWB)
	if err != nil {
		return fmt.Errorf("read mapping file: %w", err)
	}

	products := entity.NewProducts(client, entity.Options{Logger: logger})
	products.Activate(ctx)
	if err := products.View().LastError; err != nil {
		return fmt.Errorf("load products: %w", err)
	}

	report, err := wbimport.NewImporter(products, logger).Apply(ctx, mappings, opts.DryRun)
	if err != nil {
		return fmt.Errorf("import mappings: %w", err)
	}
	printReport(out, report)
	if n := len(report.Failed); n > 0 {
		return fmt.Errorf("import mappings: %d of %d rows failed", n, report.Rows)
	}
	return nil
}

func printReport(out io.Writer, r wbimport.Report) {
	fmt.Fprintf(out, "rows: %d, matched: %d, updated: %d, unchanged: %d\n", r.Rows, r.Matched, r.Updated, r.Unchanged)
	if r.DryRun {
		fmt.Fprintln(out, "dry run: no products were written")
	}
	for _, u := range r.Unmatched {
		fmt.Fprintf(out, "unmatched: %s\n", u)
	}
	for _, f := range r.Failed {
		fmt.Fprintf(out, "failed: %v\n", f)
	}
}

func runTUI(ctx context.Context, cfg config.Config, client store.Client, logger *log.Logger, opts Options) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	userPrefs := prefs.Load(opts.PrefsPath)

	signal, probe := selectSignal(ctx, cfg, opts.Offline)
	conn := state.NewConnectivity(false)
	sweeper := sweep.New(client, cfg.CriticalCollections, sweep.Options{Logger: logger})
	monitor := connectivity.New(signal, sweeper, conn, connectivity.Options{Interval: cfg.SweepInterval})

	hooks := entity.NewSet(client, entity.Options{Logger: logger})

	toasts := make(notify.Channel, toastBuffer)
	notifier := notify.New(notify.Multi{notify.LogSink{Logger: logger}, toasts}, notify.Options{
		Display:    cfg.ErrorDisplay,
		ClearAfter: cfg.ErrorClearAfter,
	})
	defer notifier.Close()

	var wg sync.WaitGroup
	if probe != nil {
		wg.Go(func() { probe.Run(ctx) })
	}
	wg.Go(func() { monitor.Run(ctx) })
	startLoader(ctx, &wg, hooks, conn, logger, defaultLoaderPoll)

	logger.Printf("[info] stockroom started: store %s, online %t", redactDSN(cfg.StoreDSN), conn.Online())

	err := ui.Run(ui.Options{
		Context:   ctx,
		Hooks:     hooks,
		Conn:      conn,
		Refresher: monitor,
		Notifier:  notifier,
		Toasts:    toasts,
		Config:    &cfg,
		Tick:      uiTick,
		ThemeName: userPrefs.Theme,
		View:      userPrefs.View,
		PrefsPath: opts.PrefsPath,
	})

	cancel()
	wg.Wait()
	return err
}

// selectSignal picks where connectivity comes from. Local stores are always
// reachable; remote ones are probed over TCP.
func selectSignal(ctx context.Context, cfg config.Config, offline bool) (connectivity.Signal, *connectivity.ProbeSignal) {
	if offline {
		return connectivity.NewManualSignal(false), nil
	}
	address := cfg.ProbeAddress
	if address == "" {
		derived, ok := connectivity.AddressFromDSN(cfg.StoreDSN)
		if !ok {
			return connectivity.NewManualSignal(true), nil
		}
		address = derived
	}
	probe := connectivity.NewProbeSignal(ctx, address, connectivity.ProbeOptions{Interval: cfg.ProbeInterval})
	return probe, probe
}

func openLogFile(path string) (*os.File, error) {
	if path == "" {
		return nil, fmt.Errorf("open log file: no log_file configured")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return f, nil
}

// redactDSN hides a password embedded in the DSN before it is logged.
func redactDSN(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil {
		return "<unparseable dsn>"
	}
	return u.Redacted()
}
