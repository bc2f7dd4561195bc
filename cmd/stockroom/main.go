package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/five82/stockroom/internal/app"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "config path (optional, defaults to ~/.config/stockroom/config.toml)")
	pollSeconds := flag.Int("poll", 0, "sweep interval in seconds (optional, overrides sweep_interval)")
	demo := flag.Bool("demo", false, "use an in-memory store filled with generated data")
	offline := flag.Bool("offline", false, "start offline; no sweeps run")
	exportTemplate := flag.String("export-template", "", "write the product import template (.csv or .xlsx) and exit")
	importWB := flag.String("import-wb", "", "apply a Wildberries SKU mapping file (.csv or .xlsx) and exit")
	dryRun := flag.Bool("dry-run", false, "with -import-wb: report matches without writing")
	flag.Parse()

	if *dryRun && *importWB == "" {
		fmt.Fprintln(os.Stderr, "stockroom: -dry-run requires -import-wb")
		return 2
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	opts := app.Options{
		ConfigPath:     *configPath,
		Demo:           *demo,
		Offline:        *offline,
		ExportTemplate: *exportTemplate,
		ImportWB:       *importWB,
		DryRun:         *dryRun,
	}
	if poll := *pollSeconds; poll > 0 {
		opts.PollEvery = poll
	}

	if err := app.Run(ctx, opts); err != nil {
		fmt.Fprintf(os.Stderr, "stockroom: %v\n", err)
		return 1
	}
	return 0
}
