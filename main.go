// rulekit keeps Surge rule lists and subconverter profiles tidy.
//
// Usage:
//
//	rulekit [flags] [all|fix|check]
//
// fix normalizes every .list file under the root and regenerates its header,
// check verifies rule/group block pairing in every .ini profile, and all
// (the default) does both.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/charmbracelet/log"

	"github.com/xxxbrian/surge-rulekit/internal/config"
	"github.com/xxxbrian/surge-rulekit/internal/geoip"
	"github.com/xxxbrian/surge-rulekit/internal/metrics"
	"github.com/xxxbrian/surge-rulekit/internal/report"
	"github.com/xxxbrian/surge-rulekit/internal/runner"
)

const (
	exitOK = iota
	exitFailure
	exitUsage
	exitStrict
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("rulekit", flag.ContinueOnError)
	configPath := fs.String("config", "", "Config file path (default rulekit.yaml if present)")
	root := fs.String("root", "", "Directory tree to process")
	workers := fs.Int("workers", 0, "Files processed concurrently")
	logLevel := fs.String("log-level", "", "Log level: debug, info, warn, error")
	dryRun := fs.Bool("dry-run", false, "Report needed changes without writing")
	strict := fs.Bool("strict", false, "Exit with status 3 on warnings or pending rewrites")
	geoipDB := fs.String("geoip-db", "", "MMDB used to annotate GEOIP rules in debug summaries (optional)")
	metricsFile := fs.String("metrics-file", "", "Write Prometheus textfile metrics here (optional)")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}

	mode, err := runner.ParseMode(fs.Arg(0))
	if err != nil || fs.NArg() > 1 {
		fmt.Fprintf(os.Stderr, "usage: rulekit [flags] [all|fix|check]\n")
		return exitUsage
	}

	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true})

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("Failed to load config", "err", err)
		return exitUsage
	}

	// Flags override the file and the environment only when given.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "root":
			cfg.Root = *root
		case "workers":
			cfg.Workers = *workers
		case "log-level":
			cfg.LogLevel = *logLevel
		case "dry-run":
			cfg.DryRun = *dryRun
		case "strict":
			cfg.Strict = *strict
		case "geoip-db":
			cfg.GeoIPDB = *geoipDB
		case "metrics-file":
			cfg.MetricsFile = *metricsFile
		}
	})
	if err := cfg.Validate(); err != nil {
		logger.Error("Invalid config", "err", err)
		return exitUsage
	}

	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		logger.Error("Invalid log level", "err", err)
		return exitUsage
	}
	logger.SetLevel(level)

	var catalog *geoip.Catalog
	if cfg.GeoIPDB != "" {
		catalog, err = geoip.Open(cfg.GeoIPDB)
		if err != nil {
			logger.Warn("GeoIP database unavailable, summaries will not be annotated", "err", err)
		} else {
			logger.Debug("Loaded GeoIP database", "path", cfg.GeoIPDB, "networks", catalog.Total())
		}
	}

	var m *metrics.Metrics
	if cfg.MetricsFile != "" {
		m = metrics.New()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	r := runner.New(runner.Options{
		Root:              cfg.Root,
		Workers:           cfg.Workers,
		DryRun:            cfg.DryRun,
		ListExtensions:    cfg.List.Extensions,
		ProfileExtensions: cfg.Profile.Extensions,
		Header:            cfg.Header(),
		Labels:            cfg.Labels(),
	}, report.New(logger, catalog), m)

	logger.Debug("Starting", "root", cfg.Root, "workers", cfg.Workers, "dry_run", cfg.DryRun)
	stats, runErr := r.Run(ctx, mode)

	if m != nil {
		if err := m.WriteTextfile(cfg.MetricsFile); err != nil {
			logger.Error("Failed to write metrics", "err", err)
		}
	}

	logger.Info("Done",
		"lists", stats.Lists,
		"updated", stats.Rewritten,
		"pending", stats.Pending,
		"profiles", stats.Profiles,
		"warnings", stats.Warnings,
		"failed", stats.Failed,
	)

	switch {
	case runErr != nil:
		if errors.Is(runErr, context.Canceled) {
			logger.Warn("Interrupted")
		} else {
			logger.Error("Run failed", "err", runErr)
		}
		return exitFailure
	case cfg.Strict && (stats.Warnings > 0 || stats.Pending > 0):
		logger.Warn("Strict mode: exiting with status " + strconv.Itoa(exitStrict))
		return exitStrict
	}
	return exitOK
}
