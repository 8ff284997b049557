// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// For commercial licensing, contact: licensing@kraklabs.com
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	flag "github.com/spf13/pflag"

	"github.com/kraklabs/depscan/internal/errors"
	"github.com/kraklabs/depscan/internal/ui"
	"github.com/kraklabs/depscan/pkg/depgraph"
)

var (
	metricsFilesProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "depscan_files_processed_total",
		Help: "Total number of source files processed across all analyze runs.",
	})
	metricsAnalysisDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name: "depscan_analysis_duration_seconds",
		Help: "Duration of analyze runs in seconds.",
	})
	metricsCacheHitRatio = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "depscan_cache_hit_ratio",
		Help: "Fraction of discovered files reused from cache in the most recent run.",
	})
)

// runAnalyze executes the 'analyze' CLI command, building the dependency
// graph for the current repository.
//
// Flags:
//   - --full: Force full reanalysis, ignoring the cache
//   - --debug: Enable debug logging
//   - --metrics-addr: HTTP address for Prometheus metrics (default: disabled)
//
// Examples:
//
//	depscan analyze                  Incremental analysis (only changed files)
//	depscan analyze --full           Force full reanalysis
func runAnalyze(args []string, configPath string, globals GlobalFlags) {
	fs := flag.NewFlagSet("analyze", flag.ExitOnError)
	full := fs.Bool("full", false, "Force full reanalysis, ignoring the cache")
	debug := fs.Bool("debug", false, "Enable debug logging")
	metricsAddr := fs.String("metrics-addr", "", "HTTP listen address for Prometheus metrics (empty to disable)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: depscan analyze [options]

Description:
  Analyze the current repository, building a five-level dependency
  graph (package, module, class, method, field) with import,
  inheritance, call, and attribute-access relationships, and detecting
  import and call cycles.

  Analysis runs incrementally by default, reusing cached results for
  files whose content hasn't changed since the last run. Use --full to
  force a complete reanalysis.

  Cached results are stored in .depscan/cache/.

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  # Initial analysis (or incremental update)
  depscan analyze

  # Force full reanalysis of the entire repository
  depscan analyze --full

  # Enable debug logging and expose metrics
  depscan analyze --debug --metrics-addr :9090

`)
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	cfg, err := LoadConfig(configPath)
	if err != nil {
		errors.FatalError(err, globals.JSON)
	}

	logLevel := slog.LevelWarn
	if globals.Verbose == 1 {
		logLevel = slog.LevelInfo
	} else if globals.Verbose >= 2 || *debug {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	if *metricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			srv := &http.Server{Addr: *metricsAddr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}
			logger.Info("depscan.metrics.start", "addr", *metricsAddr, "path", "/metrics")
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Warn("depscan.metrics.error", "err", err)
			}
		}()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		logger.Info("depscan.shutdown.signal", "signal", sig.String())
		cancel()
	}()

	root, err := os.Getwd()
	if err != nil {
		errors.FatalError(errors.NewInternalError(
			"Cannot access current directory",
			"Failed to determine working directory",
			"This is unexpected. Please report this issue",
			err,
		), globals.JSON)
	}

	cacheDir, err := cacheDirFromConfig(cfg, root)
	if err != nil {
		errors.FatalError(err, globals.JSON)
	}

	if *full {
		if err := os.RemoveAll(cacheDir); err != nil && !os.IsNotExist(err) {
			logger.Warn("depscan.cache.clear_error", "path", cacheDir, "err", err)
		} else {
			logger.Info("depscan.cache.cleared", "path", cacheDir)
		}
	}

	opts := depgraph.Options{
		ExcludePatterns:      cfg.Analysis.Exclude,
		MaxWorkers:           cfg.Analysis.MaxWorkers,
		EnableCaching:        cfg.Analysis.EnableCaching,
		CacheDir:             cacheDir,
		EnableQualityMetrics: cfg.Analysis.EnableQualityMetrics,
		MaxMemoryMB:          cfg.Analysis.MaxMemoryMB,
		MaxFileSizeBytes:     cfg.Analysis.MaxFileSize,
		Logger:               logger,
	}

	progressCfg := newProgressConfig(globals)
	bar := newProgressBar(progressCfg, 1, "Analyzing")
	var lastStage depgraph.Stage

	sink := depgraph.ProgressSink(func(p depgraph.Progress) {
		if bar == nil {
			return
		}
		if p.Stage != lastStage {
			lastStage = p.Stage
			bar.Describe(stageDescription(string(p.Stage)))
		}
		if p.TotalFiles > 0 {
			bar.ChangeMax(p.TotalFiles)
			_ = bar.Set(p.FilesProcessed)
		} else {
			_ = bar.Set64(int64(p.Fraction * 100))
		}
	})

	logger.Info("depscan.analyze.start", "root", root)

	result, err := depgraph.Analyse(ctx, root, opts, sink)
	if bar != nil {
		_ = bar.Finish()
	}
	if err != nil {
		errors.FatalError(errors.NewInternalError(
			"Analysis failed",
			"An error occurred while analyzing the repository",
			"Check the error details above. If this persists, try 'depscan reset --yes'",
			err,
		), globals.JSON)
	}

	metricsFilesProcessed.Add(float64(result.Metrics.FilesAnalysed))
	metricsAnalysisDuration.Observe(float64(result.Metrics.DurationMillis) / 1000.0)
	if result.Metrics.FilesDiscovered > 0 {
		metricsCacheHitRatio.Set(float64(result.Metrics.FilesReused) / float64(result.Metrics.FilesDiscovered))
	}

	summary := newRunSummary(cfg.ProjectID, result)
	if saveErr := saveRunSummary(cacheDir, summary, time.Now()); saveErr != nil {
		logger.Warn("depscan.summary.save_error", "err", saveErr)
	}

	if globals.JSON {
		printAnalysisJSON(result)
		return
	}
	printAnalysisResult(result)
}

func printAnalysisJSON(result *depgraph.AnalysisResult) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(result)
}

func printAnalysisResult(result *depgraph.AnalysisResult) {
	fmt.Println()

	if result.Metrics.FilesAnalysed == 0 && result.Metrics.FilesReused > 0 {
		ui.Header("Analysis Up to Date")
		_, _ = ui.Green.Println("Everything is already analyzed. No changes detected.")
		fmt.Println()
		fmt.Println("To force a full reanalysis:")
		fmt.Println("  depscan analyze --full")
		return
	}

	g := result.DependencyGraph

	ui.Header("Analysis Complete")
	fmt.Printf("Files Discovered: %s\n", ui.CountText(result.Metrics.FilesDiscovered))
	fmt.Printf("Files Analysed:   %s", ui.CountText(result.Metrics.FilesAnalysed))
	if result.Metrics.ParseErrors > 0 {
		_, _ = ui.Yellow.Printf(" (%d parse errors)\n", result.Metrics.ParseErrors)
	} else {
		_, _ = ui.Green.Println(" ✓")
	}
	fmt.Printf("Files Reused:     %s\n", ui.CountText(result.Metrics.FilesReused))
	fmt.Printf("Files Skipped:    %s\n", ui.CountText(result.Metrics.FilesSkipped))
	fmt.Println()

	ui.SubHeader("Graph:")
	fmt.Printf("  Packages: %s\n", ui.CountText(len(g.Packages)))
	fmt.Printf("  Modules:  %s\n", ui.CountText(len(g.Modules)))
	fmt.Printf("  Classes:  %s\n", ui.CountText(len(g.Classes)))
	fmt.Printf("  Methods:  %s\n", ui.CountText(len(g.Methods)))
	fmt.Printf("  Fields:   %s\n", ui.CountText(len(g.Fields)))
	fmt.Printf("  Relationships: %s\n", ui.CountText(len(result.Relationships)))

	if len(result.Cycles) > 0 {
		fmt.Println()
		_, _ = ui.Yellow.Printf("Cyclic Dependencies: %d\n", len(result.Cycles))
	}

	fmt.Println()
	ui.SubHeader("Timing:")
	fmt.Printf("  Total: %s\n", ui.DimText(fmt.Sprintf("%dms", result.Metrics.DurationMillis)))
}
