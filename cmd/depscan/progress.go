// Copyright 2025 KrakLabs
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
)

// progressConfig controls whether and how a progress bar is rendered for a
// running analysis, derived once from the global CLI flags.
type progressConfig struct {
	enabled bool
}

// newProgressConfig derives progress-bar behavior from the global flags: a
// bar is shown unless the run is quiet or producing JSON output, both of
// which require stdout free of anything but the final payload.
func newProgressConfig(globals GlobalFlags) progressConfig {
	return progressConfig{enabled: !globals.Quiet && !globals.JSON}
}

// newProgressBar returns a progressbar.ProgressBar describing one stage of
// analysis, or nil when progress rendering is disabled.
func newProgressBar(cfg progressConfig, total int64, description string) *progressbar.ProgressBar {
	if !cfg.enabled {
		return nil
	}
	return progressbar.NewOptions64(total,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(30),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionOnCompletion(func() { _, _ = os.Stderr.WriteString("\n") }),
	)
}

// stageDescription returns a human-readable label for a depgraph.Stage value.
func stageDescription(stage string) string {
	switch stage {
	case "discovering":
		return "Discovering files"
	case "estimating":
		return "Estimating tree size"
	case "checking-cache":
		return "Checking cache"
	case "extracting":
		return "Extracting"
	case "integrating":
		return "Integrating graph"
	case "detecting-cycles":
		return "Detecting cycles"
	case "assembling":
		return "Assembling result"
	case "caching":
		return "Saving cache"
	default:
		return stage
	}
}
