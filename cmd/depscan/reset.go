// Copyright 2025 KrakLabs
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"fmt"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/kraklabs/depscan/internal/errors"
	"github.com/kraklabs/depscan/internal/ui"
)

// runReset executes the 'reset' CLI command, deleting the analysis cache.
func runReset(args []string, configPath string, globals GlobalFlags) {
	fs := flag.NewFlagSet("reset", flag.ExitOnError)
	confirm := fs.Bool("yes", false, "Confirm the reset (required)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: depscan reset [options]

Description:
  WARNING: This is a destructive operation that deletes the analysis
  cache for the current project.

  Removes the configured cache directory (default: .depscan/cache/),
  including every cached file fingerprint and parsed extraction result.

  Use this if the cache appears stale or corrupted. The next 'depscan
  analyze' will reanalyse every file from scratch.

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  # Reset the analysis cache
  depscan reset --yes

Notes:
  This only affects the cache. Configuration (.depscan/project.yaml) is
  not deleted. To also reset configuration, delete .depscan/project.yaml
  manually or use 'depscan init --force'.

`)
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	if !*confirm {
		errors.FatalError(errors.NewInputError(
			"Confirmation required",
			"The --yes flag is required to confirm this destructive operation",
			"Run 'depscan reset --yes' to confirm that you want to delete the analysis cache",
		), false)
	}

	root, err := os.Getwd()
	if err != nil {
		errors.FatalError(errors.NewInternalError(
			"Cannot access working directory",
			"Failed to determine current directory path",
			"Check system permissions and try again",
			err,
		), globals.JSON)
	}

	cfg, cfgErr := LoadConfig(configPath)
	if cfgErr != nil {
		cfg = nil
	}

	cacheDir, err := cacheDirFromConfig(cfg, root)
	if err != nil {
		errors.FatalError(err, globals.JSON)
	}

	if _, err := os.Stat(cacheDir); os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "No analysis cache found at %s\n", cacheDir)
		return
	}

	fmt.Printf("Resetting cache (deleting %s)...\n", cacheDir)

	if err := os.RemoveAll(cacheDir); err != nil {
		errors.FatalError(errors.NewPermissionError(
			"Cannot delete cache directory",
			fmt.Sprintf("Failed to remove %s - permission denied or file locked", cacheDir),
			"Check directory permissions, ensure no other depscan processes are running, and try again",
			err,
		), false)
	}

	ui.Success("Reset complete. The analysis cache has been deleted.")
	fmt.Println()
	fmt.Println("Next steps:")
	fmt.Println("  depscan analyze    Reanalyze the project")
}
