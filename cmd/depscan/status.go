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
	"encoding/json"
	"fmt"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/kraklabs/depscan/internal/errors"
	"github.com/kraklabs/depscan/internal/ui"
)

// runStatus executes the 'status' CLI command, reporting the stats left by
// the most recent 'depscan analyze' run.
//
// Flags:
//   - --json: Output results as JSON (accepted after the command as well as
//     as the global flag read from globals.JSON)
//
// Examples:
//
//	depscan status           Display formatted status
//	depscan status --json    Output as JSON for programmatic use
func runStatus(args []string, configPath string, globals GlobalFlags) {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	jsonFlag := fs.Bool("json", false, "Output results as JSON")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: depscan status [options]

Description:
  Display the stats recorded by the most recent 'depscan analyze' run:
  entity counts across the five graph levels, relationship and cycle
  counts, and cache effectiveness.

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  # Show human-readable status
  depscan status

  # Output as JSON for programmatic use
  depscan status --json

  # Pipe to jq for specific field extraction
  depscan status --json | jq '.methods'

`)
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if *jsonFlag {
		globals.JSON = true
	}

	cfg, cfgErr := LoadConfig(configPath)
	if cfgErr != nil {
		errors.FatalError(cfgErr, globals.JSON)
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

	cacheDir, err := cacheDirFromConfig(cfg, root)
	if err != nil {
		errors.FatalError(err, globals.JSON)
	}

	summary, ok := loadRunSummary(cacheDir)
	if !ok {
		if globals.JSON {
			_ = json.NewEncoder(os.Stdout).Encode(map[string]string{
				"project_id": cfg.ProjectID,
				"error":      "Project not analyzed yet. Run 'depscan analyze' first.",
			})
		} else {
			ui.Warningf("Project '%s' not analyzed yet.", cfg.ProjectID)
			ui.Info("Run 'depscan analyze' to analyze the repository.")
		}
		os.Exit(0)
	}

	if globals.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(summary)
		return
	}

	printStatus(summary)
}

func printStatus(s *runSummary) {
	ui.Header("Depscan Project Status")
	fmt.Printf("%s      %s\n", ui.Label("Project ID:"), s.ProjectID)
	fmt.Printf("%s   %s\n", ui.Label("Root Path:"), ui.DimText(s.RootPath))
	fmt.Printf("%s  %s\n", ui.Label("Last Run:"), s.Timestamp.Format("2006-01-02 15:04:05"))
	fmt.Println()

	ui.SubHeader("Graph Entities:")
	fmt.Printf("  Packages:       %s\n", ui.CountText(s.Packages))
	fmt.Printf("  Modules:        %s\n", ui.CountText(s.Modules))
	fmt.Printf("  Classes:        %s\n", ui.CountText(s.Classes))
	fmt.Printf("  Methods:        %s\n", ui.CountText(s.Methods))
	fmt.Printf("  Fields:         %s\n", ui.CountText(s.Fields))
	fmt.Println()

	ui.SubHeader("Relationships & Cycles:")
	fmt.Printf("  Relationships:  %s\n", ui.CountText(s.Relationships))
	fmt.Printf("  Cycles Found:   %s\n", ui.CountText(s.Cycles))
	fmt.Println()

	ui.SubHeader("Run Stats:")
	fmt.Printf("  Files Discovered: %s\n", ui.CountText(s.FilesDiscovered))
	fmt.Printf("  Files Analysed:   %s\n", ui.CountText(s.FilesAnalysed))
	fmt.Printf("  Files Reused:     %s\n", ui.CountText(s.FilesReused))
	fmt.Printf("  Files Skipped:    %s\n", ui.CountText(s.FilesSkipped))
	fmt.Printf("  Parse Errors:     %s\n", ui.CountText(s.ParseErrors))
	fmt.Printf("  Duration:         %dms\n", s.DurationMillis)
}
