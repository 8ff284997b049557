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

// Package main implements the depscan CLI for building and inspecting a
// Python dependency graph.
//
// Usage:
//
//	depscan init                Create .depscan/project.yaml configuration
//	depscan analyze              Analyze the current repository
//	depscan status [--json]      Show the last analysis's stats
//	depscan reset --yes          Delete the analysis cache
package main

import (
	"fmt"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/kraklabs/depscan/internal/ui"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// GlobalFlags holds the global CLI flags that apply to all commands.
type GlobalFlags struct {
	JSON    bool
	NoColor bool
	Verbose int
	Quiet   bool
}

func main() {
	var (
		showVersion = flag.BoolP("version", "V", false, "Show version and exit")
		configPath  = flag.StringP("config", "c", "", "Path to .depscan/project.yaml (default: ./.depscan/project.yaml)")
		jsonOutput  = flag.Bool("json", false, "Output in JSON format (for applicable commands)")
		noColor     = flag.Bool("no-color", false, "Disable color output")
		verbose     = flag.CountP("verbose", "v", "Increase verbosity (-v for info, -vv for debug)")
		quiet       = flag.BoolP("quiet", "q", false, "Suppress non-essential output (progress, info messages)")
	)

	// Stop parsing at the first non-flag argument (the command name), so
	// subcommand-specific flags like "analyze --full" or "reset --yes" reach
	// the subcommand's own flag set instead of being rejected here.
	flag.SetInterspersed(false)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `depscan - Python dependency graph analyzer

depscan parses a Python source tree into a five-level dependency graph
(package, module, class, method, field), resolves import, inheritance,
call, and attribute-access relationships across files, and detects
import and call cycles.

Usage:
  depscan <command> [options]

Commands:
  init          Create .depscan/project.yaml configuration
  analyze       Analyze the current repository
  status        Show the last analysis's stats
  reset         Delete the analysis cache (destructive!)
  completion    Generate shell completion script (bash|zsh|fish)

Global Options:
  --json            Output in JSON format (for applicable commands)
  --no-color        Disable color output (respects NO_COLOR env var)
  -v, --verbose     Increase verbosity (-v for info, -vv for debug)
  -q, --quiet       Suppress non-essential output (progress, info messages)
  -c, --config      Path to .depscan/project.yaml
  -V, --version     Show version and exit

Examples:
  depscan init                       Create configuration interactively
  depscan analyze                    Analyze the current repository
  depscan analyze --full             Force full reanalysis, ignoring the cache
  depscan status                     Show stats from the last analysis
  depscan status --json              Output as JSON
  depscan completion bash            Generate bash completion script

Getting Started:
  1. Initialize configuration:  depscan init
  2. Analyze your repository:   depscan analyze
  3. Check analysis status:     depscan status

For detailed command help: depscan <command> --help

`)
	}

	flag.Parse()

	if *showVersion {
		fmt.Printf("depscan version %s\n", version)
		fmt.Printf("commit: %s\n", commit)
		fmt.Printf("built: %s\n", date)
		os.Exit(0)
	}

	if os.Getenv("NO_COLOR") != "" {
		*noColor = true
	}

	if *quiet && *verbose > 0 {
		fmt.Fprintf(os.Stderr, "Error: cannot use --quiet and --verbose together\n")
		os.Exit(1)
	}

	// JSON mode auto-enables quiet to prevent progress bars corrupting JSON output.
	if *jsonOutput {
		*quiet = true
	}

	globals := GlobalFlags{
		JSON:    *jsonOutput,
		NoColor: *noColor,
		Verbose: *verbose,
		Quiet:   *quiet,
	}

	ui.InitColors(globals.NoColor)

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(1)
	}

	command := args[0]
	cmdArgs := args[1:]

	switch command {
	case "init":
		runInit(cmdArgs, globals)
	case "analyze":
		runAnalyze(cmdArgs, *configPath, globals)
	case "status":
		runStatus(cmdArgs, *configPath, globals)
	case "reset":
		runReset(cmdArgs, *configPath, globals)
	case "install-hook":
		runInstallHook(cmdArgs, globals)
	case "completion":
		runCompletion(cmdArgs, globals)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		flag.Usage()
		os.Exit(1)
	}
}
