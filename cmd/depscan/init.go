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
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/kraklabs/depscan/internal/errors"
	"github.com/kraklabs/depscan/internal/ui"
)

// runInit executes the 'init' CLI command, creating a
// .depscan/project.yaml configuration file. It can also install a git
// post-commit hook that reanalyses the repository automatically.
//
// Flags:
//   - --force: Overwrite existing configuration (default: false)
//   - -y: Non-interactive mode, use all defaults (default: false)
//   - --project-id: Project identifier (default: directory name)
//   - --no-hook: Skip git hook installation
//   - --hook: Install git hook without prompting
//
// Examples:
//
//	depscan init               Interactive setup
//	depscan init -y             Use all defaults
//	depscan init --hook         Initialize and install git hook
//
// initFlags holds parsed flags for the init command.
type initFlags struct {
	force, nonInteractive, noHook, withHook bool
	projectID                               string
}

func runInit(args []string, globals GlobalFlags) {
	flags := parseInitFlags(args)

	cwd, err := os.Getwd()
	if err != nil {
		errors.FatalError(errors.NewInternalError(
			"Cannot access working directory",
			"Failed to determine current directory path",
			"This is unexpected. Please report this issue if it persists",
			err,
		), false)
	}

	configPath := ConfigPath(cwd)
	if _, err := os.Stat(configPath); err == nil && !flags.force {
		errors.FatalError(errors.NewInputError(
			"Configuration already exists",
			fmt.Sprintf("%s already exists in this directory", configPath),
			"Use 'depscan init --force' to overwrite the existing configuration",
		), false)
	}

	cfg := createInitConfig(cwd, flags)
	reader := bufio.NewReader(os.Stdin)

	if !flags.nonInteractive {
		runInteractiveConfig(reader, cfg)
	}

	saveInitConfig(cwd, configPath, cfg)
	handleHookInstallation(reader, flags)
	printNextSteps(flags.noHook)
}

func parseInitFlags(args []string) initFlags {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	var f initFlags
	fs.BoolVar(&f.force, "force", false, "Overwrite existing configuration")
	fs.BoolVarP(&f.nonInteractive, "yes", "y", false, "Non-interactive mode (use defaults)")
	fs.StringVar(&f.projectID, "project-id", "", "Project identifier")
	fs.BoolVar(&f.noHook, "no-hook", false, "Skip git hook installation (hook is installed by default)")
	fs.BoolVar(&f.withHook, "hook", false, "Install git hook without prompting (for scripts)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: depscan init [options]

Description:
  Create a .depscan/project.yaml configuration file for the current
  repository.

  By default, runs in interactive mode with prompts for each setting.
  Use -y for non-interactive mode with sensible defaults.

  The configuration defines the project identifier and the analysis
  settings (exclusions, worker count, caching, memory ceiling).

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  # Interactive setup with prompts
  depscan init

  # Non-interactive with all defaults
  depscan init -y

  # Initialize and install git hook for auto-reanalysis
  depscan init --hook

  # Custom project ID (default: directory name)
  depscan init --project-id my-awesome-project

Notes:
  Configuration is stored in .depscan/project.yaml in the repository
  root. You can edit this file manually or re-run init with --force to
  recreate.

`)
	}
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	return f
}

func createInitConfig(cwd string, f initFlags) *Config {
	pid := f.projectID
	if pid == "" {
		pid = filepath.Base(cwd)
	}
	return DefaultConfig(pid)
}

func runInteractiveConfig(reader *bufio.Reader, cfg *Config) {
	ui.Header("Depscan Project Configuration")
	fmt.Println()

	cfg.ProjectID = prompt(reader, "Project ID", cfg.ProjectID)

	maxWorkersStr := prompt(reader, "Max worker threads (0 = auto)", "0")
	if maxWorkersStr != "" {
		var workers int
		if _, err := fmt.Sscanf(maxWorkersStr, "%d", &workers); err == nil && workers >= 0 {
			cfg.Analysis.MaxWorkers = workers
		}
	}

	fmt.Println()
}

func saveInitConfig(cwd, configPath string, cfg *Config) {
	dir := ConfigDir(cwd)
	if err := os.MkdirAll(dir, 0750); err != nil {
		errors.FatalError(errors.NewPermissionError(
			"Cannot create .depscan directory",
			fmt.Sprintf("Permission denied creating directory: %s", dir),
			"Check directory permissions or run with appropriate privileges",
			err,
		), false)
	}
	if err := SaveConfig(cfg, configPath); err != nil {
		errors.FatalError(errors.NewPermissionError(
			"Cannot save configuration file",
			fmt.Sprintf("Failed to write %s", configPath),
			"Check directory permissions and available disk space",
			err,
		), false)
	}
	ui.Successf("Created %s", configPath)
	addToGitignore(cwd)
}

func handleHookInstallation(reader *bufio.Reader, f initFlags) {
	if f.noHook {
		return
	}
	shouldInstall := f.withHook
	if !f.withHook && !f.nonInteractive {
		fmt.Println()
		hookAnswer := prompt(reader, "Install git hook for auto-reanalysis? (Y/n)", "y")
		hookAnswer = strings.ToLower(strings.TrimSpace(hookAnswer))
		shouldInstall = hookAnswer != "n" && hookAnswer != "no"
	} else if f.nonInteractive {
		shouldInstall = true
	}

	if !shouldInstall {
		return
	}
	gitDir, err := findGitDir()
	if err != nil {
		ui.Warningf("cannot find .git directory: %v", err)
		return
	}
	hookPath := filepath.Join(gitDir, "hooks", "post-commit")
	if err := installHook(hookPath, false); err != nil {
		ui.Warningf("cannot install git hook: %v", err)
	} else {
		ui.Successf("Git hook installed: %s", hookPath)
	}
}

func printNextSteps(noHook bool) {
	fmt.Println()
	ui.SubHeader("Next steps:")
	fmt.Printf("  1. Review and edit %s if needed\n", ui.DimText(".depscan/project.yaml"))
	fmt.Printf("  2. Run '%s' to analyze your repository\n", ui.Cyan.Sprint("depscan analyze"))
	fmt.Printf("  3. Run '%s' to verify the analysis\n", ui.Cyan.Sprint("depscan status"))
	if noHook {
		fmt.Println()
		ui.Infof("Tip: Run '%s' to enable auto-reanalysis on each commit", ui.Cyan.Sprint("depscan install-hook"))
	}
}

// prompt displays an interactive prompt and reads user input from stdin.
//
// If the user presses Enter without providing input, the defaultValue is
// returned.
func prompt(reader *bufio.Reader, label, defaultValue string) string {
	if defaultValue != "" {
		fmt.Printf("%s [%s]: ", label, defaultValue)
	} else {
		fmt.Printf("%s: ", label)
	}

	input, _ := reader.ReadString('\n')
	input = strings.TrimSpace(input)

	if input == "" {
		return defaultValue
	}
	return input
}

// addToGitignore adds .depscan/ to the project's .gitignore file if not
// already present. It safely appends the entry, avoiding duplicates. If
// .gitignore does not exist or cannot be modified, it silently returns.
func addToGitignore(dir string) {
	gitignorePath := filepath.Join(dir, ".gitignore")

	content, err := os.ReadFile(gitignorePath) //nolint:gosec // G304: gitignorePath built from repo dir
	if err != nil {
		return
	}

	lines := strings.Split(string(content), "\n")
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == ".depscan/" || line == ".depscan" || line == "/.depscan/" || line == "/.depscan" {
			return
		}
	}

	f, err := os.OpenFile(gitignorePath, os.O_APPEND|os.O_WRONLY, 0600) //nolint:gosec // G304: gitignorePath built from repo dir
	if err != nil {
		return
	}
	defer func() { _ = f.Close() }()

	if len(content) > 0 && content[len(content)-1] != '\n' {
		_, _ = f.WriteString("\n")
	}

	_, _ = f.WriteString("\n# depscan analysis cache\n.depscan/\n")
	fmt.Println("Added .depscan/ to .gitignore")
}
