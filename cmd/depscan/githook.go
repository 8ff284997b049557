// Copyright 2025 KrakLabs
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/kraklabs/depscan/internal/errors"
	"github.com/kraklabs/depscan/internal/ui"
)

// hookMarker tags the section of a post-commit hook this binary owns, so a
// reinstall can detect and replace its own block instead of appending
// duplicates on every run.
const hookMarker = "# depscan:post-commit"

// hookScript is the shell snippet installed into .git/hooks/post-commit. It
// backgrounds the analyze run and discards output so a commit never blocks
// on it or prints analysis noise into the commit's own terminal.
const hookScript = hookMarker + `
if command -v depscan >/dev/null 2>&1; then
  (depscan --quiet analyze >/dev/null 2>&1 &)
fi
`

// findGitDir walks up from the current directory looking for a .git
// directory, the same way findConfigFile walks up looking for
// .depscan/project.yaml.
func findGitDir() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		gitDir := filepath.Join(dir, ".git")
		if info, statErr := os.Stat(gitDir); statErr == nil && info.IsDir() {
			return gitDir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("no .git directory found in %s or any parent directory", dir)
		}
		dir = parent
	}
}

// installHook writes or updates the post-commit hook at hookPath. If a hook
// already exists and doesn't carry our marker, it refuses to overwrite it
// unless force is set, to avoid clobbering a hook another tool installed.
func installHook(hookPath string, force bool) error {
	existing, err := os.ReadFile(hookPath) //nolint:gosec // G304: hookPath built from discovered .git dir
	if err == nil {
		if strings.Contains(string(existing), hookMarker) {
			return replaceHookBlock(hookPath, string(existing))
		}
		if !force {
			return fmt.Errorf("%s already exists and was not installed by depscan; rerun with force to overwrite", hookPath)
		}
	}

	if err := os.MkdirAll(filepath.Dir(hookPath), 0750); err != nil {
		return err
	}

	content := "#!/bin/sh\n" + hookScript
	if err := os.WriteFile(hookPath, []byte(content), 0750); err != nil { //nolint:gosec // G306: hooks must be executable
		return err
	}
	return nil
}

// replaceHookBlock swaps out a previously installed depscan block in place,
// preserving any other content the hook file carries.
func replaceHookBlock(hookPath, existing string) error {
	idx := strings.Index(existing, hookMarker)
	before := existing[:idx]
	after := ""
	if end := strings.Index(existing[idx:], "\nfi\n"); end >= 0 {
		after = existing[idx+end+len("\nfi\n"):]
	}
	updated := before + strings.TrimPrefix(hookScript, "\n") + after
	return os.WriteFile(hookPath, []byte(updated), 0750) //nolint:gosec // G306: hooks must be executable
}

// runInstallHook executes the 'install-hook' CLI command, installing a git
// post-commit hook that reanalyses the repository in the background after
// each commit.
func runInstallHook(args []string, globals GlobalFlags) {
	fs := flag.NewFlagSet("install-hook", flag.ExitOnError)
	force := fs.Bool("force", false, "Overwrite an existing post-commit hook not installed by depscan")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: depscan install-hook [options]

Description:
  Install a git post-commit hook that runs 'depscan --quiet analyze'
  in the background after each commit, keeping the analysis cache
  up-to-date without manual intervention.

Options:
`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	gitDir, err := findGitDir()
	if err != nil {
		errors.FatalError(errors.NewInputError(
			"Not a git repository",
			err.Error(),
			"Run this command from inside a git repository",
		), globals.JSON)
	}

	hookPath := filepath.Join(gitDir, "hooks", "post-commit")
	if err := installHook(hookPath, *force); err != nil {
		errors.FatalError(errors.NewPermissionError(
			"Cannot install git hook",
			err.Error(),
			"Check permissions on .git/hooks, or rerun with --force",
			err,
		), globals.JSON)
	}

	ui.Successf("Git hook installed: %s", hookPath)
}
