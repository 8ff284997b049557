// Copyright 2025 KrakLabs
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"fmt"
	"os"

	"github.com/kraklabs/depscan/internal/errors"
)

// depscan uses pflag rather than cobra, so there is no framework-generated
// completion; these are small hand-written scripts covering the fixed
// command set.

const bashCompletion = `_depscan_completions() {
  local cur commands
  cur="${COMP_WORDS[COMP_CWORD]}"
  commands="init analyze status reset install-hook completion"
  COMPREPLY=($(compgen -W "${commands}" -- "${cur}"))
}
complete -F _depscan_completions depscan
`

const zshCompletion = `#compdef depscan
_depscan() {
  local -a commands
  commands=(
    'init:Create .depscan/project.yaml configuration'
    'analyze:Analyze the current repository'
    'status:Show the last analysis stats'
    'reset:Delete the analysis cache'
    'install-hook:Install git post-commit hook'
    'completion:Generate shell completion script'
  )
  _describe 'command' commands
}
_depscan
`

const fishCompletion = `complete -c depscan -f
complete -c depscan -n "__fish_use_subcommand" -a "init" -d "Create .depscan/project.yaml configuration"
complete -c depscan -n "__fish_use_subcommand" -a "analyze" -d "Analyze the current repository"
complete -c depscan -n "__fish_use_subcommand" -a "status" -d "Show the last analysis stats"
complete -c depscan -n "__fish_use_subcommand" -a "reset" -d "Delete the analysis cache"
complete -c depscan -n "__fish_use_subcommand" -a "install-hook" -d "Install git post-commit hook"
complete -c depscan -n "__fish_use_subcommand" -a "completion" -d "Generate shell completion script"
`

// runCompletion executes the 'completion' CLI command, writing a shell
// completion script for bash, zsh, or fish to stdout.
func runCompletion(args []string, globals GlobalFlags) {
	if len(args) != 1 {
		errors.FatalError(errors.NewInputError(
			"Missing shell argument",
			"completion requires exactly one shell name",
			"Run 'depscan completion bash|zsh|fish'",
		), globals.JSON)
	}

	var script string
	switch args[0] {
	case "bash":
		script = bashCompletion
	case "zsh":
		script = zshCompletion
	case "fish":
		script = fishCompletion
	default:
		errors.FatalError(errors.NewInputError(
			"Unsupported shell",
			fmt.Sprintf("%q is not a supported shell", args[0]),
			"Run 'depscan completion bash|zsh|fish'",
		), globals.JSON)
	}

	fmt.Fprint(os.Stdout, script)
}
