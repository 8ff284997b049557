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

// Package errors defines the depscan CLI's typed, user-facing error values:
// a title, a detail explaining what went wrong, a hint telling the user what
// to do about it, and an optional wrapped cause.
package errors

import (
	"encoding/json"
	"fmt"
	"os"
)

// Kind tags the category of a UserError, used only for JSON output.
type Kind string

const (
	KindInternal   Kind = "internal"
	KindPermission Kind = "permission"
	KindInput      Kind = "input"
	KindNetwork    Kind = "network"
	KindConfig     Kind = "config"
)

// UserError is a CLI-facing error carrying enough context to print a useful
// message without a stack trace: what happened, why, and what to do next.
type UserError struct {
	Kind   Kind
	Title  string
	Detail string
	Hint   string
	Err    error
}

func (e *UserError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s", e.Title, e.Detail)
	}
	return e.Title
}

func (e *UserError) Unwrap() error {
	return e.Err
}

func newUserError(kind Kind, title, detail, hint string, err ...error) *UserError {
	ue := &UserError{Kind: kind, Title: title, Detail: detail, Hint: hint}
	if len(err) > 0 {
		ue.Err = err[0]
	}
	return ue
}

// NewInternalError reports a bug: an invariant was violated or an unexpected
// condition was reached in code that should have handled it.
func NewInternalError(title, detail, hint string, err ...error) *UserError {
	return newUserError(KindInternal, title, detail, hint, err...)
}

// NewPermissionError reports that an operation was denied by the filesystem
// or operating system.
func NewPermissionError(title, detail, hint string, err ...error) *UserError {
	return newUserError(KindPermission, title, detail, hint, err...)
}

// NewInputError reports that the user supplied an invalid flag, argument, or
// confirmation.
func NewInputError(title, detail, hint string, err ...error) *UserError {
	return newUserError(KindInput, title, detail, hint, err...)
}

// NewNetworkError reports that a network operation failed.
func NewNetworkError(title, detail, hint string, err ...error) *UserError {
	return newUserError(KindNetwork, title, detail, hint, err...)
}

// NewConfigError reports a problem reading, parsing, or validating the
// project configuration file.
func NewConfigError(title, detail, hint string, err ...error) *UserError {
	return newUserError(KindConfig, title, detail, hint, err...)
}

// jsonErrorPayload is the shape written to stdout when FatalError is called
// in JSON mode, so scripted callers get a parseable failure instead of a
// human-formatted message on stderr.
type jsonErrorPayload struct {
	Error  string `json:"error"`
	Kind   Kind   `json:"kind,omitempty"`
	Detail string `json:"detail,omitempty"`
	Hint   string `json:"hint,omitempty"`
}

// FatalError prints err and exits the process with status 1. In JSON mode it
// writes a single JSON object to stdout instead of a formatted message to
// stderr, so the failure is machine-readable by scripted callers.
func FatalError(err error, jsonMode bool) {
	if err == nil {
		os.Exit(1)
	}

	ue, ok := err.(*UserError)
	if !ok {
		if jsonMode {
			_ = json.NewEncoder(os.Stdout).Encode(jsonErrorPayload{Error: err.Error()})
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}

	if jsonMode {
		_ = json.NewEncoder(os.Stdout).Encode(jsonErrorPayload{
			Error:  ue.Title,
			Kind:   ue.Kind,
			Detail: ue.Detail,
			Hint:   ue.Hint,
		})
		os.Exit(1)
	}

	fmt.Fprintf(os.Stderr, "Error: %s\n", ue.Title)
	if ue.Detail != "" {
		fmt.Fprintf(os.Stderr, "  %s\n", ue.Detail)
	}
	if ue.Err != nil {
		fmt.Fprintf(os.Stderr, "  caused by: %v\n", ue.Err)
	}
	if ue.Hint != "" {
		fmt.Fprintf(os.Stderr, "\n%s\n", ue.Hint)
	}
	os.Exit(1)
}
