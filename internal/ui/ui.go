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

// Package ui renders colored, consistent terminal output for the depscan CLI.
package ui

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

var (
	Cyan   = color.New(color.FgCyan)
	Green  = color.New(color.FgGreen)
	Yellow = color.New(color.FgYellow)
	Red    = color.New(color.FgRed)
	Dim    = color.New(color.Faint)

	headerColor    = color.New(color.FgCyan, color.Bold)
	subHeaderColor = color.New(color.Faint, color.Bold)
	labelColor     = color.New(color.FgCyan, color.Bold)
)

// InitColors disables color output when noColor is set, NO_COLOR is present
// in the environment, or stdout is not a terminal.
func InitColors(noColor bool) {
	if noColor || os.Getenv("NO_COLOR") != "" || !isatty.IsTerminal(os.Stdout.Fd()) {
		color.NoColor = true
	}
}

// Header prints a bold section title.
func Header(title string) {
	_, _ = headerColor.Println(title)
}

// SubHeader prints a smaller, dim section title.
func SubHeader(title string) {
	_, _ = subHeaderColor.Println(title)
}

// Info prints an informational line.
func Info(msg string) {
	fmt.Println(msg)
}

// Infof prints a formatted informational line.
func Infof(format string, args ...interface{}) {
	fmt.Printf(format+"\n", args...)
}

// Success prints a green success line.
func Success(msg string) {
	_, _ = Green.Println(msg)
}

// Successf prints a formatted green success line.
func Successf(format string, args ...interface{}) {
	_, _ = Green.Printf(format+"\n", args...)
}

// Warning prints a yellow warning line to stderr.
func Warning(msg string) {
	_, _ = Yellow.Fprintln(os.Stderr, msg)
}

// Warningf prints a formatted yellow warning line to stderr.
func Warningf(format string, args ...interface{}) {
	_, _ = Yellow.Fprintf(os.Stderr, format+"\n", args...)
}

// Label renders a bold field label for key/value output lines.
func Label(s string) string {
	return labelColor.Sprint(s)
}

// DimText renders s in a dimmed style.
func DimText(s string) string {
	return Dim.Sprint(s)
}

// CountText renders an integer count, dimmed if zero.
func CountText(n int) string {
	if n == 0 {
		return Dim.Sprint("0")
	}
	return fmt.Sprintf("%d", n)
}
