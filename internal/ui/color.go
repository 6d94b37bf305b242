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

// Package ui holds the terminal helpers of the ctxengine CLI.
//
// Every printer takes the destination writer so commands can be tested
// against a buffer. Colors follow --no-color, NO_COLOR and whether stdout
// is a terminal.
//
// Color usage:
//   - Red: errors
//   - Yellow: warnings, mid relevance
//   - Green: success, high relevance
//   - Cyan: info, counts
//   - Dim: paths and low relevance
package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

var (
	Red    = color.New(color.FgRed)
	Yellow = color.New(color.FgYellow)
	Green  = color.New(color.FgGreen)
	Cyan   = color.New(color.FgCyan)
	Bold   = color.New(color.Bold)
	Dim    = color.New(color.Faint)
)

// InitColors turns color output off when noColor is set, NO_COLOR is
// present, or out is not a terminal.
func InitColors(noColor bool, out *os.File) {
	color.NoColor = noColor || os.Getenv("NO_COLOR") != "" || !IsTerminal(out)
}

// IsTerminal reports whether f is an interactive terminal.
func IsTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// Successf prints a green line prefixed with a check mark.
func Successf(w io.Writer, format string, args ...any) {
	_, _ = Green.Fprintf(w, "✓ "+format+"\n", args...)
}

// Warningf prints a yellow line prefixed with a warning sign.
func Warningf(w io.Writer, format string, args ...any) {
	_, _ = Yellow.Fprintf(w, "⚠ "+format+"\n", args...)
}

// Infof prints a cyan line prefixed with an info sign.
func Infof(w io.Writer, format string, args ...any) {
	_, _ = Cyan.Fprintf(w, "ℹ "+format+"\n", args...)
}

// Header prints a bold title underlined with "=".
func Header(w io.Writer, text string) {
	_, _ = Bold.Fprintln(w, text)
	_, _ = fmt.Fprintln(w, strings.Repeat("=", len(text)))
}

// SubHeader prints a bold title.
func SubHeader(w io.Writer, text string) {
	_, _ = Bold.Fprintln(w, text)
}

// Field prints an indented "label value" row.
func Field(w io.Writer, label string, value any) {
	_, _ = fmt.Fprintf(w, "  %-22s %v\n", Bold.Sprint(label), value)
}

func Label(text string) string   { return Bold.Sprint(text) }
func DimText(text string) string { return Dim.Sprint(text) }
func CountText(n int) string     { return Cyan.Sprint(n) }

// ScoreText colors a relevance score: green from 4, yellow from 2, dim
// below.
func ScoreText(score float64) string {
	s := fmt.Sprintf("%.1f", score)
	switch {
	case score >= 4:
		return Green.Sprint(s)
	case score >= 2:
		return Yellow.Sprint(s)
	default:
		return Dim.Sprint(s)
	}
}

// Bytes formats a size with a binary unit.
func Bytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

// Percent formats a ratio in [0, 1] as a percentage.
func Percent(ratio float64) string {
	return fmt.Sprintf("%.0f%%", ratio*100)
}
