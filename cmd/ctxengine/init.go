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
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/kraklabs/ctxengine/internal/errors"
	"github.com/kraklabs/ctxengine/internal/output"
	"github.com/kraklabs/ctxengine/internal/ui"
	"github.com/kraklabs/ctxengine/pkg/relations"
	"github.com/kraklabs/ctxengine/pkg/scanner"
)

type initFlags struct {
	force, noScan bool
	mode, model   string
	maxTokens     int
	exclude       []string
	refresh       string
}

type initResult struct {
	ConfigPath string          `json:"config_path"`
	Config     *Config         `json:"config"`
	Report     *scanner.Report `json:"report,omitempty"`
}

// runInit writes .ctxengine/engine.yaml for a project and, unless
// --no-scan is given, scans it once to report what will be tracked.
//
// Examples:
//
//	ctxengine init
//	ctxengine init --mode treesitter --model gpt-4o ./service
//	ctxengine init --exclude "vendor/**" --exclude "**/*.gen.go"
func (a *app) runInit(args []string) error {
	var f initFlags
	fs := newFlagSet(a, "init", `Usage: ctxengine init [options] [dir]

Creates <dir>/.ctxengine/engine.yaml (dir defaults to --root or the current
directory) and scans the project.
`)
	fs.BoolVar(&f.force, "force", false, "Overwrite an existing configuration")
	fs.BoolVar(&f.noScan, "no-scan", false, "Only write the configuration")
	fs.StringVar(&f.mode, "mode", string(relations.ModeRegex), "Import detection: regex or treesitter")
	fs.StringVar(&f.model, "model", "", "Default model for requests that name none")
	fs.IntVar(&f.maxTokens, "max-tokens", 0, "Fallback token budget for unknown models")
	fs.StringSliceVar(&f.exclude, "exclude", nil, "Extra exclude glob (repeatable)")
	fs.StringVar(&f.refresh, "refresh", "", "Full rescan interval while watching, e.g. 5m (empty keeps default)")
	if done, err := parseFlags(fs, args); done {
		return err
	}

	if fs.NArg() > 1 {
		return errors.NewInputError("Too many arguments", "init takes at most one directory", "Run 'ctxengine init [dir]'")
	}
	if fs.NArg() == 1 {
		a.root = fs.Arg(0)
	}
	root, err := a.projectRoot()
	if err != nil {
		return err
	}
	if info, err := os.Stat(root); err != nil || !info.IsDir() {
		return errors.NewNotFoundError("Project directory not found", root+" is not a directory", "Pass an existing directory")
	}

	path := a.configPath
	if path == "" {
		path = ConfigPath(root)
	}
	if _, err := os.Stat(path); err == nil && !f.force {
		return errors.NewInputError("Configuration already exists", path, "Use --force to overwrite it")
	}

	cfg := DefaultConfig(filepath.Base(root))
	cfg.Extract.Mode = f.mode
	cfg.Context.DefaultModel = f.model
	cfg.Scan.Exclude = f.exclude
	if f.maxTokens > 0 {
		cfg.Context.MaxTokens = f.maxTokens
	}
	if f.refresh != "" {
		cfg.Refresh.Interval = f.refresh
	}
	if err := cfg.Validate(); err != nil {
		return errors.NewInputError("Invalid option", err.Error(), "Run 'ctxengine init --help'")
	}
	if err := SaveConfig(cfg, path); err != nil {
		return errors.NewPermissionError("Cannot write configuration", path, "Check write access to the project directory", err)
	}

	result := initResult{ConfigPath: path, Config: cfg}
	if !f.noScan {
		a.root, a.configPath = root, path
		_, _, report, err := a.openProject(slog.LevelWarn)
		if err != nil {
			return err
		}
		result.Report = report
	}

	if a.globals.JSON {
		return output.JSON(a.stdout, result)
	}
	ui.Successf(a.stdout, "Wrote %s", path)
	if result.Report != nil {
		printReport(a, result.Report)
	}
	fmt.Fprintln(a.stdout)
	fmt.Fprintln(a.stdout, "Next steps:")
	fmt.Fprintln(a.stdout, "  ctxengine stats                 Inspect the graph")
	fmt.Fprintln(a.stdout, "  ctxengine context -f <file>     Build a context window")
	return nil
}

// printReport summarizes a scan.
func printReport(a *app, r *scanner.Report) {
	ui.Successf(a.stdout, "Scanned %d files (%s) in %s", r.FileCount, ui.Bytes(r.TotalSize), r.Duration.Round(time.Millisecond))
	for _, kv := range sortedCounts(r.Languages) {
		ui.Field(a.stdout, kv.key, kv.count)
	}
	if len(r.SkipReasons) > 0 {
		ui.SubHeader(a.stdout, "Skipped")
		for _, kv := range sortedCounts(r.SkipReasons) {
			ui.Field(a.stdout, kv.key, kv.count)
		}
	}
	if n := len(r.Warnings); n > 0 {
		ui.Warningf(a.stdout, "%d files or directories could not be read (run with --debug for details)", n)
	}
}

type keyCount struct {
	key   string
	count int
}

// sortedCounts orders a histogram by count, then key.
func sortedCounts(m map[string]int) []keyCount {
	out := make([]keyCount, 0, len(m))
	for k, v := range m {
		out = append(out, keyCount{k, v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].count != out[j].count {
			return out[i].count > out[j].count
		}
		return out[i].key < out[j].key
	})
	return out
}
