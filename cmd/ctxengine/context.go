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
	"io"
	"log/slog"
	"strings"

	"github.com/kraklabs/ctxengine/internal/errors"
	"github.com/kraklabs/ctxengine/internal/output"
	"github.com/kraklabs/ctxengine/internal/ui"
	"github.com/kraklabs/ctxengine/pkg/selector"
)

type contextFlags struct {
	file, reqType, model, selection string
	maxTokens                       int
	compress, noCompress, list      bool
}

// runContext scans the project and prints the context window for one
// request. The request text comes from the arguments, or from stdin when
// the only argument is "-".
//
// Examples:
//
//	ctxengine context -f src/auth/login.ts "why does login fail"
//	git diff | ctxengine context -f api/server.go --type review -
//	ctxengine --json context --model gpt-4o --max-tokens 4000 cache eviction
func (a *app) runContext(args []string) error {
	var f contextFlags
	fs := newFlagSet(a, "context", `Usage: ctxengine context [options] [request text | -]

Selects the files most relevant to a request and prints them within the
token budget of the model.
`)
	fs.StringVarP(&f.file, "file", "f", "", "File currently open in the editor")
	fs.StringVarP(&f.reqType, "type", "t", "", "Request type, e.g. chat, edit, review")
	fs.StringVarP(&f.model, "model", "m", "", "Target model (sets the token budget)")
	fs.StringVar(&f.selection, "selection", "", "Selected text in the current file")
	fs.IntVar(&f.maxTokens, "max-tokens", 0, "Explicit token budget (overrides the model)")
	fs.BoolVar(&f.compress, "compress", false, "Truncate files when the selection overflows the budget")
	fs.BoolVar(&f.noCompress, "no-compress", false, "Never truncate, even if the configuration enables it")
	fs.BoolVarP(&f.list, "list", "l", false, "List selected files instead of printing their content")
	if done, err := parseFlags(fs, args); done {
		return err
	}
	if f.maxTokens < 0 {
		return errors.NewInputError("Invalid --max-tokens", "the budget must be positive", "Omit the flag to use the model budget")
	}

	content, err := a.requestText(fs.Args())
	if err != nil {
		return err
	}

	mgr, cfg, _, err := a.openProject(slog.LevelWarn)
	if err != nil {
		return err
	}
	defer mgr.Close()

	req := selector.Request{
		Content:     content,
		Type:        f.reqType,
		Model:       f.model,
		CurrentFile: f.file,
		Selection:   f.selection,
	}
	opts := selector.Options{
		MaxTokens:   f.maxTokens,
		Compression: (cfg.Context.Compression || f.compress) && !f.noCompress,
	}

	window, err := mgr.GetContext(a.ctx, req, opts)
	if err != nil {
		return err
	}

	switch {
	case a.globals.JSON:
		return output.JSON(a.stdout, window)
	case f.list:
		printWindowList(a.stdout, window)
		return nil
	default:
		return output.WriteWindow(a.stdout, window)
	}
}

func (a *app) requestText(args []string) (string, error) {
	if len(args) == 1 && args[0] == "-" {
		data, err := io.ReadAll(a.stdin)
		if err != nil {
			return "", errors.NewInputError("Cannot read request from stdin", err.Error(), "Pipe the request text or pass it as arguments")
		}
		return string(data), nil
	}
	return strings.Join(args, " "), nil
}

func printWindowList(w io.Writer, win *selector.ContextWindow) {
	for _, f := range win.Files {
		fmt.Fprintf(w, "%6s  %6d  %s\n", ui.ScoreText(f.RelevanceScore), selector.EstimateTokens(f.Content), f.Path)
	}
	fmt.Fprintf(w, "%d files, %d/%d tokens, compression %s\n",
		len(win.Files), win.TotalTokens, win.Budget, ui.Percent(win.CompressionRatio))
}
