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

// Package main implements the ctxengine CLI, a local front end for the
// context engine: it scans a project, builds the relationship graph and
// prints the context window an assistant would receive.
//
// Usage:
//
//	ctxengine init [dir]                    Create .ctxengine/engine.yaml and scan
//	ctxengine context [query...]            Print the context window for a request
//	ctxengine stats                         Show project statistics
//	ctxengine related <file>                Show relationships of a file
//	ctxengine similar <file>                List files similar to a file
//	ctxengine watch                         Keep the graph in sync and serve metrics
//	ctxengine completion <shell>            Generate shell completion
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/kraklabs/ctxengine/internal/errors"
	"github.com/kraklabs/ctxengine/internal/ui"
)

// Version information, set with -ldflags at build time.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// GlobalFlags are accepted before the command name.
type GlobalFlags struct {
	JSON    bool
	NoColor bool
	Quiet   bool
	Debug   bool
}

// app carries the global state shared by every command.
type app struct {
	globals    GlobalFlags
	configPath string
	root       string

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	// ctx is cancelled on SIGINT/SIGTERM.
	ctx context.Context
}

type command struct {
	summary string
	run     func(a *app, args []string) error
}

var commands = map[string]command{
	"init":       {"Create .ctxengine/engine.yaml and scan the project", (*app).runInit},
	"context":    {"Print the context window for a request", (*app).runContext},
	"stats":      {"Show project statistics", (*app).runStats},
	"related":    {"Show the relationships of a file", (*app).runRelated},
	"similar":    {"List files similar to a file", (*app).runSimilar},
	"watch":      {"Keep the graph in sync with the file system", (*app).runWatch},
	"completion": {"Generate shell completion script (bash|zsh|fish)", (*app).runCompletion},
}

var commandOrder = []string{"init", "context", "stats", "related", "similar", "watch", "completion"}

func main() {
	ctx, stop := signalContext(context.Background())
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run parses global flags, dispatches to a command and returns the exit
// code.
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	a := &app{stdin: stdin, stdout: stdout, stderr: stderr, ctx: ctx}

	fs := flag.NewFlagSet("ctxengine", flag.ContinueOnError)
	fs.SetInterspersed(false)
	fs.SetOutput(stderr)
	showVersion := fs.Bool("version", false, "Show version and exit")
	fs.StringVar(&a.configPath, "config", "", "Path to engine.yaml (default: <root>/.ctxengine/engine.yaml)")
	fs.StringVar(&a.root, "root", "", "Project root (default: current directory)")
	fs.BoolVar(&a.globals.JSON, "json", false, "Machine readable output")
	fs.BoolVar(&a.globals.NoColor, "no-color", false, "Disable colored output")
	fs.BoolVarP(&a.globals.Quiet, "quiet", "q", false, "Hide progress output")
	fs.BoolVar(&a.globals.Debug, "debug", false, "Enable debug logging")
	fs.Usage = func() { printUsage(stderr, fs) }

	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return errors.ExitSuccess
		}
		return errors.ExitInput
	}
	if a.globals.JSON {
		a.globals.Quiet = true
	}
	ui.InitColors(a.globals.NoColor, os.Stdout)

	if *showVersion {
		fmt.Fprintf(stdout, "ctxengine version %s\ncommit: %s\nbuilt: %s\n", version, commit, date)
		return errors.ExitSuccess
	}

	if fs.NArg() == 0 {
		fs.Usage()
		return errors.ExitInput
	}
	name, rest := fs.Arg(0), fs.Args()[1:]
	cmd, ok := commands[name]
	if !ok {
		return errors.Report(stderr, errors.NewInputError(
			"Unknown command: "+name,
			"",
			"Run 'ctxengine --help' to list commands",
		), a.globals.JSON)
	}

	return errors.Report(stderr, cmd.run(a, rest), a.globals.JSON)
}

func printUsage(w io.Writer, fs *flag.FlagSet) {
	fmt.Fprint(w, `ctxengine - project context engine

Scans a project, links files by imports, inheritance and references, and
selects the most relevant files for a request within a model's token budget.

Usage:
  ctxengine [global options] <command> [options]

Commands:
`)
	for _, name := range commandOrder {
		fmt.Fprintf(w, "  %-12s %s\n", name, commands[name].summary)
	}
	fmt.Fprint(w, "\nGlobal Options:\n")
	fs.PrintDefaults()
	fmt.Fprint(w, `
Examples:
  ctxengine init                            Configure and scan the current directory
  ctxengine context -f src/app.ts "login"   Context for a request about login
  ctxengine --json stats                    Statistics as JSON
  ctxengine watch --metrics-addr :9100      Watch files and serve /metrics

Environment Variables:
  CTXENGINE_MODEL       Default model when a request names none
  CTXENGINE_MAX_TOKENS  Fallback token budget for unknown models

For command help: ctxengine <command> --help
`)
}

// parseFlags parses a command flag set. It returns done=true when help was
// printed.
func parseFlags(fs *flag.FlagSet, args []string) (done bool, err error) {
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return true, nil
		}
		return true, errors.NewInputError(
			"Invalid arguments",
			err.Error(),
			fmt.Sprintf("Run 'ctxengine %s --help' for usage", fs.Name()),
		)
	}
	return false, nil
}

func newFlagSet(a *app, name, usage string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	fs.Usage = func() {
		fmt.Fprint(a.stderr, usage)
		fmt.Fprint(a.stderr, "\nOptions:\n")
		fs.PrintDefaults()
	}
	return fs
}
