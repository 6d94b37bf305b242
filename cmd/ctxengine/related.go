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

	"github.com/kraklabs/ctxengine/internal/errors"
	"github.com/kraklabs/ctxengine/internal/output"
	"github.com/kraklabs/ctxengine/internal/ui"
	"github.com/kraklabs/ctxengine/pkg/project"
)

func fileArg(cmd string, args []string) (string, error) {
	if len(args) != 1 {
		return "", errors.NewInputError(
			"Missing file argument",
			cmd+" takes exactly one file path",
			fmt.Sprintf("Run 'ctxengine %s <path relative to the project root>'", cmd),
		)
	}
	return args[0], nil
}

// runRelated prints the incoming and outgoing relationships of a file.
//
// Examples:
//
//	ctxengine related src/auth/login.ts
//	ctxengine --json related pkg/engine/manager.go
func (a *app) runRelated(args []string) error {
	fs := newFlagSet(a, "related", `Usage: ctxengine related <file>

Shows the imports, inheritance and references that link a file to the rest
of the project.
`)
	if done, err := parseFlags(fs, args); done {
		return err
	}
	path, err := fileArg("related", fs.Args())
	if err != nil {
		return err
	}

	mgr, _, _, err := a.openProject(slog.LevelWarn)
	if err != nil {
		return err
	}
	defer mgr.Close()

	rels, err := mgr.GetFileRelationships(path)
	if err != nil {
		return err
	}
	if a.globals.JSON {
		return output.JSON(a.stdout, rels)
	}

	ui.Header(a.stdout, rels.Path)
	if rels.EntryPoint {
		ui.Infof(a.stdout, "entry point")
	}
	printEdges(a, "Depends on", rels.Outgoing, func(r project.Relationship) string { return r.Target })
	printEdges(a, "Used by", rels.Incoming, func(r project.Relationship) string { return r.Source })
	if len(rels.Cluster) > 0 {
		ui.Field(a.stdout, "Cluster size:", len(rels.Cluster))
	}
	return nil
}

func printEdges(a *app, title string, rels []project.Relationship, other func(project.Relationship) string) {
	ui.SubHeader(a.stdout, fmt.Sprintf("%s (%d)", title, len(rels)))
	for _, r := range rels {
		fmt.Fprintf(a.stdout, "  %-12s %s\n", r.Type, other(r))
	}
}

// runSimilar lists files that share language, directory and size with a
// file.
func (a *app) runSimilar(args []string) error {
	fs := newFlagSet(a, "similar", `Usage: ctxengine similar [options] <file>

Ranks files by shared language, directory proximity and size proximity.
`)
	limit := fs.IntP("limit", "n", 10, "Maximum number of results")
	if done, err := parseFlags(fs, args); done {
		return err
	}
	path, err := fileArg("similar", fs.Args())
	if err != nil {
		return err
	}
	if *limit <= 0 {
		return errors.NewInputError("Invalid --limit", "the limit must be positive", "Pass --limit 10 or omit the flag")
	}

	mgr, _, _, err := a.openProject(slog.LevelWarn)
	if err != nil {
		return err
	}
	defer mgr.Close()

	similar, err := mgr.FindSimilarFiles(path, *limit)
	if err != nil {
		return err
	}
	if a.globals.JSON {
		return output.JSON(a.stdout, similar)
	}
	for _, s := range similar {
		fmt.Fprintf(a.stdout, "%.2f  %-12s %s\n", s.Score, s.Language, s.Path)
	}
	if len(similar) == 0 {
		ui.Infof(a.stdout, "no similar files")
	}
	return nil
}
