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
	"log/slog"
	"sort"
	"strings"

	"github.com/kraklabs/ctxengine/internal/output"
	"github.com/kraklabs/ctxengine/internal/ui"
	"github.com/kraklabs/ctxengine/pkg/engine"
	"github.com/kraklabs/ctxengine/pkg/project"
	"github.com/kraklabs/ctxengine/pkg/scanner"
)

type statsResult struct {
	*engine.ProjectStats
	Scan *scanner.Report `json:"scan"`
}

// runStats scans the project and prints graph statistics.
func (a *app) runStats(args []string) error {
	fs := newFlagSet(a, "stats", `Usage: ctxengine stats

Scans the project and prints file, relationship and cluster counts.
`)
	if done, err := parseFlags(fs, args); done {
		return err
	}

	mgr, _, report, err := a.openProject(slog.LevelWarn)
	if err != nil {
		return err
	}
	defer mgr.Close()

	stats, err := mgr.GetProjectStats()
	if err != nil {
		return err
	}
	if a.globals.JSON {
		return output.JSON(a.stdout, statsResult{ProjectStats: stats, Scan: report})
	}

	ui.Header(a.stdout, "Project "+stats.Root)
	ui.Field(a.stdout, "Files:", ui.CountText(stats.FileCount))
	ui.Field(a.stdout, "Total size:", ui.Bytes(stats.TotalSize))
	ui.Field(a.stdout, "Average size:", ui.Bytes(int64(stats.AverageFileSize)))
	ui.Field(a.stdout, "Oversized:", stats.OversizedFiles)
	ui.Field(a.stdout, "Relationships:", ui.CountText(stats.RelationshipCount))
	ui.Field(a.stdout, "Clusters:", ui.CountText(stats.ClusterCount))
	ui.Field(a.stdout, "Largest cluster:", stats.LargestCluster)
	ui.Field(a.stdout, "Entry points:", ui.CountText(stats.EntryPointCount))

	ui.SubHeader(a.stdout, "Languages")
	for _, kv := range sortedCounts(stats.Languages) {
		ui.Field(a.stdout, kv.key, kv.count)
	}

	if len(stats.RelationshipTypes) > 0 {
		ui.SubHeader(a.stdout, "Relationships")
		types := make([]string, 0, len(stats.RelationshipTypes))
		for t := range stats.RelationshipTypes {
			types = append(types, string(t))
		}
		sort.Strings(types)
		for _, t := range types {
			ui.Field(a.stdout, t, stats.RelationshipTypes[project.RelationType(t)])
		}
	}

	if len(stats.EntryPoints) > 0 {
		ui.SubHeader(a.stdout, "Entry points")
		ui.Field(a.stdout, "", ui.DimText(strings.Join(stats.EntryPoints, ", ")))
	}
	if n := len(report.Warnings); n > 0 {
		ui.Warningf(a.stdout, "%d files or directories could not be read", n)
	}
	return nil
}
