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

package graph

import (
	"path"
	"sort"
	"strings"
	"time"

	"github.com/kraklabs/ctxengine/pkg/project"
)

// EntryPointPatterns are basename globs that flag a file as a program entry
// point, independently of its relationships.
var EntryPointPatterns = []string{
	"main.*",
	"index.*",
	"app.*",
	"server.*",
	"__main__.py",
	"manage.py",
}

// ProjectGraph is an immutable snapshot of a project: its files, the
// relationships between them, the clusters those relationships form and the
// entry points. Methods never modify the receiver; WithFile and WithoutFile
// return new snapshots.
type ProjectGraph struct {
	Root          string                         `json:"root"`
	Files         map[string]project.ProjectFile `json:"-"`
	Relationships []project.Relationship         `json:"relationships"`
	Clusters      [][]string                     `json:"clusters"`
	EntryPoints   []string                       `json:"entry_points"`
	BuiltAt       time.Time                      `json:"built_at"`

	paths     []string
	outgoing  map[string][]int
	incoming  map[string][]int
	neighbors map[string][]string
}

// Build creates a snapshot. Relationships whose source or target is not in
// files, and self edges, are dropped. files and rels are copied.
func Build(root string, files map[string]project.ProjectFile, rels []project.Relationship, builtAt time.Time) *ProjectGraph {
	own := make(map[string]project.ProjectFile, len(files))
	for p, f := range files {
		own[p] = f
	}

	kept := make([]project.Relationship, 0, len(rels))
	for _, r := range rels {
		if r.Source == r.Target {
			continue
		}
		if _, ok := own[r.Source]; !ok {
			continue
		}
		if _, ok := own[r.Target]; !ok {
			continue
		}
		kept = append(kept, r)
	}

	return assemble(root, own, kept, builtAt)
}

// assemble takes ownership of files and rels and derives the indexes.
func assemble(root string, files map[string]project.ProjectFile, rels []project.Relationship, builtAt time.Time) *ProjectGraph {
	g := &ProjectGraph{
		Root:          root,
		Files:         files,
		Relationships: rels,
		BuiltAt:       builtAt,
		outgoing:      make(map[string][]int),
		incoming:      make(map[string][]int),
		neighbors:     make(map[string][]string),
	}

	g.paths = make([]string, 0, len(files))
	for p := range files {
		g.paths = append(g.paths, p)
	}
	sort.Strings(g.paths)

	seen := make(map[string]map[string]bool)
	link := func(a, b string) {
		if seen[a] == nil {
			seen[a] = make(map[string]bool)
		}
		if !seen[a][b] {
			seen[a][b] = true
			g.neighbors[a] = append(g.neighbors[a], b)
		}
	}
	for i, r := range rels {
		g.outgoing[r.Source] = append(g.outgoing[r.Source], i)
		g.incoming[r.Target] = append(g.incoming[r.Target], i)
		link(r.Source, r.Target)
		link(r.Target, r.Source)
	}

	g.Clusters = g.components()
	g.EntryPoints = make([]string, 0)
	for _, p := range g.paths {
		if IsEntryPointName(path.Base(p)) {
			g.EntryPoints = append(g.EntryPoints, p)
		}
	}
	return g
}

// components returns the connected components with at least two members.
// Members are sorted; components are ordered by their first member.
func (g *ProjectGraph) components() [][]string {
	clusters := make([][]string, 0)
	visited := make(map[string]bool, len(g.paths))

	for _, start := range g.paths {
		if visited[start] || len(g.neighbors[start]) == 0 {
			continue
		}

		var members []string
		stack := []string{start}
		visited[start] = true
		for len(stack) > 0 {
			n := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			members = append(members, n)
			for _, next := range g.neighbors[n] {
				if !visited[next] {
					visited[next] = true
					stack = append(stack, next)
				}
			}
		}

		if len(members) >= 2 {
			sort.Strings(members)
			clusters = append(clusters, members)
		}
	}
	return clusters
}

// IsEntryPointName reports whether a basename matches EntryPointPatterns.
func IsEntryPointName(base string) bool {
	base = strings.ToLower(base)
	for _, pattern := range EntryPointPatterns {
		if ok, _ := path.Match(pattern, base); ok {
			return true
		}
	}
	return false
}

// Paths returns every file path in sorted order. The slice must not be
// modified.
func (g *ProjectGraph) Paths() []string {
	return g.paths
}

// File returns the file stored at path.
func (g *ProjectGraph) File(p string) (project.ProjectFile, bool) {
	f, ok := g.Files[p]
	return f, ok
}

// Has reports whether path is part of the snapshot.
func (g *ProjectGraph) Has(p string) bool {
	_, ok := g.Files[p]
	return ok
}

// IsEntryPoint reports whether path was flagged as an entry point.
func (g *ProjectGraph) IsEntryPoint(p string) bool {
	return g.Has(p) && IsEntryPointName(path.Base(p))
}

// Outgoing returns the relationships whose source is path, in extraction
// order.
func (g *ProjectGraph) Outgoing(p string) []project.Relationship {
	return g.pick(g.outgoing[p])
}

// Incoming returns the relationships whose target is path, in extraction
// order.
func (g *ProjectGraph) Incoming(p string) []project.Relationship {
	return g.pick(g.incoming[p])
}

func (g *ProjectGraph) pick(idx []int) []project.Relationship {
	out := make([]project.Relationship, 0, len(idx))
	for _, i := range idx {
		out = append(out, g.Relationships[i])
	}
	return out
}

// Neighbors returns the files directly connected to path in either
// direction, in order of first appearance.
func (g *ProjectGraph) Neighbors(p string) []string {
	return append([]string(nil), g.neighbors[p]...)
}

// Reachable returns files within depth hops of start, following edges in
// either direction, in breadth-first discovery order. start itself is not
// included.
func (g *ProjectGraph) Reachable(start string, depth int) []string {
	if depth <= 0 || !g.Has(start) {
		return nil
	}

	var out []string
	visited := map[string]bool{start: true}
	frontier := []string{start}
	for level := 0; level < depth && len(frontier) > 0; level++ {
		var next []string
		for _, n := range frontier {
			for _, m := range g.neighbors[n] {
				if visited[m] {
					continue
				}
				visited[m] = true
				out = append(out, m)
				next = append(next, m)
			}
		}
		frontier = next
	}
	return out
}

// ClusterOf returns the cluster containing path, or nil when the file has
// no relationships.
func (g *ProjectGraph) ClusterOf(p string) []string {
	for _, c := range g.Clusters {
		i := sort.SearchStrings(c, p)
		if i < len(c) && c[i] == p {
			return c
		}
	}
	return nil
}

// WithFile returns a snapshot in which f is inserted or replaces the file at
// the same path. Relationships are carried over unchanged.
func (g *ProjectGraph) WithFile(f project.ProjectFile, builtAt time.Time) *ProjectGraph {
	files := make(map[string]project.ProjectFile, len(g.Files)+1)
	for p, existing := range g.Files {
		files[p] = existing
	}
	files[f.Path] = f
	rels := append([]project.Relationship(nil), g.Relationships...)
	return assemble(g.Root, files, rels, builtAt)
}

// WithoutFile returns a snapshot without path and without every
// relationship that has path as source or target.
func (g *ProjectGraph) WithoutFile(p string, builtAt time.Time) *ProjectGraph {
	files := make(map[string]project.ProjectFile, len(g.Files))
	for q, f := range g.Files {
		if q != p {
			files[q] = f
		}
	}
	rels := make([]project.Relationship, 0, len(g.Relationships))
	for _, r := range g.Relationships {
		if r.Source != p && r.Target != p {
			rels = append(rels, r)
		}
	}
	return assemble(g.Root, files, rels, builtAt)
}
