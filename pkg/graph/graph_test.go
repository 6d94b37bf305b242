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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	enginetest "github.com/kraklabs/ctxengine/internal/testing"
	"github.com/kraklabs/ctxengine/pkg/project"
)

func imp(src, dst string) project.Relationship {
	return project.NewRelationship(src, dst, project.RelationImport)
}

func sampleGraph() *ProjectGraph {
	files := enginetest.Files(map[string]string{
		"src/main.ts":    "",
		"src/a.ts":       "",
		"src/b.ts":       "",
		"src/c.ts":       "",
		"lib/x.py":       "",
		"lib/y.py":       "",
		"lone.go":        "",
		"tools/index.js": "",
		"manage.py":      "",
	})
	rels := []project.Relationship{
		imp("src/main.ts", "src/a.ts"),
		imp("src/a.ts", "src/b.ts"),
		imp("src/a.ts", "src/b.ts"),
		project.NewRelationship("src/c.ts", "src/b.ts", project.RelationReference),
		project.NewRelationship("lib/y.py", "lib/x.py", project.RelationInheritance),
		imp("src/a.ts", "missing.ts"),
		imp("lone.go", "lone.go"),
	}
	return Build("/proj", files, rels, enginetest.Now)
}

func TestBuild_DropsDanglingAndSelfEdges(t *testing.T) {
	g := sampleGraph()

	assert.Len(t, g.Relationships, 5)
	for _, r := range g.Relationships {
		assert.True(t, g.Has(r.Source), r.Source)
		assert.True(t, g.Has(r.Target), r.Target)
		assert.NotEqual(t, r.Source, r.Target)
	}
}

func TestBuild_Clusters(t *testing.T) {
	g := sampleGraph()

	assert.Equal(t, [][]string{
		{"lib/x.py", "lib/y.py"},
		{"src/a.ts", "src/b.ts", "src/c.ts", "src/main.ts"},
	}, g.Clusters)

	for _, c := range g.Clusters {
		assert.GreaterOrEqual(t, len(c), 2)
		for _, p := range c {
			assert.NotEmpty(t, g.Neighbors(p), "cluster member %s has no edges", p)
		}
	}
	assert.Nil(t, g.ClusterOf("lone.go"))
	assert.Equal(t, []string{"lib/x.py", "lib/y.py"}, g.ClusterOf("lib/y.py"))
}

func TestBuild_EntryPoints(t *testing.T) {
	g := sampleGraph()

	assert.Equal(t, []string{"manage.py", "src/main.ts", "tools/index.js"}, g.EntryPoints)
	assert.True(t, g.IsEntryPoint("tools/index.js"))
	assert.False(t, g.IsEntryPoint("src/a.ts"))
	assert.False(t, g.IsEntryPoint("main.go"), "unknown paths are never entry points")
}

func TestIsEntryPointName(t *testing.T) {
	for _, name := range []string{"main.go", "Main.java", "index.ts", "app.py", "server.js", "__main__.py", "manage.py"} {
		assert.True(t, IsEntryPointName(name), name)
	}
	for _, name := range []string{"mainframe.go", "application.py", "manage.rb", "util.go"} {
		assert.False(t, IsEntryPointName(name), name)
	}
}

func TestOutgoingIncoming(t *testing.T) {
	g := sampleGraph()

	out := g.Outgoing("src/a.ts")
	require.Len(t, out, 2)
	assert.Equal(t, "src/b.ts", out[0].Target)

	in := g.Incoming("src/b.ts")
	require.Len(t, in, 3)
	assert.Equal(t, project.RelationReference, in[2].Type)

	assert.Empty(t, g.Outgoing("lone.go"))
	assert.Empty(t, g.Incoming("nope"))
}

func TestNeighborsAndReachable(t *testing.T) {
	g := sampleGraph()

	assert.Equal(t, []string{"src/main.ts", "src/b.ts"}, g.Neighbors("src/a.ts"))
	assert.Equal(t, []string{"src/a.ts"}, g.Reachable("src/main.ts", 1))
	assert.Equal(t, []string{"src/a.ts", "src/b.ts"}, g.Reachable("src/main.ts", 2))
	assert.Equal(t, []string{"src/a.ts", "src/b.ts", "src/c.ts"}, g.Reachable("src/main.ts", 3))
	assert.Empty(t, g.Reachable("src/main.ts", 0))
	assert.Empty(t, g.Reachable("missing.ts", 2))
	assert.Empty(t, g.Reachable("lone.go", 2))
}

func TestWithFile(t *testing.T) {
	g := sampleGraph()

	added := g.WithFile(enginetest.NewFile("src/new.ts", "typescript", "x"), enginetest.Now)
	assert.True(t, added.Has("src/new.ts"))
	assert.False(t, g.Has("src/new.ts"), "original snapshot is unchanged")
	assert.Equal(t, g.Relationships, added.Relationships)
	assert.Equal(t, g.Clusters, added.Clusters)

	updated := g.WithFile(enginetest.NewFile("src/a.ts", "typescript", "changed"), enginetest.Now)
	f, ok := updated.File("src/a.ts")
	require.True(t, ok)
	assert.Equal(t, "changed", f.Content)
	assert.Len(t, updated.Files, len(g.Files))
}

func TestWithoutFile(t *testing.T) {
	g := sampleGraph()

	removed := g.WithoutFile("src/b.ts", enginetest.Now)

	assert.False(t, removed.Has("src/b.ts"))
	for _, r := range removed.Relationships {
		assert.NotEqual(t, "src/b.ts", r.Source)
		assert.NotEqual(t, "src/b.ts", r.Target)
	}
	assert.Equal(t, [][]string{
		{"lib/x.py", "lib/y.py"},
		{"src/a.ts", "src/main.ts"},
	}, removed.Clusters)
	assert.Len(t, g.Relationships, 5, "original snapshot is unchanged")
}

func TestBuild_Empty(t *testing.T) {
	g := Build("/empty", nil, nil, enginetest.Now)

	assert.Empty(t, g.Files)
	assert.NotNil(t, g.Clusters)
	assert.NotNil(t, g.EntryPoints)
	assert.Empty(t, g.Paths())
}
