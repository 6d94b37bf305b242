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

package relations

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	enginetest "github.com/kraklabs/ctxengine/internal/testing"
	"github.com/kraklabs/ctxengine/pkg/project"
)

func extract(t *testing.T, mode Mode, files map[string]project.ProjectFile) []project.Relationship {
	t.Helper()
	e, err := New(mode, nil)
	require.NoError(t, err)
	rels, err := e.Extract(context.Background(), files)
	require.NoError(t, err)
	return rels
}

func edge(src, dst string, typ project.RelationType) project.Relationship {
	return project.NewRelationship(src, dst, typ)
}

func TestExtract_RelativeImport(t *testing.T) {
	files := enginetest.Files(map[string]string{
		"a.ts": "import { b } from './b'",
		"b.ts": "",
	})

	rels := extract(t, ModeRegex, files)

	require.Len(t, rels, 1)
	assert.Equal(t, edge("a.ts", "b.ts", project.RelationImport), rels[0])
	assert.InDelta(t, 0.8, rels[0].Strength, 1e-9)
}

func TestExtract_JavaScriptImportInheritanceReference(t *testing.T) {
	files := enginetest.Files(map[string]string{
		"src/base.js": "export class Animal {}\n",
		"src/dog.js": "import { Animal } from './base.js'\n" +
			"export class Dog extends Animal {\n" +
			"  bark() { return speak() }\n" +
			"}\n",
		"src/util.js": "export function speak() { return 'woof' }\n",
	})

	rels := extract(t, ModeRegex, files)

	assert.Equal(t, []project.Relationship{
		edge("src/dog.js", "src/base.js", project.RelationImport),
		edge("src/dog.js", "src/base.js", project.RelationInheritance),
		edge("src/dog.js", "src/util.js", project.RelationReference),
	}, rels)
}

func TestExtract_PythonPackage(t *testing.T) {
	files := enginetest.Files(map[string]string{
		"pkg/__init__.py": "",
		"pkg/models.py":   "class Base:\n    pass\n\ndef helper_fn():\n    return 1\n",
		"pkg/views.py": "from . import models\n" +
			"from .models import Base\n\n" +
			"class View(Base):\n" +
			"    def render(self):\n" +
			"        return helper_fn()\n",
	})

	rels := extract(t, ModeRegex, files)

	assert.Equal(t, []project.Relationship{
		edge("pkg/views.py", "pkg/models.py", project.RelationImport),
		edge("pkg/views.py", "pkg/models.py", project.RelationImport),
		edge("pkg/views.py", "pkg/models.py", project.RelationInheritance),
		edge("pkg/views.py", "pkg/models.py", project.RelationReference),
	}, rels)
}

func TestExtract_GoImportBlock(t *testing.T) {
	files := enginetest.Files(map[string]string{
		"cmd/app/main.go": "package main\n\n" +
			"import (\n" +
			"\t\"fmt\"\n" +
			"\t\"github.com/acme/tool/internal/store\"\n" +
			")\n\n" +
			"func main() {\n" +
			"\tfmt.Println(store.Open())\n" +
			"}\n",
		"internal/store/store.go": "package store\n\nfunc Open() error {\n\treturn nil\n}\n",
	})

	rels := extract(t, ModeRegex, files)

	assert.Equal(t, []project.Relationship{
		edge("cmd/app/main.go", "internal/store/store.go", project.RelationImport),
		edge("cmd/app/main.go", "internal/store/store.go", project.RelationReference),
	}, rels)
}

func TestExtract_CIncludeAndPHPUse(t *testing.T) {
	files := enginetest.Files(map[string]string{
		"src/main.c":              "#include \"util.h\"\n#include <stdio.h>\n",
		"src/util.h":              "int add(int a, int b);\n",
		"app/Http/Controller.php": "<?php\nuse App\\Models\\User;\n",
		"app/Models/User.php":     "<?php\nclass User {}\n",
	})

	rels := extract(t, ModeRegex, files)

	assert.Contains(t, rels, edge("src/main.c", "src/util.h", project.RelationImport))
	assert.Contains(t, rels, edge("app/Http/Controller.php", "app/Models/User.php", project.RelationImport))
}

func TestExtract_UnresolvableImportsProduceNoEdges(t *testing.T) {
	files := enginetest.Files(map[string]string{
		"a.ts": "import React from 'react'\nimport { x } from './missing'\nimport y from '../../outside'\n",
		"b.ts": "export const b = 1\n",
	})

	assert.Empty(t, extract(t, ModeRegex, files))
}

func TestExtract_NoSelfEdges(t *testing.T) {
	files := enginetest.Files(map[string]string{
		"a.js": "import './a'\nfunction loop() { return loop() }\n",
	})

	assert.Empty(t, extract(t, ModeRegex, files))
}

func TestExtract_OversizedFilesContributeNothing(t *testing.T) {
	files := enginetest.Files(map[string]string{
		"small.ts": "import big from './big'\nrun()\n",
	})
	big := enginetest.NewFile("big.ts", "typescript", project.Placeholder(2<<20))
	big.Size = 2 << 20
	big.Oversized = true
	files["big.ts"] = big

	rels := extract(t, ModeRegex, files)

	// The import still resolves to the oversized file; its own content is
	// never inspected.
	assert.Equal(t, []project.Relationship{
		edge("small.ts", "big.ts", project.RelationImport),
	}, rels)
	for _, r := range rels {
		assert.NotEqual(t, "big.ts", r.Source)
	}
}

func TestExtract_DuplicatesRetained(t *testing.T) {
	files := enginetest.Files(map[string]string{
		"a.js": "const b = require('./b')\nconst again = require('./b')\n",
		"b.js": "module.exports = {}\n",
	})

	rels := extract(t, ModeRegex, files)
	assert.Len(t, rels, 2)
}

func TestExtract_EndpointsExist(t *testing.T) {
	files := enginetest.Files(map[string]string{
		"src/a.ts":     "import { b } from './b'\nimport { c } from 'lib/c'\nhelper()\n",
		"src/b.ts":     "export function helper() {}\n",
		"lib/c.ts":     "export class C extends Missing {}\n",
		"lib/index.ts": "export * from './c'\n",
	})

	rels := extract(t, ModeRegex, files)
	require.NotEmpty(t, rels)
	for _, r := range rels {
		assert.Contains(t, files, r.Source)
		assert.Contains(t, files, r.Target)
		assert.NotEqual(t, r.Source, r.Target)
	}
}

func TestExtract_Deterministic(t *testing.T) {
	files := enginetest.Files(map[string]string{
		"a.ts": "import { b } from './b'\nimport { c } from './c'\nhelper()\n",
		"b.ts": "export function helper() {}\n",
		"c.ts": "import { b } from './b'\n",
	})

	first := extract(t, ModeRegex, files)
	second := extract(t, ModeRegex, files)
	assert.Equal(t, first, second)
}

func TestExtract_Cancelled(t *testing.T) {
	e, err := New(ModeRegex, nil)
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = e.Extract(ctx, enginetest.Files(map[string]string{"a.ts": ""}))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("")
	require.NoError(t, err)
	assert.Equal(t, ModeRegex, m)

	m, err = ParseMode("treesitter")
	require.NoError(t, err)
	assert.Equal(t, ModeTreeSitter, m)

	_, err = ParseMode("ast")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "unknown extract mode"))
}
