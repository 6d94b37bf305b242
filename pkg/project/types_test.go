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

package project

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePath(t *testing.T) {
	tests := map[string]string{
		"src/a.ts":      "src/a.ts",
		"./src/a.ts":    "src/a.ts",
		"/src/a.ts":     "src/a.ts",
		`src\lib\b.go`:  "src/lib/b.go",
		"src//x/../a":   "src/a",
		".":             "",
		"":              "",
		"../outside.go": "../outside.go",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizePath(in), in)
	}
}

func TestPlaceholder(t *testing.T) {
	p := Placeholder(2 << 20)
	assert.Equal(t, "[file too large: 2097152 bytes]", p)
	assert.True(t, IsPlaceholder(p))
	assert.False(t, IsPlaceholder("[file too large"))
	assert.False(t, IsPlaceholder("package main"))
}

func TestProjectFile_Dir(t *testing.T) {
	assert.Equal(t, "", ProjectFile{Path: "main.go"}.Dir())
	assert.Equal(t, "src/lib", ProjectFile{Path: "src/lib/a.ts"}.Dir())
}

func TestRelationStrength(t *testing.T) {
	assert.Equal(t, 0.8, NewRelationship("a", "b", RelationImport).Strength)
	assert.Equal(t, 0.9, NewRelationship("a", "b", RelationInheritance).Strength)
	assert.Equal(t, 0.6, NewRelationship("a", "b", RelationReference).Strength)
	assert.Equal(t, 0.0, RelationType("unknown").Strength())
}
