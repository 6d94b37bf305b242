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

package engine

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_FindSimilarFiles(t *testing.T) {
	m, _ := initProject(t, map[string]string{
		"src/a.go":  strings.Repeat("a", 100),
		"src/b.go":  strings.Repeat("b", 100),
		"src/c.py":  strings.Repeat("c", 100),
		"docs/d.md": strings.Repeat("d", 10),
	})

	all, err := m.FindSimilarFiles("src/a.go", 0)
	require.NoError(t, err)
	require.Len(t, all, 3)

	assert.Equal(t, "src/b.go", all[0].Path)
	assert.InDelta(t, 1.0, all[0].Score, 1e-9)
	assert.Equal(t, "src/c.py", all[1].Path)
	assert.InDelta(t, 0.6, all[1].Score, 1e-9)
	assert.Equal(t, "docs/d.md", all[2].Path)
	assert.InDelta(t, 0.03, all[2].Score, 1e-9)

	top, err := m.FindSimilarFiles("src/a.go", 2)
	require.NoError(t, err)
	assert.Len(t, top, 2)

	_, err = m.FindSimilarFiles("nope.go", 2)
	assert.ErrorIs(t, err, ErrFileNotFound)
}

func TestDirectoryProximity(t *testing.T) {
	assert.Equal(t, 1.0, directoryProximity("", ""))
	assert.Equal(t, 1.0, directoryProximity("a/b", "a/b"))
	assert.Equal(t, 0.5, directoryProximity("a/b", "a/c"))
	assert.Equal(t, 0.5, directoryProximity("a", "a/b"))
	assert.Equal(t, 0.0, directoryProximity("", "a"))
	assert.Equal(t, 0.0, directoryProximity("x", "y"))
}

func TestSizeProximity(t *testing.T) {
	assert.Equal(t, 1.0, sizeProximity(0, 0))
	assert.Equal(t, 1.0, sizeProximity(5, 5))
	assert.Equal(t, 0.5, sizeProximity(10, 5))
	assert.Equal(t, 0.0, sizeProximity(0, 5))
}
