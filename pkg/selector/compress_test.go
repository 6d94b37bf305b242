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

package selector

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/ctxengine/pkg/project"
)

func TestCompress_WithinBudgetIsUntouched(t *testing.T) {
	files := []project.ProjectFile{{Path: "a", Content: "short"}}

	out, ratio := Compress(files, 100)

	assert.Equal(t, 1.0, ratio)
	assert.Equal(t, files, out)
}

func TestCompress_UniformRatio(t *testing.T) {
	files := []project.ProjectFile{
		{Path: "long", Content: strings.Repeat("a", 800)},
		{Path: "tiny", Content: strings.Repeat("b", 40)},
	}
	// 200 + 10 = 210 tokens, budget 105 -> ratio 0.5, allowance 0.5*840/2 = 210
	out, ratio := Compress(files, 105)

	assert.InDelta(t, 0.5, ratio, 1e-9)
	require.Len(t, out, 2)
	assert.Len(t, out[0].Content, 210)
	assert.True(t, strings.HasPrefix(out[0].Content, "aaa"))
	assert.True(t, strings.HasSuffix(out[0].Content, "aaa"))
	assert.Contains(t, out[0].Content, TruncationMarker)
	assert.Equal(t, files[1].Content, out[1].Content, "files within the allowance are kept")
	assert.Len(t, files[0].Content, 800, "input is not modified")
}

func TestCompress_RuneSafe(t *testing.T) {
	files := []project.ProjectFile{{Path: "u", Content: strings.Repeat("é日", 200)}}

	out, ratio := Compress(files, 20)

	assert.Less(t, ratio, 1.0)
	assert.True(t, utf8.ValidString(out[0].Content))
	assert.Contains(t, out[0].Content, TruncationMarker)
}

func TestCompress_ZeroBudget(t *testing.T) {
	out, ratio := Compress([]project.ProjectFile{{Path: "a", Content: "content"}}, 0)

	assert.Equal(t, 0.0, ratio)
	assert.Empty(t, out[0].Content)
}

func TestCompress_AllowanceBelowMarkerNeverGrows(t *testing.T) {
	files := []project.ProjectFile{{Path: "a", Content: strings.Repeat("z", 20)}}

	// 5 tokens, budget 1 -> ratio 0.2, allowance 4 bytes
	out, ratio := Compress(files, 1)

	assert.InDelta(t, 0.2, ratio, 1e-9)
	assert.Equal(t, "zzzz", out[0].Content)
	assert.Less(t, EstimateTokens(out[0].Content), EstimateTokens(files[0].Content))
}

func TestTruncateMiddle_HeadCutIsRuneSafe(t *testing.T) {
	got := truncateMiddle("日本語のテキスト", 4)

	assert.Equal(t, "日", got)
	assert.True(t, utf8.ValidString(got))
}
