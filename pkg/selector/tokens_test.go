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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEstimateTokens(t *testing.T) {
	assert.Equal(t, 0, EstimateTokens(""))
	assert.Equal(t, 1, EstimateTokens("a"))
	assert.Equal(t, 1, EstimateTokens("abcd"))
	assert.Equal(t, 2, EstimateTokens("abcde"))
}

func TestBudgetFor(t *testing.T) {
	tests := []struct {
		name     string
		model    string
		explicit int
		fallback int
		want     int
	}{
		{"explicit wins", "gpt-4", 500, 0, 500},
		{"exact model", "gpt-4", 0, 0, 8192},
		{"longest prefix", "gpt-4-32k-0613", 0, 0, 32768},
		{"gpt-4o variant", "gpt-4o-mini", 0, 0, 128000},
		{"dated claude", "claude-3-5-sonnet-20240620", 0, 0, 200000},
		{"case insensitive", "GPT-3.5-Turbo", 0, 0, 16385},
		{"unknown uses fallback", "mystery", 0, 4000, 4000},
		{"unknown uses default", "mystery", 0, 0, DefaultMaxTokens},
		{"empty model", "", 0, 0, DefaultMaxTokens},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BudgetFor(tt.model, tt.explicit, tt.fallback))
		})
	}
}

func TestKeywords(t *testing.T) {
	assert.Equal(t,
		[]string{"refactor", "userservice", "login", "handler", "2fa"},
		Keywords("Refactor the UserService login-handler, with 2FA!", "login is ok"),
	)
	assert.Empty(t, Keywords("", "  "))
}
