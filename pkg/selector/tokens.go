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

import "strings"

// DefaultMaxTokens is the budget used when neither an explicit limit nor a
// known model is given.
const DefaultMaxTokens = 8000

// modelMaxTokens maps model identifiers to their context size. Lookups use
// the longest matching prefix, so dated or suffixed variants
// ("gpt-4-0613", "claude-3-5-sonnet-20240620") resolve to their family.
var modelMaxTokens = map[string]int{
	"gpt-4":             8192,
	"gpt-4-32k":         32768,
	"gpt-4-turbo":       128000,
	"gpt-4o":            128000,
	"gpt-3.5-turbo":     16385,
	"claude-3-opus":     200000,
	"claude-3-sonnet":   200000,
	"claude-3-haiku":    200000,
	"claude-3-5-sonnet": 200000,
	"gemini-pro":        32768,
	"gemini-1.5-pro":    1000000,
	"llama3":            8192,
	"codellama":         16384,
}

// EstimateTokens approximates the token count of s as one token per four
// bytes, rounded up.
func EstimateTokens(s string) int {
	return (len(s) + 3) / 4
}

// ModelMaxTokens returns the context size of a known model.
func ModelMaxTokens(model string) (int, bool) {
	model = strings.ToLower(strings.TrimSpace(model))
	if model == "" {
		return 0, false
	}
	best, bestLen := 0, 0
	for prefix, tokens := range modelMaxTokens {
		if strings.HasPrefix(model, prefix) && len(prefix) > bestLen {
			best, bestLen = tokens, len(prefix)
		}
	}
	return best, bestLen > 0
}

// BudgetFor resolves the token budget of a request: explicit if positive,
// else the model's context size, else fallback (or DefaultMaxTokens when
// fallback is not positive).
func BudgetFor(model string, explicit, fallback int) int {
	if explicit > 0 {
		return explicit
	}
	if tokens, ok := ModelMaxTokens(model); ok {
		return tokens
	}
	if fallback > 0 {
		return fallback
	}
	return DefaultMaxTokens
}
