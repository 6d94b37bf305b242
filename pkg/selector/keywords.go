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
	"unicode"
)

// minKeywordLength is the shortest token kept as a search keyword.
const minKeywordLength = 3

var keywordStopwords = map[string]bool{
	"the": true, "and": true, "for": true, "with": true, "from": true,
	"are": true, "was": true, "been": true, "being": true, "have": true,
	"has": true, "had": true, "does": true, "did": true, "will": true,
	"would": true, "could": true, "should": true, "may": true, "might": true,
	"must": true, "but": true, "then": true, "that": true, "this": true,
	"these": true, "those": true, "its": true, "our": true, "you": true,
	"your": true, "they": true, "them": true, "their": true, "what": true,
	"which": true, "who": true, "when": true, "where": true, "why": true,
	"how": true, "all": true, "each": true, "every": true, "some": true,
	"any": true, "not": true, "only": true, "more": true, "most": true,
	"other": true, "into": true, "through": true, "need": true, "needs": true,
	"want": true, "wants": true, "like": true, "please": true, "can": true,
	"there": true, "here": true, "about": true, "just": true, "also": true,
	"make": true, "use": true, "using": true, "get": true, "set": true,
	"function": true, "file": true, "files": true, "code": true,
}

// Keywords tokenizes text into lowercase alphanumeric words, dropping
// stopwords and words shorter than three characters. Order of first
// appearance is kept and duplicates are removed.
func Keywords(texts ...string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, text := range texts {
		words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		for _, w := range words {
			if len(w) < minKeywordLength || keywordStopwords[w] || seen[w] {
				continue
			}
			seen[w] = true
			out = append(out, w)
		}
	}
	return out
}
