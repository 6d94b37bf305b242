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
	"unicode/utf8"

	"github.com/kraklabs/ctxengine/pkg/project"
)

// TruncationMarker replaces the middle of a compressed file.
const TruncationMarker = "\n... [truncated] ...\n"

// Compress shrinks files towards budget with one uniform ratio.
//
// When the estimated total already fits, files are returned unchanged with
// ratio 1. Otherwise ratio = budget / total and every file gets the same
// character allowance, ratio × total characters / file count. Files within
// the allowance are kept verbatim; longer ones keep their head and tail
// around TruncationMarker. The result is not re-checked against budget.
func Compress(files []project.ProjectFile, budget int) ([]project.ProjectFile, float64) {
	total, chars := 0, 0
	for _, f := range files {
		total += EstimateTokens(f.Content)
		chars += len(f.Content)
	}
	if len(files) == 0 || total <= budget {
		return files, 1.0
	}

	ratio := float64(budget) / float64(total)
	if ratio < 0 {
		ratio = 0
	}
	allowance := int(ratio * float64(chars) / float64(len(files)))

	out := make([]project.ProjectFile, len(files))
	for i, f := range files {
		if len(f.Content) > allowance {
			f.Content = truncateMiddle(f.Content, allowance)
		}
		out[i] = f
	}
	return out, ratio
}

// truncateMiddle keeps about limit bytes of s, marker included, split
// evenly between the start and the end. A limit too small to hold the
// marker keeps only the head. Cuts never split a UTF-8 sequence.
func truncateMiddle(s string, limit int) string {
	if limit >= len(s) {
		return s
	}
	keep := limit - len(TruncationMarker)
	if keep <= 0 {
		head := max(limit, 0)
		for head > 0 && !utf8.RuneStart(s[head]) {
			head--
		}
		return s[:head]
	}
	headLen := keep / 2
	tailLen := keep - headLen

	head := headLen
	for head > 0 && !utf8.RuneStart(s[head]) {
		head--
	}
	tail := len(s) - tailLen
	for tail < len(s) && !utf8.RuneStart(s[tail]) {
		tail++
	}
	if tail < head {
		tail = head
	}
	return s[:head] + TruncationMarker + s[tail:]
}
