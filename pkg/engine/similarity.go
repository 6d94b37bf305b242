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
	"sort"
	"strings"

	"github.com/kraklabs/ctxengine/pkg/project"
)

// Similarity weights.
const (
	languageWeight  = 0.4
	directoryWeight = 0.3
	sizeWeight      = 0.3

	defaultSimilarLimit = 10
)

// SimilarFile is one result of FindSimilarFiles.
type SimilarFile struct {
	Path     string  `json:"path"`
	Language string  `json:"language"`
	Score    float64 `json:"score"`
}

// FindSimilarFiles ranks other files by shared language, directory
// proximity and size proximity to path. At most limit results are returned
// (10 when limit is not positive); files with a zero score are left out.
func (m *Manager) FindSimilarFiles(path string, limit int) ([]SimilarFile, error) {
	g := m.snapshot.Load()
	if g == nil {
		return nil, ErrNotInitialized
	}
	rel := m.relPath(path)
	ref, ok := g.File(rel)
	if !ok {
		return nil, wrapNotFound(rel)
	}
	if limit <= 0 {
		limit = defaultSimilarLimit
	}

	results := make([]SimilarFile, 0, len(g.Files))
	for _, p := range g.Paths() {
		if p == rel {
			continue
		}
		f, _ := g.File(p)
		score := similarity(ref, f)
		if score <= 0 {
			continue
		}
		results = append(results, SimilarFile{Path: p, Language: f.Language, Score: score})
	}

	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func similarity(a, b project.ProjectFile) float64 {
	score := 0.0
	if a.Language == b.Language {
		score += languageWeight
	}
	score += directoryWeight * directoryProximity(a.Dir(), b.Dir())
	score += sizeWeight * sizeProximity(a.Size, b.Size)
	return score
}

// directoryProximity is the share of leading directory segments two
// directories have in common, relative to the deeper one.
func directoryProximity(a, b string) float64 {
	as, bs := dirSegments(a), dirSegments(b)
	deepest := len(as)
	if len(bs) > deepest {
		deepest = len(bs)
	}
	if deepest == 0 {
		return 1
	}
	shared := 0
	for shared < len(as) && shared < len(bs) && as[shared] == bs[shared] {
		shared++
	}
	return float64(shared) / float64(deepest)
}

func dirSegments(dir string) []string {
	if dir == "" {
		return nil
	}
	return strings.Split(dir, "/")
}

// sizeProximity is the ratio of the smaller size to the larger one.
func sizeProximity(a, b int64) float64 {
	if a == b {
		return 1
	}
	lo, hi := a, b
	if lo > hi {
		lo, hi = hi, lo
	}
	if hi <= 0 {
		return 1
	}
	return float64(lo) / float64(hi)
}
