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
	"sort"
	"strings"
	"time"

	"github.com/kraklabs/ctxengine/pkg/graph"
	"github.com/kraklabs/ctxengine/pkg/project"
)

// Scoring weights.
const (
	pathKeywordScore    = 3.0
	contentKeywordScore = 1.0
	sameDirScore        = 2.0
	relatedDirScore     = 1.0
	recentScore         = 1.0
	smallFileScore      = 0.5

	recentWindow   = 7 * 24 * time.Hour
	smallFileBytes = 10 * 1024

	// traversalDepth bounds the graph walk from the current file.
	traversalDepth = 2
)

// Request is a caller's request for context.
type Request struct {
	Content     string `json:"content"`
	Type        string `json:"type,omitempty"`
	Model       string `json:"model,omitempty"`
	CurrentFile string `json:"current_file,omitempty"`
	Selection   string `json:"selection,omitempty"`
}

// Options tune a selection.
type Options struct {
	// MaxTokens overrides the model budget when positive.
	MaxTokens int
	// Compression allows the Compressor to run when the selection overflows.
	Compression bool
}

// ContextWindow is the ordered set of files chosen for a request.
type ContextWindow struct {
	Files              []project.ProjectFile `json:"files"`
	TotalTokens        int                   `json:"total_tokens"`
	Budget             int                   `json:"budget"`
	RelevanceThreshold float64               `json:"relevance_threshold"`
	CompressionRatio   float64               `json:"compression_ratio"`
}

// Clone returns a deep copy of the file list.
func (w *ContextWindow) Clone() *ContextWindow {
	if w == nil {
		return nil
	}
	c := *w
	c.Files = append([]project.ProjectFile(nil), w.Files...)
	return &c
}

// Paths lists the selected file paths in order.
func (w *ContextWindow) Paths() []string {
	paths := make([]string, len(w.Files))
	for i, f := range w.Files {
		paths[i] = f.Path
	}
	return paths
}

// Selector ranks project files for a request and fills a token budget.
// A Selector holds no per-request state and may be shared.
type Selector struct {
	// DefaultMaxTokens is the budget for unknown models. Zero means
	// DefaultMaxTokens.
	DefaultMaxTokens int

	// Now returns the current time for recency scoring.
	Now func() time.Time
}

// New returns a Selector using the wall clock.
func New(defaultMaxTokens int) *Selector {
	return &Selector{DefaultMaxTokens: defaultMaxTokens, Now: time.Now}
}

type candidate struct {
	file  project.ProjectFile
	score float64
}

// Select builds a context window from g.
//
// The current file, when present in g, is always first and always included.
// Other candidates come from the graph neighbourhood of the current file and
// from a keyword search over every file. They are ranked by score and added
// greedily until the next one would exceed the budget. If the result still
// overflows (only possible through the current file) and compression is
// enabled, the window is compressed.
func (s *Selector) Select(g *graph.ProjectGraph, req Request, opts Options) *ContextWindow {
	budget := BudgetFor(req.Model, opts.MaxTokens, s.DefaultMaxTokens)
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	sc := scorer{
		keywords: Keywords(req.Content, req.Selection),
		now:      now(),
	}

	window := &ContextWindow{
		Files:            make([]project.ProjectFile, 0),
		Budget:           budget,
		CompressionRatio: 1.0,
	}

	current := project.NormalizePath(req.CurrentFile)
	currentFile, hasCurrent := g.File(current)
	if hasCurrent {
		sc.currentDir = currentFile.Dir()
		sc.hasCurrent = true
		currentFile.RelevanceScore = sc.score(currentFile)
		window.Files = append(window.Files, currentFile)
		window.TotalTokens = EstimateTokens(currentFile.Content)
	}

	cands := s.candidates(g, current, hasCurrent, &sc)
	sort.SliceStable(cands, func(i, j int) bool { return cands[i].score > cands[j].score })

	for _, c := range cands {
		tokens := EstimateTokens(c.file.Content)
		if window.TotalTokens+tokens > budget {
			break
		}
		f := c.file
		f.RelevanceScore = c.score
		window.Files = append(window.Files, f)
		window.TotalTokens += tokens
		window.RelevanceThreshold = c.score
	}

	if opts.Compression && window.TotalTokens > budget {
		files, ratio := Compress(window.Files, budget)
		window.Files = files
		window.CompressionRatio = ratio
		window.TotalTokens = 0
		for _, f := range files {
			window.TotalTokens += EstimateTokens(f.Content)
		}
	}
	return window
}

// candidates collects graph neighbours first, then keyword matches, in
// discovery order and without duplicates.
func (s *Selector) candidates(g *graph.ProjectGraph, current string, hasCurrent bool, sc *scorer) []candidate {
	var out []candidate
	seen := make(map[string]bool)
	if hasCurrent {
		seen[current] = true
		for _, p := range g.Reachable(current, traversalDepth) {
			f, _ := g.File(p)
			seen[p] = true
			out = append(out, candidate{file: f, score: sc.score(f)})
		}
	}

	if len(sc.keywords) == 0 {
		return out
	}
	for _, p := range g.Paths() {
		if seen[p] {
			continue
		}
		f, _ := g.File(p)
		if sc.keywordScore(f) == 0 {
			continue
		}
		seen[p] = true
		out = append(out, candidate{file: f, score: sc.score(f)})
	}
	return out
}

type scorer struct {
	keywords   []string
	now        time.Time
	currentDir string
	hasCurrent bool
}

// keywordScore adds 3 per keyword found in the path and 1 per keyword found
// in the content. Placeholder content is not searched.
func (sc *scorer) keywordScore(f project.ProjectFile) float64 {
	if len(sc.keywords) == 0 {
		return 0
	}
	lowerPath := strings.ToLower(f.Path)
	lowerContent := ""
	if !f.Oversized {
		lowerContent = strings.ToLower(f.Content)
	}

	score := 0.0
	for _, kw := range sc.keywords {
		if strings.Contains(lowerPath, kw) {
			score += pathKeywordScore
		}
		if lowerContent != "" && strings.Contains(lowerContent, kw) {
			score += contentKeywordScore
		}
	}
	return score
}

func (sc *scorer) score(f project.ProjectFile) float64 {
	score := sc.keywordScore(f)

	if sc.hasCurrent {
		dir := f.Dir()
		switch {
		case dir == sc.currentDir:
			score += sameDirScore
		case isAncestorDir(dir, sc.currentDir) || isAncestorDir(sc.currentDir, dir):
			score += relatedDirScore
		}
	}
	if !f.LastModified.IsZero() && sc.now.Sub(f.LastModified) <= recentWindow {
		score += recentScore
	}
	if f.Size < smallFileBytes {
		score += smallFileScore
	}
	return score
}

// isAncestorDir reports whether dir a strictly contains dir b. The project
// root is "".
func isAncestorDir(a, b string) bool {
	if a == b {
		return false
	}
	return a == "" || strings.HasPrefix(b, a+"/")
}
