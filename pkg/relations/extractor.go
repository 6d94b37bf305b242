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
	"fmt"
	"log/slog"
	"sort"

	"github.com/kraklabs/ctxengine/pkg/project"
)

// Mode selects how imports are detected.
type Mode string

const (
	// ModeRegex detects every relationship kind with text patterns.
	ModeRegex Mode = "regex"
	// ModeTreeSitter reads imports of Go, Python, JavaScript and TypeScript
	// files from their syntax trees. Other languages, inheritance and
	// references still use text patterns.
	ModeTreeSitter Mode = "treesitter"
)

// ParseMode validates a mode name. The empty string selects ModeRegex.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModeRegex:
		return ModeRegex, nil
	case ModeTreeSitter:
		return ModeTreeSitter, nil
	}
	return "", fmt.Errorf("unknown extract mode %q (want %q or %q)", s, ModeRegex, ModeTreeSitter)
}

// Extractor derives relationships between project files.
type Extractor struct {
	mode   Mode
	syntax *syntaxImports
	logger *slog.Logger
}

// New creates an extractor for the given mode.
func New(mode Mode, logger *slog.Logger) (*Extractor, error) {
	if logger == nil {
		logger = slog.Default()
	}
	mode, err := ParseMode(string(mode))
	if err != nil {
		return nil, err
	}
	e := &Extractor{mode: mode, logger: logger}
	if mode == ModeTreeSitter {
		e.syntax = newSyntaxImports()
	}
	return e, nil
}

// Mode returns the extractor's import detection mode.
func (e *Extractor) Mode() Mode {
	return e.mode
}

// symbolIndex maps declared names to the first file (in path order)
// declaring them.
type symbolIndex struct {
	classes   map[string]string
	functions map[string]string
	own       map[string]map[string]bool
}

func buildSymbolIndex(files map[string]project.ProjectFile, sorted []string) *symbolIndex {
	idx := &symbolIndex{
		classes:   make(map[string]string),
		functions: make(map[string]string),
		own:       make(map[string]map[string]bool),
	}
	for _, p := range sorted {
		f := files[p]
		if !hasContent(f) {
			continue
		}
		for _, name := range declaredClasses(f.Content) {
			if _, ok := idx.classes[name]; !ok {
				idx.classes[name] = p
			}
		}
		own := make(map[string]bool)
		for _, name := range declaredFunctions(f.Language, f.Content) {
			own[name] = true
			if _, ok := idx.functions[name]; !ok {
				idx.functions[name] = p
			}
		}
		idx.own[p] = own
	}
	return idx
}

// Extract returns every relationship found in files.
//
// Files are processed in path order; for each file imports come first, then
// inheritance, then references, each in textual order. Oversized files
// produce no edges. Duplicate edges are kept. Every returned relationship
// has both endpoints in files and differs in source and target.
func (e *Extractor) Extract(ctx context.Context, files map[string]project.ProjectFile) ([]project.Relationship, error) {
	sorted := make([]string, 0, len(files))
	for p := range files {
		sorted = append(sorted, p)
	}
	sort.Strings(sorted)

	res := newResolver(files)
	idx := buildSymbolIndex(files, sorted)

	var rels []project.Relationship
	counts := make(map[project.RelationType]int, 3)
	add := func(src, dst string, t project.RelationType) {
		if dst == "" || dst == src {
			return
		}
		rels = append(rels, project.NewRelationship(src, dst, t))
		counts[t]++
	}

	for _, p := range sorted {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("extract cancelled: %w", err)
		}
		f := files[p]
		if !hasContent(f) {
			continue
		}

		for _, ref := range e.imports(ctx, f) {
			add(p, res.resolve(p, ref), project.RelationImport)
		}
		for _, parent := range detectParents(f.Language, f.Content) {
			add(p, idx.classes[parent.name], project.RelationInheritance)
		}
		own := idx.own[p]
		for _, name := range detectCalls(f.Content) {
			if own[name] {
				continue
			}
			add(p, idx.functions[name], project.RelationReference)
		}
	}

	e.logger.Debug("relations.extract.complete",
		"mode", e.mode,
		"files", len(files),
		"imports", counts[project.RelationImport],
		"inheritance", counts[project.RelationInheritance],
		"references", counts[project.RelationReference],
	)
	return rels, nil
}

func hasContent(f project.ProjectFile) bool {
	return !f.Oversized && !project.IsPlaceholder(f.Content)
}

// imports detects a file's import specifiers. In tree-sitter mode a parse
// failure falls back to text patterns.
func (e *Extractor) imports(ctx context.Context, f project.ProjectFile) []importRef {
	if e.syntax != nil && e.syntax.supports(f.Language) {
		refs, err := e.syntax.detect(ctx, f.Path, f.Language, f.Content)
		if err == nil {
			return refs
		}
		e.logger.Warn("relations.treesitter.fallback", "path", f.Path, "err", err)
	}
	return detectImports(f.Language, f.Content)
}
