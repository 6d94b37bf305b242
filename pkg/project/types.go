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

// Package project defines the entities shared by every stage of the context
// engine: scanned files and the relationships extracted between them.
package project

import (
	"fmt"
	"path"
	"strings"
	"time"
)

// MaxFileSize is the default cap above which a file is tracked with a
// placeholder instead of its content.
const MaxFileSize int64 = 1 << 20

// DefaultLanguage is the language tag used for unknown extensions.
const DefaultLanguage = "text"

const placeholderPrefix = "[file too large: "

// RelationType classifies an edge between two files.
type RelationType string

const (
	RelationImport      RelationType = "import"
	RelationInheritance RelationType = "inheritance"
	RelationReference   RelationType = "reference"
)

// Strength returns the fixed weight for the relation type.
// The weight is informational and never drives selection.
func (t RelationType) Strength() float64 {
	switch t {
	case RelationImport:
		return 0.8
	case RelationInheritance:
		return 0.9
	case RelationReference:
		return 0.6
	default:
		return 0
	}
}

// ProjectFile is a single tracked source file.
type ProjectFile struct {
	// Path is relative to the project root, slash separated, and unique
	// within a graph.
	Path string `json:"path"`

	// Content holds the file text, or a placeholder when Oversized is set.
	Content string `json:"content"`

	Language     string    `json:"language"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"last_modified"`

	// RelevanceScore is only populated on copies returned inside a context
	// window. It is recomputed for every request.
	RelevanceScore float64 `json:"relevance_score,omitempty"`

	// Oversized marks files whose content was replaced by a placeholder.
	Oversized bool `json:"oversized,omitempty"`
}

// Dir returns the slash separated directory of the file, "" for files at
// the project root.
func (f ProjectFile) Dir() string {
	if d := path.Dir(f.Path); d != "." {
		return d
	}
	return ""
}

// Relationship is a directed edge between two files of the same graph.
type Relationship struct {
	Source   string       `json:"source"`
	Target   string       `json:"target"`
	Type     RelationType `json:"type"`
	Strength float64      `json:"strength"`
}

// NewRelationship builds an edge with the fixed strength of its type.
func NewRelationship(source, target string, typ RelationType) Relationship {
	return Relationship{
		Source:   source,
		Target:   target,
		Type:     typ,
		Strength: typ.Strength(),
	}
}

// Placeholder returns the content stored for files above the size cap.
func Placeholder(size int64) string {
	return fmt.Sprintf("%s%d bytes]", placeholderPrefix, size)
}

// IsPlaceholder reports whether content is an oversize placeholder.
func IsPlaceholder(content string) bool {
	return strings.HasPrefix(content, placeholderPrefix) && strings.HasSuffix(content, " bytes]")
}

// NormalizePath converts a caller supplied path into the canonical graph key:
// forward slashes, no leading "./" or "/", cleaned.
func NormalizePath(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	p = strings.TrimPrefix(p, "./")
	p = path.Clean(p)
	p = strings.TrimLeft(p, "/")
	if p == "." {
		return ""
	}
	return p
}
