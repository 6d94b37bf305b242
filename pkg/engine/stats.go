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
	"fmt"
	"time"

	"github.com/kraklabs/ctxengine/pkg/project"
)

// ProjectStats summarizes the current snapshot.
type ProjectStats struct {
	Root              string                       `json:"root"`
	FileCount         int                          `json:"file_count"`
	RelationshipCount int                          `json:"relationship_count"`
	ClusterCount      int                          `json:"cluster_count"`
	EntryPointCount   int                          `json:"entry_point_count"`
	LargestCluster    int                          `json:"largest_cluster"`
	OversizedFiles    int                          `json:"oversized_files"`
	TotalSize         int64                        `json:"total_size"`
	AverageFileSize   float64                      `json:"average_file_size"`
	Languages         map[string]int               `json:"languages"`
	RelationshipTypes map[project.RelationType]int `json:"relationship_types"`
	EntryPoints       []string                     `json:"entry_points"`
	CachedWindows     int                          `json:"cached_windows"`
	BuiltAt           time.Time                    `json:"built_at"`
}

// GetProjectStats returns aggregate counts for the current snapshot.
func (m *Manager) GetProjectStats() (*ProjectStats, error) {
	g := m.snapshot.Load()
	if g == nil {
		return nil, ErrNotInitialized
	}

	stats := &ProjectStats{
		Root:              g.Root,
		FileCount:         len(g.Files),
		RelationshipCount: len(g.Relationships),
		ClusterCount:      len(g.Clusters),
		EntryPointCount:   len(g.EntryPoints),
		Languages:         make(map[string]int),
		RelationshipTypes: make(map[project.RelationType]int),
		EntryPoints:       append([]string(nil), g.EntryPoints...),
		CachedWindows:     m.cache.len(),
		BuiltAt:           g.BuiltAt,
	}
	for _, f := range g.Files {
		stats.Languages[f.Language]++
		stats.TotalSize += f.Size
		if f.Oversized {
			stats.OversizedFiles++
		}
	}
	if stats.FileCount > 0 {
		stats.AverageFileSize = float64(stats.TotalSize) / float64(stats.FileCount)
	}
	for _, r := range g.Relationships {
		stats.RelationshipTypes[r.Type]++
	}
	for _, c := range g.Clusters {
		if len(c) > stats.LargestCluster {
			stats.LargestCluster = len(c)
		}
	}
	return stats, nil
}

// FileRelationships lists the edges of one file.
type FileRelationships struct {
	Path       string                 `json:"path"`
	Outgoing   []project.Relationship `json:"outgoing"`
	Incoming   []project.Relationship `json:"incoming"`
	Cluster    []string               `json:"cluster,omitempty"`
	EntryPoint bool                   `json:"entry_point"`
}

// GetFileRelationships returns the incoming and outgoing relationships of a
// file in the current snapshot.
func (m *Manager) GetFileRelationships(path string) (*FileRelationships, error) {
	g := m.snapshot.Load()
	if g == nil {
		return nil, ErrNotInitialized
	}
	rel := m.relPath(path)
	if !g.Has(rel) {
		return nil, wrapNotFound(rel)
	}
	return &FileRelationships{
		Path:       rel,
		Outgoing:   g.Outgoing(rel),
		Incoming:   g.Incoming(rel),
		Cluster:    g.ClusterOf(rel),
		EntryPoint: g.IsEntryPoint(rel),
	}, nil
}

func wrapNotFound(path string) error {
	return fmt.Errorf("%w: %s", ErrFileNotFound, path)
}
