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
	"github.com/kraklabs/ctxengine/pkg/project"
	"github.com/kraklabs/ctxengine/pkg/relations"
	"github.com/kraklabs/ctxengine/pkg/selector"
)

// DefaultCacheSize is the number of context windows kept in the cache.
const DefaultCacheSize = 100

// Config configures a Manager.
type Config struct {
	// ExcludeGlobs are added to the scanner's built-in excludes.
	ExcludeGlobs []string

	// MaxFileSize is the placeholder threshold in bytes.
	MaxFileSize int64

	// Workers bounds concurrent file reads during a scan.
	Workers int

	// ExtractMode selects regex or tree-sitter import detection.
	ExtractMode relations.Mode

	// DefaultModel is used for requests that do not name a model.
	DefaultModel string

	// DefaultMaxTokens is the budget for models missing from the table.
	DefaultMaxTokens int

	// CacheSize bounds the window cache.
	CacheSize int

	// OnFile is forwarded to the scanner for progress reporting.
	OnFile func(path string)
}

// DefaultConfig returns the configuration used when none is given.
func DefaultConfig() Config {
	return Config{
		MaxFileSize:      project.MaxFileSize,
		Workers:          8,
		ExtractMode:      relations.ModeRegex,
		DefaultMaxTokens: selector.DefaultMaxTokens,
		CacheSize:        DefaultCacheSize,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.MaxFileSize <= 0 {
		c.MaxFileSize = d.MaxFileSize
	}
	if c.Workers <= 0 {
		c.Workers = d.Workers
	}
	if c.ExtractMode == "" {
		c.ExtractMode = d.ExtractMode
	}
	if c.DefaultMaxTokens <= 0 {
		c.DefaultMaxTokens = d.DefaultMaxTokens
	}
	if c.CacheSize <= 0 {
		c.CacheSize = d.CacheSize
	}
	return c
}
