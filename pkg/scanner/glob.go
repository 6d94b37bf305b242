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

package scanner

import (
	"path"
	"strings"
)

// DefaultExcludeGlobs lists version-control, build-output, cache and OS
// metadata locations that are never scanned.
var DefaultExcludeGlobs = []string{
	".git/**",
	".svn/**",
	".hg/**",
	"node_modules/**",
	"bower_components/**",
	"dist/**",
	"build/**",
	"out/**",
	"target/**",
	".next/**",
	".nuxt/**",
	"coverage/**",
	"__pycache__/**",
	".cache/**",
	".pytest_cache/**",
	".mypy_cache/**",
	".gradle/**",
	".idea/**",
	".vscode/**",
	".ctxengine/**",
	"**/.DS_Store",
	"**/Thumbs.db",
	"*.min.js",
	"*.map",
}

// matchesGlob reports whether a slash separated relative path matches an
// exclude pattern.
//
// Supported syntax:
//   - * and ? within one path segment, [abc] and [a-z] classes
//   - ** for any number of segments (including none)
//
// Patterns without a leading "/" are unanchored: they may match starting at
// any segment of the path, so "bin/**" excludes "apps/catalog/bin/tool".
func matchesGlob(relPath, pattern string) bool {
	if pattern == "" {
		return false
	}
	anchored := strings.HasPrefix(pattern, "/")
	pattern = strings.TrimPrefix(pattern, "/")
	patSegs := strings.Split(pattern, "/")

	var pathSegs []string
	if relPath != "" {
		pathSegs = strings.Split(relPath, "/")
	}

	if anchored {
		return matchSegments(pathSegs, patSegs)
	}
	for i := 0; i <= len(pathSegs); i++ {
		if matchSegments(pathSegs[i:], patSegs) {
			return true
		}
	}
	return false
}

// matchSegments matches path segments against pattern segments.
func matchSegments(pathSegs, patSegs []string) bool {
	if len(patSegs) == 0 {
		return len(pathSegs) == 0
	}
	if patSegs[0] == "**" {
		for i := 0; i <= len(pathSegs); i++ {
			if matchSegments(pathSegs[i:], patSegs[1:]) {
				return true
			}
		}
		return false
	}
	if len(pathSegs) == 0 {
		return false
	}
	ok, err := path.Match(patSegs[0], pathSegs[0])
	if err != nil {
		// Malformed pattern: fall back to a literal comparison.
		ok = patSegs[0] == pathSegs[0]
	}
	return ok && matchSegments(pathSegs[1:], patSegs[1:])
}
