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
	"path"
	"sort"
	"strings"

	"github.com/kraklabs/ctxengine/pkg/project"
)

// probeExtensions are appended, in order, to an extensionless relative
// specifier until a known file matches.
var probeExtensions = []string{
	".ts", ".tsx", ".js", ".jsx", ".mjs",
	".py", ".go", ".php", ".rb", ".java",
	".h", ".hpp", ".c", ".cpp",
	".vue", ".svelte",
}

// indexFiles are probed when a relative specifier names a directory.
var indexFiles = []string{
	"index.ts", "index.tsx", "index.js", "index.jsx",
	"__init__.py",
}

// trimmableExtensions are removed from non-relative specifiers before
// matching against extensionless paths.
var trimmableExtensions = map[string]bool{
	".ts": true, ".tsx": true, ".js": true, ".jsx": true, ".mjs": true, ".cjs": true,
	".py": true, ".go": true, ".php": true, ".rb": true, ".java": true, ".kt": true,
	".h": true, ".hpp": true, ".c": true, ".cc": true, ".cpp": true,
	".vue": true, ".svelte": true, ".json": true, ".css": true, ".scss": true,
}

// resolver maps import specifiers to known project paths.
type resolver struct {
	known  map[string]project.ProjectFile
	sorted []string
	keys   [][]string
}

func newResolver(files map[string]project.ProjectFile) *resolver {
	sorted := make([]string, 0, len(files))
	for p := range files {
		sorted = append(sorted, p)
	}
	sort.Strings(sorted)

	keys := make([][]string, len(sorted))
	for i, p := range sorted {
		keys[i] = strings.Split(strings.ToLower(trimExt(p)), "/")
	}
	return &resolver{known: files, sorted: sorted, keys: keys}
}

// resolve returns the target path for an import made by from, or "" when
// nothing matches. Self references never resolve.
func (r *resolver) resolve(from string, ref importRef) string {
	var target string
	switch {
	case isRelative(ref.spec):
		target = r.resolveRelative(from, ref.spec)
	case ref.local:
		target = r.resolveRelative(from, "./"+ref.spec)
		if target == "" {
			target = r.resolveProjectWide(ref.spec)
		}
	default:
		target = r.resolveProjectWide(ref.spec)
	}
	if target == from {
		return ""
	}
	return target
}

// resolveRelative joins spec onto the importer's directory and probes the
// exact path, known extensions, then index files.
func (r *resolver) resolveRelative(from, spec string) string {
	base := path.Join(path.Dir(from), spec)
	if base == "." || base == ".." || strings.HasPrefix(base, "../") {
		return ""
	}

	if p := r.probe(base); p != "" {
		return p
	}
	// './b.js' written for a file that is actually b.ts
	if ext := path.Ext(base); trimmableExtensions[ext] {
		return r.probe(strings.TrimSuffix(base, ext))
	}
	return ""
}

func (r *resolver) probe(base string) string {
	if _, ok := r.known[base]; ok {
		return base
	}
	for _, ext := range probeExtensions {
		if _, ok := r.known[base+ext]; ok {
			return base + ext
		}
	}
	for _, index := range indexFiles {
		candidate := base + "/" + index
		if _, ok := r.known[candidate]; ok {
			return candidate
		}
	}
	return ""
}

// resolveProjectWide matches a non-relative specifier against known paths.
//
// The specifier and each extensionless path are compared segment by segment,
// case-insensitively. The full specifier is tried first, then shorter
// suffixes down to two segments, so that "github.com/acme/app/pkg/store"
// finds "pkg/store/store.go". For each candidate a path ending with the
// segments wins over one merely containing them; ties go to the first path
// in sorted order.
func (r *resolver) resolveProjectWide(spec string) string {
	segs := specSegments(spec)
	if len(segs) == 0 {
		return ""
	}

	minLen := 2
	if len(segs) < minLen {
		minLen = len(segs)
	}
	for start := 0; len(segs)-start >= minLen; start++ {
		if p := r.match(segs[start:]); p != "" {
			return p
		}
	}
	return ""
}

func (r *resolver) match(segs []string) string {
	contained := ""
	for i, key := range r.keys {
		if endsWith(key, segs) {
			return r.sorted[i]
		}
		if contained == "" && containsRun(key, segs) {
			contained = r.sorted[i]
		}
	}
	return contained
}

func specSegments(spec string) []string {
	spec = strings.ToLower(strings.TrimSpace(spec))
	for _, prefix := range []string{"@/", "~/", "/"} {
		spec = strings.TrimPrefix(spec, prefix)
	}
	spec = strings.TrimPrefix(spec, "@")
	if ext := path.Ext(spec); trimmableExtensions[ext] {
		spec = strings.TrimSuffix(spec, ext)
	}

	var segs []string
	for _, s := range strings.Split(spec, "/") {
		if s != "" && s != "." {
			segs = append(segs, s)
		}
	}
	return segs
}

func endsWith(key, segs []string) bool {
	if len(segs) > len(key) {
		return false
	}
	off := len(key) - len(segs)
	for i, s := range segs {
		if key[off+i] != s {
			return false
		}
	}
	return true
}

func containsRun(key, segs []string) bool {
	for off := 0; off+len(segs) <= len(key); off++ {
		match := true
		for i, s := range segs {
			if key[off+i] != s {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

func trimExt(p string) string {
	return strings.TrimSuffix(p, path.Ext(p))
}
