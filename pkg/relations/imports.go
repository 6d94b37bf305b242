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
	"regexp"
	"sort"
	"strings"
)

// importRef is one import specifier found in a file.
type importRef struct {
	pos  int
	spec string

	// local specifiers are tried against the importer's directory before
	// falling back to a project-wide match (C quoted includes).
	local bool
}

var (
	// ES modules: import x from 'y', import { a, b } from "y", import 'y'.
	esImportRe = regexp.MustCompile(`\bimport\s+(?:[^'";]*?\s+from\s+)?['"]([^'"\n]+)['"]`)
	// Re-exports: export { a } from './a', export * from './a'.
	esExportRe = regexp.MustCompile(`\bexport\s+[^'";]*?\s+from\s+['"]([^'"\n]+)['"]`)
	// CommonJS require('y') and dynamic import('y').
	requireRe = regexp.MustCompile(`\b(?:require|import)\s*\(\s*['"]([^'"\n]+)['"]\s*\)`)

	pyFromRe   = regexp.MustCompile(`(?m)^[ \t]*from[ \t]+(\.+[\w.]*|[\w.]+)[ \t]+import[ \t]+\(?[ \t]*([\w*][\w \t,]*)`)
	pyImportRe = regexp.MustCompile(`(?m)^[ \t]*import[ \t]+([\w.]+(?:[ \t]+as[ \t]+\w+)?(?:[ \t]*,[ \t]*[\w.]+(?:[ \t]+as[ \t]+\w+)?)*)`)

	cIncludeRe = regexp.MustCompile(`(?m)^[ \t]*#[ \t]*include[ \t]*([<"])([^>"\n]+)[>"]`)

	goImportRe      = regexp.MustCompile(`(?m)^[ \t]*import[ \t]+(?:[\w.]+[ \t]+)?"([^"\n]+)"`)
	goImportBlockRe = regexp.MustCompile(`(?s)\bimport\s*\((.*?)\)`)
	goImportSpecRe  = regexp.MustCompile(`(?m)^[ \t]*(?:[\w.]+[ \t]+)?"([^"\n]+)"`)

	phpUseRe = regexp.MustCompile(`(?m)^[ \t]*use[ \t]+\\?([\w\\]+)(?:[ \t]+as[ \t]+\w+)?[ \t]*;`)

	jvmImportRe = regexp.MustCompile(`(?m)^[ \t]*import[ \t]+(?:static[ \t]+)?([\w.]+)[ \t]*;?[ \t]*$`)

	rubyRequireRelativeRe = regexp.MustCompile(`\brequire_relative\s*\(?\s*['"]([^'"\n]+)['"]`)
)

// detectImports returns the import specifiers of a file in textual order.
func detectImports(language, content string) []importRef {
	var refs []importRef

	switch language {
	case "javascript", "typescript", "vue", "svelte":
		refs = appendMatches(refs, esImportRe, content, 1)
		refs = appendMatches(refs, esExportRe, content, 1)
		refs = appendMatches(refs, requireRe, content, 1)

	case "python":
		for _, m := range pyFromRe.FindAllStringSubmatchIndex(content, -1) {
			module := content[m[2]:m[3]]
			names := splitNames(content[m[4]:m[5]])
			for _, spec := range pythonSpecs(module, names) {
				refs = append(refs, importRef{pos: m[0], spec: spec})
			}
		}
		for _, m := range pyImportRe.FindAllStringSubmatchIndex(content, -1) {
			for _, name := range splitNames(content[m[2]:m[3]]) {
				refs = append(refs, importRef{pos: m[0], spec: strings.ReplaceAll(name, ".", "/")})
			}
		}

	case "c", "cpp":
		for _, m := range cIncludeRe.FindAllStringSubmatchIndex(content, -1) {
			refs = append(refs, importRef{
				pos:   m[0],
				spec:  content[m[4]:m[5]],
				local: content[m[2]:m[3]] == `"`,
			})
		}

	case "go":
		refs = appendMatches(refs, goImportRe, content, 1)
		for _, block := range goImportBlockRe.FindAllStringSubmatchIndex(content, -1) {
			body := content[block[2]:block[3]]
			for _, m := range goImportSpecRe.FindAllStringSubmatchIndex(body, -1) {
				refs = append(refs, importRef{pos: block[2] + m[0], spec: body[m[2]:m[3]]})
			}
		}

	case "php":
		for _, m := range phpUseRe.FindAllStringSubmatchIndex(content, -1) {
			refs = append(refs, importRef{pos: m[0], spec: strings.ReplaceAll(content[m[2]:m[3]], `\`, "/")})
		}

	case "java", "kotlin", "scala":
		for _, m := range jvmImportRe.FindAllStringSubmatchIndex(content, -1) {
			spec := strings.TrimSuffix(content[m[2]:m[3]], ".")
			refs = append(refs, importRef{pos: m[0], spec: strings.ReplaceAll(spec, ".", "/")})
		}

	case "ruby":
		for _, m := range rubyRequireRelativeRe.FindAllStringSubmatchIndex(content, -1) {
			spec := content[m[2]:m[3]]
			if !isRelative(spec) {
				spec = "./" + spec
			}
			refs = append(refs, importRef{pos: m[0], spec: spec})
		}
	}

	sort.SliceStable(refs, func(i, j int) bool { return refs[i].pos < refs[j].pos })
	return refs
}

func appendMatches(refs []importRef, re *regexp.Regexp, content string, group int) []importRef {
	for _, m := range re.FindAllStringSubmatchIndex(content, -1) {
		refs = append(refs, importRef{pos: m[0], spec: content[m[2*group]:m[2*group+1]]})
	}
	return refs
}

// splitNames splits "a as b, c" into ["a", "c"].
func splitNames(list string) []string {
	var names []string
	for _, part := range strings.Split(list, ",") {
		fields := strings.Fields(part)
		if len(fields) == 0 {
			continue
		}
		names = append(names, fields[0])
	}
	return names
}

// pythonSpecs converts a from-import into path-like specifiers.
// Leading dots become ./ and ../ prefixes. A bare relative module
// ("from . import b") yields one specifier per imported name.
func pythonSpecs(module string, names []string) []string {
	dots := len(module) - len(strings.TrimLeft(module, "."))
	rest := strings.ReplaceAll(module[dots:], ".", "/")
	if dots == 0 {
		return []string{rest}
	}

	prefix := "./"
	if dots > 1 {
		prefix = strings.Repeat("../", dots-1)
	}
	if rest != "" {
		return []string{prefix + rest}
	}

	specs := make([]string, 0, len(names))
	for _, name := range names {
		if name == "*" {
			continue
		}
		specs = append(specs, prefix+name)
	}
	return specs
}

func isRelative(spec string) bool {
	return spec == "." || spec == ".." || strings.HasPrefix(spec, "./") || strings.HasPrefix(spec, "../")
}
