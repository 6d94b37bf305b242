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

// minReferenceLength is the shortest identifier considered a reference.
const minReferenceLength = 3

var (
	extendsRe  = regexp.MustCompile(`\bclass\s+([A-Za-z_$][\w$]*)(?:\s*<[^>{\n]*>)?\s+extends\s+([A-Za-z_$][\w$.]*)`)
	inheritsRe = regexp.MustCompile(`(?i)\bclass\s+([A-Za-z_]\w*)\s+inherits\s+([A-Za-z_][\w.]*)`)
	pyBaseRe   = regexp.MustCompile(`(?m)^[ \t]*class[ \t]+([A-Za-z_]\w*)[ \t]*\([ \t]*([A-Za-z_][\w.]*)`)
	colonRe    = regexp.MustCompile(`\b(?:class|struct)\s+([A-Za-z_]\w*)[^:{;\n(]*?\s*:\s*(?:(?:public|protected|private|virtual)\s+)*([A-Za-z_][\w.:]*)`)
	rubyBaseRe = regexp.MustCompile(`(?m)^[ \t]*class[ \t]+([A-Za-z_]\w*)[ \t]*<[ \t]*([A-Za-z_][\w:]*)`)

	classDeclRe = regexp.MustCompile(`\b(?:class|interface|trait)\s+([A-Za-z_$][\w$]*)`)

	callRe = regexp.MustCompile(`\b([A-Za-z_$][\w$]*)\s*\(`)
)

// funcDeclPatterns find function and method declarations. Group 1 is the name.
var funcDeclPatterns = []*regexp.Regexp{
	// function foo(, function* foo(, PHP function foo(
	regexp.MustCompile(`\bfunction\s*\*?\s*([A-Za-z_$][\w$]*)\s*\(`),
	// const foo = (...) =>, const foo = async function
	regexp.MustCompile(`\b(?:const|let|var)\s+([A-Za-z_$][\w$]*)\s*=\s*(?:async\s+)?(?:function\b|\([^)]*\)\s*=>|[A-Za-z_$][\w$]*\s*=>)`),
	// Python and Ruby def
	regexp.MustCompile(`\bdef\s+(?:self\.)?([A-Za-z_]\w*)`),
	// Go func with optional receiver
	regexp.MustCompile(`\bfunc\s+(?:\([^)]*\)\s*)?([A-Za-z_]\w*)\s*[\[(]`),
	// Rust fn
	regexp.MustCompile(`\bfn\s+([A-Za-z_]\w*)`),
	// Kotlin fun with optional receiver type
	regexp.MustCompile(`\bfun\s+(?:<[^>]*>\s*)?(?:[\w.]+\.)?([A-Za-z_]\w*)\s*\(`),
	// Java, C#, TypeScript methods introduced by at least one modifier
	regexp.MustCompile(`(?m)^[ \t]*(?:(?:public|private|protected|static|final|abstract|async|override|virtual|internal|synchronized)\s+)+(?:[\w<>\[\],.?]+\s+)?([A-Za-z_]\w*)\s*\(`),
}

// cFuncDeclRe finds C and C++ function definitions at the start of a line.
var cFuncDeclRe = regexp.MustCompile(`(?m)^(?:(?:static|inline|extern)\s+)*[A-Za-z_][\w:<>]*[\s*&]+([A-Za-z_]\w*)\s*\([^;{)]*\)\s*(?:const\s*)?\{`)

// referenceStopwords are keywords and builtins that look like calls.
var referenceStopwords = toSet(
	// control flow and declarations
	"if", "for", "while", "switch", "catch", "return", "function", "typeof",
	"instanceof", "new", "class", "def", "func", "fun", "elif", "else", "sizeof",
	"try", "throw", "await", "async", "yield", "lambda", "assert", "delete",
	"void", "with", "case", "select", "defer", "using", "foreach", "until",
	"unless", "match", "when", "and", "not",
	// builtins
	"print", "println", "printf", "sprintf", "fprintf", "len", "range",
	"super", "self", "this", "console", "require", "import", "include",
	"make", "append", "panic", "recover", "cap", "copy", "close",
	"int", "str", "float", "bool", "list", "dict", "set", "tuple", "map",
	"string", "char", "long", "short", "double", "byte", "rune",
	"isinstance", "hasattr", "getattr", "setattr", "enumerate", "zip",
	"sorted", "open", "type", "object", "array", "number", "error", "errorf",
	"parseint", "parsefloat", "settimeout", "setinterval", "json", "log",
	"main", "init", "constructor", "then", "push", "keys", "values",
	"expect", "describe", "it", "test",
)

// parentRef is a detected superclass reference.
type parentRef struct {
	pos  int
	name string
}

// detectParents returns base class names declared in content, in textual
// order. Dotted or namespaced names are reduced to their last segment.
func detectParents(language, content string) []parentRef {
	var refs []parentRef
	add := func(re *regexp.Regexp) {
		for _, m := range re.FindAllStringSubmatchIndex(content, -1) {
			name := lastSegment(content[m[4]:m[5]])
			if name == "" || name == "object" {
				continue
			}
			refs = append(refs, parentRef{pos: m[0], name: name})
		}
	}

	add(extendsRe)
	add(inheritsRe)
	switch language {
	case "python":
		add(pyBaseRe)
	case "c", "cpp", "csharp", "kotlin", "swift":
		add(colonRe)
	case "ruby":
		add(rubyBaseRe)
	}

	sort.SliceStable(refs, func(i, j int) bool { return refs[i].pos < refs[j].pos })
	return refs
}

// declaredClasses returns class-like names declared in content.
func declaredClasses(content string) []string {
	var names []string
	for _, m := range classDeclRe.FindAllStringSubmatch(content, -1) {
		names = append(names, m[1])
	}
	return names
}

// declaredFunctions returns function and method names declared in content.
func declaredFunctions(language, content string) []string {
	var names []string
	for _, re := range funcDeclPatterns {
		for _, m := range re.FindAllStringSubmatch(content, -1) {
			names = append(names, m[1])
		}
	}
	if language == "c" || language == "cpp" {
		for _, m := range cFuncDeclRe.FindAllStringSubmatch(content, -1) {
			names = append(names, m[1])
		}
	}
	return names
}

// detectCalls returns call-like identifiers in textual order, excluding
// stopwords and names shorter than minReferenceLength.
func detectCalls(content string) []string {
	var names []string
	for _, m := range callRe.FindAllStringSubmatch(content, -1) {
		name := m[1]
		if len(name) < minReferenceLength || referenceStopwords[strings.ToLower(name)] {
			continue
		}
		names = append(names, name)
	}
	return names
}

func lastSegment(name string) string {
	name = strings.TrimRight(name, ".:")
	if i := strings.LastIndexAny(name, ".:"); i >= 0 {
		return name[i+1:]
	}
	return name
}

func toSet(words ...string) map[string]bool {
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}
