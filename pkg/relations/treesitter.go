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
	"strings"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// syntaxImports detects imports from syntax trees for the languages that
// have a grammar wired in. Parsers are not safe for concurrent use, so every
// parse holds mu.
type syntaxImports struct {
	mu      sync.Mutex
	parsers map[string]*sitter.Parser
}

func newSyntaxImports() *syntaxImports {
	grammars := map[string]*sitter.Language{
		"go":         golang.GetLanguage(),
		"python":     python.GetLanguage(),
		"javascript": javascript.GetLanguage(),
		"typescript": typescript.GetLanguage(),
		"tsx":        tsx.GetLanguage(),
	}
	parsers := make(map[string]*sitter.Parser, len(grammars))
	for name, lang := range grammars {
		p := sitter.NewParser()
		p.SetLanguage(lang)
		parsers[name] = p
	}
	return &syntaxImports{parsers: parsers}
}

// supports reports whether a syntax tree can be built for the file.
func (s *syntaxImports) supports(language string) bool {
	switch language {
	case "go", "python", "javascript", "typescript":
		return true
	}
	return false
}

// detect returns the import specifiers of a file in source order.
func (s *syntaxImports) detect(ctx context.Context, filePath, language, content string) ([]importRef, error) {
	grammar := language
	if language == "typescript" && strings.HasSuffix(filePath, ".tsx") {
		grammar = "tsx"
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	parser, ok := s.parsers[grammar]
	if !ok {
		return nil, fmt.Errorf("no grammar for %s", language)
	}

	src := []byte(content)
	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("tree-sitter parse: %w", err)
	}
	defer tree.Close()

	root := tree.RootNode()
	var refs []importRef
	switch language {
	case "go":
		refs = goSyntaxImports(root, src)
	case "python":
		refs = pythonSyntaxImports(root, src)
	default:
		refs = scriptSyntaxImports(root, src)
	}
	return refs, nil
}

// goSyntaxImports reads the path of every import_spec, in single imports
// and in import blocks.
func goSyntaxImports(root *sitter.Node, src []byte) []importRef {
	var refs []importRef
	addSpec := func(spec *sitter.Node) {
		pathNode := spec.ChildByFieldName("path")
		if pathNode == nil {
			return
		}
		refs = append(refs, importRef{pos: int(spec.StartByte()), spec: unquote(pathNode.Content(src))})
	}

	for i := 0; i < int(root.ChildCount()); i++ {
		decl := root.Child(i)
		if decl.Type() != "import_declaration" {
			continue
		}
		for j := 0; j < int(decl.ChildCount()); j++ {
			child := decl.Child(j)
			switch child.Type() {
			case "import_spec":
				addSpec(child)
			case "import_spec_list":
				for k := 0; k < int(child.ChildCount()); k++ {
					if spec := child.Child(k); spec.Type() == "import_spec" {
						addSpec(spec)
					}
				}
			}
		}
	}
	return refs
}

// pythonSyntaxImports handles "import a.b" and "from .m import x".
func pythonSyntaxImports(root *sitter.Node, src []byte) []importRef {
	var refs []importRef
	walk(root, func(n *sitter.Node) bool {
		switch n.Type() {
		case "import_statement":
			for _, name := range importedNames(n, src, false) {
				refs = append(refs, importRef{pos: int(n.StartByte()), spec: strings.ReplaceAll(name, ".", "/")})
			}
			return false
		case "import_from_statement":
			module := n.ChildByFieldName("module_name")
			if module == nil {
				return false
			}
			for _, spec := range pythonSpecs(module.Content(src), importedNames(n, src, true)) {
				refs = append(refs, importRef{pos: int(n.StartByte()), spec: spec})
			}
			return false
		}
		return true
	})
	return refs
}

// importedNames lists the dotted names of an import statement. For
// from-imports only the names after the import keyword are returned.
func importedNames(n *sitter.Node, src []byte, afterImport bool) []string {
	var names []string
	seenImport := !afterImport
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		switch child.Type() {
		case "import":
			seenImport = true
		case "dotted_name":
			if seenImport {
				names = append(names, child.Content(src))
			}
		case "aliased_import":
			if name := child.ChildByFieldName("name"); name != nil && seenImport {
				names = append(names, name.Content(src))
			}
		case "wildcard_import":
			if seenImport {
				names = append(names, "*")
			}
		}
	}
	return names
}

// scriptSyntaxImports handles ES import and re-export sources, require()
// and dynamic import() calls.
func scriptSyntaxImports(root *sitter.Node, src []byte) []importRef {
	var refs []importRef
	walk(root, func(n *sitter.Node) bool {
		switch n.Type() {
		case "import_statement", "export_statement":
			if source := n.ChildByFieldName("source"); source != nil {
				refs = append(refs, importRef{pos: int(n.StartByte()), spec: unquote(source.Content(src))})
				return false
			}
		case "call_expression":
			fn := n.ChildByFieldName("function")
			args := n.ChildByFieldName("arguments")
			if fn == nil || args == nil {
				return true
			}
			if name := fn.Content(src); name != "require" && name != "import" {
				return true
			}
			if args.NamedChildCount() == 0 {
				return true
			}
			if arg := args.NamedChild(0); arg.Type() == "string" {
				refs = append(refs, importRef{pos: int(n.StartByte()), spec: unquote(arg.Content(src))})
			}
		}
		return true
	})
	return refs
}

// walk visits nodes depth first. visit returns false to skip children.
func walk(n *sitter.Node, visit func(*sitter.Node) bool) {
	if n == nil || !visit(n) {
		return
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		walk(n.Child(i), visit)
	}
}

func unquote(s string) string {
	return strings.Trim(s, "\"'`")
}
