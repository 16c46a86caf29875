// Package parsers wires tree-sitter grammars to the code splitter, grounded
// on the teacher's per-language parser files (rust.go, typescript.go,
// python.go) which each wrap a *sitter.Language behind a shared
// tree-sitter-parsing helper.
package parsers

import (
	sitter "github.com/tree-sitter/go-tree-sitter"
	tsgo "github.com/tree-sitter/tree-sitter-go/bindings/go"
	tsjavascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	tspython "github.com/tree-sitter/tree-sitter-python/bindings/go"
	tsrust "github.com/tree-sitter/tree-sitter-rust/bindings/go"
	tstypescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"

	"github.com/mvp-joe/ragctl/internal/knowledge"
)

// Declaration is one top-level syntactic unit a parser found: a function,
// class, struct, impl block, etc. Code exceeding MaxSize within a single
// Declaration is the code splitter's cue to fall back to line-based
// splitting for that declaration only.
type Declaration struct {
	Name      string
	Kind      string
	Text      string
	StartByte int
	EndByte   int
	StartLine int
	EndLine   int
}

// Language returns the compiled *sitter.Language for a knowledge
// ProgrammingLanguage, or nil if unsupported (the caller should use the
// fallback splitter in that case).
func Language(lang knowledge.ProgrammingLanguage) *sitter.Language {
	switch lang {
	case knowledge.ProgLangGo:
		return sitter.NewLanguage(tsgo.Language())
	case knowledge.ProgLangJavaScript:
		return sitter.NewLanguage(tsjavascript.Language())
	case knowledge.ProgLangPython:
		return sitter.NewLanguage(tspython.Language())
	case knowledge.ProgLangRust:
		return sitter.NewLanguage(tsrust.Language())
	case knowledge.ProgLangTypeScript:
		return sitter.NewLanguage(tstypescript.LanguageTypescript())
	default:
		return nil
	}
}

// topLevelKinds lists the node kinds, across the five supported grammars,
// that should act as chunk boundaries: function/class/struct/impl-like
// declarations. Anything else at the top level (imports, comments, stray
// expressions) rides along with the next declaration.
var topLevelKinds = map[string]bool{
	// go
	"function_declaration": true, "method_declaration": true,
	"type_declaration": true, "const_declaration": true, "var_declaration": true,
	// javascript / typescript
	"function_declaration_ts": true, "class_declaration": true,
	"lexical_declaration": true, "interface_declaration": true,
	"export_statement": true,
	// python
	"function_definition": true, "class_definition": true, "decorated_definition": true,
	// rust
	"function_item": true, "struct_item": true, "impl_item": true,
	"enum_item": true, "trait_item": true, "mod_item": true,
}

// ExtractDeclarations walks the root node's direct children and returns one
// Declaration per recognized top-level node, in source order. Nodes that
// aren't recognized declarations are merged into the following declaration
// (or dropped if they trail the last one), the way the teacher's walkTree
// visits children without re-parsing.
func ExtractDeclarations(lang *sitter.Language, source []byte) ([]Declaration, error) {
	parser := sitter.NewParser()
	defer parser.Close()
	if err := parser.SetLanguage(lang); err != nil {
		return nil, err
	}
	tree := parser.Parse(source, nil)
	if tree == nil {
		return nil, errParse
	}
	defer tree.Close()

	root := tree.RootNode()
	var decls []Declaration
	var pendingStart = -1

	n := int(root.ChildCount())
	for i := 0; i < n; i++ {
		child := root.Child(uint(i))
		if child == nil {
			continue
		}
		kind := child.Kind()
		start := int(child.StartByte())
		end := int(child.EndByte())

		if !topLevelKinds[kind] {
			if pendingStart < 0 {
				pendingStart = start
			}
			continue
		}

		effectiveStart := start
		if pendingStart >= 0 {
			effectiveStart = pendingStart
			pendingStart = -1
		}

		name := declarationName(child, source)
		decls = append(decls, Declaration{
			Name:      name,
			Kind:      kind,
			Text:      string(source[effectiveStart:end]),
			StartByte: effectiveStart,
			EndByte:   end,
			StartLine: int(child.StartPosition().Row) + 1,
			EndLine:   int(child.EndPosition().Row) + 1,
		})
	}
	return decls, nil
}

func declarationName(node *sitter.Node, source []byte) string {
	if nameNode := node.ChildByFieldName("name"); nameNode != nil {
		return string(source[nameNode.StartByte():nameNode.EndByte()])
	}
	return ""
}

var errParse = &parseErr{"tree-sitter parse returned nil tree"}

type parseErr struct{ msg string }

func (e *parseErr) Error() string { return e.msg }
