package chunking

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/java"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

var definitionNodes = map[string]bool{
	"function_definition":   true,
	"class_definition":      true,
	"function_declaration":  true,
	"class_declaration":     true,
	"method_definition":     true,
	"method_declaration":    true,
	"interface_declaration": true,
	"enum_declaration":      true,
	"type_declaration":      true,
}

var classNodes = map[string]bool{
	"class_definition":      true,
	"class_declaration":     true,
	"interface_declaration": true,
	"enum_declaration":      true,
	"type_declaration":      true,
}

// wrapper nodes whose inner declaration is the real definition
var wrapperNodes = map[string]bool{
	"decorated_definition": true,
	"export_statement":     true,
}

// TreeSitterParser extracts top-level definitions with a tree-sitter grammar.
// A new sitter.Parser is created per call since parsers are not goroutine safe.
type TreeSitterParser struct {
	lang *sitter.Language
}

// NewTreeSitterParser creates a parser for the given grammar.
func NewTreeSitterParser(lang *sitter.Language) *TreeSitterParser {
	return &TreeSitterParser{lang: lang}
}

// Definitions implements Parser.
func (p *TreeSitterParser) Definitions(ctx context.Context, src []byte) ([]Definition, error) {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(p.lang)

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("tree-sitter parse: %w", err)
	}
	defer tree.Close()

	root := tree.RootNode()
	var defs []Definition
	// docStart is the first row of the comment block directly above the
	// next node, or -1.
	docStart, prevEnd, codeEnd := -1, -1, -1
	for i := 0; i < int(root.NamedChildCount()); i++ {
		outer := root.NamedChild(i)
		row := int(outer.StartPoint().Row)
		if outer.Type() == "comment" {
			switch {
			case row <= codeEnd:
				// trailing comment on a code line
			case docStart < 0 || row > prevEnd+1:
				docStart = row
			}
			prevEnd = int(outer.EndPoint().Row)
			continue
		}
		start := row
		if docStart >= 0 && row == prevEnd+1 {
			start = docStart
		}
		docStart, codeEnd = -1, int(outer.EndPoint().Row)

		node := unwrap(outer)
		if node == nil {
			continue
		}
		def, ok := definitionOf(node, src)
		if !ok {
			continue
		}
		// doc comments, decorators and export keywords belong to the chunk
		def.StartLine = start + 1
		def.EndLine = codeEnd + 1
		defs = append(defs, def)
	}
	return defs, nil
}

func unwrap(n *sitter.Node) *sitter.Node {
	for n != nil && wrapperNodes[n.Type()] {
		inner := n.ChildByFieldName("definition")
		if inner == nil {
			inner = n.ChildByFieldName("declaration")
		}
		if inner == nil && n.NamedChildCount() > 0 {
			inner = n.NamedChild(int(n.NamedChildCount()) - 1)
		}
		n = inner
	}
	return n
}

func definitionOf(n *sitter.Node, src []byte) (Definition, bool) {
	typ := n.Type()
	if definitionNodes[typ] {
		def := Definition{NodeType: typ}
		if name := n.ChildByFieldName("name"); name != nil {
			def.Name = name.Content(src)
		}
		if typ == "type_declaration" {
			def.Name = goTypeName(n, src)
		}
		if recv := n.ChildByFieldName("receiver"); recv != nil {
			def.Class = goReceiverType(recv, src)
		}
		if classNodes[typ] {
			def.Class = def.Name
		}
		return def, true
	}
	// const handler = () => {...}
	if typ == "lexical_declaration" || typ == "variable_declaration" {
		for i := 0; i < int(n.NamedChildCount()); i++ {
			decl := n.NamedChild(i)
			if decl.Type() != "variable_declarator" {
				continue
			}
			value := decl.ChildByFieldName("value")
			if value == nil {
				continue
			}
			switch value.Type() {
			case "arrow_function", "function", "function_expression":
				def := Definition{NodeType: value.Type()}
				if name := decl.ChildByFieldName("name"); name != nil {
					def.Name = name.Content(src)
				}
				return def, true
			}
		}
	}
	return Definition{}, false
}

// goTypeName names the first spec of a Go type declaration.
func goTypeName(n *sitter.Node, src []byte) string {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if name := n.NamedChild(i).ChildByFieldName("name"); name != nil {
			return name.Content(src)
		}
	}
	return ""
}

// goReceiverType strips pointers and type arguments from a method receiver.
func goReceiverType(recv *sitter.Node, src []byte) string {
	if recv.NamedChildCount() == 0 {
		return ""
	}
	t := recv.NamedChild(0).ChildByFieldName("type")
	for t != nil {
		switch t.Type() {
		case "pointer_type", "parenthesized_type":
			t = t.NamedChild(0)
		case "generic_type":
			t = t.ChildByFieldName("type")
		default:
			return t.Content(src)
		}
	}
	return ""
}

// DefaultParsers returns the structural parsers available in this build.
func DefaultParsers() map[string]Parser {
	return map[string]Parser{
		"go":         NewTreeSitterParser(golang.GetLanguage()),
		"python":     NewTreeSitterParser(python.GetLanguage()),
		"javascript": NewTreeSitterParser(javascript.GetLanguage()),
		"typescript": NewTreeSitterParser(typescript.GetLanguage()),
		"java":       NewTreeSitterParser(java.GetLanguage()),
	}
}
