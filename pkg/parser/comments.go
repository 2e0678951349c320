package parser

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// ByteRange is a half-open [Start, End) range of source bytes.
type ByteRange struct {
	Start uint32
	End   uint32
}

// Kind selects which node families Ranges collects.
type Kind uint8

const (
	// Comments matches every comment node.
	Comments Kind = 1 << iota
	// Imports matches import, use, include and using declarations.
	Imports
)

// importNodes are the declaration node types that pull in other modules,
// across all supported grammars.
var importNodes = map[string]struct{}{
	"import_declaration":        {}, // go, java
	"import_statement":          {}, // python, javascript, typescript
	"import_from_statement":     {}, // python
	"future_import_statement":   {}, // python
	"use_declaration":           {}, // rust
	"preproc_include":           {}, // c, c++
	"using_directive":           {}, // c#
	"namespace_use_declaration": {}, // php
}

func (k Kind) matches(nodeType string) bool {
	if k&Comments != 0 && strings.Contains(nodeType, "comment") {
		return true
	}
	if k&Imports != 0 {
		if _, ok := importNodes[nodeType]; ok {
			return true
		}
	}
	return false
}

// Ranges parses source and returns, in document order, the byte ranges of
// every node selected by kinds. Nested matches are folded into the
// outermost one.
func (p *Parser) Ranges(source []byte, lang Language, kinds Kind) ([]ByteRange, error) {
	tree, err := p.Parse(source, lang)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	var ranges []ByteRange
	walk(tree.RootNode(), func(node *sitter.Node, nodeType string) bool {
		if kinds.matches(nodeType) {
			ranges = append(ranges, ByteRange{Start: node.StartByte(), End: node.EndByte()})
			return false
		}
		return true
	})
	return ranges, nil
}

// CommentRanges returns the byte ranges of every comment in source. Grammars
// name comments differently ("comment", "line_comment", "block_comment"), so
// any node type containing "comment" counts.
func (p *Parser) CommentRanges(source []byte, lang Language) ([]ByteRange, error) {
	return p.Ranges(source, lang, Comments)
}

// BlankRanges returns a copy of source with every byte inside ranges replaced
// by a space. Newlines are preserved so line numbers stay stable.
func BlankRanges(source []byte, ranges []ByteRange) []byte {
	out := make([]byte, len(source))
	copy(out, source)
	for _, r := range ranges {
		end := min(int(r.End), len(out))
		for i := int(r.Start); i < end; i++ {
			if out[i] != '\n' {
				out[i] = ' '
			}
		}
	}
	return out
}
