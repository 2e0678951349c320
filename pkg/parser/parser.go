// Package parser maps file paths to languages and exposes the small slice of
// tree-sitter the normalizer needs: parsing a buffer and locating comment and
// import nodes.
package parser

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/bash"
	"github.com/smacker/go-tree-sitter/c"
	"github.com/smacker/go-tree-sitter/cpp"
	"github.com/smacker/go-tree-sitter/csharp"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/java"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/php"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/ruby"
	"github.com/smacker/go-tree-sitter/rust"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// Language names a source language the scanner recognizes.
type Language string

const (
	LangGo         Language = "go"
	LangRust       Language = "rust"
	LangPython     Language = "python"
	LangTypeScript Language = "typescript"
	LangTSX        Language = "tsx"
	LangJavaScript Language = "javascript"
	LangJava       Language = "java"
	LangC          Language = "c"
	LangCPP        Language = "cpp"
	LangCSharp     Language = "csharp"
	LangRuby       Language = "ruby"
	LangPHP        Language = "php"
	LangBash       Language = "bash"
	LangUnknown    Language = "unknown"
)

type grammar struct {
	exts []string
	load func() *sitter.Language
}

var grammars = map[Language]grammar{
	LangGo:         {[]string{".go"}, golang.GetLanguage},
	LangRust:       {[]string{".rs"}, rust.GetLanguage},
	LangPython:     {[]string{".py", ".pyw", ".pyi"}, python.GetLanguage},
	LangTypeScript: {[]string{".ts"}, typescript.GetLanguage},
	LangTSX:        {[]string{".tsx", ".jsx"}, tsx.GetLanguage},
	LangJavaScript: {[]string{".js", ".mjs", ".cjs"}, javascript.GetLanguage},
	LangJava:       {[]string{".java"}, java.GetLanguage},
	LangC:          {[]string{".c", ".h"}, c.GetLanguage},
	LangCPP:        {[]string{".cpp", ".cc", ".cxx", ".hpp", ".hxx"}, cpp.GetLanguage},
	LangCSharp:     {[]string{".cs"}, csharp.GetLanguage},
	LangRuby:       {[]string{".rb"}, ruby.GetLanguage},
	LangPHP:        {[]string{".php"}, php.GetLanguage},
	LangBash:       {[]string{".sh", ".bash"}, bash.GetLanguage},
}

var byExt = func() map[string]Language {
	m := make(map[string]Language)
	for lang, g := range grammars {
		for _, ext := range g.exts {
			m[ext] = lang
		}
	}
	return m
}()

// DetectLanguage picks a language from the file extension. Matching is
// case-insensitive; anything unlisted is LangUnknown.
func DetectLanguage(path string) Language {
	if lang, ok := byExt[strings.ToLower(filepath.Ext(path))]; ok {
		return lang
	}
	return LangUnknown
}

// GetTreeSitterLanguage returns the grammar for lang.
func GetTreeSitterLanguage(lang Language) (*sitter.Language, error) {
	g, ok := grammars[lang]
	if !ok {
		return nil, fmt.Errorf("unsupported language: %s", lang)
	}
	return g.load(), nil
}

// Parser holds a reusable tree-sitter parser. It is not safe for concurrent
// use.
type Parser struct {
	ts *sitter.Parser
}

// New creates a Parser. Call Close when done.
func New() *Parser {
	return &Parser{ts: sitter.NewParser()}
}

// Close releases the underlying tree-sitter parser.
func (p *Parser) Close() {
	p.ts.Close()
}

// Parse builds a syntax tree for source. The caller owns the tree and must
// close it.
func (p *Parser) Parse(source []byte, lang Language) (*sitter.Tree, error) {
	tsLang, err := GetTreeSitterLanguage(lang)
	if err != nil {
		return nil, err
	}
	p.ts.SetLanguage(tsLang)

	tree, err := p.ts.ParseCtx(context.Background(), nil, source)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", lang, err)
	}
	return tree, nil
}

// walk visits node and its descendants depth-first. fn returning false
// prunes the subtree below the node.
func walk(node *sitter.Node, fn func(node *sitter.Node, nodeType string) bool) {
	if node == nil {
		return
	}
	if !fn(node, node.Type()) {
		return
	}
	for i := range int(node.ChildCount()) {
		walk(node.Child(i), fn)
	}
}
