// Package normalize reduces source files to the normalized lines the
// duplicate detector compares: comments blanked, whitespace folded, blank and
// import lines dropped, and every surviving line tagged with its original
// line number.
package normalize

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/panbanda/clonescan/pkg/parser"
)

// Line is one normalized source line.
type Line struct {
	Text     string `json:"text"`
	OrigLine int    `json:"orig_line"`
}

// File is the normalized content of one source file.
type File struct {
	Path string `json:"path"`
	// Lines are the surviving normalized lines in source order.
	Lines []Line `json:"lines"`
	// TotalLines is the raw line count before normalization.
	TotalLines int `json:"total_lines"`
}

var spaceRunRe = regexp.MustCompile(`\s+`)

// Normalizer turns raw source bytes into a File.
type Normalizer struct {
	skipImports   bool
	useTreeSitter bool
}

// Option is a functional option for configuring a Normalizer.
type Option func(*Normalizer)

// WithSkipImports controls whether import and include lines are dropped.
func WithSkipImports(skip bool) Option {
	return func(n *Normalizer) {
		n.skipImports = skip
	}
}

// WithTreeSitter controls whether comments are located with a tree-sitter
// grammar when one exists for the file's language.
func WithTreeSitter(enabled bool) Option {
	return func(n *Normalizer) {
		n.useTreeSitter = enabled
	}
}

// New creates a Normalizer. By default it skips imports and uses tree-sitter.
func New(opts ...Option) *Normalizer {
	n := &Normalizer{
		skipImports:   true,
		useTreeSitter: true,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// SkipImports reports whether import lines are dropped.
func (n *Normalizer) SkipImports() bool {
	return n.skipImports
}

// TreeSitter reports whether grammar-based comment removal is enabled.
func (n *Normalizer) TreeSitter() bool {
	return n.useTreeSitter
}

// Normalize reduces content to normalized lines. It never fails: a file whose
// grammar cannot be loaded falls back to line-prefix detection using the
// comment and import syntax of its language.
func (n *Normalizer) Normalize(path string, content []byte) File {
	lang := parser.DetectLanguage(path)
	heuristic := true
	if n.useTreeSitter && lang != parser.LangUnknown && len(content) > 0 {
		if blanked, ok := n.blank(lang, content); ok {
			content = blanked
			heuristic = false
		}
	}

	raw := bytes.Split(content, []byte("\n"))
	if len(raw) > 0 && len(raw[len(raw)-1]) == 0 {
		raw = raw[:len(raw)-1]
	}

	filter := lineFilter{
		style:    styleFor(lang),
		comments: heuristic,
		imports:  heuristic && n.skipImports,
	}
	file := File{
		Path:       path,
		Lines:      make([]Line, 0, len(raw)/2),
		TotalLines: len(raw),
	}
	for i, b := range raw {
		text := foldSpace(string(b))
		if text == "" || filter.skip(text) {
			continue
		}
		file.Lines = append(file.Lines, Line{Text: text, OrigLine: i + 1})
	}
	return file
}

// blank replaces comment bytes, and import declarations when they are
// skipped, with spaces using the language grammar.
func (n *Normalizer) blank(lang parser.Language, content []byte) ([]byte, bool) {
	kinds := parser.Comments
	if n.skipImports {
		kinds |= parser.Imports
	}

	p := parser.New()
	defer p.Close()

	ranges, err := p.Ranges(content, lang, kinds)
	if err != nil {
		return nil, false
	}
	return parser.BlankRanges(content, ranges), true
}

// foldSpace trims a line and collapses inner whitespace runs to one space.
func foldSpace(line string) string {
	line = strings.TrimSpace(line)
	if line == "" {
		return ""
	}
	return spaceRunRe.ReplaceAllString(line, " ")
}
