package normalize

import (
	"regexp"
	"strings"

	"github.com/panbanda/clonescan/pkg/parser"
)

// style is how a language spells comments and imports, for files read
// without a grammar.
type style struct {
	lineComments  []string
	blockComments bool
	imports       *regexp.Regexp
}

var (
	slashComments = []string{"//"}
	hashComments  = []string{"#"}
	jsImports     = regexp.MustCompile(`^import[\s{"'*]`)

	styles = map[parser.Language]style{
		parser.LangGo:         {slashComments, true, regexp.MustCompile(`^import\b`)},
		parser.LangRust:       {slashComments, true, regexp.MustCompile(`^(?:pub(?:\([^)]*\))?\s+)?use\s`)},
		parser.LangJava:       {slashComments, true, regexp.MustCompile(`^import\s`)},
		parser.LangC:          {slashComments, true, regexp.MustCompile(`^#\s*include\b`)},
		parser.LangCPP:        {slashComments, true, regexp.MustCompile(`^#\s*include\b`)},
		parser.LangCSharp:     {slashComments, true, regexp.MustCompile(`^(?:global\s+)?using\s+(?:static\s+)?[\w.]+(?:\s*=\s*[\w.<>]+)?\s*;`)},
		parser.LangJavaScript: {slashComments, true, jsImports},
		parser.LangTypeScript: {slashComments, true, jsImports},
		parser.LangTSX:        {slashComments, true, jsImports},
		parser.LangPHP:        {[]string{"//", "#"}, true, regexp.MustCompile(`^(?:use\s|(?:require|include)(?:_once)?[\s(])`)},
		parser.LangPython:     {hashComments, false, regexp.MustCompile(`^(?:import|from\s+\S+\s+import)\s`)},
		parser.LangRuby:       {hashComments, false, regexp.MustCompile(`^require(?:_relative)?[\s(]`)},
		parser.LangBash:       {hashComments, false, nil},
	}

	// Files of unknown language get every common comment marker and keep
	// all of their lines otherwise.
	genericStyle = style{lineComments: []string{"//", "#", "--"}, blockComments: true}
)

func styleFor(lang parser.Language) style {
	if s, ok := styles[lang]; ok {
		return s
	}
	return genericStyle
}

// lineFilter drops comment and import lines by prefix. It carries state
// across lines for block comments and for grouped imports such as
// "import (" ... ")" or "use a::{" ... "};".
type lineFilter struct {
	style    style
	comments bool
	imports  bool

	inComment bool
	closer    string
}

// skip reports whether the trimmed line t should be dropped.
func (f *lineFilter) skip(t string) bool {
	if f.comments {
		if f.inComment {
			if strings.Contains(t, "*/") {
				f.inComment = false
			}
			return true
		}
		if f.style.blockComments && strings.HasPrefix(t, "/*") {
			f.inComment = !strings.Contains(t[2:], "*/")
			return true
		}
		for _, marker := range f.style.lineComments {
			if strings.HasPrefix(t, marker) {
				return true
			}
		}
	}

	if !f.imports || f.style.imports == nil {
		return false
	}
	if f.closer != "" {
		if strings.Contains(t, f.closer) {
			f.closer = ""
		}
		return true
	}
	if !f.style.imports.MatchString(t) {
		return false
	}
	switch {
	case strings.HasSuffix(t, "("):
		f.closer = ")"
	case strings.HasSuffix(t, "{"):
		f.closer = "}"
	}
	return true
}
