package normalize

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func texts(f File) []string {
	out := make([]string, len(f.Lines))
	for i, l := range f.Lines {
		out[i] = l.Text
	}
	return out
}

func origLines(f File) []int {
	out := make([]int, len(f.Lines))
	for i, l := range f.Lines {
		out[i] = l.OrigLine
	}
	return out
}

func TestNormalizeGo(t *testing.T) {
	src := `package main

import "fmt"

// greet prints a greeting.
func greet(name string) {
	fmt.Println("hi",    name) /* trailing */
}
`
	f := New().Normalize("main.go", []byte(src))

	assert.Equal(t, "main.go", f.Path)
	assert.Equal(t, 8, f.TotalLines)
	assert.Equal(t, []string{
		"package main",
		"func greet(name string) {",
		`fmt.Println("hi", name)`,
		"}",
	}, texts(f))
	assert.Equal(t, []int{1, 6, 7, 8}, origLines(f))
}

func TestNormalizeBlockCommentSpansLines(t *testing.T) {
	src := "int a;\n/*\n * doc\n */\nint b;\n"
	f := New().Normalize("x.c", []byte(src))

	assert.Equal(t, []string{"int a;", "int b;"}, texts(f))
	assert.Equal(t, []int{1, 5}, origLines(f))
}

func TestNormalizeHeuristicFallback(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []string
	}{
		{"slash comment", "// c\nx = 1\n", []string{"x = 1"}},
		{"hash comment", "# c\nx = 1\n", []string{"x = 1"}},
		{"sql comment", "-- c\nSELECT 1;\n", []string{"SELECT 1;"}},
		{"block continuation", "/*\n * c\n */\nx\n", []string{"x"}},
		{"blank lines", "\n\n  \nx\n\n", []string{"x"}},
		{"whitespace runs", "a\t\t b   c\n", []string{"a b c"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := New().Normalize("notes.txt", []byte(tt.src))
			assert.Equal(t, tt.want, texts(f))
		})
	}
}

func TestNormalizeTreeSitterDisabled(t *testing.T) {
	src := "x := 1 // keep\n// drop\n"
	f := New(WithTreeSitter(false)).Normalize("a.go", []byte(src))

	assert.Equal(t, []string{"x := 1 // keep"}, texts(f))
	assert.False(t, New(WithTreeSitter(false)).TreeSitter())
}

func TestNormalizeImports(t *testing.T) {
	src := "import os\nfrom a import b\nx = 1\n"

	skipped := New().Normalize("a.py", []byte(src))
	assert.Equal(t, []string{"x = 1"}, texts(skipped))

	kept := New(WithSkipImports(false)).Normalize("a.py", []byte(src))
	assert.Equal(t, []string{"import os", "from a import b", "x = 1"}, texts(kept))
	assert.Equal(t, []int{1, 2, 3}, origLines(kept))
}

func TestNormalizeEmpty(t *testing.T) {
	f := New().Normalize("empty.go", nil)

	assert.Empty(t, f.Lines)
	assert.Equal(t, 0, f.TotalLines)
}

func TestNormalizeNoTrailingNewline(t *testing.T) {
	f := New().Normalize("a.txt", []byte("a\nb"))

	assert.Equal(t, 2, f.TotalLines)
	assert.Equal(t, []string{"a", "b"}, texts(f))
}

func TestNormalizeCRLF(t *testing.T) {
	f := New().Normalize("a.txt", []byte("a  b\r\nc\r\n"))
	assert.Equal(t, []string{"a b", "c"}, texts(f))
}

func TestNormalizeKeepsImportLookalikes(t *testing.T) {
	src := `package main

func run(x int) {
	use := load()
	include := true
	Using(x)
	_, _ = use, include
	return
}
`
	want := []string{
		"package main",
		"func run(x int) {",
		"use := load()",
		"include := true",
		"Using(x)",
		"_, _ = use, include",
		"return",
		"}",
	}

	for _, ts := range []bool{true, false} {
		f := New(WithTreeSitter(ts)).Normalize("run.go", []byte(src))
		assert.Equal(t, want, texts(f), "tree-sitter=%v", ts)
	}
}

func TestNormalizeImportsPerLanguage(t *testing.T) {
	tests := []struct {
		path string
		src  string
		want []string
	}{
		{"a.go", "package p\n\nimport (\n\t\"fmt\"\n\t\"os\"\n)\n\nvar x = 1\n", []string{"package p", "var x = 1"}},
		{"a.py", "import os\nfrom a import b\nx = 1\n", []string{"x = 1"}},
		{"a.rs", "use std::io;\npub use crate::x;\nfn main() {}\n", []string{"fn main() {}"}},
		{"b.rs", "use std::{\n    io,\n    fs,\n};\nfn main() {}\n", []string{"fn main() {}"}},
		{"a.c", "#include <stdio.h>\n#include \"a.h\"\nint include = 1;\n", []string{"int include = 1;"}},
		{"a.cs", "using System;\nusing static System.Math;\nclass A {}\n", []string{"class A {}"}},
		{"A.java", "import java.util.List;\nclass A {}\n", []string{"class A {}"}},
		{"a.ts", "import { a } from \"b\";\nconst x = a;\n", []string{"const x = a;"}},
	}

	for _, tt := range tests {
		for _, ts := range []bool{true, false} {
			t.Run(fmt.Sprintf("%s/tree-sitter=%v", tt.path, ts), func(t *testing.T) {
				f := New(WithTreeSitter(ts)).Normalize(tt.path, []byte(tt.src))
				assert.Equal(t, tt.want, texts(f))
			})
		}
	}
}

func TestNormalizeStarLinesOutsideBlockComment(t *testing.T) {
	src := "int *p;\n* p = x;\n/*\n * doc\n*\n */\nint y;\n--i;\n/* one */\n*q = 2;\n"
	f := New(WithTreeSitter(false)).Normalize("a.c", []byte(src))

	assert.Equal(t, []string{"int *p;", "* p = x;", "int y;", "--i;", "*q = 2;"}, texts(f))
	assert.Equal(t, []int{1, 2, 7, 8, 10}, origLines(f))

	plain := New().Normalize("list.txt", []byte("* item\n- other\n"))
	assert.Equal(t, []string{"* item", "- other"}, texts(plain))
}
