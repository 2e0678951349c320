// Package output prints reports as text tables, markdown, JSON or TOON.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	toon "github.com/toon-format/toon-go"
)

// Format represents an output format.
type Format string

const (
	FormatText     Format = "text"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
	FormatTOON     Format = "toon"
)

// ParseFormat converts a string to Format, defaulting to text.
func ParseFormat(s string) Format {
	switch strings.ToLower(s) {
	case "json":
		return FormatJSON
	case "markdown", "md":
		return FormatMarkdown
	case "toon":
		return FormatTOON
	default:
		return FormatText
	}
}

// Block is one titled part of a Report.
type Block interface {
	Text(w io.Writer, colored bool) error
	Markdown(w io.Writer) error
}

// Report is what a command prints. Text and markdown draw the blocks in
// order; JSON and TOON encode Data instead.
type Report struct {
	Title  string
	Blocks []Block
	Data   any
}

// Printer writes reports to stdout or to a file.
type Printer struct {
	format  Format
	w       io.Writer
	file    *os.File
	colored bool
}

// NewPrinter creates a printer for format. A non-empty path is created or
// truncated and disables color.
func NewPrinter(format Format, path string, colored bool) (*Printer, error) {
	p := &Printer{format: format, w: os.Stdout, colored: colored}
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			return nil, err
		}
		p.w, p.file, p.colored = f, f, false
	}
	return p, nil
}

// Close closes the output file, if any.
func (p *Printer) Close() error {
	if p.file != nil {
		return p.file.Close()
	}
	return nil
}

// Colored reports whether text output carries ANSI colors.
func (p *Printer) Colored() bool {
	return p.colored
}

// Print writes r in the printer's format.
func (p *Printer) Print(r *Report) error {
	switch p.format {
	case FormatJSON:
		enc := json.NewEncoder(p.w)
		enc.SetIndent("", "  ")
		return enc.Encode(r.Data)
	case FormatTOON:
		out, err := toon.Marshal(r.Data, toon.WithIndent(2))
		if err != nil {
			return fmt.Errorf("encoding toon: %w", err)
		}
		_, err = fmt.Fprintf(p.w, "%s\n", out)
		return err
	case FormatMarkdown:
		return r.markdown(p.w)
	default:
		return r.text(p.w, p.colored)
	}
}

func (r *Report) text(w io.Writer, colored bool) error {
	if r.Title != "" {
		heading(w, r.Title, "=", colored, color.Bold, color.FgCyan)
		fmt.Fprintln(w)
	}
	for i, b := range r.Blocks {
		if i > 0 {
			fmt.Fprintln(w)
		}
		if err := b.Text(w, colored); err != nil {
			return err
		}
	}
	return nil
}

func (r *Report) markdown(w io.Writer) error {
	if r.Title != "" {
		fmt.Fprintf(w, "# %s\n\n", r.Title)
	}
	for _, b := range r.Blocks {
		if err := b.Markdown(w); err != nil {
			return err
		}
	}
	return nil
}

// heading prints title underlined with rule.
func heading(w io.Writer, title, rule string, colored bool, attrs ...color.Attribute) {
	if colored {
		color.New(attrs...).Fprintln(w, title)
	} else {
		fmt.Fprintln(w, title)
	}
	fmt.Fprintln(w, strings.Repeat(rule, len(title)))
}

// SeverityColor colors text by severity level name.
func SeverityColor(severity, text string) string {
	switch strings.ToLower(severity) {
	case "critical":
		return color.RedString(text)
	case "tolerable":
		return color.YellowString(text)
	default:
		return text
	}
}
