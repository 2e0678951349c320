package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// Field is one labeled value in a Fields block.
type Field struct {
	Label string
	Value string
}

// Fields is a titled list of label/value pairs, such as a run summary.
type Fields struct {
	Title string
	Items []Field
}

func (f *Fields) Text(w io.Writer, colored bool) error {
	if f.Title != "" {
		heading(w, f.Title, "-", colored, color.Bold)
	}
	width := 0
	for _, it := range f.Items {
		width = max(width, len(it.Label))
	}
	for _, it := range f.Items {
		if _, err := fmt.Fprintf(w, "%-*s  %s\n", width+1, it.Label+":", it.Value); err != nil {
			return err
		}
	}
	return nil
}

func (f *Fields) Markdown(w io.Writer) error {
	if f.Title != "" {
		fmt.Fprintf(w, "## %s\n\n", f.Title)
	}
	for _, it := range f.Items {
		fmt.Fprintf(w, "- **%s:** %s\n", it.Label, cellEscaper.Replace(it.Value))
	}
	_, err := fmt.Fprintln(w)
	return err
}

// Table is a titled grid. Cells may span several lines; markdown folds them
// onto one row.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
	Footer  []string
}

func (t *Table) Text(w io.Writer, colored bool) error {
	if t.Title != "" {
		heading(w, t.Title, "-", colored, color.Bold)
	}

	left := tw.CellAlignment{Global: tw.AlignLeft}
	table := tablewriter.NewTable(w,
		tablewriter.WithConfig(tablewriter.Config{
			Header: tw.CellConfig{Alignment: left, Formatting: tw.CellFormatting{AutoFormat: tw.On}},
			Row:    tw.CellConfig{Alignment: left},
			Footer: tw.CellConfig{Alignment: left},
		}),
		tablewriter.WithRendition(tw.Rendition{
			Borders:  tw.Border{Left: tw.Off, Right: tw.Off, Top: tw.Off, Bottom: tw.Off},
			Settings: tw.Settings{Separators: tw.Separators{BetweenColumns: tw.Off}},
		}),
	)

	table.Header(t.Headers)
	for _, r := range t.Rows {
		if err := table.Append(r); err != nil {
			return fmt.Errorf("rendering table: %w", err)
		}
	}
	if len(t.Footer) > 0 {
		footer := make([]any, len(t.Footer))
		for i, c := range t.Footer {
			footer[i] = c
		}
		table.Footer(footer...)
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("rendering table: %w", err)
	}
	return nil
}

func (t *Table) Markdown(w io.Writer) error {
	if t.Title != "" {
		fmt.Fprintf(w, "## %s\n\n", t.Title)
	}
	row := func(cells []string) {
		escaped := make([]string, len(cells))
		for i, c := range cells {
			escaped[i] = cellEscaper.Replace(c)
		}
		fmt.Fprintf(w, "| %s |\n", strings.Join(escaped, " | "))
	}

	row(t.Headers)
	fmt.Fprintf(w, "|%s\n", strings.Repeat(" --- |", len(t.Headers)))
	for _, r := range t.Rows {
		row(r)
	}
	if len(t.Footer) > 0 {
		row(t.Footer)
	}
	_, err := fmt.Fprintln(w)
	return err
}

// cellEscaper keeps a cell on one markdown line.
var cellEscaper = strings.NewReplacer("|", `\|`, "\n", "<br>")
