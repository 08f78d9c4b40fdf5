// Package table renders tabular data for the terminal (lipgloss) and for
// Markdown surfaces. Data sources implement the TableData interface
// rather than building tables directly.
package table

import (
	"fmt"
	"os"
	"strings"

	// Packages
	lipgloss "github.com/charmbracelet/lipgloss"
	lgtable "github.com/charmbracelet/lipgloss/table"
	term "golang.org/x/term"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// TableData is implemented by data sources rendered as a table.
type TableData interface {
	// Header returns the column header labels.
	Header() []string

	// Len returns the number of rows.
	Len() int

	// Row returns the cell values for row i. Wrap a value in Bold{} to
	// emphasise it. Return nil to skip the row.
	Row(i int) []any
}

// Bold wraps a cell value to render it emphasised.
type Bold struct{ Value any }

///////////////////////////////////////////////////////////////////////////////
// STYLES

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	boldStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	borderStyle = lipgloss.NewStyle().Faint(true)
)

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Render renders the data as a terminal table, constrained to the
// terminal width when the natural width exceeds it.
func Render(data TableData) string {
	t := lgtable.New().
		Headers(data.Header()...).
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Wrap(true).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == lgtable.HeaderRow {
				return headerStyle
			}
			return lipgloss.NewStyle()
		})

	forEachRow(data, func(row []any) {
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = cell(v, terminalCell)
		}
		t.Row(cells...)
	})

	result := t.Render()
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 && widest(result) > w {
		t.Width(w)
		result = t.Render()
	}
	return result
}

// RenderMarkdown renders the data as a Markdown table, for surfaces that
// render Markdown natively.
func RenderMarkdown(data TableData) string {
	header := data.Header()
	if len(header) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("| " + strings.Join(header, " | ") + " |\n|")
	for range header {
		b.WriteString("---|")
	}
	forEachRow(data, func(row []any) {
		b.WriteString("\n|")
		for i := range header {
			value := "-"
			if i < len(row) {
				value = cell(row[i], markdownCell)
			}
			b.WriteString(" " + value + " |")
		}
	})
	return b.String()
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

type boldFunc func(string) string

func terminalCell(s string) string {
	return boldStyle.Render(s)
}

func markdownCell(s string) string {
	return "**" + s + "**"
}

// cell converts a value to display text. Empty and zero values render as
// a dash.
func cell(v any, bold boldFunc) string {
	switch value := v.(type) {
	case nil:
		return "-"
	case Bold:
		inner := cell(value.Value, bold)
		if inner == "-" {
			return inner
		}
		return bold(inner)
	case string:
		if value == "" {
			return "-"
		}
		return value
	}
	if s := fmt.Sprint(v); s != "" && s != "0" {
		return s
	}
	return "-"
}

func forEachRow(data TableData, fn func([]any)) {
	for i := 0; i < data.Len(); i++ {
		if row := data.Row(i); row != nil {
			fn(row)
		}
	}
}

func widest(rendered string) int {
	w := 0
	for _, line := range strings.Split(rendered, "\n") {
		if n := len([]rune(line)); n > w {
			w = n
		}
	}
	return w
}
