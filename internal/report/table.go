// Package report renders aligned key/value blocks and tables for command output.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/gookit/color"
	"github.com/mattn/go-runewidth"
)

// Section prints a "=== Title ===" header.
func Section(w io.Writer, title string) {
	fmt.Fprintf(w, "\n=== %s ===\n", title)
}

// KeyValue is one aligned label/value row.
type KeyValue struct {
	Key   string
	Value string
}

// RenderKeyValues prints rows with values aligned past the widest key.
// Alignment uses display width rather than byte length, so wide runes in
// table names do not break the column.
func RenderKeyValues(w io.Writer, pairs []KeyValue) {
	width := 0
	for _, p := range pairs {
		if kw := runewidth.StringWidth(p.Key); kw > width {
			width = kw
		}
	}

	for _, p := range pairs {
		fmt.Fprintf(w, "  %s  %s\n", runewidth.FillRight(p.Key+":", width+1), p.Value)
	}
}

// Table renders rows under a header with columns sized to their widest cell.
// Cells carry no color codes; styling is applied to whole lines outside the
// table so the width math stays correct.
type Table struct {
	headers []string
	rows    [][]string
}

// NewTable creates a table with the given column headers.
func NewTable(headers ...string) *Table {
	return &Table{headers: headers}
}

// AddRow appends one row. Missing cells render empty, extra cells are dropped.
func (t *Table) AddRow(cells ...string) {
	row := make([]string, len(t.headers))
	copy(row, cells)
	t.rows = append(t.rows, row)
}

// Render writes the table with a dashed line under the header.
func (t *Table) Render(w io.Writer) {
	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			if cw := runewidth.StringWidth(cell); cw > widths[i] {
				widths[i] = cw
			}
		}
	}

	writeRow(w, t.headers, widths)

	separators := make([]string, len(t.headers))
	for i, width := range widths {
		separators[i] = strings.Repeat("-", width)
	}
	writeRow(w, separators, widths)

	for _, row := range t.rows {
		writeRow(w, row, widths)
	}
}

func writeRow(w io.Writer, cells []string, widths []int) {
	parts := make([]string, len(cells))
	for i, cell := range cells {
		parts[i] = runewidth.FillRight(cell, widths[i])
	}
	fmt.Fprintf(w, "  %s\n", strings.TrimRight(strings.Join(parts, "  "), " "))
}

// Successf prints a green status line.
func Successf(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintln(w, color.Green.Sprintf("✅ "+format, args...))
}

// Failuref prints a red status line.
func Failuref(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintln(w, color.Red.Sprintf("❌ "+format, args...))
}

// Warningf prints a yellow status line.
func Warningf(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintln(w, color.Yellow.Sprintf("⚠️  "+format, args...))
}
