package ui

import (
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// MinCellWidth is the narrowest a column is truncated to.
const MinCellWidth = 8

// ResultsTable renders result rows under a header, shrinking cells to fit
// the terminal where possible.
type ResultsTable struct {
	display *DisplayContext
	headers []string
	rows    [][]string
}

// NewResultsTable creates a table with the given headers.
func NewResultsTable(display *DisplayContext, headers []string) *ResultsTable {
	return &ResultsTable{
		display: display,
		headers: append([]string(nil), headers...),
	}
}

// AddRow adds a row. Missing cells render empty; extra cells are dropped.
func (t *ResultsTable) AddRow(cells ...string) {
	row := make([]string, len(t.headers))
	copy(row, cells)
	t.rows = append(t.rows, row)
}

// Len returns the number of rows added.
func (t *ResultsTable) Len() int {
	return len(t.rows)
}

// CellWidth returns the width each cell is truncated to.
func (t *ResultsTable) CellWidth() int {
	if len(t.headers) == 0 {
		return 0
	}
	const columnPadding = 2
	available := t.display.TermWidth - (len(t.headers)-1)*columnPadding
	width := available / len(t.headers)
	if width < MinCellWidth {
		width = MinCellWidth
	}
	return width
}

// Render generates the table output as a string.
func (t *ResultsTable) Render() string {
	if len(t.rows) == 0 {
		return ""
	}

	width := t.CellWidth()
	headers := make([]string, len(t.headers))
	for i, h := range t.headers {
		headers[i] = TruncateWithEllipsis(h, width)
	}
	rows := make([][]string, len(t.rows))
	for i, row := range t.rows {
		cells := make([]string, len(row))
		for j, cell := range row {
			cells[j] = TruncateWithEllipsis(cell, width)
		}
		rows[i] = cells
	}

	last := len(t.headers) - 1
	tbl := table.New().
		Border(lipgloss.Border{Top: "─", Bottom: "─", Middle: "─"}).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderHeader(true).
		BorderRow(false).
		BorderColumn(false).
		BorderStyle(Muted).
		StyleFunc(func(row, col int) lipgloss.Style {
			style := lipgloss.NewStyle()
			if row == table.HeaderRow {
				style = AccentBold
			}
			if col < last {
				style = style.PaddingRight(2)
			}
			return style
		}).
		Headers(headers...).
		Rows(rows...)

	return tbl.Render()
}

// TruncateWithEllipsis truncates s to maxLen runes, ending in "...".
func TruncateWithEllipsis(s string, maxLen int) string {
	if maxLen <= 0 || utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}

// FormatCell renders a result value for display.
func FormatCell(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return strings.ReplaceAll(val, "\n", " ")
	case []byte:
		return string(val)
	case time.Time:
		return val.Format(time.RFC3339)
	case bool:
		if val {
			return "true"
		}
		return "false"
	default:
		return fmt.Sprint(val)
	}
}

// ColumnOrder lists the columns present in rows: preferred names first in
// their given order, then any others alphabetically.
func ColumnOrder(rows []map[string]any, preferred []string) []string {
	present := make(map[string]bool)
	for _, row := range rows {
		for col := range row {
			present[col] = true
		}
	}

	out := make([]string, 0, len(present))
	for _, name := range preferred {
		if present[name] {
			out = append(out, name)
			delete(present, name)
		}
	}
	rest := make([]string, 0, len(present))
	for name := range present {
		rest = append(rest, name)
	}
	sort.Strings(rest)
	return append(out, rest...)
}

// RowsTable builds a ResultsTable for map rows, restricted to columns when
// it is non-empty.
func RowsTable(display *DisplayContext, rows []map[string]any, columns []string) *ResultsTable {
	t := NewResultsTable(display, columns)
	for _, row := range rows {
		cells := make([]string, len(columns))
		for i, col := range columns {
			cells[i] = FormatCell(row[col])
		}
		t.AddRow(cells...)
	}
	return t
}
