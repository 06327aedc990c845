package ui

import (
	"strings"
	"testing"
	"time"
)

func TestColumnOrder(t *testing.T) {
	rows := []map[string]any{
		{"zeta": 1, "user_id": 1, "email": "a"},
		{"alpha": 2, "user_id": 2},
	}
	got := ColumnOrder(rows, []string{"user_id", "package_id", "email"})
	want := []string{"user_id", "email", "alpha", "zeta"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("ColumnOrder() = %v, want %v", got, want)
	}
}

func TestFormatCell(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{"two\nlines", "two lines"},
		{int64(42), "42"},
		{true, "true"},
		{[]byte("raw"), "raw"},
		{time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC), "2024-01-31T00:00:00Z"},
	}
	for _, tt := range tests {
		if got := FormatCell(tt.in); got != tt.want {
			t.Errorf("FormatCell(%#v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTruncateWithEllipsis(t *testing.T) {
	if got := TruncateWithEllipsis("membership", 7); got != "memb..." {
		t.Errorf("got %q", got)
	}
	if got := TruncateWithEllipsis("ümlaut-ß", 20); got != "ümlaut-ß" {
		t.Errorf("got %q", got)
	}
	if got := TruncateWithEllipsis("abcdef", 2); got != "ab" {
		t.Errorf("got %q", got)
	}
}

func TestRowsTableRender(t *testing.T) {
	display := NewDisplayContextWithWidth(80)
	rows := []map[string]any{
		{"user_id": int64(1), "email": "a@b.c"},
		{"user_id": int64(2), "email": nil},
	}
	tbl := RowsTable(display, rows, []string{"user_id", "email"})
	if tbl.Len() != 2 {
		t.Fatalf("Len() = %d", tbl.Len())
	}
	out := tbl.Render()
	for _, want := range []string{"user_id", "email", "a@b.c"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
	if NewResultsTable(display, []string{"x"}).Render() != "" {
		t.Error("empty table should render nothing")
	}
}

func TestCellWidthHasFloor(t *testing.T) {
	headers := make([]string, 27)
	tbl := NewResultsTable(NewDisplayContextWithWidth(80), headers)
	if got := tbl.CellWidth(); got != MinCellWidth {
		t.Errorf("CellWidth() = %d, want %d", got, MinCellWidth)
	}
}
