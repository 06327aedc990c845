package sqlutil

import (
	"database/sql"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// PlaceholderStyle selects how positional parameters are written for a driver.
type PlaceholderStyle int

const (
	// Question writes "?" for every parameter (SQLite, MySQL).
	Question PlaceholderStyle = iota
	// Dollar writes "$1", "$2", ... (PostgreSQL).
	Dollar
)

var (
	ErrParamCount = errors.New("placeholder and parameter counts differ")
	ErrEmptyList  = errors.New("empty list parameter")
)

// Bind rewrites the "?" placeholders of statement for style and flattens the
// parameters. A slice parameter (other than []byte) is expanded into a
// parenthesized list with one placeholder per element, so `"col" IN ?` with
// []int64{1, 2} becomes `"col" IN ($1, $2)`. Question marks inside quoted
// literals or identifiers are left alone.
func Bind(statement string, params []any, style PlaceholderStyle) (string, []any, error) {
	var sb strings.Builder
	sb.Grow(len(statement) + 8)
	args := make([]any, 0, len(params))

	next := 0
	var quote byte
	for i := 0; i < len(statement); i++ {
		c := statement[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
			sb.WriteByte(c)
			continue
		case c == '\'' || c == '"':
			quote = c
			sb.WriteByte(c)
			continue
		case c != '?':
			sb.WriteByte(c)
			continue
		}

		if next >= len(params) {
			return "", nil, fmt.Errorf("%w: more than %d placeholders", ErrParamCount, len(params))
		}
		p := params[next]
		next++

		items, ok := listItems(p)
		if !ok {
			args = append(args, p)
			writePlaceholder(&sb, style, len(args))
			continue
		}
		if len(items) == 0 {
			return "", nil, fmt.Errorf("%w at position %d", ErrEmptyList, next)
		}
		sb.WriteByte('(')
		for j, item := range items {
			if j > 0 {
				sb.WriteString(", ")
			}
			args = append(args, item)
			writePlaceholder(&sb, style, len(args))
		}
		sb.WriteByte(')')
	}
	if next != len(params) {
		return "", nil, fmt.Errorf("%w: %d placeholders, %d parameters", ErrParamCount, next, len(params))
	}
	return sb.String(), args, nil
}

func writePlaceholder(sb *strings.Builder, style PlaceholderStyle, n int) {
	if style == Dollar {
		sb.WriteByte('$')
		sb.WriteString(strconv.Itoa(n))
		return
	}
	sb.WriteByte('?')
}

func listItems(p any) ([]any, bool) {
	if p == nil {
		return nil, false
	}
	if _, isBytes := p.([]byte); isBytes {
		return nil, false
	}
	rv := reflect.ValueOf(p)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	items := make([]any, rv.Len())
	for i := range items {
		items[i] = rv.Index(i).Interface()
	}
	return items, true
}

// ScanRows scans all rows into a slice using the provided scanner.
func ScanRows[T any](rows *sql.Rows, scan func(*sql.Rows) (T, error)) ([]T, error) {
	defer rows.Close()

	var out []T
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

// ScanMap returns a scanner that reads each row into a map keyed by column
// name. Column values are copied, so the map stays valid after the next call
// to rows.Next.
func ScanMap(columns []string) func(*sql.Rows) (map[string]any, error) {
	return func(rows *sql.Rows) (map[string]any, error) {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		row := make(map[string]any, len(columns))
		for i, col := range columns {
			if b, ok := values[i].([]byte); ok {
				values[i] = string(append([]byte(nil), b...))
			}
			row[col] = values[i]
		}
		return row, nil
	}
}
