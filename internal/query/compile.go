package query

import (
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/realtyfeed/mvquery/internal/catalog"
	"github.com/realtyfeed/mvquery/internal/filter"
)

// Placeholder marks a positional parameter in a compiled statement.
// Execution adapters rewrite it into their driver's style.
const Placeholder = "?"

// ErrCompile is wrapped by every CompileError. A compile error means a term
// reached the compiler without passing validation, which is a defect rather
// than a user error.
var ErrCompile = errors.New("compile error")

// CompileError reports a term that could not be compiled.
type CompileError struct {
	Key    string
	Reason string
}

func (e *CompileError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("compile error: %s", e.Reason)
	}
	return fmt.Sprintf("compile error: '%s': %s", e.Key, e.Reason)
}

func (e *CompileError) Unwrap() error {
	return ErrCompile
}

var sqlOperators = map[filter.Operator]string{
	filter.Eq:    "=",
	filter.Ne:    "!=",
	filter.Gt:    ">",
	filter.Gte:   ">=",
	filter.Lt:    "<",
	filter.Lte:   "<=",
	filter.In:    "IN",
	filter.NotIn: "NOT IN",
	filter.Like:  "LIKE",
}

// SQLOperator returns the SQL token for op.
func SQLOperator(op filter.Operator) (string, bool) {
	tok, ok := sqlOperators[op]
	return tok, ok
}

// QuoteIdentifier quotes a column name so it can only be read as a column
// reference.
func QuoteIdentifier(name string) string {
	return pgx.Identifier{name}.Sanitize()
}

// CompileGroup turns a validated group into predicate fragments and their
// parameters. Both slices follow the group's term order and have equal length.
func CompileGroup(g *filter.Group) ([]string, []any, error) {
	if g == nil || len(g.Terms) == 0 {
		return nil, nil, &CompileError{Reason: "empty group"}
	}

	fragments := make([]string, 0, len(g.Terms))
	params := make([]any, 0, len(g.Terms))
	for _, term := range g.Terms {
		frag, param, err := compileTerm(term)
		if err != nil {
			return nil, nil, err
		}
		fragments = append(fragments, frag)
		params = append(params, param)
	}
	return fragments, params, nil
}

func compileTerm(t filter.Term) (string, any, error) {
	tok, ok := sqlOperators[t.Operator]
	if !ok {
		return "", nil, &CompileError{Key: t.Key, Reason: fmt.Sprintf("unknown operator %d", int(t.Operator))}
	}
	if t.Attribute.Name == "" {
		return "", nil, &CompileError{Key: t.Key, Reason: "missing attribute"}
	}

	var param any
	var err error
	if t.Operator.TakesList() {
		param, err = coerceList(t.Attribute, t.Values)
	} else {
		if len(t.Values) != 1 {
			return "", nil, &CompileError{Key: t.Key, Reason: fmt.Sprintf("expected one value, got %d", len(t.Values))}
		}
		param, err = coerce(t.Attribute, t.Values[0])
		if err == nil && t.Operator == filter.Like {
			// The pattern keeps the value as written: "007", "TRUE", "2024/01/31".
			param = "%" + t.Values[0] + "%"
		}
	}
	if err != nil {
		return "", nil, &CompileError{Key: t.Key, Reason: err.Error()}
	}

	return QuoteIdentifier(t.Attribute.Name) + " " + tok + " " + Placeholder, param, nil
}

// coerce converts one raw value to the Go type bound for the attribute.
func coerce(attr catalog.Attribute, raw string) (any, error) {
	switch attr.Type {
	case catalog.Integer:
		n, ok := filter.ParseInteger(raw)
		if !ok {
			return nil, fmt.Errorf("%q is not an integer", raw)
		}
		return n, nil
	case catalog.Boolean:
		b, ok := filter.ParseBool(raw)
		if !ok {
			return nil, fmt.Errorf("%q is not a boolean", raw)
		}
		return b, nil
	case catalog.Timestamp:
		ts, err := filter.ParseDate(raw)
		if err != nil {
			return nil, fmt.Errorf("%q is not a date", raw)
		}
		return ts, nil
	case catalog.Text:
		return raw, nil
	default:
		return nil, fmt.Errorf("attribute '%s' has unsupported type %s", attr.Name, attr.Type)
	}
}

// coerceList converts every raw value and returns a typed slice, bound later
// as a single sequence parameter.
func coerceList(attr catalog.Attribute, raws []string) (any, error) {
	if len(raws) == 0 {
		return nil, fmt.Errorf("empty value list")
	}
	switch attr.Type {
	case catalog.Integer:
		return coerceAll[int64](attr, raws)
	case catalog.Boolean:
		return coerceAll[bool](attr, raws)
	case catalog.Timestamp:
		return coerceAll[time.Time](attr, raws)
	case catalog.Text:
		return coerceAll[string](attr, raws)
	default:
		return nil, fmt.Errorf("attribute '%s' has unsupported type %s", attr.Name, attr.Type)
	}
}

func coerceAll[T any](attr catalog.Attribute, raws []string) ([]T, error) {
	out := make([]T, 0, len(raws))
	for _, raw := range raws {
		v, err := coerce(attr, raw)
		if err != nil {
			return nil, err
		}
		typed, ok := v.(T)
		if !ok {
			return nil, fmt.Errorf("unexpected %T for attribute '%s'", v, attr.Name)
		}
		out = append(out, typed)
	}
	return out, nil
}
