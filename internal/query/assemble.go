package query

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/realtyfeed/mvquery/internal/filter"
)

// Compiled is a statement template with positional placeholders and the
// parameters bound to them, in order. It is built per request and not reused.
type Compiled struct {
	Statement string `json:"statement"`
	Params    []any  `json:"params"`
}

var viewNameRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// ValidViewName reports whether name can be interpolated as a relation name.
func ValidViewName(name string) bool {
	return viewNameRegex.MatchString(name)
}

// Assemble builds the final SELECT for spec against view.
//
// The AND group's fragments are joined with AND and the OR group's with OR.
// When both groups are present the statement matches rows satisfying either
// group as a whole: (AND-group) OR (OR-group). Parameters follow the same
// order, AND group first.
func Assemble(view string, spec *filter.QuerySpec) (*Compiled, error) {
	if !ValidViewName(view) {
		return nil, &CompileError{Reason: fmt.Sprintf("invalid view name %q", view)}
	}
	if spec == nil {
		return nil, &CompileError{Reason: "missing query spec"}
	}

	tail, err := orderAndPage(spec)
	if err != nil {
		return nil, err
	}

	if spec.SelectAll {
		if spec.And != nil || spec.Or != nil {
			return nil, &CompileError{Reason: "select-all cannot be combined with filter groups"}
		}
		return &Compiled{
			Statement: "SELECT * FROM " + view + " " + tail + ";",
			Params:    []any{},
		}, nil
	}

	var parts []string
	params := []any{}
	for _, group := range []*filter.Group{spec.And, spec.Or} {
		if group == nil {
			continue
		}
		fragments, groupParams, err := CompileGroup(group)
		if err != nil {
			return nil, err
		}
		parts = append(parts, strings.Join(fragments, " "+group.Connective.String()+" "))
		params = append(params, groupParams...)
	}

	var conditions string
	switch len(parts) {
	case 0:
		return nil, &CompileError{Reason: "no filter groups"}
	case 1:
		conditions = parts[0]
	default:
		conditions = "(" + parts[0] + ") OR (" + parts[1] + ")"
	}

	return &Compiled{
		Statement: "SELECT * FROM " + view + " WHERE " + conditions + " " + tail + ";",
		Params:    params,
	}, nil
}

// orderAndPage renders ORDER BY, LIMIT and OFFSET. These clauses are
// structural: the column comes from the catalog, the direction from a closed
// set, and the numbers are range-checked int64 values written as literals.
func orderAndPage(spec *filter.QuerySpec) (string, error) {
	if spec.OrderBy.Name == "" {
		return "", &CompileError{Reason: "missing order column"}
	}
	direction := "DESC"
	if spec.Ascending {
		direction = "ASC"
	}

	if spec.Limit <= 0 {
		return "", &CompileError{Reason: fmt.Sprintf("invalid limit %d", spec.Limit)}
	}
	if spec.Offset < 0 {
		return "", &CompileError{Reason: fmt.Sprintf("invalid offset %d", spec.Offset)}
	}

	return fmt.Sprintf("ORDER BY %s %s LIMIT %d OFFSET %d",
		QuoteIdentifier(spec.OrderBy.Name), direction, spec.Limit, spec.Offset), nil
}
