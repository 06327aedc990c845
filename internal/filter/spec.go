package filter

import "github.com/realtyfeed/mvquery/internal/catalog"

// Defaults applied when a document omits ordering or pagination.
const (
	DefaultOrderBy   = "user_id"
	DefaultAscending = true
	DefaultLimit     = 10
	DefaultOffset    = 0
)

// Connective is the boolean operator joining the terms of a group.
type Connective int

const (
	Conjunctive Connective = iota + 1 // AND
	Disjunctive                       // OR
)

func (c Connective) String() string {
	if c == Disjunctive {
		return "OR"
	}
	return "AND"
}

// Term is one validated "{attribute}__{operator}: value" entry.
type Term struct {
	Key       string
	Attribute catalog.Attribute
	Operator  Operator
	// Values holds the raw strings: exactly one for scalar operators, one or
	// more for In and NotIn.
	Values []string
}

// Group is a non-empty, ordered list of terms sharing one connective.
type Group struct {
	Connective Connective
	Terms      []Term
}

// QuerySpec is the typed form of an accepted filter document.
type QuerySpec struct {
	SelectAll bool
	And       *Group
	Or        *Group
	OrderBy   catalog.Attribute
	Ascending bool
	Limit     int64
	Offset    int64
}

// Parse validates doc and converts it into a QuerySpec. Validation failures
// are reported as a single *InvalidInputError.
func (g *Grammar) Parse(doc Value) (*QuerySpec, error) {
	if errs := g.Validate(doc); len(errs) > 0 {
		return nil, &InvalidInputError{Errors: errs}
	}

	orderBy, ok := g.cat.Lookup(DefaultOrderBy)
	if !ok {
		orderBy = g.cat.Attributes()[0]
	}
	spec := &QuerySpec{
		OrderBy:   orderBy,
		Ascending: DefaultAscending,
		Limit:     DefaultLimit,
		Offset:    DefaultOffset,
	}

	if doc.Has(KeyAll) {
		spec.SelectAll = true
	}
	if v, ok := doc.Get(KeyAnd); ok {
		spec.And = g.buildGroup(Conjunctive, v)
	}
	if v, ok := doc.Get(KeyOr); ok {
		spec.Or = g.buildGroup(Disjunctive, v)
	}

	if v, ok := doc.Get(KeyOrderBy); ok {
		name, _ := v.Str()
		spec.OrderBy, _ = g.cat.Lookup(name)
	}
	if v, ok := doc.Get(KeyAsc); ok {
		s, _ := v.Str()
		spec.Ascending, _ = parseBool(s)
	}
	if v, ok := doc.Get(KeyLimit); ok {
		s, _ := v.Str()
		spec.Limit, _ = parseDigits(s)
	}
	if v, ok := doc.Get(KeyOffset); ok {
		s, _ := v.Str()
		spec.Offset, _ = parseDigits(s)
	}
	return spec, nil
}

func (g *Grammar) buildGroup(conn Connective, v Value) *Group {
	members := v.Members()
	group := &Group{Connective: conn, Terms: make([]Term, 0, len(members))}
	for _, m := range members {
		tk := g.keys[m.Key]
		term := Term{Key: m.Key, Attribute: tk.attr, Operator: tk.op}
		if tk.op.TakesList() {
			for _, item := range m.Value.Items() {
				s, _ := item.Str()
				term.Values = append(term.Values, s)
			}
		} else {
			s, _ := m.Value.Str()
			term.Values = []string{s}
		}
		group.Terms = append(group.Terms, term)
	}
	return group
}

// Validate checks doc against the membership grammar.
func Validate(doc Value) Errors {
	return Default.Validate(doc)
}

// Parse parses doc with the membership grammar.
func Parse(doc Value) (*QuerySpec, error) {
	return Default.Parse(doc)
}
