package filter

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/realtyfeed/mvquery/internal/catalog"
)

// Top-level document keys.
const (
	KeyAll     = "ALL"
	KeyAnd     = "AND"
	KeyOr      = "OR"
	KeyOrderBy = "ORDERBY"
	KeyAsc     = "ASC"
	KeyLimit   = "LIMIT"
	KeyOffset  = "OFFSET"
)

var topLevelKeys = []string{KeyAnd, KeyOr, KeyAll, KeyOrderBy, KeyAsc, KeyLimit, KeyOffset}

// DateLayout is the accepted Timestamp value format (YYYY/MM/DD). Month and
// day may omit the leading zero.
const DateLayout = "2006/1/2"

type termKey struct {
	attr catalog.Attribute
	op   Operator
}

// Grammar validates and parses filter documents against one catalog.
// It is immutable and safe for concurrent use.
type Grammar struct {
	cat  *catalog.Catalog
	keys map[string]termKey
}

// NewGrammar precomputes the attribute/operator key whitelist for cat.
func NewGrammar(cat *catalog.Catalog) *Grammar {
	g := &Grammar{
		cat:  cat,
		keys: make(map[string]termKey, cat.Len()*len(Operators())),
	}
	for _, attr := range cat.Attributes() {
		for _, op := range Operators() {
			g.keys[attr.Name+KeySeparator+op.Suffix()] = termKey{attr: attr, op: op}
		}
	}
	return g
}

// Default is the grammar for the membership catalog.
var Default = NewGrammar(catalog.Membership)

// Catalog returns the grammar's catalog.
func (g *Grammar) Catalog() *catalog.Catalog {
	return g.cat
}

// IsKey reports whether key is a whitelisted "{attribute}__{operator}" key.
func (g *Grammar) IsKey(key string) bool {
	_, ok := g.keys[key]
	return ok
}

// Validate checks doc and returns every rule violation found. An empty
// result means the document is accepted. Validate never panics on malformed
// input and does not modify doc.
func (g *Grammar) Validate(doc Value) Errors {
	var errs Errors

	if doc.Kind() != KindMap {
		errs.add("", RuleType, "'%s' must be of type dict!", doc.Repr())
		return errs
	}
	if doc.Len() == 0 {
		errs.add("", RuleEmpty, "'{}' should not be empty!")
		return errs
	}

	found := false
	for _, k := range topLevelKeys {
		if doc.Has(k) {
			found = true
			break
		}
	}
	if !found {
		errs.add("", RuleRequired, "Input must contain at least one of [%s]!", strings.Join(topLevelKeys, ", "))
		return errs
	}

	if (doc.Has(KeyAnd) || doc.Has(KeyOr)) && doc.Has(KeyAll) {
		errs.add("", RuleExclusive, "Input must contain one of 'ALL' and 'AND/OR'!")
		return errs
	}
	if !doc.Has(KeyAll) && !doc.Has(KeyAnd) && !doc.Has(KeyOr) {
		// Ordering and pagination alone select nothing.
		errs.add("", RuleSelector, "Input must contain either 'ALL' or 'AND/OR'!")
		return errs
	}

	if all, ok := doc.Get(KeyAll); ok {
		s, isStr := all.Str()
		if !isStr {
			errs.add(KeyAll, RuleType, "'ALL' must be of type str!")
			return errs
		}
		if !strings.EqualFold(s, "true") {
			errs.add(KeyAll, RuleAllowed, "'ALL' only accepts true!")
			return errs
		}
	}

	for _, groupKey := range []string{KeyAnd, KeyOr} {
		if group, ok := doc.Get(groupKey); ok {
			g.validateGroup(&errs, groupKey, group)
		}
	}

	if orderBy, ok := doc.Get(KeyOrderBy); ok {
		s, isStr := orderBy.Str()
		if !isStr || !g.cat.Has(s) {
			errs.add(KeyOrderBy, RuleAllowed, "'ORDERBY' only accepts this white list [%s]!", strings.Join(g.cat.Names(), ", "))
		}
	}

	if asc, ok := doc.Get(KeyAsc); ok {
		if s, isStr := asc.Str(); !isStr {
			errs.add(KeyAsc, RuleType, "'ASC' must be of type str!")
		} else if _, valid := parseBool(s); !valid {
			errs.add(KeyAsc, RuleAllowed, "'ASC' only accepts true and false!")
		}
	}

	if limit, ok := doc.Get(KeyLimit); ok {
		s, isStr := limit.Str()
		if n, valid := parseDigits(s); !isStr || !valid || n <= 0 {
			errs.add(KeyLimit, RuleNatural, "'LIMIT' must be a natural number in the string type!")
		}
	}

	if offset, ok := doc.Get(KeyOffset); ok {
		s, isStr := offset.Str()
		if _, valid := parseDigits(s); !isStr || !valid {
			errs.add(KeyOffset, RuleNumber, "'OFFSET' must be a number in the string type!")
		}
	}

	return errs
}

func (g *Grammar) validateGroup(errs *Errors, groupKey string, group Value) {
	if group.Kind() != KindMap {
		errs.add(groupKey, RuleType, "'%s' must be of type dict!", groupKey)
		return
	}
	if group.Len() == 0 {
		errs.add(groupKey, RuleEmpty, "'%s' should not be empty!", groupKey)
		return
	}

	var unknown []string
	for _, m := range group.Members() {
		if !g.IsKey(m.Key) {
			unknown = append(unknown, m.Key)
		}
	}
	if len(unknown) > 0 {
		errs.add(groupKey, RuleKeys,
			"'%s' only accepts keys of the form {attribute}{operator} (unknown: %s); attributes: [%s]; operators: [%s]",
			groupKey, strings.Join(unknown, ", "), strings.Join(g.cat.Names(), ", "), suffixList())
		return
	}

	for _, m := range group.Members() {
		tk := g.keys[m.Key]
		field := groupKey + "." + m.Key

		if !tk.op.TakesList() {
			s, isStr := m.Value.Str()
			switch {
			case !isStr:
				errs.add(field, RuleType, "'%s' must be of type str!", m.Key)
			case s == "":
				errs.add(field, RuleEmpty, "'%s' should not be empty!", m.Key)
			default:
				checkValue(errs, field, m.Key, tk.attr.Type, s)
			}
			continue
		}

		if m.Value.Kind() != KindList {
			errs.add(field, RuleType, "'%s' must be of type list!", m.Key)
			continue
		}
		items := m.Value.Items()
		if len(items) == 0 {
			errs.add(field, RuleEmpty, "'%s' should not be empty!", m.Key)
			continue
		}
		for i, item := range items {
			itemField := fmt.Sprintf("%s[%d]", field, i)
			s, isStr := item.Str()
			switch {
			case !isStr:
				errs.add(itemField, RuleType, "'%s' items must be of type str!", m.Key)
			case s == "":
				errs.add(itemField, RuleEmpty, "'%s' items should not be empty!", m.Key)
			default:
				checkValue(errs, itemField, m.Key, tk.attr.Type, s)
			}
		}
	}
}

// checkValue applies the per-type syntax rule to a non-empty string.
func checkValue(errs *Errors, field, key string, typ catalog.ValueType, s string) {
	switch typ {
	case catalog.Integer:
		if n, ok := parseDigits(s); !ok || n <= 0 {
			errs.add(field, RuleInteger, "'%s' must be a natural number in the string type!", key)
		}
	case catalog.Timestamp:
		if _, err := ParseDate(s); err != nil {
			errs.add(field, RuleTimestamp, "'%s' must be in the correct datetime format(%%Y/%%m/%%d)!", key)
		}
	case catalog.Boolean:
		if _, ok := parseBool(s); !ok {
			errs.add(field, RuleBoolean, "'%s' must be in the correct bool format!", key)
		}
	}
}

// ParseDate parses a Timestamp value in YYYY/MM/DD form as UTC midnight.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

// ParseInteger parses an Integer value: ASCII digits only, at most int64.
func ParseInteger(s string) (int64, bool) {
	return parseDigits(s)
}

// ParseBool parses "true"/"false" case-insensitively.
func ParseBool(s string) (bool, bool) {
	return parseBool(s)
}

func parseDigits(s string) (int64, bool) {
	if s == "" {
		return 0, false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, false
		}
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

func parseBool(s string) (bool, bool) {
	switch {
	case strings.EqualFold(s, "true"):
		return true, true
	case strings.EqualFold(s, "false"):
		return false, true
	default:
		return false, false
	}
}
