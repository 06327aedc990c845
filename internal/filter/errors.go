package filter

import (
	"fmt"
	"strings"
)

// Validation rules. A (Field, Rule) pair identifies an error; two errors with
// the same pair are duplicates even if their messages differ.
const (
	RuleType      = "type"
	RuleEmpty     = "empty"
	RuleRequired  = "required"
	RuleExclusive = "exclusive"
	RuleSelector  = "selector"
	RuleAllowed   = "allowed"
	RuleKeys      = "keys"
	RuleInteger   = "integer"
	RuleTimestamp = "timestamp"
	RuleBoolean   = "boolean"
	RuleNatural   = "natural"
	RuleNumber    = "number"
)

// ValidationError describes one rule violation in a filter document.
type ValidationError struct {
	// Field is the path of the offending value, e.g. "AND.package_id__in[1]".
	// It is empty for the document root.
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Errors is an ordered list of validation errors without duplicates.
type Errors []*ValidationError

func (es *Errors) add(field, rule, format string, args ...interface{}) {
	for _, e := range *es {
		if e.Field == field && e.Rule == rule {
			return
		}
	}
	*es = append(*es, &ValidationError{
		Field:   field,
		Rule:    rule,
		Message: fmt.Sprintf(format, args...),
	})
}

// Messages returns the human readable messages in order.
func (es Errors) Messages() []string {
	out := make([]string, len(es))
	for i, e := range es {
		out[i] = e.Message
	}
	return out
}

// InvalidInputError is returned by Parse when a document fails validation.
type InvalidInputError struct {
	Errors Errors
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid request body: %s", strings.Join(e.Errors.Messages(), "; "))
}
