package filter

import "strings"

// Operator is a comparison selected by a key suffix such as "__gte".
type Operator int

const (
	Eq Operator = iota + 1
	Ne
	Gt
	Gte
	Lt
	Lte
	In
	NotIn
	Like
)

// KeySeparator separates the attribute name from the operator suffix.
const KeySeparator = "__"

var operatorSuffixes = map[Operator]string{
	Eq:    "eq",
	Ne:    "ne",
	Gt:    "gt",
	Gte:   "gte",
	Lt:    "lt",
	Lte:   "lte",
	In:    "in",
	NotIn: "nin",
	Like:  "like",
}

// Operators returns every operator in suffix listing order.
func Operators() []Operator {
	return []Operator{Eq, Ne, Gt, Gte, Lt, Lte, In, NotIn, Like}
}

// Suffix returns the operator's key suffix without the separator.
func (o Operator) Suffix() string {
	return operatorSuffixes[o]
}

func (o Operator) String() string {
	if s, ok := operatorSuffixes[o]; ok {
		return s
	}
	return "invalid"
}

// TakesList reports whether the operator expects a sequence value.
func (o Operator) TakesList() bool {
	return o == In || o == NotIn
}

// ParseOperator resolves a suffix (without separator) to an operator.
func ParseOperator(suffix string) (Operator, bool) {
	for _, op := range Operators() {
		if operatorSuffixes[op] == suffix {
			return op, true
		}
	}
	return 0, false
}

// SplitKey splits "package_id__gte" into ("package_id", "gte"). The last
// separator wins so attribute names may contain single underscores.
func SplitKey(key string) (attr, suffix string, ok bool) {
	i := strings.LastIndex(key, KeySeparator)
	if i <= 0 || i+len(KeySeparator) >= len(key) {
		return "", "", false
	}
	return key[:i], key[i+len(KeySeparator):], true
}

// suffixList renders the operator suffixes for messages.
func suffixList() string {
	ops := Operators()
	parts := make([]string, len(ops))
	for i, op := range ops {
		parts[i] = KeySeparator + op.Suffix()
	}
	return strings.Join(parts, ", ")
}
