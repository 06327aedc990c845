package filter

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// Kind identifies the shape of a Value.
type Kind int

const (
	KindNull Kind = iota
	KindString
	KindNumber
	KindBool
	KindList
	KindMap
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindString:
		return "str"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindList:
		return "list"
	case KindMap:
		return "dict"
	default:
		return "unknown"
	}
}

// Member is one key/value pair of a map Value.
type Member struct {
	Key   string
	Value Value
}

// Value is an order-preserving, read-only view of an untrusted filter
// document. Map members keep the order in which they appeared in the input;
// positional placeholders depend on it.
type Value struct {
	kind    Kind
	text    string // string contents, or the literal for numbers and bools
	items   []Value
	members []Member
}

// String builds a string value.
func String(s string) Value { return Value{kind: KindString, text: s} }

// Number builds a number value from its literal text.
func Number(lit string) Value { return Value{kind: KindNumber, text: lit} }

// Bool builds a boolean value.
func Bool(b bool) Value {
	if b {
		return Value{kind: KindBool, text: "true"}
	}
	return Value{kind: KindBool, text: "false"}
}

// Null is the null value.
func Null() Value { return Value{kind: KindNull} }

// List builds a list value.
func List(items ...Value) Value {
	return Value{kind: KindList, items: append([]Value(nil), items...)}
}

// Strings builds a list of string values.
func Strings(items ...string) Value {
	vs := make([]Value, len(items))
	for i, s := range items {
		vs[i] = String(s)
	}
	return Value{kind: KindList, items: vs}
}

// Map builds a map value. A repeated key replaces the earlier value but keeps
// the earlier position.
func Map(members ...Member) Value {
	v := Value{kind: KindMap, members: make([]Member, 0, len(members))}
	for _, m := range members {
		v.set(m.Key, m.Value)
	}
	return v
}

func (v *Value) set(key string, val Value) {
	for i := range v.members {
		if v.members[i].Key == key {
			v.members[i].Value = val
			return
		}
	}
	v.members = append(v.members, Member{Key: key, Value: val})
}

// Kind returns the value's kind.
func (v Value) Kind() Kind { return v.kind }

// Str returns the string contents and whether v is a string.
func (v Value) Str() (string, bool) {
	if v.kind != KindString {
		return "", false
	}
	return v.text, true
}

// Items returns a copy of the list items, or nil when v is not a list.
func (v Value) Items() []Value {
	if v.kind != KindList {
		return nil
	}
	return append([]Value(nil), v.items...)
}

// Members returns a copy of the map members in input order, or nil when v is
// not a map.
func (v Value) Members() []Member {
	if v.kind != KindMap {
		return nil
	}
	return append([]Member(nil), v.members...)
}

// Get returns the member value stored under key.
func (v Value) Get(key string) (Value, bool) {
	for _, m := range v.members {
		if m.Key == key {
			return m.Value, true
		}
	}
	return Value{}, false
}

// Has reports whether key is present in a map value.
func (v Value) Has(key string) bool {
	_, ok := v.Get(key)
	return ok
}

// Len returns the number of list items or map members.
func (v Value) Len() int {
	switch v.kind {
	case KindList:
		return len(v.items)
	case KindMap:
		return len(v.members)
	case KindString:
		return len(v.text)
	default:
		return 0
	}
}

// Repr renders the value compactly for error messages.
func (v Value) Repr() string {
	var sb strings.Builder
	v.writeRepr(&sb)
	return sb.String()
}

func (v Value) writeRepr(sb *strings.Builder) {
	switch v.kind {
	case KindNull:
		sb.WriteString("null")
	case KindString:
		sb.WriteString(v.text)
	case KindNumber, KindBool:
		sb.WriteString(v.text)
	case KindList:
		sb.WriteByte('[')
		for i, item := range v.items {
			if i > 0 {
				sb.WriteString(", ")
			}
			item.writeRepr(sb)
		}
		sb.WriteByte(']')
	case KindMap:
		sb.WriteByte('{')
		for i, m := range v.members {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(m.Key)
			sb.WriteString(": ")
			m.Value.writeRepr(sb)
		}
		sb.WriteByte('}')
	}
}

// MarshalJSON encodes the value with map keys in input order.
func (v Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := v.writeJSON(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (v Value) writeJSON(buf *bytes.Buffer) error {
	switch v.kind {
	case KindNull:
		buf.WriteString("null")
	case KindString:
		b, err := json.Marshal(v.text)
		if err != nil {
			return err
		}
		buf.Write(b)
	case KindNumber, KindBool:
		buf.WriteString(v.text)
	case KindList:
		buf.WriteByte('[')
		for i, item := range v.items {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := item.writeJSON(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case KindMap:
		buf.WriteByte('{')
		for i, m := range v.members {
			if i > 0 {
				buf.WriteByte(',')
			}
			k, err := json.Marshal(m.Key)
			if err != nil {
				return err
			}
			buf.Write(k)
			buf.WriteByte(':')
			if err := m.Value.writeJSON(buf); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	}
	return nil
}

// UnmarshalJSON decodes a JSON document preserving map key order.
func (v *Value) UnmarshalJSON(data []byte) error {
	decoded, err := DecodeJSON(data)
	if err != nil {
		return err
	}
	*v = decoded
	return nil
}

// ErrEmptyDocument is returned when the input holds no document at all.
var ErrEmptyDocument = errors.New("empty document")

// ErrTooDeep is returned when lists and maps nest deeper than maxDepth.
var ErrTooDeep = errors.New("document nested too deeply")

// maxDepth bounds decoder recursion. Valid filter documents nest two levels.
const maxDepth = 64

// DecodeJSON parses a single JSON document.
func DecodeJSON(data []byte) (Value, error) {
	return ReadJSON(bytes.NewReader(data))
}

// ReadJSON parses a single JSON document from r.
func ReadJSON(r io.Reader) (Value, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	v, err := decodeJSONValue(dec, 0)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return Value{}, ErrEmptyDocument
		}
		return Value{}, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return Value{}, fmt.Errorf("unexpected data after document")
	}
	return v, nil
}

func decodeJSONValue(dec *json.Decoder, depth int) (Value, error) {
	if depth > maxDepth {
		return Value{}, ErrTooDeep
	}
	tok, err := dec.Token()
	if err != nil {
		return Value{}, err
	}
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			v := Value{kind: KindMap}
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return Value{}, unexpectedEOF(err)
				}
				key, ok := keyTok.(string)
				if !ok {
					return Value{}, fmt.Errorf("invalid object key %v", keyTok)
				}
				val, err := decodeJSONValue(dec, depth+1)
				if err != nil {
					return Value{}, unexpectedEOF(err)
				}
				v.set(key, val)
			}
			if _, err := dec.Token(); err != nil {
				return Value{}, unexpectedEOF(err)
			}
			return v, nil
		case '[':
			v := Value{kind: KindList}
			for dec.More() {
				item, err := decodeJSONValue(dec, depth+1)
				if err != nil {
					return Value{}, unexpectedEOF(err)
				}
				v.items = append(v.items, item)
			}
			if _, err := dec.Token(); err != nil {
				return Value{}, unexpectedEOF(err)
			}
			return v, nil
		default:
			return Value{}, fmt.Errorf("unexpected delimiter %q", t)
		}
	case string:
		return String(t), nil
	case json.Number:
		return Number(t.String()), nil
	case bool:
		return Bool(t), nil
	case nil:
		return Null(), nil
	default:
		return Value{}, fmt.Errorf("unexpected token %v", tok)
	}
}

func unexpectedEOF(err error) error {
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}

// DecodeYAML parses a YAML document preserving map key order. Since JSON is a
// subset of YAML, JSON filter files decode here too.
func DecodeYAML(data []byte) (Value, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return Value{}, err
	}
	if root.Kind == 0 || (root.Kind == yaml.DocumentNode && len(root.Content) == 0) {
		return Value{}, ErrEmptyDocument
	}
	return fromYAMLNode(&root, 0)
}

func fromYAMLNode(n *yaml.Node, depth int) (Value, error) {
	if depth > maxDepth {
		return Value{}, ErrTooDeep
	}
	switch n.Kind {
	case yaml.DocumentNode:
		return fromYAMLNode(n.Content[0], depth+1)
	case yaml.AliasNode:
		return fromYAMLNode(n.Alias, depth+1)
	case yaml.MappingNode:
		v := Value{kind: KindMap}
		for i := 0; i+1 < len(n.Content); i += 2 {
			keyNode, valNode := n.Content[i], n.Content[i+1]
			if keyNode.Kind != yaml.ScalarNode {
				return Value{}, fmt.Errorf("line %d: mapping keys must be scalars", keyNode.Line)
			}
			val, err := fromYAMLNode(valNode, depth+1)
			if err != nil {
				return Value{}, err
			}
			v.set(keyNode.Value, val)
		}
		return v, nil
	case yaml.SequenceNode:
		v := Value{kind: KindList}
		for _, c := range n.Content {
			item, err := fromYAMLNode(c, depth+1)
			if err != nil {
				return Value{}, err
			}
			v.items = append(v.items, item)
		}
		return v, nil
	case yaml.ScalarNode:
		switch n.ShortTag() {
		case "!!str":
			return String(n.Value), nil
		case "!!int", "!!float":
			return Number(n.Value), nil
		case "!!bool":
			return Bool(strings.EqualFold(n.Value, "true")), nil
		case "!!null":
			return Null(), nil
		default:
			return String(n.Value), nil
		}
	default:
		return Value{}, fmt.Errorf("line %d: unsupported YAML node", n.Line)
	}
}
