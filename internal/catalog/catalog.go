// Package catalog defines the attributes that filters may reference.
//
// A Catalog is immutable once built; lookups need no locking and a single
// instance is shared by every request.
package catalog

import "fmt"

// ValueType is the semantic type of an attribute.
type ValueType int

const (
	Integer ValueType = iota + 1
	Text
	Boolean
	Timestamp
)

// String returns the lowercase type name used in messages and listings.
func (t ValueType) String() string {
	switch t {
	case Integer:
		return "integer"
	case Text:
		return "text"
	case Boolean:
		return "boolean"
	case Timestamp:
		return "timestamp"
	default:
		return fmt.Sprintf("ValueType(%d)", int(t))
	}
}

// Attribute is a whitelisted column of the view.
type Attribute struct {
	Name string
	Type ValueType
}

// Catalog is a closed registry of attributes.
type Catalog struct {
	attrs  []Attribute
	byName map[string]Attribute
}

// New builds a catalog from attrs, keeping declaration order.
// It returns an error on duplicate or empty names and unknown types.
func New(attrs ...Attribute) (*Catalog, error) {
	c := &Catalog{
		attrs:  make([]Attribute, 0, len(attrs)),
		byName: make(map[string]Attribute, len(attrs)),
	}
	for _, a := range attrs {
		if a.Name == "" {
			return nil, fmt.Errorf("attribute name is required")
		}
		if a.Type < Integer || a.Type > Timestamp {
			return nil, fmt.Errorf("attribute '%s' has unknown type %d", a.Name, int(a.Type))
		}
		if _, dup := c.byName[a.Name]; dup {
			return nil, fmt.Errorf("duplicate attribute '%s'", a.Name)
		}
		c.attrs = append(c.attrs, a)
		c.byName[a.Name] = a
	}
	return c, nil
}

// MustNew is like New but panics on error. Intended for package-level catalogs.
func MustNew(attrs ...Attribute) *Catalog {
	c, err := New(attrs...)
	if err != nil {
		panic(err)
	}
	return c
}

// Lookup returns the attribute with the given name.
func (c *Catalog) Lookup(name string) (Attribute, bool) {
	a, ok := c.byName[name]
	return a, ok
}

// Has reports whether name is a known attribute.
func (c *Catalog) Has(name string) bool {
	_, ok := c.byName[name]
	return ok
}

// Names returns all attribute names in declaration order.
func (c *Catalog) Names() []string {
	names := make([]string, len(c.attrs))
	for i, a := range c.attrs {
		names[i] = a.Name
	}
	return names
}

// Attributes returns a copy of all attributes in declaration order.
func (c *Catalog) Attributes() []Attribute {
	out := make([]Attribute, len(c.attrs))
	copy(out, c.attrs)
	return out
}

// Timestamps returns the names of Timestamp attributes.
func (c *Catalog) Timestamps() []string {
	var names []string
	for _, a := range c.attrs {
		if a.Type == Timestamp {
			names = append(names, a.Name)
		}
	}
	return names
}

// Len returns the number of attributes.
func (c *Catalog) Len() int {
	return len(c.attrs)
}
