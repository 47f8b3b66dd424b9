package descriptor

import (
	"fmt"
	"reflect"
	"strings"
)

// Kind classifies a Descriptor.
type Kind int

const (
	KindAny Kind = iota
	KindPrimitive
	KindUnion
	KindLiteral
	KindTypeVar
	KindContainer
	KindTuple
	KindMapping
	KindRecord
	KindTypeOf
	KindCallable
)

var kindNames = [...]string{
	KindAny:       "any",
	KindPrimitive: "primitive",
	KindUnion:     "union",
	KindLiteral:   "literal",
	KindTypeVar:   "typevar",
	KindContainer: "container",
	KindTuple:     "tuple",
	KindMapping:   "mapping",
	KindRecord:    "record",
	KindTypeOf:    "type",
	KindCallable:  "callable",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Descriptor describes the expected shape of a runtime value.
// The set of implementations is closed; see the variant types in this package.
type Descriptor interface {
	Kind() Kind
	// String renders the descriptor as a type expression.
	String() string
	isDescriptor()
}

// Wildcard matches every value. Use the Any variable.
type Wildcard struct{}

// Any is the wildcard descriptor.
var Any Descriptor = Wildcard{}

func (Wildcard) Kind() Kind     { return KindAny }
func (Wildcard) String() string { return "any" }
func (Wildcard) isDescriptor()  {}

// Primitive matches values whose dynamic type is assignable to Type.
// A nil Type is the none type, matched only by an untyped nil.
type Primitive struct {
	Type reflect.Type
}

func (*Primitive) Kind() Kind { return KindPrimitive }
func (p *Primitive) String() string {
	if p.Type == nil {
		return "none"
	}
	return p.Type.String()
}
func (*Primitive) isDescriptor() {}

// Union matches a value that matches at least one alternative.
type Union struct {
	Alternatives []Descriptor
}

func (*Union) Kind() Kind { return KindUnion }
func (u *Union) String() string {
	return "union[" + join(u.Alternatives) + "]"
}
func (*Union) isDescriptor() {}

// TypeVar is a generic parameter. Identity is pointer identity: two
// variables created with the same name are distinct.
type TypeVar struct {
	Name        string
	Constraints []reflect.Type
}

func (*TypeVar) Kind() Kind       { return KindTypeVar }
func (v *TypeVar) String() string { return v.Name }
func (*TypeVar) isDescriptor()    {}

// Collection is the container kind of a Container descriptor.
type Collection int

const (
	CollectionList Collection = iota
	CollectionSet
	CollectionFrozenSet
	CollectionIterable
)

func (c Collection) String() string {
	switch c {
	case CollectionList:
		return "list"
	case CollectionSet:
		return "set"
	case CollectionFrozenSet:
		return "frozenset"
	case CollectionIterable:
		return "iterable"
	}
	return fmt.Sprintf("collection(%d)", int(c))
}

// Container matches a collection whose every element matches Elem.
// A nil Elem leaves the elements unchecked.
type Container struct {
	Collection Collection
	Elem       Descriptor
}

func (*Container) Kind() Kind { return KindContainer }
func (c *Container) String() string {
	if c.Elem == nil {
		return c.Collection.String()
	}
	return c.Collection.String() + "[" + c.Elem.String() + "]"
}
func (*Container) isDescriptor() {}

// Tuple matches a fixed-arity tuple, or when Variadic is set, a tuple of any
// length whose elements all match Elems[0].
type Tuple struct {
	Elems    []Descriptor
	Variadic bool
}

func (*Tuple) Kind() Kind { return KindTuple }
func (t *Tuple) String() string {
	if t.Variadic {
		return "tuple[" + t.Elems[0].String() + ", ...]"
	}
	return "tuple[" + join(t.Elems) + "]"
}
func (*Tuple) isDescriptor() {}

// Mapping matches a Go map. Nil Key or Value leaves that side unchecked.
type Mapping struct {
	Key   Descriptor
	Value Descriptor
}

func (*Mapping) Kind() Kind { return KindMapping }
func (m *Mapping) String() string {
	if m.Key == nil && m.Value == nil {
		return "dict"
	}
	return "dict[" + orAny(m.Key) + ", " + orAny(m.Value) + "]"
}
func (*Mapping) isDescriptor() {}

// Field is a named entry of a Record.
type Field struct {
	Name     string
	Type     Descriptor
	Optional bool
}

// Record matches a mapping with string keys, or a struct, that contains at
// least the declared fields.
type Record struct {
	Fields []Field
}

func (*Record) Kind() Kind { return KindRecord }
func (r *Record) String() string {
	parts := make([]string, len(r.Fields))
	for i, f := range r.Fields {
		name := f.Name
		if f.Optional {
			name += "?"
		}
		parts[i] = name + ": " + orAny(f.Type)
	}
	return "record{" + strings.Join(parts, ", ") + "}"
}
func (*Record) isDescriptor() {}

// TypeOf matches values that are themselves types (reflect.Type).
// A nil Inner accepts any type; a *Primitive inner is concrete; Any, Union
// and TypeVar inners are generic.
type TypeOf struct {
	Inner Descriptor
}

func (*TypeOf) Kind() Kind { return KindTypeOf }
func (t *TypeOf) String() string {
	if t.Inner == nil {
		return "type"
	}
	return "type[" + t.Inner.String() + "]"
}
func (*TypeOf) isDescriptor() {}

// Concrete reports whether the inner descriptor names a single type.
func (t *TypeOf) Concrete() bool {
	_, ok := t.Inner.(*Primitive)
	return ok
}

// Inners returns the inner descriptors, whether concrete or generic.
func (t *TypeOf) Inners() []Descriptor {
	if t.Inner == nil {
		return nil
	}
	return []Descriptor{t.Inner}
}

// Callable matches invocable values. When Declared is set, the value's own
// declared signature must equal Params and Return position by position.
// A nil Return means the callable returns nothing.
type Callable struct {
	Params   []Descriptor
	Return   Descriptor
	Declared bool
}

func (*Callable) Kind() Kind { return KindCallable }
func (c *Callable) String() string {
	if !c.Declared {
		return "callable"
	}
	ret := "none"
	if c.Return != nil {
		ret = c.Return.String()
	}
	return "callable[[" + join(c.Params) + "], " + ret + "]"
}
func (*Callable) isDescriptor() {}

func join(ds []Descriptor) string {
	parts := make([]string, len(ds))
	for i, d := range ds {
		parts[i] = orAny(d)
	}
	return strings.Join(parts, ", ")
}

func orAny(d Descriptor) string {
	if d == nil {
		return "any"
	}
	return d.String()
}
