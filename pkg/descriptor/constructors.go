package descriptor

import "reflect"

var anyType = reflect.TypeFor[any]()

// Of returns the primitive descriptor for T.
func Of[T any]() *Primitive {
	return &Primitive{Type: reflect.TypeFor[T]()}
}

// TypeFor returns the primitive descriptor for t.
func TypeFor(t reflect.Type) *Primitive {
	return &Primitive{Type: t}
}

// None returns the descriptor matched only by an untyped nil.
func None() *Primitive {
	return &Primitive{}
}

// OneOf builds a union. Nested unions are flattened and a single alternative
// is returned as is.
func OneOf(alternatives ...Descriptor) Descriptor {
	flat := make([]Descriptor, 0, len(alternatives))
	for _, alt := range alternatives {
		if u, ok := alt.(*Union); ok {
			flat = append(flat, u.Alternatives...)
			continue
		}
		flat = append(flat, alt)
	}
	if len(flat) == 1 {
		return flat[0]
	}
	return &Union{Alternatives: flat}
}

// Optional matches d or an untyped nil.
func Optional(d Descriptor) Descriptor {
	return OneOf(d, None())
}

// NewTypeVar creates a fresh type variable. When constraints are given, the
// variable may only bind to types satisfying one of them.
func NewTypeVar(name string, constraints ...reflect.Type) *TypeVar {
	return &TypeVar{Name: name, Constraints: constraints}
}

// ListOf matches a slice whose elements match elem.
func ListOf(elem Descriptor) *Container {
	return &Container{Collection: CollectionList, Elem: elem}
}

// SetOf matches a map used as a set (map[K]struct{} or map[K]bool) whose keys match elem.
func SetOf(elem Descriptor) *Container {
	return &Container{Collection: CollectionSet, Elem: elem}
}

// FrozenSetOf matches a value.FrozenSet whose members match elem.
func FrozenSetOf(elem Descriptor) *Container {
	return &Container{Collection: CollectionFrozenSet, Elem: elem}
}

// IterableOf matches anything that can be ranged over whose elements match elem.
func IterableOf(elem Descriptor) *Container {
	return &Container{Collection: CollectionIterable, Elem: elem}
}

// TupleOf matches a tuple of exactly len(elems) elements.
func TupleOf(elems ...Descriptor) *Tuple {
	return &Tuple{Elems: elems}
}

// VariadicTuple matches a tuple of any length whose elements all match elem.
func VariadicTuple(elem Descriptor) *Tuple {
	return &Tuple{Elems: []Descriptor{elem}, Variadic: true}
}

// MapOf matches a map whose keys match key and values match val.
func MapOf(key, val Descriptor) *Mapping {
	return &Mapping{Key: key, Value: val}
}

// RecordOf matches a structural record with the given fields.
func RecordOf(fields ...Field) *Record {
	return &Record{Fields: fields}
}

// Required declares a field that must be present.
func Required(name string, d Descriptor) Field {
	return Field{Name: name, Type: d}
}

// OptionalField declares a field that is validated only when present.
func OptionalField(name string, d Descriptor) Field {
	return Field{Name: name, Type: d, Optional: true}
}

// TypeOfType matches a reflect.Type described by inner. A nil inner accepts any type.
func TypeOfType(inner Descriptor) *TypeOf {
	return &TypeOf{Inner: inner}
}

// AnyCallable matches any invocable value.
func AnyCallable() *Callable {
	return &Callable{}
}

// CallableOf matches an invocable value whose declared signature is params -> ret.
func CallableOf(params []Descriptor, ret Descriptor) *Callable {
	return &Callable{Params: params, Return: ret, Declared: true}
}
