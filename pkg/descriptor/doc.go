/*
Package descriptor defines the closed set of type descriptors that typeguard
validates values against.

A Descriptor is an immutable tree. Leaves are primitives (a Go reflect.Type),
the Any wildcard, literal sets and type variables; inner nodes are containers,
tuples, mappings, records, unions, type-of-type and callable signatures.

	point := descriptor.RecordOf(
		descriptor.Required("x", descriptor.Of[int]()),
		descriptor.Required("y", descriptor.Of[int]()),
		descriptor.OptionalField("label", descriptor.Of[string]()),
	)

	T := descriptor.NewTypeVar("T")
	pair := descriptor.TupleOf(T, T)

Descriptors carry no pass state. Type variable bindings live in a
registry.Registry owned by a single validation pass.
*/
package descriptor
