// Package schema turns text into the descriptors and values typeguard
// validates against.
//
// Type expressions use a small bracketed grammar:
//
//	list[int]
//	dict[str, int | none]
//	tuple[int, ...]
//	record{name: str, tags?: set[str]}
//	callable[[int, str], bool]
//	literal["red", "green", 3]
//
// Names resolve against a Scope (type variables first, then custom Go types)
// and then against the builtin vocabulary:
//
//	scope := schema.NewScope().Var(descriptor.NewTypeVar("T"))
//	d, err := schema.Parse("dict[str, T]", scope)
//
// Signature files declare a whole function in YAML or JSON and compile to a
// Declaration that wraps a Go function:
//
//	sf, err := schema.LoadSignature("clamp.yaml")
//	decl, err := sf.Compile(nil)
//	clamp, err := decl.Bind(func(x, lo, hi any) any { ... })
//
// Values are read from YAML with three extra sequence tags: !tuple, !set and
// !frozenset.
//
// Schema maps field names to descriptors for validating flat documents.
package schema
