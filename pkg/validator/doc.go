/*
Package validator is the recursive constraint matcher.

A Pass walks a value together with a descriptor tree and records every
mismatch as a violation.Violation. It never raises: deciding whether a
violation becomes an error, a warning or a returned value is left to the
caller.

	p := validator.New(violation.Subject{Kind: "function", Name: "sum"}, registry.New())
	p.Validate(args["xs"], descriptor.ListOf(descriptor.Of[int]()), "xs")
	p.Validate(result, descriptor.Of[int](), "return")
	for _, v := range p.Violations() {
		fmt.Println(v.Message())
	}

All nested validations of one pass share the pass registry, so a type
variable bound by one parameter constrains the others. Union alternatives
are tried on a cloned registry that is merged back only for the alternative
that matched.
*/
package validator
