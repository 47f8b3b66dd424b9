/*
Package typeguard enforces declared type constraints on the arguments and return values of Go functions at call time.

Constraints are descriptor trees (see package descriptor) built from primitive types, generic containers, unions, literal sets, type variables, structural records and callable signatures. They are richer than Go's static types: a parameter typed any can still be required to hold a list[int] or one of a fixed set of strings.

# Concept

A Func wraps a function together with a Signature. Every call runs one validation pass: each included parameter is validated in declaration order, the function is invoked, and the result is validated under the name "return". All validations of a pass share one type-variable registry, so a type variable bound by the first argument constrains the rest.

How violations surface is chosen once per Func:

  - raise: violations become a *violation.Error.
  - warn: violations go to a violation.Warner (by default a slog logger) and the call proceeds.
  - return: violations are only returned in the Result.

Without WithDefer each parameter's violations are handled as soon as it has been validated, so raise fails before the function runs. With WithDefer(true) every violation is collected and handled once at the end of the pass, in a single message.

# Usage

	sum, err := typeguard.New("sum", func(xs []any) int { ... }, typeguard.Signature{
		Params: []typeguard.Param{{Name: "xs", Type: descriptor.ListOf(descriptor.Of[int]())}},
		Return: descriptor.Of[int](),
	})
	if err != nil {
		log.Fatal(err)
	}

	res, err := sum.Call(ctx, []any{1, "two"})
	var tv *violation.Error
	if errors.As(err, &tv) {
		fmt.Println(tv.Violations[0].Message())
	}

Missing required arguments are always reported as *MissingArgumentError, whatever the mode, because they indicate a malformed call rather than a typing mismatch.

Signatures can also be written as type expressions in YAML files; see package schema.
*/
package typeguard
