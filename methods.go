package typeguard

import (
	"fmt"
	"reflect"
	"slices"
)

// Methods wraps every exported method in the method set of receiver. A
// pointer receiver also covers its pointer-receiver methods. Methods missing
// from sigs get a signature inferred from their Go types. Nested types and
// package-level functions are never wrapped.
//
// Each Func reports violations with the subject kind "method" and the name
// Type.Method.
func Methods(receiver any, sigs map[string]Signature, opts ...Option) (map[string]*Func, error) {
	if receiver == nil {
		return nil, fmt.Errorf("%w: nil receiver", ErrNotCallable)
	}
	rv := reflect.ValueOf(receiver)
	rt := rv.Type()
	base := rt
	if base.Kind() == reflect.Pointer {
		base = base.Elem()
	}

	known := make(map[string]bool, rt.NumMethod())
	out := make(map[string]*Func, rt.NumMethod())
	for i := range rt.NumMethod() {
		m := rt.Method(i)
		if !m.IsExported() {
			continue
		}
		known[m.Name] = true

		fn := rv.Method(i).Interface()
		sig, ok := sigs[m.Name]
		if !ok {
			var err error
			if sig, err = Infer(fn); err != nil {
				return nil, err
			}
		}
		f, err := New(base.Name()+"."+m.Name, fn, sig, slices.Concat([]Option{WithSubjectKind("method")}, opts)...)
		if err != nil {
			return nil, err
		}
		out[m.Name] = f
	}

	for name := range sigs {
		if !known[name] {
			return nil, fmt.Errorf("%w: %s has no exported method %q", ErrUnknownMethod, rt, name)
		}
	}
	return out, nil
}
