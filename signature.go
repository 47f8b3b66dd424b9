package typeguard

import (
	"fmt"
	"reflect"

	"github.com/aretw0/typeguard/internal/bind"
	"github.com/aretw0/typeguard/pkg/descriptor"
)

// ReturnName is the path under which return values are validated. It can be
// used with WithInclude and WithExclude like any parameter name.
const ReturnName = "return"

// Param declares one parameter. A nil Type leaves the parameter unannotated.
type Param struct {
	Name       string
	Type       descriptor.Descriptor
	Default    any
	HasDefault bool
}

// Signature is the declared parameter list and return type of a function.
type Signature struct {
	Params []Param
	Return descriptor.Descriptor
}

// Args are the positional and keyword values supplied to a call.
type Args = bind.Args

// Infer derives a signature from the Go types of fn. Parameters are named
// from names, falling back to arg0, arg1 and so on. The empty interface maps
// to Any and nilable kinds accept nil. A variadic parameter is declared as a
// list of its element type. A trailing error result is not part of the return.
func Infer(fn any, names ...string) (Signature, error) {
	ft := reflect.TypeOf(fn)
	if fn == nil || ft.Kind() != reflect.Func {
		return Signature{}, fmt.Errorf("%w: %T", ErrNotCallable, fn)
	}

	sig := Signature{Params: make([]Param, ft.NumIn())}
	for i := range sig.Params {
		name := fmt.Sprintf("arg%d", i)
		if i < len(names) && names[i] != "" {
			name = names[i]
		}
		in := ft.In(i)
		if ft.IsVariadic() && i == ft.NumIn()-1 {
			sig.Params[i] = Param{Name: name, Type: descriptor.ListOf(inferType(in.Elem()))}
			continue
		}
		sig.Params[i] = Param{Name: name, Type: inferType(in)}
	}
	sig.Return = inferResult(ft)
	return sig, nil
}

func inferType(t reflect.Type) descriptor.Descriptor {
	if t.Kind() == reflect.Interface && t.NumMethod() == 0 {
		return descriptor.Any
	}
	d := descriptor.TypeFor(t)
	switch t.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Slice, reflect.Map, reflect.Func, reflect.Chan:
		return descriptor.Optional(d)
	}
	return d
}

func inferResult(ft reflect.Type) descriptor.Descriptor {
	n := ft.NumOut()
	if n > 0 && ft.Out(n-1) == errorType {
		n--
	}
	switch n {
	case 0:
		return nil
	case 1:
		return inferType(ft.Out(0))
	}
	elems := make([]descriptor.Descriptor, n)
	for i := range elems {
		elems[i] = inferType(ft.Out(i))
	}
	return descriptor.TupleOf(elems...)
}

// Descriptors returns the parameter descriptors and the return descriptor.
func (s Signature) Descriptors() ([]descriptor.Descriptor, descriptor.Descriptor) {
	params := make([]descriptor.Descriptor, len(s.Params))
	for i, p := range s.Params {
		params[i] = p.Type
	}
	return params, s.Return
}

func (s Signature) bindParams(variadic bool) []bind.Param {
	out := make([]bind.Param, len(s.Params))
	for i, p := range s.Params {
		out[i] = bind.Param{
			Name:       p.Name,
			Default:    p.Default,
			HasDefault: p.HasDefault,
			Variadic:   variadic && i == len(s.Params)-1,
		}
	}
	return out
}

func (s Signature) check() error {
	seen := make(map[string]bool, len(s.Params))
	for _, p := range s.Params {
		switch {
		case p.Name == "":
			return fmt.Errorf("%w: unnamed parameter", ErrSignatureMismatch)
		case p.Name == ReturnName:
			return fmt.Errorf("%w: parameter may not be named %q", ErrSignatureMismatch, ReturnName)
		case seen[p.Name]:
			return fmt.Errorf("%w: duplicate parameter %q", ErrSignatureMismatch, p.Name)
		}
		seen[p.Name] = true
	}
	return nil
}
