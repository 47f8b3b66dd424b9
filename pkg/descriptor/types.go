package descriptor

import "reflect"

var errorType = reflect.TypeFor[error]()

// IsInstance reports whether v is an instance of t. A nil t is the none type.
func IsInstance(v any, t reflect.Type) bool {
	if t == nil || v == nil {
		return t == nil && v == nil
	}
	return reflect.TypeOf(v).AssignableTo(t)
}

// IsSubtype reports whether sub can stand in for super: identical types,
// assignable types and interface implementations.
func IsSubtype(sub, super reflect.Type) bool {
	if sub == nil || super == nil {
		return sub == super
	}
	return sub.AssignableTo(super)
}

// Signed is implemented by callables that carry a declared signature of
// their own, such as validating function wrappers.
type Signed interface {
	DeclaredSignature() (params []Descriptor, ret Descriptor)
}

// IsCallable reports whether v can be invoked.
func IsCallable(v any) bool {
	if _, ok := v.(Signed); ok {
		return true
	}
	if v == nil {
		return false
	}
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Func && !rv.IsNil()
}

// SignatureOf returns the declared signature of a callable without invoking
// it. Plain Go functions map each parameter and result to a Primitive; a
// trailing error result is not part of the declared return. More than one
// remaining result is reported as a fixed tuple.
func SignatureOf(v any) (params []Descriptor, ret Descriptor, ok bool) {
	if s, isSigned := v.(Signed); isSigned {
		params, ret = s.DeclaredSignature()
		return params, ret, true
	}
	if !IsCallable(v) {
		return nil, nil, false
	}
	ft := reflect.TypeOf(v)
	params = make([]Descriptor, ft.NumIn())
	for i := range params {
		params[i] = TypeFor(ft.In(i))
	}
	return params, ResultOf(ft), true
}

// ResultOf describes the results of function type ft, minus a trailing error.
func ResultOf(ft reflect.Type) Descriptor {
	n := ft.NumOut()
	if n > 0 && ft.Out(n-1) == errorType {
		n--
	}
	switch n {
	case 0:
		return nil
	case 1:
		return TypeFor(ft.Out(0))
	}
	elems := make([]Descriptor, n)
	for i := range elems {
		elems[i] = TypeFor(ft.Out(i))
	}
	return TupleOf(elems...)
}

// Equal reports structural equality of two descriptors. It compares shapes,
// not the values they would accept, except that Any equals the primitive
// empty interface.
func Equal(a, b Descriptor) bool {
	a, b = normalize(a), normalize(b)
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	switch a := a.(type) {
	case Wildcard:
		_, ok := b.(Wildcard)
		return ok
	case *Primitive:
		bp, ok := b.(*Primitive)
		return ok && a.Type == bp.Type
	case *TypeVar:
		return a == b
	case *Union:
		bu, ok := b.(*Union)
		return ok && equalAll(a.Alternatives, bu.Alternatives)
	case *LiteralSet:
		bl, ok := b.(*LiteralSet)
		if !ok || a.Len() != bl.Len() {
			return false
		}
		for _, v := range a.Values() {
			if !bl.Contains(v) {
				return false
			}
		}
		return true
	case *Container:
		bc, ok := b.(*Container)
		return ok && a.Collection == bc.Collection && Equal(a.Elem, bc.Elem)
	case *Tuple:
		bt, ok := b.(*Tuple)
		return ok && a.Variadic == bt.Variadic && equalAll(a.Elems, bt.Elems)
	case *Mapping:
		bm, ok := b.(*Mapping)
		return ok && Equal(a.Key, bm.Key) && Equal(a.Value, bm.Value)
	case *Record:
		br, ok := b.(*Record)
		if !ok || len(a.Fields) != len(br.Fields) {
			return false
		}
		for i, f := range a.Fields {
			g := br.Fields[i]
			if f.Name != g.Name || f.Optional != g.Optional || !Equal(f.Type, g.Type) {
				return false
			}
		}
		return true
	case *TypeOf:
		bt, ok := b.(*TypeOf)
		return ok && Equal(a.Inner, bt.Inner)
	case *Callable:
		bc, ok := b.(*Callable)
		return ok && a.Declared == bc.Declared && equalAll(a.Params, bc.Params) && Equal(a.Return, bc.Return)
	}
	return false
}

// normalize maps the empty interface to Any and the none type to nil, the
// form ResultOf uses for a function without results.
func normalize(d Descriptor) Descriptor {
	p, ok := d.(*Primitive)
	switch {
	case !ok:
		return d
	case p == nil || p.Type == nil:
		return nil
	case p.Type == anyType:
		return Any
	}
	return d
}

func equalAll(a, b []Descriptor) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}
