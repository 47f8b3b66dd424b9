package validator

import (
	"cmp"
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/aretw0/typeguard/pkg/descriptor"
	"github.com/aretw0/typeguard/pkg/value"
)

var (
	tupleType     = reflect.TypeFor[value.Tuple]()
	frozenSetType = reflect.TypeFor[value.FrozenSet]()
	emptyStruct   = reflect.TypeFor[struct{}]()
)

// isSetType reports whether t is a Go set: a map to struct{} or bool.
func isSetType(t reflect.Type) bool {
	if t.Kind() != reflect.Map {
		return false
	}
	return t.Elem() == emptyStruct || t.Elem().Kind() == reflect.Bool
}

func isCollection(v any, c descriptor.Collection, iterable bool) bool {
	if v == nil {
		return false
	}
	t := reflect.TypeOf(v)
	switch c {
	case descriptor.CollectionList:
		return t.Kind() == reflect.Slice && t != tupleType
	case descriptor.CollectionSet:
		return isSetType(t)
	case descriptor.CollectionFrozenSet:
		return t == frozenSetType
	case descriptor.CollectionIterable:
		return iterable
	}
	return false
}

// elements lists the members of an iterable value. Sets and maps yield their
// keys in a stable order; strings yield one string per rune.
func elements(v any) ([]any, bool) {
	switch v := v.(type) {
	case nil:
		return nil, false
	case value.Tuple:
		return []any(v), true
	case value.FrozenSet:
		return v.Items(), true
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String:
		out := make([]any, 0, rv.Len())
		for _, r := range rv.String() {
			out = append(out, string(r))
		}
		return out, true
	case reflect.Slice, reflect.Array:
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = rv.Index(i).Interface()
		}
		return out, true
	case reflect.Map:
		keys := sortedKeys(rv)
		out := make([]any, len(keys))
		for i, k := range keys {
			out[i] = k.Interface()
		}
		return out, true
	case reflect.Func:
		if rv.IsNil() || !rv.Type().CanSeq() {
			return nil, false
		}
		var out []any
		for e := range rv.Seq() {
			out = append(out, e.Interface())
		}
		return out, true
	}
	return nil, false
}

// tupleElements accepts value.Tuple and Go arrays.
func tupleElements(v any) ([]any, bool) {
	if t, ok := v.(value.Tuple); ok {
		return []any(t), true
	}
	if v == nil || reflect.TypeOf(v).Kind() != reflect.Array {
		return nil, false
	}
	return elements(v)
}

func sortedKeys(rv reflect.Value) []reflect.Value {
	keys := rv.MapKeys()
	slices.SortStableFunc(keys, func(a, b reflect.Value) int {
		return cmp.Compare(fmt.Sprint(a.Interface()), fmt.Sprint(b.Interface()))
	})
	return keys
}

// recordLookup returns a field accessor for string-keyed maps and structs.
// Struct fields match by name or by json tag; unexported fields are hidden.
func recordLookup(v any) (func(name string) (any, bool), bool) {
	if v == nil {
		return nil, false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer && !rv.IsNil() && rv.Elem().Kind() == reflect.Struct {
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Map:
		kt := rv.Type().Key()
		if kt.Kind() != reflect.String && (kt.Kind() != reflect.Interface || kt.NumMethod() != 0) {
			return nil, false
		}
		return func(name string) (any, bool) {
			mv := rv.MapIndex(reflect.ValueOf(name).Convert(kt))
			if !mv.IsValid() {
				return nil, false
			}
			return mv.Interface(), true
		}, true
	case reflect.Struct:
		return func(name string) (any, bool) {
			return structField(rv, name)
		}, true
	}
	return nil, false
}

func structField(rv reflect.Value, name string) (any, bool) {
	rt := rv.Type()
	for i := range rt.NumField() {
		f := rt.Field(i)
		if !f.IsExported() {
			continue
		}
		tag, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if f.Name == name || (tag != "" && tag != "-" && tag == name) {
			return rv.Field(i).Interface(), true
		}
	}
	return nil, false
}
