package schema

import (
	"maps"
	"reflect"

	"github.com/aretw0/typeguard/pkg/descriptor"
)

var builtins = map[string]reflect.Type{
	"bool":    reflect.TypeFor[bool](),
	"int":     reflect.TypeFor[int](),
	"int8":    reflect.TypeFor[int8](),
	"int16":   reflect.TypeFor[int16](),
	"int32":   reflect.TypeFor[int32](),
	"int64":   reflect.TypeFor[int64](),
	"uint":    reflect.TypeFor[uint](),
	"uint8":   reflect.TypeFor[uint8](),
	"uint16":  reflect.TypeFor[uint16](),
	"uint32":  reflect.TypeFor[uint32](),
	"uint64":  reflect.TypeFor[uint64](),
	"byte":    reflect.TypeFor[byte](),
	"rune":    reflect.TypeFor[rune](),
	"float32": reflect.TypeFor[float32](),
	"float64": reflect.TypeFor[float64](),
	"float":   reflect.TypeFor[float64](),
	"str":     reflect.TypeFor[string](),
	"string":  reflect.TypeFor[string](),
	"bytes":   reflect.TypeFor[[]byte](),
	"error":   reflect.TypeFor[error](),
}

// Scope resolves names that are not part of the builtin vocabulary:
// custom Go types and type variables.
type Scope struct {
	Types map[string]reflect.Type
	Vars  map[string]*descriptor.TypeVar
}

// NewScope returns an empty scope.
func NewScope() *Scope {
	return &Scope{
		Types: make(map[string]reflect.Type),
		Vars:  make(map[string]*descriptor.TypeVar),
	}
}

// Type registers a custom type under name.
func (s *Scope) Type(name string, t reflect.Type) *Scope {
	s.Types[name] = t
	return s
}

// Var registers a type variable under its own name.
func (s *Scope) Var(tv *descriptor.TypeVar) *Scope {
	s.Vars[tv.Name] = tv
	return s
}

// Clone returns a copy that can be extended without affecting s. Cloning a
// nil scope yields an empty one.
func (s *Scope) Clone() *Scope {
	c := NewScope()
	if s != nil {
		maps.Copy(c.Types, s.Types)
		maps.Copy(c.Vars, s.Vars)
	}
	return c
}

func (s *Scope) lookupVar(name string) (*descriptor.TypeVar, bool) {
	if s == nil {
		return nil, false
	}
	tv, ok := s.Vars[name]
	return tv, ok
}

func (s *Scope) lookupType(name string) (reflect.Type, bool) {
	if s != nil {
		if t, ok := s.Types[name]; ok {
			return t, true
		}
	}
	t, ok := builtins[name]
	return t, ok
}
