// Package registry binds type variables to concrete types for the duration
// of one validation pass.
package registry

import (
	"reflect"

	"github.com/aretw0/typeguard/pkg/descriptor"
)

// Registry maps type variables to the type first observed for them.
// It is owned by a single pass and is not safe for concurrent use.
type Registry struct {
	bindings map[*descriptor.TypeVar]reflect.Type
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		bindings: make(map[*descriptor.TypeVar]reflect.Type),
	}
}

// Lookup returns the type bound to tv, if any.
func (r *Registry) Lookup(tv *descriptor.TypeVar) (reflect.Type, bool) {
	t, ok := r.bindings[tv]
	return t, ok
}

// Bind records t for tv unless tv is already bound.
func (r *Registry) Bind(tv *descriptor.TypeVar, t reflect.Type) {
	if _, ok := r.bindings[tv]; ok {
		return
	}
	r.bindings[tv] = t
}

// BindOrCheck binds tv to observed on first use, or checks observed against
// the existing binding.
//
// On first use with a non-empty constraint set, observed must satisfy one
// constraint or the call fails without binding and effective is nil.
// On later uses observed must be assignable to the bound type, or both must
// satisfy a common constraint. On failure effective is the bound type.
func (r *Registry) BindOrCheck(tv *descriptor.TypeVar, observed reflect.Type) (effective reflect.Type, ok bool) {
	bound, seen := r.bindings[tv]
	if !seen {
		if len(tv.Constraints) > 0 && constraintOf(tv, observed) == nil {
			return nil, false
		}
		r.bindings[tv] = observed
		return observed, true
	}

	if descriptor.IsSubtype(observed, bound) {
		return bound, true
	}
	for _, c := range tv.Constraints {
		if satisfies(bound, c) && satisfies(observed, c) {
			return bound, true
		}
	}
	return bound, false
}

// Clone returns an isolated copy for speculative validation.
func (r *Registry) Clone() *Registry {
	c := &Registry{bindings: make(map[*descriptor.TypeVar]reflect.Type, len(r.bindings))}
	for k, v := range r.bindings {
		c.bindings[k] = v
	}
	return c
}

// Merge copies bindings from other that r does not have yet.
func (r *Registry) Merge(other *Registry) {
	for k, v := range other.bindings {
		r.Bind(k, v)
	}
}

// Len returns the number of bound variables.
func (r *Registry) Len() int { return len(r.bindings) }

func constraintOf(tv *descriptor.TypeVar, t reflect.Type) reflect.Type {
	for _, c := range tv.Constraints {
		if satisfies(t, c) {
			return c
		}
	}
	return nil
}

func satisfies(t, constraint reflect.Type) bool {
	return descriptor.IsSubtype(t, constraint)
}
