package validator

import (
	"fmt"
	"reflect"

	"github.com/aretw0/typeguard/pkg/descriptor"
	"github.com/aretw0/typeguard/pkg/registry"
	"github.com/aretw0/typeguard/pkg/violation"
)

// Violation categories, as they appear in messages.
const (
	CategoryType           = "type of argument"
	CategoryValue          = "value of argument"
	CategoryLength         = "length of argument"
	CategoryRecordKey      = "key in record"
	CategoryArgument       = "argument"
	CategoryCallableLength = "length of value of argument"
	CategoryCallableReturn = "return type of callable argument"
)

// Pass is one validation pass. It is not safe for concurrent use.
type Pass struct {
	subject    violation.Subject
	registry   *registry.Registry
	violations []violation.Violation
}

// New starts a pass for subject. A nil registry starts a fresh one.
func New(subject violation.Subject, reg *registry.Registry) *Pass {
	if reg == nil {
		reg = registry.New()
	}
	return &Pass{subject: subject, registry: reg}
}

// Check validates a standalone value in a pass of its own.
func Check(v any, d descriptor.Descriptor, path string) []violation.Violation {
	return New(violation.Subject{Kind: "value", Name: path}, nil).Validate(v, d, path)
}

// Subject returns the subject violations are reported against.
func (p *Pass) Subject() violation.Subject { return p.subject }

// Registry returns the pass registry.
func (p *Pass) Registry() *registry.Registry { return p.registry }

// Violations returns everything recorded so far.
func (p *Pass) Violations() []violation.Violation { return p.violations }

// Validate checks v against d under path and returns the violations this
// call added. A nil descriptor accepts everything.
func (p *Pass) Validate(v any, d descriptor.Descriptor, path string) []violation.Violation {
	start := len(p.violations)
	p.validate(v, d, path)
	end := len(p.violations)
	return p.violations[start:end:end]
}

func (p *Pass) sub(reg *registry.Registry) *Pass {
	return &Pass{subject: p.subject, registry: reg}
}

func (p *Pass) add(category, path string, expected, got any) {
	p.violations = append(p.violations, &violation.Simple{
		Subject:  p.subject,
		Category: category,
		Path:     path,
		Expected: expected,
		Got:      got,
	})
}

func (p *Pass) validate(v any, d descriptor.Descriptor, path string) {
	switch d := d.(type) {
	case nil, descriptor.Wildcard:
	case *descriptor.Primitive:
		if !descriptor.IsInstance(v, d.Type) {
			p.add(CategoryType, path, d.Type, reflect.TypeOf(v))
		}
	case *descriptor.TypeVar:
		p.validateTypeVar(v, d, path)
	case *descriptor.LiteralSet:
		if !d.Contains(v) {
			p.add(CategoryValue, path, d.Values(), v)
		}
	case *descriptor.Container:
		p.validateContainer(v, d, path)
	case *descriptor.Tuple:
		p.validateTuple(v, d, path)
	case *descriptor.Mapping:
		p.validateMapping(v, d, path)
	case *descriptor.Record:
		p.validateRecord(v, d, path)
	case *descriptor.Union:
		p.validateUnion(v, d, path, false)
	case *descriptor.TypeOf:
		p.validateType(v, d.Inner, path)
	case *descriptor.Callable:
		p.validateCallable(v, d, path)
	}
}

func (p *Pass) validateTypeVar(v any, d *descriptor.TypeVar, path string) {
	observed := reflect.TypeOf(v)
	bound, ok := p.registry.BindOrCheck(d, observed)
	if ok {
		return
	}
	p.typeVarMismatch(d, bound, observed, CategoryType, path)
}

func (p *Pass) typeVarMismatch(d *descriptor.TypeVar, bound, observed reflect.Type, boundCategory, path string) {
	if _, seen := p.registry.Lookup(d); !seen {
		p.add(CategoryType, path, d.Constraints, observed)
		return
	}
	p.add(boundCategory, path, bound, observed)
}

func (p *Pass) validateContainer(v any, d *descriptor.Container, path string) {
	elems, iterable := elements(v)
	if !isCollection(v, d.Collection, iterable) {
		p.add(CategoryType, path, d.Collection, reflect.TypeOf(v))
	}
	if d.Elem == nil {
		return
	}
	for _, e := range elems {
		p.validate(e, d.Elem, path)
	}
}

func (p *Pass) validateTuple(v any, d *descriptor.Tuple, path string) {
	elems, ok := tupleElements(v)
	if !ok {
		p.add(CategoryType, path, "tuple", reflect.TypeOf(v))
		return
	}
	if d.Variadic {
		if len(d.Elems) == 0 {
			return
		}
		for _, e := range elems {
			p.validate(e, d.Elems[0], path)
		}
		return
	}
	if len(elems) != len(d.Elems) {
		p.add(CategoryLength, path, len(d.Elems), len(elems))
	}
	for i := range min(len(elems), len(d.Elems)) {
		p.validate(elems[i], d.Elems[i], path)
	}
}

func (p *Pass) validateMapping(v any, d *descriptor.Mapping, path string) {
	rv := reflect.ValueOf(v)
	if v == nil || rv.Kind() != reflect.Map {
		p.add(CategoryType, path, "dict", reflect.TypeOf(v))
		return
	}
	if d.Key == nil && d.Value == nil {
		return
	}

	aux := p.sub(p.registry)
	keys := sortedKeys(rv)
	if d.Key != nil {
		keyPath := fmt.Sprintf("key in `%s`", path)
		for _, k := range keys {
			aux.validate(k.Interface(), d.Key, keyPath)
		}
	}
	if d.Value != nil {
		valuePath := fmt.Sprintf("value in `%s`", path)
		for _, k := range keys {
			aux.validate(rv.MapIndex(k).Interface(), d.Value, valuePath)
		}
	}
	if len(aux.violations) > 0 {
		p.violations = append(p.violations, &violation.Complex{
			Children:    aux.violations,
			Combination: violation.And,
		})
	}
}

func (p *Pass) validateRecord(v any, d *descriptor.Record, path string) {
	lookup, ok := recordLookup(v)
	if !ok {
		p.add(CategoryType, path, "record", reflect.TypeOf(v))
		return
	}
	for _, f := range d.Fields {
		fv, present := lookup(f.Name)
		if !present {
			if !f.Optional {
				p.add(CategoryRecordKey, path, f.Name, nil)
			}
			continue
		}
		p.validate(fv, f.Type, path+"."+f.Name)
	}
}

// validateUnion tries each alternative on a cloned registry. The first clean
// alternative wins and its bindings are merged back; if none is clean, one Or
// violation holds a child per alternative. A union without alternatives
// matches nothing.
func (p *Pass) validateUnion(v any, d *descriptor.Union, path string, asType bool) {
	if len(d.Alternatives) == 0 {
		var got any = reflect.TypeOf(v)
		if asType {
			got = v
		}
		p.add(CategoryType, path, []descriptor.Descriptor{}, got)
		return
	}
	children := make([]violation.Violation, 0, len(d.Alternatives))
	for _, alt := range d.Alternatives {
		trial := p.sub(p.registry.Clone())
		if asType {
			trial.validateType(v, alt, path)
		} else {
			trial.validate(v, alt, path)
		}
		if len(trial.violations) == 0 {
			p.registry.Merge(trial.registry)
			return
		}
		children = append(children, collapse(trial.violations))
	}
	if len(children) > 0 {
		p.violations = append(p.violations, &violation.Complex{
			Children:    children,
			Combination: violation.Or,
		})
	}
}

// validateType checks that v is a reflect.Type described by inner.
func (p *Pass) validateType(v any, inner descriptor.Descriptor, path string) {
	t, ok := v.(reflect.Type)
	if !ok || t == nil {
		p.add(CategoryType, path, "type", reflect.TypeOf(v))
		return
	}

	switch in := inner.(type) {
	case nil, descriptor.Wildcard:
	case *descriptor.Primitive:
		if !descriptor.IsSubtype(t, in.Type) {
			p.add(CategoryArgument, path, in.Type, t)
		}
	case *descriptor.Union:
		p.validateUnion(t, in, path, true)
	case *descriptor.TypeVar:
		// The first occurrence binds the variable to the type itself.
		bound, ok := p.registry.BindOrCheck(in, t)
		if !ok {
			p.typeVarMismatch(in, bound, t, CategoryArgument, path)
		}
	default:
		if !p.typeConforms(t, inner) {
			p.add(CategoryType, path, inner, t)
		}
	}
}

// typeConforms matches a type against a structural descriptor at the type
// level, e.g. []int against list[int].
func (p *Pass) typeConforms(t reflect.Type, d descriptor.Descriptor) bool {
	switch d := d.(type) {
	case nil, descriptor.Wildcard:
		return true
	case *descriptor.Primitive:
		return descriptor.IsSubtype(t, d.Type)
	case *descriptor.TypeVar:
		_, ok := p.registry.BindOrCheck(d, t)
		return ok
	case *descriptor.Union:
		for _, alt := range d.Alternatives {
			if p.typeConforms(t, alt) {
				return true
			}
		}
		return false
	case *descriptor.Container:
		switch d.Collection {
		case descriptor.CollectionList:
			return t.Kind() == reflect.Slice && t != tupleType && p.typeConforms(t.Elem(), d.Elem)
		case descriptor.CollectionSet:
			return isSetType(t) && p.typeConforms(t.Key(), d.Elem)
		case descriptor.CollectionFrozenSet:
			return t == frozenSetType && d.Elem == nil
		case descriptor.CollectionIterable:
			switch t.Kind() {
			case reflect.Slice, reflect.Array:
				return p.typeConforms(t.Elem(), d.Elem)
			case reflect.Map:
				return p.typeConforms(t.Key(), d.Elem)
			case reflect.String:
				return p.typeConforms(reflect.TypeFor[string](), d.Elem)
			}
		}
	case *descriptor.Mapping:
		return t.Kind() == reflect.Map && p.typeConforms(t.Key(), d.Key) && p.typeConforms(t.Elem(), d.Value)
	}
	return false
}

// validateCallable compares declared signatures; the value is never invoked.
func (p *Pass) validateCallable(v any, d *descriptor.Callable, path string) {
	if !descriptor.IsCallable(v) {
		p.add(CategoryType, path, "callable", reflect.TypeOf(v))
		return
	}
	if !d.Declared {
		return
	}

	params, ret, _ := descriptor.SignatureOf(v)
	if len(params) != len(d.Params) {
		p.add(CategoryCallableLength, path, len(d.Params), len(params))
	}
	for i := range min(len(params), len(d.Params)) {
		if !descriptor.Equal(params[i], d.Params[i]) {
			p.add(ordinal(i+1)+" argument's type in callable argument", path, d.Params[i], params[i])
		}
	}
	if !descriptor.Equal(ret, d.Return) {
		p.add(CategoryCallableReturn, path, d.Return, ret)
	}
}

func collapse(vs []violation.Violation) violation.Violation {
	if len(vs) == 1 {
		return vs[0]
	}
	return &violation.Complex{Children: vs, Combination: violation.And}
}

func ordinal(n int) string {
	suffix := "th"
	switch n % 100 {
	case 11, 12, 13:
	default:
		switch n % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	return fmt.Sprintf("%d%s", n, suffix)
}
