package schema

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"slices"

	"github.com/aretw0/typeguard"
	"github.com/aretw0/typeguard/pkg/descriptor"
	"github.com/aretw0/typeguard/pkg/violation"
	"github.com/mitchellh/mapstructure"
)

// SignatureFile is the on-disk form of a function signature.
//
//	name: clamp
//	mode: raise
//	defer: true
//	typevars:
//	  T: [int, float]
//	params:
//	  - {name: x, type: T}
//	  - {name: lo, type: T, default: 0}
//	return: T
type SignatureFile struct {
	Name     string              `json:"name" yaml:"name" mapstructure:"name"`
	Mode     string              `json:"mode,omitempty" yaml:"mode,omitempty" mapstructure:"mode"`
	Defer    bool                `json:"defer,omitempty" yaml:"defer,omitempty" mapstructure:"defer"`
	Include  []string            `json:"include,omitempty" yaml:"include,omitempty" mapstructure:"include"`
	Exclude  []string            `json:"exclude,omitempty" yaml:"exclude,omitempty" mapstructure:"exclude"`
	TypeVars map[string][]string `json:"typevars,omitempty" yaml:"typevars,omitempty" mapstructure:"typevars"`
	Params   []ParamFile         `json:"params" yaml:"params" mapstructure:"params"`
	Return   string              `json:"return,omitempty" yaml:"return,omitempty" mapstructure:"return"`
}

// ParamFile is one parameter of a SignatureFile.
type ParamFile struct {
	Name       string `json:"name" mapstructure:"name"`
	Type       string `json:"type" mapstructure:"type"`
	Default    any    `json:"default,omitempty" mapstructure:"default"`
	HasDefault bool   `json:"-" mapstructure:"-"`
}

// MarshalYAML writes the default only when the parameter has one, so an
// explicit null default survives a round trip.
func (p ParamFile) MarshalYAML() (any, error) {
	out := map[string]any{"name": p.Name}
	if p.Type != "" {
		out["type"] = p.Type
	}
	if p.HasDefault {
		out["default"] = p.Default
	}
	return out, nil
}

// Declaration is a compiled signature file, ready to wrap a function.
type Declaration struct {
	Name      string
	Signature typeguard.Signature
	Options   []typeguard.Option
}

// LoadSignature reads a signature file (YAML or JSON).
func LoadSignature(path string) (*SignatureFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read signature file: %w", err)
	}
	return DecodeSignature(data)
}

// DecodeSignature decodes a signature document. Defaults keep the value tags
// understood by DecodeValue.
func DecodeSignature(data []byte) (*SignatureFile, error) {
	raw, err := ParseValue(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSignature, err)
	}
	return SignatureFrom(raw)
}

// SignatureFrom decodes a signature from an already decoded document, such
// as a JSON request body.
func SignatureFrom(raw any) (*SignatureFile, error) {
	doc, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: expected a mapping, got %T", ErrInvalidSignature, raw)
	}

	var sf SignatureFile
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      &sf,
		ErrorUnused: true,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSignature, err)
	}

	// mapstructure cannot tell an explicit null default from an absent one.
	if params, ok := doc["params"].([]any); ok {
		for i, p := range params {
			if m, ok := p.(map[string]any); ok && i < len(sf.Params) {
				_, sf.Params[i].HasDefault = m["default"]
			}
		}
	}

	if sf.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidSignature)
	}
	return &sf, nil
}

// Compile resolves the type expressions of the file. Type variables declared
// under typevars are added to a copy of scope, so they shadow scope entries
// with the same name.
func (sf *SignatureFile) Compile(scope *Scope) (*Declaration, error) {
	local := scope.Clone()

	names := make([]string, 0, len(sf.TypeVars))
	for name := range sf.TypeVars {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		constraints := make([]reflect.Type, 0, len(sf.TypeVars[name]))
		for _, expr := range sf.TypeVars[name] {
			d, err := Parse(expr, scope)
			if err != nil {
				return nil, fmt.Errorf("typevar %s: %w", name, err)
			}
			prim, ok := d.(*descriptor.Primitive)
			if !ok {
				return nil, fmt.Errorf("%w: typevar %s: constraint %q is not a concrete type", ErrInvalidSignature, name, expr)
			}
			constraints = append(constraints, prim.Type)
		}
		local.Var(descriptor.NewTypeVar(name, constraints...))
	}

	sig := typeguard.Signature{Params: make([]typeguard.Param, len(sf.Params))}
	for i, p := range sf.Params {
		var d descriptor.Descriptor
		if p.Type != "" {
			parsed, err := Parse(p.Type, local)
			if err != nil {
				return nil, fmt.Errorf("param %s: %w", p.Name, err)
			}
			d = parsed
		}
		sig.Params[i] = typeguard.Param{
			Name:       p.Name,
			Type:       d,
			Default:    p.Default,
			HasDefault: p.HasDefault,
		}
	}
	if sf.Return != "" {
		d, err := Parse(sf.Return, local)
		if err != nil {
			return nil, fmt.Errorf("return: %w", err)
		}
		sig.Return = d
	}

	var opts []typeguard.Option
	if sf.Mode != "" {
		mode, err := violation.ParseMode(sf.Mode)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidSignature, err)
		}
		opts = append(opts, typeguard.WithMode(mode))
	}
	if sf.Defer {
		opts = append(opts, typeguard.WithDefer(true))
	}
	if len(sf.Include) > 0 {
		opts = append(opts, typeguard.WithInclude(sf.Include...))
	}
	if len(sf.Exclude) > 0 {
		opts = append(opts, typeguard.WithExclude(sf.Exclude...))
	}

	return &Declaration{Name: sf.Name, Signature: sig, Options: opts}, nil
}

// Bind wraps fn with the declared signature. Options given here are applied
// after the file's own.
func (d *Declaration) Bind(fn any, opts ...typeguard.Option) (*typeguard.Func, error) {
	all := append(slices.Clone(d.Options), opts...)
	return typeguard.New(d.Name, fn, d.Signature, all...)
}

// Stub wraps a placeholder that accepts any arguments and returns nil. It is
// meant for Validate and Replay, which never need the real function.
func (d *Declaration) Stub(opts ...typeguard.Option) (*typeguard.Func, error) {
	in := make([]reflect.Type, len(d.Signature.Params))
	for i := range in {
		in[i] = anyType
	}
	ft := reflect.FuncOf(in, []reflect.Type{anyType}, false)
	fn := reflect.MakeFunc(ft, func([]reflect.Value) []reflect.Value {
		return []reflect.Value{reflect.Zero(anyType)}
	})
	return d.Bind(fn.Interface(), opts...)
}

var anyType = reflect.TypeFor[any]()

// IsSignatureError reports whether err came from decoding or compiling a
// signature document.
func IsSignatureError(err error) bool {
	var pe *ParseError
	return errors.Is(err, ErrInvalidSignature) || errors.As(err, &pe)
}
