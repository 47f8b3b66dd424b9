// Package bind assigns supplied call arguments to declared parameters.
package bind

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

var (
	// ErrTooManyArguments is returned when more positional arguments are
	// supplied than there are parameters to receive them.
	ErrTooManyArguments = errors.New("too many positional arguments")

	// ErrUnexpectedArgument is returned for a keyword that names no parameter.
	ErrUnexpectedArgument = errors.New("unexpected keyword argument")
)

// Param is the binding view of a declared parameter.
type Param struct {
	Name       string
	Default    any
	HasDefault bool
	// Variadic collects every remaining positional argument. Only the last
	// parameter may be variadic.
	Variadic bool
}

// Args are the values supplied to one call.
type Args struct {
	Positional []any          `json:"positional,omitempty" yaml:"positional,omitempty" mapstructure:"positional"`
	Keyword    map[string]any `json:"keyword,omitempty" yaml:"keyword,omitempty" mapstructure:"keyword"`
}

// Bound maps parameter names to their values.
type Bound map[string]any

// Bind assigns positional arguments in declaration order, then keyword
// arguments, then defaults. A keyword argument replaces a positional one for
// the same parameter. Parameters left without a value are absent from the
// result; see Missing.
func Bind(params []Param, args Args) (Bound, error) {
	bound := make(Bound, len(params))

	rest := args.Positional
	for _, p := range params {
		if p.Variadic {
			collected := make([]any, len(rest))
			copy(collected, rest)
			bound[p.Name] = collected
			rest = nil
			break
		}
		if len(rest) == 0 {
			// Keep going: a trailing variadic parameter still binds to an
			// empty slice and is never missing.
			continue
		}
		bound[p.Name] = rest[0]
		rest = rest[1:]
	}
	if len(rest) > 0 {
		return nil, fmt.Errorf("%w: got %d, want at most %d", ErrTooManyArguments, len(args.Positional), len(params))
	}

	var unexpected []string
	for name, v := range args.Keyword {
		if !slices.ContainsFunc(params, func(p Param) bool { return p.Name == name }) {
			unexpected = append(unexpected, name)
			continue
		}
		bound[name] = v
	}
	if len(unexpected) > 0 {
		slices.Sort(unexpected)
		return nil, fmt.Errorf("%w: %s", ErrUnexpectedArgument, strings.Join(unexpected, ", "))
	}

	for _, p := range params {
		if _, ok := bound[p.Name]; !ok && p.HasDefault {
			bound[p.Name] = p.Default
		}
	}
	return bound, nil
}

// Missing lists, in declaration order, the parameters that have no value.
func Missing(params []Param, b Bound) []string {
	var missing []string
	for _, p := range params {
		if _, ok := b[p.Name]; !ok {
			missing = append(missing, p.Name)
		}
	}
	return missing
}
