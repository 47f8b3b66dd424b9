// Package violation records mismatches between values and descriptors,
// combines them, and applies a handling policy to them.
package violation

import (
	"fmt"
	"strings"
)

// Subject identifies what was being validated: a function, a method, or a
// standalone value.
type Subject struct {
	Kind string `json:"kind"`
	Name string `json:"name"`
}

func (s Subject) String() string {
	return fmt.Sprintf("%s `%s`", s.Kind, s.Name)
}

// Violation is either a *Simple or a *Complex.
type Violation interface {
	Message() string
	isViolation()
}

// Simple is one concrete mismatch.
type Simple struct {
	Subject  Subject
	Category string
	Path     string
	Expected any
	Got      any
}

func (*Simple) isViolation() {}

func (v *Simple) String() string { return v.Message() }

// Message renders the mismatch. A multi-valued Expected against a single Got
// reads "one of".
func (v *Simple) Message() string {
	expected := "`" + format(v.Expected) + "`"
	if isMulti(v.Expected) && !isMulti(v.Got) {
		expected = "one of " + expected
	}
	return fmt.Sprintf("typing violation in %s: expected %s`%s` to be %s (got `%s`).",
		v.Subject, categoryPrefix(v.Category), v.Path, expected, format(v.Got))
}

// Combination tells how the children of a Complex relate.
type Combination string

const (
	// And means every child is a separate failure.
	And Combination = "and"
	// Or means every alternative failed.
	Or Combination = "or"
)

// Complex aggregates several violations.
type Complex struct {
	Children    []Violation
	Combination Combination
}

func (*Complex) isViolation() {}

func (v *Complex) String() string { return v.Message() }

// Message renders one consolidated sentence when the alternatives of an Or
// differ only in what they expected, and an indented list otherwise.
func (v *Complex) Message() string {
	if v.Combination == Or {
		if msg, ok := v.consolidated(); ok {
			return msg
		}
	}
	lines := make([]string, len(v.Children))
	for i, child := range v.Children {
		lines[i] = strings.ReplaceAll(child.Message(), "\n", "\n\t")
	}
	return "typing violation:\n\t" + strings.Join(lines, "\n\t")
}

func (v *Complex) consolidated() (string, bool) {
	if len(v.Children) == 0 {
		return "", false
	}
	first, ok := v.Children[0].(*Simple)
	if !ok {
		return "", false
	}
	got := format(first.Got)
	expected := make([]string, 0, len(v.Children))
	for _, child := range v.Children {
		s, ok := child.(*Simple)
		if !ok || s.Subject != first.Subject || s.Category != first.Category ||
			s.Path != first.Path || format(s.Got) != got {
			return "", false
		}
		expected = append(expected, "`"+format(s.Expected)+"`")
	}
	return fmt.Sprintf("typing violation in %s: expected %s`%s` to be one of [%s] (got `%s`).",
		first.Subject, categoryPrefix(first.Category), first.Path, strings.Join(expected, ", "), got), true
}

// Add folds b into a. Nil operands are absorbed; two simple violations form
// an And; a complex operand keeps its combination and gains the other's
// children.
func Add(a, b Violation) Violation {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	ac, aComplex := a.(*Complex)
	bc, bComplex := b.(*Complex)
	switch {
	case aComplex && bComplex:
		return &Complex{Children: concat(ac.Children, bc.Children), Combination: ac.Combination}
	case aComplex:
		return &Complex{Children: concat(ac.Children, []Violation{b}), Combination: ac.Combination}
	case bComplex:
		return &Complex{Children: concat(bc.Children, []Violation{a}), Combination: bc.Combination}
	}
	return &Complex{Children: []Violation{a, b}, Combination: And}
}

// Sum folds all violations with Add. It returns nil for an empty list.
func Sum(vs ...Violation) Violation {
	var total Violation
	for _, v := range vs {
		total = Add(total, v)
	}
	return total
}

// Label is a short classification used for metrics and reports.
func Label(v Violation) string {
	switch v := v.(type) {
	case *Simple:
		if v.Category == "" {
			return "argument"
		}
		return v.Category
	case *Complex:
		if v.Combination == Or {
			return "union"
		}
		return "composite"
	}
	return "unknown"
}

func concat(a, b []Violation) []Violation {
	out := make([]Violation, 0, len(a)+len(b))
	out = append(out, a...)
	return append(out, b...)
}

func categoryPrefix(category string) string {
	if category == "" {
		return ""
	}
	return category + " "
}
