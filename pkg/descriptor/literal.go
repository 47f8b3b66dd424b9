package descriptor

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/aretw0/typeguard/pkg/value"
)

// LiteralSet matches a value equal to one of its literals.
type LiteralSet struct {
	set value.FrozenSet
}

// Literal builds a literal set. Nested literal sets are flattened into one.
func Literal(values ...any) *LiteralSet {
	return &LiteralSet{set: value.NewFrozenSet(Flatten(values...)...)}
}

// Flatten expands nested *LiteralSet values in place, keeping order.
func Flatten(values ...any) []any {
	out := make([]any, 0, len(values))
	for _, v := range values {
		if nested, ok := v.(*LiteralSet); ok {
			out = append(out, nested.Values()...)
			continue
		}
		out = append(out, v)
	}
	return out
}

func (*LiteralSet) Kind() Kind { return KindLiteral }
func (l *LiteralSet) String() string {
	return "literal[" + FormatLiterals(l.set.Items()) + "]"
}
func (*LiteralSet) isDescriptor() {}

// Values returns the literals in declaration order.
func (l *LiteralSet) Values() []any { return l.set.Items() }

// Len returns the number of distinct literals.
func (l *LiteralSet) Len() int { return l.set.Len() }

// Contains reports whether v equals one of the literals. Hashable values are
// looked up directly; others are compared with a linear scan.
func (l *LiteralSet) Contains(v any) bool { return l.set.Contains(v) }

// FormatLiterals renders literal values the way they are written in type
// expressions: strings quoted, nil as none.
func FormatLiterals(values []any) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = FormatLiteral(v)
	}
	return strings.Join(parts, ", ")
}

// FormatLiteral renders a single literal.
func FormatLiteral(v any) string {
	switch v := v.(type) {
	case nil:
		return "none"
	case string:
		return strconv.Quote(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}
