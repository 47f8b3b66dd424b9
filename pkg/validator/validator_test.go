package validator

import (
	"fmt"
	"io"
	"iter"
	"reflect"
	"slices"
	"testing"

	"github.com/aretw0/typeguard/pkg/descriptor"
	"github.com/aretw0/typeguard/pkg/registry"
	"github.com/aretw0/typeguard/pkg/value"
	"github.com/aretw0/typeguard/pkg/violation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var subject = violation.Subject{Kind: "function", Name: "f"}

func newPass() *Pass { return New(subject, nil) }

func simpleOf(t *testing.T, v violation.Violation) *violation.Simple {
	t.Helper()
	s, ok := v.(*violation.Simple)
	require.True(t, ok, "expected *violation.Simple, got %T", v)
	return s
}

func complexOf(t *testing.T, v violation.Violation) *violation.Complex {
	t.Helper()
	c, ok := v.(*violation.Complex)
	require.True(t, ok, "expected *violation.Complex, got %T", v)
	return c
}

func TestPrimitive(t *testing.T) {
	tests := []struct {
		name  string
		value any
		desc  descriptor.Descriptor
		ok    bool
	}{
		{"int is int", 1, descriptor.Of[int](), true},
		{"string is not int", "1", descriptor.Of[int](), false},
		{"int64 is not int", int64(1), descriptor.Of[int](), false},
		{"nil is not int", nil, descriptor.Of[int](), false},
		{"nil is none", nil, descriptor.None(), true},
		{"int is not none", 0, descriptor.None(), false},
		{"implementation matches interface", io.EOF, descriptor.Of[error](), true},
		{"anything is any", struct{}{}, descriptor.Any, true},
		{"nil descriptor accepts", "x", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := newPass().Validate(tt.value, tt.desc, "x")
			if tt.ok {
				assert.Empty(t, got)
				return
			}
			require.Len(t, got, 1)
			s := simpleOf(t, got[0])
			assert.Equal(t, CategoryType, s.Category)
			assert.Equal(t, "x", s.Path)
		})
	}
}

func TestPrimitive_Message(t *testing.T) {
	got := newPass().Validate("a", descriptor.Of[int](), "x")
	require.Len(t, got, 1)
	assert.Equal(t,
		"typing violation in function `f`: expected type of argument `x` to be `int` (got `string`).",
		got[0].Message())
}

func TestValidate_ReturnsOnlyNewViolations(t *testing.T) {
	p := newPass()
	first := p.Validate("a", descriptor.Of[int](), "x")
	second := p.Validate(1, descriptor.Of[int](), "y")
	third := p.Validate(1.5, descriptor.Of[int](), "z")

	assert.Len(t, first, 1)
	assert.Empty(t, second)
	assert.Len(t, third, 1)
	assert.Len(t, p.Violations(), 2)
}

func TestUnion(t *testing.T) {
	d := descriptor.OneOf(descriptor.Of[int](), descriptor.Of[string]())

	assert.Empty(t, newPass().Validate(1, d, "x"))
	assert.Empty(t, newPass().Validate("a", d, "x"))

	got := newPass().Validate(1.5, d, "x")
	require.Len(t, got, 1)
	c := complexOf(t, got[0])
	assert.Equal(t, violation.Or, c.Combination)
	assert.Len(t, c.Children, 2, "one child per alternative")
	assert.Equal(t,
		"typing violation in function `f`: expected type of argument `x` to be one of [`int`, `string`] (got `float64`).",
		c.Message())
}

func TestUnion_NoAlternatives(t *testing.T) {
	d := descriptor.OneOf()

	got := Check(42, d, "x")
	require.Len(t, got, 1)
	assert.Equal(t, "typing violation in value `x`: expected type of argument `x` to be one of `[]` (got `int`).", got[0].Message())

	assert.Len(t, Check(nil, d, "x"), 1)
	assert.Len(t, Check(reflect.TypeFor[int](), descriptor.TypeOfType(d), "t"), 1)
}

func TestUnion_FailedTrialDoesNotLeakBindings(t *testing.T) {
	tv := descriptor.NewTypeVar("T")
	// The first alternative binds T before failing on the second element.
	d := descriptor.OneOf(
		descriptor.TupleOf(tv, descriptor.Of[int]()),
		descriptor.VariadicTuple(descriptor.Of[string]()),
	)

	p := newPass()
	require.Empty(t, p.Validate(value.Tuple{"a", "b"}, d, "x"))
	_, bound := p.Registry().Lookup(tv)
	assert.False(t, bound)

	p = newPass()
	require.Empty(t, p.Validate(value.Tuple{"a", 1}, d, "x"))
	got, bound := p.Registry().Lookup(tv)
	require.True(t, bound, "winning trial merges its bindings")
	assert.Equal(t, reflect.TypeFor[string](), got)
}

func TestUnion_AlternativeWithSeveralViolationsCollapses(t *testing.T) {
	d := descriptor.OneOf(descriptor.TupleOf(descriptor.Of[int](), descriptor.Of[int]()), descriptor.Of[string]())

	got := newPass().Validate(value.Tuple{"a", "b"}, d, "x")
	require.Len(t, got, 1)
	c := complexOf(t, got[0])
	require.Len(t, c.Children, 2)
	first := complexOf(t, c.Children[0])
	assert.Equal(t, violation.And, first.Combination)
	assert.Len(t, first.Children, 2)
}

func TestTypeVar_Consistency(t *testing.T) {
	tv := descriptor.NewTypeVar("T")

	p := newPass()
	assert.Empty(t, p.Validate(1, tv, "x"))
	assert.Empty(t, p.Validate(2, tv, "y"))

	p = newPass()
	assert.Empty(t, p.Validate(1, tv, "x"))
	got := p.Validate("a", tv, "y")
	require.Len(t, got, 1)
	s := simpleOf(t, got[0])
	assert.Equal(t, reflect.TypeFor[int](), s.Expected, "bound to the first argument")
	assert.Equal(t, "y", s.Path)
}

func TestTypeVar_Constraints(t *testing.T) {
	tv := descriptor.NewTypeVar("N", reflect.TypeFor[int](), reflect.TypeFor[float64]())

	p := newPass()
	got := p.Validate("a", tv, "x")
	require.Len(t, got, 1)
	assert.Contains(t, got[0].Message(), "one of")
	assert.Equal(t, 0, p.Registry().Len(), "failed first use does not bind")

	p = newPass()
	assert.Empty(t, p.Validate(1.5, tv, "x"))
	assert.Empty(t, p.Validate(2.5, tv, "y"))
}

func TestTypeVar_SharedAcrossNesting(t *testing.T) {
	tv := descriptor.NewTypeVar("T")
	p := newPass()
	assert.Empty(t, p.Validate([]int{1, 2}, descriptor.ListOf(tv), "xs"))
	got := p.Validate("a", tv, "y")
	assert.Len(t, got, 1)
}

func TestLiteral(t *testing.T) {
	d := descriptor.Literal("red", "green", descriptor.Literal(1, 2))

	for _, v := range []any{"red", "green", 1, 2} {
		assert.Empty(t, newPass().Validate(v, d, "c"), "%v", v)
	}

	got := newPass().Validate("blue", d, "c")
	require.Len(t, got, 1)
	s := simpleOf(t, got[0])
	assert.Equal(t, CategoryValue, s.Category)
	assert.Equal(t, "blue", s.Got)
	assert.Contains(t, s.Message(), "to be one of")
}

func TestLiteral_Unhashable(t *testing.T) {
	d := descriptor.Literal([]int{1, 2})
	assert.Empty(t, newPass().Validate([]int{1, 2}, d, "c"))
	assert.Len(t, newPass().Validate([]int{1, 3}, d, "c"), 1)
}

func TestContainer(t *testing.T) {
	ints := descriptor.Of[int]()

	t.Run("list", func(t *testing.T) {
		assert.Empty(t, newPass().Validate([]int{1, 2}, descriptor.ListOf(ints), "xs"))
		assert.Empty(t, newPass().Validate([]any{1, 2}, descriptor.ListOf(ints), "xs"))
		assert.Len(t, newPass().Validate([]any{1, "a", 2.0}, descriptor.ListOf(ints), "xs"), 2)
	})

	t.Run("kind and element mismatches are independent", func(t *testing.T) {
		got := newPass().Validate(value.Tuple{1, "a"}, descriptor.ListOf(ints), "xs")
		require.Len(t, got, 2)
		assert.Equal(t, descriptor.CollectionList, simpleOf(t, got[0]).Expected)
		assert.Equal(t, reflect.TypeFor[string](), simpleOf(t, got[1]).Got)
	})

	t.Run("set", func(t *testing.T) {
		assert.Empty(t, newPass().Validate(map[int]struct{}{1: {}}, descriptor.SetOf(ints), "s"))
		assert.Empty(t, newPass().Validate(map[int]bool{1: true}, descriptor.SetOf(ints), "s"))
		assert.Len(t, newPass().Validate(map[int]string{1: "a"}, descriptor.SetOf(ints), "s"), 1)
		assert.Len(t, newPass().Validate([]int{1}, descriptor.SetOf(ints), "s"), 1)
	})

	t.Run("frozenset", func(t *testing.T) {
		assert.Empty(t, newPass().Validate(value.NewFrozenSet(1, 2), descriptor.FrozenSetOf(ints), "s"))
		assert.Len(t, newPass().Validate(value.NewFrozenSet(1, "a"), descriptor.FrozenSetOf(ints), "s"), 1)
		assert.Len(t, newPass().Validate(map[int]struct{}{}, descriptor.FrozenSetOf(nil), "s"), 1)
	})

	t.Run("iterable", func(t *testing.T) {
		strs := descriptor.IterableOf(descriptor.Of[string]())
		assert.Empty(t, newPass().Validate("abc", strs, "it"))
		assert.Empty(t, newPass().Validate([2]string{"a", "b"}, strs, "it"))
		assert.Empty(t, newPass().Validate(map[string]int{"a": 1}, strs, "it"))
		assert.Empty(t, newPass().Validate(value.Tuple{"a"}, strs, "it"))

		var seq iter.Seq[string] = slices.Values([]string{"a", "b"})
		assert.Empty(t, newPass().Validate(seq, strs, "it"))

		assert.Len(t, newPass().Validate(42, strs, "it"), 1)
	})

	t.Run("unparameterised", func(t *testing.T) {
		assert.Empty(t, newPass().Validate([]any{1, "a"}, descriptor.ListOf(nil), "xs"))
	})
}

func TestTuple_Fixed(t *testing.T) {
	d := descriptor.TupleOf(descriptor.Of[int](), descriptor.Of[string](), descriptor.Of[float64](), descriptor.Of[int]())

	assert.Empty(t, newPass().Validate(value.Tuple{1, "a", 1.0, 2}, d, "t"))

	got := newPass().Validate(value.Tuple{1, "a"}, d, "t")
	require.Len(t, got, 1)
	s := simpleOf(t, got[0])
	assert.Equal(t, CategoryLength, s.Category)
	assert.Equal(t, 4, s.Expected)
	assert.Equal(t, 2, s.Got)
}

func TestTuple_Variadic(t *testing.T) {
	d := descriptor.VariadicTuple(descriptor.Of[int]())

	assert.Empty(t, newPass().Validate(value.Tuple{1, 2, 3}, d, "t"))
	assert.Empty(t, newPass().Validate(value.Tuple{}, d, "t"))
	assert.Empty(t, newPass().Validate([3]int{1, 2, 3}, d, "t"))

	got := newPass().Validate(value.Tuple{1, "a", 3}, d, "t")
	require.Len(t, got, 1)
	assert.Equal(t, CategoryType, simpleOf(t, got[0]).Category)
}

func TestTuple_NotATuple(t *testing.T) {
	got := newPass().Validate([]int{1}, descriptor.TupleOf(descriptor.Of[int]()), "t")
	require.Len(t, got, 1)
	assert.Equal(t, "tuple", simpleOf(t, got[0]).Expected)
}

func TestMapping(t *testing.T) {
	d := descriptor.MapOf(descriptor.Of[string](), descriptor.Of[int]())

	assert.Empty(t, newPass().Validate(map[string]int{"a": 1}, d, "m"))
	assert.Empty(t, newPass().Validate(map[any]any{"a": 1}, d, "m"))

	got := newPass().Validate(map[int]string{1: "a"}, d, "m")
	require.Len(t, got, 1, "key and value violations are wrapped once")
	c := complexOf(t, got[0])
	assert.Equal(t, violation.And, c.Combination)

	var paths []string
	for _, child := range c.Children {
		paths = append(paths, simpleOf(t, child).Path)
	}
	assert.Contains(t, paths, "key in `m`")
	assert.Contains(t, paths, "value in `m`")
}

func TestMapping_NotAMap(t *testing.T) {
	got := newPass().Validate([]int{1}, descriptor.MapOf(nil, nil), "m")
	require.Len(t, got, 1)
	assert.Equal(t, "dict", simpleOf(t, got[0]).Expected)

	assert.Empty(t, newPass().Validate(map[int]int{}, descriptor.MapOf(nil, nil), "m"))
}

func TestMapping_DeterministicOrder(t *testing.T) {
	d := descriptor.MapOf(descriptor.Literal("x"), nil)
	m := map[int]bool{3: true, 1: true, 2: true}

	got := newPass().Validate(m, d, "m")
	require.Len(t, got, 1)
	c := complexOf(t, got[0])
	var order []string
	for _, child := range c.Children {
		order = append(order, fmt.Sprint(simpleOf(t, child).Got))
	}
	assert.Equal(t, []string{"1", "2", "3"}, order)
}

func TestRecord(t *testing.T) {
	d := descriptor.RecordOf(descriptor.Required("count", descriptor.Of[int]()))

	got := newPass().Validate(map[string]any{}, d, "p")
	require.Len(t, got, 1)
	s := simpleOf(t, got[0])
	assert.Equal(t, CategoryRecordKey, s.Category)
	assert.Equal(t, "count", s.Expected)
	assert.Nil(t, s.Got)

	got = newPass().Validate(map[string]any{"count": "x"}, d, "p")
	require.Len(t, got, 1)
	s = simpleOf(t, got[0])
	assert.Equal(t, CategoryType, s.Category)
	assert.Equal(t, "p.count", s.Path)

	assert.Empty(t, newPass().Validate(map[string]any{"count": 1}, d, "p"))
}

func TestRecord_MissingFieldsContinue(t *testing.T) {
	d := descriptor.RecordOf(
		descriptor.Required("a", descriptor.Of[int]()),
		descriptor.Required("b", descriptor.Of[int]()),
		descriptor.OptionalField("c", descriptor.Of[int]()),
	)
	got := newPass().Validate(map[string]any{}, d, "p")
	assert.Len(t, got, 2)
}

func TestRecord_NestedAndStruct(t *testing.T) {
	type inner struct {
		Count int `json:"count"`
	}
	type outer struct {
		Name  string
		Inner inner `json:"inner"`
		note  string
	}
	d := descriptor.RecordOf(
		descriptor.Required("Name", descriptor.Of[string]()),
		descriptor.Required("inner", descriptor.RecordOf(descriptor.Required("count", descriptor.Of[int]()))),
	)

	assert.Empty(t, newPass().Validate(outer{Name: "a", Inner: inner{Count: 1}, note: "x"}, d, "o"))
	assert.Empty(t, newPass().Validate(&outer{Name: "a"}, d, "o"))

	hidden := descriptor.RecordOf(descriptor.Required("note", descriptor.Of[string]()))
	assert.Len(t, newPass().Validate(outer{note: "x"}, hidden, "o"), 1, "unexported fields are not visible")

	nested := map[string]any{"Name": "a", "inner": map[string]any{"count": "x"}}
	got := newPass().Validate(nested, d, "o")
	require.Len(t, got, 1)
	assert.Equal(t, "o.inner.count", simpleOf(t, got[0]).Path)
}

func TestRecord_NotAMapping(t *testing.T) {
	got := newPass().Validate(42, descriptor.RecordOf(), "p")
	require.Len(t, got, 1)
	assert.Equal(t, "record", simpleOf(t, got[0]).Expected)

	assert.Len(t, newPass().Validate(map[int]any{}, descriptor.RecordOf(), "p"), 1)
}

type shape interface{ Area() float64 }

type square struct{ side float64 }

func (s square) Area() float64 { return s.side * s.side }

func TestTypeOf(t *testing.T) {
	intType := reflect.TypeFor[int]()

	t.Run("value must be a type", func(t *testing.T) {
		got := newPass().Validate(1, descriptor.TypeOfType(nil), "t")
		require.Len(t, got, 1)
		assert.Equal(t, CategoryType, simpleOf(t, got[0]).Category)
		assert.Empty(t, newPass().Validate(intType, descriptor.TypeOfType(nil), "t"))
	})

	t.Run("concrete", func(t *testing.T) {
		d := descriptor.TypeOfType(descriptor.Of[shape]())
		assert.Empty(t, newPass().Validate(reflect.TypeFor[square](), d, "t"))

		got := newPass().Validate(intType, d, "t")
		require.Len(t, got, 1)
		assert.Equal(t, CategoryArgument, simpleOf(t, got[0]).Category)
	})

	t.Run("union", func(t *testing.T) {
		d := descriptor.TypeOfType(descriptor.OneOf(descriptor.Of[int](), descriptor.Of[string]()))
		assert.Empty(t, newPass().Validate(reflect.TypeFor[string](), d, "t"))

		got := newPass().Validate(reflect.TypeFor[bool](), d, "t")
		require.Len(t, got, 1)
		assert.Len(t, complexOf(t, got[0]).Children, 2)
	})

	t.Run("typevar binds the type itself", func(t *testing.T) {
		tv := descriptor.NewTypeVar("T")
		p := newPass()
		assert.Empty(t, p.Validate(intType, descriptor.TypeOfType(tv), "cls"))
		assert.Empty(t, p.Validate(3, tv, "x"), "T is now int")
		assert.Len(t, p.Validate("a", tv, "y"), 1)
	})

	t.Run("typevar constraints apply on first occurrence", func(t *testing.T) {
		tv := descriptor.NewTypeVar("T", reflect.TypeFor[int](), reflect.TypeFor[string]())
		d := descriptor.TypeOfType(tv)

		assert.Empty(t, newPass().Validate(intType, d, "cls"))

		p := newPass()
		got := p.Validate(reflect.TypeFor[float64](), d, "cls")
		require.Len(t, got, 1)
		assert.Contains(t, got[0].Message(), "one of `[int, string]` (got `float64`)")
		assert.Empty(t, p.Validate(1, tv, "x"), "a rejected type leaves T unbound")
	})

	t.Run("typevar later occurrence", func(t *testing.T) {
		tv := descriptor.NewTypeVar("T")
		d := descriptor.TypeOfType(tv)
		p := newPass()
		assert.Empty(t, p.Validate(intType, d, "a"))
		got := p.Validate(reflect.TypeFor[string](), d, "b")
		require.Len(t, got, 1)
		assert.Equal(t, CategoryArgument, simpleOf(t, got[0]).Category)
	})

	t.Run("structural", func(t *testing.T) {
		d := descriptor.TypeOfType(descriptor.ListOf(descriptor.Of[int]()))
		assert.Empty(t, newPass().Validate(reflect.TypeFor[[]int](), d, "t"))
		assert.Len(t, newPass().Validate(reflect.TypeFor[[]string](), d, "t"), 1)
	})
}

func TestCallable(t *testing.T) {
	d := descriptor.CallableOf([]descriptor.Descriptor{descriptor.Of[int](), descriptor.Of[string]()}, descriptor.Of[bool]())

	t.Run("not callable", func(t *testing.T) {
		got := newPass().Validate(42, d, "fn")
		require.Len(t, got, 1)
		assert.Equal(t, "callable", simpleOf(t, got[0]).Expected)

		var nilFn func()
		assert.Len(t, newPass().Validate(nilFn, descriptor.AnyCallable(), "fn"), 1)
	})

	t.Run("any callable", func(t *testing.T) {
		assert.Empty(t, newPass().Validate(func() {}, descriptor.AnyCallable(), "fn"))
	})

	t.Run("matching signature", func(t *testing.T) {
		assert.Empty(t, newPass().Validate(func(int, string) bool { return true }, d, "fn"))
		assert.Empty(t, newPass().Validate(func(int, string) (bool, error) { return true, nil }, d, "fn"))
	})

	t.Run("mismatching positions", func(t *testing.T) {
		got := newPass().Validate(func(string, int) bool { return true }, d, "fn")
		require.Len(t, got, 2)
		assert.Equal(t, "1st argument's type in callable argument", simpleOf(t, got[0]).Category)
		assert.Equal(t, "2nd argument's type in callable argument", simpleOf(t, got[1]).Category)
	})

	t.Run("arity and return", func(t *testing.T) {
		got := newPass().Validate(func(int) int { return 0 }, d, "fn")
		require.Len(t, got, 2)
		assert.Equal(t, CategoryCallableLength, simpleOf(t, got[0]).Category)
		assert.Equal(t, CategoryCallableReturn, simpleOf(t, got[1]).Category)
	})

	t.Run("returns none", func(t *testing.T) {
		none := descriptor.CallableOf([]descriptor.Descriptor{descriptor.Of[int]()}, descriptor.None())
		assert.Empty(t, Check(func(int) {}, none, "cb"))
		assert.Empty(t, Check(func(int) error { return nil }, none, "cb"))

		got := Check(func(int) int { return 0 }, none, "cb")
		require.Len(t, got, 1)
		assert.Equal(t, CategoryCallableReturn, simpleOf(t, got[0]).Category)
	})

	t.Run("never invoked", func(t *testing.T) {
		called := false
		fn := func(int, string) bool { called = true; return false }
		newPass().Validate(fn, d, "fn")
		assert.False(t, called)
	})
}

func TestIdempotence(t *testing.T) {
	tv := descriptor.NewTypeVar("T")
	d := descriptor.MapOf(descriptor.Of[string](), descriptor.ListOf(tv))
	v := map[string][]int{"a": {1, 2}}

	reg := registry.New()
	p := New(subject, reg)
	require.Empty(t, p.Validate(v, d, "m"))
	before, _ := reg.Lookup(tv)

	require.Empty(t, p.Validate(v, d, "m"))
	after, _ := reg.Lookup(tv)
	assert.Equal(t, before, after)
	assert.Equal(t, 1, reg.Len())
}

func TestCheck(t *testing.T) {
	got := Check("x", descriptor.Of[int](), "input")
	require.Len(t, got, 1)
	assert.Equal(t, "typing violation in value `input`: expected type of argument `input` to be `int` (got `string`).", got[0].Message())
	assert.Empty(t, Check(1, descriptor.Of[int](), "input"))
}

func TestOrdinal(t *testing.T) {
	for n, want := range map[int]string{1: "1st", 2: "2nd", 3: "3rd", 4: "4th", 11: "11th", 12: "12th", 13: "13th", 21: "21st", 22: "22nd", 101: "101st", 111: "111th"} {
		assert.Equal(t, want, ordinal(n))
	}
}
