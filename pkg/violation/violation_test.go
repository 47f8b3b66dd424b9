package violation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"reflect"
	"strings"
	"testing"

	"github.com/aretw0/typeguard/pkg/descriptor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fn = Subject{Kind: "function", Name: "return_int"}

func simple(path string, expected, got any) *Simple {
	return &Simple{Subject: fn, Category: "type of argument", Path: path, Expected: expected, Got: got}
}

func TestSimple_Message(t *testing.T) {
	v := simple("x", reflect.TypeFor[int](), reflect.TypeFor[string]())
	assert.Equal(t,
		"typing violation in function `return_int`: expected type of argument `x` to be `int` (got `string`).",
		v.Message())
}

func TestSimple_MessageWithoutCategory(t *testing.T) {
	v := &Simple{Subject: fn, Path: "x", Expected: "a", Got: "b"}
	assert.Equal(t, "typing violation in function `return_int`: expected `x` to be `a` (got `b`).", v.Message())
}

func TestSimple_MessageOneOf(t *testing.T) {
	v := &Simple{
		Subject:  fn,
		Category: "value of argument",
		Path:     "color",
		Expected: descriptor.Literal("red", "green").Values(),
		Got:      "blue",
	}
	assert.Equal(t,
		"typing violation in function `return_int`: expected value of argument `color` to be one of `[\"red\", \"green\"]` (got `blue`).",
		v.Message())
}

func TestSimple_MessageNone(t *testing.T) {
	v := &Simple{Subject: fn, Category: "key in record", Path: "p", Expected: "count", Got: nil}
	assert.Contains(t, v.Message(), "to be `count` (got `none`)")
}

func TestComplex_OrConsolidates(t *testing.T) {
	v := &Complex{
		Combination: Or,
		Children: []Violation{
			simple("x", reflect.TypeFor[int](), reflect.TypeFor[float64]()),
			simple("x", reflect.TypeFor[string](), reflect.TypeFor[float64]()),
		},
	}
	assert.Equal(t,
		"typing violation in function `return_int`: expected type of argument `x` to be one of [`int`, `string`] (got `float64`).",
		v.Message())
}

func TestComplex_AndLists(t *testing.T) {
	a := simple("key in `m`", reflect.TypeFor[string](), reflect.TypeFor[int]())
	b := simple("value in `m`", reflect.TypeFor[int](), reflect.TypeFor[string]())
	v := &Complex{Combination: And, Children: []Violation{a, b}}

	assert.Equal(t, "typing violation:\n\t"+a.Message()+"\n\t"+b.Message(), v.Message())
}

func TestComplex_OrFallsBackWhenPathsDiffer(t *testing.T) {
	v := &Complex{
		Combination: Or,
		Children: []Violation{
			simple("x", reflect.TypeFor[int](), reflect.TypeFor[float64]()),
			simple("x.y", reflect.TypeFor[int](), reflect.TypeFor[float64]()),
		},
	}
	assert.True(t, strings.HasPrefix(v.Message(), "typing violation:\n\t"))
}

func TestComplex_NestedIndent(t *testing.T) {
	inner := &Complex{Combination: And, Children: []Violation{simple("a", "x", "y"), simple("b", "x", "y")}}
	outer := &Complex{Combination: And, Children: []Violation{inner}}
	assert.Contains(t, outer.Message(), "\n\ttyping violation:\n\t\ttyping violation in")
}

func TestAdd(t *testing.T) {
	a := simple("a", "x", "y")
	b := simple("b", "x", "y")
	c := simple("c", "x", "y")

	assert.Same(t, a, Add(a, nil))
	assert.Same(t, a, Add(nil, a))

	ab, ok := Add(a, b).(*Complex)
	require.True(t, ok)
	assert.Equal(t, []Violation{a, b}, ab.Children)
	assert.Equal(t, And, ab.Combination)

	or := &Complex{Combination: Or, Children: []Violation{b}}
	got, ok := Add(a, or).(*Complex)
	require.True(t, ok)
	assert.Equal(t, []Violation{b, a}, got.Children, "simple + complex appends the simple")
	assert.Equal(t, Or, got.Combination)

	got, ok = Add(ab, c).(*Complex)
	require.True(t, ok)
	assert.Equal(t, []Violation{a, b, c}, got.Children)

	got, ok = Add(ab, or).(*Complex)
	require.True(t, ok)
	assert.Equal(t, []Violation{a, b, b}, got.Children)
	assert.Len(t, ab.Children, 2, "operands are not mutated")
}

func TestSum(t *testing.T) {
	assert.Nil(t, Sum())
	a := simple("a", "x", "y")
	assert.Same(t, a, Sum(a))
	total, ok := Sum(a, a, a).(*Complex)
	require.True(t, ok)
	assert.Len(t, total.Children, 3)
}

func TestParseMode(t *testing.T) {
	for in, want := range map[string]Mode{"": ModeRaise, "raise": ModeRaise, " WARN ": ModeWarn, "return": ModeReturn} {
		got, err := ParseMode(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := ParseMode("explode")
	assert.ErrorIs(t, err, ErrInvalidMode)
}

func TestHandler_Raise(t *testing.T) {
	v := simple("x", "int", "string")
	err := Handler{Mode: ModeRaise}.Handle(context.Background(), v)

	var typed *Error
	require.True(t, errors.As(err, &typed))
	assert.ErrorIs(t, err, ErrTypingViolation)
	assert.Equal(t, v.Message(), err.Error())
	assert.Equal(t, []Violation{v}, typed.Violations)
}

func TestHandler_HandleAllJoins(t *testing.T) {
	a := simple("x", "int", "string")
	b := simple("y", "int", "string")
	err := Handler{Mode: ModeRaise}.HandleAll(context.Background(), []Violation{a, b})
	require.Error(t, err)
	assert.Equal(t, "\n    + "+a.Message()+"\n    + "+b.Message(), err.Error())

	assert.NoError(t, Handler{Mode: ModeRaise}.HandleAll(context.Background(), nil))
}

func TestHandler_Warn(t *testing.T) {
	var got []string
	h := Handler{Mode: ModeWarn, Warner: WarnFunc(func(_ context.Context, msg string, _ []Violation) {
		got = append(got, msg)
	})}

	assert.NoError(t, h.Handle(context.Background(), simple("x", "int", "string")))
	assert.Len(t, got, 1)
}

func TestHandler_Return(t *testing.T) {
	assert.NoError(t, Handler{Mode: ModeReturn}.Handle(context.Background(), simple("x", "int", "string")))
}

func TestLogWarner(t *testing.T) {
	var buf bytes.Buffer
	w := LogWarner(slog.New(slog.NewTextHandler(&buf, nil)))
	w.Warn(context.Background(), "boom", nil)

	assert.Contains(t, buf.String(), "level=WARN")
	assert.Contains(t, buf.String(), "message=boom")
}

func TestReport(t *testing.T) {
	or := &Complex{Combination: Or, Children: []Violation{simple("x", "int", "float64"), simple("x", "string", "float64")}}
	r := NewReport(fn, ModeReturn, []Violation{simple("y", "int", "string"), or})

	assert.NotEmpty(t, r.ID)
	assert.False(t, r.OK())
	require.Len(t, r.Violations, 2)
	assert.Equal(t, "type of argument", r.Violations[0].Label)
	assert.Equal(t, "union", r.Violations[1].Label)
	assert.Len(t, r.Violations[1].Children, 2)

	data, err := json.Marshal(r)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"combination":"or"`)
}
