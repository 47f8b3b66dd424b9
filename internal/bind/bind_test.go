package bind

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var params = []Param{
	{Name: "a"},
	{Name: "b"},
	{Name: "c", Default: 3, HasDefault: true},
}

func TestBind(t *testing.T) {
	tests := []struct {
		name    string
		args    Args
		want    Bound
		missing []string
	}{
		{
			name: "positional with default",
			args: Args{Positional: []any{1, 2}},
			want: Bound{"a": 1, "b": 2, "c": 3},
		},
		{
			name: "keyword overrides positional",
			args: Args{Positional: []any{1, 2}, Keyword: map[string]any{"a": 10}},
			want: Bound{"a": 10, "b": 2, "c": 3},
		},
		{
			name: "keyword fills gap and overrides default",
			args: Args{Positional: []any{1}, Keyword: map[string]any{"b": 2, "c": nil}},
			want: Bound{"a": 1, "b": 2, "c": nil},
		},
		{
			name:    "missing required",
			args:    Args{Keyword: map[string]any{"b": 2}},
			want:    Bound{"b": 2, "c": 3},
			missing: []string{"a"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Bind(params, tt.args)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.missing, Missing(params, got))
		})
	}
}

func TestBind_TooMany(t *testing.T) {
	_, err := Bind(params, Args{Positional: []any{1, 2, 3, 4}})
	assert.ErrorIs(t, err, ErrTooManyArguments)
}

func TestBind_Unexpected(t *testing.T) {
	_, err := Bind(params, Args{Keyword: map[string]any{"z": 1, "y": 2}})
	require.ErrorIs(t, err, ErrUnexpectedArgument)
	assert.Contains(t, err.Error(), "y, z")
}

func TestBind_Variadic(t *testing.T) {
	ps := []Param{{Name: "sep"}, {Name: "parts", Variadic: true}}

	got, err := Bind(ps, Args{Positional: []any{",", "a", "b"}})
	require.NoError(t, err)
	assert.Equal(t, Bound{"sep": ",", "parts": []any{"a", "b"}}, got)

	got, err = Bind(ps, Args{Positional: []any{","}})
	require.NoError(t, err)
	assert.Equal(t, []any{}, got["parts"])

	// Required parameters supplied by keyword leave the variadic one empty.
	got, err = Bind(ps, Args{Keyword: map[string]any{"sep": ","}})
	require.NoError(t, err)
	assert.Equal(t, Bound{"sep": ",", "parts": []any{}}, got)
	assert.Empty(t, Missing(ps, got))

	got, err = Bind(ps, Args{})
	require.NoError(t, err)
	assert.Equal(t, []string{"sep"}, Missing(ps, got), "only the variadic parameter may be omitted")
}
