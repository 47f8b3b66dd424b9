package observability_test

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/aretw0/typeguard"
	"github.com/aretw0/typeguard/pkg/adapters/memory"
	"github.com/aretw0/typeguard/pkg/descriptor"
	"github.com/aretw0/typeguard/pkg/observability"
	"github.com/aretw0/typeguard/pkg/violation"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func square(t *testing.T, opts ...typeguard.Option) *typeguard.Func {
	t.Helper()
	fn, err := typeguard.New("square", func(x any) any { return x }, typeguard.Signature{
		Params: []typeguard.Param{{Name: "x", Type: descriptor.Of[int]()}},
	}, opts...)
	require.NoError(t, err)
	return fn
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := observability.NewMetrics(reg)
	require.NoError(t, err)

	fn := square(t, typeguard.WithMode(violation.ModeReturn), typeguard.WithHooks(m.Hooks()))
	ctx := context.Background()

	_, err = fn.Call(ctx, 2)
	require.NoError(t, err)
	_, err = fn.Call(ctx, "x")
	require.NoError(t, err)
	_, err = fn.Call(ctx, 3.5)
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Passes.WithLabelValues("square", "return", observability.OutcomePass)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Passes.WithLabelValues("square", "return", observability.OutcomeFail)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Violations.WithLabelValues("square", "type of argument")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.Duration))
}

func TestMetrics_ReRegister(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := observability.NewMetrics(reg)
	require.NoError(t, err)
	second, err := observability.NewMetrics(reg)
	require.NoError(t, err)

	first.Passes.WithLabelValues("f", "raise", observability.OutcomePass).Inc()
	assert.Equal(t, 1.0, testutil.ToFloat64(second.Passes.WithLabelValues("f", "raise", observability.OutcomePass)))
}

func TestOutcome(t *testing.T) {
	fn := square(t)
	_, err := fn.Call(context.Background(), "x")
	require.Error(t, err)

	tests := []struct {
		name  string
		event typeguard.PassEvent
		want  string
	}{
		{"clean", typeguard.PassEvent{}, observability.OutcomePass},
		{"violations", typeguard.PassEvent{Violations: make([]violation.Violation, 1)}, observability.OutcomeFail},
		{"raised", typeguard.PassEvent{Violations: make([]violation.Violation, 1), Err: err}, observability.OutcomeFail},
		{"call error", typeguard.PassEvent{Err: assert.AnError}, observability.OutcomeErr},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, observability.Outcome(&tt.event))
		})
	}
}

func TestLogHooks(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	fn := square(t, typeguard.WithMode(violation.ModeReturn), typeguard.WithHooks(observability.LogHooks(logger)))

	_, err := fn.Call(context.Background(), 1)
	require.NoError(t, err)
	_, err = fn.Call(context.Background(), "x")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "level=INFO")
	assert.Contains(t, lines[1], "level=WARN")
	assert.Contains(t, lines[1], "violations=1")
}

func TestSinkHooks(t *testing.T) {
	sink := memory.NewSink()
	fn := square(t, typeguard.WithMode(violation.ModeReturn), typeguard.WithHooks(observability.SinkHooks(sink, nil)))
	ctx := context.Background()

	_, err := fn.Call(ctx, 1)
	require.NoError(t, err)
	_, err = fn.Call(ctx, "x")
	require.NoError(t, err)

	reports, err := sink.Recent(ctx, 0)
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, "square", reports[0].Subject.Name)
	assert.Equal(t, violation.ModeReturn, reports[0].Mode)
}
