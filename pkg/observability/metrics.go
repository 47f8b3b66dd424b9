package observability

import (
	"context"
	"errors"

	"github.com/aretw0/typeguard"
	"github.com/aretw0/typeguard/pkg/violation"
	"github.com/prometheus/client_golang/prometheus"
)

// Outcome label values.
const (
	OutcomePass = "pass"
	OutcomeFail = "fail"
	OutcomeErr  = "error"
)

// Metrics records prometheus metrics for validation passes.
type Metrics struct {
	Passes     *prometheus.CounterVec
	Violations *prometheus.CounterVec
	Duration   *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg. A nil reg
// leaves them unregistered. Collectors already registered under the same
// names are reused.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		Passes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "typeguard_passes_total",
				Help: "Total number of validation passes",
			},
			[]string{"subject", "mode", "outcome"},
		),
		Violations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "typeguard_violations_total",
				Help: "Total number of recorded violations",
			},
			[]string{"subject", "label"},
		),
		Duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "typeguard_pass_duration_seconds",
				Help:    "Duration of validation passes, including the wrapped call",
				Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
			},
			[]string{"subject"},
		),
	}
	if reg == nil {
		return m, nil
	}

	var err error
	m.Passes, err = register(reg, m.Passes)
	if err != nil {
		return nil, err
	}
	m.Violations, err = register(reg, m.Violations)
	if err != nil {
		return nil, err
	}
	m.Duration, err = register(reg, m.Duration)
	if err != nil {
		return nil, err
	}
	return m, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// Hooks returns hooks that update the collectors.
func (m *Metrics) Hooks() typeguard.Hooks {
	return typeguard.Hooks{
		OnViolation: func(_ context.Context, e *typeguard.ViolationEvent) {
			m.Violations.WithLabelValues(e.Subject.Name, violation.Label(e.Violation)).Inc()
		},
		OnPassEnd: func(_ context.Context, e *typeguard.PassEvent) {
			m.Passes.WithLabelValues(e.Subject.Name, string(e.Mode), Outcome(e)).Inc()
			m.Duration.WithLabelValues(e.Subject.Name).Observe(e.Duration.Seconds())
		},
	}
}

// Outcome classifies a finished pass: error when the call failed for a
// reason other than a violation, fail when violations were recorded, and pass
// otherwise.
func Outcome(e *typeguard.PassEvent) string {
	if e.Err != nil && !errors.Is(e.Err, violation.ErrTypingViolation) {
		return OutcomeErr
	}
	if len(e.Violations) > 0 {
		return OutcomeFail
	}
	return OutcomePass
}
