/*
Package observability exposes the engine's execution signals as prometheus
metrics. The collectors plug into the engine through LifecycleHooks, so they
see snapshots only and cannot influence a run.
*/
package observability

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/aretw0/hobnob/pkg/domain"
)

// Metrics bundles the engine's prometheus collectors.
type Metrics struct {
	StepsTotal   *prometheus.CounterVec
	StepDuration *prometheus.HistogramVec
	RunsTotal    *prometheus.CounterVec
}

// New creates the collectors and registers them with reg. Pass
// prometheus.DefaultRegisterer for the process-wide registry.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		StepsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hobnob_steps_total",
				Help: "Total number of step executions",
			},
			[]string{"step", "kind"},
		),
		StepDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "hobnob_step_duration_seconds",
				Help: "Duration of step executions",
			},
			[]string{"step"},
		),
		RunsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hobnob_runs_total",
				Help: "Total number of runs by outcome",
			},
			[]string{"outcome"},
		),
	}
	reg.MustRegister(m.StepsTotal, m.StepDuration, m.RunsTotal)
	return m
}

// Hooks returns lifecycle hooks that record step metrics.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStepEnd: func(_ context.Context, e *domain.StepEvent) {
			m.StepsTotal.WithLabelValues(e.Step, e.Kind).Inc()
			m.StepDuration.WithLabelValues(e.Step).Observe(e.Took.Seconds())
		},
	}
}

// ObserveRun records a finished run's outcome.
func (m *Metrics) ObserveRun(res domain.Result) {
	m.RunsTotal.WithLabelValues(string(res.Outcome)).Inc()
}
