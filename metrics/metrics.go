// Package metrics implements the engine's observability recorder on top of
// Prometheus primitives. The caller owns the registry; nothing here starts
// an exposition endpoint.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/bulwarkhq/bulwark/core/engine"
)

const namespace = "bulwark"

// Metrics records engine activity into a Prometheus registry.
//
// Metrics:
//   - bulwark_checks_total: check executions by check, status, and failure reason
//   - bulwark_check_duration_seconds: per-check execution duration
//   - bulwark_decisions_total: final decisions by verdict and fallback tier
//   - bulwark_run_duration_seconds: end-to-end run duration by verdict
//   - bulwark_family_budget_exhausted_total: family budget exhaustions by family
//   - bulwark_fallback_transitions_total: degradation transitions by from, to, and reason
type Metrics struct {
	checksTotal     *prometheus.CounterVec
	checkDuration   *prometheus.HistogramVec
	decisionsTotal  *prometheus.CounterVec
	runDuration     *prometheus.HistogramVec
	familyExhausted *prometheus.CounterVec
	transitions     *prometheus.CounterVec
}

// Ensure Metrics implements engine.Recorder
var _ engine.Recorder = (*Metrics)(nil)

// New creates the engine metrics and registers them with the given
// registerer.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		checksTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "checks_total",
				Help:      "Total check executions by check, status, and failure reason",
			},
			[]string{"check", "status", "failure"},
		),

		checkDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "check_duration_seconds",
				Help:      "Duration of individual check executions in seconds",
				// Checks are expected to finish well inside one second.
				Buckets: prometheus.ExponentialBuckets(0.0001, 2, 14), // 100µs to ~1.6s
			},
			[]string{"check"},
		),

		decisionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "decisions_total",
				Help:      "Total final decisions by verdict and fallback tier",
			},
			[]string{"verdict", "fallback"},
		),

		runDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "run_duration_seconds",
				Help:      "Duration of complete policy runs in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.001, 2, 14), // 1ms to ~16s
			},
			[]string{"verdict"},
		),

		familyExhausted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "family_budget_exhausted_total",
				Help:      "Total family budget exhaustions by family",
			},
			[]string{"family"},
		),

		transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "fallback_transitions_total",
				Help:      "Total degradation transitions by origin, target, and reason",
			},
			[]string{"from", "to", "reason"},
		),
	}

	reg.MustRegister(
		m.checksTotal,
		m.checkDuration,
		m.decisionsTotal,
		m.runDuration,
		m.familyExhausted,
		m.transitions,
	)

	return m
}

// CheckEvaluated records one check execution.
func (m *Metrics) CheckEvaluated(checkID, status, failure string, elapsed time.Duration) {
	m.checksTotal.WithLabelValues(checkID, status, failure).Inc()
	m.checkDuration.WithLabelValues(checkID).Observe(elapsed.Seconds())
}

// FamilyExhausted records one family budget exhaustion.
func (m *Metrics) FamilyExhausted(family string) {
	m.familyExhausted.WithLabelValues(family).Inc()
}

// FallbackTransition records one degradation transition.
func (m *Metrics) FallbackTransition(from, to, reason string) {
	m.transitions.WithLabelValues(from, to, reason).Inc()
}

// RunCompleted records one finished run.
func (m *Metrics) RunCompleted(verdict, fallback string, elapsed time.Duration) {
	m.decisionsTotal.WithLabelValues(verdict, fallback).Inc()
	m.runDuration.WithLabelValues(verdict).Observe(elapsed.Seconds())
}
