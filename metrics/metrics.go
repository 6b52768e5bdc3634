// Package metrics provides Prometheus metrics for the console auth core.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for auth operations.
type Metrics struct {
	enabled bool

	// Login metrics
	loginsTotal        prometheus.Counter
	loginFailuresTotal *prometheus.CounterVec

	// Guard decision metrics
	decisionsTotal   *prometheus.CounterVec
	decisionDuration prometheus.Histogram

	// Session store metrics
	storeFailuresTotal *prometheus.CounterVec
	restoresTotal      *prometheus.CounterVec
}

// New creates and registers Prometheus metrics.
// If enabled is false, returns a no-op Metrics instance.
func New(enabled bool) *Metrics {
	m := &Metrics{enabled: enabled}

	if !enabled {
		return m
	}

	m.loginsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "consoleauth_logins_total",
		Help: "Total successful logins",
	})

	m.loginFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "consoleauth_login_failures_total",
		Help: "Total failed logins",
	}, []string{"reason"})

	m.decisionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "consoleauth_decisions_total",
		Help: "Total route guard decisions",
	}, []string{"outcome"})

	m.decisionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "consoleauth_decision_duration_seconds",
		Help:    "Route guard decision duration in seconds",
		Buckets: prometheus.DefBuckets,
	})

	m.storeFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "consoleauth_store_failures_total",
		Help: "Total session store failures",
	}, []string{"op"})

	m.restoresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "consoleauth_session_restores_total",
		Help: "Total session restore attempts",
	}, []string{"result"})

	return m
}

// RecordLogin records a successful login.
func (m *Metrics) RecordLogin() {
	if !m.enabled {
		return
	}
	m.loginsTotal.Inc()
}

// RecordLoginFailure records a failed login with its reason
// ("credentials", "transport", "inflight").
func (m *Metrics) RecordLoginFailure(reason string) {
	if !m.enabled {
		return
	}
	m.loginFailuresTotal.WithLabelValues(reason).Inc()
}

// RecordDecision records a route guard decision outcome.
func (m *Metrics) RecordDecision(outcome string, durationSeconds float64) {
	if !m.enabled {
		return
	}
	m.decisionsTotal.WithLabelValues(outcome).Inc()
	m.decisionDuration.Observe(durationSeconds)
}

// RecordStoreFailure records a session store failure by operation.
func (m *Metrics) RecordStoreFailure(op string) {
	if !m.enabled {
		return
	}
	m.storeFailuresTotal.WithLabelValues(op).Inc()
}

// RecordRestore records a session restore attempt
// ("hit", "miss", "error").
func (m *Metrics) RecordRestore(result string) {
	if !m.enabled {
		return
	}
	m.restoresTotal.WithLabelValues(result).Inc()
}
