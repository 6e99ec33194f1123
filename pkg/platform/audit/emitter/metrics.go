package emitter

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics for audit emission. Failure, drop and
// breaker series are labelled by sink.
type Metrics struct {
	Emitted      *prometheus.CounterVec
	Failures     *prometheus.CounterVec
	Dropped      *prometheus.CounterVec
	Rejected     prometheus.Counter
	BreakerState *prometheus.GaugeVec
}

// NewMetrics registers audit emission metrics on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Emitted: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "stackwise_audit_events_emitted_total",
			Help: "Audit events appended to at least one sink, by action",
		}, []string{"action"}),
		Failures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "stackwise_audit_emit_failures_total",
			Help: "Audit appends that failed and were discarded, by sink",
		}, []string{"sink"}),
		Dropped: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "stackwise_audit_events_dropped_total",
			Help: "Audit events skipped for a sink because its circuit was open",
		}, []string{"sink"}),
		Rejected: factory.NewCounter(prometheus.CounterOpts{
			Name: "stackwise_audit_events_rejected_total",
			Help: "Audit events refused because their action is unknown",
		}),
		BreakerState: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "stackwise_audit_circuit_open",
			Help: "Audit sink circuit state (0=closed, 1=open)",
		}, []string{"sink"}),
	}
}

func (m *Metrics) incEmitted(action string) {
	if m != nil {
		m.Emitted.WithLabelValues(action).Inc()
	}
}

func (m *Metrics) incFailures(sink string) {
	if m != nil {
		m.Failures.WithLabelValues(sink).Inc()
	}
}

func (m *Metrics) incDropped(sink string) {
	if m != nil {
		m.Dropped.WithLabelValues(sink).Inc()
	}
}

func (m *Metrics) incRejected() {
	if m != nil {
		m.Rejected.Inc()
	}
}

func (m *Metrics) setBreakerOpen(sink string, open bool) {
	if m == nil {
		return
	}
	if open {
		m.BreakerState.WithLabelValues(sink).Set(1)
	} else {
		m.BreakerState.WithLabelValues(sink).Set(0)
	}
}
