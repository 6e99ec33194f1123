package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the review module.
// Tracks decisions by outcome, bulk batch sizes and service durations.
type Metrics struct {
	DecisionsRecorded    *prometheus.CounterVec
	DecisionsRejected    *prometheus.CounterVec
	BulkBatchSize        prometheus.Histogram
	DecisionsScoped      prometheus.Counter
	MakeDecisionDuration prometheus.Histogram
}

// New registers the review metrics on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		DecisionsRecorded: f.NewCounterVec(prometheus.CounterOpts{
			Name: "stackwise_decisions_recorded_total",
			Help: "Decisions recorded, by resulting state",
		}, []string{"decision"}),
		DecisionsRejected: f.NewCounterVec(prometheus.CounterOpts{
			Name: "stackwise_decisions_rejected_total",
			Help: "Decision attempts that were refused, by reason",
		}, []string{"reason"}),
		BulkBatchSize: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "stackwise_bulk_decision_batch_size",
			Help:    "Number of decision ids submitted per bulk request",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500},
		}),
		DecisionsScoped: f.NewCounter(prometheus.CounterOpts{
			Name: "stackwise_decisions_scoped_total",
			Help: "Pending decisions inserted by campaign scoping",
		}),
		MakeDecisionDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "stackwise_make_decision_duration_seconds",
			Help:    "Duration of MakeDecision operations",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

func (m *Metrics) IncrementDecision(state string) {
	m.DecisionsRecorded.WithLabelValues(state).Inc()
}

func (m *Metrics) IncrementRejected(reason string) {
	m.DecisionsRejected.WithLabelValues(reason).Inc()
}

func (m *Metrics) ObserveBulkSize(n int) {
	m.BulkBatchSize.Observe(float64(n))
}

func (m *Metrics) AddScoped(n int) {
	m.DecisionsScoped.Add(float64(n))
}

// ObserveMakeDecision records the duration of a MakeDecision call.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveMakeDecision(start time.Time) {
	m.MakeDecisionDuration.Observe(time.Since(start).Seconds())
}
