package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetricsCounters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.IncrementDecision("approved")
	m.IncrementDecision("approved")
	m.IncrementDecision("revoked")
	m.IncrementRejected("terminal")
	m.AddScoped(3)
	m.ObserveBulkSize(4)
	m.ObserveMakeDecision(time.Now())

	assert.Equal(t, 2.0, promtestutil.ToFloat64(m.DecisionsRecorded.WithLabelValues("approved")))
	assert.Equal(t, 1.0, promtestutil.ToFloat64(m.DecisionsRecorded.WithLabelValues("revoked")))
	assert.Equal(t, 1.0, promtestutil.ToFloat64(m.DecisionsRejected.WithLabelValues("terminal")))
	assert.Equal(t, 3.0, promtestutil.ToFloat64(m.DecisionsScoped))
}

func TestNewOnSeparateRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		New(prometheus.NewRegistry())
		New(prometheus.NewRegistry())
	})
}
