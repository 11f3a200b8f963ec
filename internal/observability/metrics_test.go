package observability

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_RecordsCounters(t *testing.T) {
	m := NewMetrics()
	m.RecordRequest("/registration", "POST", 201, 15*time.Millisecond)
	m.RecordRequest("/registration", "POST", 201, 20*time.Millisecond)
	m.RecordError("/registration", "POST", "DUPLICATE_EMAIL")
	m.RecordEvent("registration.created")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requestCount.WithLabelValues("/registration", "POST", "201")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.errorCount.WithLabelValues("/registration", "POST", "DUPLICATE_EMAIL")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.eventCount.WithLabelValues("registration.created")))

	families, err := m.Registry().Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordRequest("/x", "GET", 200, time.Millisecond)
		m.RecordError("/x", "GET", "NOT_FOUND")
		m.RecordEvent("registration.deleted")
	})
}
