package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_RecordTransport(t *testing.T) {
	m, err := New(prometheus.NewRegistry())
	require.NoError(t, err)

	m.RecordTransport(OutcomeOK)
	m.RecordTransport(OutcomeOK)
	m.RecordTransport(OutcomeUnexpected)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.transportRequests.WithLabelValues(OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.transportRequests.WithLabelValues(OutcomeUnexpected)))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.transportRequests.WithLabelValues(OutcomeError)))
}

func TestMetrics_RecordLoad(t *testing.T) {
	m, err := New(prometheus.NewRegistry())
	require.NoError(t, err)

	m.RecordLoad(ResultSuccess, 10*time.Millisecond)
	m.RecordLoad(ResultInvalidData, 20*time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.loadResults.WithLabelValues(ResultSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.loadResults.WithLabelValues(ResultInvalidData)))
	assert.Equal(t, 1, testutil.CollectAndCount(m.loadDuration))
}

func TestMetrics_DoubleRegistrationFails(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := New(reg)
	require.NoError(t, err)

	_, err = New(reg)
	assert.Error(t, err)
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordTransport(OutcomeOK)
		m.RecordLoad(ResultSuccess, time.Second)
	})
}
