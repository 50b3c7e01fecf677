package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Transport outcomes.
const (
	OutcomeOK         = "ok"
	OutcomeError      = "error"
	OutcomeUnexpected = "unexpected"
)

// Load results.
const (
	ResultSuccess      = "success"
	ResultConnectivity = "connectivity"
	ResultInvalidData  = "invalid_data"
)

// Metrics holds the collectors for the HTTP transport and feed loads.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	transportRequests *prometheus.CounterVec
	loadResults       *prometheus.CounterVec
	loadDuration      prometheus.Histogram
}

// New creates the collectors and registers them with reg. A nil reg uses
// prometheus.DefaultRegisterer.
func New(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		transportRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "feedloader_transport_requests_total",
			Help: "The total number of HTTP transport requests by outcome",
		}, []string{"outcome"}),
		loadResults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "feedloader_load_results_total",
			Help: "The total number of feed loads by result",
		}, []string{"result"}),
		loadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "feedloader_load_duration_seconds",
			Help:    "Time from issuing a feed load to its completion",
			Buckets: prometheus.DefBuckets,
		}),
	}
	for _, c := range []prometheus.Collector{m.transportRequests, m.loadResults, m.loadDuration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) RecordTransport(outcome string) {
	if m == nil {
		return
	}
	m.transportRequests.WithLabelValues(outcome).Inc()
}

func (m *Metrics) RecordLoad(result string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.loadResults.WithLabelValues(result).Inc()
	m.loadDuration.Observe(elapsed.Seconds())
}
