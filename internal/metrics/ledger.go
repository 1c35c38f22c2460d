package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	horizonRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "starquik",
			Subsystem: "horizon",
			Name:      "requests_total",
			Help:      "Total number of Horizon calls by method and outcome",
		},
		[]string{"method", "outcome"}, // ok, error
	)

	horizonRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "starquik",
			Subsystem: "horizon",
			Name:      "request_duration_seconds",
			Help:      "Latency of Horizon calls",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	intentsBuiltTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "starquik",
			Subsystem: "builder",
			Name:      "intents_total",
			Help:      "Total number of unsigned transaction intents built",
		},
		[]string{"operation", "status"}, // success, error kind
	)

	submissionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "starquik",
			Subsystem: "gateway",
			Name:      "submissions_total",
			Help:      "Total number of signed envelopes forwarded, by transaction result code",
		},
		[]string{"result"},
	)
)

// LedgerMetrics records Horizon traffic and the outcome of builds and submissions.
// A nil *LedgerMetrics is valid and records nothing.
type LedgerMetrics struct{}

func NewLedgerMetrics() *LedgerMetrics {
	return &LedgerMetrics{}
}

// ObserveHorizon records one upstream call.
func (m *LedgerMetrics) ObserveHorizon(method string, started time.Time, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	horizonRequestsTotal.WithLabelValues(method, outcome).Inc()
	horizonRequestDuration.WithLabelValues(method).Observe(time.Since(started).Seconds())
}

// RecordIntent records one build attempt; status is "success" or an error kind.
func (m *LedgerMetrics) RecordIntent(operation, status string) {
	if m == nil {
		return
	}
	intentsBuiltTotal.WithLabelValues(operation, status).Inc()
}

// RecordSubmission records the transaction result code of one submission.
func (m *LedgerMetrics) RecordSubmission(result string) {
	if m == nil {
		return
	}
	if result == "" {
		result = "unknown"
	}
	submissionsTotal.WithLabelValues(result).Inc()
}
