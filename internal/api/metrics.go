package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Document outcomes recorded by the analyze endpoint.
const (
	outcomeOK               = "ok"
	outcomeEmpty            = "empty"
	outcomeExtractionFailed = "extraction_failed"
	outcomeDecryptionFailed = "decryption_failed"
	outcomeBadRequest       = "bad_request"
	outcomeInternal         = "internal_error"
)

// Metrics are the Prometheus collectors of the HTTP surface.
type Metrics struct {
	documents    *prometheus.CounterVec
	transactions *prometheus.CounterVec
	dropped      prometheus.Counter
	duration     prometheus.Histogram
}

// NewMetrics registers the collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		documents: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "statement",
			Name:      "documents_total",
			Help:      "Statements submitted for analysis, by outcome.",
		}, []string{"outcome"}),
		transactions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "statement",
			Name:      "transactions_total",
			Help:      "Transactions parsed, by bank and strategy.",
		}, []string{"bank", "strategy"}),
		dropped: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "statement",
			Name:      "dropped_entries_total",
			Help:      "Segmented entries rejected by the extraction strategy.",
		}),
		duration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "statement",
			Name:      "analyze_duration_seconds",
			Help:      "Time spent analyzing one statement.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
		}),
	}
}
