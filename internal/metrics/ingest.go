package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Catalog import metrics.
var (
	// IngestProductsTotal counts imported products by outcome: ok, no_vector or error.
	IngestProductsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "ingest_products_total",
			Help:      "Products processed by catalog import, by outcome",
		},
		[]string{"status"},
	)

	IngestChunkDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "ingest_chunk_duration_seconds",
			Help:      "Time to embed and write one import chunk",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 10),
		},
	)
)

var registerIngest sync.Once

// RegisterIngestMetrics registers the catalog import metrics. Safe to call more than once.
func RegisterIngestMetrics() {
	registerIngest.Do(func() {
		prometheus.MustRegister(IngestProductsTotal, IngestChunkDuration)
	})
}
