package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Search pipeline metrics.
var (
	SearchChannelHits = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "search_channel_hits",
			Help:      "Candidates returned per retrieval channel",
			Buckets:   []float64{0, 1, 5, 10, 25, 50, 100},
		},
		[]string{"channel"},
	)

	SearchChannelErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "search_channel_errors_total",
			Help:      "Retrieval channel failures",
		},
		[]string{"channel"},
	)

	SearchStageDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "search_stage_duration_seconds",
			Help:      "Duration of each search pipeline stage in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"stage"},
	)
)

var registerSearch sync.Once

// RegisterSearchMetrics registers the search metrics. Safe to call repeatedly.
func RegisterSearchMetrics() {
	registerSearch.Do(func() {
		prometheus.MustRegister(SearchChannelHits, SearchChannelErrorsTotal, SearchStageDuration)
	})
}
