package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Query parser metrics.
var (
	ParserRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "parser_requests_total",
			Help:      "Total number of query parser completions",
		},
		[]string{"model", "status"},
	)

	ParserRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "parser_request_duration_seconds",
			Help:      "Query parser completion duration in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20},
		},
		[]string{"model"},
	)

	ParserTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "parser_tokens_total",
			Help:      "Total completion tokens consumed by the query parser",
		},
		[]string{"model", "type"},
	)
)

var registerParser sync.Once

// RegisterParserMetrics registers the parser metrics. Safe to call repeatedly.
func RegisterParserMetrics() {
	registerParser.Do(func() {
		prometheus.MustRegister(ParserRequestsTotal, ParserRequestDuration, ParserTokensTotal)
	})
}
