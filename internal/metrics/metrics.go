// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Catalog lookup results.
const (
	LookupHit         = "hit"
	LookupFetched     = "fetched"
	LookupRaced       = "raced"
	LookupMiss        = "miss"
	LookupUnavailable = "unavailable"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by method, route and status.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 10},
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInProgress = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_progress",
			Help: "HTTP requests currently being served.",
		},
	)

	// CatalogLookupsTotal counts catalog cache resolutions by result.
	CatalogLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_lookups_total",
			Help: "Book resolutions against the local catalog by result.",
		},
		[]string{"result"},
	)

	// ReviewOperationsTotal counts review workflow calls by operation and outcome.
	ReviewOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "review_operations_total",
			Help: "Review operations by operation and outcome.",
		},
		[]string{"operation", "outcome"},
	)
)

func ObserveCatalogLookup(result string) {
	CatalogLookupsTotal.WithLabelValues(result).Inc()
}

// ObserveReviewOperation records op with outcome "ok" or "error".
func ObserveReviewOperation(op string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	ReviewOperationsTotal.WithLabelValues(op, outcome).Inc()
}
