package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Catalog Prometheus metrics.
var (
	OperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "aroundegypt",
			Name:      "catalog_operations_total",
			Help:      "Catalog operations by source (online/offline) and outcome",
		},
		[]string{"operation", "source", "outcome"},
	)

	OperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "aroundegypt",
			Name:      "catalog_operation_duration_seconds",
			Help:      "Catalog operation duration in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"operation", "source"},
	)

	CacheWriteErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "aroundegypt",
			Name:      "cache_write_errors_total",
			Help:      "Swallowed cache write failures",
		},
		[]string{"partition"},
	)

	Connected = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "aroundegypt",
			Name:      "connected",
			Help:      "1 when the last connectivity probe reached the API",
		},
	)

	OperationsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "aroundegypt",
			Name:      "catalog_operations_in_flight",
			Help:      "Catalog operations currently running",
		},
	)
)

var registerOnce sync.Once

// Register registers the catalog metrics with the default registry. Safe to call more than once.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			OperationsTotal,
			OperationDuration,
			CacheWriteErrorsTotal,
			Connected,
			OperationsInFlight,
		)
	})
}
