package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initArchiveMetrics() {
	r.ArchiveOperationsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "bat_archive_operations_total",
			Help: "Total number of archive operations",
		},
		[]string{"operation", "status"},
	)

	r.ArchiveOperationDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bat_archive_operation_duration_seconds",
			Help:    "Archive operation duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0},
		},
		[]string{"operation"},
	)

	r.ArchiveBytesTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "bat_archive_bytes_total",
			Help: "Total archive bytes written or read",
		},
		[]string{"direction"},
	)
}
