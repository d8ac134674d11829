package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initContainerMetrics() {
	r.ContainersWrittenTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "bat_containers_written_total",
			Help: "Total number of containers framed, by encoding scheme",
		},
		[]string{"scheme"},
	)

	r.ContainersReadTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "bat_containers_read_total",
			Help: "Total number of containers parsed, by encoding scheme",
		},
		[]string{"scheme"},
	)

	r.FramingErrorsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "bat_framing_errors_total",
			Help: "Total number of malformed containers, by failure kind",
		},
		[]string{"kind"},
	)

	r.PayloadSizeBytes = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bat_container_payload_bytes",
			Help:    "Payload size of framed containers in bytes",
			Buckets: prometheus.ExponentialBuckets(16, 4, 12),
		},
		[]string{"direction"},
	)
}
