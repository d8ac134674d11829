package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds all metrics for archive encoding and decoding
type Registry struct {
	// Container framing
	ContainersWrittenTotal *prometheus.CounterVec
	ContainersReadTotal    *prometheus.CounterVec
	FramingErrorsTotal     *prometheus.CounterVec
	PayloadSizeBytes       *prometheus.HistogramVec

	// Dictionary chapters
	KeysAllocatedTotal *prometheus.CounterVec
	ChapterTerms       *prometheus.GaugeVec
	ChapterKeyWidth    *prometheus.GaugeVec
	CodecErrorsTotal   *prometheus.CounterVec

	// Archive operations
	ArchiveOperationsTotal   *prometheus.CounterVec
	ArchiveOperationDuration *prometheus.HistogramVec
	ArchiveBytesTotal        *prometheus.CounterVec

	registry *prometheus.Registry
}

var (
	// Global registry instance
	defaultRegistry *Registry
	once            sync.Once
)

// DefaultRegistry returns the global metrics registry
func DefaultRegistry() *Registry {
	once.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// NewRegistry creates a new metrics registry with all metrics initialized
func NewRegistry() *Registry {
	r := &Registry{
		registry: prometheus.NewRegistry(),
	}

	r.initContainerMetrics()
	r.initChapterMetrics()
	r.initArchiveMetrics()

	return r
}

// GetPrometheusRegistry returns the underlying Prometheus registry
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}
