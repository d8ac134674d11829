package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initChapterMetrics() {
	r.KeysAllocatedTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "bat_keys_allocated_total",
			Help: "Total number of term keys handed out, by chapter",
		},
		[]string{"chapter"},
	)

	r.ChapterTerms = promauto.With(r.registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "bat_chapter_terms",
			Help: "Number of terms in the most recently sealed chapter",
		},
		[]string{"chapter"},
	)

	r.ChapterKeyWidth = promauto.With(r.registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "bat_chapter_key_width_bytes",
			Help: "Key slot width of the most recently sealed chapter",
		},
		[]string{"chapter"},
	)

	r.CodecErrorsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "bat_key_codec_errors_total",
			Help: "Total number of key encode/decode failures, by operation",
		},
		[]string{"operation"},
	)
}
