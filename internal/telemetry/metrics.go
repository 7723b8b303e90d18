package telemetry

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// OutcomeTranscoded labels invocations that returned a transcoded body.
const OutcomeTranscoded = "transcoded"

// Metrics holds the filter collectors on a private registry. A nil *Metrics records nothing.
type Metrics struct {
	registry          *prometheus.Registry
	invocationsTotal  *prometheus.CounterVec
	transcodeDuration prometheus.Histogram
	originalBytes     prometheus.Counter
	transcodedBytes   prometheus.Counter
}

// NewMetrics creates the collectors and registers them with a new registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: registry,
		invocationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "image_optimizer_invocations_total",
			Help: "Total filter invocations by outcome (transcoded or the pass-through kind).",
		}, []string{"outcome"}),
		transcodeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "image_optimizer_transcode_duration_seconds",
			Help:    "Duration of successful transcodes.",
			Buckets: prometheus.DefBuckets,
		}),
		originalBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "image_optimizer_original_bytes_total",
			Help: "Total size of the originals that were transcoded.",
		}),
		transcodedBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "image_optimizer_transcoded_bytes_total",
			Help: "Total size of the transcoded bodies, before base64 encoding.",
		}),
	}

	registry.MustRegister(
		m.invocationsTotal,
		m.transcodeDuration,
		m.originalBytes,
		m.transcodedBytes,
	)
	return m
}

// ObserveOutcome counts one invocation.
func (m *Metrics) ObserveOutcome(outcome string) {
	if m == nil {
		return
	}
	m.invocationsTotal.WithLabelValues(outcome).Inc()
}

// ObserveTranscode records a successful transcode.
func (m *Metrics) ObserveTranscode(elapsed time.Duration, original, transcoded int) {
	if m == nil {
		return
	}
	m.transcodeDuration.Observe(elapsed.Seconds())
	m.originalBytes.Add(float64(original))
	m.transcodedBytes.Add(float64(transcoded))
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
