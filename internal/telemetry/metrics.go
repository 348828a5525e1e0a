package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the voice chat gateway.
type Metrics struct {
	RequestTotal          *prometheus.CounterVec
	RequestDurationMs     *prometheus.HistogramVec
	ValidationRejectTotal *prometheus.CounterVec
	RateLimitHitTotal     *prometheus.CounterVec
	ProviderCallTotal     *prometheus.CounterVec
	ProviderLatencyMs     *prometheus.HistogramVec
	AudioSniffMissTotal   prometheus.Counter
}

// NewMetrics creates and registers all Prometheus metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		RequestTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "voicechat_request_total",
			Help: "Total number of requests handled by the gateway.",
		}, []string{"endpoint", "status"}),

		RequestDurationMs: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "voicechat_request_duration_ms",
			Help:    "Request duration in milliseconds (including provider latency).",
			Buckets: []float64{5, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000},
		}, []string{"endpoint"}),

		ValidationRejectTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "voicechat_validation_rejections_total",
			Help: "Total requests rejected by input validation.",
		}, []string{"check"}),

		RateLimitHitTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "voicechat_rate_limit_hits_total",
			Help: "Total requests rejected by rate limiting.",
		}, []string{"class"}),

		ProviderCallTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "voicechat_provider_calls_total",
			Help: "Total upstream provider calls by outcome.",
		}, []string{"operation", "outcome"}),

		ProviderLatencyMs: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "voicechat_provider_latency_ms",
			Help:    "Upstream provider call latency in milliseconds.",
			Buckets: []float64{100, 250, 500, 1000, 2500, 5000, 10000, 30000},
		}, []string{"operation"}),

		AudioSniffMissTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "voicechat_audio_sniff_miss_total",
			Help: "Uploads that did not match a known audio signature (advisory).",
		}),
	}
}

// RecordRequest records a completed request.
func (m *Metrics) RecordRequest(endpoint, status string, durationMs float64) {
	m.RequestTotal.WithLabelValues(endpoint, status).Inc()
	m.RequestDurationMs.WithLabelValues(endpoint).Observe(durationMs)
}

// RecordValidationReject records an input-validation rejection.
func (m *Metrics) RecordValidationReject(check string) {
	m.ValidationRejectTotal.WithLabelValues(check).Inc()
}

// RecordRateLimitHit records a denied request for a rate class.
func (m *Metrics) RecordRateLimitHit(class string) {
	m.RateLimitHitTotal.WithLabelValues(class).Inc()
}

// RecordProviderCall records one upstream call and its latency.
func (m *Metrics) RecordProviderCall(operation, outcome string, durationMs float64) {
	m.ProviderCallTotal.WithLabelValues(operation, outcome).Inc()
	m.ProviderLatencyMs.WithLabelValues(operation).Observe(durationMs)
}

// RecordAudioSniffMiss records an upload that failed the advisory audio sniff.
func (m *Metrics) RecordAudioSniffMiss() {
	m.AudioSniffMissTotal.Inc()
}
