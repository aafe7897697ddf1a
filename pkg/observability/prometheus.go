package observability

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "vxgraph"

// PrometheusHooks records hook events as Prometheus metrics. It implements
// [PipelineHooks], [CacheHooks] and [ServerHooks].
type PrometheusHooks struct {
	stageDuration   *prometheus.HistogramVec
	diagnostics     *prometheus.CounterVec
	cacheOps        *prometheus.CounterVec
	cacheBytes      prometheus.Counter
	requestDuration *prometheus.HistogramVec
}

// NewPrometheusHooks creates unregistered metrics.
func NewPrometheusHooks() *PrometheusHooks {
	return &PrometheusHooks{
		stageDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "pipeline",
				Name:      "stage_duration_seconds",
				Help:      "Analysis stage duration in seconds.",
				Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8), // 100µs to ~1.6s
			},
			[]string{"stage", "result"},
		),
		diagnostics: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "pipeline",
				Name:      "diagnostics_total",
				Help:      "Diagnostics recorded by analyses, by severity.",
			},
			[]string{"severity"},
		),
		cacheOps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "cache",
				Name:      "operations_total",
				Help:      "Cache lookups and writes.",
			},
			[]string{"key_type", "op"},
		),
		cacheBytes: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "cache",
				Name:      "written_bytes_total",
				Help:      "Bytes written to the cache.",
			},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "HTTP request duration in seconds.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route", "code"},
		),
	}
}

// MustRegister registers the metrics with the given registry.
func (h *PrometheusHooks) MustRegister(registry prometheus.Registerer) {
	registry.MustRegister(h.stageDuration, h.diagnostics, h.cacheOps, h.cacheBytes, h.requestDuration)
}

func (h *PrometheusHooks) OnStageStart(context.Context, string, string) {}

func (h *PrometheusHooks) OnStageComplete(_ context.Context, stage, _ string, d time.Duration, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	h.stageDuration.WithLabelValues(stage, result).Observe(d.Seconds())
}

func (h *PrometheusHooks) OnDiagnostics(_ context.Context, _ string, errors, warnings int) {
	h.diagnostics.WithLabelValues("error").Add(float64(errors))
	h.diagnostics.WithLabelValues("warning").Add(float64(warnings))
}

func (h *PrometheusHooks) OnCacheHit(_ context.Context, keyType string) {
	h.cacheOps.WithLabelValues(keyType, "hit").Inc()
}

func (h *PrometheusHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.cacheOps.WithLabelValues(keyType, "miss").Inc()
}

func (h *PrometheusHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.cacheOps.WithLabelValues(keyType, "set").Inc()
	h.cacheBytes.Add(float64(size))
}

func (h *PrometheusHooks) OnResponse(_ context.Context, method, route string, code int, d time.Duration) {
	h.requestDuration.WithLabelValues(method, route, strconv.Itoa(code)).Observe(d.Seconds())
}

var (
	_ PipelineHooks = (*PrometheusHooks)(nil)
	_ CacheHooks    = (*PrometheusHooks)(nil)
	_ ServerHooks   = (*PrometheusHooks)(nil)
)
