package metricsmanager

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/kubescape/go-logger"
	"github.com/kubescape/go-logger/helpers"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var _ MetricsManager = (*PrometheusMetrics)(nil)

// PrometheusMetrics is the production MetricsManager, exposing the daemon's
// counters and histograms on an HTTP /metrics endpoint the way the teacher's
// pkg/metricsmanager/prometheus package does.
type PrometheusMetrics struct {
	jobsEnqueued        prometheus.Counter
	jobsDropped         *prometheus.CounterVec
	inferenceLatency    prometheus.Histogram
	postProcessInvoked  *prometheus.CounterVec
	server              *http.Server
}

func NewPrometheusMetrics() *PrometheusMetrics {
	return &PrometheusMetrics{
		jobsEnqueued: promauto.NewCounter(prometheus.CounterOpts{
			Name: "classifierd_jobs_enqueued_total",
			Help: "Total number of classification jobs enqueued from PROC_EVENT_EXEC events.",
		}),
		jobsDropped: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "classifierd_jobs_dropped_total",
			Help: "Total number of classification jobs dropped before running inference, by reason.",
		}, []string{"reason"}),
		inferenceLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "classifierd_inference_latency_seconds",
			Help:    "Latency of a single predict() call.",
			Buckets: prometheus.DefBuckets,
		}),
		postProcessInvoked: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "classifierd_postprocess_invocations_total",
			Help: "Total number of post-processor invocations, by predicted class.",
		}, []string{"class"}),
	}
}

func (m *PrometheusMetrics) Start(addr string) error {
	if addr == "" {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	m.server = &http.Server{Addr: addr, Handler: mux}
	go func() {
		if err := m.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.L().Warning("metrics server stopped", helpers.Error(err))
		}
	}()
	return nil
}

func (m *PrometheusMetrics) Destroy() {
	if m.server == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = m.server.Shutdown(ctx)
}

func (m *PrometheusMetrics) ReportJobEnqueued() {
	m.jobsEnqueued.Inc()
}

func (m *PrometheusMetrics) ReportJobDropped(reason string) {
	m.jobsDropped.WithLabelValues(reason).Inc()
}

func (m *PrometheusMetrics) ReportInferenceLatency(d time.Duration) {
	m.inferenceLatency.Observe(d.Seconds())
}

func (m *PrometheusMetrics) ReportPostProcessInvocation(class string) {
	m.postProcessInvoked.WithLabelValues(class).Inc()
}
