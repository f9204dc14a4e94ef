// Package metricsmanager exposes daemon-wide counters and histograms behind
// a small interface, the way the teacher's pkg/metricsmanager does, so the
// dispatcher and supervisor can be tested with a mock instead of a live
// Prometheus registry.
package metricsmanager

import "time"

// MetricsManager is implemented by both the Prometheus-backed collector and
// the test mock.
type MetricsManager interface {
	Start(addr string) error
	Destroy()
	ReportJobEnqueued()
	ReportJobDropped(reason string)
	ReportInferenceLatency(d time.Duration)
	ReportPostProcessInvocation(class string)
}
