package metricsmanager

import (
	"time"

	"github.com/goradd/maps"
)

var _ MetricsManager = (*Mock)(nil)

// Mock is an in-memory MetricsManager for tests.
type Mock struct {
	JobsEnqueued          int
	JobsDropped           maps.SafeMap[string, int]
	InferenceLatencies    []time.Duration
	PostProcessInvocation maps.SafeMap[string, int]
}

func NewMock() *Mock {
	return &Mock{}
}

func (m *Mock) Start(string) error { return nil }

func (m *Mock) Destroy() {
	m.JobsEnqueued = 0
	m.JobsDropped.Clear()
	m.InferenceLatencies = nil
	m.PostProcessInvocation.Clear()
}

func (m *Mock) ReportJobEnqueued() {
	m.JobsEnqueued++
}

func (m *Mock) ReportJobDropped(reason string) {
	m.JobsDropped.Set(reason, m.JobsDropped.Get(reason)+1)
}

func (m *Mock) ReportInferenceLatency(d time.Duration) {
	m.InferenceLatencies = append(m.InferenceLatencies, d)
}

func (m *Mock) ReportPostProcessInvocation(class string) {
	m.PostProcessInvocation.Set(class, m.PostProcessInvocation.Get(class)+1)
}
