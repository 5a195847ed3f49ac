package credstore

import "github.com/hengadev/credstore/internal/monitoring"

type (
	// ObservabilityHook is notified around every credential operation.
	ObservabilityHook = monitoring.ObservabilityHook
	// Operation identifies one credential operation for hooks.
	Operation = monitoring.Operation
	// MetricsCollector receives operation counters and timings.
	MetricsCollector = monitoring.MetricsCollector
	// InMemoryMetricsCollector keeps metrics in memory, for tests and debugging.
	InMemoryMetricsCollector = monitoring.InMemoryMetricsCollector
	// NoOpObservabilityHook ignores every event.
	NoOpObservabilityHook = monitoring.NoOpObservabilityHook
)

const (
	MetricOperationStarted   = monitoring.MetricOperationStarted
	MetricOperationCompleted = monitoring.MetricOperationCompleted
	MetricOperationFailed    = monitoring.MetricOperationFailed
	MetricOperationDuration  = monitoring.MetricOperationDuration
)

func NewInMemoryMetricsCollector() *InMemoryMetricsCollector {
	return monitoring.NewInMemoryMetricsCollector()
}
