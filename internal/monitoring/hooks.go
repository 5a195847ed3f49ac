package monitoring

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/hengadev/credstore/internal/storeerr"
)

const (
	MetricOperationStarted   = "credstore.operation.started"
	MetricOperationCompleted = "credstore.operation.completed"
	MetricOperationFailed    = "credstore.operation.failed"
	MetricOperationDuration  = "credstore.operation.duration"
)

// Operation describes one credential operation. It carries identifiers
// only, never payloads or key material.
type Operation struct {
	ID             string
	Name           string
	Namespace      string
	CredentialType string
	CredentialName string
}

// ObservabilityHook is notified around every credential operation.
type ObservabilityHook interface {
	OnOperationStart(ctx context.Context, op Operation)
	OnOperationComplete(ctx context.Context, op Operation, duration time.Duration, err error)
}

// NoOpObservabilityHook is a no-op implementation of ObservabilityHook
type NoOpObservabilityHook struct{}

func (n *NoOpObservabilityHook) OnOperationStart(ctx context.Context, op Operation) {}
func (n *NoOpObservabilityHook) OnOperationComplete(ctx context.Context, op Operation, duration time.Duration, err error) {
}

// LoggingObservabilityHook writes one debug record when an operation starts
// and one info or error record when it completes.
type LoggingObservabilityHook struct {
	logger *slog.Logger
}

func NewLoggingObservabilityHook(logger *slog.Logger) *LoggingObservabilityHook {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoggingObservabilityHook{logger: logger}
}

func (l *LoggingObservabilityHook) OnOperationStart(ctx context.Context, op Operation) {
	l.logger.DebugContext(ctx, "credential operation started", op.attrs()...)
}

func (l *LoggingObservabilityHook) OnOperationComplete(ctx context.Context, op Operation, duration time.Duration, err error) {
	args := append(op.attrs(), slog.Duration("duration", duration))
	if err == nil {
		l.logger.InfoContext(ctx, "credential operation completed", args...)
		return
	}

	args = append(args, slog.String("error_class", Classify(err)))
	var transportErr *storeerr.TransportError
	if errors.As(err, &transportErr) {
		args = append(args, slog.Int("status_code", transportErr.StatusCode))
	}
	args = append(args, slog.String("error", err.Error()))
	l.logger.ErrorContext(ctx, "credential operation failed", args...)
}

func (op Operation) attrs() []any {
	return []any{
		slog.String("op_id", op.ID),
		slog.String("operation", op.Name),
		slog.String("namespace", op.Namespace),
		slog.String("type", op.CredentialType),
		slog.String("name", op.CredentialName),
	}
}

// MetricsObservabilityHook collects metrics for operations
type MetricsObservabilityHook struct {
	collector MetricsCollector
}

func NewMetricsObservabilityHook(collector MetricsCollector) *MetricsObservabilityHook {
	if collector == nil {
		collector = &NoOpMetricsCollector{}
	}
	return &MetricsObservabilityHook{collector: collector}
}

func (m *MetricsObservabilityHook) OnOperationStart(ctx context.Context, op Operation) {
	m.collector.IncrementCounter(MetricOperationStarted, op.tags())
}

func (m *MetricsObservabilityHook) OnOperationComplete(ctx context.Context, op Operation, duration time.Duration, err error) {
	tags := op.tags()
	if err != nil {
		tags["status"] = "error"
		tags["error_class"] = Classify(err)
		var transportErr *storeerr.TransportError
		if errors.As(err, &transportErr) {
			tags["status_code"] = strconv.Itoa(transportErr.StatusCode)
		}
		m.collector.IncrementCounter(MetricOperationFailed, tags)
	} else {
		tags["status"] = "success"
		m.collector.IncrementCounter(MetricOperationCompleted, tags)
	}

	m.collector.RecordTiming(MetricOperationDuration, duration, map[string]string{"operation": op.Name})
}

func (op Operation) tags() map[string]string {
	return map[string]string{
		"operation": op.Name,
		"type":      op.CredentialType,
	}
}

// CompositeObservabilityHook combines multiple hooks
type CompositeObservabilityHook struct {
	hooks []ObservabilityHook
}

func NewCompositeObservabilityHook(hooks ...ObservabilityHook) *CompositeObservabilityHook {
	return &CompositeObservabilityHook{hooks: hooks}
}

func (c *CompositeObservabilityHook) OnOperationStart(ctx context.Context, op Operation) {
	for _, hook := range c.hooks {
		hook.OnOperationStart(ctx, op)
	}
}

func (c *CompositeObservabilityHook) OnOperationComplete(ctx context.Context, op Operation, duration time.Duration, err error) {
	for _, hook := range c.hooks {
		hook.OnOperationComplete(ctx, op, duration, err)
	}
}

// Classify maps an operation error to a coarse label safe for logs and
// metric tags.
func Classify(err error) string {
	var transportErr *storeerr.TransportError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &transportErr):
		return "transport"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	case errors.Is(err, storeerr.ErrStoreUnavailable):
		return "network"
	case errors.Is(err, storeerr.ErrInvalidConfiguration):
		return "configuration"
	case errors.Is(err, storeerr.ErrEncryptionFailed):
		return "encryption"
	case errors.Is(err, storeerr.ErrDecryptionFailed):
		return "decryption"
	case errors.Is(err, storeerr.ErrInvalidPayload):
		return "payload"
	case errors.Is(err, storeerr.ErrInvalidRequest):
		return "request"
	default:
		return "unknown"
	}
}
