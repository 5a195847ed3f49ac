package monitoring

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/hengadev/credstore/internal/storeerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testOp = Operation{
	ID:             "op-1",
	Name:           "read",
	Namespace:      "com.example",
	CredentialType: "password",
	CredentialName: "db",
}

func TestMetricsObservabilityHook(t *testing.T) {
	collector := NewInMemoryMetricsCollector()
	hook := NewMetricsObservabilityHook(collector)
	ctx := context.Background()

	hook.OnOperationStart(ctx, testOp)
	hook.OnOperationComplete(ctx, testOp, 5*time.Millisecond, nil)

	hook.OnOperationStart(ctx, testOp)
	hook.OnOperationComplete(ctx, testOp, 7*time.Millisecond,
		storeerr.NewTransportError(http.MethodGet, "https://store/password", http.StatusNotFound))

	base := map[string]string{"operation": "read", "type": "password"}
	assert.Equal(t, int64(2), collector.GetCounter(MetricOperationStarted, base))
	assert.Equal(t, int64(1), collector.GetCounter(MetricOperationCompleted,
		map[string]string{"operation": "read", "type": "password", "status": "success"}))
	assert.Equal(t, int64(1), collector.GetCounter(MetricOperationFailed,
		map[string]string{"operation": "read", "type": "password", "status": "error", "error_class": "transport", "status_code": "404"}))
	assert.Len(t, collector.GetTimings(MetricOperationDuration, map[string]string{"operation": "read"}), 2)
}

func TestNewMetricsObservabilityHook_NilCollector(t *testing.T) {
	hook := NewMetricsObservabilityHook(nil)
	assert.NotPanics(t, func() {
		hook.OnOperationStart(context.Background(), testOp)
		hook.OnOperationComplete(context.Background(), testOp, time.Millisecond, nil)
	})
}

func TestLoggingObservabilityHook(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LoggerConfig{Level: slog.LevelDebug, Output: &buf, Component: "test"})
	hook := NewLoggingObservabilityHook(logger)
	ctx := context.Background()

	hook.OnOperationStart(ctx, testOp)
	hook.OnOperationComplete(ctx, testOp, time.Millisecond,
		storeerr.NewTransportError(http.MethodGet, "https://store/password", http.StatusUnauthorized))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var start, done map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &start))
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &done))

	assert.Equal(t, "credential operation started", start["msg"])
	assert.Equal(t, "DEBUG", start["level"])
	assert.Equal(t, "op-1", start["op_id"])
	assert.Equal(t, "credstore", start["service"])
	assert.Equal(t, "test", start["component"])

	assert.Equal(t, "credential operation failed", done["msg"])
	assert.Equal(t, "ERROR", done["level"])
	assert.Equal(t, float64(401), done["status_code"])
	assert.Equal(t, "transport", done["error_class"])
}

func TestCompositeObservabilityHook(t *testing.T) {
	first := NewInMemoryMetricsCollector()
	second := NewInMemoryMetricsCollector()
	hook := NewCompositeObservabilityHook(
		NewMetricsObservabilityHook(first),
		NewMetricsObservabilityHook(second),
		&NoOpObservabilityHook{},
	)

	hook.OnOperationStart(context.Background(), testOp)

	tags := map[string]string{"operation": "read", "type": "password"}
	assert.Equal(t, int64(1), first.GetCounter(MetricOperationStarted, tags))
	assert.Equal(t, int64(1), second.GetCounter(MetricOperationStarted, tags))
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{name: "nil", err: nil, expected: ""},
		{name: "transport", err: storeerr.NewTransportError("GET", "u", 500), expected: "transport"},
		{name: "network", err: fmt.Errorf("%w: dial", storeerr.ErrStoreUnavailable), expected: "network"},
		{name: "configuration", err: storeerr.NewMissingFieldError("url"), expected: "configuration"},
		{name: "encryption", err: storeerr.NewEncryptionError(storeerr.ParseKey, errors.New("x")), expected: "encryption"},
		{name: "decryption", err: storeerr.NewDecryptionError(storeerr.Open, errors.New("x")), expected: "decryption"},
		{name: "payload", err: storeerr.ErrInvalidPayload, expected: "payload"},
		{name: "request", err: fmt.Errorf("%w: name is required", storeerr.ErrInvalidRequest), expected: "request"},
		{name: "canceled", err: context.Canceled, expected: "canceled"},
		{name: "canceled request", err: fmt.Errorf("%w: GET request failed: %w", storeerr.ErrStoreUnavailable, context.Canceled), expected: "canceled"},
		{name: "deadline request", err: fmt.Errorf("%w: GET request failed: %w", storeerr.ErrStoreUnavailable, context.DeadlineExceeded), expected: "canceled"},
		{name: "unknown", err: errors.New("other"), expected: "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Classify(tt.err))
		})
	}
}

func TestNewLoggerFromEnv(t *testing.T) {
	t.Setenv(EnvLogLevel, "warn")
	t.Setenv(EnvLogFormat, "text")

	var buf bytes.Buffer
	logger := NewLoggerFromEnv("cli", &buf)

	logger.Info("hidden")
	logger.Warn("shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "msg=shown")
	assert.Contains(t, out, "component=cli")
}
