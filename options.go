package credstore

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/hengadev/credstore/internal/monitoring"
	"github.com/hengadev/credstore/internal/transport"
)

type ClientOption func(c *Client) error

// HTTPDoer is satisfied by *http.Client. Deadlines, proxies and TLS are the
// caller's concern and are configured on the client passed here.
type HTTPDoer = transport.Doer

func WithHTTPClient(client HTTPDoer) ClientOption {
	return func(c *Client) error {
		if client == nil {
			return fmt.Errorf("%w: http client cannot be nil", ErrInvalidConfiguration)
		}
		c.httpClient = client
		return nil
	}
}

// WithLogger logs every operation start and completion through logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) error {
		c.hooks = append(c.hooks, monitoring.NewLoggingObservabilityHook(logger))
		return nil
	}
}

// WithMetricsCollector reports operation counters and timings to collector.
func WithMetricsCollector(collector MetricsCollector) ClientOption {
	return func(c *Client) error {
		c.hooks = append(c.hooks, monitoring.NewMetricsObservabilityHook(collector))
		return nil
	}
}

func WithObservabilityHook(hook ObservabilityHook) ClientOption {
	return func(c *Client) error {
		if hook == nil {
			return fmt.Errorf("%w: observability hook cannot be nil", ErrInvalidConfiguration)
		}
		c.hooks = append(c.hooks, hook)
		return nil
	}
}

// WithClock sets the time source for the iat header of outgoing envelopes.
func WithClock(now func() time.Time) ClientOption {
	return func(c *Client) error {
		if now == nil {
			return fmt.Errorf("%w: clock cannot be nil", ErrInvalidConfiguration)
		}
		c.now = now
		return nil
	}
}
