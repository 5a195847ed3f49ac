package monitoring

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
)

// LogFormat represents the output format for logs
type LogFormat int

const (
	FormatJSON LogFormat = iota
	FormatText
)

const (
	EnvLogLevel  = "CREDSTORE_LOG_LEVEL"
	EnvLogFormat = "CREDSTORE_LOG_FORMAT"
)

// LoggerConfig configures the structured logger
type LoggerConfig struct {
	Level     slog.Level
	Format    LogFormat
	Output    io.Writer
	Component string
}

// NewLogger builds a slog logger tagged with the service and component.
func NewLogger(config LoggerConfig) *slog.Logger {
	if config.Output == nil {
		config.Output = os.Stderr
	}

	opts := &slog.HandlerOptions{
		Level:     config.Level,
		AddSource: config.Level <= slog.LevelDebug,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				a.Value = slog.StringValue(a.Value.Time().Format(time.RFC3339Nano))
			}
			return a
		},
	}

	var handler slog.Handler
	switch config.Format {
	case FormatText:
		handler = slog.NewTextHandler(config.Output, opts)
	default:
		handler = slog.NewJSONHandler(config.Output, opts)
	}

	logger := slog.New(handler).With(slog.String("service", "credstore"))
	if config.Component != "" {
		logger = logger.With(slog.String("component", config.Component))
	}
	return logger
}

// NewLoggerFromEnv reads CREDSTORE_LOG_LEVEL (debug, info, warn, error) and
// CREDSTORE_LOG_FORMAT (json, text). Unknown values fall back to info/json.
func NewLoggerFromEnv(component string, output io.Writer) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(os.Getenv(EnvLogLevel)) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	format := FormatJSON
	if strings.ToLower(os.Getenv(EnvLogFormat)) == "text" {
		format = FormatText
	}

	return NewLogger(LoggerConfig{
		Level:     level,
		Format:    format,
		Output:    output,
		Component: component,
	})
}
