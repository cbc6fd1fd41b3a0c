// Package logging configures the global zerolog logger and hands out
// per-component loggers.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LogLevel represents the logging level.
type LogLevel string

const (
	// LevelDebug also logs every page fetch and token refresh.
	LevelDebug LogLevel = "debug"

	// LevelInfo logs fetch completion and server lifecycle events.
	LevelInfo LogLevel = "info"

	// LevelWarn logs degraded operation such as token store failures.
	LevelWarn LogLevel = "warn"

	// LevelError logs failed requests only.
	LevelError LogLevel = "error"
)

// Config holds logger configuration.
type Config struct {
	// Level is the minimum log level to output.
	Level LogLevel `validate:"omitempty,oneof=debug info warn warning error"`

	// Pretty enables human-readable console output (default: false for JSON).
	Pretty bool

	// Output is the writer to output logs to (default: os.Stderr).
	Output io.Writer
}

// DefaultConfig returns a default logger configuration.
func DefaultConfig() Config {
	return Config{
		Level:  LevelInfo,
		Pretty: false,
		Output: os.Stderr,
	}
}

var validate = validator.New()

// Validate rejects unknown levels. An empty level means info.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid logging config: %w", err)
	}
	return nil
}

// Setup configures the global zerolog logger.
func Setup(cfg Config) zerolog.Logger {
	zerolog.SetGlobalLevel(parseLevel(cfg.Level))

	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	if cfg.Pretty {
		out = zerolog.ConsoleWriter{Out: out}
	}

	logger := zerolog.New(out).With().Timestamp().Logger()
	log.Logger = logger

	return logger
}

// parseLevel converts LogLevel to zerolog.Level.
func parseLevel(level LogLevel) zerolog.Level {
	switch strings.ToLower(string(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// NewLogger creates a new logger with the given component name.
func NewLogger(component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}

// Log Level Guidelines:
//
// Debug:
//   - Paging plan (strategy, total_count, page_size, should_page)
//   - Each page fetch (offset, limit) and each request URL
//   - Token refreshes (expires_at)
//
// Info:
//   - Fetch completion (pages, total_count, duration)
//   - Server startup/shutdown
//
// Warn:
//   - Integration API error responses (status, error_class)
//   - Token store read/write failures (falls back to a fresh exchange)
//
// Error:
//   - Transport failures
//   - Configuration errors
//
// Context Fields:
//   - component: ethos-client, pagination, proxy, auth, server
//   - resource: integration API resource name
//   - strategy: paging strategy (ALL_PAGES, FROM_OFFSET_TO_NUM_ROWS, ...)
//   - offset, limit: cursor and size of one page fetch
//   - error_class: client, auth, rate_limit, server, network
