// Package logging configures zerolog for the fetch job.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LogLevel represents the logging level.
type LogLevel string

const (
	// LevelDebug logs debug messages and above.
	LevelDebug LogLevel = "debug"

	// LevelInfo logs info messages and above.
	LevelInfo LogLevel = "info"

	// LevelWarn logs warning messages and above.
	LevelWarn LogLevel = "warn"

	// LevelError logs error messages only.
	LevelError LogLevel = "error"
)

// Config holds logger configuration.
type Config struct {
	// Level is the minimum log level to output.
	Level LogLevel

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

// Setup configures the global zerolog logger.
func Setup(cfg Config) zerolog.Logger {
	zerolog.SetGlobalLevel(parseLevel(cfg.Level))

	if cfg.Output == nil {
		cfg.Output = os.Stderr
	}
	var output io.Writer = cfg.Output
	if cfg.Pretty {
		output = zerolog.ConsoleWriter{Out: cfg.Output, TimeFormat: "15:04:05"}
	}

	logger := zerolog.New(output).With().Timestamp().Logger()
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

// LevelForDebug maps the configured debug level to a log level.
// Level 0 only reports failures, 1 adds cycle progress and 2 or more
// traces every login, request and save.
func LevelForDebug(debugLevel int) LogLevel {
	switch {
	case debugLevel <= 0:
		return LevelWarn
	case debugLevel == 1:
		return LevelInfo
	default:
		return LevelDebug
	}
}

// Log Level Guidelines:
//
// Debug: Per-step tracing (debug_level >= 2)
//   - Logging in, session renewal
//   - Per-list requests and saves
//   - Catalog fetch and parse results
//
// Info: Cycle progress (debug_level >= 1)
//   - Downloading data
//   - Cycle completed, lists written and skipped
//
// Warn: Conditions that don't stop the cycle
//   - Non-2xx responses
//   - Metrics push failures
//
// Error: Conditions that abort the cycle
//   - Login rejected or unreachable
//   - Batch request failures
//   - Catalog unavailable
//   - Output write failures
//
// Context Fields:
//   - component: emitting package (session, catalog, retriever, ...)
//   - endpoint: request path without identifier segments
//   - list: satellite list name
//   - count: number of catalog numbers
//   - status: HTTP status code
//   - error_class: failure classification (client, server, network)
