// Package logger provides structured logging for termvault.
package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Logger wraps zerolog with termvault-specific helpers.
type Logger struct {
	zlog zerolog.Logger
}

// Config holds logger configuration
type Config struct {
	Level      string // debug, info, warn, error
	Pretty     bool   // human readable console output
	Output     io.Writer
	WithCaller bool
}

// ParseLevel maps a level name to a zerolog level, defaulting to info.
func ParseLevel(name string) zerolog.Level {
	switch name {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

// NewLogger creates a new structured logger
func NewLogger(cfg Config) *Logger {
	// stdout carries command output
	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}

	if cfg.Pretty {
		output = zerolog.ConsoleWriter{
			Out:        output,
			TimeFormat: time.RFC3339,
		}
	}

	zlog := zerolog.New(output).
		Level(ParseLevel(cfg.Level)).
		With().
		Timestamp().
		Str("service", "termvault").
		Logger()

	if cfg.WithCaller {
		zlog = zlog.With().Caller().Logger()
	}

	return &Logger{zlog: zlog}
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{zlog: zerolog.Nop()}
}

// Info logs an info message
func (l *Logger) Info() *zerolog.Event {
	return l.zlog.Info()
}

// Debug logs a debug message
func (l *Logger) Debug() *zerolog.Event {
	return l.zlog.Debug()
}

// Warn logs a warning message
func (l *Logger) Warn() *zerolog.Event {
	return l.zlog.Warn()
}

// Error logs an error message
func (l *Logger) Error() *zerolog.Event {
	return l.zlog.Error()
}

// DbLogger returns a logger for database operations
func (l *Logger) DbLogger(operation string) *Logger {
	return &Logger{
		zlog: l.zlog.With().
			Str("component", "database").
			Str("operation", operation).
			Logger(),
	}
}

// ServiceLogger returns a logger for one entity service.
func (l *Logger) ServiceLogger(entity string) *Logger {
	return &Logger{
		zlog: l.zlog.With().
			Str("component", "service").
			Str("entity", entity).
			Logger(),
	}
}

// LogDbOperation logs one repository call. Use it on a DbLogger, which
// carries the component and operation fields.
func (l *Logger) LogDbOperation(duration time.Duration, recordCount int, err error) {
	if err != nil {
		l.zlog.Error().
			Dur("duration_ms", duration).
			Err(err).
			Msg("Database operation failed")
		return
	}

	l.zlog.Debug().
		Dur("duration_ms", duration).
		Int("record_count", recordCount).
		Msg("Database operation completed")
}

// LogPersist logs the outcome of a versioned write.
func (l *Logger) LogPersist(operation string, versionedObjectID int64, version string, duration time.Duration, err error) {
	if err != nil {
		l.zlog.Warn().
			Str("operation", operation).
			Int64("versioned_object_id", versionedObjectID).
			Dur("duration_ms", duration).
			Err(err).
			Msg("Persist rolled back")
		return
	}

	l.zlog.Debug().
		Str("operation", operation).
		Int64("versioned_object_id", versionedObjectID).
		Str("version", version).
		Dur("duration_ms", duration).
		Msg("Persist committed")
}
