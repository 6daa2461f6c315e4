package log

import (
	"context"
	"log/slog"
	"sync"

	fmerrors "github.com/felixgeelhaar/freementors/internal/errors"
)

// Logger provides structured logging with slog
type Logger struct {
	slog   *slog.Logger
	config Config
}

// New creates a new Logger with the given configuration
func New(config Config) *Logger {
	opts := &slog.HandlerOptions{
		Level:     config.Level.ToSlogLevel(),
		AddSource: config.AddSource,
	}

	var handler slog.Handler
	switch config.Format {
	case FormatJSON:
		handler = slog.NewJSONHandler(config.Output.Writer(), opts)
	default:
		handler = slog.NewTextHandler(config.Output.Writer(), opts)
	}

	logger := slog.New(handler)
	if config.ServiceName != "" {
		logger = logger.With("service", config.ServiceName)
	}

	return &Logger{
		slog:   logger,
		config: config,
	}
}

// Default creates a logger with default configuration
func Default() *Logger {
	return New(DefaultConfig())
}

// Development creates a logger with development configuration
func Development() *Logger {
	return New(DevelopmentConfig())
}

// Discard returns a logger that drops everything. Useful in tests.
func Discard() *Logger {
	return &Logger{slog: slog.New(slog.DiscardHandler), config: DefaultConfig()}
}

// With returns a new Logger with the given attributes added to all log entries
func (l *Logger) With(args ...any) *Logger {
	return &Logger{
		slog:   l.slog.With(args...),
		config: l.config,
	}
}

// WithGroup returns a new Logger with a group name that prefixes all attributes
func (l *Logger) WithGroup(name string) *Logger {
	return &Logger{
		slog:   l.slog.WithGroup(name),
		config: l.config,
	}
}

// WithError adds error details to the logger.
// Coded errors contribute error_code, suggestions and cause.
func (l *Logger) WithError(err error) *Logger {
	if err == nil {
		return l
	}

	if fmErr, ok := fmerrors.As(err); ok {
		args := []any{
			"error", fmErr.Message,
			"error_code", string(fmErr.Code),
		}

		if len(fmErr.Suggestions) > 0 {
			args = append(args, "suggestions", fmErr.Suggestions)
		}

		if fmErr.Cause != nil {
			args = append(args, "cause", fmErr.Cause.Error())
		}

		return l.With(args...)
	}

	return l.With("error", err.Error())
}

// Debug logs a debug message
func (l *Logger) Debug(msg string, args ...any) {
	l.slog.Debug(msg, args...)
}

// DebugContext logs a debug message with context
func (l *Logger) DebugContext(ctx context.Context, msg string, args ...any) {
	l.slog.DebugContext(ctx, msg, args...)
}

// Info logs an info message
func (l *Logger) Info(msg string, args ...any) {
	l.slog.Info(msg, args...)
}

// InfoContext logs an info message with context
func (l *Logger) InfoContext(ctx context.Context, msg string, args ...any) {
	l.slog.InfoContext(ctx, msg, args...)
}

// Warn logs a warning message
func (l *Logger) Warn(msg string, args ...any) {
	l.slog.Warn(msg, args...)
}

// WarnContext logs a warning message with context
func (l *Logger) WarnContext(ctx context.Context, msg string, args ...any) {
	l.slog.WarnContext(ctx, msg, args...)
}

// Error logs an error message
func (l *Logger) Error(msg string, args ...any) {
	l.slog.Error(msg, args...)
}

// ErrorContext logs an error message with context
func (l *Logger) ErrorContext(ctx context.Context, msg string, args ...any) {
	l.slog.ErrorContext(ctx, msg, args...)
}

// LogError logs an error with full details at error level
func (l *Logger) LogError(err error) {
	if err == nil {
		return
	}
	l.WithError(err).Error("operation failed")
}

// Enabled returns whether the logger is enabled for the given level
func (l *Logger) Enabled(ctx context.Context, level Level) bool {
	return l.slog.Enabled(ctx, level.ToSlogLevel())
}

// Config returns the logger configuration
func (l *Logger) Config() Config {
	return l.config
}

var (
	defaultLogger *Logger
	loggerMu      sync.RWMutex
)

// SetDefaultLogger sets the process-wide default logger.
func SetDefaultLogger(logger *Logger) {
	loggerMu.Lock()
	defer loggerMu.Unlock()
	defaultLogger = logger
}

// DefaultLogger returns the process-wide default logger.
// If none was configured, it falls back to a basic logger.
func DefaultLogger() *Logger {
	loggerMu.RLock()
	if defaultLogger != nil {
		defer loggerMu.RUnlock()
		return defaultLogger
	}
	loggerMu.RUnlock()

	logger := Default()
	SetDefaultLogger(logger)
	return logger
}
