package log

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Level represents the severity of a log message
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// String returns the string representation of the level
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ToSlogLevel converts our Level to slog.Level
func (l Level) ToSlogLevel() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ParseLevel parses a level name case-insensitively, defaulting to info
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// Format represents the output format for logs
type Format int

const (
	FormatText Format = iota
	FormatJSON
)

// String returns the string representation of the format
func (f Format) String() string {
	if f == FormatJSON {
		return "json"
	}
	return "text"
}

// ParseFormat parses a string into a Format. A CLI is read by people first,
// so anything unrecognised means text.
func ParseFormat(s string) Format {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON
	default:
		return FormatText
	}
}

// Output represents where logs should be written
type Output struct {
	writer io.Writer
}

// Writer returns the underlying io.Writer
func (o Output) Writer() io.Writer {
	if o.writer == nil {
		return os.Stderr
	}
	return o.writer
}

// NewOutput creates an Output from an io.Writer
func NewOutput(w io.Writer) Output {
	return Output{writer: w}
}

// OutputStderr creates an Output that writes to stderr.
// Stdout is reserved for command results.
func OutputStderr() Output {
	return Output{writer: os.Stderr}
}

// OutputFile opens (or creates) a log file for appending. The TUI logs
// here so records do not corrupt the screen.
func OutputFile(path string) (Output, io.Closer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return Output{}, nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return Output{}, nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return Output{writer: f}, f, nil
}

// Config holds configuration for the logger
type Config struct {
	// Level is the minimum log level to output
	Level Level

	// Format is the output format (JSON or Text)
	Format Format

	// Output is where logs should be written
	Output Output

	// AddSource includes source file and line number in logs
	AddSource bool

	ServiceName    string
	ServiceVersion string
}

// DefaultConfig logs warnings and errors as text to stderr, so normal
// command output stays clean.
func DefaultConfig() Config {
	return Config{
		Level:          LevelWarn,
		Format:         FormatText,
		Output:         OutputStderr(),
		ServiceName:    "freementors",
		ServiceVersion: "dev",
	}
}

// DevelopmentConfig logs everything with source locations
func DevelopmentConfig() Config {
	return Config{
		Level:          LevelDebug,
		Format:         FormatText,
		Output:         OutputStderr(),
		AddSource:      true,
		ServiceName:    "freementors",
		ServiceVersion: "dev",
	}
}
