package log

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	fmerrors "github.com/felixgeelhaar/freementors/internal/errors"
)

func newBufferLogger(buf *bytes.Buffer, level Level, format Format) *Logger {
	return New(Config{
		Level:       level,
		Format:      format,
		Output:      NewOutput(buf),
		ServiceName: "freementors",
	})
}

func TestDefaultConstructors(t *testing.T) {
	tests := []struct {
		name     string
		newFunc  func() *Logger
		wantFunc func(Config) bool
	}{
		{
			name:    "Default",
			newFunc: Default,
			wantFunc: func(c Config) bool {
				return c.Level == LevelWarn && c.Format == FormatText && !c.AddSource
			},
		},
		{
			name:    "Development",
			newFunc: Development,
			wantFunc: func(c Config) bool {
				return c.Level == LevelDebug && c.Format == FormatText && c.AddSource
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := tt.newFunc()
			if logger == nil {
				t.Fatal("expected logger, got nil")
			}
			if !tt.wantFunc(logger.Config()) {
				t.Errorf("unexpected config: %+v", logger.Config())
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]Level{
		"debug":   LevelDebug,
		"INFO":    LevelInfo,
		"warning": LevelWarn,
		"Error":   LevelError,
		"bogus":   LevelInfo,
		"":        LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestParseFormat(t *testing.T) {
	if ParseFormat("JSON") != FormatJSON {
		t.Error("expected json format")
	}
	if ParseFormat("console") != FormatText {
		t.Error("unknown formats should fall back to text")
	}
}

func TestLogLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := newBufferLogger(&buf, LevelWarn, FormatJSON)

	logger.Debug("debug message")
	logger.Info("info message")

	if buf.Len() > 0 {
		t.Errorf("expected no output for debug/info at warn level, got: %s", buf.String())
	}

	logger.Warn("warn message")
	if buf.Len() == 0 {
		t.Error("expected output for warn message")
	}
}

func TestJSONFormatOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := newBufferLogger(&buf, LevelInfo, FormatJSON)

	logger.Info("session verified", "status", "AUTHENTICATED", "attempt", 1)

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse JSON output: %v\nOutput: %s", err, buf.String())
	}

	if entry["msg"] != "session verified" {
		t.Errorf("expected msg 'session verified', got %v", entry["msg"])
	}
	if entry["service"] != "freementors" {
		t.Errorf("expected service attribute, got %v", entry["service"])
	}
	if entry["status"] != "AUTHENTICATED" {
		t.Errorf("expected status attribute, got %v", entry["status"])
	}
	if entry["attempt"] != float64(1) {
		t.Errorf("expected attempt 1, got %v", entry["attempt"])
	}
}

func TestTextFormatOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := newBufferLogger(&buf, LevelInfo, FormatText)

	logger.Info("login", "email", "ada@example.com")

	output := buf.String()
	if !strings.Contains(output, "login") || !strings.Contains(output, "email=ada@example.com") {
		t.Errorf("unexpected text output: %s", output)
	}
}

func TestWithGroup(t *testing.T) {
	var buf bytes.Buffer
	logger := newBufferLogger(&buf, LevelInfo, FormatJSON)

	logger.WithGroup("request").Info("sent", "id", "123")

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse JSON: %v", err)
	}

	request, ok := entry["request"].(map[string]interface{})
	if !ok {
		t.Fatal("expected 'request' group in output")
	}
	if request["id"] != "123" {
		t.Errorf("expected request.id '123', got %v", request["id"])
	}
}

func TestWithError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantCode  string
		wantSuggs bool
		wantCause bool
	}{
		{
			name: "nil error",
		},
		{
			name: "plain error",
			err:  errors.New("boom"),
		},
		{
			name:      "coded error with suggestions",
			err:       fmerrors.NewLoginRequiredError("/admin"),
			wantCode:  "AUTH-001",
			wantSuggs: true,
		},
		{
			name:      "coded error with cause",
			err:       fmerrors.NewTransportError("http://x", errors.New("refused")),
			wantCode:  "API-001",
			wantSuggs: true,
			wantCause: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := newBufferLogger(&buf, LevelInfo, FormatJSON)

			logger.WithError(tt.err).Info("test")

			var entry map[string]interface{}
			if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
				t.Fatalf("failed to parse JSON: %v", err)
			}

			if tt.err == nil {
				if _, ok := entry["error"]; ok {
					t.Error("nil error must not add fields")
				}
				return
			}

			if _, ok := entry["error"]; !ok {
				t.Error("expected error field")
			}
			if tt.wantCode != "" && entry["error_code"] != tt.wantCode {
				t.Errorf("expected error_code %s, got %v", tt.wantCode, entry["error_code"])
			}
			if _, ok := entry["suggestions"]; ok != tt.wantSuggs {
				t.Errorf("suggestions present = %v, want %v", ok, tt.wantSuggs)
			}
			if _, ok := entry["cause"]; ok != tt.wantCause {
				t.Errorf("cause present = %v, want %v", ok, tt.wantCause)
			}
		})
	}
}

func TestLogError(t *testing.T) {
	var buf bytes.Buffer
	logger := newBufferLogger(&buf, LevelInfo, FormatJSON)

	logger.LogError(nil)
	if buf.Len() != 0 {
		t.Fatal("LogError(nil) must not write")
	}

	logger.LogError(fmerrors.NewPasswordMismatchError())

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse JSON: %v", err)
	}
	if entry["level"] != "ERROR" {
		t.Errorf("expected ERROR level, got %v", entry["level"])
	}
	if entry["error_code"] != "VALID-001" {
		t.Errorf("expected VALID-001, got %v", entry["error_code"])
	}
}

func TestEnabled(t *testing.T) {
	logger := New(Config{Level: LevelWarn, Output: NewOutput(&bytes.Buffer{})})
	ctx := context.Background()

	if logger.Enabled(ctx, LevelInfo) {
		t.Error("info must be disabled at warn level")
	}
	if !logger.Enabled(ctx, LevelError) {
		t.Error("error must be enabled at warn level")
	}
}

func TestOutputFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "freementors.log")

	out, closer, err := OutputFile(path)
	if err != nil {
		t.Fatalf("OutputFile() error = %v", err)
	}
	defer closer.Close()

	logger := New(Config{Level: LevelInfo, Format: FormatJSON, Output: out})
	logger.Info("written to file")
}

func TestDefaultLogger(t *testing.T) {
	original := defaultLogger
	defer func() { defaultLogger = original }()

	custom := Discard()
	SetDefaultLogger(custom)
	if DefaultLogger() != custom {
		t.Error("DefaultLogger did not return the configured logger")
	}

	defaultLogger = nil
	if DefaultLogger() == nil {
		t.Error("DefaultLogger must lazily create a logger")
	}
}
