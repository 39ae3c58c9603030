package logging

import (
	"encoding/json"
	"io"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// captureLogOutput captures the entries emitted by logFn, one map per line.
func captureLogOutput(t *testing.T, logFn func(*zap.Logger)) []map[string]any {
	t.Helper()

	resetLoggerForTest()

	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to create pipe: %v", err)
	}
	defer func() { _ = r.Close() }()

	origStdout := os.Stdout
	os.Stdout = w
	defer func() { os.Stdout = origStdout }()

	logger := Logger()
	logFn(logger)
	_ = logger.Sync()

	if closeErr := w.Close(); closeErr != nil {
		t.Fatalf("failed to close writer: %v", closeErr)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("failed to read log output: %v", err)
	}

	var entries []map[string]any
	for line := range strings.SplitSeq(strings.TrimSpace(string(data)), "\n") {
		if line == "" {
			continue
		}
		var payload map[string]any
		if err := json.Unmarshal([]byte(line), &payload); err != nil {
			t.Fatalf("failed to unmarshal log JSON %q: %v", line, err)
		}
		entries = append(entries, payload)
	}
	return entries
}

// resetLoggerForTest clears the singleton so the next Logger call writes to the swapped stdout.
func resetLoggerForTest() {
	loggerOnce = sync.Once{}
	baseLogger = nil
	loggerErr = nil
	level.SetLevel(zapcore.InfoLevel)
}

func TestLoggerStructuredOutput(t *testing.T) {
	entries := captureLogOutput(t, func(l *zap.Logger) {
		l.Info("GET /api/message")
	})
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	payload := entries[0]

	if got := payload["severity"]; got != "INFO" {
		t.Fatalf("expected severity INFO, got %v", got)
	}
	if _, exists := payload["level"]; exists {
		t.Fatal("did not expect a level field")
	}
	if got := payload["message"]; got != "GET /api/message" {
		t.Fatalf("expected message 'GET /api/message', got %v", got)
	}
	if _, ok := payload["caller"].(string); !ok {
		t.Fatalf("expected caller field, got %v", payload["caller"])
	}

	ts, ok := payload["timestamp"].(string)
	if !ok {
		t.Fatalf("expected timestamp string, got %v", payload["timestamp"])
	}
	if _, err := time.Parse(rfc3339Micros, ts); err != nil {
		t.Fatalf("timestamp %q does not match microsecond layout: %v", ts, err)
	}
}

func TestLoggerSeverityNames(t *testing.T) {
	entries := captureLogOutput(t, func(l *zap.Logger) {
		l.Warn("warn")
		l.Error("error")
	})
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if got := entries[0]["severity"]; got != "WARNING" {
		t.Fatalf("expected WARNING, got %v", got)
	}
	if got := entries[1]["severity"]; got != "ERROR" {
		t.Fatalf("expected ERROR, got %v", got)
	}
}

func TestSetLevelFiltersEntries(t *testing.T) {
	entries := captureLogOutput(t, func(l *zap.Logger) {
		SetLevel(zapcore.WarnLevel)
		l.Info("dropped")
		l.Warn("kept")
	})
	t.Cleanup(func() { SetLevel(zapcore.InfoLevel) })

	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if got := entries[0]["message"]; got != "kept" {
		t.Fatalf("expected 'kept', got %v", got)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    zapcore.Level
		wantErr bool
	}{
		{in: "", want: zapcore.InfoLevel},
		{in: "debug", want: zapcore.DebugLevel},
		{in: " INFO ", want: zapcore.InfoLevel},
		{in: "warn", want: zapcore.WarnLevel},
		{in: "warning", want: zapcore.WarnLevel},
		{in: "error", want: zapcore.ErrorLevel},
		{in: "verbose", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tt.in)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestEncodeSeverityMapping(t *testing.T) {
	tests := map[zapcore.Level]string{
		zapcore.DebugLevel:  "DEBUG",
		zapcore.InfoLevel:   "INFO",
		zapcore.WarnLevel:   "WARNING",
		zapcore.ErrorLevel:  "ERROR",
		zapcore.DPanicLevel: "CRITICAL",
		zapcore.PanicLevel:  "ALERT",
		zapcore.FatalLevel:  "EMERGENCY",
		zapcore.Level(42):   "DEFAULT",
	}
	for lvl, want := range tests {
		enc := &sliceEncoder{}
		encodeSeverity(lvl, enc)
		if len(enc.values) != 1 || enc.values[0] != want {
			t.Fatalf("level %d: expected %s, got %v", lvl, want, enc.values)
		}
	}
}

func TestErr(t *testing.T) {
	if err := Err(); err != nil {
		t.Fatalf("unexpected init error: %v", err)
	}
}

// sliceEncoder records appended strings; other primitives are ignored.
type sliceEncoder struct {
	zapcore.PrimitiveArrayEncoder
	values []string
}

func (s *sliceEncoder) AppendString(v string) {
	s.values = append(s.values, v)
}
