package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

type mockRepositoryError struct {
	message string
	code    string
	context map[string]string
}

func (m *mockRepositoryError) Error() string                 { return m.message }
func (m *mockRepositoryError) GetCode() string               { return m.code }
func (m *mockRepositoryError) IsRetryable() bool             { return false }
func (m *mockRepositoryError) GetContext() map[string]string { return m.context }
func (m *mockRepositoryError) GetTimestamp() time.Time       { return time.Time{} }

func decodeLines(t *testing.T, buf *bytes.Buffer) []logEntry {
	t.Helper()
	var entries []logEntry
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var e logEntry
		if err := json.Unmarshal([]byte(line), &e); err != nil {
			t.Fatalf("invalid JSON log line %q: %v", line, err)
		}
		entries = append(entries, e)
	}
	return entries
}

func TestDefaultLogger_WritesJSONLines(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, LevelDebug)
	logger.now = func() time.Time { return time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC) }

	logger.Info("worker started", "queue", 16, "error", errors.New("boom"))

	entries := decodeLines(t, &buf)
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	e := entries[0]
	if e.Level != "INFO" || e.Message != "worker started" || e.Timestamp != "2024-01-01T12:00:00Z" {
		t.Errorf("unexpected entry %+v", e)
	}
	if e.Fields["queue"] != float64(16) || e.Fields["error"] != "boom" {
		t.Errorf("unexpected fields %v", e.Fields)
	}
}

func TestDefaultLogger_FiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, LevelWarn)

	logger.Debug("d")
	logger.Info("i")
	logger.Warn("w")
	logger.Error("e")

	entries := decodeLines(t, &buf)
	if len(entries) != 2 || entries[0].Level != "WARN" || entries[1].Level != "ERROR" {
		t.Errorf("unexpected entries %+v", entries)
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]Level{"debug": LevelDebug, "INFO": LevelInfo, "": LevelInfo, "warning": LevelWarn, "error": LevelError}
	for in, want := range tests {
		got, err := ParseLevel(in)
		if err != nil || got != want {
			t.Errorf("ParseLevel(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Error("expected an error for an unknown level")
	}
}

func TestFieldsToMap_Malformed(t *testing.T) {
	m := fieldsToMap([]any{"ok", 1, 2, "x", "dangling"})
	if m["ok"] != 1 || m["field_1"] != "x" {
		t.Errorf("unexpected map %v", m)
	}
	if v, ok := m["dangling"]; !ok || v != nil {
		t.Errorf("dangling key must be kept with a nil value: %v", m)
	}
}

type recordingLogger struct {
	errors []string
	fields [][]any
}

func (r *recordingLogger) Debug(string, ...any) {}
func (r *recordingLogger) Info(string, ...any)  {}
func (r *recordingLogger) Warn(string, ...any)  {}
func (r *recordingLogger) Error(msg string, fields ...any) {
	r.errors = append(r.errors, msg)
	r.fields = append(r.fields, fields)
}

func TestLogError_WithRepositoryError(t *testing.T) {
	logger := &recordingLogger{}
	err := &mockRepositoryError{message: "fk", code: "REFERENTIAL_INTEGRITY", context: map[string]string{"resource": "action"}}

	LogError(logger, err, "AddSession", map[string]any{"command": "c1"})

	if len(logger.errors) != 1 || logger.errors[0] != "AddSession failed: fk" {
		t.Fatalf("unexpected messages %v", logger.errors)
	}
	fields := fieldsToMap(logger.fields[0])
	if fields["error_code"] != "REFERENTIAL_INTEGRITY" || fields["resource"] != "action" || fields["command"] != "c1" {
		t.Errorf("unexpected fields %v", fields)
	}
}

func TestGooseLogger(t *testing.T) {
	var buf bytes.Buffer
	g := NewGooseLogger(NewLogger(&buf, LevelDebug))

	g.Printf("OK   %s (%v)\n", "00001_schema.sql", "1ms")
	g.Fatalf("failed: %s", "boom")

	entries := decodeLines(t, &buf)
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Message != "OK   00001_schema.sql (1ms)" || entries[0].Fields["source"] != "goose" {
		t.Errorf("unexpected entry %+v", entries[0])
	}
	if entries[1].Level != "ERROR" {
		t.Errorf("Fatalf must log at error level, got %s", entries[1].Level)
	}
}
