package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// Logger is the structured logger used across the application.
// fields are alternating key/value pairs.
type Logger interface {
	Debug(msg string, fields ...any)
	Info(msg string, fields ...any)
	Warn(msg string, fields ...any)
	Error(msg string, fields ...any)
}

// Level is a log severity
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "INFO"
	}
}

// ParseLevel converts debug, info, warn or error into a Level
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "info", "":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

// DefaultLogger writes one JSON object per line
type DefaultLogger struct {
	mu    sync.Mutex
	out   io.Writer
	level Level
	now   func() time.Time
}

// NewDefaultLogger logs info and above to stderr
func NewDefaultLogger() Logger {
	return NewLogger(os.Stderr, LevelInfo)
}

// NewLogger creates a logger writing entries at or above level to out
func NewLogger(out io.Writer, level Level) *DefaultLogger {
	return &DefaultLogger{
		out:   out,
		level: level,
		now:   time.Now,
	}
}

type logEntry struct {
	Timestamp string         `json:"timestamp"`
	Level     string         `json:"level"`
	Message   string         `json:"message"`
	Fields    map[string]any `json:"fields,omitempty"`
}

// fieldsToMap turns key1, value1, key2, value2, ... into a map.
// Non string keys and a trailing key without value are kept under field_N.
func fieldsToMap(fields []any) map[string]any {
	if len(fields) == 0 {
		return nil
	}
	result := make(map[string]any, len(fields)/2+1)
	for i := 0; i < len(fields); i += 2 {
		key, ok := fields[i].(string)
		if !ok {
			key = fmt.Sprintf("field_%d", i/2)
		}
		if i+1 >= len(fields) {
			result[key] = nil
			continue
		}
		value := fields[i+1]
		if err, isErr := value.(error); isErr && err != nil {
			value = err.Error()
		}
		result[key] = value
	}
	return result
}

func (l *DefaultLogger) log(level Level, msg string, fields []any) {
	if level < l.level {
		return
	}

	entry := logEntry{
		Timestamp: l.now().UTC().Format(time.RFC3339),
		Level:     level.String(),
		Message:   msg,
		Fields:    fieldsToMap(fields),
	}

	line, err := json.Marshal(entry)
	if err != nil {
		entry.Fields = map[string]any{
			"original_fields": fmt.Sprintf("%v", fields),
			"marshal_error":   err.Error(),
		}
		if line, err = json.Marshal(entry); err != nil {
			line = []byte(fmt.Sprintf("[%s] %s %v", entry.Level, msg, fields))
		}
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	_, _ = l.out.Write(append(line, '\n'))
}

func (l *DefaultLogger) Debug(msg string, fields ...any) { l.log(LevelDebug, msg, fields) }
func (l *DefaultLogger) Info(msg string, fields ...any)  { l.log(LevelInfo, msg, fields) }
func (l *DefaultLogger) Warn(msg string, fields ...any)  { l.log(LevelWarn, msg, fields) }
func (l *DefaultLogger) Error(msg string, fields ...any) { l.log(LevelError, msg, fields) }

// NopLogger discards everything
type NopLogger struct{}

func (NopLogger) Debug(string, ...any) {}
func (NopLogger) Info(string, ...any)  {}
func (NopLogger) Warn(string, ...any)  {}
func (NopLogger) Error(string, ...any) {}

// RepositoryError is the part of errors.RepositoryError the logger needs.
// Declared here so this package does not import the errors package.
type RepositoryError interface {
	Error() string
	GetCode() string
	IsRetryable() bool
	GetContext() map[string]string
	GetTimestamp() time.Time
}

// LogError logs err with its classification when it is a store error
func LogError(logger Logger, err error, operation string, context map[string]any) {
	if logger == nil {
		logger = NewDefaultLogger()
	}

	fields := []any{"operation", operation}
	if repoErr, ok := err.(RepositoryError); ok {
		fields = append(fields,
			"error_code", repoErr.GetCode(),
			"retryable", repoErr.IsRetryable(),
		)
		for k, v := range repoErr.GetContext() {
			fields = append(fields, k, v)
		}
	} else {
		fields = append(fields, "error_type", fmt.Sprintf("%T", err))
	}
	for k, v := range context {
		fields = append(fields, k, v)
	}

	logger.Error(fmt.Sprintf("%s failed: %v", operation, err), fields...)
}

// LogOperation logs a completed store operation at debug level
func LogOperation(logger Logger, operation string, duration time.Duration, context map[string]any) {
	if logger == nil {
		logger = NewDefaultLogger()
	}

	fields := []any{"operation", operation, "duration_ms", duration.Milliseconds()}
	for k, v := range context {
		fields = append(fields, k, v)
	}

	logger.Debug(operation+" completed", fields...)
}
