package errors

import (
	"fmt"

	"zeitig/internal/infrastructure/logging"
)

// LoggerBridge forwards retry messages to a structured logger
type LoggerBridge struct {
	logger logging.Logger
}

// NewLoggerBridge adapts logger to RetryLogger
func NewLoggerBridge(logger logging.Logger) RetryLogger {
	return &LoggerBridge{logger: logger}
}

// Printf logs the formatted message at warn level
func (b *LoggerBridge) Printf(format string, v ...any) {
	if b.logger != nil {
		b.logger.Warn(fmt.Sprintf(format, v...), "component", "retry")
	}
}
