package logging

import (
	"fmt"
	"strings"
)

// GooseLogger routes migration output into a Logger. It satisfies goose.Logger.
type GooseLogger struct {
	logger Logger
}

// NewGooseLogger wraps logger for use with goose.SetLogger
func NewGooseLogger(logger Logger) *GooseLogger {
	if logger == nil {
		logger = NewDefaultLogger()
	}
	return &GooseLogger{logger: logger}
}

// Printf logs migration progress at info level
func (g *GooseLogger) Printf(format string, v ...any) {
	g.logger.Info(strings.TrimSpace(fmt.Sprintf(format, v...)), "source", "goose")
}

// Fatalf logs at error level. It does not exit the process; goose returns
// the error to its caller as well.
func (g *GooseLogger) Fatalf(format string, v ...any) {
	g.logger.Error(strings.TrimSpace(fmt.Sprintf(format, v...)), "source", "goose", "level", "fatal")
}
