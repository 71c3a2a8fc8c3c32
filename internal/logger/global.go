package logger

import (
	"fmt"
	"os"
	"strings"
	"sync/atomic"
)

var globalLogger atomic.Pointer[Logger]

func init() {
	globalLogger.Store(NewDefault())
	configureFromEnv()
}

// configureFromEnv configures the global logger from LOG_LEVEL and LOG_FORMAT
func configureFromEnv() {
	Configure(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"))
}

// Configure applies a level and format name to the global logger. Unknown or
// empty values leave the current setting untouched.
func Configure(level, format string) {
	l := globalLogger.Load()
	if lvl, ok := ParseLevel(level); ok {
		l.SetLevel(lvl)
	}
	if strings.EqualFold(strings.TrimSpace(format), "auto") {
		l.SetFormat(DetectFormat(l.output))
		return
	}
	if f, ok := ParseFormat(format); ok {
		l.SetFormat(f)
	}
}

// ParseLevel parses a log level string
func ParseLevel(level string) (LogLevel, bool) {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG":
		return DEBUG, true
	case "INFO":
		return INFO, true
	case "WARN", "WARNING":
		return WARN, true
	case "ERROR":
		return ERROR, true
	case "FATAL":
		return FATAL, true
	default:
		return INFO, false
	}
}

// ParseFormat parses a log format string
func ParseFormat(format string) (LogFormat, bool) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json":
		return JSONFormat, true
	case "text":
		return TextFormat, true
	default:
		return JSONFormat, false
	}
}

// GetGlobalLogger returns the global logger instance
func GetGlobalLogger() *Logger {
	return globalLogger.Load()
}

// SetGlobalLogger sets the global logger instance
func SetGlobalLogger(logger *Logger) {
	globalLogger.Store(logger)
}

// Component returns a child of the global logger for the named component
func Component(name string) *Logger {
	return globalLogger.Load().WithComponent(name)
}

// Debug logs a debug message using the global logger
func Debug(message string, fields ...Fields) {
	globalLogger.Load().logDepth(0, DEBUG, message, first(fields), nil)
}

// Info logs an info message using the global logger
func Info(message string, fields ...Fields) {
	globalLogger.Load().logDepth(0, INFO, message, first(fields), nil)
}

// Warn logs a warning message using the global logger
func Warn(message string, err error, fields ...Fields) {
	globalLogger.Load().logDepth(0, WARN, message, first(fields), err)
}

// Error logs an error message using the global logger
func Error(message string, err error, fields ...Fields) {
	globalLogger.Load().logDepth(0, ERROR, message, first(fields), err)
}

// Fatal logs a fatal message using the global logger and exits
func Fatal(message string, err error, fields ...Fields) {
	globalLogger.Load().logDepth(0, FATAL, message, first(fields), err)
}

// Infof logs a formatted info message using the global logger
func Infof(format string, args ...interface{}) {
	globalLogger.Load().logDepth(0, INFO, fmt.Sprintf(format, args...), nil, nil)
}

// Warnf logs a formatted warning message using the global logger
func Warnf(format string, args ...interface{}) {
	globalLogger.Load().logDepth(0, WARN, fmt.Sprintf(format, args...), nil, nil)
}

// Errorf logs a formatted error message using the global logger
func Errorf(format string, args ...interface{}) {
	globalLogger.Load().logDepth(0, ERROR, fmt.Sprintf(format, args...), nil, nil)
}

// Fatalf logs a formatted fatal message using the global logger and exits
func Fatalf(format string, args ...interface{}) {
	globalLogger.Load().logDepth(0, FATAL, fmt.Sprintf(format, args...), nil, nil)
}
