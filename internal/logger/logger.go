package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"
)

// LogLevel represents the severity level of a log message
type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
	FATAL
)

// String returns the string representation of the log level
func (l LogLevel) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	case FATAL:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}

// LogFormat represents the output format for logs
type LogFormat int

const (
	JSONFormat LogFormat = iota
	TextFormat
)

// Fields carries structured key/value context for a log entry
type Fields map[string]interface{}

// LogEntry represents a structured log entry
type LogEntry struct {
	Timestamp string `json:"timestamp"`
	Level     string `json:"level"`
	Message   string `json:"message"`
	Component string `json:"component,omitempty"`
	Caller    string `json:"caller,omitempty"`
	Fields    Fields `json:"fields,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Logger is a leveled structured logger. Child loggers share the parent's
// output and mutex so lines from different components never interleave.
type Logger struct {
	mu        *sync.Mutex
	level     LogLevel
	format    LogFormat
	output    io.Writer
	component string
	fields    Fields
	exit      func(int)
}

// Config holds logger configuration
type Config struct {
	Level     LogLevel
	Format    LogFormat
	Output    io.Writer
	Component string
}

// New creates a new logger with the given configuration
func New(config Config) *Logger {
	if config.Output == nil {
		config.Output = os.Stdout
	}

	return &Logger{
		mu:        &sync.Mutex{},
		level:     config.Level,
		format:    config.Format,
		output:    config.Output,
		component: config.Component,
		exit:      os.Exit,
	}
}

// NewDefault creates a logger with default configuration
func NewDefault() *Logger {
	return New(Config{
		Level:  INFO,
		Format: DetectFormat(os.Stdout),
		Output: os.Stdout,
	})
}

// DetectFormat picks text output for terminals and JSON for everything else
func DetectFormat(w io.Writer) LogFormat {
	f, ok := w.(*os.File)
	if !ok {
		return JSONFormat
	}
	info, err := f.Stat()
	if err != nil {
		return JSONFormat
	}
	if info.Mode()&os.ModeCharDevice != 0 {
		return TextFormat
	}
	return JSONFormat
}

func (l *Logger) clone() *Logger {
	c := *l
	return &c
}

// WithComponent creates a new logger with the specified component name
func (l *Logger) WithComponent(component string) *Logger {
	l.mu.Lock()
	defer l.mu.Unlock()

	c := l.clone()
	c.component = component
	return c
}

// WithFields creates a new logger that adds the given fields to every entry
func (l *Logger) WithFields(fields Fields) *Logger {
	l.mu.Lock()
	defer l.mu.Unlock()

	c := l.clone()
	c.fields = make(Fields, len(l.fields)+len(fields))
	for k, v := range l.fields {
		c.fields[k] = v
	}
	for k, v := range fields {
		c.fields[k] = v
	}
	return c
}

// SetLevel sets the minimum log level
func (l *Logger) SetLevel(level LogLevel) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

// SetFormat sets the log output format
func (l *Logger) SetFormat(format LogFormat) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.format = format
}

// Enabled reports whether entries at the given level are written
func (l *Logger) Enabled(level LogLevel) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return level >= l.level
}

func (l *Logger) log(level LogLevel, message string, fields Fields, err error) {
	l.logDepth(1, level, message, fields, err)
}

// logDepth writes an entry; depth counts the wrapper frames between the
// public entry point and this function.
func (l *Logger) logDepth(depth int, level LogLevel, message string, fields Fields, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if level < l.level {
		return
	}

	entry := LogEntry{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Level:     level.String(),
		Message:   message,
		Component: l.component,
		Caller:    caller(3 + depth),
	}

	if len(l.fields) > 0 || len(fields) > 0 {
		entry.Fields = make(Fields, len(l.fields)+len(fields))
		for k, v := range l.fields {
			entry.Fields[k] = v
		}
		for k, v := range fields {
			entry.Fields[k] = v
		}
	}

	if err != nil {
		entry.Error = err.Error()
	}

	var output string
	switch l.format {
	case JSONFormat:
		jsonBytes, marshalErr := json.Marshal(entry)
		if marshalErr != nil {
			// Unencodable field values; keep the message.
			entry.Fields = Fields{"marshal_error": marshalErr.Error()}
			jsonBytes, _ = json.Marshal(entry)
		}
		output = string(jsonBytes) + "\n"
	default:
		output = formatText(entry)
	}

	l.output.Write([]byte(output))

	if level == FATAL {
		l.exit(1)
	}
}

// caller returns "file.go:line" for the frame skip levels above itself
func caller(skip int) string {
	_, file, line, ok := runtime.Caller(skip)
	if !ok {
		return ""
	}
	return fmt.Sprintf("%s:%d", filepath.Base(file), line)
}

// formatText formats a log entry as human-readable text
func formatText(entry LogEntry) string {
	var b strings.Builder

	fmt.Fprintf(&b, "[%s] %-5s", entry.Timestamp, entry.Level)
	if entry.Component != "" {
		fmt.Fprintf(&b, " [%s]", entry.Component)
	}
	b.WriteString(" ")
	b.WriteString(entry.Message)

	if len(entry.Fields) > 0 {
		keys := make([]string, 0, len(entry.Fields))
		for k := range entry.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, " %s=%v", k, entry.Fields[k])
		}
	}

	if entry.Error != "" {
		fmt.Fprintf(&b, " error=%q", entry.Error)
	}
	if entry.Caller != "" {
		fmt.Fprintf(&b, " (%s)", entry.Caller)
	}

	b.WriteString("\n")
	return b.String()
}

func first(fields []Fields) Fields {
	if len(fields) > 0 {
		return fields[0]
	}
	return nil
}

// Debug logs a debug message
func (l *Logger) Debug(message string, fields ...Fields) {
	l.log(DEBUG, message, first(fields), nil)
}

// Info logs an info message
func (l *Logger) Info(message string, fields ...Fields) {
	l.log(INFO, message, first(fields), nil)
}

// Warn logs a warning message
func (l *Logger) Warn(message string, err error, fields ...Fields) {
	l.log(WARN, message, first(fields), err)
}

// Error logs an error message
func (l *Logger) Error(message string, err error, fields ...Fields) {
	l.log(ERROR, message, first(fields), err)
}

// Fatal logs a fatal message and exits the program
func (l *Logger) Fatal(message string, err error, fields ...Fields) {
	l.log(FATAL, message, first(fields), err)
}

// Convenience methods with formatted messages

// Debugf logs a formatted debug message
func (l *Logger) Debugf(format string, args ...interface{}) {
	l.log(DEBUG, fmt.Sprintf(format, args...), nil, nil)
}

// Infof logs a formatted info message
func (l *Logger) Infof(format string, args ...interface{}) {
	l.log(INFO, fmt.Sprintf(format, args...), nil, nil)
}

// Warnf logs a formatted warning message
func (l *Logger) Warnf(format string, args ...interface{}) {
	l.log(WARN, fmt.Sprintf(format, args...), nil, nil)
}

// Errorf logs a formatted error message
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.log(ERROR, fmt.Sprintf(format, args...), nil, nil)
}

// Fatalf logs a formatted fatal message and exits
func (l *Logger) Fatalf(format string, args ...interface{}) {
	l.log(FATAL, fmt.Sprintf(format, args...), nil, nil)
}
