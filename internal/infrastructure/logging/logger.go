package logging

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Logger interface for structured, leveled logging
type Logger interface {
	Debug(msg string, fields ...interface{})
	Info(msg string, fields ...interface{})
	Warn(msg string, fields ...interface{})
	Error(msg string, fields ...interface{})
}

// Level is the minimum severity a DefaultLogger emits
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// String returns the level token written to each entry
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

// ParseLevel converts a config value such as "debug" or "WARN" to a Level
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "", "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

// DefaultLogger writes one JSON object per line. The zero value logs every
// level through the standard library's default logger.
type DefaultLogger struct {
	min Level
	out *log.Logger
}

// NewDefaultLogger creates a new default logger instance
func NewDefaultLogger() Logger {
	return &DefaultLogger{}
}

// NewLogger creates a logger that drops entries below min and writes to w
func NewLogger(min Level, w io.Writer) *DefaultLogger {
	return &DefaultLogger{min: min, out: log.New(w, "", log.LstdFlags)}
}

// NewFileLogger logs to stdout and, when path is set, appends to that file as well.
// The returned closer releases the file.
func NewFileLogger(min Level, path string) (*DefaultLogger, io.Closer, error) {
	if path == "" {
		return NewLogger(min, os.Stdout), nopCloser{}, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return NewLogger(min, io.MultiWriter(os.Stdout, f)), f, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// logEntry represents a structured log entry
type logEntry struct {
	Timestamp string                 `json:"timestamp"`
	Level     string                 `json:"level"`
	Message   string                 `json:"message"`
	Fields    map[string]interface{} `json:"fields"`
}

// fieldsToMap converts the variadic fields slice to a map
// Expected format: key1, value1, key2, value2, ...
func fieldsToMap(fields []interface{}) map[string]interface{} {
	result := make(map[string]interface{}, len(fields)/2)

	for i := 0; i < len(fields); i += 2 {
		if i+1 >= len(fields) {
			result[fmt.Sprintf("field_%d", i/2)] = fields[i]
			break
		}
		key, ok := fields[i].(string)
		if !ok {
			result[fmt.Sprintf("field_%d", i/2)] = fields[i]
			result[fmt.Sprintf("field_%d_value", i/2)] = fields[i+1]
			continue
		}
		if err, isErr := fields[i+1].(error); isErr {
			result[key] = err.Error()
			continue
		}
		result[key] = fields[i+1]
	}

	return result
}

func (l *DefaultLogger) println(line string) {
	if l.out != nil {
		l.out.Println(line)
		return
	}
	log.Println(line)
}

// logStructured logs a message with structured JSON format
func (l *DefaultLogger) logStructured(level Level, msg string, fields []interface{}) {
	if level < l.min {
		return
	}

	entry := logEntry{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Level:     level.String(),
		Message:   msg,
		Fields:    fieldsToMap(fields),
	}

	jsonBytes, err := json.Marshal(entry)
	if err != nil {
		fallbackFields := fmt.Sprintf("%v", fields)
		entry.Fields = map[string]interface{}{
			"original_fields": fallbackFields,
			"marshal_error":   err.Error(),
		}
		if jsonBytes, err = json.Marshal(entry); err != nil {
			l.println(fmt.Sprintf("[%s] %s %s", level, msg, fallbackFields))
			return
		}
	}

	l.println(string(jsonBytes))
}

func (l *DefaultLogger) Debug(msg string, fields ...interface{}) {
	l.logStructured(LevelDebug, msg, fields)
}

func (l *DefaultLogger) Info(msg string, fields ...interface{}) {
	l.logStructured(LevelInfo, msg, fields)
}

func (l *DefaultLogger) Warn(msg string, fields ...interface{}) {
	l.logStructured(LevelWarn, msg, fields)
}

func (l *DefaultLogger) Error(msg string, fields ...interface{}) {
	l.logStructured(LevelError, msg, fields)
}

// RepositoryError interface for error classification (to avoid circular imports)
type RepositoryError interface {
	Error() string
	GetCode() string
	IsRetryable() bool
	GetContext() map[string]string
	GetTimestamp() time.Time
}

// Kinded is implemented by errors that carry a failure stage, such as selection query errors
type Kinded interface {
	error
	KindName() string
}

func appendContext(fields []interface{}, context map[string]interface{}) []interface{} {
	for k, v := range context {
		fields = append(fields, k, v)
	}
	return fields
}

// LogRepositoryError logs storage errors with their classification
func LogRepositoryError(logger Logger, err error, operation string, context map[string]interface{}) {
	if logger == nil {
		logger = NewDefaultLogger()
	}

	if repoErr, ok := err.(RepositoryError); ok {
		fields := []interface{}{
			"operation", operation,
			"error_code", repoErr.GetCode(),
			"retryable", repoErr.IsRetryable(),
			"timestamp", repoErr.GetTimestamp(),
		}
		for k, v := range repoErr.GetContext() {
			fields = append(fields, k, v)
		}
		logger.Error(fmt.Sprintf("Repository error: %s", err.Error()), appendContext(fields, context)...)
		return
	}

	fields := []interface{}{
		"operation", operation,
		"error_type", fmt.Sprintf("%T", err),
	}
	logger.Error(fmt.Sprintf("Unexpected error: %s", err.Error()), appendContext(fields, context)...)
}

// LogRepositoryOperation logs successful storage operations for monitoring
func LogRepositoryOperation(logger Logger, operation string, duration time.Duration, context map[string]interface{}) {
	if logger == nil {
		logger = NewDefaultLogger()
	}

	fields := []interface{}{
		"operation", operation,
		"duration_ms", duration.Milliseconds(),
	}
	logger.Info(fmt.Sprintf("Repository operation completed: %s", operation), appendContext(fields, context)...)
}

// LogCommandError logs a failed UI command. Storage and selection errors keep
// their classification fields.
func LogCommandError(logger Logger, err error, command string, context map[string]interface{}) {
	if logger == nil {
		logger = NewDefaultLogger()
	}

	fields := []interface{}{"command", command}
	var repoErr RepositoryError
	var kinded Kinded
	switch {
	case errors.As(err, &repoErr):
		fields = append(fields, "error_code", repoErr.GetCode(), "retryable", repoErr.IsRetryable())
	case errors.As(err, &kinded):
		fields = append(fields, "error_kind", kinded.KindName())
	default:
		fields = append(fields, "error_type", fmt.Sprintf("%T", err))
	}
	logger.Error(fmt.Sprintf("Command failed: %s", err.Error()), appendContext(fields, context)...)
}

// LogCommand logs a completed UI command
func LogCommand(logger Logger, command string, duration time.Duration, context map[string]interface{}) {
	if logger == nil {
		logger = NewDefaultLogger()
	}

	fields := []interface{}{
		"command", command,
		"duration_ms", duration.Milliseconds(),
	}
	logger.Info(fmt.Sprintf("Command completed: %s", command), appendContext(fields, context)...)
}
