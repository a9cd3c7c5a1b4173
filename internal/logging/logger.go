package logging

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"webshot/internal/logging/types"
)

// sink is shared between a logger and all loggers derived from it
type sink struct {
	mu         sync.RWMutex
	adapters   map[string]types.LogAdapter
	level      LogLevel
	redactKeys []string
}

// MultiLogger is the main implementation of the Logger interface
type MultiLogger struct {
	sink    *sink
	context context.Context
	fields  map[string]interface{}
}

// NewMultiLogger creates a new MultiLogger instance
func NewMultiLogger() *MultiLogger {
	return &MultiLogger{
		sink: &sink{
			adapters:   make(map[string]types.LogAdapter),
			level:      InfoLevel,
			redactKeys: append([]string(nil), types.SensitiveKeys...),
		},
		context: context.Background(),
		fields:  make(map[string]interface{}),
	}
}

func (l *MultiLogger) Debug(message string, fields ...map[string]interface{}) {
	l.Log(DebugLevel, message, fields...)
}

func (l *MultiLogger) Info(message string, fields ...map[string]interface{}) {
	l.Log(InfoLevel, message, fields...)
}

func (l *MultiLogger) Warn(message string, fields ...map[string]interface{}) {
	l.Log(WarnLevel, message, fields...)
}

func (l *MultiLogger) Error(message string, fields ...map[string]interface{}) {
	l.Log(ErrorLevel, message, fields...)
}

// Fatal logs a fatal message and exits
func (l *MultiLogger) Fatal(message string, fields ...map[string]interface{}) {
	l.Log(FatalLevel, message, fields...)
	l.Close()
	os.Exit(1)
}

// Log logs a message at the specified level
func (l *MultiLogger) Log(level LogLevel, message string, fields ...map[string]interface{}) {
	l.sink.mu.RLock()
	defer l.sink.mu.RUnlock()

	if level < l.sink.level {
		return
	}

	entry := &types.LogEntry{
		Level:     level,
		Message:   message,
		Timestamp: time.Now(),
		Context:   l.context,
		Fields:    redactFields(l.mergeFields(fields...), l.sink.redactKeys),
	}

	// Deterministic adapter order keeps multi-adapter output stable
	names := make([]string, 0, len(l.sink.adapters))
	for name := range l.sink.adapters {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := l.sink.adapters[name].Write(entry); err != nil {
			// stderr, so adapter failures never recurse into the logger
			fmt.Fprintf(os.Stderr, "logging adapter %s error: %v\n", name, err)
		}
	}
}

// WithContext returns a new logger with the specified context
func (l *MultiLogger) WithContext(ctx context.Context) Logger {
	return &MultiLogger{
		sink:    l.sink,
		context: ctx,
		fields:  l.copyFields(),
	}
}

// WithField returns a new logger with the specified field
func (l *MultiLogger) WithField(key string, value interface{}) Logger {
	fields := l.copyFields()
	fields[key] = value

	return &MultiLogger{
		sink:    l.sink,
		context: l.context,
		fields:  fields,
	}
}

// WithFields returns a new logger with the specified fields
func (l *MultiLogger) WithFields(fields map[string]interface{}) Logger {
	mergedFields := l.copyFields()
	for k, v := range fields {
		mergedFields[k] = v
	}

	return &MultiLogger{
		sink:    l.sink,
		context: l.context,
		fields:  mergedFields,
	}
}

// SetLevel sets the minimum log level
func (l *MultiLogger) SetLevel(level LogLevel) {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	l.sink.level = level
}

// GetLevel returns the current log level
func (l *MultiLogger) GetLevel() LogLevel {
	l.sink.mu.RLock()
	defer l.sink.mu.RUnlock()
	return l.sink.level
}

// AddRedactKeys extends the list of field names whose values are masked
func (l *MultiLogger) AddRedactKeys(keys ...string) {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	for _, k := range keys {
		k = strings.ToLower(strings.TrimSpace(k))
		if k != "" {
			l.sink.redactKeys = append(l.sink.redactKeys, k)
		}
	}
}

// AddAdapter adds a new log adapter
func (l *MultiLogger) AddAdapter(adapter types.LogAdapter) error {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()

	name := adapter.Name()
	if _, exists := l.sink.adapters[name]; exists {
		return fmt.Errorf("adapter %s already exists", name)
	}

	l.sink.adapters[name] = adapter
	return nil
}

// RemoveAdapter removes a log adapter
func (l *MultiLogger) RemoveAdapter(adapterName string) error {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()

	adapter, exists := l.sink.adapters[adapterName]
	if !exists {
		return fmt.Errorf("adapter %s not found", adapterName)
	}

	if err := adapter.Close(); err != nil {
		return fmt.Errorf("failed to close adapter %s: %w", adapterName, err)
	}

	delete(l.sink.adapters, adapterName)
	return nil
}

// Health returns the first adapter health failure, if any
func (l *MultiLogger) Health() error {
	l.sink.mu.RLock()
	defer l.sink.mu.RUnlock()

	for name, adapter := range l.sink.adapters {
		if err := adapter.Health(); err != nil {
			return fmt.Errorf("adapter %s: %w", name, err)
		}
	}
	return nil
}

// Close closes all adapters
func (l *MultiLogger) Close() error {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()

	var errors []string
	for name, adapter := range l.sink.adapters {
		if err := adapter.Close(); err != nil {
			errors = append(errors, fmt.Sprintf("adapter %s: %v", name, err))
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("failed to close adapters: %s", strings.Join(errors, ", "))
	}

	return nil
}

func (l *MultiLogger) copyFields() map[string]interface{} {
	fields := make(map[string]interface{}, len(l.fields))
	for k, v := range l.fields {
		fields[k] = v
	}
	return fields
}

func (l *MultiLogger) mergeFields(additionalFields ...map[string]interface{}) map[string]interface{} {
	fields := l.copyFields()

	for _, fieldMap := range additionalFields {
		for k, v := range fieldMap {
			fields[k] = v
		}
	}

	return fields
}

// isSensitive reports whether a field name matches one of the redaction keys
func isSensitive(key string, redactKeys []string) bool {
	lower := strings.ToLower(key)
	for _, k := range redactKeys {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}

// redactFields returns a copy of fields with sensitive values masked, descending
// into nested string maps
func redactFields(fields map[string]interface{}, redactKeys []string) map[string]interface{} {
	if len(fields) == 0 {
		return fields
	}

	out := make(map[string]interface{}, len(fields))
	for k, v := range fields {
		if isSensitive(k, redactKeys) {
			out[k] = types.RedactedValue
			continue
		}

		switch nested := v.(type) {
		case map[string]interface{}:
			out[k] = redactFields(nested, redactKeys)
		case map[string]string:
			masked := make(map[string]string, len(nested))
			for nk, nv := range nested {
				if isSensitive(nk, redactKeys) {
					masked[nk] = types.RedactedValue
				} else {
					masked[nk] = nv
				}
			}
			out[k] = masked
		case http.Header:
			out[k] = redactMultiValue(nested, redactKeys)
		case map[string][]string:
			out[k] = redactMultiValue(nested, redactKeys)
		default:
			out[k] = v
		}
	}
	return out
}

func redactMultiValue(values map[string][]string, redactKeys []string) map[string][]string {
	masked := make(map[string][]string, len(values))
	for k, v := range values {
		if isSensitive(k, redactKeys) {
			masked[k] = []string{types.RedactedValue}
		} else {
			masked[k] = v
		}
	}
	return masked
}

// ParseLogLevel parses a level name, defaulting to info
func ParseLogLevel(levelStr string) LogLevel {
	level, _ := types.ParseLevel(levelStr)
	return level
}
