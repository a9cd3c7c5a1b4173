package types

import (
	"context"
	"strings"
	"time"
)

// LogLevel is the severity of an entry. Higher is more severe.
type LogLevel int

const (
	DebugLevel LogLevel = iota
	InfoLevel
	WarnLevel
	ErrorLevel
	FatalLevel
)

var levelNames = [...]string{"debug", "info", "warn", "error", "fatal"}

// String returns the lower-case level name; out-of-range levels read as info
func (l LogLevel) String() string {
	if l < DebugLevel || int(l) >= len(levelNames) {
		return "info"
	}
	return levelNames[l]
}

// MarshalText encodes the level by name
func (l LogLevel) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// ParseLevel reads a level name. "warning" is accepted for warn.
func ParseLevel(s string) (LogLevel, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "warning" {
		return WarnLevel, true
	}
	for i, name := range levelNames {
		if name == s {
			return LogLevel(i), true
		}
	}
	return InfoLevel, false
}

// RedactedValue replaces the value of any sensitive field
const RedactedValue = "[REDACTED]"

// SensitiveKeys are matched case-insensitively as substrings of field names.
// Rendering credentials and outbound auth headers fall under them.
var SensitiveKeys = []string{
	"authorization",
	"token",
	"api_key",
	"apikey",
	"secret",
	"password",
	"cookie",
}

// LogEntry is one record handed to adapters. Fields are already redacted.
type LogEntry struct {
	Level     LogLevel               `json:"level"`
	Message   string                 `json:"message"`
	Timestamp time.Time              `json:"timestamp"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
	Context   context.Context        `json:"-"`
}

// LogAdapter writes entries to one destination
type LogAdapter interface {
	Write(entry *LogEntry) error
	Close() error
	Health() error
	Name() string
}

// Logger is what components receive. Adapter management stays on the concrete
// logger owned by the manager.
type Logger interface {
	Debug(message string, fields ...map[string]interface{})
	Info(message string, fields ...map[string]interface{})
	Warn(message string, fields ...map[string]interface{})
	Error(message string, fields ...map[string]interface{})
	Fatal(message string, fields ...map[string]interface{})

	WithContext(ctx context.Context) Logger
	WithField(key string, value interface{}) Logger
	WithFields(fields map[string]interface{}) Logger

	Log(level LogLevel, message string, fields ...map[string]interface{})
	GetLevel() LogLevel
}

// AdapterConfig selects and configures one adapter
type AdapterConfig struct {
	Name    string                 `yaml:"name"`
	Type    string                 `yaml:"type"`
	Enabled bool                   `yaml:"enabled"`
	Options map[string]interface{} `yaml:"options"`
}
