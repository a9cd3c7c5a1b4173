package logging

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"webshot/internal/config"
	"webshot/internal/logging/adapters"
	"webshot/internal/logging/types"
)

func newBufferedLogger(t *testing.T, format string) (*MultiLogger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	logger := NewMultiLogger()
	if err := logger.AddAdapter(adapters.NewStdoutAdapter("buf", adapters.StdoutConfig{Format: format, Writer: &buf})); err != nil {
		t.Fatalf("AddAdapter: %v", err)
	}
	return logger, &buf
}

func decodeLine(t *testing.T, line string) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	if err := json.Unmarshal([]byte(line), &out); err != nil {
		t.Fatalf("invalid JSON log line %q: %v", line, err)
	}
	return out
}

func TestMultiLogger_RedactsSensitiveFields(t *testing.T) {
	logger, buf := newBufferedLogger(t, "json")

	headers := http.Header{}
	headers.Set("Authorization", "Bearer super-secret")
	headers.Set("Content-Type", "application/json")

	logger.Info("calling rendering service", map[string]interface{}{
		"api_token": "super-secret",
		"endpoint":  "https://example.test/screenshot",
		"headers":   headers,
		"nested": map[string]interface{}{
			"password": "hunter2",
			"keep":     "visible",
		},
	})

	out := buf.String()
	if strings.Contains(out, "super-secret") || strings.Contains(out, "hunter2") {
		t.Fatalf("secret leaked into log output: %s", out)
	}

	entry := decodeLine(t, strings.TrimSpace(out))
	if entry["api_token"] != types.RedactedValue {
		t.Errorf("api_token = %v, want redacted", entry["api_token"])
	}
	if entry["endpoint"] != "https://example.test/screenshot" {
		t.Errorf("endpoint was altered: %v", entry["endpoint"])
	}
	nested := entry["nested"].(map[string]interface{})
	if nested["keep"] != "visible" {
		t.Errorf("non-sensitive nested value altered: %v", nested["keep"])
	}
}

func TestMultiLogger_RedactsDerivedLoggerFields(t *testing.T) {
	logger, buf := newBufferedLogger(t, "json")
	logger.AddRedactKeys("account_id")

	logger.WithField("account_id", "abc123").Info("hello")

	if strings.Contains(buf.String(), "abc123") {
		t.Fatalf("custom redact key not applied: %s", buf.String())
	}
}

func TestMultiLogger_LevelFiltering(t *testing.T) {
	logger, buf := newBufferedLogger(t, "text")
	logger.SetLevel(WarnLevel)

	logger.Debug("debug line")
	logger.Info("info line")
	logger.Warn("warn line", map[string]interface{}{"b": 2, "a": 1})

	out := buf.String()
	if strings.Contains(out, "debug line") || strings.Contains(out, "info line") {
		t.Fatalf("lines below level were written: %s", out)
	}
	if !strings.Contains(out, "[WARN] warn line a=1 b=2") {
		t.Fatalf("unexpected text output: %s", out)
	}
}

func TestMultiLogger_DuplicateAdapter(t *testing.T) {
	logger, _ := newBufferedLogger(t, "json")
	err := logger.AddAdapter(adapters.NewStdoutAdapter("buf", adapters.StdoutConfig{}))
	if err == nil {
		t.Fatal("expected duplicate adapter error")
	}
	if err := logger.RemoveAdapter("missing"); err == nil {
		t.Fatal("expected error removing unknown adapter")
	}
}

func TestParseLogLevel(t *testing.T) {
	cases := map[string]LogLevel{
		"debug":   DebugLevel,
		"INFO":    InfoLevel,
		"warning": WarnLevel,
		"error":   ErrorLevel,
		"fatal":   FatalLevel,
		"bogus":   InfoLevel,
	}
	for in, want := range cases {
		if got := ParseLogLevel(in); got != want {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestManager_InitializeFromAdapters(t *testing.T) {
	cfg := config.Default()
	cfg.Logging.Level = "debug"
	cfg.Logging.Adapters = append(cfg.Logging.Adapters, struct {
		Name    string                 `yaml:"name"`
		Type    string                 `yaml:"type"`
		Enabled bool                   `yaml:"enabled"`
		Options map[string]interface{} `yaml:"options"`
	}{
		Name:    "file",
		Type:    "file",
		Enabled: true,
		Options: map[string]interface{}{"file_path": t.TempDir() + "/logs/app.log"},
	})

	m := NewManager()
	if err := m.Initialize(cfg); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	defer m.Close()

	if m.GetLogger().GetLevel() != DebugLevel {
		t.Errorf("level = %v, want debug", m.GetLogger().GetLevel())
	}
	if err := m.Health(); err != nil {
		t.Errorf("Health: %v", err)
	}
}

func TestManager_UnknownAdapterType(t *testing.T) {
	cfg := config.Default()
	cfg.Logging.Adapters = append(cfg.Logging.Adapters, struct {
		Name    string                 `yaml:"name"`
		Type    string                 `yaml:"type"`
		Enabled bool                   `yaml:"enabled"`
		Options map[string]interface{} `yaml:"options"`
	}{Name: "x", Type: "betterstack", Enabled: true})

	if err := NewManager().Initialize(cfg); err == nil {
		t.Fatal("expected error for unsupported adapter type")
	}
}

func TestSetGlobalLogger(t *testing.T) {
	logger, buf := newBufferedLogger(t, "json")
	SetGlobalLogger(logger)
	t.Cleanup(func() { SetGlobalLogger(Nop()) })

	GetGlobalLogger().Info("routed", map[string]interface{}{"k": "v"})
	if entry := decodeLine(t, strings.TrimSpace(buf.String())); entry["message"] != "routed" {
		t.Errorf("global logger did not reach the installed adapter: %v", entry)
	}

	SetGlobalLogger(Nop())
	buf.Reset()
	GetGlobalLogger().Error("silent", nil)
	if buf.Len() != 0 {
		t.Errorf("nop global logger wrote %q", buf.String())
	}
}
