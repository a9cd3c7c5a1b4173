package types

import (
	"encoding/json"
	"testing"
)

func TestParseLevel(t *testing.T) {
	if l, ok := ParseLevel(" Warning "); !ok || l != WarnLevel {
		t.Errorf("ParseLevel(warning) = %v, %v", l, ok)
	}
	if l, ok := ParseLevel("loud"); ok || l != InfoLevel {
		t.Errorf("ParseLevel(loud) = %v, %v", l, ok)
	}
}

func TestLogLevel_MarshalText(t *testing.T) {
	data, err := json.Marshal(map[string]LogLevel{"level": ErrorLevel})
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"level":"error"}` {
		t.Errorf("json = %s", data)
	}
	if LogLevel(42).String() != "info" {
		t.Error("out of range level should read as info")
	}
}
