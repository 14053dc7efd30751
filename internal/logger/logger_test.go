package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestNewWithWriter_Levels(t *testing.T) {
	tests := []struct {
		level     string
		debugSeen bool
	}{
		{"debug", true},
		{"info", false},
		{"warn", false},
		{"error", false},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			log := NewWithWriter(tt.level, &buf)
			log.Debug("debug message")

			seen := strings.Contains(buf.String(), "debug message")
			if seen != tt.debugSeen {
				t.Errorf("level %q: debug message seen = %v, want %v", tt.level, seen, tt.debugSeen)
			}
		})
	}
}

func TestLogger_JSONKeys(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("info", &buf)
	log.WithModule("search").WithField("query", "naps").Info("indexed")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}

	for _, key := range []string{"timestamp", "level", "message", "module", "query"} {
		if _, ok := entry[key]; !ok {
			t.Errorf("log entry missing %q key: %v", key, entry)
		}
	}

	if entry["level"] != "info" {
		t.Errorf("level = %v, want info", entry["level"])
	}
	if entry["module"] != "search" {
		t.Errorf("module = %v, want search", entry["module"])
	}
}

func TestLogger_WarningLevelName(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("info", &buf)
	log.Warn("careful")

	if !strings.Contains(buf.String(), `"level":"warning"`) {
		t.Errorf("warn level should be renamed to warning, got %s", buf.String())
	}
}
