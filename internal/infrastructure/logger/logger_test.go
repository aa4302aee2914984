package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"INFO", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"unknown", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		if got := parseLevel(tt.input); got != tt.want {
			t.Fatalf("parseLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestNewWithWriterJSON(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(Config{Format: "json", Level: "debug"}, &buf)
	log.Info().Str("balance_id", "bal-1").Msg("hello")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected json output, got %q: %v", buf.String(), err)
	}
	if entry["message"] != "hello" || entry["balance_id"] != "bal-1" || entry["service"] != "cashledger" {
		t.Fatalf("unexpected entry: %v", entry)
	}
	if _, ok := entry["time"]; !ok {
		t.Fatalf("expected timestamp in %v", entry)
	}
}

func TestNewWithWriterConsole(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(Config{Format: "console", Level: "info"}, &buf)
	log.Info().Msg("hello")

	out := buf.String()
	if strings.HasPrefix(strings.TrimSpace(out), "{") || !strings.Contains(out, "hello") {
		t.Fatalf("expected console output, got %q", out)
	}
}

func TestLevelFiltersDebug(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(Config{Format: "json", Level: "warn"}, &buf)
	log.Info().Msg("dropped")

	if buf.Len() != 0 {
		t.Fatalf("expected info to be filtered at warn level, got %q", buf.String())
	}
}
