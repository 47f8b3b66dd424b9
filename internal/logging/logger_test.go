package logging

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		level   slog.Level
		enabled bool
		wantErr bool
	}{
		{"debug", slog.LevelDebug, true, false},
		{"INFO", slog.LevelInfo, true, false},
		{"warn", slog.LevelWarn, true, false},
		{"error", slog.LevelError, true, false},
		{"off", 0, false, false},
		{"loud", 0, false, true},
	}
	for _, tt := range tests {
		level, enabled, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if level != tt.level || enabled != tt.enabled {
			t.Errorf("ParseLevel(%q) = (%v, %v), want (%v, %v)", tt.in, level, enabled, tt.level, tt.enabled)
		}
	}
}

func TestNewWithWriter_RenamesErrorKey(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, slog.LevelInfo)
	logger.Debug("hidden")
	logger.Warn("check failed", "error", errors.New("boom"))

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("debug line should be filtered: %q", out)
	}
	if !strings.Contains(out, "err=boom") {
		t.Errorf("expected err=boom in %q", out)
	}
}
