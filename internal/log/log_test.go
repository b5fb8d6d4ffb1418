package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNew_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	logger, closer := New(Options{Level: "warn"}, &buf)
	defer closer.Close()

	logger.Info("hidden")
	logger.Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("info line should be filtered at warn level")
	}
	if !strings.Contains(out, "shown") {
		t.Error("warn line missing")
	}
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger, _ := New(Options{JSON: true}, &buf)

	logger.Info("gaze session started", "session_id", "abc")

	var line map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("output is not JSON: %v (%s)", err, buf.String())
	}
	if line["session_id"] != "abc" {
		t.Errorf("session_id = %v, want abc", line["session_id"])
	}
}

func TestNew_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gaze.log")

	var buf bytes.Buffer
	logger, closer := New(Options{File: path}, &buf)
	logger.Info("written twice")
	if err := closer.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if !strings.Contains(string(data), "written twice") {
		t.Error("log file missing line")
	}
	if !strings.Contains(buf.String(), "written twice") {
		t.Error("stdout copy missing line")
	}
}
