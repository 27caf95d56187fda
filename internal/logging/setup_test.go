package logging

import (
	"bytes"
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
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseLevel(tt.in); got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestSetup_JSONToWriter(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	logger, closer, err := Setup(Options{Level: "debug", Format: "json", Output: &buf})
	if err != nil {
		t.Fatalf("Setup() error = %v", err)
	}
	defer closer.Close()

	logger.Debug("hello", Tool("list_tasks"))
	if !strings.Contains(buf.String(), `"tool":"list_tasks"`) {
		t.Errorf("expected JSON output with tool attribute, got %q", buf.String())
	}
}

func TestSetup_File(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	path := filepath.Join(t.TempDir(), "logs", "server.log")
	var buf bytes.Buffer
	logger, closer, err := Setup(Options{File: path, Output: &buf})
	if err != nil {
		t.Fatalf("Setup() error = %v", err)
	}

	logger.Info("written to both")
	if err := closer.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	if !strings.Contains(string(data), "written to both") {
		t.Errorf("log file missing record: %q", string(data))
	}
	if !strings.Contains(buf.String(), "written to both") {
		t.Errorf("writer missing record: %q", buf.String())
	}
}
