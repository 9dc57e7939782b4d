package log

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

// TestSetDefaults verifies default logger configuration.
func TestSetDefaults(t *testing.T) {
	conf := SetDefaults()
	if conf.Output != "stdout" {
		t.Fatalf("expected output stdout, got %s", conf.Output)
	}
	if conf.Level != "INFO" {
		t.Fatalf("expected level INFO, got %s", conf.Level)
	}
	if conf.Filename == "" {
		t.Fatal("expected default filename to be set")
	}
}

// TestConfValidate verifies config validation and normalization.
func TestConfValidate(t *testing.T) {
	conf := &Conf{Output: "file", Path: t.TempDir()}
	if err := conf.Validate(); err != nil {
		t.Fatalf("validate should pass: %v", err)
	}
	if conf.RotateSize <= 0 || conf.RotateNum <= 0 || conf.KeepDays <= 0 {
		t.Fatal("expected file rotation values to be auto-filled")
	}

	bad := &Conf{Output: "file"}
	if err := bad.Validate(); err == nil {
		t.Fatal("expected error for file output without path")
	}
}

// TestNewFileOutput verifies file output works with the slog backend.
func TestNewFileOutput(t *testing.T) {
	tmpDir := t.TempDir()
	conf := &Conf{
		Output:   "file",
		Path:     tmpDir,
		Filename: "portal.log",
		Level:    "INFO",
	}

	l, err := New(conf)
	if err != nil {
		t.Fatalf("New() should not fail: %v", err)
	}

	l.Info("file output test")
	content, err := os.ReadFile(filepath.Join(tmpDir, "portal.log"))
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	if len(content) == 0 {
		t.Fatal("expected log file content to be non-empty")
	}
}

// TestParseLogLevel verifies log-level parsing behavior.
func TestParseLogLevel(t *testing.T) {
	if parseLogLevel("debug") != slog.LevelDebug {
		t.Fatal("expected DEBUG to map to slog.LevelDebug")
	}
	if parseLogLevel("warn") != slog.LevelWarn {
		t.Fatal("expected WARN to map to slog.LevelWarn")
	}
	if parseLogLevel("unknown") != slog.LevelInfo {
		t.Fatal("expected unknown level to map to slog.LevelInfo")
	}
}
