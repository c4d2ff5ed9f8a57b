package logger

import (
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"info", zapcore.InfoLevel},
		{"warn", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"", zapcore.InfoLevel},
		{"bogus", zapcore.InfoLevel},
	}

	for _, tt := range tests {
		if got := parseLevel(tt.in); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestFileOutput(t *testing.T) {
	tmpDir := t.TempDir()
	logFile := filepath.Join(tmpDir, "viewer.log")

	cfg := DefaultFileConfig(logFile)
	cfg.Compress = false

	if err := InitWithFileConfig("debug", cfg, false); err != nil {
		t.Fatalf("init failed: %v", err)
	}
	defer Sync()

	Info("atlas ready")
	Sugar.Debugf("mesh rebuilt with %d segments", 32)
	Sync()

	data, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	if len(data) == 0 {
		t.Error("log file is empty")
	}
}

func TestNopBeforeInit(t *testing.T) {
	// Package-level helpers must be safe before Init.
	Debug("ignored")
	Warn("ignored")
	Error("ignored")
	Sync()
}
