package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Iron-Ham/leash/internal/config"
)

func TestDemoCommandRegistered(t *testing.T) {
	for _, cmd := range rootCmd.Commands() {
		if cmd.Name() == "demo" {
			return
		}
	}
	t.Error("expected subcommand demo not found")
}

func TestNewEngineLoggerDisabled(t *testing.T) {
	cfg := &config.Config{
		Logging: config.LoggingConfig{Enabled: false, Dir: t.TempDir()},
	}

	logger, err := newEngineLogger(cfg)
	if err != nil {
		t.Fatalf("newEngineLogger() error: %v", err)
	}
	defer logger.Close()

	logger.Info("discarded")
	entries, err := os.ReadDir(cfg.Logging.Dir)
	if err != nil {
		t.Fatalf("ReadDir() error: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("disabled logging wrote %d files, want 0", len(entries))
	}
}

func TestNewEngineLoggerRotatingFile(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.Config{
		Logging: config.LoggingConfig{
			Enabled:    true,
			Level:      "debug",
			Dir:        dir,
			MaxSizeMB:  1,
			MaxBackups: 2,
		},
	}

	logger, err := newEngineLogger(cfg)
	if err != nil {
		t.Fatalf("newEngineLogger() error: %v", err)
	}
	logger.Debug("engine started")
	if err := logger.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "debug.log"))
	if err != nil {
		t.Fatalf("log file not written: %v", err)
	}
	if len(data) == 0 {
		t.Error("log file is empty")
	}
}

func TestNewEngineLoggerStderrFallback(t *testing.T) {
	cfg := &config.Config{
		Logging: config.LoggingConfig{Enabled: true, Level: "info"},
	}

	logger, err := newEngineLogger(cfg)
	if err != nil {
		t.Fatalf("newEngineLogger() error: %v", err)
	}
	defer logger.Close()
	if logger == nil {
		t.Fatal("newEngineLogger() returned nil logger")
	}
}
