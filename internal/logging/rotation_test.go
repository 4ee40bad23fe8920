package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestRotatingWriterBasicWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "debug.log")

	rw, err := NewRotatingWriter(path, RotationConfig{MaxSizeMB: 1})
	if err != nil {
		t.Fatalf("NewRotatingWriter() error: %v", err)
	}
	defer rw.Close()

	data := []byte("hello log\n")
	n, err := rw.Write(data)
	if err != nil {
		t.Fatalf("Write() error: %v", err)
	}
	if n != len(data) {
		t.Errorf("Write() = %d bytes, want %d", n, len(data))
	}
	if rw.CurrentSize() != int64(len(data)) {
		t.Errorf("CurrentSize() = %d, want %d", rw.CurrentSize(), len(data))
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Errorf("file contents = %q, want %q", got, data)
	}
}

func TestRotatingWriterAppendsToExistingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "debug.log")

	if err := os.WriteFile(path, []byte("existing\n"), 0644); err != nil {
		t.Fatalf("failed to seed log file: %v", err)
	}

	rw, err := NewRotatingWriter(path, RotationConfig{MaxSizeMB: 1})
	if err != nil {
		t.Fatalf("NewRotatingWriter() error: %v", err)
	}
	defer rw.Close()

	if rw.CurrentSize() != int64(len("existing\n")) {
		t.Errorf("CurrentSize() = %d, want %d", rw.CurrentSize(), len("existing\n"))
	}

	if _, err := rw.Write([]byte("new\n")); err != nil {
		t.Fatalf("Write() error: %v", err)
	}

	got, _ := os.ReadFile(path)
	if string(got) != "existing\nnew\n" {
		t.Errorf("file contents = %q, want %q", got, "existing\nnew\n")
	}
}

// smallRotatingWriter returns a writer with a tiny rotation threshold so
// tests can trigger rotation without writing megabytes.
func smallRotatingWriter(t *testing.T, dir string, maxBackups int, compress bool) *RotatingWriter {
	t.Helper()

	rw, err := NewRotatingWriter(filepath.Join(dir, "debug.log"), RotationConfig{
		MaxSizeMB:  1,
		MaxBackups: maxBackups,
		Compress:   compress,
	})
	if err != nil {
		t.Fatalf("NewRotatingWriter() error: %v", err)
	}
	// Shrink the threshold below a single test write.
	rw.maxSizeB = 64
	return rw
}

func TestRotationCreatesBackup(t *testing.T) {
	dir := t.TempDir()
	rw := smallRotatingWriter(t, dir, 2, false)
	defer rw.Close()

	line := strings.Repeat("x", 40) + "\n"
	for i := 0; i < 4; i++ {
		if _, err := rw.Write([]byte(line)); err != nil {
			t.Fatalf("Write() #%d error: %v", i, err)
		}
	}

	if _, err := os.Stat(filepath.Join(dir, "debug.log.1")); err != nil {
		t.Errorf("expected backup debug.log.1 to exist: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "debug.log")); err != nil {
		t.Errorf("expected active debug.log to exist: %v", err)
	}
}

func TestRotationRespectsMaxBackups(t *testing.T) {
	dir := t.TempDir()
	rw := smallRotatingWriter(t, dir, 1, false)
	defer rw.Close()

	line := strings.Repeat("x", 40) + "\n"
	for i := 0; i < 8; i++ {
		if _, err := rw.Write([]byte(line)); err != nil {
			t.Fatalf("Write() #%d error: %v", i, err)
		}
	}

	if _, err := os.Stat(filepath.Join(dir, "debug.log.1")); err != nil {
		t.Errorf("expected debug.log.1 to exist: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "debug.log.2")); err == nil {
		t.Error("debug.log.2 exists, want at most 1 backup")
	}
}

func TestRotationCompression(t *testing.T) {
	dir := t.TempDir()
	rw := smallRotatingWriter(t, dir, 2, true)
	defer rw.Close()

	line := strings.Repeat("x", 40) + "\n"
	for i := 0; i < 4; i++ {
		if _, err := rw.Write([]byte(line)); err != nil {
			t.Fatalf("Write() #%d error: %v", i, err)
		}
	}

	// Compression runs asynchronously; poll briefly for the gz file.
	gzPath := filepath.Join(dir, "debug.log.1.gz")
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if _, err := os.Stat(gzPath); err == nil {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Errorf("compressed backup %s never appeared", gzPath)
}

func TestWriteAfterCloseFails(t *testing.T) {
	dir := t.TempDir()
	rw, err := NewRotatingWriter(filepath.Join(dir, "debug.log"), DefaultRotationConfig())
	if err != nil {
		t.Fatalf("NewRotatingWriter() error: %v", err)
	}

	if err := rw.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}
	if _, err := rw.Write([]byte("late\n")); err == nil {
		t.Error("Write() after Close should fail")
	}
	// Double close is a no-op.
	if err := rw.Close(); err != nil {
		t.Errorf("second Close() error: %v", err)
	}
}

func TestNewLoggerWithRotation(t *testing.T) {
	dir := t.TempDir()

	logger, err := NewLoggerWithRotation(dir, LevelDebug, DefaultRotationConfig())
	if err != nil {
		t.Fatalf("NewLoggerWithRotation() error: %v", err)
	}

	logger.Info("rotated logger works")
	if err := logger.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}

	entries := readLogEntries(t, dir)
	if len(entries) != 1 {
		t.Fatalf("log entries = %d, want 1", len(entries))
	}
}

func TestNewLoggerWithRotationEmptyDir(t *testing.T) {
	logger, err := NewLoggerWithRotation("", LevelInfo, DefaultRotationConfig())
	if err != nil {
		t.Fatalf("NewLoggerWithRotation(\"\") error: %v", err)
	}
	logger.Info("stderr fallback")
	if err := logger.Close(); err != nil {
		t.Errorf("Close() error: %v", err)
	}
}
