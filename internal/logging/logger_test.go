package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"litman/internal/config"
	"litman/internal/logging"
	"litman/internal/services"
)

func TestNewFromConfigWritesLogFile(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = t.TempDir()

	logger, err := logging.NewFromConfig(&cfg)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	logger.Info("hello from config")

	content, err := os.ReadFile(filepath.Join(cfg.Paths.LogDir, logging.LogFileName))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(content), "hello from config") {
		t.Fatalf("expected message in log file, got %q", content)
	}
}

func TestConsoleLoggerRendersSubject(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console.log")
	logger, err := logging.New(logging.Options{
		Format:      "console",
		Level:       "info",
		OutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logging.NewComponentLogger(logger, "workflow").Info("worker started",
		logging.String(logging.FieldLane, "analysis"),
		logging.Int64(logging.FieldItemID, 7),
		logging.Int("attempt", 2),
	)

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	line := string(content)
	if !strings.Contains(line, "INFO workflow [Analysis · Item #7]: worker started") {
		t.Fatalf("unexpected console line %q", line)
	}
	if !strings.Contains(line, "attempt=2") {
		t.Fatalf("expected attempt attribute, got %q", line)
	}
	if strings.Contains(line, ".go:") {
		t.Fatalf("expected no caller information in info logs, got %q", line)
	}
}

func TestConsoleLoggerIncludesCallerForDebug(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console-debug.log")
	logger, err := logging.New(logging.Options{
		Format:      "console",
		Level:       "debug",
		OutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("message with caller")

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(content), ".go:") {
		t.Fatalf("expected caller information in debug logs, got %q", content)
	}
}

func TestJSONLoggerUsesShortKeys(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "json.log")
	logger, err := logging.New(logging.Options{Format: "json", Level: "info", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Warn("json message", logging.String("k", "v"))

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	var record map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(content), &record); err != nil {
		t.Fatalf("decode json log: %v", err)
	}
	if record["level"] != "warn" {
		t.Fatalf("expected lower-case level, got %v", record["level"])
	}
	if _, ok := record["ts"]; !ok {
		t.Fatalf("expected ts key, got %v", record)
	}
	if record["k"] != "v" {
		t.Fatalf("expected attribute k=v, got %v", record["k"])
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected unsupported format error")
	}
}

func TestWithContextAddsFields(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithItemID(ctx, 123)
	ctx = services.WithLane(ctx, "ingestion")
	ctx = services.WithRequestID(ctx, "req-xyz")

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	logging.WithContext(ctx, logger).Info("contextual log")

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("decode log: %v", err)
	}
	if record[logging.FieldItemID] != float64(123) {
		t.Fatalf("item_id = %v", record[logging.FieldItemID])
	}
	if record[logging.FieldLane] != "ingestion" {
		t.Fatalf("lane = %v", record[logging.FieldLane])
	}
	if record[logging.FieldCorrelationID] != "req-xyz" {
		t.Fatalf("correlation_id = %v", record[logging.FieldCorrelationID])
	}
}

func TestCleanupOldLogsRemovesExpiredFiles(t *testing.T) {
	dir := t.TempDir()
	oldPath := filepath.Join(dir, "old.log")
	freshPath := filepath.Join(dir, "fresh.log")
	keepPath := filepath.Join(dir, "keep.log")
	for _, path := range []string{oldPath, freshPath, keepPath} {
		if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
	}
	stale := time.Now().AddDate(0, 0, -10)
	for _, path := range []string{oldPath, keepPath} {
		if err := os.Chtimes(path, stale, stale); err != nil {
			t.Fatalf("chtimes: %v", err)
		}
	}

	removed := logging.CleanupOldLogs(logging.NewNop(), 5, logging.RetentionTarget{
		Dir:     dir,
		Pattern: "*.log",
		Exclude: []string{keepPath},
	})
	if removed != 1 {
		t.Fatalf("expected 1 removal, got %d", removed)
	}
	if _, err := os.Stat(oldPath); !os.IsNotExist(err) {
		t.Fatalf("expected %s removed", oldPath)
	}
	for _, path := range []string{freshPath, keepPath} {
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("expected %s kept: %v", path, err)
		}
	}
}

func TestNopLoggerDiscardsEverything(t *testing.T) {
	logger := logging.NewNop().With(slog.String("k", "v")).WithGroup("g")
	if logger.Enabled(context.Background(), slog.LevelError) {
		t.Fatal("nop logger should not be enabled at any level")
	}
	logger.Error("dropped")
}
