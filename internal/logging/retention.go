package logging

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// RetentionTarget names a directory to prune. Pattern is a filepath.Match glob
// on file names (empty matches everything); Exclude lists paths never removed.
type RetentionTarget struct {
	Dir     string
	Pattern string
	Exclude []string
}

// CleanupOldLogs removes matching files last modified more than retentionDays
// ago and returns how many were removed. retentionDays <= 0 disables pruning.
func CleanupOldLogs(logger *slog.Logger, retentionDays int, targets ...RetentionTarget) int {
	if retentionDays <= 0 {
		return 0
	}
	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	removed := 0
	for _, target := range targets {
		for _, path := range expiredFiles(target, cutoff) {
			if err := os.Remove(path); err != nil {
				WarnWithContext(logger, "log retention remove failed; file remains", "log_retention_failed",
					String("path", path),
					Error(err),
					String(FieldErrorHint, "check file permissions and log_dir ownership"),
					String(FieldImpact, "old log file remains on disk"),
				)
				continue
			}
			removed++
			if logger != nil {
				logger.Info("log pruned", String("path", path), String(FieldEventType, "log_pruned"))
			}
		}
	}
	return removed
}

func expiredFiles(target RetentionTarget, cutoff time.Time) []string {
	dir := strings.TrimSpace(target.Dir)
	if dir == "" {
		return nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	skip := make(map[string]bool, len(target.Exclude))
	for _, path := range target.Exclude {
		skip[absPath(path)] = true
	}
	pattern := strings.TrimSpace(target.Pattern)

	var expired []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if pattern != "" {
			if ok, err := filepath.Match(pattern, entry.Name()); err != nil || !ok {
				continue
			}
		}
		path := absPath(filepath.Join(dir, entry.Name()))
		if skip[path] {
			continue
		}
		if info, err := entry.Info(); err == nil && info.ModTime().Before(cutoff) {
			expired = append(expired, path)
		}
	}
	return expired
}

func absPath(path string) string {
	path = strings.TrimSpace(path)
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}
