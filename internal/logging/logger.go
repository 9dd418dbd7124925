package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"litman/internal/config"
)

// LogFileName is the file written under the configured log directory.
const LogFileName = "litman.log"

// Options describes logger construction parameters.
//
// OutputPaths accepts "stdout", "stderr", or file paths; files are opened in
// append mode and their directories created. An empty list logs to stderr.
type Options struct {
	Level       string
	Format      string
	OutputPaths []string
	Development bool
}

// New builds a logger for the requested format ("console" or "json").
func New(opts Options) (*slog.Logger, error) {
	level := new(slog.LevelVar)
	level.Set(levelFromString(opts.Level))

	w, err := openOutputs(opts.OutputPaths)
	if err != nil {
		return nil, err
	}
	withSource := opts.Development || level.Level() <= slog.LevelDebug

	switch strings.ToLower(strings.TrimSpace(opts.Format)) {
	case "", "console":
		return slog.New(newConsoleHandler(w, level, withSource)), nil
	case "json":
		return slog.New(jsonHandler(w, level, withSource)), nil
	default:
		return nil, fmt.Errorf("log format: unsupported value %q", opts.Format)
	}
}

// NewFromConfig logs to stderr and <log_dir>/litman.log. Stdout stays free for
// command output.
func NewFromConfig(cfg *config.Config) (*slog.Logger, error) {
	if cfg == nil {
		return New(Options{OutputPaths: []string{"stderr"}})
	}
	outputs := []string{"stderr"}
	if dir := strings.TrimSpace(cfg.Paths.LogDir); dir != "" {
		outputs = append(outputs, filepath.Join(dir, LogFileName))
	}
	return New(Options{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		OutputPaths: outputs,
	})
}

func levelFromString(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

func openOutputs(paths []string) (io.Writer, error) {
	var writers []io.Writer
	opened := make(map[string]bool, len(paths))
	for _, raw := range paths {
		target := strings.TrimSpace(raw)
		if target == "" || opened[target] {
			continue
		}
		opened[target] = true

		switch target {
		case "stdout":
			writers = append(writers, os.Stdout)
		case "stderr":
			writers = append(writers, os.Stderr)
		default:
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return nil, fmt.Errorf("ensure log directory: %w", err)
			}
			file, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o664)
			if err != nil {
				return nil, fmt.Errorf("open log file %s: %w", target, err)
			}
			writers = append(writers, file)
		}
	}
	if len(writers) == 0 {
		return os.Stderr, nil
	}
	if len(writers) == 1 {
		return writers[0], nil
	}
	return io.MultiWriter(writers...), nil
}

// jsonHandler emits one object per line with ts/level/msg/source keys; the
// timestamp is RFC 3339 UTC and the level lower-case.
func jsonHandler(w io.Writer, level slog.Leveler, withSource bool) slog.Handler {
	return slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:     level,
		AddSource: withSource,
		ReplaceAttr: func(_ []string, attr slog.Attr) slog.Attr {
			switch attr.Key {
			case slog.TimeKey:
				attr.Key = "ts"
				if attr.Value.Kind() == slog.KindTime {
					attr.Value = slog.StringValue(attr.Value.Time().UTC().Format(time.RFC3339))
				}
			case slog.LevelKey:
				attr.Value = slog.StringValue(strings.ToLower(attr.Value.String()))
			case slog.SourceKey:
				if src, ok := attr.Value.Any().(*slog.Source); ok && src != nil {
					attr.Value = slog.StringValue(sourceLocation(src.File, src.Line))
				}
			}
			return attr
		},
	})
}

func sourceLocation(file string, line int) string {
	return fmt.Sprintf("%s:%d", filepath.Base(file), line)
}
