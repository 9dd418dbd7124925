package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"
)

// consoleHandler writes one human-readable line per record:
//
//	2026-01-02T03:04:05Z INFO workflow [Analysis · Item #7]: worker started attempt=2
//
// The component, lane, and item id attributes move into the prefix; every
// other attribute follows the message as key=value.
type consoleHandler struct {
	out        *lockedWriter
	level      slog.Leveler
	withSource bool
	preset     []field
	group      string
}

type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) write(p []byte) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, err := l.w.Write(p)
	return err
}

type field struct {
	key   string
	value slog.Value
}

func newConsoleHandler(w io.Writer, level slog.Leveler, withSource bool) slog.Handler {
	return &consoleHandler{out: &lockedWriter{w: w}, level: level, withSource: withSource}
}

func (h *consoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *consoleHandler) Handle(_ context.Context, record slog.Record) error {
	fields := append([]field(nil), h.preset...)
	record.Attrs(func(attr slog.Attr) bool {
		fields = appendField(fields, h.group, attr)
		return true
	})

	var component, lane, item string
	rest := fields[:0]
	for _, f := range fields {
		switch {
		case f.key == FieldComponent && component == "":
			component = renderValue(f.value)
		case f.key == FieldLane && lane == "":
			lane = renderValue(f.value)
		case f.key == FieldItemID && item == "":
			item = renderValue(f.value)
		default:
			rest = append(rest, f)
		}
	}

	ts := record.Time
	if ts.IsZero() {
		ts = time.Now()
	}

	var line strings.Builder
	line.WriteString(ts.UTC().Format(time.RFC3339))
	line.WriteByte(' ')
	line.WriteString(levelLabel(record.Level))
	line.WriteByte(' ')
	line.WriteString(prefix(component, FormatSubject(lane, item)))

	msg := strings.TrimSpace(record.Message)
	if msg == "" {
		msg = "(no message)"
	}
	line.WriteString(msg)

	if h.withSource && record.PC != 0 {
		if src := record.Source(); src != nil {
			line.WriteString(" [" + sourceLocation(src.File, src.Line) + "]")
		}
	}
	for _, f := range rest {
		if f.key == "" {
			continue
		}
		fmt.Fprintf(&line, " %s=%s", f.key, renderValue(f.value))
	}
	line.WriteByte('\n')
	return h.out.write([]byte(line.String()))
}

func (h *consoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.preset = append([]field(nil), h.preset...)
	for _, attr := range attrs {
		next.preset = appendField(next.preset, h.group, attr)
	}
	return &next
}

func (h *consoleHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	next.group = joinKey(h.group, name)
	return &next
}

func prefix(component, subject string) string {
	switch {
	case component != "" && subject != "":
		return component + " [" + subject + "]: "
	case component != "":
		return component + ": "
	case subject != "":
		return subject + ": "
	}
	return ""
}

// FormatSubject builds the "Lane · Item #id" subject shown in console output.
func FormatSubject(lane, itemID string) string {
	lane = strings.TrimSpace(lane)
	itemID = strings.TrimSpace(itemID)
	var parts []string
	if lane != "" {
		parts = append(parts, strings.ToUpper(lane[:1])+strings.ToLower(lane[1:]))
	}
	if itemID != "" {
		parts = append(parts, "Item #"+itemID)
	}
	return strings.Join(parts, " · ")
}

func appendField(dst []field, group string, attr slog.Attr) []field {
	attr.Value = attr.Value.Resolve()
	if attr.Value.Kind() == slog.KindGroup {
		inner := group
		if attr.Key != "" {
			inner = joinKey(group, attr.Key)
		}
		for _, child := range attr.Value.Group() {
			dst = appendField(dst, inner, child)
		}
		return dst
	}
	if attr.Key == "" {
		return dst
	}
	return append(dst, field{key: joinKey(group, attr.Key), value: attr.Value})
}

func joinKey(group, key string) string {
	if group == "" {
		return key
	}
	return group + "." + key
}

func renderValue(v slog.Value) string {
	var s string
	switch v.Kind() {
	case slog.KindBool:
		return strconv.FormatBool(v.Bool())
	case slog.KindInt64:
		return strconv.FormatInt(v.Int64(), 10)
	case slog.KindUint64:
		return strconv.FormatUint(v.Uint64(), 10)
	case slog.KindFloat64:
		return strconv.FormatFloat(v.Float64(), 'f', -1, 64)
	case slog.KindDuration:
		return v.Duration().String()
	case slog.KindTime:
		return v.Time().UTC().Format(time.RFC3339)
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			s = err.Error()
		} else {
			s = fmt.Sprint(v.Any())
		}
	default:
		s = v.String()
	}
	if s == "" || strings.ContainsAny(s, " \t\n\"=") {
		return strconv.Quote(s)
	}
	return s
}

func levelLabel(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "ERROR"
	case level >= slog.LevelWarn:
		return "WARN"
	case level >= slog.LevelInfo:
		return "INFO"
	}
	return "DEBUG"
}
