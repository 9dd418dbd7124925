package main

import (
	"fmt"
	"io"
	"strings"
	"testing"

	"litman/internal/notifications"
	"litman/internal/preflight"
	"litman/internal/stage"
)

func TestRenderStatusLineNoColor(t *testing.T) {
	got := renderStatusLine("Data directory", statusError, "missing", false)
	want := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, "Data directory:", "[ERROR] missing")
	if got != want {
		t.Fatalf("renderStatusLine mismatch\n got: %q\nwant: %q", got, want)
	}
}

func TestRenderStatusLineWithColor(t *testing.T) {
	got := renderStatusLine("Data directory", statusOK, "ok", true)
	if !strings.HasPrefix(got, ansiGreen) {
		t.Fatalf("expected green prefix, got %q", got)
	}
	if !strings.HasSuffix(got, ansiReset) {
		t.Fatalf("expected reset suffix, got %q", got)
	}
}

func TestRenderEventLine(t *testing.T) {
	failed := renderEventLine(notifications.JobFailed(0, "/papers/a.pdf", stage.LaneIngestion, "local extraction failed: empty"), false)
	if !strings.Contains(failed, "/papers/a.pdf:") || !strings.Contains(failed, "[ERROR] ingestion failed: local extraction failed: empty") {
		t.Fatalf("unexpected failure line %q", failed)
	}
	updated := renderEventLine(notifications.ItemUpdated(7, "analysis"), false)
	if !strings.Contains(updated, "item #7:") || !strings.Contains(updated, "[OK] analysis saved") {
		t.Fatalf("unexpected update line %q", updated)
	}
}

func TestPreflightLines(t *testing.T) {
	lines := preflightLines([]preflight.Result{
		{Name: "Data directory", Passed: true, Detail: "/data (read/write ok)"},
		{Name: "Completion API", Detail: "API key missing"},
	}, false)
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if !strings.Contains(lines[0], "[OK] /data (read/write ok)") {
		t.Fatalf("unexpected first line %q", lines[0])
	}
	if !strings.Contains(lines[1], "[ERROR] API key missing") {
		t.Fatalf("unexpected second line %q", lines[1])
	}
}

func TestShouldColorizeNonFile(t *testing.T) {
	if shouldColorize(io.Discard) {
		t.Fatalf("expected non-file writer to disable color")
	}
}
