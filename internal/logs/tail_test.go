package logs_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"litman/internal/logs"
)

func writeLog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "litman.log")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}
	return path
}

func TestLastReturnsTrailingLines(t *testing.T) {
	path := writeLog(t, "a\nb\nc\n")

	lines, offset, err := logs.Last(path, 2, nil)
	if err != nil {
		t.Fatalf("Last: %v", err)
	}
	if len(lines) != 2 || lines[0] != "b" || lines[1] != "c" {
		t.Fatalf("unexpected lines: %#v", lines)
	}
	if offset != int64(len("a\nb\nc\n")) {
		t.Fatalf("expected offset at end of file, got %d", offset)
	}
}

func TestLastMissingFile(t *testing.T) {
	lines, offset, err := logs.Last(filepath.Join(t.TempDir(), "absent.log"), 10, nil)
	if err != nil {
		t.Fatalf("Last: %v", err)
	}
	if len(lines) != 0 || offset != 0 {
		t.Fatalf("expected nothing, got %#v at %d", lines, offset)
	}
}

func TestItemFilterMatchesBothFormats(t *testing.T) {
	path := writeLog(t, ""+
		"2026-01-01T00:00:00Z INFO workflow [Analysis · Item #1]: worker started\n"+
		"2026-01-01T00:00:01Z INFO workflow [Analysis · Item #12]: worker started\n"+
		`{"msg":"saved","item_id":1}`+"\n"+
		`{"msg":"saved","item_id":12}`+"\n")

	lines, _, err := logs.Last(path, 10, logs.ItemFilter(1))
	if err != nil {
		t.Fatalf("Last: %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("expected two lines for item 1, got %#v", lines)
	}
	if logs.ItemFilter(0) != nil {
		t.Fatal("expected no filter for id 0")
	}
}

func TestFollowEmitsAppendedLines(t *testing.T) {
	path := writeLog(t, "start\n")
	_, offset, err := logs.Last(path, 1, nil)
	if err != nil {
		t.Fatalf("Last: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		mu  sync.Mutex
		got []string
	)
	done := make(chan error, 1)
	go func() {
		done <- logs.Follow(ctx, path, offset, 10*time.Millisecond, nil, func(line string) {
			mu.Lock()
			got = append(got, line)
			mu.Unlock()
		})
	}()

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("open append: %v", err)
	}
	if _, err := f.WriteString("later\npartial"); err != nil {
		t.Fatalf("append log: %v", err)
	}
	_ = f.Close()

	deadline := time.Now().Add(5 * time.Second)
	for {
		mu.Lock()
		n := len(got)
		mu.Unlock()
		if n > 0 || time.Now().After(deadline) {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Follow: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(got) != 1 || got[0] != "later" {
		t.Fatalf("expected only the complete line, got %#v", got)
	}
}
