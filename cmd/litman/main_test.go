package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"litman/internal/library"
	"litman/internal/testsupport"
)

func TestConfigInitAndValidate(t *testing.T) {
	env := setupCLITestEnv(t, false)

	out, _, err := runCLI(t, env.configPath, "config", "validate")
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")
	requireContains(t, out, "Target language: Chinese")

	target := filepath.Join(t.TempDir(), "config.toml")
	out, _, err = runCLI(t, env.configPath, "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")

	if _, _, err := runCLI(t, env.configPath, "config", "init", "--path", target); err == nil {
		t.Fatal("expected init to refuse overwriting without --overwrite")
	}
}

func TestConfigShowRedactsKey(t *testing.T) {
	env := setupCLITestEnv(t, false)

	out, _, err := runCLI(t, env.configPath, "config", "show")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	if strings.Contains(out, "test-key") {
		t.Fatalf("expected api key to be redacted:\n%s", out)
	}
	requireContains(t, out, "********")
}

func TestLibraryLifecycle(t *testing.T) {
	env := setupCLITestEnv(t, false)
	doc := testsupport.WriteDocument(t, env.baseDir, "attention_is_all.txt", "Attention is all you need.")

	out, _, err := runCLI(t, env.configPath, "add", doc)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	requireContains(t, out, "Queued "+doc)

	out, _, err = runCLI(t, env.configPath, "list", "--json")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var items []itemView
	if err := json.Unmarshal([]byte(out), &items); err != nil {
		t.Fatalf("decode list: %v\n%s", err, out)
	}
	if len(items) != 1 || !items[0].HasAnalysis || !items[0].ContentRefined {
		t.Fatalf("unexpected items %+v", items)
	}
	if items[0].Title != "Attention Is All" {
		t.Fatalf("unexpected title %q", items[0].Title)
	}

	out, _, err = runCLI(t, env.configPath, "show", "1")
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	requireContains(t, out, "reply 2")

	out, _, err = runCLI(t, env.configPath, "ask", "1", "what", "is", "it?")
	if err != nil {
		t.Fatalf("ask: %v", err)
	}
	requireContains(t, out, "reply 3")

	out, _, err = runCLI(t, env.configPath, "chat-log", "1", "--json")
	if err != nil {
		t.Fatalf("chat-log: %v", err)
	}
	var log []library.ChatEntry
	if err := json.Unmarshal([]byte(out), &log); err != nil {
		t.Fatalf("decode chat log: %v", err)
	}
	if len(log) != 2 || log[0].Content != "what is it?" || log[1].Content != "reply 3" {
		t.Fatalf("unexpected chat log %+v", log)
	}

	if _, _, err := runCLI(t, env.configPath, "clear-chat", "1"); err != nil {
		t.Fatalf("clear-chat: %v", err)
	}
	out, _, err = runCLI(t, env.configPath, "chat-log", "1")
	if err != nil {
		t.Fatalf("chat-log: %v", err)
	}
	requireContains(t, out, "No conversation for item 1")

	if _, _, err := runCLI(t, env.configPath, "remove", "1"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	out, _, err = runCLI(t, env.configPath, "list")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	requireContains(t, out, "Library is empty")
}

func TestAddSkipsUnsupportedAndDuplicates(t *testing.T) {
	env := setupCLITestEnv(t, false)
	doc := testsupport.WriteDocument(t, env.baseDir, "paper.md", "# Paper\n\nBody.")

	out, _, err := runCLI(t, env.configPath, "add", filepath.Join(env.baseDir, "slides.pptx"))
	if err != nil {
		t.Fatalf("add unsupported: %v", err)
	}
	requireContains(t, out, "unsupported file type")

	if _, _, err := runCLI(t, env.configPath, "add", doc); err != nil {
		t.Fatalf("add: %v", err)
	}
	out, _, err = runCLI(t, env.configPath, "add", doc)
	if err != nil {
		t.Fatalf("add duplicate: %v", err)
	}
	requireContains(t, out, "already in the library")
}

func TestAddDuplicateStillFinishesResumedAnalysis(t *testing.T) {
	env := setupCLITestEnv(t, false)
	env.cfg.Workflow.ReanalyzeOnStart = true
	writeTestConfig(t, env.configPath, env.cfg)
	doc := testsupport.WriteDocument(t, env.baseDir, "paper.md", "# Paper\n\nBody.")

	store := testsupport.MustOpenStore(t, env.cfg)
	item := testsupport.NewItem(t, store, doc, "body")
	if err := store.Close(); err != nil {
		t.Fatalf("close store: %v", err)
	}

	out, _, err := runCLI(t, env.configPath, "add", doc)
	if err != nil {
		t.Fatalf("add duplicate: %v", err)
	}
	requireContains(t, out, "already in the library")

	reopened := testsupport.MustOpenStore(t, env.cfg)
	text, ok, err := reopened.LoadAnalysis(context.Background(), item.ID)
	if err != nil || !ok || text != "reply 1" {
		t.Fatalf("expected resumed analysis to finish, got %q ok=%v err=%v", text, ok, err)
	}
}

func TestInterruptedErrorReplacesCancellation(t *testing.T) {
	cancelled, cancel := context.WithCancel(context.Background())
	cancel()
	wrapped := fmt.Errorf("wait idle: %w", context.Canceled)

	if err := interruptedError(cancelled, wrapped); !errors.Is(err, errInterrupted) {
		t.Fatalf("expected interrupted error, got %v", err)
	}
	if err := interruptedError(context.Background(), wrapped); !errors.Is(err, context.Canceled) {
		t.Fatalf("live context should keep the original error, got %v", err)
	}
	other := errors.New("boom")
	if err := interruptedError(cancelled, other); err != other {
		t.Fatalf("unrelated errors should pass through, got %v", err)
	}
	if err := interruptedError(cancelled, nil); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
}

func TestAskReportsFailure(t *testing.T) {
	env := setupCLITestEnv(t, true)
	store := testsupport.MustOpenStore(t, env.cfg)
	item := testsupport.NewItem(t, store, filepath.Join(env.baseDir, "papers", "a.txt"), "body")
	if err := store.Close(); err != nil {
		t.Fatalf("close store: %v", err)
	}

	out, _, err := runCLI(t, env.configPath, "ask", "1", "hello")
	if err == nil {
		t.Fatal("expected ask to fail")
	}
	requireContains(t, err.Error(), "1 job(s) failed")
	requireContains(t, out, "request failed: api request failed: upstream exploded")
	if item.ID != 1 {
		t.Fatalf("unexpected item id %d", item.ID)
	}
}

func TestDoctorOffline(t *testing.T) {
	env := setupCLITestEnv(t, false)

	out, _, err := runCLI(t, env.configPath, "doctor", "--offline")
	if err != nil {
		t.Fatalf("doctor: %v\n%s", err, out)
	}
	requireContains(t, out, "Data directory:")
	requireContains(t, out, "[OK]")
}

func TestLogsFiltersByItem(t *testing.T) {
	env := setupCLITestEnv(t, false)
	if err := os.MkdirAll(env.cfg.Paths.LogDir, 0o755); err != nil {
		t.Fatalf("mkdir log dir: %v", err)
	}
	content := "" +
		"2026-01-01T00:00:00Z INFO workflow [Ingestion · Item #3]: worker started\n" +
		"2026-01-01T00:00:01Z INFO workflow [Analysis · Item #4]: worker started\n" +
		"2026-01-01T00:00:02Z INFO workflow [Analysis · Item #3]: analysis saved\n"
	if err := os.WriteFile(filepath.Join(env.cfg.Paths.LogDir, "litman.log"), []byte(content), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}

	out, _, err := runCLI(t, env.configPath, "logs", "--item", "3", "-n", "1")
	if err != nil {
		t.Fatalf("logs: %v", err)
	}
	requireContains(t, out, "analysis saved")
	if strings.Contains(out, "worker started") {
		t.Fatalf("expected only the last matching line, got %q", out)
	}
}

func TestDisplayTitle(t *testing.T) {
	tests := map[string]string{
		"attention_is_all.pdf": "Attention Is All",
		"BERT-pretraining.txt": "BERT Pretraining",
		"notes.md":             "Notes",
		".pdf":                 ".pdf",
	}
	for input, want := range tests {
		if got := displayTitle(input); got != want {
			t.Fatalf("displayTitle(%q) = %q, want %q", input, got, want)
		}
	}
}
