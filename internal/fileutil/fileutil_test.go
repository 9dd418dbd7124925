package fileutil

import (
	"os"
	"path/filepath"
	"testing"
)

func TestWriteFileAtomicCreatesAndOverwrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "analysis.md")

	if err := WriteFileAtomic(path, []byte("first"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := WriteFileAtomic(path, []byte("second"), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "second" {
		t.Fatalf("content mismatch: got %q", got)
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected temp files to be cleaned up, found %d entries", len(entries))
	}
}

func TestWriteFileAtomicSetsMode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chat.json")
	if err := WriteFileAtomic(path, []byte("[]"), 0o600); err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("mode = %o, want 600", info.Mode().Perm())
	}
}

func TestReadFileIfExists(t *testing.T) {
	dir := t.TempDir()
	data, ok, err := ReadFileIfExists(filepath.Join(dir, "missing.txt"))
	if err != nil || ok || data != nil {
		t.Fatalf("missing file: data=%q ok=%v err=%v", data, ok, err)
	}

	path := filepath.Join(dir, "content.txt")
	if err := os.WriteFile(path, []byte("text"), 0o644); err != nil {
		t.Fatal(err)
	}
	data, ok, err = ReadFileIfExists(path)
	if err != nil || !ok || string(data) != "text" {
		t.Fatalf("existing file: data=%q ok=%v err=%v", data, ok, err)
	}
}

func TestRemoveIfExistsIgnoresMissing(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.json")
	if err := os.WriteFile(path, []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := RemoveIfExists(path, filepath.Join(dir, "gone.json"), ""); err != nil {
		t.Fatalf("RemoveIfExists: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expected file removed, stat err=%v", err)
	}
}
