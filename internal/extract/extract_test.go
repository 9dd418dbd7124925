package extract

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"litman/internal/services"
)

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestExtractPlainTextStripsBOMAndNormalizes(t *testing.T) {
	dir := t.TempDir()
	// "Cafe" with a combining acute accent, preceded by a UTF-8 BOM.
	path := writeFile(t, dir, "notes.txt", []byte("\xef\xbb\xbfCafe\u0301 study\n"))

	text, err := NewLocal().Extract(context.Background(), path)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if text != "Caf\u00e9 study" {
		t.Fatalf("unexpected text %q", text)
	}
}

func TestExtractDecodesUTF16WithBOM(t *testing.T) {
	dir := t.TempDir()
	// UTF-16LE BOM followed by "Hi".
	path := writeFile(t, dir, "paper.md", []byte{0xff, 0xfe, 'H', 0, 'i', 0})

	text, err := NewLocal().Extract(context.Background(), path)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if text != "Hi" {
		t.Fatalf("unexpected text %q", text)
	}
}

func TestExtractRejectsUnsupportedType(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "paper.docx", []byte("binary"))

	_, err := NewLocal().Extract(context.Background(), path)
	if !errors.Is(err, services.ErrLocalExtraction) {
		t.Fatalf("expected local extraction error, got %v", err)
	}
	if services.KindOf(err) != services.KindLocalExtraction {
		t.Fatalf("unexpected kind %q", services.KindOf(err))
	}
}

func TestExtractMissingFile(t *testing.T) {
	_, err := NewLocal().Extract(context.Background(), filepath.Join(t.TempDir(), "missing.pdf"))
	if !errors.Is(err, services.ErrLocalExtraction) {
		t.Fatalf("expected local extraction error, got %v", err)
	}
}

func TestExtractCorruptPDF(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "broken.pdf", []byte("not a pdf at all"))

	_, err := NewLocal().Extract(context.Background(), path)
	if !errors.Is(err, services.ErrLocalExtraction) {
		t.Fatalf("expected local extraction error, got %v", err)
	}
}

func TestExtractEmptyTextFails(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "empty.txt", []byte("   \n"))

	_, err := NewLocal().Extract(context.Background(), path)
	if !errors.Is(err, services.ErrLocalExtraction) {
		t.Fatalf("expected local extraction error, got %v", err)
	}
}

func TestSupported(t *testing.T) {
	for path, want := range map[string]bool{
		"a.PDF":  true,
		"b.md":   true,
		"c.txt":  true,
		"d.docx": false,
		"e":      false,
	} {
		if got := Supported(path); got != want {
			t.Fatalf("Supported(%q) = %v, want %v", path, got, want)
		}
	}
}
