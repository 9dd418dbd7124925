package extract

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"litman/internal/services"
)

// Extractor returns the raw text of a document.
type Extractor interface {
	Extract(ctx context.Context, path string) (string, error)
}

// Local extracts text from files on the local filesystem.
type Local struct {
	// MaxBytes caps plain-text reads; zero means unlimited.
	MaxBytes int64
}

// NewLocal returns the default local extractor.
func NewLocal() *Local {
	return &Local{}
}

// Supported reports whether path has an extension Local can read.
func Supported(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf", ".txt", ".md", ".markdown":
		return true
	}
	return false
}

// Extract reads path and returns NFC-normalized text.
func (l *Local) Extract(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	info, err := os.Stat(path)
	if err != nil {
		return "", services.Wrap(services.ErrLocalExtraction, "extract", "stat", path, err)
	}
	if info.IsDir() {
		return "", services.Wrap(services.ErrLocalExtraction, "extract", "stat", path+" is a directory", nil)
	}

	var text string
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".pdf":
		text, err = readPDF(path)
	case ".txt", ".md", ".markdown":
		text, err = l.readText(path)
	default:
		return "", services.Wrap(services.ErrLocalExtraction, "extract", "detect format", fmt.Sprintf("unsupported file type %q", ext), nil)
	}
	if err != nil {
		return "", services.Wrap(services.ErrLocalExtraction, "extract", "read", path, err)
	}

	text = strings.TrimSpace(norm.NFC.String(text))
	if text == "" {
		return "", services.Wrap(services.ErrLocalExtraction, "extract", "read", path+" contains no extractable text", nil)
	}
	return text, nil
}

func (l *Local) readText(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var r io.Reader = f
	if l != nil && l.MaxBytes > 0 {
		r = io.LimitReader(f, l.MaxBytes)
	}
	decoder := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	data, err := io.ReadAll(transform.NewReader(r, decoder))
	if err != nil {
		return "", fmt.Errorf("decode text: %w", err)
	}
	return string(data), nil
}

func readPDF(path string) (text string, err error) {
	// The PDF parser panics on some malformed cross-reference tables.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("parse pdf: %v", r)
		}
	}()

	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("read pdf text: %w", err)
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(plain); err != nil {
		return "", fmt.Errorf("read pdf text: %w", err)
	}
	return buf.String(), nil
}
