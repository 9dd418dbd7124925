package textutil

import (
	"path/filepath"
	"strings"
)

// fileNameReplacer replaces filesystem-unsafe characters with underscores.
var fileNameReplacer = strings.NewReplacer(
	"/", "_",
	"\\", "_",
	":", "_",
	"*", "_",
	"?", "_",
	"\"", "_",
	"<", "_",
	">", "_",
	"|", "_",
)

// SanitizeFileName replaces filesystem-unsafe characters in a filename with
// underscores. The result is trimmed of leading/trailing whitespace and never
// empty.
func SanitizeFileName(name string) string {
	name = strings.TrimSpace(fileNameReplacer.Replace(strings.TrimSpace(name)))
	if name == "" || name == "." || name == ".." {
		return "document"
	}
	return name
}

// DisplayName returns the base name of a source path.
func DisplayName(sourcePath string) string {
	base := filepath.Base(strings.TrimSpace(sourcePath))
	if base == "." || base == string(filepath.Separator) {
		return ""
	}
	return base
}
