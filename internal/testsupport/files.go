package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteFile writes content to path, creating parent directories, and returns
// the path.
func WriteFile(t testing.TB, path, content string) string {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// WriteDocument writes a plain-text document under the config's base directory.
func WriteDocument(t testing.TB, baseDir, name, content string) string {
	t.Helper()
	return WriteFile(t, filepath.Join(baseDir, "papers", name), content)
}
