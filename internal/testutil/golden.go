package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// goldenUpdateEnv rewrites golden files instead of comparing against them.
const goldenUpdateEnv = "GOLDEN_UPDATE"

// Golden compares got against testdata/<name>.golden in the calling package.
// Set GOLDEN_UPDATE=1 to regenerate the file.
func Golden(t *testing.T, name string, got []byte) {
	t.Helper()

	path := filepath.Join("testdata", name+".golden")
	if os.Getenv(goldenUpdateEnv) != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("create testdata: %v", err)
		}
		if err := os.WriteFile(path, got, 0o644); err != nil {
			t.Fatalf("update %s: %v", path, err)
		}
		return
	}

	want, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v\nGot:\n%s", path, err, got)
	}
	if line, ok := firstDiff(string(want), string(got)); ok {
		t.Errorf("%s differs at line %d\nWant:\n%s\nGot:\n%s", path, line, want, got)
	}
}

// GoldenString is like Golden but takes a string.
func GoldenString(t *testing.T, name string, got string) {
	t.Helper()
	Golden(t, name, []byte(got))
}

// firstDiff returns the 1-based number of the first line that differs.
func firstDiff(want, got string) (int, bool) {
	if want == got {
		return 0, false
	}
	w, g := strings.Split(want, "\n"), strings.Split(got, "\n")
	for i := range min(len(w), len(g)) {
		if w[i] != g[i] {
			return i + 1, true
		}
	}
	return min(len(w), len(g)) + 1, true
}
