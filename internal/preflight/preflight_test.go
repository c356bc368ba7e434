package preflight

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"cdlconvert/internal/config"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckWritableTarget_Missing(t *testing.T) {
	target := filepath.Join(t.TempDir(), "a", "b", "out")
	result := CheckWritableTarget("output", target)
	if !result.Passed {
		t.Fatalf("expected missing dir under temp to pass, got: %s", result.Detail)
	}
	if !strings.Contains(result.Detail, "will be created") {
		t.Fatalf("unexpected detail: %s", result.Detail)
	}
}

func TestCheckWritableTarget_FileInTheWay(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if result := CheckWritableTarget("output", f); result.Passed {
		t.Fatal("expected failure for file path")
	}
	if result := CheckWritableTarget("output", filepath.Join(f, "sub")); result.Passed {
		t.Fatal("expected failure when an ancestor is a file")
	}
}

func TestCheckWritableTarget_ReadOnly(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root bypasses permission bits")
	}
	dir := t.TempDir()
	if err := os.Chmod(dir, 0o555); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chmod(dir, 0o755) })

	if result := CheckWritableTarget("output", dir); result.Passed {
		t.Fatal("expected failure for read-only dir")
	}
	if result := CheckWritableTarget("output", filepath.Join(dir, "new")); result.Passed {
		t.Fatal("expected failure creating under read-only dir")
	}
}

func TestRunAll(t *testing.T) {
	if RunAll(nil) != nil {
		t.Fatal("expected nil results for nil config")
	}

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.OutputDir = filepath.Join(base, "out")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.History.Path = filepath.Join(base, "db", "history.db")

	results := RunAll(&cfg)
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if failed := Failed(results); len(failed) != 0 {
		t.Fatalf("expected all checks to pass, got %+v", failed)
	}

	cfg.History.Enabled = false
	if got := len(RunAll(&cfg)); got != 2 {
		t.Fatalf("expected history check to be skipped, got %d results", got)
	}
}
