package registry_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"dropsort/internal/registry"
)

func TestLoadBootstrapsPlaceholderWhenAbsent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "filePaths.json")

	prefixes, err := registry.New(path).Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if len(prefixes) != 1 || prefixes[0] != "empty" {
		t.Fatalf("unexpected bootstrap prefixes: %v", prefixes)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected prefix list file to be created: %v", err)
	}
}

func TestLoadPreservesOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "filePaths.json")
	if err := os.WriteFile(path, []byte(`["invoices", "photos", "inv"]`), 0644); err != nil {
		t.Fatal(err)
	}

	prefixes, err := registry.New(path).Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	want := []string{"invoices", "photos", "inv"}
	if len(prefixes) != len(want) {
		t.Fatalf("unexpected prefixes: %v", prefixes)
	}
	for i := range want {
		if prefixes[i] != want[i] {
			t.Fatalf("prefix %d: got %q want %q", i, prefixes[i], want[i])
		}
	}
}

func TestLoadRejectsNonArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "filePaths.json")
	if err := os.WriteFile(path, []byte(`{"a": 1}`), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := registry.New(path).Load(); !errors.Is(err, registry.ErrMalformed) {
		t.Fatalf("expected ErrMalformed, got %v", err)
	}
}

func TestLoadRejectsNonStringElements(t *testing.T) {
	path := filepath.Join(t.TempDir(), "filePaths.json")
	if err := os.WriteFile(path, []byte(`["ok", 42]`), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := registry.New(path).Load(); !errors.Is(err, registry.ErrMalformed) {
		t.Fatalf("expected ErrMalformed, got %v", err)
	}
}

func TestEnsureDirectoriesCreatesAndIsIdempotent(t *testing.T) {
	root := t.TempDir()
	prefixes := []string{"invoices", "photos"}

	if err := registry.EnsureDirectories(root, prefixes); err != nil {
		t.Fatalf("EnsureDirectories returned error: %v", err)
	}
	for _, p := range prefixes {
		info, err := os.Stat(filepath.Join(root, p))
		if err != nil {
			t.Fatalf("expected directory %s: %v", p, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %s to be a directory", p)
		}
	}

	// Second run must not fail on existing directories.
	if err := registry.EnsureDirectories(root, prefixes); err != nil {
		t.Fatalf("second EnsureDirectories returned error: %v", err)
	}
}

func TestEnsureDirectoriesRejectsFileConflict(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "photos"), []byte("not a dir"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := registry.EnsureDirectories(root, []string{"photos"}); err == nil {
		t.Fatal("expected error when a file occupies the destination path")
	}
}
