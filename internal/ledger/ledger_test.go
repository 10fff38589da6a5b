package ledger_test

import (
	"os"
	"path/filepath"
	"testing"

	"dropsort/internal/ledger"
)

func TestRecordCreatesFileLazily(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fileHashes.json")
	l := ledger.New(path)

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatal("ledger file should not exist before first record")
	}

	if err := l.Record("photos", "cat.png", "abc123"); err != nil {
		t.Fatalf("Record returned error: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected ledger file after first record: %v", err)
	}
}

func TestRecordRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fileHashes.json")
	l := ledger.New(path)

	if err := l.Record("photos", "cat.png", "abc123"); err != nil {
		t.Fatalf("Record returned error: %v", err)
	}
	if err := l.Record("invoices", "march.pdf", "def456"); err != nil {
		t.Fatalf("Record returned error: %v", err)
	}

	entries, err := ledger.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("unexpected entry count: %d", len(entries))
	}
	if entries["photos | cat.png"] != "abc123" {
		t.Fatalf("unexpected entry: %q", entries["photos | cat.png"])
	}
	if entries["invoices | march.pdf"] != "def456" {
		t.Fatalf("unexpected entry: %q", entries["invoices | march.pdf"])
	}
}

func TestRecordOverwritesSameKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fileHashes.json")
	l := ledger.New(path)

	if err := l.Record("photos", "cat.png", "old"); err != nil {
		t.Fatalf("Record returned error: %v", err)
	}
	if err := l.Record("photos", "cat.png", "new"); err != nil {
		t.Fatalf("second Record returned error: %v", err)
	}

	if l.Len() != 1 {
		t.Fatalf("expected single entry, got %d", l.Len())
	}
	digest, ok := l.Get("photos", "cat.png")
	if !ok || digest != "new" {
		t.Fatalf("unexpected digest: %q (ok=%v)", digest, ok)
	}

	entries, err := ledger.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if entries["photos | cat.png"] != "new" {
		t.Fatalf("persisted digest not overwritten: %q", entries["photos | cat.png"])
	}
}

func TestLoadEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fileHashes.json")
	if err := os.WriteFile(path, nil, 0644); err != nil {
		t.Fatal(err)
	}

	entries, err := ledger.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected empty ledger, got %v", entries)
	}
}
