package excluder_test

import (
	"testing"

	"dropsort/internal/excluder"
)

func TestIsExcluded(t *testing.T) {
	ex, err := excluder.New([]string{"*.tmp", ".*", "~$*"})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	for _, tc := range []struct {
		name string
		want bool
	}{
		{"upload.tmp", true},
		{".DS_Store", true},
		{"~$draft.docx", true},
		{"photos cat.png", false},
		{"report.pdf", false},
	} {
		if got := ex.IsExcluded(tc.name); got != tc.want {
			t.Fatalf("IsExcluded(%q): got %v want %v", tc.name, got, tc.want)
		}
	}
}

func TestNoPatternsExcludesNothing(t *testing.T) {
	ex, err := excluder.New(nil)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if ex.IsExcluded("anything") {
		t.Fatal("empty excluder must not exclude")
	}
}

func TestBadPatternIsError(t *testing.T) {
	if _, err := excluder.New([]string{"[unclosed"}); err == nil {
		t.Fatal("expected error for malformed pattern")
	}
}
