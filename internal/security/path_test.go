package security

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNewPathValidator(t *testing.T) {
	if _, err := NewPathValidator(""); err == nil {
		t.Error("Expected error for empty directory")
	}

	v, err := NewPathValidator("/not/created/yet")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if v.Directory() != "/not/created/yet" {
		t.Errorf("Directory() = %q", v.Directory())
	}
}

func TestValidatePath(t *testing.T) {
	root := t.TempDir()
	docs := filepath.Join(root, "docs")
	if err := os.Mkdir(docs, 0o755); err != nil {
		t.Fatal(err)
	}
	inside := filepath.Join(docs, "report.pdf")
	outside := filepath.Join(root, "secret.pdf")
	for _, p := range []string{inside, outside} {
		if err := os.WriteFile(p, []byte("%PDF-1.4"), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	link := filepath.Join(docs, "escape.pdf")
	if err := os.Symlink(outside, link); err != nil {
		t.Fatal(err)
	}

	v, err := NewPathValidator(docs)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name      string
		path      string
		wantError bool
	}{
		{"file inside", inside, false},
		{"directory itself", docs, false},
		{"file outside", outside, true},
		{"parent traversal", filepath.Join(docs, "..", "secret.pdf"), true},
		{"sibling with shared prefix", docs + "-other/report.pdf", true},
		{"symlink escaping directory", link, true},
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidatePath(tt.path)
			if tt.wantError && err == nil {
				t.Errorf("ValidatePath(%q) expected error", tt.path)
			}
			if !tt.wantError && err != nil {
				t.Errorf("ValidatePath(%q) unexpected error: %v", tt.path, err)
			}
		})
	}
}

func TestNormalizePath(t *testing.T) {
	dir := t.TempDir()
	v, err := NewPathValidator(dir)
	if err != nil {
		t.Fatal(err)
	}

	got, err := v.NormalizePath("sub/../report.pdf")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if want := filepath.Join(dir, "report.pdf"); got != want {
		t.Errorf("NormalizePath() = %q, want %q", got, want)
	}

	if _, err := v.NormalizePath("../outside.pdf"); err == nil {
		t.Error("Expected error for path escaping the directory")
	}
	if _, err := v.NormalizePath("\x00"); err == nil {
		t.Error("Expected error for path made of NUL bytes")
	}
}

func TestMissingDirectoryAllowsAnyPath(t *testing.T) {
	v, err := NewPathValidator(filepath.Join(t.TempDir(), "missing"))
	if err != nil {
		t.Fatal(err)
	}
	if err := v.ValidatePath("/etc/hosts"); err != nil {
		t.Errorf("Unexpected error: %v", err)
	}
}
