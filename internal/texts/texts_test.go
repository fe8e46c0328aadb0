package texts

import (
	"math/rand"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadParagraphsSplitsOnBlankLines(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "paragraphs.txt")
	content := "first line\n  continues   here\n\n\nsecond paragraph\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	got, err := LoadParagraphs(path)
	if err != nil {
		t.Fatalf("load paragraphs: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 paragraphs, got %d: %q", len(got), got)
	}
	if got[0] != "first line continues here" {
		t.Fatalf("unexpected first paragraph %q", got[0])
	}
	if got[1] != "second paragraph" {
		t.Fatalf("unexpected second paragraph %q", got[1])
	}
}

func TestLoadParagraphsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.txt")
	if err := os.WriteFile(path, []byte("\n \n"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if _, err := LoadParagraphs(path); err == nil {
		t.Fatalf("expected error for empty file")
	}
}

func TestResolveDefaultsToBuiltin(t *testing.T) {
	got, err := Resolve("")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(got) != 5 {
		t.Fatalf("expected 5 builtin paragraphs, got %d", len(got))
	}
	if _, err := Resolve(filepath.Join(t.TempDir(), "missing.txt")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestPickerCoversPool(t *testing.T) {
	pool := []string{"a", "b", "c"}
	p, err := NewPickerWithSource(pool, rand.NewSource(1))
	if err != nil {
		t.Fatalf("new picker: %v", err)
	}
	if p.LastIndex() != -1 {
		t.Fatalf("expected no pick yet")
	}
	seen := map[string]int{}
	for i := 0; i < 300; i++ {
		got := p.Pick()
		if pool[p.LastIndex()] != got {
			t.Fatalf("last index does not match pick")
		}
		seen[got]++
	}
	for _, s := range pool {
		if seen[s] == 0 {
			t.Fatalf("expected %q to be picked at least once", s)
		}
	}
}

func TestPickerRejectsEmpty(t *testing.T) {
	if _, err := NewPicker(nil); err == nil {
		t.Fatalf("expected error for empty pool")
	}
	if _, err := NewPicker([]string{"ok", ""}); err == nil {
		t.Fatalf("expected error for empty paragraph")
	}
}
