package loader

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestTextLoader_LoadTxtFile(t *testing.T) {
	dir, _ := os.MkdirTemp("", "loader-test-*")
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "curtailment.txt")
	os.WriteFile(path, []byte("Clipping peaks at solar noon."), 0644)

	loader := NewTextLoader()
	doc, err := loader.Load(context.Background(), path)

	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if doc.Content != "Clipping peaks at solar noon." {
		t.Errorf("unexpected content: %s", doc.Content)
	}
	if doc.Name != "curtailment.txt" {
		t.Errorf("unexpected name: %s", doc.Name)
	}
}

func TestTextLoader_DeterministicID(t *testing.T) {
	dir, _ := os.MkdirTemp("", "loader-test-*")
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "note.txt")
	os.WriteFile(path, []byte("v1"), 0644)

	loader := NewTextLoader()
	first, _ := loader.Load(context.Background(), path)

	os.WriteFile(path, []byte("v2"), 0644)
	second, _ := loader.Load(context.Background(), path)

	if first.ID != second.ID {
		t.Error("document ID should be stable across edits so re-ingest replaces")
	}
}

func TestMultiLoader_DispatchByExtension(t *testing.T) {
	dir, _ := os.MkdirTemp("", "loader-test-*")
	defer os.RemoveAll(dir)

	txtPath := filepath.Join(dir, "test.txt")
	mdPath := filepath.Join(dir, "test.md")
	os.WriteFile(txtPath, []byte("txt content"), 0644)
	os.WriteFile(mdPath, []byte("# Markdown"), 0644)

	loader := NewMultiLoader()

	txt, _ := loader.Load(context.Background(), txtPath)
	md, _ := loader.Load(context.Background(), mdPath)

	if txt.Content != "txt content" {
		t.Error("txt not loaded correctly")
	}
	if md.Content != "# Markdown" {
		t.Error("md not loaded correctly")
	}
}

func TestMultiLoader_UnsupportedExtension(t *testing.T) {
	loader := NewMultiLoader()

	_, err := loader.Load(context.Background(), "notes.pdf")
	if err == nil {
		t.Error("unsupported extension should error")
	}
}
