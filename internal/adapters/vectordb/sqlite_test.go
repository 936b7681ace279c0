package vectordb

import (
	"context"
	"os"
	"testing"

	"github.com/Niso4ever/agentic-dispatch-go/internal/domain/entities"
)

func TestSQLiteStore_StoreAndSearch(t *testing.T) {
	dir, _ := os.MkdirTemp("", "vectordb-test-*")
	defer os.RemoveAll(dir)

	store, err := NewSQLiteStore(dir)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	chunks := []entities.Chunk{
		{ID: "c1", DocumentID: "curtailment.md", Content: "clipping", Embedding: []float32{1.0, 0.0, 0.0}},
		{ID: "c2", DocumentID: "curtailment.md", Content: "soc limits", Embedding: []float32{0.0, 1.0, 0.0}},
	}

	if err := store.Store(ctx, chunks); err != nil {
		t.Fatalf("store failed: %v", err)
	}

	query := []float32{1.0, 0.0, 0.0} // Should match c1
	results, err := store.Search(ctx, query, 2)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}

	if len(results) != 2 {
		t.Errorf("expected 2 results, got %d", len(results))
	}
	if results[0].Chunk.ID != "c1" {
		t.Error("c1 should be top result")
	}
	if results[0].SourceDoc != "curtailment.md" {
		t.Errorf("insight should carry source attribution, got %q", results[0].SourceDoc)
	}
}

func TestSQLiteStore_Delete(t *testing.T) {
	dir, _ := os.MkdirTemp("", "vectordb-test-*")
	defer os.RemoveAll(dir)

	store, _ := NewSQLiteStore(dir)
	defer store.Close()

	ctx := context.Background()
	store.Store(ctx, []entities.Chunk{
		{ID: "c1", DocumentID: "doc1", Content: "test", Embedding: []float32{1, 0, 0}},
	})

	if err := store.Delete(ctx, "doc1"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	results, _ := store.Search(ctx, []float32{1, 0, 0}, 10)
	if len(results) != 0 {
		t.Error("chunks should be deleted")
	}
}

func TestSQLiteStore_Clear(t *testing.T) {
	dir, _ := os.MkdirTemp("", "vectordb-test-*")
	defer os.RemoveAll(dir)

	store, _ := NewSQLiteStore(dir)
	defer store.Close()

	ctx := context.Background()
	store.Store(ctx, []entities.Chunk{
		{ID: "c1", DocumentID: "doc1", Content: "a", Embedding: []float32{1, 0, 0}},
		{ID: "c2", DocumentID: "doc2", Content: "b", Embedding: []float32{0, 1, 0}},
	})

	store.Clear(ctx)

	count, _ := store.ChunkCount(ctx)
	if count != 0 {
		t.Errorf("expected 0 chunks after clear, got %d", count)
	}
}

func TestSQLiteStore_Reopen(t *testing.T) {
	dir, _ := os.MkdirTemp("", "vectordb-test-*")
	defer os.RemoveAll(dir)

	ctx := context.Background()
	store, _ := NewSQLiteStore(dir)
	store.Store(ctx, []entities.Chunk{
		{ID: "c1", DocumentID: "doc1", Content: "persisted", Embedding: []float32{1, 0, 0}},
	})
	store.Close()

	reopened, err := NewSQLiteStore(dir)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer reopened.Close()

	results, err := reopened.Search(ctx, []float32{1, 0, 0}, 1)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(results) != 1 || results[0].Chunk.Content != "persisted" {
		t.Error("chunks should survive a reopen")
	}
}

func TestCosineSimilarity(t *testing.T) {
	a := []float32{1, 0, 0}
	b := []float32{1, 0, 0}
	c := []float32{0, 1, 0}

	if cosineSimilarity(a, b) != 1.0 {
		t.Error("same vectors should have score 1.0")
	}
	if cosineSimilarity(a, c) != 0.0 {
		t.Error("orthogonal vectors should have score 0.0")
	}
	if cosineSimilarity(a, []float32{1, 0}) != 0.0 {
		t.Error("mismatched dimensions should score 0.0")
	}
}

func TestInMemoryStore_SearchRanksByScore(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	store.Store(ctx, []entities.Chunk{
		{ID: "c1", DocumentID: "doc1", Content: "exact", Embedding: []float32{1, 0, 0}},
		{ID: "c2", DocumentID: "doc2", Content: "partial", Embedding: []float32{0.7, 0.7, 0}},
		{ID: "c3", DocumentID: "doc3", Content: "orthogonal", Embedding: []float32{0, 0, 1}},
	})

	results, err := store.Search(ctx, []float32{1, 0, 0}, 2)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}

	if len(results) != 2 {
		t.Fatalf("expected topK=2 results, got %d", len(results))
	}
	if results[0].Chunk.ID != "c1" || results[1].Chunk.ID != "c2" {
		t.Error("results should rank by cosine similarity")
	}
}

func TestInMemoryStore_Delete(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	store.Store(ctx, []entities.Chunk{
		{ID: "c1", DocumentID: "doc1", Embedding: []float32{1, 0}},
		{ID: "c2", DocumentID: "doc2", Embedding: []float32{0, 1}},
	})
	store.Delete(ctx, "doc1")

	results, _ := store.Search(ctx, []float32{1, 0}, 10)
	for _, r := range results {
		if r.Chunk.DocumentID == "doc1" {
			t.Error("doc1 chunks should be gone")
		}
	}
}
