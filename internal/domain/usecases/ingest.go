package usecases

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Niso4ever/agentic-dispatch-go/internal/domain/entities"
	"github.com/Niso4ever/agentic-dispatch-go/internal/domain/ports"
)

// IngestUseCase handles knowledge note ingestion into the vector store.
type IngestUseCase struct {
	loader       ports.DocumentLoader
	embedder     ports.EmbeddingService
	vectorStore  ports.VectorStore
	chunkSize    int
	chunkOverlap int
}

// NewIngestUseCase creates an IngestUseCase with injected dependencies.
func NewIngestUseCase(
	loader ports.DocumentLoader,
	embedder ports.EmbeddingService,
	vectorStore ports.VectorStore,
	chunkSize, chunkOverlap int,
) *IngestUseCase {
	if chunkSize <= 0 {
		chunkSize = 500 // Default chunk size in characters
	}
	if chunkOverlap < 0 {
		chunkOverlap = 50
	}
	return &IngestUseCase{
		loader:       loader,
		embedder:     embedder,
		vectorStore:  vectorStore,
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
	}
}

// Ingest processes a document: chunks it, embeds it, stores it.
func (uc *IngestUseCase) Ingest(ctx context.Context, doc *entities.Document) error {
	chunks := uc.chunkDocument(doc)
	if len(chunks) == 0 {
		return nil // Empty document
	}

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Content
	}

	embeddings, err := uc.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return err
	}

	for i := range chunks {
		chunks[i].Embedding = embeddings[i]
	}

	return uc.vectorStore.Store(ctx, chunks)
}

// IngestFile loads a single note from disk and ingests it. Files the loader
// does not support are skipped silently so directory sweeps stay simple.
func (uc *IngestUseCase) IngestFile(ctx context.Context, path string) error {
	if !uc.supported(path) {
		return nil
	}
	doc, err := uc.loader.Load(ctx, path)
	if err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	// Replace any previous version of this note.
	if err := uc.vectorStore.Delete(ctx, doc.ID); err != nil {
		return fmt.Errorf("clearing previous chunks for %s: %w", path, err)
	}
	return uc.Ingest(ctx, doc)
}

// IngestDir sweeps a directory of knowledge notes and ingests every
// supported file. Returns how many documents were ingested.
func (uc *IngestUseCase) IngestDir(ctx context.Context, dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("reading notes dir: %w", err)
	}

	count := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if !uc.supported(path) {
			continue
		}
		if err := uc.IngestFile(ctx, path); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

// Delete removes a document from the store.
func (uc *IngestUseCase) Delete(ctx context.Context, documentID string) error {
	return uc.vectorStore.Delete(ctx, documentID)
}

// Reset drops every chunk from the store, for rebuilding the knowledge
// base from scratch.
func (uc *IngestUseCase) Reset(ctx context.Context) error {
	return uc.vectorStore.Clear(ctx)
}

func (uc *IngestUseCase) supported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range uc.loader.SupportedExtensions() {
		if e == ext {
			return true
		}
	}
	return false
}

// chunkDocument splits document content into overlapping chunks.
func (uc *IngestUseCase) chunkDocument(doc *entities.Document) []entities.Chunk {
	content := strings.TrimSpace(doc.Content)
	if len(content) == 0 {
		return nil
	}

	var chunks []entities.Chunk
	start := 0
	index := 0

	for start < len(content) {
		end := start + uc.chunkSize
		if end > len(content) {
			end = len(content)
		}

		// Try to break at word boundary
		if end < len(content) {
			lastSpace := strings.LastIndex(content[start:end], " ")
			if lastSpace > 0 {
				end = start + lastSpace
			}
		}

		chunkContent := strings.TrimSpace(content[start:end])
		if len(chunkContent) > 0 {
			chunks = append(chunks, entities.Chunk{
				ID:         generateChunkID(doc.ID, index),
				DocumentID: doc.ID,
				Content:    chunkContent,
				Index:      index,
			})
			index++
		}

		start = end - uc.chunkOverlap
		if start < 0 {
			start = 0
		}
		if start >= len(content) {
			break
		}
	}

	return chunks
}

// generateChunkID creates a deterministic ID for a chunk.
func generateChunkID(docID string, index int) string {
	hash := sha256.Sum256([]byte(fmt.Sprintf("%s:%d", docID, index)))
	return hex.EncodeToString(hash[:8])
}
