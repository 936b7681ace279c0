// Package ports defines interfaces for external dependencies.
// Usecases depend on these abstractions, not concrete implementations.
// Adapters implement these interfaces.
package ports

import (
	"context"

	"github.com/Niso4ever/agentic-dispatch-go/internal/domain/entities"
)

// Forecaster produces a short-term solar generation estimate.
type Forecaster interface {
	// Forecast returns the expected output for the next interval.
	// Implementations must degrade to a usable estimate rather than fail
	// when a remote provider is unreachable.
	Forecast(ctx context.Context) (entities.Forecast, error)
}

// DispatchSolver optimizes BESS charge/discharge against a forecast horizon.
type DispatchSolver interface {
	Solve(ctx context.Context, plant entities.PlantMeta, horizon []entities.DispatchInterval) (entities.DispatchPlan, error)
}

// RelevanceGate classifies an operator query as on-topic or off-topic
// before the pipeline is allowed to run.
type RelevanceGate interface {
	// Relevant returns false with an operator-facing reason when the query
	// is out of scope.
	Relevant(ctx context.Context, query string) (bool, string, error)
}

// EmbeddingService generates vector embeddings for text.
type EmbeddingService interface {
	// Embed generates a vector embedding for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts efficiently.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// LLMService generates text responses from a language model.
type LLMService interface {
	// Generate produces a response given a prompt and supporting context.
	Generate(ctx context.Context, prompt string, context []string) (string, error)
}

// VectorStore persists and queries knowledge note embeddings.
type VectorStore interface {
	// Store saves chunks with their embeddings.
	Store(ctx context.Context, chunks []entities.Chunk) error

	// Search finds the most similar chunks to a query embedding.
	Search(ctx context.Context, embedding []float32, topK int) ([]entities.Insight, error)

	// Delete removes all chunks for a document.
	Delete(ctx context.Context, documentID string) error

	// Clear removes all data from the store.
	Clear(ctx context.Context) error
}

// DocumentLoader reads knowledge notes from disk.
type DocumentLoader interface {
	// Load reads a document from the given path.
	Load(ctx context.Context, path string) (*entities.Document, error)

	// SupportedExtensions returns file extensions this loader handles.
	SupportedExtensions() []string
}

// FileOperation describes what happened to a watched file.
type FileOperation int

const (
	FileCreated FileOperation = iota
	FileModified
	FileDeleted
)

// FileEvent is emitted by a FileWatcher when a watched file changes.
type FileEvent struct {
	Path      string
	Operation FileOperation
}

// FileWatcher monitors the knowledge notes directory for changes.
type FileWatcher interface {
	// Watch starts monitoring the directory and emits events.
	Watch(ctx context.Context, dir string) (<-chan FileEvent, error)

	// Stop releases watcher resources.
	Stop() error
}
