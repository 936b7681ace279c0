// Package loader provides knowledge note loading adapters.
package loader

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Niso4ever/agentic-dispatch-go/internal/domain/entities"
)

// TextLoader loads plain text notes (.txt, .md).
type TextLoader struct{}

// NewTextLoader creates a new text note loader.
func NewTextLoader() *TextLoader {
	return &TextLoader{}
}

// Load reads a text note from the given path.
func (l *TextLoader) Load(ctx context.Context, path string) (*entities.Document, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}

	info, err := file.Stat()
	if err != nil {
		return nil, err
	}

	return &entities.Document{
		ID:        generateDocID(path),
		Name:      filepath.Base(path),
		Path:      path,
		Content:   string(content),
		CreatedAt: info.ModTime(),
		UpdatedAt: time.Now(),
	}, nil
}

// SupportedExtensions returns file extensions this loader handles.
func (l *TextLoader) SupportedExtensions() []string {
	return []string{".txt", ".md", ".markdown"}
}

// MultiLoader routes paths to the loader registered for their extension.
type MultiLoader struct {
	loaders map[string]*TextLoader
}

// NewMultiLoader creates a loader covering all supported note formats.
func NewMultiLoader() *MultiLoader {
	text := NewTextLoader()
	loaders := make(map[string]*TextLoader)
	for _, ext := range text.SupportedExtensions() {
		loaders[ext] = text
	}
	return &MultiLoader{loaders: loaders}
}

// Load dispatches to the loader for the file's extension.
func (l *MultiLoader) Load(ctx context.Context, path string) (*entities.Document, error) {
	ext := strings.ToLower(filepath.Ext(path))
	loader, ok := l.loaders[ext]
	if !ok {
		return nil, fmt.Errorf("unsupported file type: %s", ext)
	}
	return loader.Load(ctx, path)
}

// SupportedExtensions returns all extensions any registered loader handles.
func (l *MultiLoader) SupportedExtensions() []string {
	exts := make([]string, 0, len(l.loaders))
	for ext := range l.loaders {
		exts = append(exts, ext)
	}
	return exts
}

// DocumentID derives the deterministic ID a file at this path would load
// with. Lets callers drop a document when the file disappears from disk.
func DocumentID(path string) string {
	hash := sha256.Sum256([]byte(path))
	return hex.EncodeToString(hash[:16])
}

func generateDocID(path string) string {
	return DocumentID(path)
}
