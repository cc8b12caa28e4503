package driven

import (
	"context"

	"github.com/custodia-labs/docanalyser-cli/internal/core/domain"
)

// EmbeddingIndex persists chunk vectors keyed by document ID.
// Backed by the embeddings file managed alongside the library.
type EmbeddingIndex interface {
	// AddDocumentChunks stores the embedded chunks of a document,
	// replacing any previous chunks for the same document.
	AddDocumentChunks(ctx context.Context, docID string, chunks []domain.Chunk) error

	// GetDocumentChunks retrieves the chunks of a document.
	// Documents without embeddings yield domain.ErrNotFound.
	GetDocumentChunks(ctx context.Context, docID string) ([]domain.Chunk, error)

	// HasDocument reports whether a document has embeddings.
	HasDocument(ctx context.Context, docID string) (bool, error)

	// RemoveDocument drops a document's chunks.
	RemoveDocument(ctx context.Context, docID string) error

	// AllChunks returns every chunk in the index with DocID populated.
	// Semantic search scans these for cosine similarity.
	AllChunks(ctx context.Context) ([]domain.Chunk, error)

	// Stats returns the number of indexed documents and chunks.
	Stats(ctx context.Context) (docs, chunks int, err error)

	// SetModel records which provider/model produced the vectors.
	// Vectors from different models are not comparable.
	SetModel(ctx context.Context, provider, model string) error

	// Model returns the recorded provider/model pair.
	Model(ctx context.Context) (provider, model string, err error)

	// Close releases resources.
	Close() error
}
