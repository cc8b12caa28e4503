package driving

import (
	"context"

	"github.com/custodia-labs/docanalyser-cli/internal/core/domain"
)

// SearchService provides semantic search over the library's embeddings.
type SearchService interface {
	// Search embeds the query and returns the top-k documents by best
	// chunk cosine similarity.
	Search(ctx context.Context, query string, topK int) ([]domain.SearchResult, error)

	// EmbedDocument chunks a document's text and stores its vectors.
	EmbedDocument(ctx context.Context, docID string) error

	// RemoveEmbedding drops a document's vectors.
	RemoveEmbedding(ctx context.Context, docID string) error

	// Pending lists source documents that have entries but no embeddings
	// yet.
	Pending(ctx context.Context) ([]domain.Document, error)

	// Stats returns the number of embedded documents and chunks.
	Stats(ctx context.Context) (docs, chunks int, err error)
}
