package driving

import (
	"context"

	"github.com/custodia-labs/docanalyser-cli/internal/core/domain"
)

// LibraryService manages the document library.
type LibraryService interface {
	// List returns all document records, most recently fetched first.
	List(ctx context.Context) ([]domain.Document, error)

	// Get retrieves a document record by ID.
	Get(ctx context.Context, docID string) (*domain.Document, error)

	// Entries retrieves the entries of a document.
	Entries(ctx context.Context, docID string) ([]domain.Entry, error)

	// Content returns the document text with entries joined by blank
	// lines, location labels included where present.
	Content(ctx context.Context, docID string) (string, error)

	// Search returns documents matching the query by title or source.
	Search(ctx context.Context, query string) ([]domain.Document, error)

	// Rename changes a document's title.
	Rename(ctx context.Context, docID, title string) error

	// Convert promotes a response or product document to a source
	// document, detaching its parent link. The explicit escape hatch for
	// editing ingested content.
	Convert(ctx context.Context, docID string) error

	// Delete removes a document. Deleting a source cascades to its
	// response branches, their files and any embeddings.
	Delete(ctx context.Context, docID string) error

	// IsSourceDocument reports whether the document is a read-only source.
	IsSourceDocument(ctx context.Context, docID string) (bool, error)

	// Stats summarises the library.
	Stats(ctx context.Context) (*domain.LibraryStats, error)
}
