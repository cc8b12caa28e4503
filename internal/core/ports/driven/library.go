package driven

import (
	"context"

	"github.com/custodia-labs/docanalyser-cli/internal/core/domain"
)

// LibraryStore persists the document library: the index of document records,
// each document's entries, conversation threads and saved analysis outputs.
//
// Implementations serialise all mutations internally. Concurrent callers
// never see a partially written library, and two overlapping saves resolve
// to one-after-the-other rather than lost updates.
type LibraryStore interface {
	// AddDocument stores a document record and its entries. Adding with a
	// (Type, Source) pair that already exists updates the existing record
	// in place and keeps its ID. Returns the document ID.
	AddDocument(ctx context.Context, doc domain.Document, entries []domain.Entry) (string, error)

	// UpdateEntries replaces the entries of an existing document and
	// refreshes its entry count and last-edited metadata.
	UpdateEntries(ctx context.Context, docID string, entries []domain.Entry) error

	// GetDocument retrieves a document record by ID.
	GetDocument(ctx context.Context, docID string) (*domain.Document, error)

	// GetEntries retrieves the entries of a document.
	GetEntries(ctx context.Context, docID string) ([]domain.Entry, error)

	// ListDocuments returns all document records, most recently fetched
	// first.
	ListDocuments(ctx context.Context) ([]domain.Document, error)

	// SearchDocuments returns documents whose title or source contains the
	// query, case-insensitively.
	SearchDocuments(ctx context.Context, query string) ([]domain.Document, error)

	// UpdateDocument rewrites a document record (title, class, metadata).
	// Entries are untouched.
	UpdateDocument(ctx context.Context, doc domain.Document) error

	// DeleteDocument removes a document record, its entries file and its
	// output files. Cascading to response branches is the service's job.
	DeleteDocument(ctx context.Context, docID string) error

	// SaveThread attaches a conversation thread to a document. Clears the
	// pre_created flag once the thread has at least one exchange.
	SaveThread(ctx context.Context, docID string, thread []domain.ThreadMessage, meta *domain.ThreadMetadata) error

	// LoadThread returns a document's thread and thread metadata.
	// A document without a thread yields (nil, nil, nil).
	LoadThread(ctx context.Context, docID string) ([]domain.ThreadMessage, *domain.ThreadMetadata, error)

	// ClearThread detaches the thread from a document.
	ClearThread(ctx context.Context, docID string) error

	// ResponseBranchesForSource returns branch summaries for every document
	// whose parent link points at sourceID, most recently updated first.
	// Branches with zero exchanges are excluded unless pre-created.
	ResponseBranchesForSource(ctx context.Context, sourceID string) ([]domain.BranchInfo, error)

	// AddProcessedOutput records an AI analysis against a document and
	// stores its full text. Returns the output ID.
	AddProcessedOutput(ctx context.Context, docID string, output domain.ProcessedOutput, text string) (string, error)

	// LoadProcessedOutput returns the full text of a saved output.
	LoadProcessedOutput(ctx context.Context, outputID string) (string, error)

	// DeleteProcessedOutput removes one saved output and its text file.
	DeleteProcessedOutput(ctx context.Context, docID, outputID string) error

	// Stats summarises the library.
	Stats(ctx context.Context) (*domain.LibraryStats, error)

	// Close releases resources.
	Close() error
}
