package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/docanalyser-cli/internal/core/domain"
	"github.com/custodia-labs/docanalyser-cli/internal/core/ports/driven"
	"github.com/custodia-labs/docanalyser-cli/internal/core/ports/driving"
	"github.com/custodia-labs/docanalyser-cli/internal/logger"
)

// Ensure LibraryService implements the interface.
var _ driving.LibraryService = (*LibraryService)(nil)

// LibraryService manages the document library.
type LibraryService struct {
	store driven.LibraryStore

	// index is optional; when present, deleting a document also drops
	// its embeddings.
	index driven.EmbeddingIndex
}

// NewLibraryService creates a new library service.
// The embedding index is optional (can be nil).
func NewLibraryService(store driven.LibraryStore, index driven.EmbeddingIndex) *LibraryService {
	return &LibraryService{
		store: store,
		index: index,
	}
}

// List returns all document records, most recently fetched first.
func (s *LibraryService) List(ctx context.Context) ([]domain.Document, error) {
	return s.store.ListDocuments(ctx)
}

// Get retrieves a document record by ID.
func (s *LibraryService) Get(ctx context.Context, docID string) (*domain.Document, error) {
	return s.store.GetDocument(ctx, docID)
}

// Entries retrieves the entries of a document.
func (s *LibraryService) Entries(ctx context.Context, docID string) ([]domain.Entry, error) {
	return s.store.GetEntries(ctx, docID)
}

// Content returns the document text with entries joined by blank lines.
// Location labels and transcript timestamps prefix their entries.
func (s *LibraryService) Content(ctx context.Context, docID string) (string, error) {
	entries, err := s.store.GetEntries(ctx, docID)
	if err != nil {
		return "", err
	}

	parts := make([]string, 0, len(entries))
	for _, entry := range entries {
		switch {
		case entry.Location != "":
			parts = append(parts, fmt.Sprintf("[%s]\n%s", entry.Location, entry.Text))
		case entry.Timestamp != "":
			parts = append(parts, fmt.Sprintf("[%s] %s", entry.Timestamp, entry.Text))
		default:
			parts = append(parts, entry.Text)
		}
	}
	return strings.Join(parts, "\n\n"), nil
}

// Search returns documents matching the query by title or source.
func (s *LibraryService) Search(ctx context.Context, query string) ([]domain.Document, error) {
	return s.store.SearchDocuments(ctx, query)
}

// Rename changes a document's title.
func (s *LibraryService) Rename(ctx context.Context, docID, title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return fmt.Errorf("%w: empty title", domain.ErrInvalidInput)
	}

	doc, err := s.store.GetDocument(ctx, docID)
	if err != nil {
		return err
	}

	doc.Title = title
	return s.store.UpdateDocument(ctx, *doc)
}

// Convert promotes a response or product document to a source document,
// detaching its parent link.
func (s *LibraryService) Convert(ctx context.Context, docID string) error {
	doc, err := s.store.GetDocument(ctx, docID)
	if err != nil {
		return err
	}

	if doc.IsSource() {
		return fmt.Errorf("%w: document is already a source", domain.ErrInvalidInput)
	}

	doc.Class = domain.ClassSource
	if doc.Metadata != nil {
		delete(doc.Metadata, domain.MetaParentDocumentID)
		delete(doc.Metadata, domain.MetaOriginalDocumentID)
		delete(doc.Metadata, domain.MetaPreCreated)
		delete(doc.Metadata, domain.MetaManuallyCreated)
	}
	doc.SetMeta(domain.MetaEditable, true)

	logger.Info("converted %s (%q) to source document", doc.ID, doc.Title)
	return s.store.UpdateDocument(ctx, *doc)
}

// Delete removes a document. Deleting a source cascades to its response
// branches and drops embeddings for everything removed.
func (s *LibraryService) Delete(ctx context.Context, docID string) error {
	doc, err := s.store.GetDocument(ctx, docID)
	if err != nil {
		return err
	}

	if doc.IsSource() {
		branches, err := s.store.ResponseBranchesForSource(ctx, docID)
		if err != nil {
			return fmt.Errorf("listing branches: %w", err)
		}
		for _, branch := range branches {
			if err := s.store.DeleteDocument(ctx, branch.DocID); err != nil {
				return fmt.Errorf("deleting branch %s: %w", branch.DocID, err)
			}
			s.dropEmbeddings(ctx, branch.DocID)
		}
	}

	if err := s.store.DeleteDocument(ctx, docID); err != nil {
		return err
	}
	s.dropEmbeddings(ctx, docID)

	logger.Info("deleted document %s", docID)
	return nil
}

// IsSourceDocument reports whether the document is a read-only source.
func (s *LibraryService) IsSourceDocument(ctx context.Context, docID string) (bool, error) {
	doc, err := s.store.GetDocument(ctx, docID)
	if err != nil {
		return false, err
	}
	return doc.IsSource(), nil
}

// Stats summarises the library.
func (s *LibraryService) Stats(ctx context.Context) (*domain.LibraryStats, error) {
	return s.store.Stats(ctx)
}

// dropEmbeddings best-effort removes a document's vectors.
func (s *LibraryService) dropEmbeddings(ctx context.Context, docID string) {
	if s.index == nil {
		return
	}
	if err := s.index.RemoveDocument(ctx, docID); err != nil {
		logger.Warn("dropping embeddings for %s: %v", docID, err)
	}
}
