package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/docanalyser-cli/internal/core/domain"
	"github.com/custodia-labs/docanalyser-cli/internal/core/ports/driven"
	"github.com/custodia-labs/docanalyser-cli/internal/core/ports/driving"
	"github.com/custodia-labs/docanalyser-cli/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// IngestService turns a source reference into a source document.
type IngestService struct {
	store    driven.LibraryStore
	registry driven.FetcherRegistry

	// search is optional; when present and autoEmbed is set, ingestion
	// queues background embedding generation.
	search    driving.SearchService
	autoEmbed bool
}

// NewIngestService creates a new ingest service.
// search is optional (can be nil).
func NewIngestService(
	store driven.LibraryStore,
	registry driven.FetcherRegistry,
	search driving.SearchService,
	autoEmbed bool,
) *IngestService {
	return &IngestService{
		store:     store,
		registry:  registry,
		search:    search,
		autoEmbed: autoEmbed,
	}
}

// Ingest fetches the source with the fetcher that claims it and stores the
// result. Re-ingesting the same source updates the existing document.
func (s *IngestService) Ingest(ctx context.Context, source string) (*driving.IngestReport, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return nil, fmt.Errorf("%w: empty source", domain.ErrInvalidInput)
	}

	fetcher, err := s.registry.Resolve(source)
	if err != nil {
		return nil, err
	}

	logger.Section("Ingestion")
	logger.Info("fetching %s via %s", source, fetcher.Type())

	result, err := fetcher.Fetch(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", source, err)
	}

	docID := domain.GenerateDocID(fetcher.Type(), source)
	existing, err := s.store.GetDocument(ctx, docID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	updated := existing != nil

	doc := domain.Document{
		ID:       docID,
		Type:     fetcher.Type(),
		Class:    domain.ClassSource,
		Source:   source,
		Title:    result.Title,
		Fetched:  time.Now().UTC(),
		Metadata: result.Metadata,
	}

	storedID, err := s.store.AddDocument(ctx, doc, result.Entries)
	if err != nil {
		return nil, fmt.Errorf("storing document: %w", err)
	}

	report := &driving.IngestReport{
		DocID:      storedID,
		Title:      result.Title,
		Type:       fetcher.Type(),
		EntryCount: len(result.Entries),
		Updated:    updated,
	}

	if s.autoEmbed && s.search != nil {
		report.EmbeddingQueued = true
		go s.embedInBackground(storedID, result.Title)
	}

	logger.Info("stored %s (%d entries, updated=%v)", storedID, len(result.Entries), updated)
	return report, nil
}

// SupportedTypes lists the registered fetcher types.
func (s *IngestService) SupportedTypes() []string {
	return s.registry.Types()
}

// embedInBackground generates embeddings without blocking ingestion.
// Failures are logged, not surfaced; search just stays stale.
func (s *IngestService) embedInBackground(docID, title string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if err := s.search.EmbedDocument(ctx, docID); err != nil {
		logger.Warn("background embedding of %q failed: %v", title, err)
		return
	}
	logger.Debug("embedded %q in background", title)
}
