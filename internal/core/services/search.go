package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/custodia-labs/docanalyser-cli/internal/core/domain"
	"github.com/custodia-labs/docanalyser-cli/internal/core/ports/driven"
	"github.com/custodia-labs/docanalyser-cli/internal/core/ports/driving"
	"github.com/custodia-labs/docanalyser-cli/internal/logger"
)

// Ensure SearchService implements the interface.
var _ driving.SearchService = (*SearchService)(nil)

// defaultTopK bounds result count when the caller passes zero.
const defaultTopK = 10

// SearchService provides semantic search over the library's embeddings.
type SearchService struct {
	store     driven.LibraryStore
	index     driven.EmbeddingIndex
	embedding driven.EmbeddingService
}

// NewSearchService creates a new search service.
// embedding is optional (can be nil); without it, Search and EmbedDocument
// fail with domain.ErrEmbeddingUnavailable.
func NewSearchService(
	store driven.LibraryStore,
	index driven.EmbeddingIndex,
	embedding driven.EmbeddingService,
) *SearchService {
	return &SearchService{
		store:     store,
		index:     index,
		embedding: embedding,
	}
}

// Search embeds the query and returns the top-k documents by best chunk
// cosine similarity.
func (s *SearchService) Search(ctx context.Context, query string, topK int) ([]domain.SearchResult, error) {
	if s.embedding == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return []domain.SearchResult{}, nil
	}
	if topK <= 0 {
		topK = defaultTopK
	}

	logger.Section("Semantic Search")
	logger.Debug("query: %q", query)

	queryVec, err := s.embedding.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	chunks, err := s.index.AllChunks(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading index: %w", err)
	}
	logger.Debug("scoring %d chunks", len(chunks))

	// Best chunk per document wins; extra matches counted for context.
	best := make(map[string]*domain.SearchResult)
	for _, chunk := range chunks {
		score := domain.CosineSimilarity(queryVec, chunk.Embedding)
		if score <= 0 {
			continue
		}

		result, ok := best[chunk.DocID]
		if !ok {
			best[chunk.DocID] = &domain.SearchResult{
				DocID:        chunk.DocID,
				Position:     chunk.Position,
				Snippet:      chunk.Text,
				Score:        score,
				ChunkMatches: 1,
			}
			continue
		}

		result.ChunkMatches++
		if score > result.Score {
			result.Score = score
			result.Position = chunk.Position
			result.Snippet = chunk.Text
		}
	}

	results := make([]domain.SearchResult, 0, len(best))
	for _, result := range best {
		if doc, err := s.store.GetDocument(ctx, result.DocID); err == nil {
			result.Title = doc.Title
		}
		results = append(results, *result)
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].DocID < results[j].DocID
	})

	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

// EmbedDocument chunks a document's text and stores its vectors.
func (s *SearchService) EmbedDocument(ctx context.Context, docID string) error {
	if s.embedding == nil {
		return domain.ErrEmbeddingUnavailable
	}

	entries, err := s.store.GetEntries(ctx, docID)
	if err != nil {
		return err
	}

	parts := make([]string, 0, len(entries))
	for _, entry := range entries {
		parts = append(parts, entry.Text)
	}
	chunks := domain.ChunkText(strings.Join(parts, "\n\n"), domain.DefaultChunkSize, domain.DefaultChunkOverlap)
	if len(chunks) == 0 {
		return fmt.Errorf("%w: document has no text to embed", domain.ErrInvalidInput)
	}

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}

	vectors, err := s.embedding.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("embedding chunks: %w", err)
	}
	if len(vectors) != len(chunks) {
		return fmt.Errorf("embedding returned %d vectors for %d chunks", len(vectors), len(chunks))
	}
	for i := range chunks {
		chunks[i].Embedding = vectors[i]
	}

	// Record which model the vectors came from; a model change clears
	// the index.
	if err := s.index.SetModel(ctx, providerLabel(s.embedding), s.embedding.ModelName()); err != nil {
		return fmt.Errorf("recording embedding model: %w", err)
	}

	if err := s.index.AddDocumentChunks(ctx, docID, chunks); err != nil {
		return fmt.Errorf("storing chunks: %w", err)
	}

	logger.Info("embedded %s: %d chunks", docID, len(chunks))
	return nil
}

// RemoveEmbedding drops a document's vectors.
func (s *SearchService) RemoveEmbedding(ctx context.Context, docID string) error {
	return s.index.RemoveDocument(ctx, docID)
}

// Pending lists source documents that have entries but no embeddings yet.
func (s *SearchService) Pending(ctx context.Context) ([]domain.Document, error) {
	docs, err := s.store.ListDocuments(ctx)
	if err != nil {
		return nil, err
	}

	var pending []domain.Document
	for _, doc := range docs {
		if !doc.IsSource() || doc.EntryCount == 0 {
			continue
		}
		has, err := s.index.HasDocument(ctx, doc.ID)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		if !has {
			pending = append(pending, doc)
		}
	}
	return pending, nil
}

// Stats returns the number of embedded documents and chunks.
func (s *SearchService) Stats(ctx context.Context) (docs, chunks int, err error) {
	return s.index.Stats(ctx)
}

// providerLabel names the embedding backend for the index header.
// The service interface intentionally does not expose a provider; the
// model name is unambiguous, so a best-effort label suffices.
func providerLabel(svc driven.EmbeddingService) string {
	model := strings.ToLower(svc.ModelName())
	switch {
	case strings.HasPrefix(model, "text-embedding"):
		return string(domain.AIProviderOpenAI)
	case strings.Contains(model, "gemini") || strings.Contains(model, "embedding-00"):
		return string(domain.AIProviderGoogle)
	default:
		return string(domain.AIProviderLocal)
	}
}
