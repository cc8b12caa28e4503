package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/docanalyser-cli/internal/core/domain"
	"github.com/custodia-labs/docanalyser-cli/internal/core/ports/driven"
)

// Ensure LibraryStore implements the interface.
var _ driven.LibraryStore = (*LibraryStore)(nil)

// LibraryStore is an in-memory implementation of driven.LibraryStore.
type LibraryStore struct {
	mu        sync.RWMutex
	documents map[string]*domain.Document
	entries   map[string][]domain.Entry
	outputs   map[string]string
}

// NewLibraryStore creates a new in-memory library store.
func NewLibraryStore() *LibraryStore {
	return &LibraryStore{
		documents: make(map[string]*domain.Document),
		entries:   make(map[string][]domain.Entry),
		outputs:   make(map[string]string),
	}
}

// AddDocument stores a document and its entries. An existing record with
// the same (Type, Source) pair is updated in place and keeps its ID.
func (s *LibraryStore) AddDocument(_ context.Context, doc domain.Document, entries []domain.Entry) (string, error) {
	if doc.Type == "" || doc.Source == "" {
		return "", domain.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing := s.findBySource(doc.Type, doc.Source); existing != nil {
		doc.ID = existing.ID
		doc.Fetched = existing.Fetched
		doc.Thread = existing.Thread
		doc.ThreadMetadata = existing.ThreadMetadata
		doc.ProcessedOutputs = existing.ProcessedOutputs
		doc.SetMeta(domain.MetaLastEdited, time.Now().UTC().Format(time.RFC3339))
	} else {
		if doc.ID == "" {
			doc.ID = domain.GenerateDocID(doc.Type, doc.Source)
		}
		if doc.Fetched.IsZero() {
			doc.Fetched = time.Now().UTC()
		}
	}
	if doc.Class == "" {
		doc.Class = domain.ClassSource
	}
	doc.EntryCount = len(entries)

	s.documents[doc.ID] = &doc
	s.entries[doc.ID] = entries
	return doc.ID, nil
}

// UpdateEntries replaces the entries of an existing document.
func (s *LibraryStore) UpdateEntries(_ context.Context, docID string, entries []domain.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.documents[docID]
	if !ok {
		return domain.ErrNotFound
	}
	s.entries[docID] = entries
	doc.EntryCount = len(entries)
	doc.SetMeta(domain.MetaLastEdited, time.Now().UTC().Format(time.RFC3339))
	return nil
}

// GetDocument retrieves a document record by ID.
func (s *LibraryStore) GetDocument(_ context.Context, docID string) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.documents[docID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := *doc
	return &out, nil
}

// GetEntries retrieves the entries of a document.
func (s *LibraryStore) GetEntries(_ context.Context, docID string) ([]domain.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.documents[docID]; !ok {
		return nil, domain.ErrNotFound
	}
	return s.entries[docID], nil
}

// ListDocuments returns all document records, most recently fetched first.
func (s *LibraryStore) ListDocuments(_ context.Context) ([]domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	docs := make([]domain.Document, 0, len(s.documents))
	for _, doc := range s.documents {
		docs = append(docs, *doc)
	}
	sort.Slice(docs, func(i, j int) bool {
		return docs[i].Fetched.After(docs[j].Fetched)
	})
	return docs, nil
}

// SearchDocuments returns documents whose title or source contains the
// query, case-insensitively.
func (s *LibraryStore) SearchDocuments(_ context.Context, query string) ([]domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	needle := strings.ToLower(query)
	var docs []domain.Document
	for _, doc := range s.documents {
		if strings.Contains(strings.ToLower(doc.Title), needle) ||
			strings.Contains(strings.ToLower(doc.Source), needle) {
			docs = append(docs, *doc)
		}
	}
	sort.Slice(docs, func(i, j int) bool {
		return docs[i].Fetched.After(docs[j].Fetched)
	})
	return docs, nil
}

// UpdateDocument rewrites a document record. Entries are untouched.
func (s *LibraryStore) UpdateDocument(_ context.Context, doc domain.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.documents[doc.ID]
	if !ok {
		return domain.ErrNotFound
	}
	doc.EntryCount = existing.EntryCount
	s.documents[doc.ID] = &doc
	return nil
}

// DeleteDocument removes a document record, its entries and its outputs.
func (s *LibraryStore) DeleteDocument(_ context.Context, docID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.documents[docID]
	if !ok {
		return domain.ErrNotFound
	}
	for _, output := range doc.ProcessedOutputs {
		delete(s.outputs, output.ID)
	}
	delete(s.documents, docID)
	delete(s.entries, docID)
	return nil
}

// SaveThread attaches a conversation thread to a document, clearing the
// pre-created flag once the thread has an exchange.
func (s *LibraryStore) SaveThread(_ context.Context, docID string, thread []domain.ThreadMessage, meta *domain.ThreadMetadata) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.documents[docID]
	if !ok {
		return domain.ErrNotFound
	}
	doc.Thread = thread
	doc.ThreadMetadata = meta
	if domain.ExchangeCount(thread) > 0 && doc.Metadata != nil {
		delete(doc.Metadata, domain.MetaPreCreated)
	}
	return nil
}

// LoadThread returns a document's thread and thread metadata.
func (s *LibraryStore) LoadThread(_ context.Context, docID string) ([]domain.ThreadMessage, *domain.ThreadMetadata, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.documents[docID]
	if !ok {
		return nil, nil, domain.ErrNotFound
	}
	if doc.Thread == nil {
		return nil, nil, nil
	}

	thread := make([]domain.ThreadMessage, len(doc.Thread))
	copy(thread, doc.Thread)
	var meta *domain.ThreadMetadata
	if doc.ThreadMetadata != nil {
		m := *doc.ThreadMetadata
		meta = &m
	}
	return thread, meta, nil
}

// ClearThread detaches the thread from a document.
func (s *LibraryStore) ClearThread(_ context.Context, docID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.documents[docID]
	if !ok {
		return domain.ErrNotFound
	}
	doc.Thread = nil
	doc.ThreadMetadata = nil
	return nil
}

// ResponseBranchesForSource returns branch summaries for every document
// whose parent link points at sourceID, most recently updated first.
func (s *LibraryStore) ResponseBranchesForSource(_ context.Context, sourceID string) ([]domain.BranchInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var branches []domain.BranchInfo
	for _, doc := range s.documents {
		if doc.ParentDocumentID() != sourceID {
			continue
		}
		exchanges := domain.ExchangeCount(doc.Thread)
		if exchanges == 0 && !doc.PreCreated() {
			continue
		}
		lastUpdated := doc.Fetched
		if doc.ThreadMetadata != nil && !doc.ThreadMetadata.LastUpdated.IsZero() {
			lastUpdated = doc.ThreadMetadata.LastUpdated
		}
		branches = append(branches, domain.BranchInfo{
			DocID:         doc.ID,
			Title:         doc.Title,
			ExchangeCount: exchanges,
			LastUpdated:   lastUpdated,
			Processing:    doc.PreCreated() && !doc.ManuallyCreated(),
		})
	}
	sort.Slice(branches, func(i, j int) bool {
		return branches[i].LastUpdated.After(branches[j].LastUpdated)
	})
	return branches, nil
}

// AddProcessedOutput records an analysis against a document.
func (s *LibraryStore) AddProcessedOutput(_ context.Context, docID string, output domain.ProcessedOutput, text string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.documents[docID]
	if !ok {
		return "", domain.ErrNotFound
	}
	if output.ID == "" {
		output.ID = uuid.New().String()
	}
	if output.Timestamp.IsZero() {
		output.Timestamp = time.Now().UTC()
	}
	s.outputs[output.ID] = text
	doc.ProcessedOutputs = append(doc.ProcessedOutputs, output)
	return output.ID, nil
}

// LoadProcessedOutput returns the full text of a saved output.
func (s *LibraryStore) LoadProcessedOutput(_ context.Context, outputID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	text, ok := s.outputs[outputID]
	if !ok {
		return "", domain.ErrNotFound
	}
	return text, nil
}

// DeleteProcessedOutput removes one saved output.
func (s *LibraryStore) DeleteProcessedOutput(_ context.Context, docID, outputID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.documents[docID]
	if !ok {
		return domain.ErrNotFound
	}
	idx := -1
	for i, output := range doc.ProcessedOutputs {
		if output.ID == outputID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return domain.ErrNotFound
	}
	delete(s.outputs, outputID)
	doc.ProcessedOutputs = append(doc.ProcessedOutputs[:idx], doc.ProcessedOutputs[idx+1:]...)
	return nil
}

// Stats summarises the library.
func (s *LibraryStore) Stats(_ context.Context) (*domain.LibraryStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := &domain.LibraryStats{
		ByClass: make(map[domain.DocumentClass]int),
		ByType:  make(map[string]int),
	}
	for _, doc := range s.documents {
		stats.Documents++
		stats.ByClass[doc.Class]++
		stats.ByType[doc.Type]++
		stats.Entries += doc.EntryCount
		stats.Outputs += len(doc.ProcessedOutputs)
	}
	return stats, nil
}

// Close releases resources. The in-memory store holds none.
func (s *LibraryStore) Close() error {
	return nil
}

// findBySource returns the record with the given type and source, or nil.
func (s *LibraryStore) findBySource(docType, source string) *domain.Document {
	for _, doc := range s.documents {
		if doc.Type == docType && doc.Source == source {
			return doc
		}
	}
	return nil
}
