package jsonfile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/docanalyser-cli/internal/core/domain"
	"github.com/custodia-labs/docanalyser-cli/internal/core/ports/driven"
)

// libraryFileName is the index file inside the data directory.
const libraryFileName = "library.json"

// previewLength is how many characters of an output are kept in the index.
const previewLength = 200

// library is the on-disk shape of the index file.
type library struct {
	Version   int                         `json:"version"`
	Documents map[string]*domain.Document `json:"documents"`
}

// Store implements driven.LibraryStore on a directory of JSON files.
type Store struct {
	mu  sync.Mutex
	dir string
	lib *library
}

var _ driven.LibraryStore = (*Store)(nil)

// NewStore opens the library at the given data directory, creating it if
// needed. If dataDir is empty, defaults to ~/.docanalyser/data.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".docanalyser", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	s := &Store{dir: dataDir}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Close releases resources. The jsonfile store holds no open handles.
func (s *Store) Close() error {
	return nil
}

// Path returns the data directory.
func (s *Store) Path() string {
	return s.dir
}

// load reads the index file. A corrupt index is set aside and replaced
// with an empty library rather than blocking every operation.
func (s *Store) load() error {
	path := filepath.Join(s.dir, libraryFileName)

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		s.lib = &library{Version: 1, Documents: make(map[string]*domain.Document)}
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading library index: %w", err)
	}

	var lib library
	if err := json.Unmarshal(data, &lib); err != nil {
		backup := path + ".corrupt." + time.Now().UTC().Format("20060102T150405")
		if renameErr := os.Rename(path, backup); renameErr != nil {
			return fmt.Errorf("setting aside corrupt library index: %w", renameErr)
		}
		s.lib = &library{Version: 1, Documents: make(map[string]*domain.Document)}
		return nil
	}

	if lib.Documents == nil {
		lib.Documents = make(map[string]*domain.Document)
	}
	if lib.Version == 0 {
		lib.Version = 1
	}
	s.lib = &lib
	return nil
}

// save writes the index atomically: temp file in the same directory, then
// rename over the old index.
func (s *Store) save() error {
	data, err := json.MarshalIndent(s.lib, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling library index: %w", err)
	}
	return s.writeAtomic(filepath.Join(s.dir, libraryFileName), data)
}

// writeAtomic writes data to path via a temp file and rename.
func (s *Store) writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(s.dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing %s: %w", filepath.Base(path), err)
	}
	return nil
}

// entriesPath is the entries file of a document.
func (s *Store) entriesPath(docID string) string {
	return filepath.Join(s.dir, "doc_"+docID+"_entries.json")
}

// outputPath is the text file of a saved analysis output.
func (s *Store) outputPath(outputID string) string {
	return filepath.Join(s.dir, "output_"+outputID+".txt")
}

// AddDocument stores a document and its entries. An existing record with
// the same (Type, Source) pair is updated in place and keeps its ID.
func (s *Store) AddDocument(_ context.Context, doc domain.Document, entries []domain.Entry) (string, error) {
	if doc.Type == "" || doc.Source == "" {
		return "", fmt.Errorf("%w: document needs type and source", domain.ErrInvalidInput)
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

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshalling entries: %w", err)
	}
	if err := s.writeAtomic(s.entriesPath(doc.ID), data); err != nil {
		return "", err
	}

	s.lib.Documents[doc.ID] = &doc
	if err := s.save(); err != nil {
		return "", err
	}
	return doc.ID, nil
}

// UpdateEntries replaces the entries of an existing document.
func (s *Store) UpdateEntries(_ context.Context, docID string, entries []domain.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.lib.Documents[docID]
	if !ok {
		return domain.ErrNotFound
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling entries: %w", err)
	}
	if err := s.writeAtomic(s.entriesPath(docID), data); err != nil {
		return err
	}

	doc.EntryCount = len(entries)
	doc.SetMeta(domain.MetaLastEdited, time.Now().UTC().Format(time.RFC3339))
	return s.save()
}

// GetDocument retrieves a document record by ID.
func (s *Store) GetDocument(_ context.Context, docID string) (*domain.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.lib.Documents[docID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := *doc
	return &out, nil
}

// GetEntries retrieves the entries of a document. A document whose entries
// file is missing yields an empty slice.
func (s *Store) GetEntries(_ context.Context, docID string) ([]domain.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.lib.Documents[docID]; !ok {
		return nil, domain.ErrNotFound
	}

	data, err := os.ReadFile(s.entriesPath(docID))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading entries: %w", err)
	}

	var entries []domain.Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("unmarshalling entries: %w", err)
	}
	return entries, nil
}

// ListDocuments returns all document records, most recently fetched first.
func (s *Store) ListDocuments(_ context.Context) ([]domain.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	docs := make([]domain.Document, 0, len(s.lib.Documents))
	for _, doc := range s.lib.Documents {
		docs = append(docs, *doc)
	}
	sort.Slice(docs, func(i, j int) bool {
		return docs[i].Fetched.After(docs[j].Fetched)
	})
	return docs, nil
}

// SearchDocuments returns documents whose title or source contains the
// query, case-insensitively.
func (s *Store) SearchDocuments(_ context.Context, query string) ([]domain.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	needle := strings.ToLower(query)
	var docs []domain.Document
	for _, doc := range s.lib.Documents {
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

// UpdateDocument rewrites a document record. Entries and their count are
// untouched.
func (s *Store) UpdateDocument(_ context.Context, doc domain.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.lib.Documents[doc.ID]
	if !ok {
		return domain.ErrNotFound
	}
	doc.EntryCount = existing.EntryCount
	s.lib.Documents[doc.ID] = &doc
	return s.save()
}

// DeleteDocument removes a document record, its entries file and its
// output files.
func (s *Store) DeleteDocument(_ context.Context, docID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.lib.Documents[docID]
	if !ok {
		return domain.ErrNotFound
	}

	for _, output := range doc.ProcessedOutputs {
		if err := os.Remove(s.outputPath(output.ID)); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("removing output file: %w", err)
		}
	}
	if err := os.Remove(s.entriesPath(docID)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing entries file: %w", err)
	}

	delete(s.lib.Documents, docID)
	return s.save()
}

// SaveThread attaches a conversation thread to a document. Once the thread
// has at least one exchange the pre-created flag is cleared, which removes
// the processing indicator from the branch.
func (s *Store) SaveThread(_ context.Context, docID string, thread []domain.ThreadMessage, meta *domain.ThreadMetadata) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.lib.Documents[docID]
	if !ok {
		return domain.ErrNotFound
	}

	doc.Thread = thread
	doc.ThreadMetadata = meta
	if domain.ExchangeCount(thread) > 0 && doc.Metadata != nil {
		delete(doc.Metadata, domain.MetaPreCreated)
	}
	return s.save()
}

// LoadThread returns a document's thread and thread metadata.
func (s *Store) LoadThread(_ context.Context, docID string) ([]domain.ThreadMessage, *domain.ThreadMetadata, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.lib.Documents[docID]
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
func (s *Store) ClearThread(_ context.Context, docID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.lib.Documents[docID]
	if !ok {
		return domain.ErrNotFound
	}
	doc.Thread = nil
	doc.ThreadMetadata = nil
	return s.save()
}

// ResponseBranchesForSource returns branch summaries for every document
// whose parent link points at sourceID, most recently updated first.
func (s *Store) ResponseBranchesForSource(_ context.Context, sourceID string) ([]domain.BranchInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var branches []domain.BranchInfo
	for _, doc := range s.lib.Documents {
		if doc.ParentDocumentID() != sourceID {
			continue
		}
		info, ok := branchInfo(doc)
		if !ok {
			continue
		}
		branches = append(branches, info)
	}
	sort.Slice(branches, func(i, j int) bool {
		return branches[i].LastUpdated.After(branches[j].LastUpdated)
	})
	return branches, nil
}

// AddProcessedOutput records an analysis against a document and stores its
// full text.
func (s *Store) AddProcessedOutput(_ context.Context, docID string, output domain.ProcessedOutput, text string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.lib.Documents[docID]
	if !ok {
		return "", domain.ErrNotFound
	}

	if output.ID == "" {
		output.ID = uuid.New().String()
	}
	if output.Timestamp.IsZero() {
		output.Timestamp = time.Now().UTC()
	}
	if output.Preview == "" {
		output.Preview = preview(text)
	}

	if err := s.writeAtomic(s.outputPath(output.ID), []byte(text)); err != nil {
		return "", err
	}

	doc.ProcessedOutputs = append(doc.ProcessedOutputs, output)
	if err := s.save(); err != nil {
		return "", err
	}
	return output.ID, nil
}

// LoadProcessedOutput returns the full text of a saved output.
func (s *Store) LoadProcessedOutput(_ context.Context, outputID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.outputPath(outputID))
	if os.IsNotExist(err) {
		return "", domain.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("reading output: %w", err)
	}
	return string(data), nil
}

// DeleteProcessedOutput removes one saved output and its text file.
func (s *Store) DeleteProcessedOutput(_ context.Context, docID, outputID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.lib.Documents[docID]
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

	if err := os.Remove(s.outputPath(outputID)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing output file: %w", err)
	}

	doc.ProcessedOutputs = append(doc.ProcessedOutputs[:idx], doc.ProcessedOutputs[idx+1:]...)
	return s.save()
}

// Stats summarises the library.
func (s *Store) Stats(_ context.Context) (*domain.LibraryStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := &domain.LibraryStats{
		ByClass: make(map[domain.DocumentClass]int),
		ByType:  make(map[string]int),
	}
	for _, doc := range s.lib.Documents {
		stats.Documents++
		stats.ByClass[doc.Class]++
		stats.ByType[doc.Type]++
		stats.Entries += doc.EntryCount
		stats.Outputs += len(doc.ProcessedOutputs)
	}
	return stats, nil
}

// findBySource returns the record with the given type and source, or nil.
func (s *Store) findBySource(docType, source string) *domain.Document {
	for _, doc := range s.lib.Documents {
		if doc.Type == docType && doc.Source == source {
			return doc
		}
	}
	return nil
}

// branchInfo shapes a branch document as a summary. Branches with zero
// exchanges are hidden unless pre-created; pre-created branches show as
// processing unless the user created them manually.
func branchInfo(doc *domain.Document) (domain.BranchInfo, bool) {
	exchanges := domain.ExchangeCount(doc.Thread)
	if exchanges == 0 && !doc.PreCreated() {
		return domain.BranchInfo{}, false
	}

	lastUpdated := doc.Fetched
	if doc.ThreadMetadata != nil && !doc.ThreadMetadata.LastUpdated.IsZero() {
		lastUpdated = doc.ThreadMetadata.LastUpdated
	}

	return domain.BranchInfo{
		DocID:         doc.ID,
		Title:         doc.Title,
		ExchangeCount: exchanges,
		LastUpdated:   lastUpdated,
		Processing:    doc.PreCreated() && !doc.ManuallyCreated(),
	}, true
}

// preview truncates output text for the index record.
func preview(text string) string {
	text = strings.TrimSpace(text)
	if len(text) <= previewLength {
		return text
	}
	return text[:previewLength] + "..."
}
