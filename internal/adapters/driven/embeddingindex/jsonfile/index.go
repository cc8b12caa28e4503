// Package jsonfile implements the embedding index on a single
// embeddings.json file stored alongside the library data.
package jsonfile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/custodia-labs/docanalyser-cli/internal/core/domain"
	"github.com/custodia-labs/docanalyser-cli/internal/core/ports/driven"
)

// indexFileName is the embeddings file inside the data directory.
const indexFileName = "embeddings.json"

// indexVersion is the current file format version.
const indexVersion = 2

// indexFile is the on-disk shape of the embeddings file.
type indexFile struct {
	Version   int                       `json:"version"`
	Provider  string                    `json:"provider,omitempty"`
	Model     string                    `json:"model,omitempty"`
	Documents map[string][]domain.Chunk `json:"documents"`
}

// Index implements driven.EmbeddingIndex on a JSON file.
type Index struct {
	mu   sync.Mutex
	path string
	idx  *indexFile
}

var _ driven.EmbeddingIndex = (*Index)(nil)

// NewIndex opens the embeddings file in the given data directory, creating
// an empty index if it does not exist.
func NewIndex(dataDir string) (*Index, error) {
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	i := &Index{path: filepath.Join(dataDir, indexFileName)}
	if err := i.load(); err != nil {
		return nil, err
	}
	return i, nil
}

// Close releases resources. The index holds no open handles.
func (i *Index) Close() error {
	return nil
}

// load reads the index file. A corrupt index starts over empty; vectors are
// derived data and can be regenerated.
func (i *Index) load() error {
	data, err := os.ReadFile(i.path)
	if os.IsNotExist(err) {
		i.idx = &indexFile{Version: indexVersion, Documents: make(map[string][]domain.Chunk)}
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading embeddings index: %w", err)
	}

	var idx indexFile
	if err := json.Unmarshal(data, &idx); err != nil {
		i.idx = &indexFile{Version: indexVersion, Documents: make(map[string][]domain.Chunk)}
		return nil
	}
	if idx.Documents == nil {
		idx.Documents = make(map[string][]domain.Chunk)
	}
	idx.Version = indexVersion
	i.idx = &idx
	return nil
}

// save writes the index atomically via temp file and rename.
func (i *Index) save() error {
	data, err := json.Marshal(i.idx)
	if err != nil {
		return fmt.Errorf("marshalling embeddings index: %w", err)
	}

	dir := filepath.Dir(i.path)
	tmp, err := os.CreateTemp(dir, ".tmp-embeddings-*")
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
	if err := os.Rename(tmpName, i.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing embeddings index: %w", err)
	}
	return nil
}

// AddDocumentChunks stores the embedded chunks of a document, replacing any
// previous chunks for the same document.
func (i *Index) AddDocumentChunks(_ context.Context, docID string, chunks []domain.Chunk) error {
	if docID == "" {
		return domain.ErrInvalidInput
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	stored := make([]domain.Chunk, len(chunks))
	copy(stored, chunks)
	for j := range stored {
		stored[j].DocID = ""
	}
	sort.Slice(stored, func(a, b int) bool { return stored[a].Position < stored[b].Position })

	i.idx.Documents[docID] = stored
	return i.save()
}

// GetDocumentChunks retrieves the chunks of a document.
func (i *Index) GetDocumentChunks(_ context.Context, docID string) ([]domain.Chunk, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	stored, ok := i.idx.Documents[docID]
	if !ok {
		return nil, domain.ErrNotFound
	}

	chunks := make([]domain.Chunk, len(stored))
	copy(chunks, stored)
	for j := range chunks {
		chunks[j].DocID = docID
	}
	return chunks, nil
}

// HasDocument reports whether a document has embeddings.
func (i *Index) HasDocument(_ context.Context, docID string) (bool, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	_, ok := i.idx.Documents[docID]
	return ok, nil
}

// RemoveDocument drops a document's chunks. Removing an unknown document
// is not an error.
func (i *Index) RemoveDocument(_ context.Context, docID string) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if _, ok := i.idx.Documents[docID]; !ok {
		return nil
	}
	delete(i.idx.Documents, docID)
	return i.save()
}

// AllChunks returns every chunk in the index with DocID populated.
func (i *Index) AllChunks(_ context.Context) ([]domain.Chunk, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	var chunks []domain.Chunk
	for docID, stored := range i.idx.Documents {
		for _, chunk := range stored {
			chunk.DocID = docID
			chunks = append(chunks, chunk)
		}
	}
	return chunks, nil
}

// Stats returns the number of indexed documents and chunks.
func (i *Index) Stats(_ context.Context) (docs, chunks int, err error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	for _, stored := range i.idx.Documents {
		docs++
		chunks += len(stored)
	}
	return docs, chunks, nil
}

// SetModel records which provider/model produced the vectors. Changing the
// model invalidates every stored vector, so the index is cleared.
func (i *Index) SetModel(_ context.Context, provider, model string) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.idx.Provider == provider && i.idx.Model == model {
		return nil
	}
	if i.idx.Provider != "" || i.idx.Model != "" {
		i.idx.Documents = make(map[string][]domain.Chunk)
	}
	i.idx.Provider = provider
	i.idx.Model = model
	return i.save()
}

// Model returns the recorded provider/model pair.
func (i *Index) Model(_ context.Context) (provider, model string, err error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.idx.Provider, i.idx.Model, nil
}
