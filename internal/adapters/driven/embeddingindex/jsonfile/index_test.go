package jsonfile

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docanalyser-cli/internal/core/domain"
)

func setupTestIndex(t *testing.T) *Index {
	t.Helper()

	idx, err := NewIndex(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, idx.Close()) })
	return idx
}

func testChunks() []domain.Chunk {
	return []domain.Chunk{
		{Position: 0, Text: "first chunk", Embedding: []float32{0.1, 0.2}},
		{Position: 1, Text: "second chunk", Embedding: []float32{0.3, 0.4}},
	}
}

func TestAddAndGetDocumentChunks(t *testing.T) {
	idx := setupTestIndex(t)
	ctx := context.Background()

	require.NoError(t, idx.AddDocumentChunks(ctx, "doc1", testChunks()))

	chunks, err := idx.GetDocumentChunks(ctx, "doc1")
	require.NoError(t, err)
	require.Len(t, chunks, 2)
	assert.Equal(t, "doc1", chunks[0].DocID)
	assert.Equal(t, "first chunk", chunks[0].Text)

	has, err := idx.HasDocument(ctx, "doc1")
	require.NoError(t, err)
	assert.True(t, has)

	_, err = idx.GetDocumentChunks(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAddDocumentChunks_ReplacesPrevious(t *testing.T) {
	idx := setupTestIndex(t)
	ctx := context.Background()

	require.NoError(t, idx.AddDocumentChunks(ctx, "doc1", testChunks()))
	require.NoError(t, idx.AddDocumentChunks(ctx, "doc1", []domain.Chunk{
		{Position: 0, Text: "replaced", Embedding: []float32{0.9}},
	}))

	chunks, err := idx.GetDocumentChunks(ctx, "doc1")
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "replaced", chunks[0].Text)
}

func TestRemoveDocument(t *testing.T) {
	idx := setupTestIndex(t)
	ctx := context.Background()

	require.NoError(t, idx.AddDocumentChunks(ctx, "doc1", testChunks()))
	require.NoError(t, idx.RemoveDocument(ctx, "doc1"))

	has, err := idx.HasDocument(ctx, "doc1")
	require.NoError(t, err)
	assert.False(t, has)

	// Removing an unknown document is a no-op.
	assert.NoError(t, idx.RemoveDocument(ctx, "never-indexed"))
}

func TestAllChunksAndStats(t *testing.T) {
	idx := setupTestIndex(t)
	ctx := context.Background()

	require.NoError(t, idx.AddDocumentChunks(ctx, "doc1", testChunks()))
	require.NoError(t, idx.AddDocumentChunks(ctx, "doc2", testChunks()[:1]))

	chunks, err := idx.AllChunks(ctx)
	require.NoError(t, err)
	assert.Len(t, chunks, 3)
	for _, chunk := range chunks {
		assert.NotEmpty(t, chunk.DocID)
	}

	docs, total, err := idx.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, docs)
	assert.Equal(t, 3, total)
}

func TestSetModel_ChangeClearsIndex(t *testing.T) {
	idx := setupTestIndex(t)
	ctx := context.Background()

	require.NoError(t, idx.SetModel(ctx, "openai", "text-embedding-3-small"))
	require.NoError(t, idx.AddDocumentChunks(ctx, "doc1", testChunks()))

	// Same model keeps the vectors.
	require.NoError(t, idx.SetModel(ctx, "openai", "text-embedding-3-small"))
	has, err := idx.HasDocument(ctx, "doc1")
	require.NoError(t, err)
	assert.True(t, has)

	// A different model invalidates them.
	require.NoError(t, idx.SetModel(ctx, "google", "text-embedding-004"))
	has, err = idx.HasDocument(ctx, "doc1")
	require.NoError(t, err)
	assert.False(t, has)

	provider, model, err := idx.Model(ctx)
	require.NoError(t, err)
	assert.Equal(t, "google", provider)
	assert.Equal(t, "text-embedding-004", model)
}

func TestPersistenceAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	idx, err := NewIndex(dir)
	require.NoError(t, err)
	require.NoError(t, idx.SetModel(ctx, "openai", "text-embedding-3-small"))
	require.NoError(t, idx.AddDocumentChunks(ctx, "doc1", testChunks()))
	require.NoError(t, idx.Close())

	reopened, err := NewIndex(dir)
	require.NoError(t, err)
	defer reopened.Close()

	chunks, err := reopened.GetDocumentChunks(ctx, "doc1")
	require.NoError(t, err)
	assert.Len(t, chunks, 2)
	assert.InDelta(t, 0.1, chunks[0].Embedding[0], 1e-6)
}
