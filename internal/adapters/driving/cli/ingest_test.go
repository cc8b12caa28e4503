package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docanalyser-cli/internal/core/domain"
	"github.com/custodia-labs/docanalyser-cli/internal/core/ports/driving"
)

func TestIngestCommand(t *testing.T) {
	assert.Equal(t, "ingest [source]", ingestCmd.Use)
	assert.Equal(t, "Add a document to the library", ingestCmd.Short)
}

func TestIngestCommand_Added(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := executeCommand("ingest", "https://example.com/paper")
	require.NoError(t, err)
	assert.Contains(t, out, `Added "The Paper" (web, 2 entries)`)
	assert.Contains(t, out, "ID: doc-1")
	assert.Contains(t, out, "Embeddings are being generated in the background.")
	assert.Contains(t, out, `docanalyser ask doc-1 "your question"`)
}

func TestIngestCommand_Updated(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	ingestService = &mockIngestService{report: &driving.IngestReport{
		DocID:      "doc-1",
		Title:      "The Paper",
		Type:       domain.TypeWeb,
		EntryCount: 3,
		Updated:    true,
	}}

	out, err := executeCommand("ingest", "https://example.com/paper")
	require.NoError(t, err)
	assert.Contains(t, out, `Updated "The Paper" (web, 3 entries)`)
	assert.NotContains(t, out, "Embeddings are being generated")
}

func TestIngestCommand_Failure(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	ingestService = &mockIngestService{err: assert.AnError}

	_, err := executeCommand("ingest", "nonsense")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ingestion failed")
}

func TestIngestCommand_NoService(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	ingestService = nil

	_, err := executeCommand("ingest", "whatever")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ingest service not configured")
}
