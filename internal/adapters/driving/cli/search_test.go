package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docanalyser-cli/internal/core/domain"
)

func TestSearchCommand(t *testing.T) {
	assert.Equal(t, "search [query]", searchCmd.Use)
	assert.Equal(t, "Search the library by meaning", searchCmd.Short)
	assert.NotNil(t, searchCmd.Flags().Lookup("limit"))
	assert.NotNil(t, searchCmd.Flags().Lookup("json"))
}

func TestSearchCommand_Results(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := executeCommand("search", "alpha")
	require.NoError(t, err)
	assert.Contains(t, out, "[1] The Paper (0.93)")
	assert.Contains(t, out, "doc-1")
	assert.Contains(t, out, "Plain paragraph.")
}

func TestSearchCommand_NoResults(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	searchService = &mockSearchService{}

	out, err := executeCommand("search", "nothing")
	require.NoError(t, err)
	assert.Contains(t, out, "No results found.")
}

func TestSearchCommand_JSON(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	defer func() { searchJSON = false }()

	out, err := executeCommand("search", "alpha", "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"DocID": "doc-1"`)
}

func TestSearchCommand_NoService(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	searchService = nil

	_, err := executeCommand("search", "alpha")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "search service not configured")
}

func TestSearchCommand_EmbeddingUnavailable(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	searchService = &mockSearchService{err: domain.ErrEmbeddingUnavailable}

	_, err := executeCommand("search", "alpha")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no embedding provider configured")
}

func TestSearchEmbedCommand_SingleDocument(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := executeCommand("search", "embed", "doc-1")
	require.NoError(t, err)
	assert.Contains(t, out, "Embedded doc-1")
}

func TestSearchEmbedCommand_NothingPending(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := executeCommand("search", "embed")
	require.NoError(t, err)
	assert.Contains(t, out, "All documents are embedded.")
}

func TestSearchEmbedCommand_Pending(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	searchService = &mockSearchService{pending: []domain.Document{
		{ID: "doc-1", Title: "The Paper"},
	}}

	out, err := executeCommand("search", "embed")
	require.NoError(t, err)
	assert.Contains(t, out, "The Paper: ok")
}
