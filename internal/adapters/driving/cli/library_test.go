package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docanalyser-cli/internal/core/domain"
)

func TestLibraryCommand(t *testing.T) {
	assert.Equal(t, "library", libraryCmd.Use)
	names := make([]string, 0)
	for _, sub := range libraryCmd.Commands() {
		names = append(names, sub.Name())
	}
	assert.ElementsMatch(t, []string{
		"list", "show", "content", "stats", "delete", "rename", "convert",
	}, names)
}

func TestLibraryList(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := executeCommand("library", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "doc-1")
	assert.Contains(t, out, "The Paper")
	assert.Contains(t, out, "[web]")
}

func TestLibraryList_HidesBranches(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	libraryService = &mockLibraryService{documents: []domain.Document{
		{ID: "doc-1", Title: "The Paper", Type: domain.TypeWeb, Class: domain.ClassSource},
		{ID: "branch-1", Title: "Re: The Paper (1)", Class: domain.ClassResponse},
	}}

	out, err := executeCommand("library", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "The Paper")
	assert.NotContains(t, out, "Re: The Paper (1)")
}

func TestLibraryList_Empty(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	libraryService = &mockLibraryService{}

	out, err := executeCommand("library", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Library is empty. Add something with 'docanalyser ingest'.")
}

func TestLibraryShow(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := executeCommand("library", "show", "doc-1")
	require.NoError(t, err)
	assert.Contains(t, out, "Document: doc-1")
	assert.Contains(t, out, "Title:    The Paper")
	assert.Contains(t, out, "Type:     web")
	assert.Contains(t, out, "Source:   https://example.com/paper")
	assert.Contains(t, out, "Entries:  2")
}

func TestLibraryContent(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := executeCommand("library", "content", "doc-1")
	require.NoError(t, err)
	assert.Contains(t, out, "Plain paragraph.")
}

func TestLibraryStats(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := executeCommand("library", "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "Documents: 1")
	assert.Contains(t, out, "Entries:   2")
	assert.Contains(t, out, "By class:")
	assert.Contains(t, out, "By type:")
}

func TestLibraryDelete(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := executeCommand("library", "delete", "doc-1")
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted doc-1")
}

func TestLibraryRename(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := executeCommand("library", "rename", "doc-1", "New Title")
	require.NoError(t, err)
	assert.Contains(t, out, `Renamed doc-1 to "New Title"`)
}

func TestLibraryConvert(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := executeCommand("library", "convert", "branch-1")
	require.NoError(t, err)
	assert.Contains(t, out, "Converted branch-1 to a source document")
}

func TestLibrary_NoService(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	libraryService = nil

	_, err := executeCommand("library", "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "library service not configured")
}
