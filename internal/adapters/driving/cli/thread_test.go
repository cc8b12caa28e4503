package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docanalyser-cli/internal/core/domain"
)

func TestThreadCommand(t *testing.T) {
	assert.Equal(t, "thread", threadCmd.Use)
	names := make([]string, 0)
	for _, sub := range threadCmd.Commands() {
		names = append(names, sub.Name())
	}
	assert.ElementsMatch(t, []string{"list", "show", "save", "delete"}, names)
}

func TestThreadList(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := executeCommand("thread", "list", "doc-1")
	require.NoError(t, err)
	assert.Contains(t, out, "branch-1")
	assert.Contains(t, out, "(1 exchanges)")
	assert.Contains(t, out, "Re: The Paper (1)")
}

func TestThreadList_ProcessingMarker(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	conversationService = &mockConversationService{branches: []domain.BranchInfo{
		{DocID: "branch-2", Title: "Re: The Paper (2)", Processing: true},
	}}

	out, err := executeCommand("thread", "list", "doc-1")
	require.NoError(t, err)
	assert.Contains(t, out, "* branch-2")
}

func TestThreadList_Empty(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	conversationService = &mockConversationService{}

	out, err := executeCommand("thread", "list", "doc-1")
	require.NoError(t, err)
	assert.Contains(t, out, "No conversation branches yet. Start one with 'docanalyser ask'.")
}

func TestThreadShow(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	exportService = &mockExportService{rendered: "Q: What is alpha?\n\nA: It is alpha."}

	out, err := executeCommand("thread", "show", "branch-1")
	require.NoError(t, err)
	assert.Contains(t, out, "Q: What is alpha?")
}

func TestThreadSave(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := executeCommand("thread", "save", "branch-1")
	require.NoError(t, err)
	assert.Contains(t, out, "Saved conversation as document thread-doc-1")
}

func TestThreadDelete(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := executeCommand("thread", "delete", "branch-1")
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted branch branch-1")
}

func TestThread_NoService(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	conversationService = nil

	_, err := executeCommand("thread", "list", "doc-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "conversation service not configured")
}
