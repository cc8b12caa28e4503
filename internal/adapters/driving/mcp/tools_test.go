package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docanalyser-cli/internal/core/domain"
)

func TestServer_handleSearch(t *testing.T) {
	ctx := context.Background()

	t.Run("returns search results", func(t *testing.T) {
		mockSearch := &mockSearchService{
			results: []domain.SearchResult{
				{
					DocID:   "doc-1",
					Title:   "Test Doc",
					Score:   0.95,
					Snippet: "This is the matching chunk",
				},
			},
		}

		ports := &Ports{Library: &mockLibraryService{}, Search: mockSearch}
		server, err := NewServer(ports)
		require.NoError(t, err)

		input := SearchInput{Query: "test", Limit: 10}
		_, output, err := server.handleSearch(ctx, nil, input)

		require.NoError(t, err)
		assert.Equal(t, 1, output.Count)
		assert.Len(t, output.Results, 1)
		assert.Equal(t, "doc-1", output.Results[0].DocumentID)
		assert.Equal(t, "Test Doc", output.Results[0].Title)
		assert.Equal(t, 0.95, output.Results[0].Score)
		assert.Equal(t, "This is the matching chunk", output.Results[0].Snippet)
	})

	t.Run("nil search service returns error", func(t *testing.T) {
		ports := &Ports{Library: &mockLibraryService{}}
		server, err := NewServer(ports)
		require.NoError(t, err)

		input := SearchInput{Query: "test"}
		_, _, err = server.handleSearch(ctx, nil, input)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "not configured")
	})

	t.Run("missing embedding provider returns friendly error", func(t *testing.T) {
		mockSearch := &mockSearchService{err: domain.ErrEmbeddingUnavailable}
		ports := &Ports{Library: &mockLibraryService{}, Search: mockSearch}
		server, err := NewServer(ports)
		require.NoError(t, err)

		input := SearchInput{Query: "test"}
		_, _, err = server.handleSearch(ctx, nil, input)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "no embedding provider configured")
	})

	t.Run("returns error on search failure", func(t *testing.T) {
		mockSearch := &mockSearchService{
			err: errors.New("search failed"),
		}

		ports := &Ports{Library: &mockLibraryService{}, Search: mockSearch}
		server, err := NewServer(ports)
		require.NoError(t, err)

		input := SearchInput{Query: "test"}
		_, _, err = server.handleSearch(ctx, nil, input)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "search failed")
	})
}

func TestServer_handleGetDocument(t *testing.T) {
	ctx := context.Background()

	t.Run("returns document with content", func(t *testing.T) {
		mockLib := &mockLibraryService{
			document: &domain.Document{
				ID:     "doc-1",
				Title:  "The Paper",
				Type:   domain.TypeWeb,
				Source: "https://example.com/paper",
			},
			content: "First paragraph.\n\nSecond paragraph.",
		}

		ports := &Ports{Library: mockLib}
		server, err := NewServer(ports)
		require.NoError(t, err)

		input := GetDocumentInput{DocumentID: "doc-1"}
		_, output, err := server.handleGetDocument(ctx, nil, input)

		require.NoError(t, err)
		assert.Equal(t, "doc-1", output.DocumentID)
		assert.Equal(t, "The Paper", output.Title)
		assert.Equal(t, domain.TypeWeb, output.Type)
		assert.Equal(t, "https://example.com/paper", output.Source)
		assert.Equal(t, "First paragraph.\n\nSecond paragraph.", output.Content)
	})

	t.Run("returns error for unknown document", func(t *testing.T) {
		mockLib := &mockLibraryService{err: domain.ErrNotFound}
		ports := &Ports{Library: mockLib}
		server, err := NewServer(ports)
		require.NoError(t, err)

		input := GetDocumentInput{DocumentID: "missing"}
		_, _, err = server.handleGetDocument(ctx, nil, input)

		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestServer_handleListBranches(t *testing.T) {
	ctx := context.Background()

	t.Run("returns branches", func(t *testing.T) {
		mockConv := &mockConversationService{
			branches: []domain.BranchInfo{
				{DocID: "branch-1", Title: "Re: The Paper (1)", ExchangeCount: 2},
				{DocID: "branch-2", Title: "Methodology questions", Processing: true},
			},
		}

		ports := &Ports{Library: &mockLibraryService{}, Conversation: mockConv}
		server, err := NewServer(ports)
		require.NoError(t, err)

		input := ListBranchesInput{SourceID: "doc-1"}
		_, output, err := server.handleListBranches(ctx, nil, input)

		require.NoError(t, err)
		assert.Equal(t, 2, output.Count)
		assert.Equal(t, "branch-1", output.Branches[0].DocumentID)
		assert.Equal(t, 2, output.Branches[0].ExchangeCount)
		assert.True(t, output.Branches[1].Processing)
	})

	t.Run("nil conversation service returns error", func(t *testing.T) {
		ports := &Ports{Library: &mockLibraryService{}}
		server, err := NewServer(ports)
		require.NoError(t, err)

		input := ListBranchesInput{SourceID: "doc-1"}
		_, _, err = server.handleListBranches(ctx, nil, input)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "not configured")
	})
}
