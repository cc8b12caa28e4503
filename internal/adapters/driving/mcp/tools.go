package mcp

import (
	"context"
	"errors"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/docanalyser-cli/internal/core/domain"
)

// SearchInput is the input schema for the search tool.
type SearchInput struct {
	Query string `json:"query" jsonschema:"the search query to find documents"`
	Limit int    `json:"limit,omitempty" jsonschema:"maximum number of results to return (default 10)"`
}

// SearchOutput is the output schema for the search tool.
type SearchOutput struct {
	Results []SearchResultOutput `json:"results"`
	Count   int                  `json:"count"`
}

// SearchResultOutput represents a single search result.
type SearchResultOutput struct {
	DocumentID string  `json:"document_id"`
	Title      string  `json:"title"`
	Score      float64 `json:"score"`
	Snippet    string  `json:"snippet,omitempty"`
}

// GetDocumentInput is the input schema for the get_document tool.
type GetDocumentInput struct {
	DocumentID string `json:"document_id" jsonschema:"the ID of the document to read"`
}

// GetDocumentOutput is the output schema for the get_document tool.
type GetDocumentOutput struct {
	DocumentID string `json:"document_id"`
	Title      string `json:"title"`
	Type       string `json:"type"`
	Source     string `json:"source"`
	Content    string `json:"content"`
}

// ListBranchesInput is the input schema for the list_branches tool.
type ListBranchesInput struct {
	SourceID string `json:"source_id" jsonschema:"the ID of the source document"`
}

// ListBranchesOutput is the output schema for the list_branches tool.
type ListBranchesOutput struct {
	Branches []BranchOutput `json:"branches"`
	Count    int            `json:"count"`
}

// BranchOutput represents one response branch.
type BranchOutput struct {
	DocumentID    string `json:"document_id"`
	Title         string `json:"title"`
	ExchangeCount int    `json:"exchange_count"`
	Processing    bool   `json:"processing,omitempty"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search_library",
		Description: "Semantic search across all documents in the library",
	}, s.handleSearch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_document",
		Description: "Read a document's metadata and full text",
	}, s.handleGetDocument)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_branches",
		Description: "List the conversation branches of a source document",
	}, s.handleListBranches)
}

// handleSearch handles the search_library tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	if s.ports.Search == nil {
		return nil, SearchOutput{}, errors.New("semantic search is not configured")
	}

	limit := input.Limit
	if limit <= 0 {
		limit = 10
	}

	results, err := s.ports.Search.Search(ctx, input.Query, limit)
	if err != nil {
		if errors.Is(err, domain.ErrEmbeddingUnavailable) {
			return nil, SearchOutput{}, errors.New("no embedding provider configured")
		}
		return nil, SearchOutput{}, err
	}

	output := SearchOutput{
		Results: make([]SearchResultOutput, len(results)),
		Count:   len(results),
	}
	for i := range results {
		output.Results[i] = SearchResultOutput{
			DocumentID: results[i].DocID,
			Title:      results[i].Title,
			Score:      results[i].Score,
			Snippet:    results[i].Snippet,
		}
	}

	return nil, output, nil
}

// handleGetDocument handles the get_document tool invocation.
func (s *Server) handleGetDocument(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input GetDocumentInput,
) (*mcp.CallToolResult, GetDocumentOutput, error) {
	doc, err := s.ports.Library.Get(ctx, input.DocumentID)
	if err != nil {
		return nil, GetDocumentOutput{}, err
	}

	content, err := s.ports.Library.Content(ctx, input.DocumentID)
	if err != nil {
		return nil, GetDocumentOutput{}, err
	}

	return nil, GetDocumentOutput{
		DocumentID: doc.ID,
		Title:      doc.Title,
		Type:       doc.Type,
		Source:     doc.Source,
		Content:    content,
	}, nil
}

// handleListBranches handles the list_branches tool invocation.
func (s *Server) handleListBranches(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ListBranchesInput,
) (*mcp.CallToolResult, ListBranchesOutput, error) {
	if s.ports.Conversation == nil {
		return nil, ListBranchesOutput{}, errors.New("conversation service is not configured")
	}

	branches, err := s.ports.Conversation.Branches(ctx, input.SourceID)
	if err != nil {
		return nil, ListBranchesOutput{}, err
	}

	output := ListBranchesOutput{
		Branches: make([]BranchOutput, len(branches)),
		Count:    len(branches),
	}
	for i := range branches {
		output.Branches[i] = BranchOutput{
			DocumentID:    branches[i].DocID,
			Title:         branches[i].Title,
			ExchangeCount: branches[i].ExchangeCount,
			Processing:    branches[i].Processing,
		}
	}

	return nil, output, nil
}
