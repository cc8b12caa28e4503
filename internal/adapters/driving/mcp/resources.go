package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/docanalyser-cli/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for DocAnalyser resources.
	uriScheme = "docanalyser://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	// Static resource for listing the library.
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "library",
		Name:        "library",
		Description: "List of all documents in the library",
		MIMEType:    "application/json",
	}, s.handleLibraryResource)

	// Template for document content.
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "documents/{documentId}",
		Name:        "document-content",
		Description: "Full text of a specific document",
		MIMEType:    "text/plain",
	}, s.handleDocumentContentResource)

	// Template for a source document's conversation branches.
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "documents/{documentId}/branches",
		Name:        "document-branches",
		Description: "Conversation branches of a source document",
		MIMEType:    "application/json",
	}, s.handleBranchesResource)
}

// handleLibraryResource returns the top-level document list.
func (s *Server) handleLibraryResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	docs, err := s.ports.Library.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}

	// Build simplified document list. Branches live under their source.
	type docInfo struct {
		ID     string `json:"id"`
		Title  string `json:"title"`
		Type   string `json:"type"`
		Source string `json:"source"`
	}

	infos := make([]docInfo, 0, len(docs))
	for i := range docs {
		if docs[i].Class == domain.ClassResponse {
			continue
		}
		infos = append(infos, docInfo{
			ID:     docs[i].ID,
			Title:  docs[i].Title,
			Type:   docs[i].Type,
			Source: docs[i].Source,
		})
	}

	data, err := json.MarshalIndent(infos, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling documents: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// handleDocumentContentResource returns the content of a specific document.
func (s *Server) handleDocumentContentResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	docID := extractDocumentID(req.Params.URI)
	if docID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	content, err := s.ports.Library.Content(ctx, docID)
	if err != nil {
		return nil, fmt.Errorf("getting document content: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "text/plain",
			Text:     content,
		}},
	}, nil
}

// handleBranchesResource returns the branches of a source document.
func (s *Server) handleBranchesResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Conversation == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	sourceID := extractBranchSourceID(req.Params.URI)
	if sourceID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	branches, err := s.ports.Conversation.Branches(ctx, sourceID)
	if err != nil {
		return nil, fmt.Errorf("listing branches: %w", err)
	}

	type branchInfo struct {
		ID            string `json:"id"`
		Title         string `json:"title"`
		ExchangeCount int    `json:"exchange_count"`
	}

	infos := make([]branchInfo, len(branches))
	for i := range branches {
		infos[i] = branchInfo{
			ID:            branches[i].DocID,
			Title:         branches[i].Title,
			ExchangeCount: branches[i].ExchangeCount,
		}
	}

	data, err := json.MarshalIndent(infos, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling branches: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractDocumentID extracts the document ID from a URI like
// docanalyser://documents/{documentId}.
func extractDocumentID(uri string) string {
	const prefix = uriScheme + "documents/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	id := strings.TrimPrefix(uri, prefix)
	if strings.Contains(id, "/") {
		return ""
	}
	return id
}

// extractBranchSourceID extracts the source ID from a URI like
// docanalyser://documents/{documentId}/branches.
func extractBranchSourceID(uri string) string {
	const prefix = uriScheme + "documents/"
	const suffix = "/branches"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	uri = strings.TrimPrefix(uri, prefix)
	if !strings.HasSuffix(uri, suffix) {
		return ""
	}

	return strings.TrimSuffix(uri, suffix)
}
