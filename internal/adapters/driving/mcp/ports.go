package mcp

import (
	"github.com/custodia-labs/docanalyser-cli/internal/core/ports/driving"
)

// Ports aggregates the driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Library reads documents and their content.
	Library driving.LibraryService

	// Search provides semantic search. Optional: without it the search
	// tool reports that no embedding provider is configured.
	Search driving.SearchService

	// Conversation lists response branches. Optional.
	Conversation driving.ConversationService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Library == nil {
		return ErrMissingLibraryService
	}
	// Search and Conversation are optional.
	return nil
}
