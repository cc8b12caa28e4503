// Package tui provides an interactive terminal user interface for
// DocAnalyser. It implements a driving adapter following hexagonal
// architecture principles.
package tui

import (
	"github.com/custodia-labs/docanalyser-cli/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the TUI.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Library reads documents and their content.
	Library driving.LibraryService

	// Conversation lists branches and reads their threads.
	Conversation driving.ConversationService

	// Watcher reports external library changes. Optional: without it
	// the library view only reloads on demand.
	Watcher *Watcher
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Library == nil {
		return ErrMissingLibraryService
	}
	if p.Conversation == nil {
		return ErrMissingConversationService
	}
	return nil
}
