// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/docanalyser-cli/internal/core/domain"
)

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewLibrary is the document library list.
	ViewLibrary ViewType = iota
	// ViewContent shows a document's text.
	ViewContent
	// ViewBranches is the branch selector for a source document.
	ViewBranches
	// ViewThread is the conversation thread viewer.
	ViewThread
	// ViewHelp is the help/keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewLibrary:
		return "library"
	case ViewContent:
		return "content"
	case ViewBranches:
		return "branches"
	case ViewThread:
		return "thread"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// LibraryLoaded carries the document list from the library service.
type LibraryLoaded struct {
	Documents []domain.Document
	Err       error
}

// LibraryChanged signals the library file was modified outside this
// process; views holding library state should reload.
type LibraryChanged struct{}

// DocumentSelected signals a document was chosen from the library list.
type DocumentSelected struct {
	Document domain.Document
}

// ContentLoaded carries a document's text.
type ContentLoaded struct {
	DocID   string
	Title   string
	Content string
	Err     error
}

// BranchesLoaded carries the response branches of a source document.
type BranchesLoaded struct {
	SourceID string
	Branches []domain.BranchInfo
	Err      error
}

// BranchSelected signals a branch was chosen from the branch selector.
type BranchSelected struct {
	Branch domain.BranchInfo
}

// ThreadLoaded carries the conversation messages of a branch.
type ThreadLoaded struct {
	BranchID string
	Title    string
	Messages []domain.ThreadMessage
	Err      error
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}
