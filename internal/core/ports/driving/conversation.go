package driving

import (
	"context"

	"github.com/custodia-labs/docanalyser-cli/internal/core/domain"
)

// AskOptions configures one question to the chat provider.
type AskOptions struct {
	// SystemPrompt overrides the default analysis system prompt.
	SystemPrompt string

	// MaxTokens caps the reply length. Zero uses the provider default.
	MaxTokens int

	// Temperature controls randomness. Zero uses the provider default.
	Temperature float64

	// PromptName labels the call in the cost log.
	PromptName string
}

// AskResult reports where an exchange was saved.
type AskResult struct {
	// Answer is the assistant reply text.
	Answer string

	// BranchIDs lists every branch the exchange was appended to,
	// newly created branches last.
	BranchIDs []string

	// ActiveBranchID is the branch the caller should navigate to,
	// honouring the plan's StayInCurrentView flag ("" means stay).
	ActiveBranchID string

	// EstimatedCost is the call cost in dollars.
	EstimatedCost float64
}

// ConversationService runs the branching conversation model: questions
// asked about a source document land in one or more response branches.
type ConversationService interface {
	// Ask sends a question about a document. docID may be a source or a
	// response branch (the branch's parent source provides the context).
	// The exchange is appended to every branch in the plan; new branches
	// are created pre-created first so they appear as processing while
	// the provider call is in flight.
	Ask(ctx context.Context, docID, question string, plan domain.BranchPlan, opts AskOptions) (*AskResult, error)

	// Branches returns the response branches of a source document.
	Branches(ctx context.Context, sourceID string) ([]domain.BranchInfo, error)

	// Thread returns the conversation messages of a branch, system
	// messages excluded.
	Thread(ctx context.Context, branchID string) ([]domain.ThreadMessage, error)

	// CreateBranch creates an empty, manually created branch.
	// An empty title is auto-generated from the source title.
	CreateBranch(ctx context.Context, sourceID, title string) (string, error)

	// PromoteThread saves a branch's conversation as a standalone
	// [Thread] document and returns the new document ID.
	PromoteThread(ctx context.Context, branchID string) (string, error)

	// DeleteBranch removes a response branch.
	DeleteBranch(ctx context.Context, branchID string) error
}
