package domain

import (
	"fmt"
	"strings"
	"time"
)

// Thread message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// ThreadMessage is a single message within a conversation thread.
type ThreadMessage struct {
	// Role is one of "user", "assistant" or "system".
	Role string `json:"role"`

	// Content is the message text.
	Content string `json:"content"`

	// Provider and Model record which backend produced an assistant message.
	Provider string `json:"provider,omitempty"`
	Model    string `json:"model,omitempty"`

	// Timestamp is when the message was added.
	Timestamp time.Time `json:"timestamp,omitempty"`
}

// ThreadMetadata describes a conversation thread attached to a document.
type ThreadMetadata struct {
	// Provider and Model of the most recent assistant reply.
	Provider string `json:"provider,omitempty"`
	Model    string `json:"model,omitempty"`

	// MessageCount is the number of user messages (exchanges) in the thread.
	MessageCount int `json:"message_count"`

	// LastUpdated is when the thread last changed.
	LastUpdated time.Time `json:"last_updated"`
}

// ExchangeCount counts user messages; one exchange is a user message plus
// its assistant reply.
func ExchangeCount(thread []ThreadMessage) int {
	n := 0
	for _, m := range thread {
		if m.Role == RoleUser {
			n++
		}
	}
	return n
}

// BranchInfo summarises one response branch of a source document, shaped
// for branch selection.
type BranchInfo struct {
	// DocID is the branch document ID.
	DocID string

	// Title is the branch title.
	Title string

	// ExchangeCount is the number of exchanges in the branch thread.
	ExchangeCount int

	// LastUpdated is the thread's last change, falling back to the
	// document's fetch time for branches without a thread yet.
	LastUpdated time.Time

	// Processing marks an auto-created branch still waiting for its first
	// AI response.
	Processing bool
}

// BranchPlan captures where a new exchange should be saved: any number of
// existing branches, any number of new branches, or both.
type BranchPlan struct {
	// ExistingBranches lists IDs of branches to append the exchange to.
	ExistingBranches []string

	// NewBranches lists titles for branches to create. An empty string
	// requests an auto-generated title.
	NewBranches []string

	// StayInCurrentView keeps the caller on its current document instead
	// of navigating to the newly written branch.
	StayInCurrentView bool
}

// Validate checks that the plan names at least one destination.
func (p *BranchPlan) Validate() error {
	if len(p.ExistingBranches) == 0 && len(p.NewBranches) == 0 {
		return ErrNoDestination
	}
	return nil
}

// FormatThreadAsText renders a conversation thread as readable plain text,
// used for thread previews and text export.
func FormatThreadAsText(thread []ThreadMessage) string {
	rule := strings.Repeat("=", 80)
	sep := strings.Repeat("-", 80)

	var b strings.Builder
	b.WriteString(rule + "\n")
	b.WriteString("CONVERSATION THREAD\n")
	b.WriteString(rule + "\n\n")

	for i, msg := range thread {
		fmt.Fprintf(&b, "[%d] %s:\n", i+1, strings.ToUpper(msg.Role))
		b.WriteString(sep + "\n")
		b.WriteString(msg.Content + "\n\n")
	}

	b.WriteString(rule + "\n")
	fmt.Fprintf(&b, "END OF CONVERSATION (%d exchanges)\n", ExchangeCount(thread))
	b.WriteString(rule + "\n")
	return b.String()
}
