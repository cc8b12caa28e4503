package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestExchangeCount tests counting user messages
func TestExchangeCount(t *testing.T) {
	thread := []ThreadMessage{
		{Role: RoleSystem, Content: "You analyse documents."},
		{Role: RoleUser, Content: "What is this about?"},
		{Role: RoleAssistant, Content: "A quarterly report."},
		{Role: RoleUser, Content: "Summarise it."},
		{Role: RoleAssistant, Content: "Revenue grew 4%."},
	}

	assert.Equal(t, 2, ExchangeCount(thread))
	assert.Equal(t, 0, ExchangeCount(nil))
}

// TestBranchPlan_Validate tests destination validation
func TestBranchPlan_Validate(t *testing.T) {
	tests := []struct {
		name    string
		plan    BranchPlan
		wantErr error
	}{
		{
			name:    "empty plan",
			plan:    BranchPlan{},
			wantErr: ErrNoDestination,
		},
		{
			name: "existing branch only",
			plan: BranchPlan{ExistingBranches: []string{"b-1"}},
		},
		{
			name: "new branch only",
			plan: BranchPlan{NewBranches: []string{"Follow-ups"}},
		},
		{
			name: "auto-named new branch",
			plan: BranchPlan{NewBranches: []string{""}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.plan.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

// TestFormatThreadAsText tests the plain-text rendering
func TestFormatThreadAsText(t *testing.T) {
	thread := []ThreadMessage{
		{Role: RoleUser, Content: "Question one"},
		{Role: RoleAssistant, Content: "Answer one"},
	}

	text := FormatThreadAsText(thread)

	assert.Contains(t, text, "CONVERSATION THREAD")
	assert.Contains(t, text, "[1] USER:")
	assert.Contains(t, text, "Question one")
	assert.Contains(t, text, "[2] ASSISTANT:")
	assert.Contains(t, text, "END OF CONVERSATION (1 exchanges)")
}
