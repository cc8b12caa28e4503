package thread

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docanalyser-cli/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/docanalyser-cli/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/docanalyser-cli/internal/core/domain"
)

func TestPairExchanges(t *testing.T) {
	t.Run("pairs questions with answers", func(t *testing.T) {
		exchanges := pairExchanges([]domain.ThreadMessage{
			{Role: domain.RoleUser, Content: "Q1"},
			{Role: domain.RoleAssistant, Content: "A1", Model: "gpt-4o-mini"},
			{Role: domain.RoleUser, Content: "Q2"},
			{Role: domain.RoleAssistant, Content: "A2"},
		})

		require.Len(t, exchanges, 2)
		assert.Equal(t, "Q1", exchanges[0].Question)
		assert.Equal(t, "A1", exchanges[0].Answer)
		assert.Equal(t, "gpt-4o-mini", exchanges[0].Model)
		assert.Equal(t, "Q2", exchanges[1].Question)
	})

	t.Run("trailing unanswered question keeps empty answer", func(t *testing.T) {
		exchanges := pairExchanges([]domain.ThreadMessage{
			{Role: domain.RoleUser, Content: "Q1"},
			{Role: domain.RoleAssistant, Content: "A1"},
			{Role: domain.RoleUser, Content: "Q2"},
		})

		require.Len(t, exchanges, 2)
		assert.Empty(t, exchanges[1].Answer)
	})

	t.Run("empty thread gives no exchanges", func(t *testing.T) {
		assert.Empty(t, pairExchanges(nil))
	})
}

func loadedView(t *testing.T, msgs []domain.ThreadMessage) *View {
	t.Helper()
	v := NewView(styles.DefaultStyles(), nil)
	v.SetDimensions(80, 24)
	v.branch = &domain.BranchInfo{DocID: "branch-1", Title: "Re: The Paper (1)"}

	v, _ = v.Update(messages.ThreadLoaded{
		BranchID: "branch-1",
		Title:    "Re: The Paper (1)",
		Messages: msgs,
	})
	return v
}

func TestThreadView_CollapseExpand(t *testing.T) {
	v := loadedView(t, []domain.ThreadMessage{
		{Role: domain.RoleUser, Content: "First question"},
		{Role: domain.RoleAssistant, Content: "First answer"},
		{Role: domain.RoleUser, Content: "Second question"},
		{Role: domain.RoleAssistant, Content: "Second answer"},
	})

	// Only the latest exchange starts expanded.
	require.Len(t, v.Exchanges(), 2)
	assert.Equal(t, 1, v.SelectedIndex())
	assert.False(t, v.IsExpanded(0))
	assert.True(t, v.IsExpanded(1))
	assert.NotContains(t, v.View(), "First answer")
	assert.Contains(t, v.View(), "Second answer")

	// Navigate up and expand the first exchange.
	v, _ = v.Update(tea.KeyMsg{Type: tea.KeyUp})
	v, _ = v.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.True(t, v.IsExpanded(0))
	assert.Contains(t, v.View(), "First answer")

	// Toggle collapses it again.
	v, _ = v.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.False(t, v.IsExpanded(0))

	// "a" expands everything, "c" collapses everything.
	v, _ = v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'a'}})
	assert.True(t, v.IsExpanded(0))
	assert.True(t, v.IsExpanded(1))
	v, _ = v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'c'}})
	assert.False(t, v.IsExpanded(0))
	assert.False(t, v.IsExpanded(1))
}

func TestThreadView_PendingAnswer(t *testing.T) {
	v := loadedView(t, []domain.ThreadMessage{
		{Role: domain.RoleUser, Content: "Unanswered"},
	})

	assert.Contains(t, v.View(), "(waiting for response)")
}

func TestThreadView_EmptyThread(t *testing.T) {
	v := loadedView(t, nil)
	assert.Contains(t, v.View(), "No conversation yet")
}

func TestThreadView_EscGoesBack(t *testing.T) {
	v := loadedView(t, nil)

	v, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	msg, ok := cmd().(messages.ViewChanged)
	require.True(t, ok)
	assert.Equal(t, messages.ViewBranches, msg.View)
	_ = v
}
