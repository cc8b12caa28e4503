package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docanalyser-cli/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/docanalyser-cli/internal/core/domain"
)

func newTestApp(t *testing.T, lib *mockLibraryService, conv *mockConversationService) *App {
	t.Helper()
	app, err := NewApp(&Ports{Library: lib, Conversation: conv})
	require.NoError(t, err)
	app.SetDimensions(80, 24)
	return app
}

func TestNewApp(t *testing.T) {
	t.Run("nil library service returns error", func(t *testing.T) {
		app, err := NewApp(&Ports{Conversation: &mockConversationService{}})
		require.Error(t, err)
		assert.Nil(t, app)
		assert.ErrorIs(t, err, ErrMissingLibraryService)
	})

	t.Run("nil conversation service returns error", func(t *testing.T) {
		app, err := NewApp(&Ports{Library: &mockLibraryService{}})
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrMissingConversationService)
		assert.Nil(t, app)
	})

	t.Run("valid ports creates app on the library view", func(t *testing.T) {
		app, err := NewApp(&Ports{
			Library:      &mockLibraryService{},
			Conversation: &mockConversationService{},
		})
		require.NoError(t, err)
		assert.Equal(t, messages.ViewLibrary, app.CurrentView())
		assert.False(t, app.Ready())
	})
}

func TestApp_WindowSize(t *testing.T) {
	app, err := NewApp(&Ports{
		Library:      &mockLibraryService{},
		Conversation: &mockConversationService{},
	})
	require.NoError(t, err)

	assert.Equal(t, "Initialising...", app.View())

	model, _ := app.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	app = model.(*App)
	assert.True(t, app.Ready())
	assert.Contains(t, app.View(), "Library")
}

func TestApp_Navigation(t *testing.T) {
	source := domain.Document{
		ID:    "doc-1",
		Title: "The Paper",
		Type:  domain.TypeWeb,
		Class: domain.ClassSource,
	}
	branch := domain.BranchInfo{DocID: "branch-1", Title: "Re: The Paper (1)", ExchangeCount: 1}

	lib := &mockLibraryService{documents: []domain.Document{source}}
	conv := &mockConversationService{
		branches: []domain.BranchInfo{branch},
		thread: []domain.ThreadMessage{
			{Role: domain.RoleUser, Content: "What is this about?"},
			{Role: domain.RoleAssistant, Content: "A paper.", Model: "gpt-4o-mini"},
		},
	}

	app := newTestApp(t, lib, conv)

	// Selecting a document from the library opens the branch selector.
	model, cmd := app.Update(messages.DocumentSelected{Document: source})
	app = model.(*App)
	require.NotNil(t, cmd)
	assert.Equal(t, messages.ViewBranches, app.CurrentView())

	// Run the load command and feed the result back.
	model, _ = app.Update(cmd())
	app = model.(*App)
	assert.Contains(t, app.View(), "Re: The Paper (1)")

	// Selecting a branch opens the thread viewer.
	model, cmd = app.Update(messages.BranchSelected{Branch: branch})
	app = model.(*App)
	require.NotNil(t, cmd)
	assert.Equal(t, messages.ViewThread, app.CurrentView())

	model, _ = app.Update(cmd())
	app = model.(*App)
	assert.Contains(t, app.View(), "What is this about?")
	assert.Contains(t, app.View(), "A paper.")

	// Esc walks back to the branch selector, then the library.
	model, cmd = app.Update(tea.KeyMsg{Type: tea.KeyEsc})
	app = model.(*App)
	require.NotNil(t, cmd)
	model, _ = app.Update(cmd())
	app = model.(*App)
	assert.Equal(t, messages.ViewBranches, app.CurrentView())
}

func TestApp_DocumentSelectedFromBranches(t *testing.T) {
	source := domain.Document{ID: "doc-1", Title: "The Paper", Class: domain.ClassSource}
	lib := &mockLibraryService{content: "Plain paragraph."}
	app := newTestApp(t, lib, &mockConversationService{})

	// First selection: library -> branches.
	model, _ := app.Update(messages.DocumentSelected{Document: source})
	app = model.(*App)
	require.Equal(t, messages.ViewBranches, app.CurrentView())

	// Second selection from the branch selector opens the source text.
	model, cmd := app.Update(messages.DocumentSelected{Document: source})
	app = model.(*App)
	require.NotNil(t, cmd)
	assert.Equal(t, messages.ViewContent, app.CurrentView())

	model, _ = app.Update(cmd())
	app = model.(*App)
	assert.Contains(t, app.View(), "Plain paragraph.")
}

func TestApp_HelpToggle(t *testing.T) {
	app := newTestApp(t, &mockLibraryService{}, &mockConversationService{})

	model, _ := app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'?'}})
	app = model.(*App)
	assert.Equal(t, messages.ViewHelp, app.CurrentView())
	assert.Contains(t, app.View(), "Collapse or expand")

	model, _ = app.Update(tea.KeyMsg{Type: tea.KeyEsc})
	app = model.(*App)
	assert.Equal(t, messages.ViewLibrary, app.CurrentView())
}

func TestApp_Quit(t *testing.T) {
	app := newTestApp(t, &mockLibraryService{}, &mockConversationService{})

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())

	_, cmd = app.Update(messages.Quit{})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestApp_ErrorForwarding(t *testing.T) {
	app := newTestApp(t, &mockLibraryService{}, &mockConversationService{})

	model, _ := app.Update(messages.ErrorOccurred{Err: assert.AnError})
	app = model.(*App)
	assert.Equal(t, assert.AnError, app.Err())
	assert.Contains(t, app.View(), "Error:")
}

func TestApp_LibraryChangedReloads(t *testing.T) {
	lib := &mockLibraryService{documents: []domain.Document{
		{ID: "doc-1", Title: "First", Class: domain.ClassSource},
	}}
	app := newTestApp(t, lib, &mockConversationService{})

	// Seed the library view.
	model, _ := app.Update(messages.LibraryLoaded{Documents: lib.documents})
	app = model.(*App)
	require.Contains(t, app.View(), "First")

	// An external change triggers a reload command.
	lib.documents = append(lib.documents, domain.Document{
		ID: "doc-2", Title: "Second", Class: domain.ClassSource,
	})
	model, cmd := app.Update(messages.LibraryChanged{})
	app = model.(*App)
	require.NotNil(t, cmd)

	model, _ = app.Update(cmd())
	app = model.(*App)
	assert.Contains(t, app.View(), "Second")
}
