package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/docanalyser-cli/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/docanalyser-cli/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/docanalyser-cli/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/docanalyser-cli/internal/adapters/driving/tui/views/branches"
	"github.com/custodia-labs/docanalyser-cli/internal/adapters/driving/tui/views/content"
	"github.com/custodia-labs/docanalyser-cli/internal/adapters/driving/tui/views/library"
	"github.com/custodia-labs/docanalyser-cli/internal/adapters/driving/tui/views/thread"
	"github.com/custodia-labs/docanalyser-cli/internal/core/domain"
)

// App is the main TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	// ports provides access to core services via driving ports.
	ports *Ports

	// ctx is the context for cancellation.
	ctx context.Context

	// styles holds the TUI styles.
	styles *styles.Styles

	// keys holds the global keybindings.
	keys *keymap.KeyMap

	// libraryView is the document list.
	libraryView *library.View

	// branchesView is the branch selector.
	branchesView *branches.View

	// threadView is the conversation viewer.
	threadView *thread.View

	// contentView is the document text viewer.
	contentView *content.View

	// selectedSource tracks the source the branch selector is showing.
	selectedSource *domain.Document

	// currentView tracks which view is active.
	currentView messages.ViewType

	// err holds the last error that occurred.
	err error

	// width and height are terminal dimensions.
	width  int
	height int

	// ready indicates if the app has initialised.
	ready bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()

	return &App{
		ports:        ports,
		ctx:          context.Background(),
		styles:       s,
		keys:         keymap.DefaultKeyMap(),
		libraryView:  library.NewView(s, ports.Library),
		branchesView: branches.NewView(s, ports.Conversation),
		threadView:   thread.NewView(s, ports.Conversation),
		contentView:  content.NewView(s, ports.Library),
		currentView:  messages.ViewLibrary,
	}, nil
}

// WithContext sets the context for the app.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	return a
}

// Init implements tea.Model.
// It runs initial commands when the program starts.
func (a *App) Init() tea.Cmd {
	cmds := []tea.Cmd{
		tea.EnterAltScreen,
		tea.SetWindowTitle("docanalyser"),
		a.libraryView.Init(),
	}
	if a.ports.Watcher != nil {
		a.ports.Watcher.Start(a.ctx)
		cmds = append(cmds, a.waitForLibraryChange())
	}
	return tea.Batch(cmds...)
}

// waitForLibraryChange blocks on the watcher and converts the next
// external library change into a message.
func (a *App) waitForLibraryChange() tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-a.ports.Watcher.Changes(); !ok {
			return nil
		}
		return messages.LibraryChanged{}
	}
}

// Update implements tea.Model.
// It handles messages and updates the model state.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.ready = true
		// Forward to all views for proper sizing
		a.libraryView.SetDimensions(msg.Width, msg.Height)
		a.branchesView.SetDimensions(msg.Width, msg.Height)
		a.threadView.SetDimensions(msg.Width, msg.Height)
		a.contentView.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		// Global quit with ctrl+c
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		if keymap.Matches(msg.String(), a.keys.Help) && a.currentView != messages.ViewHelp {
			a.currentView = messages.ViewHelp
			return a, nil
		}
		if a.currentView == messages.ViewHelp {
			if keymap.Matches(msg.String(), a.keys.Back) {
				a.currentView = messages.ViewLibrary
			}
			return a, nil
		}
		return a.forward(msg)

	case messages.LibraryChanged:
		// Fan out to every view holding library state, then re-arm.
		a.libraryView, _ = a.libraryView.Update(msg)
		a.branchesView, _ = a.branchesView.Update(msg)
		a.threadView, _ = a.threadView.Update(msg)
		cmds := []tea.Cmd{a.reloadCurrentView()}
		if a.ports.Watcher != nil {
			cmds = append(cmds, a.waitForLibraryChange())
		}
		return a, tea.Batch(cmds...)

	case messages.ViewChanged:
		a.currentView = msg.View
		if msg.View == messages.ViewLibrary {
			return a, a.libraryView.Init()
		}
		return a, nil

	case messages.DocumentSelected:
		// From the library a document opens its branch selector; from
		// the branch selector it opens the source text.
		if a.currentView == messages.ViewBranches {
			a.currentView = messages.ViewContent
			return a, a.contentView.SetDocument(msg.Document)
		}
		a.selectedSource = &msg.Document
		a.currentView = messages.ViewBranches
		return a, a.branchesView.SetSource(msg.Document)

	case messages.BranchSelected:
		a.currentView = messages.ViewThread
		return a, a.threadView.SetBranch(msg.Branch)

	case messages.ErrorOccurred:
		a.err = msg.Err
		return a.forward(msg)

	case messages.Quit:
		return a, tea.Quit
	}

	// Forward other messages (loads, errors) to the active view.
	return a.forward(msg)
}

// reloadCurrentView returns the load command matching the active view.
func (a *App) reloadCurrentView() tea.Cmd {
	switch a.currentView {
	case messages.ViewLibrary:
		return a.libraryView.Init()
	default:
		return nil
	}
}

// forward routes a message to the active view.
func (a *App) forward(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch a.currentView {
	case messages.ViewLibrary:
		a.libraryView, cmd = a.libraryView.Update(msg)
	case messages.ViewBranches:
		a.branchesView, cmd = a.branchesView.Update(msg)
	case messages.ViewThread:
		a.threadView, cmd = a.threadView.Update(msg)
	case messages.ViewContent:
		a.contentView, cmd = a.contentView.Update(msg)
	case messages.ViewHelp:
		// Help view doesn't need to handle other messages
	}

	return a, cmd
}

// View implements tea.Model.
// It renders the current view as a string.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	switch a.currentView {
	case messages.ViewLibrary:
		return a.libraryView.View()
	case messages.ViewBranches:
		return a.branchesView.View()
	case messages.ViewThread:
		return a.threadView.View()
	case messages.ViewContent:
		return a.contentView.View()
	case messages.ViewHelp:
		return a.viewHelp()
	default:
		return a.libraryView.View()
	}
}

// viewHelp renders the help view.
func (a *App) viewHelp() string {
	return `Help

Navigation:
  esc         Back
  ctrl+c      Quit

Library:
  j/k, ↑/↓    Navigate documents
  enter       Open branch selector
  r           Reload
  q           Quit

Branches:
  enter       Open conversation thread
  v           View source text

Thread:
  tab/space   Collapse or expand the selected exchange
  a / c       Expand all / collapse all

[esc] back to library`
}

// Run starts the TUI application.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// CurrentView returns the current view type.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// Err returns the last error that occurred.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app has been initialised.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions sets the terminal dimensions (for testing).
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.libraryView.SetDimensions(width, height)
	a.branchesView.SetDimensions(width, height)
	a.threadView.SetDimensions(width, height)
	a.contentView.SetDimensions(width, height)
}
