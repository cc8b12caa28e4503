// Package branches provides the branch selector view for the TUI.
package branches

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/docanalyser-cli/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/docanalyser-cli/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/docanalyser-cli/internal/core/domain"
	"github.com/custodia-labs/docanalyser-cli/internal/core/ports/driving"
)

// View is the branch selector for one source document.
type View struct {
	styles              *styles.Styles
	conversationService driving.ConversationService

	source   *domain.Document
	branches []domain.BranchInfo
	selected int
	width    int
	height   int
	err      error
	loading  bool
}

// NewView creates a new branch selector view.
func NewView(s *styles.Styles, conversationService driving.ConversationService) *View {
	return &View{
		styles:              s,
		conversationService: conversationService,
		branches:            []domain.BranchInfo{},
	}
}

// SetSource sets the source document and loads its branches.
func (v *View) SetSource(source domain.Document) tea.Cmd {
	v.source = &source
	v.branches = []domain.BranchInfo{}
	v.selected = 0
	v.err = nil
	v.loading = true
	return v.loadBranches()
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return nil
}

// loadBranches returns a command that loads the branches of the source.
func (v *View) loadBranches() tea.Cmd {
	return func() tea.Msg {
		if v.source == nil || v.conversationService == nil {
			return messages.BranchesLoaded{Err: fmt.Errorf("conversation service not available")}
		}

		branches, err := v.conversationService.Branches(context.Background(), v.source.ID)
		return messages.BranchesLoaded{
			SourceID: v.source.ID,
			Branches: branches,
			Err:      err,
		}
	}
}

// Update handles messages for the branch selector.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.BranchesLoaded:
		v.loading = false
		if msg.Err != nil {
			v.err = msg.Err
		} else {
			v.branches = msg.Branches
			v.err = nil
			if v.selected >= len(v.branches) {
				v.selected = max(len(v.branches)-1, 0)
			}
		}
		return v, nil

	case messages.LibraryChanged:
		// A branch may have gained its first exchange.
		v.loading = true
		return v, v.loadBranches()

	case messages.ErrorOccurred:
		v.err = msg.Err
		return v, nil
	}

	return v, nil
}

// handleKeyMsg handles key presses.
func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if v.selected > 0 {
			v.selected--
		}
	case "down", "j":
		if v.selected < len(v.branches)-1 {
			v.selected++
		}
	case "enter":
		if v.selected < len(v.branches) {
			branch := v.branches[v.selected]
			return v, func() tea.Msg {
				return messages.BranchSelected{Branch: branch}
			}
		}
	case "v":
		if v.source != nil {
			source := *v.source
			return v, func() tea.Msg {
				return messages.DocumentSelected{Document: source}
			}
		}
	case "r":
		v.loading = true
		return v, v.loadBranches()
	case "esc":
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewLibrary}
		}
	}

	return v, nil
}

// View renders the branch selector.
func (v *View) View() string {
	var b strings.Builder

	sourceTitle := "Unknown"
	if v.source != nil {
		sourceTitle = v.source.Title
	}
	b.WriteString(v.styles.Title.Render(fmt.Sprintf("Branches - %s", sourceTitle)))
	b.WriteString("\n\n")

	if v.loading {
		b.WriteString(v.styles.Muted.Render("Loading branches..."))
		b.WriteString("\n\n")
		b.WriteString(v.renderHelp())
		return b.String()
	}

	if v.err != nil {
		b.WriteString(v.styles.Error.Render(fmt.Sprintf("Error: %s", v.err.Error())))
		b.WriteString("\n\n")
		b.WriteString(v.renderHelp())
		return b.String()
	}

	if len(v.branches) == 0 {
		b.WriteString(v.styles.Muted.Render("No conversation branches yet. Start one with 'docanalyser ask'."))
		b.WriteString("\n\n")
		b.WriteString(v.renderHelp())
		return b.String()
	}

	for i := range v.branches {
		b.WriteString(v.renderBranch(i, &v.branches[i]))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(v.renderHelp())

	return b.String()
}

// renderBranch renders a single branch line.
func (v *View) renderBranch(index int, branch *domain.BranchInfo) string {
	indicator := "  "
	if index == v.selected {
		indicator = "> "
	}

	status := fmt.Sprintf("(%d exchanges)", branch.ExchangeCount)
	if branch.Processing {
		status = "(processing...)"
	}

	if index == v.selected {
		return v.styles.Selected.Render(fmt.Sprintf("%s%s  %s", indicator, branch.Title, status))
	}

	line := v.styles.Normal.Render(indicator+branch.Title) + "  "
	if branch.Processing {
		return line + v.styles.Warning.Render(status)
	}
	return line + v.styles.Muted.Render(status)
}

// renderHelp renders the help footer.
func (v *View) renderHelp() string {
	return v.styles.Help.Render("[↑/↓] navigate  [enter] open thread  [v] source content  [r] reload  [esc] back")
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
}

// Branches returns the current branch list.
func (v *View) Branches() []domain.BranchInfo {
	return v.branches
}

// SelectedIndex returns the currently selected index.
func (v *View) SelectedIndex() int {
	return v.selected
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}
