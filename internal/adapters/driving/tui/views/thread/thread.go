// Package thread provides the conversation thread viewer for the TUI.
// Exchanges collapse to their question line and expand on demand.
package thread

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

// Exchange pairs a user question with its assistant reply.
type Exchange struct {
	Question string
	Answer   string
	Model    string
}

// View is the conversation thread viewer.
type View struct {
	styles              *styles.Styles
	conversationService driving.ConversationService

	branch    *domain.BranchInfo
	exchanges []Exchange
	expanded  map[int]bool
	selected  int
	width     int
	height    int
	err       error
	loading   bool
}

// NewView creates a new thread viewer.
func NewView(s *styles.Styles, conversationService driving.ConversationService) *View {
	return &View{
		styles:              s,
		conversationService: conversationService,
		expanded:            map[int]bool{},
	}
}

// SetBranch sets the branch and loads its thread.
func (v *View) SetBranch(branch domain.BranchInfo) tea.Cmd {
	v.branch = &branch
	v.exchanges = nil
	v.expanded = map[int]bool{}
	v.selected = 0
	v.err = nil
	v.loading = true
	return v.loadThread()
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return nil
}

// loadThread returns a command that loads the branch's conversation.
func (v *View) loadThread() tea.Cmd {
	return func() tea.Msg {
		if v.branch == nil || v.conversationService == nil {
			return messages.ThreadLoaded{Err: fmt.Errorf("conversation service not available")}
		}

		msgs, err := v.conversationService.Thread(context.Background(), v.branch.DocID)
		return messages.ThreadLoaded{
			BranchID: v.branch.DocID,
			Title:    v.branch.Title,
			Messages: msgs,
			Err:      err,
		}
	}
}

// Update handles messages for the thread viewer.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.ThreadLoaded:
		v.loading = false
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.err = nil
		v.exchanges = pairExchanges(msg.Messages)
		v.expanded = map[int]bool{}
		// Only the latest exchange starts expanded.
		if len(v.exchanges) > 0 {
			v.selected = len(v.exchanges) - 1
			v.expanded[v.selected] = true
		}
		return v, nil

	case messages.LibraryChanged:
		v.loading = true
		return v, v.loadThread()

	case messages.ErrorOccurred:
		v.err = msg.Err
		return v, nil
	}

	return v, nil
}

// pairExchanges folds a message list into question/answer pairs. An
// unanswered trailing question becomes an exchange with an empty answer.
func pairExchanges(msgs []domain.ThreadMessage) []Exchange {
	var exchanges []Exchange
	for _, m := range msgs {
		switch m.Role {
		case domain.RoleUser:
			exchanges = append(exchanges, Exchange{Question: m.Content})
		case domain.RoleAssistant:
			if len(exchanges) == 0 {
				exchanges = append(exchanges, Exchange{})
			}
			last := &exchanges[len(exchanges)-1]
			last.Answer = m.Content
			last.Model = m.Model
		}
	}
	return exchanges
}

// handleKeyMsg handles key presses.
func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if v.selected > 0 {
			v.selected--
		}
	case "down", "j":
		if v.selected < len(v.exchanges)-1 {
			v.selected++
		}
	case "tab", " ", "enter":
		if v.selected < len(v.exchanges) {
			v.expanded[v.selected] = !v.expanded[v.selected]
		}
	case "a":
		// Expand everything.
		for i := range v.exchanges {
			v.expanded[i] = true
		}
	case "c":
		// Collapse everything.
		v.expanded = map[int]bool{}
	case "r":
		v.loading = true
		return v, v.loadThread()
	case "esc":
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewBranches}
		}
	}

	return v, nil
}

// View renders the thread viewer.
func (v *View) View() string {
	var b strings.Builder

	title := "Thread"
	if v.branch != nil {
		title = v.branch.Title
	}
	b.WriteString(v.styles.Title.Render(title))
	b.WriteString("\n\n")

	if v.loading {
		b.WriteString(v.styles.Muted.Render("Loading conversation..."))
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

	if len(v.exchanges) == 0 {
		b.WriteString(v.styles.Muted.Render("No conversation yet. Ask something with 'docanalyser ask'."))
		b.WriteString("\n\n")
		b.WriteString(v.renderHelp())
		return b.String()
	}

	for i := range v.exchanges {
		b.WriteString(v.renderExchange(i, &v.exchanges[i]))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(v.renderHelp())

	return b.String()
}

// renderExchange renders one exchange, collapsed or expanded.
func (v *View) renderExchange(index int, ex *Exchange) string {
	indicator := "  "
	if index == v.selected {
		indicator = "> "
	}

	marker := "+"
	if v.expanded[index] {
		marker = "-"
	}

	question := firstLine(ex.Question)
	header := fmt.Sprintf("%s[%s] %s", indicator, marker, question)
	var b strings.Builder
	if index == v.selected {
		b.WriteString(v.styles.Selected.Render(header))
	} else {
		b.WriteString(v.styles.User.Render(header))
	}

	if !v.expanded[index] {
		return b.String()
	}

	b.WriteString("\n")
	answer := ex.Answer
	if answer == "" {
		answer = "(waiting for response)"
	}
	b.WriteString(v.styles.Assistant.Render(indent(answer, "    ")))
	if ex.Model != "" {
		b.WriteString("\n")
		b.WriteString(v.styles.Muted.Render("    -- " + ex.Model))
	}
	b.WriteString("\n")

	return b.String()
}

// renderHelp renders the help footer.
func (v *View) renderHelp() string {
	return v.styles.Help.Render("[↑/↓] navigate  [tab] collapse/expand  [a]ll  [c]ollapse  [r] reload  [esc] back")
}

// firstLine truncates multi-line questions for the collapsed header.
func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i] + "..."
	}
	return s
}

// indent prefixes every line of s.
func indent(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n")
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
}

// Exchanges returns the loaded exchanges.
func (v *View) Exchanges() []Exchange {
	return v.exchanges
}

// IsExpanded reports whether an exchange is expanded.
func (v *View) IsExpanded(index int) bool {
	return v.expanded[index]
}

// SelectedIndex returns the currently selected exchange index.
func (v *View) SelectedIndex() int {
	return v.selected
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}
