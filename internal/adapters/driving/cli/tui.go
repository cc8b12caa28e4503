package cli

import (
	"fmt"
	"os"
	"runtime/debug"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/docanalyser-cli/internal/adapters/driving/tui"
	"github.com/custodia-labs/docanalyser-cli/internal/logger"
)

// TUIConfig holds configuration for the TUI command.
type TUIConfig struct {
	// LibraryPath is the library data file to watch for external
	// changes. Empty disables the watcher.
	LibraryPath string
}

// tuiConfig holds the current TUI configuration.
var tuiConfig *TUIConfig

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive terminal UI",
	Long: `Launch the interactive terminal user interface.

Browse the library, pick a conversation branch and read its thread with
per-exchange collapse/expand. The view reloads automatically when
another docanalyser process changes the library.

Controls:
  ↑/k, ↓/j - Navigate
  Enter    - Select
  Esc      - Back
  ?        - Toggle help
  q        - Quit`,
	RunE: runTUI,
}

// SetTUIConfig sets the configuration for the TUI command.
func SetTUIConfig(config *TUIConfig) {
	tuiConfig = config
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) error {
	// Panic recovery to get stack traces out of the alt screen.
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	ports := &tui.Ports{
		Library:      libraryService,
		Conversation: conversationService,
	}

	if tuiConfig != nil && tuiConfig.LibraryPath != "" {
		watcher, err := tui.NewWatcher(tuiConfig.LibraryPath)
		if err != nil {
			// The TUI still works without live reload.
			logger.Warn("library watcher unavailable: %v", err)
		} else {
			ports.Watcher = watcher
		}
	}

	app, err := tui.NewApp(ports)
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}

	app.WithContext(cmd.Context())

	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	return nil
}
