package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docanalyser-cli/internal/core/domain"
	"github.com/custodia-labs/docanalyser-cli/internal/core/ports/driving"
)

var (
	askBranches    []string
	askNewBranches []string
	askStay        bool
	askMaxTokens   int
	askTemperature float64
)

var askCmd = &cobra.Command{
	Use:   "ask [doc-id] [question]",
	Short: "Ask the AI about a document",
	Long: `Sends a question about a document to the configured chat provider.

The document may be a source or an existing response branch. The
exchange is saved to response branches, never to the source itself:
with no branch flags a new branch is created; --branch appends to an
existing branch; flags can be repeated to fan one question out to
several branches at once.`,
	Args: cobra.ExactArgs(2),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringArrayVarP(&askBranches, "branch", "b", nil, "append to an existing branch (repeatable)")
	askCmd.Flags().StringArrayVarP(&askNewBranches, "new-branch", "B", nil, "create a new branch with this title, empty for auto (repeatable)")
	askCmd.Flags().BoolVar(&askStay, "stay", false, "do not switch to the written branch")
	askCmd.Flags().IntVar(&askMaxTokens, "max-tokens", 0, "cap the reply length (0 = provider default)")
	askCmd.Flags().Float64Var(&askTemperature, "temperature", 0, "sampling temperature (0 = provider default)")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if conversationService == nil {
		return errors.New("conversation service not configured")
	}

	docID, question := args[0], args[1]

	plan := domain.BranchPlan{
		ExistingBranches:  askBranches,
		NewBranches:       askNewBranches,
		StayInCurrentView: askStay,
	}
	if len(plan.ExistingBranches) == 0 && len(plan.NewBranches) == 0 {
		// Asking within a branch continues it; asking about a source
		// opens a fresh branch.
		doc, err := libraryService.Get(cmd.Context(), docID)
		if err != nil {
			return err
		}
		if doc.ParentDocumentID() != "" {
			plan.ExistingBranches = []string{docID}
		} else {
			plan.NewBranches = []string{""}
		}
	}

	result, err := conversationService.Ask(cmd.Context(), docID, question, plan, driving.AskOptions{
		MaxTokens:   askMaxTokens,
		Temperature: askTemperature,
	})
	if err != nil {
		if errors.Is(err, domain.ErrChatUnavailable) {
			return errors.New("no chat provider configured; run 'docanalyser settings chat'")
		}
		return fmt.Errorf("ask failed: %w", err)
	}

	cmd.Println(result.Answer)
	cmd.Println()
	for _, branchID := range result.BranchIDs {
		cmd.Printf("Saved to branch %s\n", branchID)
	}
	if result.EstimatedCost > 0 {
		cmd.Printf("Estimated cost: $%.4f\n", result.EstimatedCost)
	}
	return nil
}
