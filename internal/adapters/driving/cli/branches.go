package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var branchesCmd = &cobra.Command{
	Use:   "branches [source-id]",
	Short: "List the response branches of a source document",
	Args:  cobra.ExactArgs(1),
	RunE:  runBranches,
}

var branchesCreateCmd = &cobra.Command{
	Use:   "create [source-id] [title]",
	Short: "Create an empty branch for later conversations",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runBranchesCreate,
}

func init() {
	branchesCmd.AddCommand(branchesCreateCmd)
	rootCmd.AddCommand(branchesCmd)
}

func runBranches(cmd *cobra.Command, args []string) error {
	if conversationService == nil {
		return errors.New("conversation service not configured")
	}

	branches, err := conversationService.Branches(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("listing branches: %w", err)
	}

	if len(branches) == 0 {
		cmd.Println("No branches yet. Ask a question to start one.")
		return nil
	}

	for _, branch := range branches {
		marker := " "
		if branch.Processing {
			marker = "*"
		}
		cmd.Printf("%s %s  %s\n", marker, branch.DocID, branch.Title)
		cmd.Printf("    %d exchanges, updated %s\n", branch.ExchangeCount, branch.LastUpdated.Format("2006-01-02 15:04"))
	}
	cmd.Println()
	cmd.Println("* = waiting for its first AI response")
	return nil
}

func runBranchesCreate(cmd *cobra.Command, args []string) error {
	if conversationService == nil {
		return errors.New("conversation service not configured")
	}

	title := ""
	if len(args) > 1 {
		title = args[1]
	}

	branchID, err := conversationService.CreateBranch(cmd.Context(), args[0], title)
	if err != nil {
		return fmt.Errorf("creating branch: %w", err)
	}
	cmd.Printf("Created branch %s\n", branchID)
	return nil
}
