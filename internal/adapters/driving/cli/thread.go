package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docanalyser-cli/internal/core/ports/driving"
)

var threadCmd = &cobra.Command{
	Use:   "thread",
	Short: "Work with branch conversation threads",
}

var threadListCmd = &cobra.Command{
	Use:   "list [source-id]",
	Short: "List the conversation branches of a source document",
	Args:  cobra.ExactArgs(1),
	RunE:  runThreadList,
}

var threadShowCmd = &cobra.Command{
	Use:   "show [branch-id]",
	Short: "Print a branch's conversation",
	Args:  cobra.ExactArgs(1),
	RunE:  runThreadShow,
}

var threadSaveCmd = &cobra.Command{
	Use:   "save [branch-id]",
	Short: "Save a branch's conversation as a standalone document",
	Args:  cobra.ExactArgs(1),
	RunE:  runThreadSave,
}

var threadDeleteCmd = &cobra.Command{
	Use:   "delete [branch-id]",
	Short: "Delete a response branch and its conversation",
	Args:  cobra.ExactArgs(1),
	RunE:  runThreadDelete,
}

func init() {
	threadCmd.AddCommand(threadListCmd)
	threadCmd.AddCommand(threadShowCmd)
	threadCmd.AddCommand(threadSaveCmd)
	threadCmd.AddCommand(threadDeleteCmd)
	rootCmd.AddCommand(threadCmd)
}

func runThreadList(cmd *cobra.Command, args []string) error {
	if conversationService == nil {
		return errors.New("conversation service not configured")
	}

	branches, err := conversationService.Branches(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("listing branches: %w", err)
	}
	if len(branches) == 0 {
		cmd.Println("No conversation branches yet. Start one with 'docanalyser ask'.")
		return nil
	}
	for _, b := range branches {
		marker := " "
		if b.Processing {
			marker = "*"
		}
		cmd.Printf("%s %s  (%d exchanges)  %s\n", marker, b.DocID, b.ExchangeCount, b.Title)
	}
	return nil
}

func runThreadShow(cmd *cobra.Command, args []string) error {
	if exportService == nil {
		return errors.New("export service not configured")
	}

	text, err := exportService.ExportThread(cmd.Context(), args[0], driving.ExportText)
	if err != nil {
		return fmt.Errorf("reading thread: %w", err)
	}
	cmd.Println(text)
	return nil
}

func runThreadSave(cmd *cobra.Command, args []string) error {
	if conversationService == nil {
		return errors.New("conversation service not configured")
	}

	newID, err := conversationService.PromoteThread(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("saving thread: %w", err)
	}
	cmd.Printf("Saved conversation as document %s\n", newID)
	return nil
}

func runThreadDelete(cmd *cobra.Command, args []string) error {
	if conversationService == nil {
		return errors.New("conversation service not configured")
	}

	if err := conversationService.DeleteBranch(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("deleting branch: %w", err)
	}
	cmd.Printf("Deleted branch %s\n", args[0])
	return nil
}
