package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docanalyser-cli/internal/core/ports/driving"
)

var (
	analysePromptName string
	analysePromptText string
)

var analyseCmd = &cobra.Command{
	Use:   "analyse [doc-id]",
	Short: "Run a one-shot AI analysis over a document",
	Long: `Sends the whole document with an analysis prompt and saves the
reply as a processed output of the document.

Named prompts (summary, key_points, questions) are user-editable files
in the prompts directory; --text sends a free-form prompt instead.`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyse,
}

var analyseListCmd = &cobra.Command{
	Use:   "list [doc-id]",
	Short: "List the saved outputs of a document",
	Args:  cobra.ExactArgs(1),
	RunE:  runAnalyseList,
}

var analyseShowCmd = &cobra.Command{
	Use:   "show [output-id]",
	Short: "Print a saved output",
	Args:  cobra.ExactArgs(1),
	RunE:  runAnalyseShow,
}

var analyseDeleteCmd = &cobra.Command{
	Use:   "delete [doc-id] [output-id]",
	Short: "Delete a saved output",
	Args:  cobra.ExactArgs(2),
	RunE:  runAnalyseDelete,
}

func init() {
	analyseCmd.Flags().StringVarP(&analysePromptName, "prompt", "p", "", "named prompt template (default: summary)")
	analyseCmd.Flags().StringVarP(&analysePromptText, "text", "t", "", "free-form prompt text")
	analyseCmd.AddCommand(analyseListCmd)
	analyseCmd.AddCommand(analyseShowCmd)
	analyseCmd.AddCommand(analyseDeleteCmd)
	rootCmd.AddCommand(analyseCmd)
}

func runAnalyse(cmd *cobra.Command, args []string) error {
	if analysisService == nil {
		return errors.New("analysis service not configured")
	}

	output, err := analysisService.Analyse(cmd.Context(), args[0], analysePromptName, analysePromptText, driving.AskOptions{})
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	text, err := analysisService.OutputText(cmd.Context(), output.ID)
	if err != nil {
		return fmt.Errorf("reading output: %w", err)
	}

	cmd.Println(text)
	cmd.Println()
	cmd.Printf("Saved as output %s (%s/%s)\n", output.ID, output.Provider, output.Model)
	return nil
}

func runAnalyseList(cmd *cobra.Command, args []string) error {
	if analysisService == nil {
		return errors.New("analysis service not configured")
	}

	outputs, err := analysisService.Outputs(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("listing outputs: %w", err)
	}

	if len(outputs) == 0 {
		cmd.Println("No saved outputs.")
		return nil
	}

	for _, output := range outputs {
		name := output.PromptName
		if name == "" {
			name = "custom"
		}
		cmd.Printf("%s  %s  %s\n", output.ID, output.Timestamp.Format("2006-01-02 15:04"), name)
		if output.Preview != "" {
			cmd.Printf("    %s\n", output.Preview)
		}
	}
	return nil
}

func runAnalyseShow(cmd *cobra.Command, args []string) error {
	if analysisService == nil {
		return errors.New("analysis service not configured")
	}

	text, err := analysisService.OutputText(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("reading output: %w", err)
	}
	cmd.Println(text)
	return nil
}

func runAnalyseDelete(cmd *cobra.Command, args []string) error {
	if analysisService == nil {
		return errors.New("analysis service not configured")
	}

	if err := analysisService.DeleteOutput(cmd.Context(), args[0], args[1]); err != nil {
		return fmt.Errorf("deleting output: %w", err)
	}
	cmd.Println("Output deleted.")
	return nil
}
