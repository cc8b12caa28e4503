package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var costsAll bool

var costsCmd = &cobra.Command{
	Use:   "costs",
	Short: "Show estimated AI spending",
	Long: `Summarises the estimated cost of every logged AI call.

Costs are derived from a static pricing table and are estimates, not
invoices. Local providers log zero cost.`,
	RunE: runCosts,
}

func init() {
	costsCmd.Flags().BoolVar(&costsAll, "all", false, "list every logged call")
	rootCmd.AddCommand(costsCmd)
}

func runCosts(cmd *cobra.Command, _ []string) error {
	if costLog == nil {
		return errors.New("cost log not configured")
	}

	if costsAll {
		records, err := costLog.Records(cmd.Context())
		if err != nil {
			return fmt.Errorf("reading cost log: %w", err)
		}
		if len(records) == 0 {
			cmd.Println("No AI calls logged yet.")
			return nil
		}
		for _, rec := range records {
			label := rec.PromptName
			if label == "" {
				label = "chat"
			}
			cmd.Printf("%s  %s/%s  %-12s  $%.4f  (%d in / %d out)\n",
				rec.Timestamp.Format("2006-01-02 15:04"),
				rec.Provider, rec.Model, label, rec.Cost,
				rec.InputTokens, rec.OutputTokens)
		}
		return nil
	}

	summary, err := costLog.Summary(cmd.Context())
	if err != nil {
		return fmt.Errorf("summarising cost log: %w", err)
	}

	cmd.Printf("Total estimated spend: $%.4f over %d calls\n", summary.Total, summary.Calls)
	if len(summary.ByProvider) > 0 {
		cmd.Println("\nBy provider:")
		for provider, cost := range summary.ByProvider {
			cmd.Printf("  %-12s $%.4f\n", provider, cost)
		}
	}
	if len(summary.ByModel) > 0 {
		cmd.Println("\nBy model:")
		for model, cost := range summary.ByModel {
			cmd.Printf("  %-30s $%.4f\n", model, cost)
		}
	}
	return nil
}
