package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docanalyser-cli/internal/core/domain"
)

var (
	searchLimit int
	searchJSON  bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the library by meaning",
	Long: `Performs semantic search over the embedded documents.

Documents must be embedded first; this happens automatically on ingest
when auto-embedding is enabled, or on demand via 'search embed'.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

var searchEmbedCmd = &cobra.Command{
	Use:   "embed [doc-id]",
	Short: "Generate embeddings for a document, or all pending ones",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runSearchEmbed,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 10, "maximum number of results")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	searchCmd.AddCommand(searchEmbedCmd)
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if searchService == nil {
		return errors.New("search service not configured")
	}

	results, err := searchService.Search(cmd.Context(), args[0], searchLimit)
	if err != nil {
		if errors.Is(err, domain.ErrEmbeddingUnavailable) {
			return errors.New("no embedding provider configured; run 'docanalyser settings embedding'")
		}
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		data, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			return fmt.Errorf("marshalling results: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if len(results) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	for i, result := range results {
		cmd.Printf("  [%d] %s (%.2f)\n", i+1, result.Title, result.Score)
		cmd.Printf("      %s\n", result.DocID)
		if result.Snippet != "" {
			cmd.Printf("      %s\n", snippet(result.Snippet))
		}
		cmd.Println()
	}
	return nil
}

func runSearchEmbed(cmd *cobra.Command, args []string) error {
	if searchService == nil {
		return errors.New("search service not configured")
	}

	if len(args) == 1 {
		if err := searchService.EmbedDocument(cmd.Context(), args[0]); err != nil {
			return fmt.Errorf("embedding %s: %w", args[0], err)
		}
		cmd.Printf("Embedded %s\n", args[0])
		return nil
	}

	pending, err := searchService.Pending(cmd.Context())
	if err != nil {
		return fmt.Errorf("listing pending documents: %w", err)
	}
	if len(pending) == 0 {
		cmd.Println("All documents are embedded.")
		return nil
	}

	for _, doc := range pending {
		if err := searchService.EmbedDocument(cmd.Context(), doc.ID); err != nil {
			cmd.Printf("  %s: FAILED (%v)\n", doc.Title, err)
			continue
		}
		cmd.Printf("  %s: ok\n", doc.Title)
	}
	return nil
}

// snippet truncates result text to one display line.
func snippet(text string) string {
	const maxLen = 120
	if len(text) <= maxLen {
		return text
	}
	return text[:maxLen] + "..."
}
