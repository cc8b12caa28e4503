package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [source]",
	Short: "Add a document to the library",
	Long: `Fetches a source and stores it as a read-only source document.

Supported sources include local text files, PDFs, DOCX files, images
(OCR), audio files (transcription), web pages, YouTube videos and
Apple Podcasts episodes. Re-ingesting the same source updates the
existing document in place.`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	report, err := ingestService.Ingest(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}

	verb := "Added"
	if report.Updated {
		verb = "Updated"
	}
	cmd.Printf("%s %q (%s, %d entries)\n", verb, report.Title, report.Type, report.EntryCount)
	cmd.Printf("  ID: %s\n", report.DocID)
	if report.EmbeddingQueued {
		cmd.Println("  Embeddings are being generated in the background.")
	}
	cmd.Println()
	cmd.Printf("Ask about it with: docanalyser ask %s \"your question\"\n", report.DocID)
	return nil
}
