package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docanalyser-cli/internal/core/ports/driving"
)

var (
	exportFormat string
	exportThread bool
	exportOut    string
)

var exportCmd = &cobra.Command{
	Use:   "export [doc-id]",
	Short: "Export a document or its conversation",
	Long: `Renders a document's text, or with --thread its conversation,
as plain text, markdown or HTML.`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "text", "output format: text, markdown or html")
	exportCmd.Flags().BoolVar(&exportThread, "thread", false, "export the conversation thread instead of the document text")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "write to a file instead of stdout")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	if exportService == nil {
		return errors.New("export service not configured")
	}

	format := driving.ExportFormat(exportFormat)
	var (
		rendered string
		err      error
	)
	if exportThread {
		rendered, err = exportService.ExportThread(cmd.Context(), args[0], format)
	} else {
		rendered, err = exportService.ExportDocument(cmd.Context(), args[0], format)
	}
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	if exportOut == "" {
		cmd.Println(rendered)
		return nil
	}
	if err := os.WriteFile(exportOut, []byte(rendered), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", exportOut, err)
	}
	cmd.Printf("Wrote %s\n", exportOut)
	return nil
}
