package cli

import (
	"errors"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docanalyser-cli/internal/core/domain"
)

var libraryCmd = &cobra.Command{
	Use:   "library",
	Short: "Manage the document library",
	RunE:  runLibraryList,
}

var libraryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all documents",
	RunE:  runLibraryList,
}

var libraryShowCmd = &cobra.Command{
	Use:   "show [doc-id]",
	Short: "Show document details",
	Args:  cobra.ExactArgs(1),
	RunE:  runLibraryShow,
}

var libraryContentCmd = &cobra.Command{
	Use:   "content [doc-id]",
	Short: "Print document text",
	Args:  cobra.ExactArgs(1),
	RunE:  runLibraryContent,
}

var libraryStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarise the library",
	RunE:  runLibraryStats,
}

var libraryDeleteCmd = &cobra.Command{
	Use:   "delete [doc-id]",
	Short: "Delete a document",
	Long:  `Deletes a document. Deleting a source also removes its response branches and embeddings.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runLibraryDelete,
}

var libraryRenameCmd = &cobra.Command{
	Use:   "rename [doc-id] [title]",
	Short: "Change a document title",
	Args:  cobra.ExactArgs(2),
	RunE:  runLibraryRename,
}

var libraryConvertCmd = &cobra.Command{
	Use:   "convert [doc-id]",
	Short: "Promote a response branch to a standalone source document",
	Args:  cobra.ExactArgs(1),
	RunE:  runLibraryConvert,
}

func init() {
	libraryCmd.AddCommand(libraryListCmd)
	libraryCmd.AddCommand(libraryShowCmd)
	libraryCmd.AddCommand(libraryContentCmd)
	libraryCmd.AddCommand(libraryStatsCmd)
	libraryCmd.AddCommand(libraryDeleteCmd)
	libraryCmd.AddCommand(libraryRenameCmd)
	libraryCmd.AddCommand(libraryConvertCmd)
	rootCmd.AddCommand(libraryCmd)
}

func runLibraryList(cmd *cobra.Command, _ []string) error {
	if libraryService == nil {
		return errors.New("library service not configured")
	}

	docs, err := libraryService.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("listing documents: %w", err)
	}

	if len(docs) == 0 {
		cmd.Println("Library is empty. Add something with 'docanalyser ingest'.")
		return nil
	}

	for _, doc := range docs {
		// Branches are listed under their source, not at the top level.
		if doc.Class == domain.ClassResponse {
			continue
		}
		cmd.Printf("%s  [%s]  %s\n", doc.ID, doc.Type, doc.Title)
	}
	return nil
}

func runLibraryShow(cmd *cobra.Command, args []string) error {
	if libraryService == nil {
		return errors.New("library service not configured")
	}

	doc, err := libraryService.Get(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("getting document: %w", err)
	}

	cmd.Printf("Document: %s\n\n", doc.ID)
	cmd.Printf("  Title:    %s\n", doc.Title)
	cmd.Printf("  Type:     %s\n", doc.Type)
	cmd.Printf("  Class:    %s\n", doc.Class)
	cmd.Printf("  Source:   %s\n", doc.Source)
	cmd.Printf("  Fetched:  %s\n", doc.Fetched.Format("2006-01-02 15:04:05"))
	cmd.Printf("  Entries:  %d\n", doc.EntryCount)
	if parent := doc.ParentDocumentID(); parent != "" {
		cmd.Printf("  Parent:   %s\n", parent)
	}
	if doc.ThreadMetadata != nil {
		cmd.Printf("  Thread:   %d exchanges (%s/%s)\n",
			doc.ThreadMetadata.MessageCount, doc.ThreadMetadata.Provider, doc.ThreadMetadata.Model)
	}
	if len(doc.ProcessedOutputs) > 0 {
		cmd.Printf("  Outputs:  %d\n", len(doc.ProcessedOutputs))
	}
	if len(doc.Metadata) > 0 {
		cmd.Println("\n  Metadata:")
		keys := make([]string, 0, len(doc.Metadata))
		for k := range doc.Metadata {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			cmd.Printf("    %s: %v\n", k, doc.Metadata[k])
		}
	}
	return nil
}

func runLibraryContent(cmd *cobra.Command, args []string) error {
	if libraryService == nil {
		return errors.New("library service not configured")
	}

	content, err := libraryService.Content(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("getting content: %w", err)
	}
	cmd.Println(content)
	return nil
}

func runLibraryStats(cmd *cobra.Command, _ []string) error {
	if libraryService == nil {
		return errors.New("library service not configured")
	}

	stats, err := libraryService.Stats(cmd.Context())
	if err != nil {
		return fmt.Errorf("getting stats: %w", err)
	}

	cmd.Printf("Documents: %d\n", stats.Documents)
	cmd.Printf("Entries:   %d\n", stats.Entries)
	cmd.Printf("Outputs:   %d\n", stats.Outputs)

	if len(stats.ByClass) > 0 {
		cmd.Println("\nBy class:")
		for _, class := range []domain.DocumentClass{
			domain.ClassSource, domain.ClassResponse, domain.ClassThread, domain.ClassProduct,
		} {
			if n := stats.ByClass[class]; n > 0 {
				cmd.Printf("  %-10s %d\n", class, n)
			}
		}
	}
	if len(stats.ByType) > 0 {
		cmd.Println("\nBy type:")
		types := make([]string, 0, len(stats.ByType))
		for t := range stats.ByType {
			types = append(types, t)
		}
		sort.Strings(types)
		for _, t := range types {
			cmd.Printf("  %-20s %d\n", t, stats.ByType[t])
		}
	}
	return nil
}

func runLibraryDelete(cmd *cobra.Command, args []string) error {
	if libraryService == nil {
		return errors.New("library service not configured")
	}

	if err := libraryService.Delete(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}
	cmd.Printf("Deleted %s\n", args[0])
	return nil
}

func runLibraryRename(cmd *cobra.Command, args []string) error {
	if libraryService == nil {
		return errors.New("library service not configured")
	}

	if err := libraryService.Rename(cmd.Context(), args[0], args[1]); err != nil {
		return fmt.Errorf("renaming document: %w", err)
	}
	cmd.Printf("Renamed %s to %q\n", args[0], args[1])
	return nil
}

func runLibraryConvert(cmd *cobra.Command, args []string) error {
	if libraryService == nil {
		return errors.New("library service not configured")
	}

	if err := libraryService.Convert(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("converting document: %w", err)
	}
	cmd.Printf("Converted %s to a source document\n", args[0])
	return nil
}
