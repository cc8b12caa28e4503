// Package cli wires the cobra command tree to the core services.
// Commands hold no business logic; they parse arguments, call a driving
// port and print the result.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/docanalyser-cli/internal/core/ports/driven"
	"github.com/custodia-labs/docanalyser-cli/internal/core/ports/driving"
	"github.com/custodia-labs/docanalyser-cli/internal/doctor"
	"github.com/custodia-labs/docanalyser-cli/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// verbose enables diagnostic logging on stderr.
var verbose bool

// Service handles injected by the composition root. Commands check for
// nil and degrade with a hint instead of crashing.
var (
	libraryService      driving.LibraryService
	ingestService       driving.IngestService
	conversationService driving.ConversationService
	searchService       driving.SearchService
	analysisService     driving.AnalysisService
	exportService       driving.ExportService
	settingsService     driving.SettingsService
	costLog             driven.CostLog
	toolDoctor          *doctor.Doctor
)

// Services aggregates everything the command tree needs.
type Services struct {
	Library      driving.LibraryService
	Ingest       driving.IngestService
	Conversation driving.ConversationService
	Search       driving.SearchService
	Analysis     driving.AnalysisService
	Export       driving.ExportService
	Settings     driving.SettingsService
	CostLog      driven.CostLog
	Doctor       *doctor.Doctor
}

// SetServices injects the service implementations.
func SetServices(s Services) {
	libraryService = s.Library
	ingestService = s.Ingest
	conversationService = s.Conversation
	searchService = s.Search
	analysisService = s.Analysis
	exportService = s.Export
	settingsService = s.Settings
	costLog = s.CostLog
	toolDoctor = s.Doctor
}

// SetVersion sets the version string printed by the version command.
func SetVersion(v string) {
	version = v
}

var rootCmd = &cobra.Command{
	Use:   "docanalyser",
	Short: "Ingest documents and talk to them with AI",
	Long: `DocAnalyser maintains a local library of ingested documents
(files, PDFs, web pages, YouTube transcripts, podcasts, images, audio)
and lets you hold branching AI conversations about them.

Source documents stay read-only; every conversation lives in a response
branch attached to its source.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable diagnostic logging on stderr")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
