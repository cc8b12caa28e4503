// Command docanalyser is the DocAnalyser CLI. It assembles the driven
// adapters according to the saved settings and hands them to the command
// tree; a missing or broken provider degrades the relevant commands
// instead of aborting startup.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/custodia-labs/docanalyser-cli/internal/adapters/driven/ai"
	configfile "github.com/custodia-labs/docanalyser-cli/internal/adapters/driven/config/file"
	"github.com/custodia-labs/docanalyser-cli/internal/adapters/driven/costlog/jsonl"
	indexjsonfile "github.com/custodia-labs/docanalyser-cli/internal/adapters/driven/embeddingindex/jsonfile"
	"github.com/custodia-labs/docanalyser-cli/internal/adapters/driven/storage/jsonfile"
	"github.com/custodia-labs/docanalyser-cli/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/docanalyser-cli/internal/adapters/driving/cli"
	"github.com/custodia-labs/docanalyser-cli/internal/core/domain"
	"github.com/custodia-labs/docanalyser-cli/internal/core/ports/driven"
	"github.com/custodia-labs/docanalyser-cli/internal/core/services"
	"github.com/custodia-labs/docanalyser-cli/internal/doctor"
	"github.com/custodia-labs/docanalyser-cli/internal/fetchers"
	"github.com/custodia-labs/docanalyser-cli/internal/fetchers/audio"
	"github.com/custodia-labs/docanalyser-cli/internal/fetchers/docx"
	filefetcher "github.com/custodia-labs/docanalyser-cli/internal/fetchers/file"
	"github.com/custodia-labs/docanalyser-cli/internal/fetchers/ocr"
	"github.com/custodia-labs/docanalyser-cli/internal/fetchers/pdf"
	"github.com/custodia-labs/docanalyser-cli/internal/fetchers/podcast"
	"github.com/custodia-labs/docanalyser-cli/internal/fetchers/web"
	"github.com/custodia-labs/docanalyser-cli/internal/fetchers/youtube"
	"github.com/custodia-labs/docanalyser-cli/internal/logger"
)

// version is overridden at build time via -ldflags.
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configStore, err := configfile.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("opening config: %w", err)
	}

	settingsService := services.NewSettingsService(configStore, ai.NewConfigValidator())
	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("reading settings: %w", err)
	}

	dataDir := settings.DataDir
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".docanalyser", "data")
	}

	var store driven.LibraryStore
	switch settings.Backend {
	case domain.BackendSQLite:
		store, err = sqlite.NewStore(dataDir)
	default:
		store, err = jsonfile.NewStore(dataDir)
	}
	if err != nil {
		return fmt.Errorf("opening library: %w", err)
	}
	defer store.Close()

	index, err := indexjsonfile.NewIndex(dataDir)
	if err != nil {
		return fmt.Errorf("opening embedding index: %w", err)
	}

	promptStore, err := configfile.NewPromptStore("")
	if err != nil {
		return fmt.Errorf("opening prompt store: %w", err)
	}

	costLog, err := jsonl.NewCostLog(dataDir)
	if err != nil {
		return fmt.Errorf("opening cost log: %w", err)
	}

	// Provider construction failures degrade features rather than
	// blocking commands that never touch the provider.
	chatService, err := ai.CreateChatService(&settings.Chat)
	if err != nil {
		logger.Warn("chat provider unavailable: %v", err)
		chatService = nil
	}
	if chatService != nil {
		defer chatService.Close()
	}

	embeddingService, err := ai.CreateEmbeddingService(&settings.Embedding)
	if err != nil {
		logger.Warn("embedding provider unavailable: %v", err)
		embeddingService = nil
	}
	if embeddingService != nil {
		defer embeddingService.Close()
	}

	// Transcription falls back to the OpenAI API; the chat key serves
	// when the chat provider is OpenAI, the environment otherwise.
	transcribeKey := os.Getenv("OPENAI_API_KEY")
	if settings.Chat.Provider == domain.AIProviderOpenAI && settings.Chat.APIKey != "" {
		transcribeKey = settings.Chat.APIKey
	}

	// Order matters: URL fetchers claim their hosts before the generic
	// web fetcher, extension fetchers before the plain file fallback.
	registry := fetchers.NewRegistry()
	registry.Register(youtube.New(youtube.Config{APIKey: settings.YouTubeAPIKey}))
	registry.Register(podcast.New())
	registry.Register(web.New())
	registry.Register(pdf.New())
	registry.Register(docx.New())
	registry.Register(ocr.New(chatService))
	registry.Register(audio.New(audio.Config{APIKey: transcribeKey}))
	registry.Register(filefetcher.New())

	libraryService := services.NewLibraryService(store, index)
	searchService := services.NewSearchService(store, index, embeddingService)
	ingestService := services.NewIngestService(store, registry, searchService, settings.AutoEmbed)
	conversationService := services.NewConversationService(store, chatService, promptStore, costLog)
	analysisService := services.NewAnalysisService(store, chatService, promptStore, costLog)
	exportService := services.NewExportService(store)

	cli.SetServices(cli.Services{
		Library:      libraryService,
		Ingest:       ingestService,
		Conversation: conversationService,
		Search:       searchService,
		Analysis:     analysisService,
		Export:       exportService,
		Settings:     settingsService,
		CostLog:      costLog,
		Doctor:       doctor.New(),
	})
	cli.SetVersion(version)
	if settings.Backend == domain.BackendJSONFile {
		cli.SetTUIConfig(&cli.TUIConfig{
			LibraryPath: filepath.Join(dataDir, "library.json"),
		})
	}

	return cli.Execute()
}
