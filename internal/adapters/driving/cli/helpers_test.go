package cli

import (
	"bytes"
	"context"
	"time"

	"github.com/custodia-labs/docanalyser-cli/internal/core/domain"
	"github.com/custodia-labs/docanalyser-cli/internal/core/ports/driven"
	"github.com/custodia-labs/docanalyser-cli/internal/core/ports/driving"
	"github.com/custodia-labs/docanalyser-cli/internal/doctor"
)

// executeCommand runs the root command with the given arguments and
// returns everything it printed.
func executeCommand(args ...string) (string, error) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	return buf.String(), err
}

// Canned fixtures shared by the command tests.

var testDocument = domain.Document{
	ID:         "doc-1",
	Type:       domain.TypeWeb,
	Class:      domain.ClassSource,
	Source:     "https://example.com/paper",
	Title:      "The Paper",
	Fetched:    time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	EntryCount: 2,
}

// mockLibraryService serves canned documents.
type mockLibraryService struct {
	documents []domain.Document
	document  *domain.Document
	content   string
	stats     *domain.LibraryStats
	err       error
}

func (m *mockLibraryService) List(_ context.Context) ([]domain.Document, error) {
	return m.documents, m.err
}

func (m *mockLibraryService) Get(_ context.Context, _ string) (*domain.Document, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.document, nil
}

func (m *mockLibraryService) Entries(_ context.Context, _ string) ([]domain.Entry, error) {
	return nil, m.err
}

func (m *mockLibraryService) Content(_ context.Context, _ string) (string, error) {
	return m.content, m.err
}

func (m *mockLibraryService) Search(_ context.Context, _ string) ([]domain.Document, error) {
	return m.documents, m.err
}

func (m *mockLibraryService) Rename(_ context.Context, _, _ string) error { return m.err }

func (m *mockLibraryService) Convert(_ context.Context, _ string) error { return m.err }

func (m *mockLibraryService) Delete(_ context.Context, _ string) error { return m.err }

func (m *mockLibraryService) IsSourceDocument(_ context.Context, _ string) (bool, error) {
	return true, m.err
}

func (m *mockLibraryService) Stats(_ context.Context) (*domain.LibraryStats, error) {
	return m.stats, m.err
}

// mockIngestService reports a fixed ingestion outcome.
type mockIngestService struct {
	report *driving.IngestReport
	err    error
}

func (m *mockIngestService) Ingest(_ context.Context, _ string) (*driving.IngestReport, error) {
	return m.report, m.err
}

func (m *mockIngestService) SupportedTypes() []string {
	return []string{"web", "file"}
}

// mockConversationService replays a fixed answer.
type mockConversationService struct {
	result   *driving.AskResult
	branches []domain.BranchInfo
	thread   []domain.ThreadMessage
	err      error
}

func (m *mockConversationService) Ask(
	_ context.Context,
	_, _ string,
	_ domain.BranchPlan,
	_ driving.AskOptions,
) (*driving.AskResult, error) {
	return m.result, m.err
}

func (m *mockConversationService) Branches(_ context.Context, _ string) ([]domain.BranchInfo, error) {
	return m.branches, m.err
}

func (m *mockConversationService) Thread(_ context.Context, _ string) ([]domain.ThreadMessage, error) {
	return m.thread, m.err
}

func (m *mockConversationService) CreateBranch(_ context.Context, _, _ string) (string, error) {
	return "branch-new", m.err
}

func (m *mockConversationService) PromoteThread(_ context.Context, _ string) (string, error) {
	return "thread-doc-1", m.err
}

func (m *mockConversationService) DeleteBranch(_ context.Context, _ string) error { return m.err }

// mockSearchService serves canned search results.
type mockSearchService struct {
	results []domain.SearchResult
	pending []domain.Document
	err     error
}

func (m *mockSearchService) Search(_ context.Context, _ string, _ int) ([]domain.SearchResult, error) {
	return m.results, m.err
}

func (m *mockSearchService) EmbedDocument(_ context.Context, _ string) error { return m.err }

func (m *mockSearchService) RemoveEmbedding(_ context.Context, _ string) error { return m.err }

func (m *mockSearchService) Pending(_ context.Context) ([]domain.Document, error) {
	return m.pending, m.err
}

func (m *mockSearchService) Stats(_ context.Context) (int, int, error) { return 0, 0, m.err }

// mockAnalysisService replays a fixed output.
type mockAnalysisService struct {
	output  *domain.ProcessedOutput
	outputs []domain.ProcessedOutput
	text    string
	err     error
}

func (m *mockAnalysisService) Analyse(
	_ context.Context,
	_, _, _ string,
	_ driving.AskOptions,
) (*domain.ProcessedOutput, error) {
	return m.output, m.err
}

func (m *mockAnalysisService) Outputs(_ context.Context, _ string) ([]domain.ProcessedOutput, error) {
	return m.outputs, m.err
}

func (m *mockAnalysisService) OutputText(_ context.Context, _ string) (string, error) {
	return m.text, m.err
}

func (m *mockAnalysisService) DeleteOutput(_ context.Context, _, _ string) error { return m.err }

// mockExportService returns fixed rendered text.
type mockExportService struct {
	rendered string
	err      error
}

func (m *mockExportService) ExportDocument(_ context.Context, _ string, _ driving.ExportFormat) (string, error) {
	return m.rendered, m.err
}

func (m *mockExportService) ExportThread(_ context.Context, _ string, _ driving.ExportFormat) (string, error) {
	return m.rendered, m.err
}

// mockSettingsService serves fixed settings.
type mockSettingsService struct {
	settings *domain.Settings
	err      error
}

func (m *mockSettingsService) Get() (*domain.Settings, error) { return m.settings, m.err }

func (m *mockSettingsService) Save(_ *domain.Settings) error { return m.err }

func (m *mockSettingsService) SetChatProvider(_ domain.AIProvider, _, _ string) error {
	return m.err
}

func (m *mockSettingsService) SetEmbeddingProvider(_ domain.AIProvider, _, _ string) error {
	return m.err
}

func (m *mockSettingsService) ValidateChatConfig() error { return m.err }

func (m *mockSettingsService) ValidateEmbeddingConfig() error { return m.err }

func (m *mockSettingsService) GetDefaults() domain.Settings { return domain.DefaultSettings() }

// mockCostLog serves canned cost records.
type mockCostLog struct {
	records []driven.CostRecord
	summary *driven.CostSummary
	err     error
}

func (m *mockCostLog) Append(_ context.Context, _ driven.CostRecord) error { return m.err }

func (m *mockCostLog) Records(_ context.Context) ([]driven.CostRecord, error) {
	return m.records, m.err
}

func (m *mockCostLog) Summary(_ context.Context) (*driven.CostSummary, error) {
	return m.summary, m.err
}

// setupTestServices installs mocks for every service and returns a
// cleanup restoring the previous wiring.
func setupTestServices() func() {
	prev := Services{
		Library:      libraryService,
		Ingest:       ingestService,
		Conversation: conversationService,
		Search:       searchService,
		Analysis:     analysisService,
		Export:       exportService,
		Settings:     settingsService,
		CostLog:      costLog,
		Doctor:       toolDoctor,
	}

	doc := testDocument
	settings := domain.DefaultSettings()
	SetServices(Services{
		Library: &mockLibraryService{
			documents: []domain.Document{doc},
			document:  &doc,
			content:   "[Page 1]\nPage one text.\n\nPlain paragraph.",
			stats: &domain.LibraryStats{
				Documents: 1,
				Entries:   2,
				ByClass:   map[domain.DocumentClass]int{domain.ClassSource: 1},
				ByType:    map[string]int{domain.TypeWeb: 1},
			},
		},
		Ingest: &mockIngestService{
			report: &driving.IngestReport{
				DocID:           "doc-1",
				Title:           "The Paper",
				Type:            domain.TypeWeb,
				EntryCount:      2,
				EmbeddingQueued: true,
			},
		},
		Conversation: &mockConversationService{
			result: &driving.AskResult{
				Answer:        "It is about alpha.",
				BranchIDs:     []string{"branch-1"},
				EstimatedCost: 0.0015,
			},
			branches: []domain.BranchInfo{
				{DocID: "branch-1", Title: "Re: The Paper (1)", ExchangeCount: 1},
			},
		},
		Search: &mockSearchService{
			results: []domain.SearchResult{
				{DocID: "doc-1", Title: "The Paper", Score: 0.93, Snippet: "Plain paragraph."},
			},
		},
		Analysis: &mockAnalysisService{
			output: &domain.ProcessedOutput{
				ID:         "out-1",
				PromptName: "summary",
				Provider:   "openai",
				Model:      "gpt-4o-mini",
			},
			text: "A short summary.",
		},
		Export:   &mockExportService{rendered: "# The Paper"},
		Settings: &mockSettingsService{settings: &settings},
		CostLog: &mockCostLog{
			summary: &driven.CostSummary{
				Total:      0.0042,
				Calls:      3,
				ByProvider: map[string]float64{"openai": 0.0042},
				ByModel:    map[string]float64{"gpt-4o-mini": 0.0042},
			},
		},
		Doctor: doctor.New(),
	})

	return func() { SetServices(prev) }
}
