package mcp

import (
	"context"

	"github.com/custodia-labs/docanalyser-cli/internal/core/domain"
	"github.com/custodia-labs/docanalyser-cli/internal/core/ports/driving"
)

// mockLibraryService is a mock implementation of driving.LibraryService.
type mockLibraryService struct {
	documents []domain.Document
	document  *domain.Document
	content   string
	err       error
}

func (m *mockLibraryService) List(_ context.Context) ([]domain.Document, error) {
	return m.documents, m.err
}

func (m *mockLibraryService) Get(_ context.Context, _ string) (*domain.Document, error) {
	return m.document, m.err
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

func (m *mockLibraryService) Rename(_ context.Context, _, _ string) error {
	return m.err
}

func (m *mockLibraryService) Convert(_ context.Context, _ string) error {
	return m.err
}

func (m *mockLibraryService) Delete(_ context.Context, _ string) error {
	return m.err
}

func (m *mockLibraryService) IsSourceDocument(_ context.Context, _ string) (bool, error) {
	return false, m.err
}

func (m *mockLibraryService) Stats(_ context.Context) (*domain.LibraryStats, error) {
	return nil, m.err
}

// mockSearchService is a mock implementation of driving.SearchService.
type mockSearchService struct {
	results []domain.SearchResult
	err     error
}

func (m *mockSearchService) Search(_ context.Context, _ string, _ int) ([]domain.SearchResult, error) {
	return m.results, m.err
}

func (m *mockSearchService) EmbedDocument(_ context.Context, _ string) error {
	return m.err
}

func (m *mockSearchService) RemoveEmbedding(_ context.Context, _ string) error {
	return m.err
}

func (m *mockSearchService) Pending(_ context.Context) ([]domain.Document, error) {
	return nil, m.err
}

func (m *mockSearchService) Stats(_ context.Context) (int, int, error) {
	return 0, 0, m.err
}

// mockConversationService is a mock implementation of driving.ConversationService.
type mockConversationService struct {
	branches []domain.BranchInfo
	err      error
}

func (m *mockConversationService) Ask(
	_ context.Context,
	_, _ string,
	_ domain.BranchPlan,
	_ driving.AskOptions,
) (*driving.AskResult, error) {
	return nil, m.err
}

func (m *mockConversationService) Branches(_ context.Context, _ string) ([]domain.BranchInfo, error) {
	return m.branches, m.err
}

func (m *mockConversationService) Thread(_ context.Context, _ string) ([]domain.ThreadMessage, error) {
	return nil, m.err
}

func (m *mockConversationService) CreateBranch(_ context.Context, _, _ string) (string, error) {
	return "", m.err
}

func (m *mockConversationService) PromoteThread(_ context.Context, _ string) (string, error) {
	return "", m.err
}

func (m *mockConversationService) DeleteBranch(_ context.Context, _ string) error {
	return m.err
}
