package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docanalyser-cli/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/docanalyser-cli/internal/core/domain"
	"github.com/custodia-labs/docanalyser-cli/internal/core/ports/driven"
	"github.com/custodia-labs/docanalyser-cli/internal/core/ports/driving"
)

func newAnalysisFixture(t *testing.T) (*AnalysisService, *memory.LibraryStore, *stubChat, *memCostLog, string) {
	t.Helper()
	store := memory.NewLibraryStore()
	chat := &stubChat{Answer: "A three-point summary."}
	costs := &memCostLog{}
	svc := NewAnalysisService(store, chat, newStubPrompts(), costs)
	docID := seedSource(t, store)
	return svc, store, chat, costs, docID
}

// TestAnalyseWithNamedPrompt tests a template-driven analysis
func TestAnalyseWithNamedPrompt(t *testing.T) {
	ctx := context.Background()
	svc, store, chat, costs, docID := newAnalysisFixture(t)

	output, err := svc.Analyse(ctx, docID, driven.PromptKeyPoints, "", driving.AskOptions{})
	require.NoError(t, err)
	assert.NotEmpty(t, output.ID)
	assert.Equal(t, driven.PromptKeyPoints, output.PromptName)
	assert.Equal(t, "openai", output.Provider)

	// The template received the document text.
	require.Len(t, chat.Calls, 1)
	prompt := chat.Calls[0][0].Content
	assert.Contains(t, prompt, "Key points of:")
	assert.Contains(t, prompt, "First paragraph about alpha.")

	// The output is attached to the document and its text retrievable.
	doc, err := store.GetDocument(ctx, docID)
	require.NoError(t, err)
	require.Len(t, doc.ProcessedOutputs, 1)

	text, err := svc.OutputText(ctx, output.ID)
	require.NoError(t, err)
	assert.Equal(t, "A three-point summary.", text)

	records, err := costs.Records(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, driven.PromptKeyPoints, records[0].PromptName)
}

// TestAnalyseWithCustomPrompt tests a free-text prompt carrying the
// document below it
func TestAnalyseWithCustomPrompt(t *testing.T) {
	ctx := context.Background()
	svc, _, chat, _, docID := newAnalysisFixture(t)

	output, err := svc.Analyse(ctx, docID, "", "List every named person.", driving.AskOptions{})
	require.NoError(t, err)
	assert.Equal(t, "List every named person.", output.PromptText)
	assert.Empty(t, output.PromptName)

	prompt := chat.Calls[0][0].Content
	assert.Contains(t, prompt, "List every named person.")
	assert.Contains(t, prompt, "Second paragraph about beta.")
}

// TestAnalyseDefaultsToSummary tests the fallback when neither prompt is
// given
func TestAnalyseDefaultsToSummary(t *testing.T) {
	ctx := context.Background()
	svc, _, chat, _, docID := newAnalysisFixture(t)

	output, err := svc.Analyse(ctx, docID, "", "", driving.AskOptions{})
	require.NoError(t, err)
	assert.Equal(t, driven.PromptSummary, output.PromptName)
	assert.Contains(t, chat.Calls[0][0].Content, "Summarise:")
}

// TestAnalyseErrors tests failure paths
func TestAnalyseErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("no chat provider", func(t *testing.T) {
		store := memory.NewLibraryStore()
		svc := NewAnalysisService(store, nil, newStubPrompts(), nil)
		_, err := svc.Analyse(ctx, "any", "", "", driving.AskOptions{})
		assert.ErrorIs(t, err, domain.ErrChatUnavailable)
	})

	t.Run("unknown document", func(t *testing.T) {
		svc, _, _, _, _ := newAnalysisFixture(t)
		_, err := svc.Analyse(ctx, "missing", "", "", driving.AskOptions{})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("unknown prompt name", func(t *testing.T) {
		svc, _, _, _, docID := newAnalysisFixture(t)
		_, err := svc.Analyse(ctx, docID, "nonexistent", "", driving.AskOptions{})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("empty document", func(t *testing.T) {
		svc, store, _, _, _ := newAnalysisFixture(t)
		id, err := store.AddDocument(ctx, domain.Document{
			Type: domain.TypeWeb, Source: "https://example.com/empty", Title: "Empty",
		}, nil)
		require.NoError(t, err)
		_, err = svc.Analyse(ctx, id, "", "", driving.AskOptions{})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

// TestOutputsLifecycle tests listing and deleting saved outputs
func TestOutputsLifecycle(t *testing.T) {
	ctx := context.Background()
	svc, _, _, _, docID := newAnalysisFixture(t)

	first, err := svc.Analyse(ctx, docID, driven.PromptSummary, "", driving.AskOptions{})
	require.NoError(t, err)
	second, err := svc.Analyse(ctx, docID, driven.PromptKeyPoints, "", driving.AskOptions{})
	require.NoError(t, err)

	outputs, err := svc.Outputs(ctx, docID)
	require.NoError(t, err)
	assert.Len(t, outputs, 2)

	require.NoError(t, svc.DeleteOutput(ctx, docID, first.ID))
	outputs, err = svc.Outputs(ctx, docID)
	require.NoError(t, err)
	require.Len(t, outputs, 1)
	assert.Equal(t, second.ID, outputs[0].ID)

	_, err = svc.OutputText(ctx, first.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
