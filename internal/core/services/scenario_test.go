package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docanalyser-cli/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/docanalyser-cli/internal/core/domain"
	"github.com/custodia-labs/docanalyser-cli/internal/core/ports/driving"
)

// TestIngestAskAskDeleteScenario walks the main workflow end to end:
// ingest a source, branch a conversation off it, continue in the branch,
// then delete the source and watch everything cascade away.
func TestIngestAskAskDeleteScenario(t *testing.T) {
	ctx := context.Background()
	store := memory.NewLibraryStore()
	index := newMemIndex()
	chat := &stubChat{Answer: "First answer."}

	search := NewSearchService(store, index, &stubEmbedding{})
	ingest := NewIngestService(store, newIngestRegistry(), nil, false)
	conv := NewConversationService(store, chat, newStubPrompts(), &memCostLog{})
	library := NewLibraryService(store, index)

	// Ingest.
	report, err := ingest.Ingest(ctx, "https://example.com/essay")
	require.NoError(t, err)
	require.NoError(t, search.EmbedDocument(ctx, report.DocID))

	// First question opens a branch; the source stays clean.
	first, err := conv.Ask(ctx, report.DocID, "What is this about?", domain.BranchPlan{
		NewBranches: []string{""},
	}, driving.AskOptions{})
	require.NoError(t, err)
	branchID := first.ActiveBranchID
	require.NotEmpty(t, branchID)

	source, err := store.GetDocument(ctx, report.DocID)
	require.NoError(t, err)
	assert.Nil(t, source.Thread)

	// Second question continues the branch with history.
	chat.Answer = "Second answer."
	_, err = conv.Ask(ctx, branchID, "Tell me more.", domain.BranchPlan{
		ExistingBranches: []string{branchID},
	}, driving.AskOptions{})
	require.NoError(t, err)

	branches, err := conv.Branches(ctx, report.DocID)
	require.NoError(t, err)
	require.Len(t, branches, 1)
	assert.Equal(t, 2, branches[0].ExchangeCount)

	// Semantic search still finds the source.
	results, err := search.Search(ctx, "alpha", 5)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, report.DocID, results[0].DocID)

	// Deleting the source removes the branch and the embeddings.
	require.NoError(t, library.Delete(ctx, report.DocID))

	docs, err := library.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, docs)

	results, err = search.Search(ctx, "alpha", 5)
	require.NoError(t, err)
	assert.Empty(t, results)
}
