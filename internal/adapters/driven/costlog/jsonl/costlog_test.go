package jsonl

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docanalyser-cli/internal/core/ports/driven"
)

func setupTestLog(t *testing.T) *CostLog {
	t.Helper()

	log, err := NewCostLog(t.TempDir())
	require.NoError(t, err)
	return log
}

func TestAppendAndRecords(t *testing.T) {
	log := setupTestLog(t)
	ctx := context.Background()

	require.NoError(t, log.Append(ctx, driven.CostRecord{
		Provider:     "openai",
		Model:        "gpt-4o-mini",
		InputTokens:  1000,
		OutputTokens: 200,
		Cost:         0.00027,
		PromptName:   "summary",
	}))
	require.NoError(t, log.Append(ctx, driven.CostRecord{
		Provider: "anthropic",
		Model:    "claude-3-5-sonnet-latest",
		Cost:     0.012,
	}))

	records, err := log.Records(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "openai", records[0].Provider)
	assert.False(t, records[0].Timestamp.IsZero())
	assert.Equal(t, "anthropic", records[1].Provider)
}

func TestRecords_NoFile(t *testing.T) {
	log := setupTestLog(t)

	records, err := log.Records(context.Background())
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestRecords_SkipsMalformedLines(t *testing.T) {
	log := setupTestLog(t)
	ctx := context.Background()

	require.NoError(t, log.Append(ctx, driven.CostRecord{Provider: "openai", Cost: 0.01}))

	f, err := os.OpenFile(log.Path(), os.O_APPEND|os.O_WRONLY, 0600)
	require.NoError(t, err)
	_, err = f.WriteString("{broken json\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	require.NoError(t, log.Append(ctx, driven.CostRecord{Provider: "google", Cost: 0.02}))

	records, err := log.Records(ctx)
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestSummary(t *testing.T) {
	log := setupTestLog(t)
	ctx := context.Background()

	require.NoError(t, log.Append(ctx, driven.CostRecord{Provider: "openai", Model: "gpt-4o", Cost: 0.10}))
	require.NoError(t, log.Append(ctx, driven.CostRecord{Provider: "openai", Model: "gpt-4o-mini", Cost: 0.01}))
	require.NoError(t, log.Append(ctx, driven.CostRecord{Provider: "anthropic", Model: "claude-3-5-sonnet-latest", Cost: 0.05}))

	summary, err := log.Summary(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 0.16, summary.Total, 1e-9)
	assert.Equal(t, 3, summary.Calls)
	assert.InDelta(t, 0.11, summary.ByProvider["openai"], 1e-9)
	assert.InDelta(t, 0.05, summary.ByProvider["anthropic"], 1e-9)
	assert.InDelta(t, 0.10, summary.ByModel["gpt-4o"], 1e-9)
}
