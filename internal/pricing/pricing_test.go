package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/docanalyser-cli/internal/core/domain"
)

func TestLookup(t *testing.T) {
	tests := []struct {
		name     string
		provider domain.AIProvider
		model    string
		want     ModelPrice
	}{
		{
			name:     "exact model",
			provider: domain.AIProviderOpenAI,
			model:    "gpt-4o-mini",
			want:     ModelPrice{Input: 0.15, Output: 0.60},
		},
		{
			name:     "dated release shares family price",
			provider: domain.AIProviderOpenAI,
			model:    "gpt-4o-2024-08-06",
			want:     ModelPrice{Input: 2.50, Output: 10.00},
		},
		{
			name:     "mini variant wins over family prefix",
			provider: domain.AIProviderOpenAI,
			model:    "gpt-4o-mini-2024-07-18",
			want:     ModelPrice{Input: 0.15, Output: 0.60},
		},
		{
			name:     "case insensitive",
			provider: domain.AIProviderAnthropic,
			model:    "Claude-Opus-4",
			want:     ModelPrice{Input: 15.00, Output: 75.00},
		},
		{
			name:     "unknown model falls back to provider default",
			provider: domain.AIProviderAnthropic,
			model:    "claude-experimental-9",
			want:     ModelPrice{Input: 3.00, Output: 15.00},
		},
		{
			name:     "local provider prices at zero",
			provider: domain.AIProviderLocal,
			model:    "llama3.2",
			want:     ModelPrice{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Lookup(tt.provider, tt.model))
		})
	}
}

func TestEstimate(t *testing.T) {
	// gpt-4o-mini: $0.15 in, $0.60 out per million tokens.
	cost := Estimate(domain.AIProviderOpenAI, "gpt-4o-mini", 1_000_000, 1_000_000)
	assert.InDelta(t, 0.75, cost, 1e-9)

	cost = Estimate(domain.AIProviderOpenAI, "gpt-4o-mini", 1000, 500)
	assert.InDelta(t, 0.00015+0.0003, cost, 1e-9)

	assert.Zero(t, Estimate(domain.AIProviderLocal, "llama3.2", 1000, 1000))
}

func TestEstimateTokens(t *testing.T) {
	assert.Zero(t, EstimateTokens("gpt-4o", ""))

	short := EstimateTokens("gpt-4o", "hello world")
	long := EstimateTokens("gpt-4o", "hello world, this is a much longer sentence with many more words in it")
	assert.Positive(t, short)
	assert.Greater(t, long, short)
}
