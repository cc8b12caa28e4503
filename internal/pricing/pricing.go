// Package pricing estimates the dollar cost of AI calls from a static
// per-model price table. Prices drift as providers reprice their models,
// so every figure here is an estimate, not an invoice.
package pricing

import (
	"strings"

	"github.com/pkoukk/tiktoken-go"

	"github.com/custodia-labs/docanalyser-cli/internal/core/domain"
)

// ModelPrice is the dollar price per one million tokens.
type ModelPrice struct {
	Input  float64
	Output float64
}

// perMillion scales token counts to the price table unit.
const perMillion = 1_000_000

// modelPrices maps model name fragments to prices. Lookup matches by
// substring so dated releases ("gpt-4o-2024-08-06") share their family's
// price. More specific fragments must sort before their prefixes.
var modelPrices = []struct {
	Fragment string
	Price    ModelPrice
}{
	{"gpt-4o-mini", ModelPrice{Input: 0.15, Output: 0.60}},
	{"gpt-4o", ModelPrice{Input: 2.50, Output: 10.00}},
	{"gpt-4.1-nano", ModelPrice{Input: 0.10, Output: 0.40}},
	{"gpt-4.1-mini", ModelPrice{Input: 0.40, Output: 1.60}},
	{"gpt-4.1", ModelPrice{Input: 2.00, Output: 8.00}},
	{"o4-mini", ModelPrice{Input: 1.10, Output: 4.40}},
	{"o3", ModelPrice{Input: 2.00, Output: 8.00}},

	{"claude-3-5-haiku", ModelPrice{Input: 0.80, Output: 4.00}},
	{"claude-haiku", ModelPrice{Input: 0.80, Output: 4.00}},
	{"claude-3-5-sonnet", ModelPrice{Input: 3.00, Output: 15.00}},
	{"claude-sonnet", ModelPrice{Input: 3.00, Output: 15.00}},
	{"claude-opus", ModelPrice{Input: 15.00, Output: 75.00}},

	{"gemini-2.5-pro", ModelPrice{Input: 1.25, Output: 10.00}},
	{"gemini-2.5-flash", ModelPrice{Input: 0.30, Output: 2.50}},
	{"gemini-2.0-flash", ModelPrice{Input: 0.10, Output: 0.40}},
	{"gemini-1.5-pro", ModelPrice{Input: 1.25, Output: 5.00}},
	{"gemini-1.5-flash", ModelPrice{Input: 0.075, Output: 0.30}},

	{"text-embedding-3-small", ModelPrice{Input: 0.02}},
	{"text-embedding-3-large", ModelPrice{Input: 0.13}},
	{"text-embedding-004", ModelPrice{Input: 0.01}},
}

// providerDefaults price unknown models by their provider's mid-range
// model, keeping estimates plausible for models released after this table.
var providerDefaults = map[domain.AIProvider]ModelPrice{
	domain.AIProviderOpenAI:    {Input: 2.50, Output: 10.00},
	domain.AIProviderAnthropic: {Input: 3.00, Output: 15.00},
	domain.AIProviderGoogle:    {Input: 0.30, Output: 2.50},
}

// Lookup returns the price for a model, matching by substring and falling
// back to the provider default. Local providers price at zero.
func Lookup(provider domain.AIProvider, model string) ModelPrice {
	needle := strings.ToLower(model)
	for _, entry := range modelPrices {
		if strings.Contains(needle, entry.Fragment) {
			return entry.Price
		}
	}
	return providerDefaults[provider]
}

// Estimate returns the dollar cost of one call.
func Estimate(provider domain.AIProvider, model string, inputTokens, outputTokens int) float64 {
	price := Lookup(provider, model)
	return float64(inputTokens)/perMillion*price.Input +
		float64(outputTokens)/perMillion*price.Output
}

// charsPerToken is the fallback ratio when no tokeniser is available.
const charsPerToken = 4

// EstimateTokens counts the tokens in text using the model's tokeniser,
// falling back to a character heuristic when the encoding is unknown or
// its vocabulary cannot be loaded.
func EstimateTokens(model, text string) int {
	if text == "" {
		return 0
	}

	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		enc, err = tiktoken.GetEncoding(tiktoken.MODEL_CL100K_BASE)
	}
	if err != nil || enc == nil {
		return (len(text) + charsPerToken - 1) / charsPerToken
	}
	return len(enc.Encode(text, nil, nil))
}
