package driven

import (
	"context"

	"github.com/custodia-labs/docanalyser-cli/internal/core/domain"
)

// ChatService conducts conversations with one AI provider.
// This is an optional service - when nil, conversation and analysis
// features are disabled.
//
// Implementations may include:
//   - OpenAI (GPT family)
//   - Anthropic (Claude)
//   - Google (Gemini)
//   - Local inference servers (Ollama, LM Studio)
//
// Calls are made once and errors returned as-is; there is no retry or
// backoff policy. Callers decide how to surface failures.
type ChatService interface {
	// Chat sends a multi-turn conversation and returns the reply.
	Chat(ctx context.Context, messages []domain.ThreadMessage, opts ChatOptions) (*ChatResult, error)

	// Vision sends an image with a prompt and returns the reply.
	// Providers without vision support return domain.ErrNotImplemented.
	Vision(ctx context.Context, image []byte, mediaType, prompt string, opts ChatOptions) (*ChatResult, error)

	// Provider returns the provider identifier.
	Provider() domain.AIProvider

	// ModelName returns the name of the chat model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight
	// test request. Used at startup to verify connectivity.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// ChatOptions configures a chat call.
type ChatOptions struct {
	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic, 1.0 = creative).
	Temperature float64
}

// ChatResult carries the reply plus usage accounting.
type ChatResult struct {
	// Text is the assistant reply.
	Text string

	// InputTokens and OutputTokens are the provider-reported usage.
	// Zero when the provider does not report usage (local servers).
	InputTokens  int
	OutputTokens int

	// EstimatedCost is the call cost in dollars derived from the static
	// pricing table. Zero for local providers.
	EstimatedCost float64
}
