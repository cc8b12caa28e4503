package driven

import "github.com/custodia-labs/docanalyser-cli/internal/core/domain"

// AIConfigValidator checks provider credentials by making a live call.
// Used by settings flows to reject bad configuration before it is saved.
type AIConfigValidator interface {
	// ValidateChat validates a chat configuration by pinging the provider.
	ValidateChat(config *domain.ChatSettings) error

	// ValidateEmbedding validates an embedding configuration by pinging
	// the provider.
	ValidateEmbedding(config *domain.EmbeddingSettings) error
}
