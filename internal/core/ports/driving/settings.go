package driving

import "github.com/custodia-labs/docanalyser-cli/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings, with environment
	// variables filling in missing API keys.
	Get() (*domain.Settings, error)

	// Save persists application settings.
	Save(settings *domain.Settings) error

	// SetChatProvider configures the chat provider. An empty model picks
	// the provider default.
	SetChatProvider(provider domain.AIProvider, model, apiKey string) error

	// SetEmbeddingProvider configures the embedding provider. An empty
	// model picks the provider default.
	SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error

	// ValidateChatConfig validates the current chat configuration by
	// pinging the provider.
	ValidateChatConfig() error

	// ValidateEmbeddingConfig validates the current embedding configuration
	// by pinging the provider.
	ValidateEmbeddingConfig() error

	// GetDefaults returns the built-in defaults.
	GetDefaults() domain.Settings
}
