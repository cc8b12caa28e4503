package services

import (
	"fmt"
	"os"

	"github.com/custodia-labs/docanalyser-cli/internal/core/domain"
	"github.com/custodia-labs/docanalyser-cli/internal/core/ports/driven"
	"github.com/custodia-labs/docanalyser-cli/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyDataDir      = "library.data_dir"
	keyBackend      = "library.backend"
	keyAutoEmbed    = "library.auto_embed"
	keyChatProvider = "chat.provider"
	keyChatModel    = "chat.model"
	keyChatBaseURL  = "chat.base_url"
	keyChatAPIKey   = "chat.api_key"
	keyEmbProvider  = "embedding.provider"
	keyEmbModel     = "embedding.model"
	keyEmbBaseURL   = "embedding.base_url"
	keyEmbAPIKey    = "embedding.api_key"
	keyYouTubeKey   = "youtube.api_key"
)

// Environment variables consulted when the config file carries no key.
//
//nolint:gosec // G101: Variable names, not credentials.
const (
	envOpenAIKey    = "OPENAI_API_KEY"
	envAnthropicKey = "ANTHROPIC_API_KEY"
	envGeminiKey    = "GEMINI_API_KEY"
	envYouTubeKey   = "YOUTUBE_API_KEY"
)

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
}

// NewSettingsService creates a new settings service.
// aiValidator is optional (can be nil); without it, validation passes.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
	}
}

// Get retrieves current application settings. API keys absent from the
// config file fall back to the provider's environment variable.
func (s *SettingsService) Get() (*domain.Settings, error) {
	defaults := domain.DefaultSettings()

	settings := &domain.Settings{
		DataDir: s.configStore.GetString(keyDataDir),
		Backend: s.getBackend(defaults.Backend),
		Chat: domain.ChatSettings{
			Provider: s.getProvider(keyChatProvider, defaults.Chat.Provider),
			Model:    s.getString(keyChatModel, defaults.Chat.Model),
			BaseURL:  s.configStore.GetString(keyChatBaseURL),
			APIKey:   s.configStore.GetString(keyChatAPIKey),
		},
		Embedding: domain.EmbeddingSettings{
			Provider: s.getProvider(keyEmbProvider, defaults.Embedding.Provider),
			Model:    s.getString(keyEmbModel, defaults.Embedding.Model),
			BaseURL:  s.configStore.GetString(keyEmbBaseURL),
			APIKey:   s.configStore.GetString(keyEmbAPIKey),
		},
		AutoEmbed:     s.getBool(keyAutoEmbed, defaults.AutoEmbed),
		YouTubeAPIKey: s.configStore.GetString(keyYouTubeKey),
	}

	if settings.Chat.APIKey == "" {
		settings.Chat.APIKey = envKeyFor(settings.Chat.Provider)
	}
	if settings.Embedding.APIKey == "" {
		settings.Embedding.APIKey = envKeyFor(settings.Embedding.Provider)
	}
	if settings.YouTubeAPIKey == "" {
		settings.YouTubeAPIKey = os.Getenv(envYouTubeKey)
	}

	if settings.Chat.Provider.IsLocal() && settings.Chat.BaseURL == "" {
		settings.Chat.BaseURL = domain.DefaultLocalBaseURL
	}
	if settings.Embedding.Provider.IsLocal() && settings.Embedding.BaseURL == "" {
		settings.Embedding.BaseURL = domain.DefaultLocalBaseURL
	}

	return settings, nil
}

// Save persists application settings.
func (s *SettingsService) Save(settings *domain.Settings) error {
	pairs := []struct {
		key   string
		value any
	}{
		{keyDataDir, settings.DataDir},
		{keyBackend, string(settings.Backend)},
		{keyAutoEmbed, settings.AutoEmbed},
		{keyChatProvider, settings.Chat.Provider.String()},
		{keyChatModel, settings.Chat.Model},
		{keyChatBaseURL, settings.Chat.BaseURL},
		{keyEmbProvider, settings.Embedding.Provider.String()},
		{keyEmbModel, settings.Embedding.Model},
		{keyEmbBaseURL, settings.Embedding.BaseURL},
	}
	for _, p := range pairs {
		if err := s.configStore.Set(p.key, p.value); err != nil {
			return fmt.Errorf("save %s: %w", p.key, err)
		}
	}

	// Keys sourced from the environment are not written back; an empty
	// value would clobber a previously saved key.
	if settings.Chat.APIKey != "" && settings.Chat.APIKey != envKeyFor(settings.Chat.Provider) {
		if err := s.configStore.Set(keyChatAPIKey, settings.Chat.APIKey); err != nil {
			return fmt.Errorf("save chat api_key: %w", err)
		}
	}
	if settings.Embedding.APIKey != "" && settings.Embedding.APIKey != envKeyFor(settings.Embedding.Provider) {
		if err := s.configStore.Set(keyEmbAPIKey, settings.Embedding.APIKey); err != nil {
			return fmt.Errorf("save embedding api_key: %w", err)
		}
	}
	if settings.YouTubeAPIKey != "" && settings.YouTubeAPIKey != os.Getenv(envYouTubeKey) {
		if err := s.configStore.Set(keyYouTubeKey, settings.YouTubeAPIKey); err != nil {
			return fmt.Errorf("save youtube api_key: %w", err)
		}
	}

	return nil
}

// SetChatProvider configures the chat provider.
func (s *SettingsService) SetChatProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("%w: invalid chat provider %q", domain.ErrInvalidInput, provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" && envKeyFor(provider) == "" {
		return fmt.Errorf("%w: API key required for %s", domain.ErrInvalidInput, provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.Chat.Provider = provider
	settings.Chat.Model = model
	if model == "" {
		settings.Chat.Model = domain.DefaultChatModels()[provider]
	}
	settings.Chat.APIKey = apiKey
	if provider.IsLocal() {
		if settings.Chat.BaseURL == "" {
			settings.Chat.BaseURL = domain.DefaultLocalBaseURL
		}
	} else {
		settings.Chat.BaseURL = ""
	}

	return s.Save(settings)
}

// SetEmbeddingProvider configures the embedding provider.
func (s *SettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("%w: invalid embedding provider %q", domain.ErrInvalidInput, provider)
	}
	supported := false
	for _, p := range domain.AllEmbeddingProviders() {
		if p == provider {
			supported = true
			break
		}
	}
	if !supported {
		return fmt.Errorf("%w: provider %s does not support embeddings", domain.ErrInvalidInput, provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" && envKeyFor(provider) == "" {
		return fmt.Errorf("%w: API key required for %s", domain.ErrInvalidInput, provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.Embedding.Provider = provider
	settings.Embedding.Model = model
	if model == "" {
		settings.Embedding.Model = domain.DefaultEmbeddingModels()[provider]
	}
	settings.Embedding.APIKey = apiKey
	if provider.IsLocal() {
		if settings.Embedding.BaseURL == "" {
			settings.Embedding.BaseURL = domain.DefaultLocalBaseURL
		}
	} else {
		settings.Embedding.BaseURL = ""
	}

	return s.Save(settings)
}

// ValidateChatConfig validates the current chat configuration by pinging
// the provider.
func (s *SettingsService) ValidateChatConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateChat(&settings.Chat)
}

// ValidateEmbeddingConfig validates the current embedding configuration by
// pinging the provider.
func (s *SettingsService) ValidateEmbeddingConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateEmbedding(&settings.Embedding)
}

// GetDefaults returns the built-in defaults.
func (s *SettingsService) GetDefaults() domain.Settings {
	return domain.DefaultSettings()
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	provider := domain.AIProvider(val)
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}

func (s *SettingsService) getBackend(defaultVal domain.LibraryBackend) domain.LibraryBackend {
	val := s.configStore.GetString(keyBackend)
	if val == "" {
		return defaultVal
	}
	backend := domain.LibraryBackend(val)
	if !backend.IsValid() {
		return defaultVal
	}
	return backend
}

// envKeyFor returns the environment API key for a cloud provider.
func envKeyFor(provider domain.AIProvider) string {
	switch provider {
	case domain.AIProviderOpenAI:
		return os.Getenv(envOpenAIKey)
	case domain.AIProviderAnthropic:
		return os.Getenv(envAnthropicKey)
	case domain.AIProviderGoogle:
		return os.Getenv(envGeminiKey)
	default:
		return ""
	}
}
