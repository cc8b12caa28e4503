package domain

const unknownDescription = "Unknown"

// AIProvider identifies an AI service provider for chat, vision or
// embeddings.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOpenAI is the OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is the Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"

	// AIProviderGoogle is the Google Gemini cloud API.
	AIProviderGoogle AIProvider = "google"

	// AIProviderLocal is a local inference server (Ollama or LM Studio)
	// exposing an OpenAI-compatible endpoint.
	AIProviderLocal AIProvider = "local"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOpenAI, AIProviderAnthropic, AIProviderGoogle, AIProviderLocal:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p != AIProviderLocal
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderLocal
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	case AIProviderGoogle:
		return "Google Gemini (cloud)"
	case AIProviderLocal:
		return "Local server (Ollama / LM Studio)"
	default:
		return unknownDescription
	}
}

// ChatSettings holds chat provider configuration.
type ChatSettings struct {
	// Provider is the chat service provider.
	Provider AIProvider

	// Model is the chat model name.
	Model string

	// BaseURL is the API endpoint (for local servers).
	BaseURL string

	// APIKey is the API key (for cloud providers).
	APIKey string
}

// IsConfigured returns true if the chat provider is set up.
func (c ChatSettings) IsConfigured() bool {
	if !c.Provider.IsValid() {
		return false
	}
	if c.Provider.RequiresAPIKey() && c.APIKey == "" {
		return false
	}
	return true
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint (for local servers).
	BaseURL string

	// APIKey is the API key (for cloud providers).
	APIKey string
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// LibraryBackend selects the library storage implementation.
type LibraryBackend string

// Available library backends.
const (
	// BackendJSONFile is the flat-file library (library.json plus sibling
	// entries and output files). The default.
	BackendJSONFile LibraryBackend = "jsonfile"

	// BackendSQLite stores the library in an embedded SQLite database with
	// indexed branch lookup.
	BackendSQLite LibraryBackend = "sqlite"
)

// IsValid returns true if the backend is recognised.
func (b LibraryBackend) IsValid() bool {
	return b == BackendJSONFile || b == BackendSQLite
}

// DefaultChatModels maps each provider to its default chat model.
func DefaultChatModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOpenAI:    "gpt-4o-mini",
		AIProviderAnthropic: "claude-sonnet-4-20250514",
		AIProviderGoogle:    "gemini-2.0-flash",
		AIProviderLocal:     "llama3.2",
	}
}

// DefaultEmbeddingModels maps each provider to its default embedding model.
// Anthropic offers no embedding API.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOpenAI: "text-embedding-3-small",
		AIProviderGoogle: "text-embedding-004",
		AIProviderLocal:  "nomic-embed-text",
	}
}

// AllChatProviders lists the providers that support chat.
func AllChatProviders() []AIProvider {
	return []AIProvider{AIProviderOpenAI, AIProviderAnthropic, AIProviderGoogle, AIProviderLocal}
}

// AllEmbeddingProviders lists the providers that support embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{AIProviderOpenAI, AIProviderGoogle, AIProviderLocal}
}

// DefaultLocalBaseURL is the Ollama endpoint local providers default to.
const DefaultLocalBaseURL = "http://localhost:11434"

// Settings is the application configuration assembled from the config store
// and environment.
type Settings struct {
	// DataDir is the library data directory (default ~/.docanalyser/data).
	DataDir string

	// Backend selects the library storage implementation.
	Backend LibraryBackend

	// Chat is the chat provider configuration.
	Chat ChatSettings

	// Embedding is the embedding provider configuration.
	Embedding EmbeddingSettings

	// AutoEmbed generates embeddings in the background after ingestion.
	AutoEmbed bool

	// YouTubeAPIKey enables video metadata lookup via the YouTube Data API.
	YouTubeAPIKey string
}

// DefaultSettings returns the built-in configuration defaults.
func DefaultSettings() Settings {
	return Settings{
		Backend: BackendJSONFile,
		Chat: ChatSettings{
			Provider: AIProviderLocal,
			Model:    DefaultChatModels()[AIProviderLocal],
			BaseURL:  DefaultLocalBaseURL,
		},
		Embedding: EmbeddingSettings{
			Provider: AIProviderLocal,
			Model:    DefaultEmbeddingModels()[AIProviderLocal],
			BaseURL:  DefaultLocalBaseURL,
		},
		AutoEmbed: true,
	}
}
