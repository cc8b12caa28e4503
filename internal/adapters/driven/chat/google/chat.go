// Package google provides a chat service adapter using the Google Gemini API.
package google

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/custodia-labs/docanalyser-cli/internal/core/domain"
	"github.com/custodia-labs/docanalyser-cli/internal/core/ports/driven"
	"github.com/custodia-labs/docanalyser-cli/internal/pricing"
)

// Ensure ChatService implements the interface.
var _ driven.ChatService = (*ChatService)(nil)

// Default configuration values.
const (
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	DefaultModel   = "gemini-2.0-flash"
	DefaultTimeout = 120 * time.Second
)

// roleModel is the Gemini spelling of the assistant role.
const roleModel = "model"

// Config holds configuration for the Gemini chat service.
type Config struct {
	// APIKey is the Google AI API key (required).
	APIKey string

	// BaseURL is the API base URL (default: the public Gemini endpoint).
	BaseURL string

	// Model is the chat model to use (default: gemini-2.0-flash).
	Model string

	// Timeout is the request timeout (default: 120s).
	Timeout time.Duration
}

// ChatService provides conversation operations using the Gemini API.
type ChatService struct {
	client  *http.Client
	baseURL string
	apiKey  string
	model   string
}

// generateRequest is the Gemini :generateContent request format.
type generateRequest struct {
	Contents          []content         `json:"contents"`
	SystemInstruction *content          `json:"systemInstruction,omitempty"`
	GenerationConfig  *generationConfig `json:"generationConfig,omitempty"`
}

// content is one conversation turn.
type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

// part is text or inline binary data.
type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inlineData,omitempty"`
}

// inlineData carries a base64-encoded image.
type inlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

// generationConfig tunes the generation.
type generationConfig struct {
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
	Temperature     float64 `json:"temperature,omitempty"`
}

// generateResponse is the Gemini :generateContent response format.
type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
	UsageMetadata struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
	} `json:"usageMetadata"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// NewChatService creates a new Gemini chat service.
func NewChatService(cfg Config) (*ChatService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("google: API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &ChatService{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
	}, nil
}

// Chat sends a multi-turn conversation and returns the reply. Assistant
// turns are mapped to Gemini's "model" role and system messages to the
// systemInstruction field.
func (s *ChatService) Chat(ctx context.Context, messages []domain.ThreadMessage, opts driven.ChatOptions) (*driven.ChatResult, error) {
	var system *content
	var contents []content

	for _, msg := range messages {
		switch msg.Role {
		case domain.RoleSystem:
			system = &content{Parts: []part{{Text: msg.Content}}}
		case domain.RoleAssistant:
			contents = append(contents, content{Role: roleModel, Parts: []part{{Text: msg.Content}}})
		default:
			contents = append(contents, content{Role: domain.RoleUser, Parts: []part{{Text: msg.Content}}})
		}
	}
	return s.generate(ctx, contents, system, opts)
}

// Vision sends an image with a prompt and returns the reply.
func (s *ChatService) Vision(ctx context.Context, image []byte, mediaType, prompt string, opts driven.ChatOptions) (*driven.ChatResult, error) {
	contents := []content{{
		Role: domain.RoleUser,
		Parts: []part{
			{InlineData: &inlineData{
				MimeType: mediaType,
				Data:     base64.StdEncoding.EncodeToString(image),
			}},
			{Text: prompt},
		},
	}}
	return s.generate(ctx, contents, nil, opts)
}

// generate is the internal implementation for both Chat and Vision.
func (s *ChatService) generate(ctx context.Context, contents []content, system *content, opts driven.ChatOptions) (*driven.ChatResult, error) {
	reqBody := generateRequest{
		Contents:          contents,
		SystemInstruction: system,
	}
	if opts.MaxTokens > 0 || opts.Temperature > 0 {
		reqBody.GenerationConfig = &generationConfig{
			MaxOutputTokens: opts.MaxTokens,
			Temperature:     opts.Temperature,
		}
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s",
		s.baseURL, s.model, url.QueryEscape(s.apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var genResp generateResponse
	if err := json.Unmarshal(body, &genResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if genResp.Error != nil {
		return nil, fmt.Errorf("google error: %s", genResp.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("google error (status %d): %s", resp.StatusCode, string(body))
	}
	if len(genResp.Candidates) == 0 {
		return nil, fmt.Errorf("google: no candidates returned")
	}

	var text strings.Builder
	for _, p := range genResp.Candidates[0].Content.Parts {
		text.WriteString(p.Text)
	}
	if text.Len() == 0 {
		return nil, fmt.Errorf("google: no text content returned")
	}

	return &driven.ChatResult{
		Text:         text.String(),
		InputTokens:  genResp.UsageMetadata.PromptTokenCount,
		OutputTokens: genResp.UsageMetadata.CandidatesTokenCount,
		EstimatedCost: pricing.Estimate(domain.AIProviderGoogle, s.model,
			genResp.UsageMetadata.PromptTokenCount, genResp.UsageMetadata.CandidatesTokenCount),
	}, nil
}

// Provider returns the provider identifier.
func (s *ChatService) Provider() domain.AIProvider {
	return domain.AIProviderGoogle
}

// ModelName returns the name of the chat model being used.
func (s *ChatService) ModelName() string {
	return s.model
}

// Ping validates the service is reachable by listing models.
func (s *ChatService) Ping(ctx context.Context) error {
	endpoint := fmt.Sprintf("%s/models?key=%s", s.baseURL, url.QueryEscape(s.apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return fmt.Errorf("google: failed to create ping request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("google: ping failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("google: API returned status %d (failed to read body: %w)", resp.StatusCode, err)
		}
		return fmt.Errorf("google: API returned status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}

// Close releases resources.
func (s *ChatService) Close() error {
	// HTTP client doesn't need explicit cleanup
	return nil
}
