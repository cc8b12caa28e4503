// Package local provides a chat service adapter for local inference
// servers (Ollama, LM Studio) exposing an OpenAI-compatible endpoint.
package local

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/custodia-labs/docanalyser-cli/internal/core/domain"
	"github.com/custodia-labs/docanalyser-cli/internal/core/ports/driven"
)

// Ensure ChatService implements the interface.
var _ driven.ChatService = (*ChatService)(nil)

// Default configuration values.
const (
	DefaultBaseURL = "http://localhost:11434/v1"
	DefaultModel   = "llama3.2"
	DefaultTimeout = 300 * time.Second
)

// Config holds configuration for the local chat service.
type Config struct {
	// BaseURL is the OpenAI-compatible endpoint
	// (default: http://localhost:11434/v1, Ollama's compatibility path).
	BaseURL string

	// Model is the chat model to use (default: llama3.2).
	Model string

	// Timeout is the request timeout (default: 300s; local inference on
	// CPU can be slow).
	Timeout time.Duration
}

// ChatService provides conversation operations against a local server.
type ChatService struct {
	client  *http.Client
	baseURL string
	model   string
}

// chatRequest is the OpenAI-compatible /chat/completions request format.
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature,omitempty"`
}

// chatMessage is the chat message format.
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatResponse is the OpenAI-compatible /chat/completions response format.
type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// NewChatService creates a new local chat service. No API key is needed.
func NewChatService(cfg Config) *ChatService {
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
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		model:   cfg.Model,
	}
}

// Chat sends a multi-turn conversation and returns the reply.
func (s *ChatService) Chat(ctx context.Context, messages []domain.ThreadMessage, opts driven.ChatOptions) (*driven.ChatResult, error) {
	apiMessages := make([]chatMessage, len(messages))
	for i, msg := range messages {
		apiMessages[i] = chatMessage{
			Role:    msg.Role,
			Content: msg.Content,
		}
	}

	reqBody := chatRequest{
		Model:    s.model,
		Messages: apiMessages,
	}
	if opts.MaxTokens > 0 {
		reqBody.MaxTokens = opts.MaxTokens
	}
	if opts.Temperature > 0 {
		reqBody.Temperature = opts.Temperature
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		s.baseURL+"/chat/completions",
		bytes.NewReader(jsonBody),
	)
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

	var localResp chatResponse
	if err := json.Unmarshal(body, &localResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if localResp.Error != nil {
		return nil, fmt.Errorf("local server error: %s", localResp.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("local server error (status %d): %s", resp.StatusCode, string(body))
	}
	if len(localResp.Choices) == 0 {
		return nil, fmt.Errorf("local server: no response choices returned")
	}

	// Local inference is free; tokens are reported when the server
	// provides them, cost stays zero.
	return &driven.ChatResult{
		Text:         localResp.Choices[0].Message.Content,
		InputTokens:  localResp.Usage.PromptTokens,
		OutputTokens: localResp.Usage.CompletionTokens,
	}, nil
}

// Vision is not supported by the local adapter.
func (s *ChatService) Vision(_ context.Context, _ []byte, _, _ string, _ driven.ChatOptions) (*driven.ChatResult, error) {
	return nil, fmt.Errorf("local server vision: %w", domain.ErrNotImplemented)
}

// Provider returns the provider identifier.
func (s *ChatService) Provider() domain.AIProvider {
	return domain.AIProviderLocal
}

// ModelName returns the name of the chat model being used.
func (s *ChatService) ModelName() string {
	return s.model
}

// Ping validates the server is reachable by checking the /models endpoint.
func (s *ChatService) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/models", http.NoBody)
	if err != nil {
		return fmt.Errorf("local server: failed to create ping request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("local server: ping failed (is it running?): %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("local server: returned status %d", resp.StatusCode)
	}
	return nil
}

// Close releases resources.
func (s *ChatService) Close() error {
	// HTTP client doesn't need explicit cleanup
	return nil
}
