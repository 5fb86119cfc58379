package planner

import (
	"context"
	"fmt"
	"strings"
)

// Provider defines the interface for LLM providers.
type Provider interface {
	// Complete sends a chat completion request and returns the response.
	Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error)

	// Name returns the provider name for logging.
	Name() string
}

// CompletionRequest represents a chat completion request.
type CompletionRequest struct {
	Model          string          `json:"model"`
	Messages       []Message       `json:"messages"`
	Temperature    float64         `json:"temperature,omitempty"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	ResponseFormat *ResponseFormat `json:"response_format,omitempty"`
}

// ResponseFormat requests structured output matching a JSON Schema.
type ResponseFormat struct {
	Name   string         `json:"name"`
	Strict bool           `json:"strict"`
	Schema map[string]any `json:"schema"`
}

// Message represents a chat message.
type Message struct {
	Role       string     `json:"role"` // system, user, assistant, tool
	Content    string     `json:"content,omitempty"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
}

// ToolCall represents a tool invocation from the model.
type ToolCall struct {
	ID       string       `json:"id"`
	Type     string       `json:"type"` // "function"
	Function FunctionCall `json:"function"`
}

// FunctionCall contains the function name and arguments.
type FunctionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// CompletionResponse represents a chat completion response.
type CompletionResponse struct {
	ID      string    `json:"id"`
	Model   string    `json:"model"`
	Message Message   `json:"message"`
	Usage   Usage     `json:"usage"`
	Error   *APIError `json:"error,omitempty"`
}

// Usage contains token usage information.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// APIError represents an API error response.
type APIError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return e.Type + ": " + e.Message + " (" + e.Code + ")"
	}
	return e.Type + ": " + e.Message
}

// Provider names accepted by NewProvider.
const (
	ProviderOpenAI     = "openai"
	ProviderOpenRouter = "openrouter"
	ProviderOllama     = "ollama"
)

// Default models per provider.
const (
	DefaultOpenAIModel     = "gpt-4o"
	DefaultOpenRouterModel = "openai/gpt-4o"
	DefaultOllamaModel     = "llama3.1"
)

// ProviderConfig contains common provider configuration.
type ProviderConfig struct {
	Name    string // openai (default), openrouter or ollama
	APIKey  string
	BaseURL string
	Model   string
	Timeout int // seconds
}

// NewProvider creates the provider named in the configuration.
func NewProvider(config ProviderConfig) (Provider, error) {
	name := strings.ToLower(strings.TrimSpace(config.Name))
	if name == "" {
		name = ProviderOpenAI
	}

	switch name {
	case ProviderOpenAI:
		if config.APIKey == "" {
			return nil, fmt.Errorf("%w: %s", ErrMissingAPIKey, name)
		}
		return NewOpenAIProvider(OpenAIConfig{
			APIKey:  config.APIKey,
			BaseURL: config.BaseURL,
			Model:   orDefault(config.Model, DefaultOpenAIModel),
			Timeout: config.Timeout,
		}), nil
	case ProviderOpenRouter:
		if config.APIKey == "" {
			return nil, fmt.Errorf("%w: %s", ErrMissingAPIKey, name)
		}
		return NewOpenRouterProvider(OpenRouterConfig{
			APIKey:  config.APIKey,
			BaseURL: config.BaseURL,
			Model:   orDefault(config.Model, DefaultOpenRouterModel),
			Timeout: config.Timeout,
		}), nil
	case ProviderOllama:
		return NewOllamaProvider(OllamaConfig{
			BaseURL: config.BaseURL,
			Model:   orDefault(config.Model, DefaultOllamaModel),
			Timeout: config.Timeout,
		}), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedProvider, config.Name)
	}
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
