package planner

import (
	"context"
	"net/http"
	"strings"
)

// OpenRouterProvider implements the Provider interface for OpenRouter.
// OpenRouter only honours structured output in strict mode, so the
// response schema is always passed through the strict transform.
type OpenRouterProvider struct {
	apiKey  string
	baseURL string
	model   string
	referer string
	title   string
	client  *http.Client
}

// OpenRouterConfig configures the OpenRouter provider.
type OpenRouterConfig struct {
	APIKey  string // Required: OpenRouter API key
	BaseURL string // Default: https://openrouter.ai/api/v1
	Model   string // e.g., "openai/gpt-4o"
	Referer string // Optional HTTP-Referer attribution header
	Title   string // Optional X-Title attribution header
	Timeout int    // Timeout in seconds (default: 120)
}

// NewOpenRouterProvider creates a new OpenRouter provider.
func NewOpenRouterProvider(config OpenRouterConfig) *OpenRouterProvider {
	baseURL := strings.TrimSuffix(config.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://openrouter.ai/api/v1"
	}

	return &OpenRouterProvider{
		apiKey:  config.APIKey,
		baseURL: baseURL,
		model:   config.Model,
		referer: config.Referer,
		title:   config.Title,
		client:  newHTTPClient(config.Timeout),
	}
}

// Name returns the provider name.
func (p *OpenRouterProvider) Name() string {
	return ProviderOpenRouter
}

// Complete implements the Provider interface.
func (p *OpenRouterProvider) Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error) {
	headers := make(map[string]string)
	if p.referer != "" {
		headers["HTTP-Referer"] = p.referer
	}
	if p.title != "" {
		headers["X-Title"] = p.title
	}

	return postChatCompletion(ctx, p.client, chatEndpoint{
		name:    p.Name(),
		url:     p.baseURL + "/chat/completions",
		apiKey:  p.apiKey,
		headers: headers,
	}, newOpenAIChatRequest(req, p.model, true))
}
