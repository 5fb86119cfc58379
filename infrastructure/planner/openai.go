package planner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/felixgeelhaar/sgr-go/infrastructure/schema"
)

// OpenAIProvider implements the Provider interface for OpenAI.
type OpenAIProvider struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

// OpenAIConfig configures the OpenAI provider.
type OpenAIConfig struct {
	APIKey  string // Required: OpenAI API key
	BaseURL string // Default: https://api.openai.com
	Model   string // e.g., "gpt-4o", "gpt-4o-mini"
	Timeout int    // Timeout in seconds (default: 120)
}

// NewOpenAIProvider creates a new OpenAI provider.
func NewOpenAIProvider(config OpenAIConfig) *OpenAIProvider {
	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = "https://api.openai.com"
	}

	return &OpenAIProvider{
		apiKey:  config.APIKey,
		baseURL: baseURL,
		model:   config.Model,
		client:  newHTTPClient(config.Timeout),
	}
}

// Name returns the provider name.
func (p *OpenAIProvider) Name() string {
	return ProviderOpenAI
}

// Complete implements the Provider interface.
func (p *OpenAIProvider) Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error) {
	return postChatCompletion(ctx, p.client, chatEndpoint{
		name:   p.Name(),
		url:    p.baseURL + "/v1/chat/completions",
		apiKey: p.apiKey,
	}, newOpenAIChatRequest(req, p.model, false))
}

func newHTTPClient(timeout int) *http.Client {
	if timeout == 0 {
		timeout = 120
	}
	return &http.Client{
		Timeout: time.Duration(timeout) * time.Second,
	}
}

// openAIChatRequest represents the chat completions API request shared by
// OpenAI-compatible endpoints.
type openAIChatRequest struct {
	Model               string                `json:"model"`
	Messages            []openAIMessage       `json:"messages"`
	Temperature         float64               `json:"temperature,omitempty"`
	MaxCompletionTokens int                   `json:"max_completion_tokens,omitempty"`
	ResponseFormat      *openAIResponseFormat `json:"response_format,omitempty"`
}

type openAIMessage struct {
	Role       string     `json:"role"`
	Content    string     `json:"content,omitempty"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
}

type openAIResponseFormat struct {
	Type       string            `json:"type"`
	JSONSchema *openAIJSONSchema `json:"json_schema,omitempty"`
}

type openAIJSONSchema struct {
	Name   string         `json:"name"`
	Strict bool           `json:"strict"`
	Schema map[string]any `json:"schema"`
}

// openAIChatResponse represents the chat completions API response.
type openAIChatResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Index   int `json:"index"`
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
			Refusal string `json:"refusal"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    any    `json:"code"`
	} `json:"error,omitempty"`
}

// newOpenAIChatRequest converts a completion request to the wire format.
// forceStrict applies the strict schema transform even when the request
// does not ask for it.
func newOpenAIChatRequest(req CompletionRequest, defaultModel string, forceStrict bool) openAIChatRequest {
	messages := make([]openAIMessage, len(req.Messages))
	for i, msg := range req.Messages {
		messages[i] = openAIMessage{
			Role:       msg.Role,
			Content:    msg.Content,
			ToolCalls:  msg.ToolCalls,
			ToolCallID: msg.ToolCallID,
		}
	}

	// Use model from request or fallback to provider default
	model := req.Model
	if model == "" {
		model = defaultModel
	}

	out := openAIChatRequest{
		Model:               model,
		Messages:            messages,
		Temperature:         req.Temperature,
		MaxCompletionTokens: req.MaxTokens,
	}

	if rf := req.ResponseFormat; rf != nil {
		strict := rf.Strict || forceStrict
		s := rf.Schema
		if strict {
			s = schema.Strict(s)
		}
		out.ResponseFormat = &openAIResponseFormat{
			Type: "json_schema",
			JSONSchema: &openAIJSONSchema{
				Name:   rf.Name,
				Strict: strict,
				Schema: s,
			},
		}
	}
	return out
}

type chatEndpoint struct {
	name    string
	url     string
	apiKey  string
	headers map[string]string
}

func postChatCompletion(ctx context.Context, client *http.Client, ep chatEndpoint, chatReq openAIChatRequest) (CompletionResponse, error) {
	body, err := json.Marshal(chatReq)
	if err != nil {
		return CompletionResponse{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, ep.url, bytes.NewReader(body))
	if err != nil {
		return CompletionResponse{}, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+ep.apiKey)
	for k, v := range ep.headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := client.Do(httpReq)
	if err != nil {
		return CompletionResponse{}, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return CompletionResponse{}, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return CompletionResponse{}, fmt.Errorf("%s error (status %d): %s", ep.name, resp.StatusCode, string(respBody))
	}

	var chatResp openAIChatResponse
	if err := json.Unmarshal(respBody, &chatResp); err != nil {
		return CompletionResponse{}, fmt.Errorf("failed to parse response: %w", err)
	}

	if chatResp.Error != nil {
		code := ""
		if chatResp.Error.Code != nil {
			code = fmt.Sprint(chatResp.Error.Code)
		}
		return CompletionResponse{
			Error: &APIError{
				Type:    chatResp.Error.Type,
				Message: chatResp.Error.Message,
				Code:    code,
			},
		}, nil
	}

	if len(chatResp.Choices) == 0 {
		return CompletionResponse{}, fmt.Errorf("%w: no choices in response", ErrEmptyResponse)
	}

	choice := chatResp.Choices[0]
	if choice.Message.Refusal != "" {
		return CompletionResponse{
			Error: &APIError{Type: "refusal", Message: choice.Message.Refusal},
		}, nil
	}

	return CompletionResponse{
		ID:    chatResp.ID,
		Model: chatResp.Model,
		Message: Message{
			Role:    choice.Message.Role,
			Content: choice.Message.Content,
		},
		Usage: Usage{
			PromptTokens:     chatResp.Usage.PromptTokens,
			CompletionTokens: chatResp.Usage.CompletionTokens,
			TotalTokens:      chatResp.Usage.TotalTokens,
		},
	}, nil
}
