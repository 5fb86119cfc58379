package planner

import (
	"context"
	"fmt"
	"strings"

	"github.com/felixgeelhaar/sgr-go/domain/agent"
	"github.com/felixgeelhaar/sgr-go/infrastructure/logging"
	"github.com/felixgeelhaar/sgr-go/infrastructure/schema"
)

// DefaultMaxTokens bounds the completion size of a single decision.
const DefaultMaxTokens = 1000

// LLMPlanner uses an LLM provider to make planning decisions. The NextStep
// schema is built once and sent with every request.
type LLMPlanner struct {
	provider    Provider
	model       string
	temperature float64
	maxTokens   int
	format      *ResponseFormat
}

// LLMPlannerConfig configures the LLM planner.
type LLMPlannerConfig struct {
	Provider    Provider
	Model       string
	Temperature float64
	MaxTokens   int
	Strict      bool
}

// NewLLMPlanner creates a new LLM-based planner.
func NewLLMPlanner(config LLMPlannerConfig) (*LLMPlanner, error) {
	if config.Provider == nil {
		return nil, ErrNoProvider
	}

	nextStep, err := schema.NextStepMap(config.Strict)
	if err != nil {
		return nil, fmt.Errorf("build decision schema: %w", err)
	}

	maxTokens := config.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}

	return &LLMPlanner{
		provider:    config.Provider,
		model:       config.Model,
		temperature: config.Temperature,
		maxTokens:   maxTokens,
		format: &ResponseFormat{
			Name:   schema.NextStepName,
			Strict: config.Strict,
			Schema: nextStep,
		},
	}, nil
}

// Plan implements the Planner interface.
func (p *LLMPlanner) Plan(ctx context.Context, req PlanRequest) (agent.Decision, error) {
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = p.maxTokens
	}

	completionReq := CompletionRequest{
		Model:          p.model,
		Messages:       Messages(req.Log),
		Temperature:    p.temperature,
		MaxTokens:      maxTokens,
		ResponseFormat: p.format,
	}

	logging.Debug().
		Add(logging.RunID(req.RunID)).
		Add(logging.Step(req.Step)).
		Add(logging.Provider(p.provider.Name())).
		Msg("requesting LLM decision")

	resp, err := p.provider.Complete(ctx, completionReq)
	if err != nil {
		return agent.Decision{}, fmt.Errorf("LLM completion failed: %w", err)
	}

	if resp.Error != nil {
		return agent.Decision{}, resp.Error
	}

	decision, err := parseResponse(resp.Message.Content)
	if err != nil {
		return agent.Decision{}, fmt.Errorf("failed to parse LLM response: %w", err)
	}

	logging.Debug().
		Add(logging.RunID(req.RunID)).
		Add(logging.Step(req.Step)).
		Add(logging.ActionKind(decision.Action.Kind())).
		Add(logging.Int("prompt_tokens", resp.Usage.PromptTokens)).
		Add(logging.Int("completion_tokens", resp.Usage.CompletionTokens)).
		Msg("LLM decision received")

	return decision, nil
}

// Messages converts the conversation log into provider chat messages. Each
// action becomes an assistant tool call whose id ties it to its result.
func Messages(log []agent.Entry) []Message {
	messages := make([]Message, 0, len(log))
	for _, e := range log {
		switch e.Role {
		case agent.RoleSystem:
			messages = append(messages, Message{Role: "system", Content: e.Content})
		case agent.RoleUser:
			messages = append(messages, Message{Role: "user", Content: e.Content})
		case agent.RoleAction:
			messages = append(messages, Message{
				Role: "assistant",
				ToolCalls: []ToolCall{{
					ID:   e.StepID,
					Type: "function",
					Function: FunctionCall{
						Name:      e.Action.String(),
						Arguments: e.Content,
					},
				}},
			})
		case agent.RoleResult:
			messages = append(messages, Message{
				Role:       "tool",
				Content:    e.Content,
				ToolCallID: e.StepID,
			})
		}
	}
	return messages
}

// parseResponse decodes model output into a Decision. Every failure wraps
// agent.ErrDecode so callers can tell malformed output from transport errors.
func parseResponse(content string) (agent.Decision, error) {
	// Clean up the response - remove markdown code blocks if present
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```json") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimSuffix(content, "```")
		content = strings.TrimSpace(content)
	} else if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```")
		content = strings.TrimSuffix(content, "```")
		content = strings.TrimSpace(content)
	}

	if content == "" {
		return agent.Decision{}, fmt.Errorf("%w: %w", agent.ErrDecode, ErrEmptyResponse)
	}

	decision, err := agent.DecodeDecision([]byte(content))
	if err != nil {
		return agent.Decision{}, fmt.Errorf("%w (content: %s)", err, truncate(content, 200))
	}
	return decision, nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
