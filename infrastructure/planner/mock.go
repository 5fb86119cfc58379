// Package planner provides planner implementations for the agent runtime.
package planner

import (
	"context"
	"sync"

	"github.com/felixgeelhaar/sgr-go/domain/agent"
)

// PlanRequest contains all information needed for planning.
type PlanRequest struct {
	RunID     string
	Step      int // 1-based index of the step being decided
	Log       []agent.Entry
	MaxTokens int
}

// Planner is the interface for decision engines.
type Planner interface {
	Plan(ctx context.Context, req PlanRequest) (agent.Decision, error)
}

// PlannerFunc adapts a function to the Planner interface.
type PlannerFunc func(ctx context.Context, req PlanRequest) (agent.Decision, error)

// Plan implements Planner.
func (f PlannerFunc) Plan(ctx context.Context, req PlanRequest) (agent.Decision, error) {
	return f(ctx, req)
}

// MockPlanner returns a predefined sequence of decisions for testing.
type MockPlanner struct {
	decisions []agent.Decision
	requests  []PlanRequest
	index     int
	mu        sync.Mutex
}

// NewMockPlanner creates a mock planner with the given decisions.
func NewMockPlanner(decisions ...agent.Decision) *MockPlanner {
	return &MockPlanner{
		decisions: decisions,
		index:     0,
	}
}

// Plan returns the next decision in the sequence.
func (p *MockPlanner) Plan(_ context.Context, req PlanRequest) (agent.Decision, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.requests = append(p.requests, req)
	if p.index >= len(p.decisions) {
		return agent.Decision{}, ErrScriptExhausted
	}

	decision := p.decisions[p.index]
	p.index++
	return decision, nil
}

// Reset resets the planner to the beginning.
func (p *MockPlanner) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.index = 0
	p.requests = nil
}

// Remaining returns the number of remaining decisions.
func (p *MockPlanner) Remaining() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.decisions) - p.index
}

// AddDecision appends a decision to the sequence.
func (p *MockPlanner) AddDecision(d agent.Decision) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.decisions = append(p.decisions, d)
}

// Requests returns a copy of every request received so far.
func (p *MockPlanner) Requests() []PlanRequest {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]PlanRequest, len(p.requests))
	copy(out, p.requests)
	return out
}
