package planner

import (
	"context"
	"fmt"
	"sync"

	"github.com/felixgeelhaar/sgr-go/domain/agent"
)

// ScriptStep defines an expected step and the outcome to return.
type ScriptStep struct {
	// ExpectStep asserts the request is for this step. Zero skips the check.
	ExpectStep int

	// Decision is the decision to return.
	Decision agent.Decision

	// Err, when set, is returned instead of the decision.
	Err error

	// Condition is an optional additional condition that must be true.
	Condition func(PlanRequest) bool
}

// ScriptedPlanner executes a predefined sequence for deterministic testing.
// It validates that the runner is at the expected step before answering.
type ScriptedPlanner struct {
	steps        []ScriptStep
	index        int
	onUnexpected func(PlanRequest) (agent.Decision, error)
	mu           sync.Mutex
}

// NewScriptedPlanner creates a scripted planner with the given steps.
func NewScriptedPlanner(steps ...ScriptStep) *ScriptedPlanner {
	return &ScriptedPlanner{
		steps: steps,
		index: 0,
		onUnexpected: func(_ PlanRequest) (agent.Decision, error) {
			return agent.Decision{}, ErrScriptExhausted
		},
	}
}

// OnUnexpected sets the handler used once the script is exhausted.
func (p *ScriptedPlanner) OnUnexpected(handler func(PlanRequest) (agent.Decision, error)) *ScriptedPlanner {
	p.onUnexpected = handler
	return p
}

// Plan returns the next scripted outcome if the request matches expectations.
func (p *ScriptedPlanner) Plan(_ context.Context, req PlanRequest) (agent.Decision, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.index >= len(p.steps) {
		return p.onUnexpected(req)
	}

	step := p.steps[p.index]

	if step.ExpectStep != 0 && step.ExpectStep != req.Step {
		return agent.Decision{}, &UnexpectedStepError{
			Expected:  step.ExpectStep,
			Actual:    req.Step,
			StepIndex: p.index,
		}
	}

	if step.Condition != nil && !step.Condition(req) {
		return agent.Decision{}, &ConditionFailedError{
			StepIndex: p.index,
			Step:      req.Step,
		}
	}

	p.index++
	if step.Err != nil {
		return agent.Decision{}, step.Err
	}
	return step.Decision, nil
}

// Reset resets the planner to the beginning.
func (p *ScriptedPlanner) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.index = 0
}

// CurrentStep returns the current script index.
func (p *ScriptedPlanner) CurrentStep() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.index
}

// IsComplete returns true if all steps have been consumed.
func (p *ScriptedPlanner) IsComplete() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.index >= len(p.steps)
}

// UnexpectedStepError indicates the planner was asked for an unexpected step.
type UnexpectedStepError struct {
	Expected  int
	Actual    int
	StepIndex int
}

func (e *UnexpectedStepError) Error() string {
	return fmt.Sprintf("unexpected step at script index %d: expected %d, got %d", e.StepIndex, e.Expected, e.Actual)
}

// ConditionFailedError indicates a script condition was not met.
type ConditionFailedError struct {
	StepIndex int
	Step      int
}

func (e *ConditionFailedError) Error() string {
	return fmt.Sprintf("condition failed at script index %d for step %d", e.StepIndex, e.Step)
}
