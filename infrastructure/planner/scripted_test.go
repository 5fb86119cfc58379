package planner

import (
	"context"
	"errors"
	"testing"

	"github.com/felixgeelhaar/sgr-go/domain/agent"
)

func TestScriptedPlanner_Plan(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	p := NewScriptedPlanner(
		ScriptStep{ExpectStep: 1, Decision: lookup("a@b.c")},
		ScriptStep{ExpectStep: 2, Err: boom},
		ScriptStep{Decision: finish()},
	)

	d, err := p.Plan(context.Background(), PlanRequest{Step: 1})
	if err != nil {
		t.Fatalf("Plan() error = %v", err)
	}
	if d.IsTerminal() {
		t.Error("first decision should not be terminal")
	}

	if _, err := p.Plan(context.Background(), PlanRequest{Step: 2}); !errors.Is(err, boom) {
		t.Errorf("second Plan() error = %v, want boom", err)
	}

	d, err = p.Plan(context.Background(), PlanRequest{Step: 99})
	if err != nil {
		t.Fatalf("Plan() error = %v", err)
	}
	if !d.IsTerminal() {
		t.Error("third decision should be terminal")
	}
	if !p.IsComplete() {
		t.Error("IsComplete() = false, want true")
	}

	if _, err := p.Plan(context.Background(), PlanRequest{Step: 4}); !errors.Is(err, ErrScriptExhausted) {
		t.Errorf("exhausted Plan() error = %v, want ErrScriptExhausted", err)
	}
}

func TestScriptedPlanner_UnexpectedStep(t *testing.T) {
	t.Parallel()

	p := NewScriptedPlanner(ScriptStep{ExpectStep: 2, Decision: finish()})

	_, err := p.Plan(context.Background(), PlanRequest{Step: 1})
	var stepErr *UnexpectedStepError
	if !errors.As(err, &stepErr) {
		t.Fatalf("error = %v, want *UnexpectedStepError", err)
	}
	if stepErr.Expected != 2 || stepErr.Actual != 1 {
		t.Errorf("UnexpectedStepError = %+v", stepErr)
	}
	if got := stepErr.Error(); got != "unexpected step at script index 0: expected 2, got 1" {
		t.Errorf("Error() = %q", got)
	}
	if p.CurrentStep() != 0 {
		t.Errorf("CurrentStep() = %d, want 0", p.CurrentStep())
	}
}

func TestScriptedPlanner_Condition(t *testing.T) {
	t.Parallel()

	p := NewScriptedPlanner(ScriptStep{
		Decision:  finish(),
		Condition: func(req PlanRequest) bool { return len(req.Log) == 4 },
	})

	_, err := p.Plan(context.Background(), PlanRequest{Step: 1, Log: make([]agent.Entry, 2)})
	var condErr *ConditionFailedError
	if !errors.As(err, &condErr) {
		t.Fatalf("error = %v, want *ConditionFailedError", err)
	}
	if got := condErr.Error(); got != "condition failed at script index 0 for step 1" {
		t.Errorf("Error() = %q", got)
	}

	if _, err := p.Plan(context.Background(), PlanRequest{Step: 1, Log: make([]agent.Entry, 4)}); err != nil {
		t.Errorf("Plan() error = %v", err)
	}
}

func TestScriptedPlanner_OnUnexpectedAndReset(t *testing.T) {
	t.Parallel()

	p := NewScriptedPlanner(ScriptStep{Decision: lookup("a@b.c")}).
		OnUnexpected(func(PlanRequest) (agent.Decision, error) { return finish(), nil })

	_, _ = p.Plan(context.Background(), PlanRequest{Step: 1})
	d, err := p.Plan(context.Background(), PlanRequest{Step: 2})
	if err != nil || !d.IsTerminal() {
		t.Errorf("OnUnexpected handler not used: %+v, %v", d, err)
	}

	p.Reset()
	if p.CurrentStep() != 0 || p.IsComplete() {
		t.Error("Reset() should rewind the script")
	}
}
