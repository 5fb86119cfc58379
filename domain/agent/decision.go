package agent

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/felixgeelhaar/sgr-go/domain/action"
)

// Plan length bounds for a decision.
const (
	MinPlanSteps = 1
	MaxPlanSteps = 5
)

// Decision is the oracle's output for one step. Only the first plan entry
// has operational meaning; the rest is advisory.
type Decision struct {
	CurrentTask   string
	Plan          []string
	TaskCompleted bool
	Action        action.Action
}

// NextStep returns the first plan entry.
func (d Decision) NextStep() string {
	if len(d.Plan) == 0 {
		return ""
	}
	return d.Plan[0]
}

// IsTerminal returns true if the decision ends the run.
func (d Decision) IsTerminal() bool {
	return d.Action != nil && d.Action.Kind().IsTerminal()
}

type decisionWire struct {
	CurrentTask   *string         `json:"current_task"`
	Plan          []string        `json:"plan_remaining_steps_brief"`
	TaskCompleted *bool           `json:"task_completed"`
	Function      json.RawMessage `json:"function"`
}

// MarshalJSON encodes the decision in its wire form.
func (d Decision) MarshalJSON() ([]byte, error) {
	fn, err := json.Marshal(d.Action)
	if err != nil {
		return nil, err
	}
	plan := d.Plan
	if plan == nil {
		plan = []string{}
	}
	return json.Marshal(decisionWire{
		CurrentTask:   &d.CurrentTask,
		Plan:          plan,
		TaskCompleted: &d.TaskCompleted,
		Function:      fn,
	})
}

// DecodeDecision parses oracle output. Every structural mismatch returns an
// error wrapping ErrDecode. Field constraints of the action are not checked.
func DecodeDecision(raw []byte) (Decision, error) {
	var wire decisionWire
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&wire); err != nil {
		return Decision{}, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	var missing []string
	if wire.CurrentTask == nil {
		missing = append(missing, "current_task")
	}
	if wire.Plan == nil {
		missing = append(missing, "plan_remaining_steps_brief")
	}
	if wire.TaskCompleted == nil {
		missing = append(missing, "task_completed")
	}
	if len(wire.Function) == 0 || string(wire.Function) == "null" {
		missing = append(missing, "function")
	}
	if len(missing) > 0 {
		return Decision{}, fmt.Errorf("%w: missing fields: %s", ErrDecode, strings.Join(missing, ", "))
	}

	if n := len(wire.Plan); n < MinPlanSteps || n > MaxPlanSteps {
		return Decision{}, fmt.Errorf("%w: plan has %d steps, want %d..%d", ErrDecode, n, MinPlanSteps, MaxPlanSteps)
	}

	a, err := action.Decode(wire.Function)
	if err != nil {
		return Decision{}, err
	}

	return Decision{
		CurrentTask:   *wire.CurrentTask,
		Plan:          wire.Plan,
		TaskCompleted: *wire.TaskCompleted,
		Action:        a,
	}, nil
}
