package statemachine

import (
	"errors"
	"fmt"

	"github.com/felixgeelhaar/statekit"

	"github.com/felixgeelhaar/sgr-go/domain/action"
	"github.com/felixgeelhaar/sgr-go/domain/agent"
)

// ErrTransitionRejected indicates the machine did not accept an event.
var ErrTransitionRejected = errors.New("transition rejected")

// Interpreter wraps the statekit interpreter with run-specific functionality.
type Interpreter struct {
	interp *statekit.Interpreter[*Context]
	ctx    *Context
}

// NewInterpreter creates a new interpreter for the run state machine.
func NewInterpreter(machine *statekit.MachineConfig[*Context], ctx *Context) *Interpreter {
	interp := statekit.NewInterpreter(machine)
	// Update the context reference in the machine
	interp.UpdateContext(func(c **Context) {
		*c = ctx
	})
	return &Interpreter{
		interp: interp,
		ctx:    ctx,
	}
}

// Start initializes the interpreter and enters the initial state.
func (i *Interpreter) Start() {
	i.interp.Start()
	i.ctx.Run.State = agent.State(i.interp.State().Value)
}

// Stop stops the interpreter.
func (i *Interpreter) Stop() {
	i.interp.Stop()
}

// State returns the current state.
func (i *Interpreter) State() agent.State {
	return StateFromMachine(i.interp.State().Value)
}

// Complete moves the run to completed with the declared outcome.
func (i *Interpreter) Complete(outcome action.Outcome, completedSteps []string) error {
	return i.send(EventComplete, CompletionPayload{
		Outcome:        outcome,
		CompletedSteps: completedSteps,
	}, agent.StateCompleted)
}

// Abort moves the run to aborted with the given reason.
func (i *Interpreter) Abort(reason agent.AbortReason, err error) error {
	return i.send(EventAbort, AbortPayload{Reason: reason, Err: err}, agent.StateAborted)
}

func (i *Interpreter) send(eventType statekit.EventType, payload any, want agent.State) error {
	from := i.State()
	i.interp.Send(statekit.Event{Type: eventType, Payload: payload})

	got := i.State()
	i.ctx.Run.State = got
	if got != want {
		return fmt.Errorf("%w: %s from %s", ErrTransitionRejected, eventType, from)
	}
	return nil
}

// IsTerminal returns true if the interpreter is in a terminal state.
func (i *Interpreter) IsTerminal() bool {
	return i.interp.Done()
}

// Context returns the interpreter context.
func (i *Interpreter) Context() *Context {
	return i.ctx
}

// Matches checks if the current state matches the given state.
func (i *Interpreter) Matches(state agent.State) bool {
	return i.interp.Matches(statekit.StateID(state))
}
