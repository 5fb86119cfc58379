// Package statemachine provides the statekit integration for the task runner.
package statemachine

import (
	"github.com/felixgeelhaar/statekit"

	"github.com/felixgeelhaar/sgr-go/domain/agent"
)

// Context carries run state through the state machine.
type Context struct {
	Run *agent.Run
}

// NewContext creates a new machine context.
func NewContext(run *agent.Run) *Context {
	return &Context{Run: run}
}

// State IDs as StateID type for statekit.
const (
	stateRunning   statekit.StateID = statekit.StateID(agent.StateRunning)
	stateCompleted statekit.StateID = statekit.StateID(agent.StateCompleted)
	stateAborted   statekit.StateID = statekit.StateID(agent.StateAborted)
)

// Event types accepted by the run machine.
const (
	EventComplete statekit.EventType = "COMPLETE"
	EventAbort    statekit.EventType = "ABORT"
)

// NewRunMachine creates the task run statechart.
func NewRunMachine() (*statekit.MachineConfig[*Context], error) {
	return statekit.NewMachine[*Context]("run").
		WithInitial(stateRunning).
		WithContext(&Context{}).
		// Register actions
		WithAction("logEntry", logStateEntry).
		WithAction("complete", completeRun).
		WithAction("abort", abortRun).
		// Register guards
		WithGuard("validOutcome", guardValidOutcome).
		// Define states
		State(stateRunning).
			OnEntry("logEntry").
			On(EventComplete).Target(stateCompleted).Guard("validOutcome").Do("complete").
			On(EventAbort).Target(stateAborted).Do("abort").
			Done().
		State(stateCompleted).
			Final().
			OnEntry("logEntry").
			Done().
		State(stateAborted).
			Final().
			OnEntry("logEntry").
			Done().
		Build()
}

// StateFromMachine converts the machine state ID to domain State.
func StateFromMachine(stateID statekit.StateID) agent.State {
	return agent.State(stateID)
}
