// Package agent provides the run aggregate, conversation log and decision model.
package agent

// State is the lifecycle state of a task run.
type State string

const (
	StateRunning   State = "running"   // Requesting decisions and dispatching actions
	StateCompleted State = "completed" // Terminal: the oracle reported completion
	StateAborted   State = "aborted"   // Terminal: the run stopped without completion
)

// IsTerminal returns true if this is a terminal state.
func (s State) IsTerminal() bool {
	return s == StateCompleted || s == StateAborted
}

// IsValid returns true if the state is recognized.
func (s State) IsValid() bool {
	switch s {
	case StateRunning, StateCompleted, StateAborted:
		return true
	default:
		return false
	}
}

// String returns the string representation of the state.
func (s State) String() string {
	return string(s)
}

// AllStates returns all run states.
func AllStates() []State {
	return []State{StateRunning, StateCompleted, StateAborted}
}

// TerminalStates returns all terminal states.
func TerminalStates() []State {
	return []State{StateCompleted, StateAborted}
}

// AbortReason explains why a run stopped without completion.
type AbortReason string

const (
	AbortBudgetExhausted AbortReason = "budget-exhausted" // Step budget reached
	AbortDecodeError     AbortReason = "decode-error"     // Oracle output did not match the schema
	AbortOracleError     AbortReason = "oracle-error"     // Oracle call failed
	AbortCancelled       AbortReason = "cancelled"        // Context cancelled
	AbortDispatchError   AbortReason = "dispatch-error"   // Record store failed unexpectedly
)

// String returns the string representation of the reason.
func (r AbortReason) String() string {
	return string(r)
}
