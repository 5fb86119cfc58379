package agent

import (
	"errors"

	"github.com/felixgeelhaar/sgr-go/domain/action"
)

// Domain errors for the agent runtime.
var (
	// ErrDecode indicates the oracle output does not match the decision schema.
	ErrDecode = action.ErrDecode

	// ErrRunTerminated indicates an operation was attempted on a terminated run.
	ErrRunTerminated = errors.New("run already terminated")

	// ErrEmptyTask indicates a run was requested without task text.
	ErrEmptyTask = errors.New("task is empty")
)
