package application

import "errors"

// Application errors.
var (
	// ErrNoStore indicates a dispatcher or runner was built without a record store.
	ErrNoStore = errors.New("record store is required")

	// ErrNoPlanner indicates a runner was built without a planner.
	ErrNoPlanner = errors.New("planner is required")
)
