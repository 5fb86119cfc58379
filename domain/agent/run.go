package agent

import (
	"time"

	"github.com/felixgeelhaar/sgr-go/domain/action"
)

// Run is a single task execution. It is the aggregate root for the agent domain.
type Run struct {
	ID             string         `json:"id"`
	Task           string         `json:"task"`
	State          State          `json:"state"`
	Steps          int            `json:"steps"`
	Outcome        action.Outcome `json:"outcome,omitempty"`
	CompletedSteps []string       `json:"completed_steps,omitempty"`
	AbortReason    AbortReason    `json:"abort_reason,omitempty"`
	Error          string         `json:"error,omitempty"`
	Log            []Entry        `json:"log,omitempty"`
	StartTime      time.Time      `json:"start_time"`
	EndTime        time.Time      `json:"end_time,omitempty"`
}

// NewRun creates a running run for the task.
func NewRun(id, task string) *Run {
	return &Run{
		ID:        id,
		Task:      task,
		State:     StateRunning,
		StartTime: time.Now(),
	}
}

// Complete moves the run to the completed state with the declared outcome.
func (r *Run) Complete(outcome action.Outcome, completedSteps []string) error {
	if r.IsTerminal() {
		return ErrRunTerminated
	}
	r.State = StateCompleted
	r.Outcome = outcome
	r.CompletedSteps = append([]string(nil), completedSteps...)
	r.EndTime = time.Now()
	return nil
}

// Abort moves the run to the aborted state. err may be nil.
func (r *Run) Abort(reason AbortReason, err error) error {
	if r.IsTerminal() {
		return ErrRunTerminated
	}
	r.State = StateAborted
	r.AbortReason = reason
	if err != nil {
		r.Error = err.Error()
	}
	r.EndTime = time.Now()
	return nil
}

// IsTerminal returns true if the run has stopped.
func (r *Run) IsTerminal() bool {
	return r.State.IsTerminal()
}

// Status is a one-word summary: the outcome code for completed runs,
// "aborted" otherwise.
func (r *Run) Status() string {
	if r.State == StateCompleted {
		return string(r.Outcome)
	}
	return string(r.State)
}

// Duration returns the duration of the run.
func (r *Run) Duration() time.Duration {
	if r.EndTime.IsZero() {
		return time.Since(r.StartTime)
	}
	return r.EndTime.Sub(r.StartTime)
}
