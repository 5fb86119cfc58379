package agent

import (
	"encoding/json"
	"fmt"

	"github.com/felixgeelhaar/sgr-go/domain/action"
)

// Role identifies the author of a log entry.
type Role string

const (
	RoleSystem Role = "system"           // System preamble
	RoleUser   Role = "user"             // Task text
	RoleAction Role = "assistant-action" // Action chosen by the oracle
	RoleResult Role = "action-result"    // Dispatch outcome of the preceding action
)

// Entry is one element of the conversation log.
type Entry struct {
	Role    Role        `json:"role"`
	Content string      `json:"content"`
	StepID  string      `json:"step_id,omitempty"`
	Action  action.Kind `json:"action,omitempty"`
}

// Log is the append-only conversation of one run. It is the oracle's only memory.
type Log struct {
	entries []Entry
}

// NewLog seeds a log with the system preamble and the task text.
func NewLog(systemPrompt, task string) *Log {
	return &Log{
		entries: []Entry{
			{Role: RoleSystem, Content: systemPrompt},
			{Role: RoleUser, Content: task},
		},
	}
}

// StepID returns the identifier tying an action to its result.
func StepID(step int) string {
	return fmt.Sprintf("step_%d", step)
}

// AppendAction records the action chosen at the given step.
func (l *Log) AppendAction(step int, a action.Action) (Entry, error) {
	content, err := json.Marshal(a)
	if err != nil {
		return Entry{}, err
	}
	e := Entry{
		Role:    RoleAction,
		Content: string(content),
		StepID:  StepID(step),
		Action:  a.Kind(),
	}
	l.entries = append(l.entries, e)
	return e, nil
}

// AppendResult records the dispatch outcome of the given step.
func (l *Log) AppendResult(step int, kind action.Kind, r action.Result) Entry {
	e := Entry{
		Role:    RoleResult,
		Content: r.Content(),
		StepID:  StepID(step),
		Action:  kind,
	}
	l.entries = append(l.entries, e)
	return e
}

// Entries returns a copy of the log entries in order.
func (l *Log) Entries() []Entry {
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Len returns the number of entries.
func (l *Log) Len() int {
	return len(l.entries)
}
