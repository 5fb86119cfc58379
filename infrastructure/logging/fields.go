package logging

import (
	"time"

	"github.com/felixgeelhaar/bolt/v3"

	"github.com/felixgeelhaar/sgr-go/domain/action"
	"github.com/felixgeelhaar/sgr-go/domain/agent"
)

// Field is a function that applies structured data to a log event.
type Field func(*bolt.Event) *bolt.Event

// RunID adds a run ID field.
func RunID(id string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("run_id", id)
	}
}

// Task adds the task text.
func Task(task string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("task", task)
	}
}

// Step adds the step number.
func Step(n int) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Int("step", n)
	}
}

// State adds a run state field.
func State(s agent.State) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("state", string(s))
	}
}

// ActionKind adds the action tool tag.
func ActionKind(k action.Kind) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("action", string(k))
	}
}

// Outcome adds the declared outcome code.
func Outcome(o action.Outcome) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("outcome", string(o))
	}
}

// AbortReason adds the abort reason.
func AbortReason(r agent.AbortReason) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("abort_reason", string(r))
	}
}

// Failure adds the failure kind of a dispatch result, if any.
func Failure(r action.Result) Field {
	return func(e *bolt.Event) *bolt.Event {
		if r.Failure == nil {
			return e
		}
		return e.Str("failure", string(r.Failure.Kind))
	}
}

// Provider adds the model provider name.
func Provider(name string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("provider", name)
	}
}

// Duration adds a duration field in milliseconds.
func Duration(d time.Duration) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Int64("duration_ms", d.Milliseconds())
	}
}

// ErrorField adds an error field.
func ErrorField(err error) Field {
	return func(e *bolt.Event) *bolt.Event {
		if err == nil {
			return e
		}
		return e.Err(err)
	}
}

// Component adds a component field for categorization.
func Component(name string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("component", name)
	}
}

// Str adds a string field with custom key.
func Str(key, value string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str(key, value)
	}
}

// Int adds an int field with custom key.
func Int(key string, value int) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Int(key, value)
	}
}
