package action

import (
	"encoding/json"
	"errors"
)

// FailureKind classifies a recoverable dispatch failure.
type FailureKind string

const (
	FailureNotFound    FailureKind = "not_found"
	FailureValidation  FailureKind = "validation"
	FailureUnsupported FailureKind = "unsupported"
)

// Failure describes why an action produced no data.
type Failure struct {
	Kind    FailureKind `json:"error"`
	Message string      `json:"message"`
	Field   string      `json:"field,omitempty"`
}

// Result is the plain-data outcome of dispatching one action.
// Exactly one of Data or Failure is set.
type Result struct {
	Data    json.RawMessage `json:"data,omitempty"`
	Failure *Failure        `json:"failure,omitempty"`
}

// OK reports whether the action succeeded.
func (r Result) OK() bool {
	return r.Failure == nil
}

// Content returns the text fed back to the decision oracle.
func (r Result) Content() string {
	if r.Failure != nil {
		b, err := json.Marshal(r.Failure)
		if err != nil {
			return r.Failure.Message
		}
		return string(b)
	}
	if len(r.Data) == 0 {
		return "{}"
	}
	return string(r.Data)
}

// Success encodes v as the result data.
func Success(v any) (Result, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return Result{}, err
	}
	return Result{Data: b}, nil
}

// Fail creates a failed result.
func Fail(kind FailureKind, message string) Result {
	return Result{Failure: &Failure{Kind: kind, Message: message}}
}

// FailValidation converts a validation error into a failed result.
func FailValidation(err error) Result {
	f := &Failure{Kind: FailureValidation, Message: err.Error()}
	var verr *ValidationError
	if errors.As(err, &verr) {
		f.Field = verr.Field
	}
	return Result{Failure: f}
}
