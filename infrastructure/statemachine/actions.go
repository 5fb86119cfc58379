package statemachine

import (
	"github.com/felixgeelhaar/statekit"

	"github.com/felixgeelhaar/sgr-go/domain/action"
	"github.com/felixgeelhaar/sgr-go/domain/agent"
	"github.com/felixgeelhaar/sgr-go/infrastructure/logging"
)

// CompletionPayload carries the declared outcome with a COMPLETE event.
type CompletionPayload struct {
	Outcome        action.Outcome
	CompletedSteps []string
}

// AbortPayload carries the abort reason with an ABORT event.
type AbortPayload struct {
	Reason agent.AbortReason
	Err    error
}

// logStateEntry logs when entering a state.
// In statekit, actions receive a pointer to the context. Since our context is *Context,
// actions receive **Context.
func logStateEntry(ctx **Context, event statekit.Event) {
	if ctx == nil || *ctx == nil || (*ctx).Run == nil {
		return
	}

	r := (*ctx).Run
	logging.Debug().
		Add(logging.RunID(r.ID)).
		Add(logging.State(r.State)).
		Add(logging.Str("event", string(event.Type))).
		Msg("run state entered")
}

// completeRun applies a COMPLETE event to the run.
func completeRun(ctx **Context, event statekit.Event) {
	if ctx == nil || *ctx == nil || (*ctx).Run == nil {
		return
	}

	payload, _ := event.Payload.(CompletionPayload)
	_ = (*ctx).Run.Complete(payload.Outcome, payload.CompletedSteps)
}

// abortRun applies an ABORT event to the run.
func abortRun(ctx **Context, event statekit.Event) {
	if ctx == nil || *ctx == nil || (*ctx).Run == nil {
		return
	}

	payload, ok := event.Payload.(AbortPayload)
	if !ok || payload.Reason == "" {
		payload.Reason = agent.AbortBudgetExhausted
	}
	_ = (*ctx).Run.Abort(payload.Reason, payload.Err)
}
