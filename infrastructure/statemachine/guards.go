package statemachine

import (
	"github.com/felixgeelhaar/statekit"
)

// guardValidOutcome rejects COMPLETE events without a recognized outcome code.
// Note: In statekit, guards receive the context by value. Since our context is *Context,
// the guard receives *Context directly.
func guardValidOutcome(ctx *Context, event statekit.Event) bool {
	if ctx == nil || ctx.Run == nil {
		return false
	}

	payload, ok := event.Payload.(CompletionPayload)
	if !ok {
		return false
	}
	return payload.Outcome.IsValid()
}
