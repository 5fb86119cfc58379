package observability

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/felixgeelhaar/sgr-go/domain/action"
	"github.com/felixgeelhaar/sgr-go/domain/agent"
)

// Span names.
const (
	SpanRun      = "sgr.run"
	SpanPlan     = "sgr.plan"
	SpanDispatch = "sgr.dispatch"
)

// Attribute keys.
const (
	AttrRunID       = attribute.Key("sgr.run_id")
	AttrStep        = attribute.Key("sgr.step")
	AttrActionKind  = attribute.Key("sgr.action")
	AttrNextStep    = attribute.Key("sgr.next_step")
	AttrStatus      = attribute.Key("sgr.status")
	AttrSteps       = attribute.Key("sgr.steps")
	AttrAbortReason = attribute.Key("sgr.abort_reason")
	AttrFailure     = attribute.Key("sgr.failure")
)

// StartRun opens the root span of a run.
func StartRun(ctx context.Context, tracer trace.Tracer, run *agent.Run) (context.Context, trace.Span) {
	return tracer.Start(ctx, SpanRun,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(AttrRunID.String(run.ID)),
	)
}

// EndRun annotates the run span with the final status and ends it.
func EndRun(span trace.Span, run *agent.Run) {
	span.SetAttributes(
		AttrStatus.String(run.Status()),
		AttrSteps.Int(run.Steps),
	)
	if run.State == agent.StateAborted {
		span.SetAttributes(AttrAbortReason.String(string(run.AbortReason)))
		desc := string(run.AbortReason)
		if run.Error != "" {
			desc += ": " + run.Error
		}
		span.SetStatus(codes.Error, desc)
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// StartPlan opens the span around one decision request.
func StartPlan(ctx context.Context, tracer trace.Tracer, step int) (context.Context, trace.Span) {
	return tracer.Start(ctx, SpanPlan,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(AttrStep.Int(step)),
	)
}

// EndPlan records the decision (or error) on the plan span and ends it.
func EndPlan(span trace.Span, d agent.Decision, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetAttributes(
			AttrActionKind.String(d.Action.Kind().String()),
			AttrNextStep.String(d.NextStep()),
		)
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// StartDispatch opens the span around one action dispatch.
func StartDispatch(ctx context.Context, tracer trace.Tracer, step int, kind action.Kind) (context.Context, trace.Span) {
	return tracer.Start(ctx, SpanDispatch,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(AttrStep.Int(step), AttrActionKind.String(kind.String())),
	)
}

// EndDispatch records the dispatch result and ends the span. Failures fed
// back to the model are not span errors.
func EndDispatch(span trace.Span, r action.Result) {
	if !r.OK() {
		span.SetAttributes(AttrFailure.String(string(r.Failure.Kind)))
	}
	span.SetStatus(codes.Ok, "")
	span.End()
}
