// Package application provides the task runner that drives the reasoning loop.
package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/felixgeelhaar/sgr-go/domain/action"
	"github.com/felixgeelhaar/sgr-go/domain/agent"
	"github.com/felixgeelhaar/sgr-go/domain/record"
	"github.com/felixgeelhaar/sgr-go/infrastructure/logging"
	"github.com/felixgeelhaar/sgr-go/infrastructure/observability"
	"github.com/felixgeelhaar/sgr-go/infrastructure/planner"
	"github.com/felixgeelhaar/sgr-go/infrastructure/resilience"
	"github.com/felixgeelhaar/sgr-go/infrastructure/statemachine"
	"github.com/felixgeelhaar/sgr-go/infrastructure/telemetry"
)

// DefaultMaxSteps is the step budget of a run when none is configured.
const DefaultMaxSteps = 20

// TaskRunner turns one task into a bounded sequence of decisions, each
// resolved to exactly one action against the record store.
type TaskRunner struct {
	planner      planner.Planner
	executor     *resilience.Executor
	dispatcher   *Dispatcher
	store        record.Store
	systemPrompt string
	maxSteps     int
	maxTokens    int
	observer     StepObserver
	metrics      telemetry.Recorder
	tracer       trace.Tracer
	newID        func() string
}

// RunnerConfig contains configuration for the task runner.
type RunnerConfig struct {
	Planner  planner.Planner
	Executor *resilience.Executor
	Store    record.Store
	// SystemPrompt is the preamble of every run. When empty, the default
	// preamble is rendered from the store's catalog.
	SystemPrompt string
	MaxSteps     int
	MaxTokens    int
	Observer     StepObserver
	Metrics      telemetry.Recorder
	Tracer       trace.Tracer
	IDGenerator  func() string
}

// NewTaskRunner creates a runner with the given configuration.
func NewTaskRunner(config RunnerConfig) (*TaskRunner, error) {
	if config.Planner == nil {
		return nil, ErrNoPlanner
	}
	dispatcher, err := NewDispatcher(config.Store)
	if err != nil {
		return nil, err
	}

	r := &TaskRunner{
		planner:      config.Planner,
		executor:     config.Executor,
		dispatcher:   dispatcher,
		store:        config.Store,
		systemPrompt: config.SystemPrompt,
		maxSteps:     config.MaxSteps,
		maxTokens:    config.MaxTokens,
		observer:     config.Observer,
		metrics:      config.Metrics,
		tracer:       config.Tracer,
		newID:        config.IDGenerator,
	}

	if r.executor == nil {
		r.executor = resilience.NewDefaultExecutor()
	}
	if r.maxSteps <= 0 {
		r.maxSteps = DefaultMaxSteps
	}
	if r.maxTokens <= 0 {
		r.maxTokens = planner.DefaultMaxTokens
	}
	if r.observer == nil {
		r.observer = NoopObserver{}
	}
	if r.metrics == nil {
		r.metrics = telemetry.NoopMetricsProvider{}
	}
	if r.tracer == nil {
		r.tracer = noop.NewTracerProvider().Tracer("sgr")
	}
	if r.newID == nil {
		r.newID = uuid.NewString
	}

	return r, nil
}

// MaxSteps returns the step budget of a run.
func (r *TaskRunner) MaxSteps() int {
	return r.maxSteps
}

// Run executes one task until the oracle reports completion or the run aborts.
// Aborted runs are returned with a nil error, except for cancellation, which
// also returns the context error.
func (r *TaskRunner) Run(ctx context.Context, task string) (*agent.Run, error) {
	if strings.TrimSpace(task) == "" {
		return nil, agent.ErrEmptyTask
	}

	prompt, err := r.preamble(ctx)
	if err != nil {
		return nil, err
	}

	run := agent.NewRun(r.newID(), task)
	machine, err := statemachine.NewRunMachine()
	if err != nil {
		return nil, fmt.Errorf("failed to create state machine: %w", err)
	}
	interp := statemachine.NewInterpreter(machine, statemachine.NewContext(run))
	interp.Start()
	defer interp.Stop()

	ctx, span := observability.StartRun(ctx, r.tracer, run)
	r.metrics.IncrementActiveRuns(ctx)

	logging.Info().
		Add(logging.RunID(run.ID)).
		Add(logging.Task(task)).
		Msg("run started")

	log := agent.NewLog(prompt, task)
	r.observer.OnStart(run)

	for step := 1; !interp.IsTerminal(); step++ {
		if step > r.maxSteps {
			r.abort(interp, agent.AbortBudgetExhausted, nil)
			break
		}
		if err := ctx.Err(); err != nil {
			r.abort(interp, agent.AbortCancelled, err)
			break
		}
		r.step(ctx, interp, log, step)
	}

	run.Log = log.Entries()
	observability.EndRun(span, run)
	r.metrics.RecordRun(ctx, run.Status(), run.Steps, run.Duration())
	r.metrics.DecrementActiveRuns(ctx)

	r.logFinish(run)
	r.observer.OnFinish(run)

	if run.AbortReason == agent.AbortCancelled {
		if err := ctx.Err(); err != nil {
			return run, err
		}
		return run, context.Canceled
	}
	return run, nil
}

// step requests one decision and applies it. It leaves the interpreter in a
// terminal state when the run must stop.
func (r *TaskRunner) step(ctx context.Context, interp *statemachine.Interpreter, log *agent.Log, step int) {
	run := interp.Context().Run
	start := time.Now()

	decision, err := r.plan(ctx, run.ID, log, step)
	if err != nil {
		reason := abortReason(ctx, err)
		logging.Warn().
			Add(logging.RunID(run.ID)).
			Add(logging.Step(step)).
			Add(logging.AbortReason(reason)).
			Add(logging.ErrorField(err)).
			Msg("decision failed")
		r.abort(interp, reason, err)
		return
	}

	run.Steps = step
	kind := decision.Action.Kind()
	r.metrics.RecordStep(ctx, kind.String())

	logging.Debug().
		Add(logging.RunID(run.ID)).
		Add(logging.Step(step)).
		Add(logging.ActionKind(kind)).
		Add(logging.Str("next_step", decision.NextStep())).
		Msg("decision received")

	if completion, ok := decision.Action.(action.ReportCompletion); ok {
		r.observer.OnStep(StepEvent{
			RunID:    run.ID,
			Step:     step,
			Decision: decision,
			Duration: time.Since(start),
		})
		if err := completion.Validate(); err != nil {
			r.abort(interp, agent.AbortDecodeError, fmt.Errorf("%w: %w", agent.ErrDecode, err))
			return
		}
		if err := interp.Complete(completion.Code, completion.CompletedSteps); err != nil {
			r.abort(interp, agent.AbortDecodeError, err)
		}
		return
	}

	if err := ctx.Err(); err != nil {
		r.abort(interp, agent.AbortCancelled, err)
		return
	}

	if _, err := log.AppendAction(step, decision.Action); err != nil {
		r.abort(interp, agent.AbortDecodeError, fmt.Errorf("%w: %w", agent.ErrDecode, err))
		return
	}

	result, err := r.dispatch(ctx, step, decision.Action)
	if err != nil {
		reason := agent.AbortDispatchError
		if ctx.Err() != nil {
			reason = agent.AbortCancelled
		}
		r.abort(interp, reason, err)
		return
	}
	log.AppendResult(step, kind, result)

	if !result.OK() {
		logging.Debug().
			Add(logging.RunID(run.ID)).
			Add(logging.Step(step)).
			Add(logging.Failure(result)).
			Msg("action failed")
	}

	r.observer.OnStep(StepEvent{
		RunID:    run.ID,
		Step:     step,
		Decision: decision,
		Result:   &result,
		Duration: time.Since(start),
	})
}

// plan requests a decision through the resilience executor. The full log is
// submitted on every call.
func (r *TaskRunner) plan(ctx context.Context, runID string, log *agent.Log, step int) (agent.Decision, error) {
	start := time.Now()
	ctx, span := observability.StartPlan(ctx, r.tracer, step)

	req := planner.PlanRequest{
		RunID:     runID,
		Step:      step,
		Log:       log.Entries(),
		MaxTokens: r.maxTokens,
	}
	decision, err := r.executor.Execute(ctx, func(ctx context.Context) (agent.Decision, error) {
		return r.planner.Plan(ctx, req)
	})
	if err == nil && decision.Action == nil {
		err = fmt.Errorf("%w: decision has no action", agent.ErrDecode)
	}

	observability.EndPlan(span, decision, err)
	r.metrics.RecordPlanning(ctx, time.Since(start), err)
	return decision, err
}

func (r *TaskRunner) dispatch(ctx context.Context, step int, a action.Action) (action.Result, error) {
	start := time.Now()
	ctx, span := observability.StartDispatch(ctx, r.tracer, step, a.Kind())

	result, err := r.dispatcher.Dispatch(ctx, a)
	if err != nil {
		span.RecordError(err)
		span.End()
		return result, err
	}

	observability.EndDispatch(span, result)
	failure := ""
	if !result.OK() {
		failure = string(result.Failure.Kind)
	}
	r.metrics.RecordDispatch(ctx, a.Kind().String(), failure, time.Since(start))
	return result, nil
}

func (r *TaskRunner) abort(interp *statemachine.Interpreter, reason agent.AbortReason, err error) {
	if abortErr := interp.Abort(reason, err); abortErr != nil {
		logging.Error().
			Add(logging.RunID(interp.Context().Run.ID)).
			Add(logging.ErrorField(abortErr)).
			Msg("abort rejected")
	}
}

// preamble returns the configured system prompt or renders the default one
// from the store's catalog.
func (r *TaskRunner) preamble(ctx context.Context) (string, error) {
	if r.systemPrompt != "" {
		return r.systemPrompt, nil
	}
	products, err := r.store.Products(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to list products: %w", err)
	}
	return planner.SystemPrompt("", products), nil
}

func (r *TaskRunner) logFinish(run *agent.Run) {
	if run.State == agent.StateCompleted {
		logging.Info().
			Add(logging.RunID(run.ID)).
			Add(logging.Outcome(run.Outcome)).
			Add(logging.Int("steps", run.Steps)).
			Add(logging.Duration(run.Duration())).
			Msg("run completed")
		return
	}
	logging.Warn().
		Add(logging.RunID(run.ID)).
		Add(logging.AbortReason(run.AbortReason)).
		Add(logging.Int("steps", run.Steps)).
		Add(logging.Str("error", run.Error)).
		Msg("run aborted")
}

// abortReason classifies a failed decision request.
func abortReason(ctx context.Context, err error) agent.AbortReason {
	switch {
	case ctx.Err() != nil, errors.Is(err, context.Canceled):
		return agent.AbortCancelled
	case errors.Is(err, agent.ErrDecode):
		return agent.AbortDecodeError
	default:
		return agent.AbortOracleError
	}
}

// RunBatch processes tasks strictly in order, each with a fresh log. A failed
// run does not stop the batch; cancellation does.
func (r *TaskRunner) RunBatch(ctx context.Context, tasks []string) ([]*agent.Run, error) {
	runs := make([]*agent.Run, 0, len(tasks))
	for i, task := range tasks {
		if err := ctx.Err(); err != nil {
			return runs, err
		}
		run, err := r.Run(ctx, task)
		if run != nil {
			runs = append(runs, run)
		}
		if err != nil {
			if ctx.Err() != nil {
				return runs, err
			}
			logging.Warn().
				Add(logging.Int("task_index", i)).
				Add(logging.ErrorField(err)).
				Msg("task skipped")
		}
	}
	return runs, nil
}
