package application

import (
	"go.opentelemetry.io/otel/trace"

	"github.com/felixgeelhaar/sgr-go/domain/record"
	"github.com/felixgeelhaar/sgr-go/infrastructure/planner"
	"github.com/felixgeelhaar/sgr-go/infrastructure/resilience"
	"github.com/felixgeelhaar/sgr-go/infrastructure/telemetry"
)

// Option configures the task runner.
type Option func(*RunnerConfig)

// WithPlanner sets the planner.
func WithPlanner(p planner.Planner) Option {
	return func(c *RunnerConfig) {
		c.Planner = p
	}
}

// WithExecutor sets the resilient executor that guards every decision request.
func WithExecutor(e *resilience.Executor) Option {
	return func(c *RunnerConfig) {
		c.Executor = e
	}
}

// WithStore sets the record store.
func WithStore(s record.Store) Option {
	return func(c *RunnerConfig) {
		c.Store = s
	}
}

// WithSystemPrompt sets the preamble seeded into every run.
func WithSystemPrompt(prompt string) Option {
	return func(c *RunnerConfig) {
		c.SystemPrompt = prompt
	}
}

// WithMaxSteps sets the step budget of a run.
func WithMaxSteps(n int) Option {
	return func(c *RunnerConfig) {
		c.MaxSteps = n
	}
}

// WithMaxTokens sets the completion size limit of one decision.
func WithMaxTokens(n int) Option {
	return func(c *RunnerConfig) {
		c.MaxTokens = n
	}
}

// WithObserver sets the step observer.
func WithObserver(o StepObserver) Option {
	return func(c *RunnerConfig) {
		c.Observer = o
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m telemetry.Recorder) Option {
	return func(c *RunnerConfig) {
		c.Metrics = m
	}
}

// WithTracer sets the tracer used for run, plan and dispatch spans.
func WithTracer(t trace.Tracer) Option {
	return func(c *RunnerConfig) {
		c.Tracer = t
	}
}

// WithIDGenerator replaces the run ID generator.
func WithIDGenerator(fn func() string) Option {
	return func(c *RunnerConfig) {
		c.IDGenerator = fn
	}
}

// NewTaskRunnerWithOptions creates a runner with functional options.
func NewTaskRunnerWithOptions(opts ...Option) (*TaskRunner, error) {
	config := RunnerConfig{}
	for _, opt := range opts {
		opt(&config)
	}
	return NewTaskRunner(config)
}
