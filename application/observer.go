package application

import (
	"time"

	"github.com/felixgeelhaar/sgr-go/domain/action"
	"github.com/felixgeelhaar/sgr-go/domain/agent"
)

// StepEvent describes one completed step of a run.
type StepEvent struct {
	RunID    string
	Step     int
	Decision agent.Decision
	// Result is nil for the terminal step.
	Result   *action.Result
	Duration time.Duration
}

// NextStep returns the first plan entry of the decision.
func (e StepEvent) NextStep() string {
	return e.Decision.NextStep()
}

// StepObserver receives run progress. Calls happen on the run's goroutine.
type StepObserver interface {
	// OnStart is called once the run is seeded, before the first decision.
	OnStart(run *agent.Run)

	// OnStep is called after each step.
	OnStep(event StepEvent)

	// OnFinish is called when the run reaches a terminal state.
	OnFinish(run *agent.Run)
}

// NoopObserver ignores all events.
type NoopObserver struct{}

func (NoopObserver) OnStart(*agent.Run)  {}
func (NoopObserver) OnStep(StepEvent)    {}
func (NoopObserver) OnFinish(*agent.Run) {}

// ObserverFuncs adapts optional functions to StepObserver.
type ObserverFuncs struct {
	Start  func(run *agent.Run)
	Step   func(event StepEvent)
	Finish func(run *agent.Run)
}

// OnStart implements StepObserver.
func (o ObserverFuncs) OnStart(run *agent.Run) {
	if o.Start != nil {
		o.Start(run)
	}
}

// OnStep implements StepObserver.
func (o ObserverFuncs) OnStep(event StepEvent) {
	if o.Step != nil {
		o.Step(event)
	}
}

// OnFinish implements StepObserver.
func (o ObserverFuncs) OnFinish(run *agent.Run) {
	if o.Finish != nil {
		o.Finish(run)
	}
}
