package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/muesli/termenv"

	"github.com/felixgeelhaar/sgr-go/application"
	"github.com/felixgeelhaar/sgr-go/domain/action"
	"github.com/felixgeelhaar/sgr-go/domain/agent"
)

// Trace colors.
const (
	colorTask    = "#818cf8"
	colorStep    = "#a78bfa"
	colorOK      = "#34d399"
	colorFailure = "#fb7185"
	colorMuted   = "#9ca3af"
)

// TraceObserver prints run progress in human-readable form.
type TraceObserver struct {
	out *termenv.Output
}

// NewTraceObserver creates an observer writing to w. Colors are dropped when
// w is not a terminal.
func NewTraceObserver(w io.Writer) *TraceObserver {
	return &TraceObserver{out: termenv.NewOutput(w)}
}

func (o *TraceObserver) style(s, color string) termenv.Style {
	return o.out.String(s).Foreground(o.out.Color(color))
}

// OnStart implements application.StepObserver.
func (o *TraceObserver) OnStart(run *agent.Run) {
	fmt.Fprintf(o.out, "\n%s %s\n", o.style("Task:", colorTask).Bold(), run.Task)
	fmt.Fprintf(o.out, "%s\n", o.style("run "+run.ID, colorMuted))
}

// OnStep implements application.StepObserver.
func (o *TraceObserver) OnStep(event application.StepEvent) {
	fmt.Fprintf(o.out, "%s\n", o.style(fmt.Sprintf("Planning %s...", agent.StepID(event.Step)), colorStep))
	fmt.Fprintf(o.out, "  %s\n", event.NextStep())

	if event.Result == nil {
		return
	}

	call, err := json.Marshal(event.Decision.Action)
	if err != nil {
		call = []byte(event.Decision.Action.Kind())
	}
	fmt.Fprintf(o.out, "  %s\n", o.style(string(call), colorMuted))

	if event.Result.OK() {
		fmt.Fprintf(o.out, "  %s %s\n", o.style("OUT:", colorOK), event.Result.Content())
		return
	}
	fmt.Fprintf(o.out, "  %s %s\n", o.style("ERR:", colorFailure), event.Result.Content())
}

// OnFinish implements application.StepObserver.
func (o *TraceObserver) OnFinish(run *agent.Run) {
	if run.State != agent.StateCompleted {
		msg := fmt.Sprintf("agent aborted (%s)", run.AbortReason)
		fmt.Fprintf(o.out, "%s", o.style(msg, colorFailure).Bold())
		if run.Error != "" {
			fmt.Fprintf(o.out, ": %s", run.Error)
		}
		fmt.Fprintln(o.out)
		return
	}

	color := colorOK
	if run.Outcome != action.OutcomeCompleted {
		color = colorFailure
	}
	fmt.Fprintf(o.out, "%s\n", o.style(fmt.Sprintf("agent %s.", run.Outcome), color).Bold())

	if len(run.CompletedSteps) == 0 {
		return
	}
	fmt.Fprintf(o.out, "%s\n", o.style("Summary:", colorTask))
	for _, s := range run.CompletedSteps {
		fmt.Fprintf(o.out, "- %s\n", s)
	}
}

var _ application.StepObserver = (*TraceObserver)(nil)
