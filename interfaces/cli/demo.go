package cli

import (
	"time"

	"github.com/spf13/cobra"
)

// DemoTasks exercise rules, customer lookups, discounts, cancellation and
// email delivery against the default catalog. Later tasks depend on the
// records earlier tasks create.
var DemoTasks = []string{
	"Rule: address sama@openai.com as 'The SAMA', always give him 5% discount",
	"Rule for elon@x.com. Email his invoices to finances@x.com",
	"sama@openai.com wants one of each product. Email him the invoice",
	"elon@x.com wants 2x the way sama@openai.com got. Send the invoice",
	"redo last elon@x.com invoice: use 3x discount of sama@openai.com",
}

// newDemoCmd creates the demo command.
func (a *App) newDemoCmd() *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Run the built-in demo tasks",
		Long: `Run five tasks against a fresh record store: two rules, two invoices
with discounts derived from those rules, and a cancellation with a reissue.

Examples:
  # Run the demo with OpenAI
  OPENAI_API_KEY=sk-... sgr demo

  # Run the demo with a local Ollama model
  MODEL_PROVIDER=ollama sgr demo -c ollama.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tasks := append([]string(nil), DemoTasks...)
			return a.runTasks(cmd.Context(), tasks, opts)
		},
	}

	cmd.Flags().IntVar(&opts.maxSteps, "max-steps", 0, "Override the step budget of each run")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 10*time.Minute, "Cancel the demo after this duration")
	cmd.Flags().BoolVar(&opts.jsonOut, "json", false, "Print run records as JSON instead of the trace")
	cmd.Flags().BoolVar(&opts.metrics, "metrics", false, "Print collected metrics after the runs")

	return cmd
}
