package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/sgr-go/application"
	"github.com/felixgeelhaar/sgr-go/domain/agent"
)

// ErrNoTasks is returned when a run has nothing to process.
var ErrNoTasks = errors.New("no tasks to run")

// runOptions holds options for the run command.
type runOptions struct {
	file     string
	maxSteps int
	timeout  time.Duration
	jsonOut  bool
	metrics  bool
}

// newRunCmd creates the run command.
func (a *App) newRunCmd() *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run [task...]",
		Short: "Run one or more tasks",
		Long: `Run tasks through the reasoning loop. Each argument is one task.
Tasks run strictly in order against a shared record store, so a rule
created by one task is visible to the next.

Without arguments, tasks are read from --file (one per line, blank lines
and lines starting with # are skipped) or from the configuration file.

Examples:
  # Run a single task
  sgr run "Rule: address sama@openai.com as 'The SAMA'"

  # Run the tasks of a configuration file
  sgr run -c sgr.yaml

  # Emit the run records as JSON
  sgr run --json --file tasks.txt`,
		RunE: func(cmd *cobra.Command, args []string) error {
			tasks, err := a.collectTasks(args, opts.file)
			if err != nil {
				return err
			}
			return a.runTasks(cmd.Context(), tasks, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "Read tasks from a file, one per line")
	cmd.Flags().IntVar(&opts.maxSteps, "max-steps", 0, "Override the step budget of each run")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 0, "Cancel all runs after this duration")
	cmd.Flags().BoolVar(&opts.jsonOut, "json", false, "Print run records as JSON instead of the trace")
	cmd.Flags().BoolVar(&opts.metrics, "metrics", false, "Print collected metrics after the runs")

	return cmd
}

// collectTasks picks tasks from args, then the task file. Configured tasks
// are resolved later by the session.
func (a *App) collectTasks(args []string, file string) ([]string, error) {
	if len(args) > 0 && file != "" {
		return nil, fmt.Errorf("pass tasks as arguments or with --file, not both")
	}
	if len(args) > 0 {
		return args, nil
	}
	if file == "" {
		return nil, nil
	}
	return readTasks(file)
}

// readTasks reads one task per line.
func readTasks(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open task file: %w", err)
	}
	defer f.Close()

	var tasks []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		tasks = append(tasks, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read task file: %w", err)
	}
	return tasks, nil
}

// runTasks opens a session and processes tasks in order. Configured tasks
// are used when tasks is empty.
func (a *App) runTasks(ctx context.Context, tasks []string, opts *runOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.timeout)
		defer cancel()
	}

	var observer application.StepObserver = application.NoopObserver{}
	if !opts.jsonOut {
		observer = NewTraceObserver(a.stdout)
	}

	s, err := a.openSession(sessionOptions{maxSteps: opts.maxSteps, observer: observer})
	if err != nil {
		return err
	}
	defer func() {
		_ = s.close(context.Background())
	}()

	if len(tasks) == 0 {
		tasks = s.config.Tasks
	}
	if len(tasks) == 0 {
		return ErrNoTasks
	}

	runs, runErr := s.run(ctx, tasks)

	if opts.jsonOut {
		if err := a.printRuns(runs); err != nil {
			return err
		}
	} else {
		a.printSummary(ctx, s, runs)
	}

	if opts.metrics {
		if err := a.printMetrics(ctx, s); err != nil {
			return err
		}
	}

	if runErr != nil {
		return fmt.Errorf("run interrupted: %w", runErr)
	}
	if n := aborted(runs); n > 0 {
		return fmt.Errorf("%d of %d runs aborted", n, len(runs))
	}
	return nil
}

// printRuns writes the run records as a JSON array.
func (a *App) printRuns(runs []*agent.Run) error {
	if runs == nil {
		runs = []*agent.Run{}
	}
	enc := json.NewEncoder(a.stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(runs); err != nil {
		return fmt.Errorf("failed to encode runs: %w", err)
	}
	return nil
}

// printSummary writes one line per run and the record store totals.
func (a *App) printSummary(ctx context.Context, s *session, runs []*agent.Run) {
	fmt.Fprintf(a.stdout, "\nRuns: %d\n", len(runs))
	for i, r := range runs {
		fmt.Fprintf(a.stdout, "  %d. %s (%d steps, %s)\n", i+1, r.Status(), r.Steps, r.Duration().Round(time.Millisecond))
	}

	stats, err := s.store.Stats(ctx)
	if err != nil {
		return
	}
	fmt.Fprintf(a.stdout, "Records: %d rules, %d invoices, %d emails\n", stats.Rules, stats.Invoices, stats.Emails)
}

// printMetrics writes the collected metric totals.
func (a *App) printMetrics(ctx context.Context, s *session) error {
	samples, err := s.metrics(ctx)
	if err != nil {
		return fmt.Errorf("failed to collect metrics: %w", err)
	}
	if samples == nil {
		fmt.Fprintln(a.stderr, "metrics are disabled; enable them with metrics.enabled")
		return nil
	}
	fmt.Fprintf(a.stdout, "\nMetrics:\n")
	for _, sample := range samples {
		fmt.Fprintf(a.stdout, "  %s: %g\n", sample.Name, sample.Value)
	}
	return nil
}
