package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/felixgeelhaar/sgr-go/domain/action"
	"github.com/felixgeelhaar/sgr-go/domain/agent"
	"github.com/felixgeelhaar/sgr-go/infrastructure/planner"
)

func mapLookup(env map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

func newTestApp(p planner.Planner) (*App, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	app := New().WithOutput(&stdout, &stderr).WithEnv(mapLookup(nil))
	if p != nil {
		app.WithPlanner(p)
	}
	return app, &stdout, &stderr
}

func completion(steps ...string) agent.Decision {
	return agent.Decision{
		CurrentTask:   "wrap up",
		Plan:          []string{"report completion"},
		TaskCompleted: true,
		Action:        action.ReportCompletion{Code: action.OutcomeCompleted, CompletedSteps: steps},
	}
}

// completer finishes every task on its first step.
func completer() planner.Planner {
	return planner.PlannerFunc(func(context.Context, planner.PlanRequest) (agent.Decision, error) {
		return completion("nothing to do"), nil
	})
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func decodeRuns(t *testing.T, data []byte) []agent.Run {
	t.Helper()
	var runs []agent.Run
	if err := json.Unmarshal(data, &runs); err != nil {
		t.Fatalf("output is not a run list: %v\n%s", err, data)
	}
	return runs
}

func TestApp_Version(t *testing.T) {
	app, stdout, _ := newTestApp(nil)

	err := app.ExecuteWithArgs(context.Background(), []string{"version"})
	if err != nil {
		t.Fatalf("version command failed: %v", err)
	}

	if !strings.Contains(stdout.String(), "sgr version dev") {
		t.Errorf("version output missing 'sgr version dev', got: %s", stdout.String())
	}
}

func TestApp_Help(t *testing.T) {
	app, stdout, _ := newTestApp(nil)

	err := app.ExecuteWithArgs(context.Background(), []string{"--help"})
	if err != nil {
		t.Fatalf("help command failed: %v", err)
	}

	output := stdout.String()
	if !strings.Contains(output, "schema-validated decision") {
		t.Errorf("help output missing description, got: %s", output)
	}
	for _, cmd := range []string{"run", "demo", "schema", "validate", "version"} {
		if !strings.Contains(output, cmd) {
			t.Errorf("help output missing %q command", cmd)
		}
	}
}

func TestApp_Run(t *testing.T) {
	p := planner.NewMockPlanner(
		agent.Decision{
			CurrentTask: "remember the rule",
			Plan:        []string{"create the rule for sama@openai.com"},
			Action:      action.CreateRule{Email: "sama@openai.com", Rule: "Address as 'The SAMA'"},
		},
		completion("rule created"),
	)
	app, stdout, _ := newTestApp(p)

	err := app.ExecuteWithArgs(context.Background(), []string{"run", "Rule: address sama@openai.com as 'The SAMA'"})
	if err != nil {
		t.Fatalf("run command failed: %v", err)
	}

	output := stdout.String()
	for _, want := range []string{
		"Task: Rule: address sama@openai.com as 'The SAMA'",
		"Planning step_1...",
		"create the rule for sama@openai.com",
		`"tool":"create_rule"`,
		"OUT:",
		"Planning step_2...",
		"agent completed.",
		"Summary:",
		"- rule created",
		"Records: 1 rules, 0 invoices, 0 emails",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q, got:\n%s", want, output)
		}
	}
}

func TestApp_RunFailureFedBack(t *testing.T) {
	p := planner.NewMockPlanner(
		agent.Decision{
			CurrentTask: "invoice",
			Plan:        []string{"issue the invoice"},
			Action:      action.IssueInvoice{Email: "elon@x.com", SKUs: []string{"SKU-999"}},
		},
		completion("could not invoice"),
	)
	app, stdout, _ := newTestApp(p)

	if err := app.ExecuteWithArgs(context.Background(), []string{"run", "Invoice elon@x.com"}); err != nil {
		t.Fatalf("run command failed: %v", err)
	}

	output := stdout.String()
	if !strings.Contains(output, "ERR:") || !strings.Contains(output, "Product SKU-999 not found") {
		t.Errorf("output missing the failure, got:\n%s", output)
	}
}

func TestApp_RunJSON(t *testing.T) {
	app, stdout, _ := newTestApp(completer())

	err := app.ExecuteWithArgs(context.Background(), []string{"run", "--json", "first", "second"})
	if err != nil {
		t.Fatalf("run command failed: %v", err)
	}

	runs := decodeRuns(t, stdout.Bytes())
	if len(runs) != 2 {
		t.Fatalf("runs = %d, want 2", len(runs))
	}
	for i, want := range []string{"first", "second"} {
		if runs[i].Task != want {
			t.Errorf("runs[%d].Task = %q, want %q", i, runs[i].Task, want)
		}
		if runs[i].State != agent.StateCompleted || runs[i].Steps != 1 {
			t.Errorf("runs[%d] = %s after %d steps", i, runs[i].State, runs[i].Steps)
		}
	}
	if strings.Contains(stdout.String(), "Planning") {
		t.Error("JSON output should not contain the trace")
	}
}

func TestApp_RunAborted(t *testing.T) {
	app, stdout, _ := newTestApp(planner.NewMockPlanner())

	err := app.ExecuteWithArgs(context.Background(), []string{"run", "Say hi"})
	if err == nil || !strings.Contains(err.Error(), "1 of 1 runs aborted") {
		t.Fatalf("run error = %v, want aborted runs", err)
	}
	if !strings.Contains(stdout.String(), "agent aborted (oracle-error)") {
		t.Errorf("output missing abort line, got:\n%s", stdout.String())
	}
}

func TestApp_RunMaxSteps(t *testing.T) {
	loop := planner.PlannerFunc(func(context.Context, planner.PlanRequest) (agent.Decision, error) {
		return agent.Decision{
			CurrentTask: "look up",
			Plan:        []string{"look up the customer"},
			Action:      action.GetCustomerData{Email: "sama@openai.com"},
		}, nil
	})
	app, stdout, _ := newTestApp(loop)

	err := app.ExecuteWithArgs(context.Background(), []string{"run", "--json", "--max-steps", "3", "Loop forever"})
	if err == nil {
		t.Fatal("expected an error for an exhausted budget")
	}

	runs := decodeRuns(t, stdout.Bytes())
	if len(runs) != 1 {
		t.Fatalf("runs = %d, want 1", len(runs))
	}
	if runs[0].AbortReason != agent.AbortBudgetExhausted {
		t.Errorf("AbortReason = %s, want budget-exhausted", runs[0].AbortReason)
	}
	if runs[0].Steps != 3 {
		t.Errorf("Steps = %d, want 3", runs[0].Steps)
	}
}

func TestApp_RunTaskFile(t *testing.T) {
	path := writeFile(t, "tasks.txt", `
# demo tasks
first task

second task
`)
	app, stdout, _ := newTestApp(completer())

	if err := app.ExecuteWithArgs(context.Background(), []string{"run", "--json", "--file", path}); err != nil {
		t.Fatalf("run command failed: %v", err)
	}

	runs := decodeRuns(t, stdout.Bytes())
	if len(runs) != 2 || runs[0].Task != "first task" || runs[1].Task != "second task" {
		t.Errorf("runs = %+v, want the two file tasks", runs)
	}
}

func TestApp_RunConfiguredTasks(t *testing.T) {
	path := writeFile(t, "sgr.yaml", `
provider:
  name: ollama
tasks:
  - configured one
  - configured two
  - configured three
`)
	app, stdout, _ := newTestApp(completer())

	if err := app.ExecuteWithArgs(context.Background(), []string{"run", "--json", "-c", path}); err != nil {
		t.Fatalf("run command failed: %v", err)
	}

	if runs := decodeRuns(t, stdout.Bytes()); len(runs) != 3 {
		t.Errorf("runs = %d, want 3", len(runs))
	}
}

func TestApp_RunBadgerStore(t *testing.T) {
	path := writeFile(t, "sgr.yaml", `
provider:
  name: ollama
store:
  backend: badger
`)
	p := planner.NewMockPlanner(
		agent.Decision{
			CurrentTask: "bill elon",
			Plan:        []string{"issue the invoice"},
			Action:      action.IssueInvoice{Email: "elon@x.com", SKUs: []string{"SKU-210"}},
		},
		completion("invoice issued"),
	)
	app, stdout, _ := newTestApp(p)

	if err := app.ExecuteWithArgs(context.Background(), []string{"run", "-c", path, "Invoice elon@x.com for SKU-210"}); err != nil {
		t.Fatalf("run command failed: %v", err)
	}

	output := stdout.String()
	for _, want := range []string{"INV-1", "Records: 0 rules, 1 invoices, 0 emails"} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q, got:\n%s", want, output)
		}
	}
}

func TestApp_RunErrors(t *testing.T) {
	taskFile := writeFile(t, "tasks.txt", "one\n")

	tests := []struct {
		name    string
		args    []string
		wantErr error
		errText string
	}{
		{
			name:    "no tasks",
			args:    []string{"run"},
			wantErr: ErrNoTasks,
		},
		{
			name:    "args and file",
			args:    []string{"run", "--file", taskFile, "task"},
			errText: "not both",
		},
		{
			name:    "missing task file",
			args:    []string{"run", "--file", filepath.Join(t.TempDir(), "missing.txt")},
			errText: "failed to open task file",
		},
		{
			name:    "missing config",
			args:    []string{"run", "-c", filepath.Join(t.TempDir(), "missing.yaml"), "task"},
			errText: "not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, _, _ := newTestApp(completer())

			err := app.ExecuteWithArgs(context.Background(), tt.args)
			if err == nil {
				t.Fatal("expected an error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
			if tt.errText != "" && !strings.Contains(err.Error(), tt.errText) {
				t.Errorf("error = %v, want it to mention %q", err, tt.errText)
			}
		})
	}
}

func TestApp_RunWithoutProviderKey(t *testing.T) {
	var stdout, stderr bytes.Buffer
	app := New().WithOutput(&stdout, &stderr).WithEnv(mapLookup(nil))

	err := app.ExecuteWithArgs(context.Background(), []string{"run", "Say hi"})
	if !errors.Is(err, planner.ErrMissingAPIKey) {
		t.Errorf("run error = %v, want ErrMissingAPIKey", err)
	}
}

func TestApp_RunMetrics(t *testing.T) {
	path := writeFile(t, "sgr.yaml", `
provider:
  name: ollama
metrics:
  enabled: true
`)
	app, stdout, _ := newTestApp(completer())

	if err := app.ExecuteWithArgs(context.Background(), []string{"run", "--metrics", "-c", path, "Say hi"}); err != nil {
		t.Fatalf("run command failed: %v", err)
	}

	output := stdout.String()
	if !strings.Contains(output, "Metrics:") || !strings.Contains(output, "sgr.runs: 1") {
		t.Errorf("output missing metrics, got:\n%s", output)
	}
}

func TestApp_RunMetricsDisabled(t *testing.T) {
	app, stdout, stderr := newTestApp(completer())

	if err := app.ExecuteWithArgs(context.Background(), []string{"run", "--metrics", "Say hi"}); err != nil {
		t.Fatalf("run command failed: %v", err)
	}
	if strings.Contains(stdout.String(), "Metrics:") {
		t.Error("metrics printed while disabled")
	}
	if !strings.Contains(stderr.String(), "metrics are disabled") {
		t.Errorf("stderr = %q, want a disabled notice", stderr.String())
	}
}

func TestApp_Demo(t *testing.T) {
	var tasks []string
	p := planner.PlannerFunc(func(_ context.Context, req planner.PlanRequest) (agent.Decision, error) {
		for _, e := range req.Log {
			if e.Role == agent.RoleUser {
				tasks = append(tasks, e.Content)
			}
		}
		return completion("done"), nil
	})
	app, stdout, _ := newTestApp(p)

	if err := app.ExecuteWithArgs(context.Background(), []string{"demo", "--json"}); err != nil {
		t.Fatalf("demo command failed: %v", err)
	}

	if runs := decodeRuns(t, stdout.Bytes()); len(runs) != len(DemoTasks) {
		t.Errorf("runs = %d, want %d", len(runs), len(DemoTasks))
	}
	if len(tasks) != len(DemoTasks) {
		t.Fatalf("tasks seen = %d, want %d", len(tasks), len(DemoTasks))
	}
	for i := range DemoTasks {
		if tasks[i] != DemoTasks[i] {
			t.Errorf("task %d = %q, want %q", i, tasks[i], DemoTasks[i])
		}
	}
}

func TestApp_Schema(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want []string
	}{
		{
			name: "decision",
			args: []string{"schema"},
			want: []string{`"NextStep"`, `"plan_remaining_steps_brief"`, `"ReportTaskCompletion"`},
		},
		{
			name: "strict",
			args: []string{"schema", "--strict"},
			want: []string{`"NextStep"`, `"additionalProperties": false`},
		},
		{
			name: "configuration",
			args: []string{"schema", "--config-schema"},
			want: []string{`"SGR Configuration"`, `"max_steps"`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, stdout, _ := newTestApp(nil)

			if err := app.ExecuteWithArgs(context.Background(), tt.args); err != nil {
				t.Fatalf("schema command failed: %v", err)
			}
			output := stdout.String()
			if !json.Valid([]byte(output)) {
				t.Fatalf("output is not valid JSON:\n%s", output)
			}
			for _, want := range tt.want {
				if !strings.Contains(output, want) {
					t.Errorf("output missing %s", want)
				}
			}
		})
	}
}

func TestApp_SchemaToFile(t *testing.T) {
	app, stdout, _ := newTestApp(nil)
	path := filepath.Join(t.TempDir(), "nextstep.json")

	if err := app.ExecuteWithArgs(context.Background(), []string{"schema", "-o", path}); err != nil {
		t.Fatalf("schema command failed: %v", err)
	}

	if !strings.Contains(stdout.String(), "Schema exported to") {
		t.Errorf("output = %q", stdout.String())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read schema file: %v", err)
	}
	if !json.Valid(data) {
		t.Error("schema file is not valid JSON")
	}
}

func TestApp_Validate(t *testing.T) {
	path := writeFile(t, "sgr.yaml", `
name: local
version: "1.0"
provider:
  name: ollama
  model: qwen2.5
agent:
  max_steps: 12
tasks:
  - hello
`)
	app, stdout, _ := newTestApp(nil)

	if err := app.ExecuteWithArgs(context.Background(), []string{"validate", "-c", path}); err != nil {
		t.Fatalf("validate command failed: %v", err)
	}

	output := stdout.String()
	for _, want := range []string{
		"Configuration is valid",
		"Name: local",
		"Provider: ollama (qwen2.5)",
		"Max steps: 12",
		"Catalog: 3 products",
		"SKU-205 AGI Course 101 Personal (258)",
		"Tasks: 1",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q, got:\n%s", want, output)
		}
	}
}

func TestApp_ValidateErrors(t *testing.T) {
	invalid := writeFile(t, "invalid.yaml", `
agent:
  max_steps: -1
`)
	unresolved := writeFile(t, "env.yaml", `
provider:
  name: openai
  api_key: ${SGR_TEST_MISSING_KEY}
`)

	tests := []struct {
		name    string
		args    []string
		errText string
	}{
		{"no config", []string{"validate"}, "-c flag"},
		{"invalid values", []string{"validate", "-c", invalid}, "validation failed"},
		{"strict env", []string{"validate", "--strict", "-c", unresolved}, "validation failed"},
		{"provider build", []string{"validate", "-c", unresolved}, "configuration build failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, _, _ := newTestApp(nil)

			err := app.ExecuteWithArgs(context.Background(), tt.args)
			if err == nil || !strings.Contains(err.Error(), tt.errText) {
				t.Errorf("validate error = %v, want it to mention %q", err, tt.errText)
			}
		})
	}
}

func TestReadTasks(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "tasks.txt", "  one  \n#skip\n\n two\n")
	tasks, err := readTasks(path)
	if err != nil {
		t.Fatalf("readTasks() error = %v", err)
	}
	if len(tasks) != 2 || tasks[0] != "one" || tasks[1] != "two" {
		t.Errorf("readTasks() = %q", tasks)
	}
}
