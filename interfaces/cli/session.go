package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/felixgeelhaar/sgr-go/application"
	"github.com/felixgeelhaar/sgr-go/domain/agent"
	domainconfig "github.com/felixgeelhaar/sgr-go/domain/config"
	"github.com/felixgeelhaar/sgr-go/domain/record"
	infraconfig "github.com/felixgeelhaar/sgr-go/infrastructure/config"
	"github.com/felixgeelhaar/sgr-go/infrastructure/logging"
	"github.com/felixgeelhaar/sgr-go/infrastructure/observability"
	"github.com/felixgeelhaar/sgr-go/infrastructure/planner"
	"github.com/felixgeelhaar/sgr-go/infrastructure/resilience"
	"github.com/felixgeelhaar/sgr-go/infrastructure/telemetry"
)

// sessionOptions overrides configuration for one invocation.
type sessionOptions struct {
	maxSteps int
	observer application.StepObserver
}

// session holds the components of one CLI invocation. Every task of the
// invocation shares the record store, so later tasks see earlier rules and
// invoices.
type session struct {
	config     *domainconfig.AppConfig
	runner     *application.TaskRunner
	store      record.Store
	closeStore func() error
	obs        *observability.Provider
	provider   string
}

// openSession resolves configuration and wires the runner.
func (a *App) openSession(opts sessionOptions) (*session, error) {
	cfg, err := infraconfig.Resolve(a.configPath, a.lookup)
	if err != nil {
		return nil, err
	}
	if opts.maxSteps > 0 {
		cfg.Agent.MaxSteps = opts.maxSteps
	}

	builder := infraconfig.NewBuilder(cfg,
		infraconfig.WithLogOutput(a.stderr),
		infraconfig.WithTraceOutput(a.stderr),
	)
	logging.Init(builder.LoggingConfig())

	p, providerName, err := a.newPlanner(builder, cfg)
	if err != nil {
		return nil, err
	}

	obsOpts, err := builder.ObservabilityOptions()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domainconfig.ErrBuildFailed, err)
	}
	obs, err := observability.New(obsOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to set up observability: %w", err)
	}

	store, closeStore, err := builder.RecordStore()
	if err != nil {
		_ = obs.Shutdown(context.Background())
		return nil, err
	}
	products := cfg.Products()

	runner, err := application.NewTaskRunner(application.RunnerConfig{
		Planner:      p,
		Executor:     resilience.NewExecutor(builder.ExecutorConfig()),
		Store:        store,
		SystemPrompt: planner.SystemPrompt(cfg.Agent.SystemPrompt, products),
		MaxSteps:     cfg.Agent.MaxSteps,
		MaxTokens:    cfg.Agent.MaxTokens,
		Observer:     opts.observer,
		Metrics: telemetry.NewMetricsProvider(telemetry.MetricsConfig{
			MeterProvider: obs.MeterProvider(),
		}),
		Tracer: obs.Tracer(),
	})
	if err != nil {
		_ = closeStore()
		_ = obs.Shutdown(context.Background())
		return nil, err
	}

	logging.Debug().
		Add(logging.Provider(providerName)).
		Add(logging.Int("max_steps", runner.MaxSteps())).
		Add(logging.Str("store", cfg.Store.Backend)).
		Add(logging.Int("products", len(products))).
		Msg("session ready")

	return &session{
		config:     cfg,
		runner:     runner,
		store:      store,
		closeStore: closeStore,
		obs:        obs,
		provider:   providerName,
	}, nil
}

// newPlanner returns the injected planner or builds one from the provider section.
func (a *App) newPlanner(builder *infraconfig.Builder, cfg *domainconfig.AppConfig) (planner.Planner, string, error) {
	if a.planner != nil {
		return a.planner, "custom", nil
	}
	result, err := builder.Build()
	if err != nil {
		return nil, "", err
	}
	p, err := planner.NewLLMPlanner(result.Planner)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w", domainconfig.ErrBuildFailed, err)
	}
	return p, result.Provider.Name(), nil
}

// run processes the tasks in order.
func (s *session) run(ctx context.Context, tasks []string) ([]*agent.Run, error) {
	return s.runner.RunBatch(ctx, tasks)
}

// metrics returns the collected metric totals, or nil when metrics are disabled.
func (s *session) metrics(ctx context.Context) ([]observability.Sample, error) {
	rm, err := s.obs.CollectMetrics(ctx)
	if errors.Is(err, observability.ErrMetricsDisabled) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return observability.Summarize(rm), nil
}

// close releases the record store and flushes exporters.
func (s *session) close(ctx context.Context) error {
	return errors.Join(s.closeStore(), s.obs.Shutdown(ctx))
}

// aborted counts runs that did not complete.
func aborted(runs []*agent.Run) int {
	n := 0
	for _, r := range runs {
		if r.State != agent.StateCompleted {
			n++
		}
	}
	return n
}
