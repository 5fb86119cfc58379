package config

import (
	"fmt"
	"io"
	"strings"
	"time"

	domainconfig "github.com/felixgeelhaar/sgr-go/domain/config"
	"github.com/felixgeelhaar/sgr-go/domain/record"
	"github.com/felixgeelhaar/sgr-go/infrastructure/logging"
	"github.com/felixgeelhaar/sgr-go/infrastructure/observability"
	"github.com/felixgeelhaar/sgr-go/infrastructure/planner"
	"github.com/felixgeelhaar/sgr-go/infrastructure/resilience"
	badgerstore "github.com/felixgeelhaar/sgr-go/infrastructure/storage/badger"
	"github.com/felixgeelhaar/sgr-go/infrastructure/storage/memory"
)

// Builder builds runtime components from configuration.
type Builder struct {
	config      *domainconfig.AppConfig
	logOutput   io.Writer
	traceOutput io.Writer
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithLogOutput sets the destination of the structured logger.
func WithLogOutput(w io.Writer) BuilderOption {
	return func(b *Builder) {
		b.logOutput = w
	}
}

// WithTraceOutput sets the destination of the stdout span exporter.
func WithTraceOutput(w io.Writer) BuilderOption {
	return func(b *Builder) {
		b.traceOutput = w
	}
}

// NewBuilder creates a new configuration builder.
func NewBuilder(config *domainconfig.AppConfig, opts ...BuilderOption) *Builder {
	b := &Builder{config: config}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// BuildResult contains the components built from configuration.
type BuildResult struct {
	// Provider is the model provider.
	Provider planner.Provider
	// Planner configures the decision oracle; Provider is already set.
	Planner planner.LLMPlannerConfig
	// Executor configures the resilience wrapper around each decision.
	Executor resilience.ExecutorConfig
	// Logging configures the structured logger.
	Logging logging.Config
	// Observability holds tracing and metrics options.
	Observability []observability.Option
	// Products is the invoiceable catalog.
	Products []record.Product
	// SystemPrompt is the preamble seeded into every run.
	SystemPrompt string
	// MaxSteps is the step budget of one run.
	MaxSteps int
	// Tasks are the configured tasks, in order.
	Tasks []string
}

// Build builds every component. It fails when the provider cannot be created.
func (b *Builder) Build() (*BuildResult, error) {
	provider, err := planner.NewProvider(b.ProviderConfig())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domainconfig.ErrBuildFailed, err)
	}

	obs, err := b.ObservabilityOptions()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domainconfig.ErrBuildFailed, err)
	}

	products := b.config.Products()
	agent := b.config.Agent

	return &BuildResult{
		Provider: provider,
		Planner: planner.LLMPlannerConfig{
			Provider:    provider,
			Model:       b.config.Provider.Model,
			Temperature: agent.Temperature,
			MaxTokens:   agent.MaxTokens,
			Strict:      b.config.Provider.Strict,
		},
		Executor:      b.ExecutorConfig(),
		Logging:       b.LoggingConfig(),
		Observability: obs,
		Products:      products,
		SystemPrompt:  planner.SystemPrompt(agent.SystemPrompt, products),
		MaxSteps:      agent.MaxSteps,
		Tasks:         append([]string(nil), b.config.Tasks...),
	}, nil
}

// ProviderConfig maps the provider section.
func (b *Builder) ProviderConfig() planner.ProviderConfig {
	p := b.config.Provider
	return planner.ProviderConfig{
		Name:    p.Name,
		APIKey:  p.APIKey,
		BaseURL: p.BaseURL,
		Model:   p.Model,
		Timeout: int(time.Duration(p.Timeout).Seconds()),
	}
}

// ExecutorConfig maps the resilience section and decode retries.
func (b *Builder) ExecutorConfig() resilience.ExecutorConfig {
	cfg := resilience.DefaultExecutorConfig()
	r := b.config.Resilience

	cfg.DecodeAttempts = b.config.Agent.DecodeRetries
	cfg.Timeout = time.Duration(r.Timeout)
	cfg.RetryInitialDelay = time.Duration(r.RetryDelay)
	if r.CircuitBreaker.Threshold > 0 {
		cfg.CircuitBreakerThreshold = r.CircuitBreaker.Threshold
	}
	if r.CircuitBreaker.Timeout > 0 {
		cfg.CircuitBreakerTimeout = time.Duration(r.CircuitBreaker.Timeout)
	}
	return cfg
}

// LoggingConfig maps the logging section.
func (b *Builder) LoggingConfig() logging.Config {
	cfg := logging.DefaultConfig()
	if b.config.Logging.Level != "" {
		cfg.Level = b.config.Logging.Level
	}
	if b.config.Logging.Format != "" {
		cfg.Format = b.config.Logging.Format
	}
	if b.logOutput != nil {
		cfg.Output = b.logOutput
	}
	return cfg
}

// ObservabilityOptions maps the tracing and metrics sections.
func (b *Builder) ObservabilityOptions() ([]observability.Option, error) {
	opts := []observability.Option{
		observability.WithServiceName("sgr"),
	}
	if b.config.Version != "" {
		opts = append(opts, observability.WithServiceVersion(b.config.Version))
	}

	t := b.config.Tracing
	if t.Enabled {
		exporter, err := observability.ParseExporter(t.Exporter)
		if err != nil {
			return nil, err
		}
		switch exporter {
		case observability.ExporterStdout:
			opts = append(opts, observability.WithStdoutTracing(b.traceOutput))
		default:
			opts = append(opts, observability.WithTracing(exporter, t.Endpoint))
		}
		if t.Insecure {
			opts = append(opts, observability.WithTracingInsecure())
		}
		opts = append(opts, observability.WithSampleRate(t.Rate()))
	}

	if b.config.Metrics.Enabled {
		opts = append(opts, observability.WithMetrics())
	}
	return opts, nil
}

// RecordStore opens the configured record store backend seeded with the
// catalog. The returned function releases the store.
func (b *Builder) RecordStore() (record.Store, func() error, error) {
	products := b.config.Products()

	switch backend := strings.ToLower(b.config.Store.Backend); backend {
	case "", "memory":
		store, err := memory.NewRecordStore(products)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %w", domainconfig.ErrBuildFailed, err)
		}
		return store, func() error { return nil }, nil
	case "badger":
		store, err := badgerstore.NewRecordStore(products, badgerstore.DefaultConfig())
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %w", domainconfig.ErrBuildFailed, err)
		}
		return store, store.Close, nil
	default:
		return nil, nil, fmt.Errorf("%w: unknown store backend %q", domainconfig.ErrBuildFailed, backend)
	}
}
