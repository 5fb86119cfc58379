// Package config provides domain models for application configuration.
package config

import (
	"time"

	"github.com/felixgeelhaar/sgr-go/domain/record"
)

// Defaults applied when a field is not configured.
const (
	DefaultProvider      = "openai"
	DefaultMaxSteps      = 20
	DefaultMaxTokens     = 1000
	DefaultDecodeRetries = 1
	DefaultLogLevel      = "warn"
	DefaultLogFormat     = "console"
	DefaultStoreBackend  = "memory"
)

// AppConfig represents the complete application configuration.
type AppConfig struct {
	// Name is a human-readable name for this configuration.
	Name string `json:"name,omitempty" yaml:"name,omitempty"`
	// Version is the configuration schema version.
	Version string `json:"version,omitempty" yaml:"version,omitempty"`

	// Provider selects and configures the model provider.
	Provider ProviderConfig `json:"provider" yaml:"provider"`
	// Agent contains reasoning loop settings.
	Agent AgentSettings `json:"agent" yaml:"agent"`
	// Resilience contains settings for the decision call.
	Resilience ResilienceConfig `json:"resilience,omitempty" yaml:"resilience,omitempty"`
	// Catalog lists the products that may be invoiced.
	Catalog []ProductConfig `json:"catalog,omitempty" yaml:"catalog,omitempty"`
	// Store selects the record store backend.
	Store StoreConfig `json:"store,omitempty" yaml:"store,omitempty"`
	// Tasks are processed in order by "sgr run" when no task is given.
	Tasks []string `json:"tasks,omitempty" yaml:"tasks,omitempty"`
	// Logging configures the structured logger.
	Logging LoggingConfig `json:"logging,omitempty" yaml:"logging,omitempty"`
	// Tracing configures OpenTelemetry tracing.
	Tracing TracingConfig `json:"tracing,omitempty" yaml:"tracing,omitempty"`
	// Metrics configures in-process metrics.
	Metrics MetricsConfig `json:"metrics,omitempty" yaml:"metrics,omitempty"`
}

// ProviderConfig configures the model provider.
type ProviderConfig struct {
	// Name is the provider (openai, openrouter, ollama).
	Name string `json:"name,omitempty" yaml:"name,omitempty"`
	// APIKey authenticates against hosted providers.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	// BaseURL overrides the provider endpoint.
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty"`
	// Model is the model name.
	Model string `json:"model,omitempty" yaml:"model,omitempty"`
	// Timeout bounds a single HTTP request.
	Timeout Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`
	// Strict sends the schema in strict structured-output mode.
	Strict bool `json:"strict,omitempty" yaml:"strict,omitempty"`
}

// AgentSettings contains reasoning loop settings.
type AgentSettings struct {
	// MaxSteps is the step budget of one run.
	MaxSteps int `json:"max_steps,omitempty" yaml:"max_steps,omitempty"`
	// MaxTokens bounds the completion size of one decision.
	MaxTokens int `json:"max_tokens,omitempty" yaml:"max_tokens,omitempty"`
	// Temperature is the sampling temperature.
	Temperature float64 `json:"temperature,omitempty" yaml:"temperature,omitempty"`
	// DecodeRetries is the number of attempts for a decision that fails to decode.
	DecodeRetries int `json:"decode_retries,omitempty" yaml:"decode_retries,omitempty"`
	// SystemPrompt replaces the default instructions. The catalog is still appended.
	SystemPrompt string `json:"system_prompt,omitempty" yaml:"system_prompt,omitempty"`
}

// ResilienceConfig contains settings for the decision call.
type ResilienceConfig struct {
	// Timeout bounds one decision including decode retries.
	Timeout Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`
	// RetryDelay is the first delay between decode retries.
	RetryDelay Duration `json:"retry_delay,omitempty" yaml:"retry_delay,omitempty"`
	// CircuitBreaker configures the provider circuit breaker.
	CircuitBreaker CircuitBreakerConfig `json:"circuit_breaker,omitempty" yaml:"circuit_breaker,omitempty"`
}

// CircuitBreakerConfig configures circuit breaker behavior.
type CircuitBreakerConfig struct {
	// Threshold is consecutive failures before opening.
	Threshold int `json:"threshold,omitempty" yaml:"threshold,omitempty"`
	// Timeout is how long the circuit stays open.
	Timeout Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`
}

// ProductConfig is one catalog entry.
type ProductConfig struct {
	SKU   string  `json:"sku" yaml:"sku"`
	Name  string  `json:"name" yaml:"name"`
	Price float64 `json:"price" yaml:"price"`
}

// StoreConfig selects the record store backend. Both backends keep records
// in memory only.
type StoreConfig struct {
	// Backend is memory or badger.
	Backend string `json:"backend,omitempty" yaml:"backend,omitempty"`
}

// LoggingConfig configures the structured logger.
type LoggingConfig struct {
	// Level is debug, info, warn or error.
	Level string `json:"level,omitempty" yaml:"level,omitempty"`
	// Format is json or console.
	Format string `json:"format,omitempty" yaml:"format,omitempty"`
}

// TracingConfig configures OpenTelemetry tracing.
type TracingConfig struct {
	// Enabled enables tracing.
	Enabled bool `json:"enabled,omitempty" yaml:"enabled,omitempty"`
	// Exporter is otlp, stdout or noop.
	Exporter string `json:"exporter,omitempty" yaml:"exporter,omitempty"`
	// Endpoint is the OTLP endpoint.
	Endpoint string `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`
	// Insecure disables TLS for the OTLP connection.
	Insecure bool `json:"insecure,omitempty" yaml:"insecure,omitempty"`
	// SampleRate is the sampling rate between 0 and 1.
	SampleRate *float64 `json:"sample_rate,omitempty" yaml:"sample_rate,omitempty"`
}

// MetricsConfig configures in-process metrics.
type MetricsConfig struct {
	// Enabled collects run metrics and prints a summary at exit.
	Enabled bool `json:"enabled,omitempty" yaml:"enabled,omitempty"`
}

// Default returns the configuration used when nothing is configured.
func Default() *AppConfig {
	return &AppConfig{
		Version: "1.0",
		Provider: ProviderConfig{
			Name:    DefaultProvider,
			Timeout: Duration(120 * time.Second),
		},
		Agent: AgentSettings{
			MaxSteps:      DefaultMaxSteps,
			MaxTokens:     DefaultMaxTokens,
			DecodeRetries: DefaultDecodeRetries,
		},
		Resilience: ResilienceConfig{
			Timeout:    Duration(2 * time.Minute),
			RetryDelay: Duration(200 * time.Millisecond),
			CircuitBreaker: CircuitBreakerConfig{
				Threshold: 5,
				Timeout:   Duration(30 * time.Second),
			},
		},
		Catalog: FromProducts(record.DefaultCatalog()),
		Store:   StoreConfig{Backend: DefaultStoreBackend},
		Logging: LoggingConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
		Tracing: TracingConfig{
			Exporter: "noop",
		},
	}
}

// Products converts the catalog into record products.
func (c *AppConfig) Products() []record.Product {
	out := make([]record.Product, len(c.Catalog))
	for i, p := range c.Catalog {
		out[i] = record.Product{SKU: p.SKU, Name: p.Name, Price: p.Price}
	}
	return out
}

// FromProducts converts record products into catalog entries.
func FromProducts(products []record.Product) []ProductConfig {
	out := make([]ProductConfig, len(products))
	for i, p := range products {
		out[i] = ProductConfig{SKU: p.SKU, Name: p.Name, Price: p.Price}
	}
	return out
}

// Rate returns the configured sample rate, or 1 when unset.
func (t TracingConfig) Rate() float64 {
	if t.SampleRate == nil {
		return 1.0
	}
	return *t.SampleRate
}

// Duration is a time.Duration that supports JSON/YAML string representation.
type Duration time.Duration

// MarshalJSON implements json.Marshaler.
func (d Duration) MarshalJSON() ([]byte, error) {
	return []byte(`"` + time.Duration(d).String() + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Duration) UnmarshalJSON(b []byte) error {
	// Handle null
	if string(b) == "null" {
		return nil
	}

	// Remove quotes
	s := string(b)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}

	dur, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(dur)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	dur, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(dur)
	return nil
}

// Duration returns the underlying time.Duration.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}
