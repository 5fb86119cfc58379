package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/felixgeelhaar/sgr-go/domain/config"
)

// Environment variables that override configuration.
const (
	EnvProvider        = "MODEL_PROVIDER"
	EnvOpenAIKey       = "OPENAI_API_KEY"
	EnvOpenRouterKey   = "OPENROUTER_API_KEY"
	EnvOpenAIModel     = "OPENAI_MODEL"
	EnvOpenRouterModel = "OPENROUTER_MODEL"
	EnvOllamaHost      = "OLLAMA_HOST"
	EnvMaxSteps        = "SGR_MAX_STEPS"
	EnvLogLevel        = "SGR_LOG_LEVEL"
	EnvProviderBaseURL = "SGR_BASE_URL"
	EnvDecodeRetries   = "SGR_DECODE_RETRIES"
	EnvProviderStrict  = "SGR_STRICT"
	EnvTracingExporter = "SGR_TRACING_EXPORTER"
	EnvTracingEndpoint = "OTEL_EXPORTER_OTLP_ENDPOINT"
	EnvStoreBackend    = "SGR_STORE"
)

// FromEnv returns the default configuration with environment overrides applied.
func FromEnv() (*config.AppConfig, error) {
	return Resolve("", os.LookupEnv)
}

// Resolve loads the file at path (or the defaults when path is empty),
// applies environment overrides from lookup and validates the result.
func Resolve(path string, lookup func(string) (string, bool)) (*config.AppConfig, error) {
	cfg := config.Default()
	if path != "" {
		loader := NewLoaderWithOptions(WithLookup(lookup), WithValidation(false))
		loaded, err := loader.LoadFile(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if err := ApplyEnv(cfg, lookup); err != nil {
		return nil, err
	}
	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides cfg with environment values. The provider name selects
// which API key and model variables apply.
func ApplyEnv(cfg *config.AppConfig, lookup func(string) (string, bool)) error {
	get := func(key string) (string, bool) {
		v, ok := lookup(key)
		v = strings.TrimSpace(v)
		return v, ok && v != ""
	}

	if v, ok := get(EnvProvider); ok {
		cfg.Provider.Name = strings.ToLower(v)
	}

	switch cfg.Provider.Name {
	case "openrouter":
		if v, ok := get(EnvOpenRouterKey); ok {
			cfg.Provider.APIKey = v
		}
		if v, ok := get(EnvOpenRouterModel); ok {
			cfg.Provider.Model = v
		}
	case "ollama":
		if v, ok := get(EnvOllamaHost); ok {
			cfg.Provider.BaseURL = v
		}
	default:
		if v, ok := get(EnvOpenAIKey); ok {
			cfg.Provider.APIKey = v
		}
		if v, ok := get(EnvOpenAIModel); ok {
			cfg.Provider.Model = v
		}
	}

	if v, ok := get(EnvProviderBaseURL); ok {
		cfg.Provider.BaseURL = v
	}
	if v, ok := get(EnvProviderStrict); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q", config.ErrInvalidEnvValue, EnvProviderStrict, v)
		}
		cfg.Provider.Strict = b
	}
	if v, ok := get(EnvMaxSteps); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q", config.ErrInvalidEnvValue, EnvMaxSteps, v)
		}
		cfg.Agent.MaxSteps = n
	}
	if v, ok := get(EnvDecodeRetries); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q", config.ErrInvalidEnvValue, EnvDecodeRetries, v)
		}
		cfg.Agent.DecodeRetries = n
	}
	if v, ok := get(EnvLogLevel); ok {
		cfg.Logging.Level = v
	}
	if v, ok := get(EnvStoreBackend); ok {
		cfg.Store.Backend = strings.ToLower(v)
	}
	if v, ok := get(EnvTracingExporter); ok {
		cfg.Tracing.Enabled = v != "noop"
		cfg.Tracing.Exporter = v
	}
	if v, ok := get(EnvTracingEndpoint); ok {
		cfg.Tracing.Endpoint = v
	}
	return nil
}
