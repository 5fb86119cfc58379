package config

import (
	"errors"
	"testing"

	"github.com/felixgeelhaar/sgr-go/domain/config"
)

func TestApplyEnv_ProviderSelectsVariables(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		env       map[string]string
		wantName  string
		wantKey   string
		wantModel string
		wantURL   string
	}{
		{
			name:      "openai by default",
			env:       map[string]string{EnvOpenAIKey: "sk-openai", EnvOpenAIModel: "gpt-4o", EnvOpenRouterKey: "sk-or"},
			wantName:  "openai",
			wantKey:   "sk-openai",
			wantModel: "gpt-4o",
		},
		{
			name: "openrouter keys",
			env: map[string]string{
				EnvProvider:        "OpenRouter",
				EnvOpenAIKey:       "sk-openai",
				EnvOpenRouterKey:   "sk-or",
				EnvOpenRouterModel: "openai/gpt-4o-mini",
			},
			wantName:  "openrouter",
			wantKey:   "sk-or",
			wantModel: "openai/gpt-4o-mini",
		},
		{
			name:     "ollama host",
			env:      map[string]string{EnvProvider: "ollama", EnvOllamaHost: "http://gpu:11434", EnvOpenAIKey: "sk-openai"},
			wantName: "ollama",
			wantURL:  "http://gpu:11434",
		},
		{
			name:     "base url wins over ollama host",
			env:      map[string]string{EnvProvider: "ollama", EnvOllamaHost: "http://gpu:11434", EnvProviderBaseURL: "http://proxy"},
			wantName: "ollama",
			wantURL:  "http://proxy",
		},
		{
			name:     "blank values ignored",
			env:      map[string]string{EnvProvider: "  ", EnvOpenAIKey: ""},
			wantName: "openai",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := config.Default()
			if err := ApplyEnv(cfg, mapLookup(tt.env)); err != nil {
				t.Fatalf("ApplyEnv() error = %v", err)
			}
			if cfg.Provider.Name != tt.wantName {
				t.Errorf("Provider.Name = %q, want %q", cfg.Provider.Name, tt.wantName)
			}
			if cfg.Provider.APIKey != tt.wantKey {
				t.Errorf("Provider.APIKey = %q, want %q", cfg.Provider.APIKey, tt.wantKey)
			}
			if cfg.Provider.Model != tt.wantModel {
				t.Errorf("Provider.Model = %q, want %q", cfg.Provider.Model, tt.wantModel)
			}
			if cfg.Provider.BaseURL != tt.wantURL {
				t.Errorf("Provider.BaseURL = %q, want %q", cfg.Provider.BaseURL, tt.wantURL)
			}
		})
	}
}

func TestApplyEnv_AgentSettings(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	env := map[string]string{
		EnvMaxSteps:       "7",
		EnvDecodeRetries:  "3",
		EnvProviderStrict: "true",
		EnvLogLevel:       "debug",
		EnvStoreBackend:   "Badger",
	}
	if err := ApplyEnv(cfg, mapLookup(env)); err != nil {
		t.Fatalf("ApplyEnv() error = %v", err)
	}

	if cfg.Agent.MaxSteps != 7 {
		t.Errorf("MaxSteps = %d, want 7", cfg.Agent.MaxSteps)
	}
	if cfg.Agent.DecodeRetries != 3 {
		t.Errorf("DecodeRetries = %d, want 3", cfg.Agent.DecodeRetries)
	}
	if !cfg.Provider.Strict {
		t.Error("Provider.Strict = false, want true")
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
	if cfg.Store.Backend != "badger" {
		t.Errorf("Store.Backend = %q, want badger", cfg.Store.Backend)
	}
}

func TestApplyEnv_InvalidValues(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"max steps", EnvMaxSteps, "many"},
		{"decode retries", EnvDecodeRetries, "1.5"},
		{"strict", EnvProviderStrict, "sometimes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := ApplyEnv(config.Default(), mapLookup(map[string]string{tt.key: tt.val}))
			if !errors.Is(err, config.ErrInvalidEnvValue) {
				t.Errorf("ApplyEnv() error = %v, want ErrInvalidEnvValue", err)
			}
		})
	}
}

func TestApplyEnv_Tracing(t *testing.T) {
	t.Parallel()

	tests := []struct {
		exporter    string
		wantEnabled bool
	}{
		{"otlp", true},
		{"stdout", true},
		{"noop", false},
	}

	for _, tt := range tests {
		t.Run(tt.exporter, func(t *testing.T) {
			t.Parallel()

			cfg := config.Default()
			env := map[string]string{
				EnvTracingExporter: tt.exporter,
				EnvTracingEndpoint: "collector:4317",
			}
			if err := ApplyEnv(cfg, mapLookup(env)); err != nil {
				t.Fatalf("ApplyEnv() error = %v", err)
			}
			if cfg.Tracing.Enabled != tt.wantEnabled {
				t.Errorf("Tracing.Enabled = %v, want %v", cfg.Tracing.Enabled, tt.wantEnabled)
			}
			if cfg.Tracing.Exporter != tt.exporter {
				t.Errorf("Tracing.Exporter = %q, want %q", cfg.Tracing.Exporter, tt.exporter)
			}
			if cfg.Tracing.Endpoint != "collector:4317" {
				t.Errorf("Tracing.Endpoint = %q", cfg.Tracing.Endpoint)
			}
		})
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv(EnvProvider, "ollama")
	t.Setenv(EnvMaxSteps, "12")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv() error = %v", err)
	}
	if cfg.Provider.Name != "ollama" {
		t.Errorf("Provider.Name = %q, want ollama", cfg.Provider.Name)
	}
	if cfg.Agent.MaxSteps != 12 {
		t.Errorf("MaxSteps = %d, want 12", cfg.Agent.MaxSteps)
	}
}

func TestFromEnv_ValidationFailure(t *testing.T) {
	t.Setenv(EnvMaxSteps, "0")

	_, err := FromEnv()
	if !errors.Is(err, config.ErrValidationFailed) {
		t.Errorf("FromEnv() error = %v, want ErrValidationFailed", err)
	}
}

func TestResolve(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, "sgr.yaml", `
provider:
  name: openrouter
  model: openai/gpt-4o-mini
agent:
  max_steps: 9
`)
	env := map[string]string{
		EnvOpenRouterKey: "sk-or",
		EnvMaxSteps:      "4",
	}

	cfg, err := Resolve(path, mapLookup(env))
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if cfg.Provider.APIKey != "sk-or" {
		t.Errorf("Provider.APIKey = %q, want the environment key", cfg.Provider.APIKey)
	}
	if cfg.Provider.Model != "openai/gpt-4o-mini" {
		t.Errorf("Provider.Model = %q, want the file model", cfg.Provider.Model)
	}
	if cfg.Agent.MaxSteps != 4 {
		t.Errorf("MaxSteps = %d, want the environment override 4", cfg.Agent.MaxSteps)
	}
}

func TestResolve_Errors(t *testing.T) {
	t.Parallel()

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()
		_, err := Resolve("does-not-exist.yaml", mapLookup(nil))
		if !errors.Is(err, config.ErrConfigNotFound) {
			t.Errorf("Resolve() error = %v, want ErrConfigNotFound", err)
		}
	})

	t.Run("override fails validation", func(t *testing.T) {
		t.Parallel()
		_, err := Resolve("", mapLookup(map[string]string{EnvProvider: "acme"}))
		if !errors.Is(err, config.ErrValidationFailed) {
			t.Errorf("Resolve() error = %v, want ErrValidationFailed", err)
		}
	})
}
