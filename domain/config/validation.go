package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	// Path is the JSON path to the invalid field.
	Path string
	// Message describes the validation error.
	Message string
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Path == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

// Error implements the error interface.
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	if len(e) == 1 {
		return e[0].Error()
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("%d validation errors:\n  - %s", len(e), strings.Join(msgs, "\n  - "))
}

// HasErrors returns true if there are any validation errors.
func (e ValidationErrors) HasErrors() bool {
	return len(e) > 0
}

// Known option values.
var (
	validProviders = map[string]bool{"openai": true, "openrouter": true, "ollama": true}
	validLevels    = map[string]bool{"debug": true, "info": true, "warn": true, "warning": true, "error": true}
	validFormats   = map[string]bool{"json": true, "console": true}
	validExporters = map[string]bool{"otlp": true, "stdout": true, "noop": true}
	validBackends  = map[string]bool{"memory": true, "badger": true}
)

// Validator validates application configuration.
type Validator struct {
	errors ValidationErrors
}

// NewValidator creates a new validator.
func NewValidator() *Validator {
	return &Validator{}
}

// Validate validates the configuration and returns any errors.
func (v *Validator) Validate(config *AppConfig) ValidationErrors {
	v.errors = nil

	v.validateProvider(config)
	v.validateAgent(config)
	v.validateResilience(config)
	v.validateCatalog(config)
	v.validateStore(config)
	v.validateTasks(config)
	v.validateLogging(config)
	v.validateTracing(config)

	return v.errors
}

func (v *Validator) addError(path, message string) {
	v.errors = append(v.errors, ValidationError{Path: path, Message: message})
}

func (v *Validator) validateProvider(config *AppConfig) {
	name := strings.ToLower(config.Provider.Name)
	if name != "" && !validProviders[name] {
		v.addError("provider.name", fmt.Sprintf("unknown provider: %s", config.Provider.Name))
	}
	if config.Provider.Timeout < 0 {
		v.addError("provider.timeout", "timeout must be non-negative")
	}
}

func (v *Validator) validateAgent(config *AppConfig) {
	if config.Agent.MaxSteps <= 0 {
		v.addError("agent.max_steps", "max_steps must be positive")
	}
	if config.Agent.MaxTokens <= 0 {
		v.addError("agent.max_tokens", "max_tokens must be positive")
	}
	if config.Agent.DecodeRetries <= 0 {
		v.addError("agent.decode_retries", "decode_retries must be at least 1")
	}
	if config.Agent.Temperature < 0 || config.Agent.Temperature > 2 {
		v.addError("agent.temperature", "temperature must be between 0 and 2")
	}
}

func (v *Validator) validateResilience(config *AppConfig) {
	if config.Resilience.Timeout < 0 {
		v.addError("resilience.timeout", "timeout must be non-negative")
	}
	if config.Resilience.RetryDelay < 0 {
		v.addError("resilience.retry_delay", "retry_delay must be non-negative")
	}
	if config.Resilience.CircuitBreaker.Threshold < 0 {
		v.addError("resilience.circuit_breaker.threshold", "threshold must be non-negative")
	}
}

func (v *Validator) validateCatalog(config *AppConfig) {
	if len(config.Catalog) == 0 {
		v.addError("catalog", "at least one product is required")
		return
	}

	seen := make(map[string]bool, len(config.Catalog))
	for i, p := range config.Catalog {
		path := fmt.Sprintf("catalog[%d]", i)
		if strings.TrimSpace(p.SKU) == "" {
			v.addError(path+".sku", "sku is required")
		} else if seen[p.SKU] {
			v.addError(path+".sku", fmt.Sprintf("duplicate sku: %s", p.SKU))
		}
		seen[p.SKU] = true
		if strings.TrimSpace(p.Name) == "" {
			v.addError(path+".name", "name is required")
		}
		if p.Price < 0 {
			v.addError(path+".price", "price must be non-negative")
		}
	}
}

func (v *Validator) validateStore(config *AppConfig) {
	if b := config.Store.Backend; b != "" && !validBackends[strings.ToLower(b)] {
		v.addError("store.backend", fmt.Sprintf("invalid backend: %s", b))
	}
}

func (v *Validator) validateTasks(config *AppConfig) {
	for i, task := range config.Tasks {
		if strings.TrimSpace(task) == "" {
			v.addError(fmt.Sprintf("tasks[%d]", i), "task cannot be empty")
		}
	}
}

func (v *Validator) validateLogging(config *AppConfig) {
	if config.Logging.Level != "" && !validLevels[strings.ToLower(config.Logging.Level)] {
		v.addError("logging.level", fmt.Sprintf("invalid level: %s", config.Logging.Level))
	}
	if config.Logging.Format != "" && !validFormats[strings.ToLower(config.Logging.Format)] {
		v.addError("logging.format", fmt.Sprintf("invalid format: %s", config.Logging.Format))
	}
}

func (v *Validator) validateTracing(config *AppConfig) {
	t := config.Tracing
	if t.Exporter != "" && !validExporters[strings.ToLower(t.Exporter)] {
		v.addError("tracing.exporter", fmt.Sprintf("invalid exporter: %s", t.Exporter))
	}
	if t.Enabled && strings.EqualFold(t.Exporter, "otlp") && t.Endpoint == "" {
		v.addError("tracing.endpoint", "endpoint is required for otlp exporter")
	}
	if r := t.Rate(); r < 0 || r > 1 {
		v.addError("tracing.sample_rate", "sample_rate must be between 0 and 1")
	}
}
