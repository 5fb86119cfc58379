package config

import (
	"encoding/json"

	"github.com/felixgeelhaar/sgr-go/infrastructure/schema"
)

const durationPattern = `^([0-9]+(\.[0-9]+)?(ns|us|µs|ms|s|m|h))+$`

// GenerateSchema generates a JSON Schema for the application configuration.
func GenerateSchema() *schema.JSONSchema {
	return &schema.JSONSchema{
		Schema:               "https://json-schema.org/draft/2020-12/schema",
		ID:                   "https://github.com/felixgeelhaar/sgr-go/sgr-config.schema.json",
		Title:                "SGR Configuration",
		Description:          "Configuration schema for the sgr reasoning agent",
		Type:                 "object",
		AdditionalProperties: false,
		Properties: map[string]*schema.JSONSchema{
			"name": {
				Type:        "string",
				Description: "A human-readable name for this configuration",
			},
			"version": {
				Type:        "string",
				Description: "The configuration schema version",
				Default:     "1.0",
			},
			"provider":   providerSchema(),
			"agent":      agentSchema(),
			"resilience": resilienceSchema(),
			"catalog":    catalogSchema(),
			"store": {
				Type:                 "object",
				Description:          "Record store backend; records never outlive the process",
				AdditionalProperties: false,
				Properties: map[string]*schema.JSONSchema{
					"backend": {
						Type:    "string",
						Enum:    []string{"memory", "badger"},
						Default: "memory",
					},
				},
			},
			"tasks": {
				Type:        "array",
				Description: "Tasks processed in order when no task is given on the command line",
				Items:       &schema.JSONSchema{Type: "string"},
			},
			"logging": loggingSchema(),
			"tracing": tracingSchema(),
			"metrics": {
				Type:                 "object",
				AdditionalProperties: false,
				Properties: map[string]*schema.JSONSchema{
					"enabled": {Type: "boolean", Description: "Collect run metrics and print a summary"},
				},
			},
		},
	}
}

// GenerateSchemaJSON returns the indented configuration schema.
func GenerateSchemaJSON() ([]byte, error) {
	return json.MarshalIndent(GenerateSchema(), "", "  ")
}

func duration(description, def string) *schema.JSONSchema {
	return &schema.JSONSchema{
		Type:        "string",
		Description: description,
		Pattern:     durationPattern,
		Default:     def,
	}
}

func providerSchema() *schema.JSONSchema {
	return &schema.JSONSchema{
		Type:                 "object",
		Description:          "Model provider selection",
		AdditionalProperties: false,
		Properties: map[string]*schema.JSONSchema{
			"name": {
				Type:    "string",
				Enum:    []string{"openai", "openrouter", "ollama"},
				Default: "openai",
			},
			"api_key":  {Type: "string", Description: "API key for hosted providers"},
			"base_url": {Type: "string", Description: "Overrides the provider endpoint", Format: "uri"},
			"model":    {Type: "string", Description: "Model name"},
			"timeout":  duration("HTTP request timeout", "2m0s"),
			"strict":   {Type: "boolean", Description: "Send the decision schema in strict mode"},
		},
	}
}

func agentSchema() *schema.JSONSchema {
	return &schema.JSONSchema{
		Type:                 "object",
		Description:          "Reasoning loop settings",
		AdditionalProperties: false,
		Properties: map[string]*schema.JSONSchema{
			"max_steps": {
				Type:        "integer",
				Description: "Step budget of one run",
				Minimum:     schema.FloatPtr(1),
				Default:     20,
			},
			"max_tokens": {
				Type:        "integer",
				Description: "Completion size limit of one decision",
				Minimum:     schema.FloatPtr(1),
				Default:     1000,
			},
			"temperature": {
				Type:    "number",
				Minimum: schema.FloatPtr(0),
				Maximum: schema.FloatPtr(2),
			},
			"decode_retries": {
				Type:        "integer",
				Description: "Attempts for a decision that fails to decode",
				Minimum:     schema.FloatPtr(1),
				Default:     1,
			},
			"system_prompt": {Type: "string", Description: "Replaces the default instructions; the product catalog is still appended"},
		},
	}
}

func resilienceSchema() *schema.JSONSchema {
	return &schema.JSONSchema{
		Type:                 "object",
		AdditionalProperties: false,
		Properties: map[string]*schema.JSONSchema{
			"timeout":     duration("Bound on one decision including retries", "2m0s"),
			"retry_delay": duration("First delay between decode retries", "200ms"),
			"circuit_breaker": {
				Type:                 "object",
				AdditionalProperties: false,
				Properties: map[string]*schema.JSONSchema{
					"threshold": {Type: "integer", Minimum: schema.FloatPtr(0), Default: 5},
					"timeout":   duration("How long the circuit stays open", "30s"),
				},
			},
		},
	}
}

func catalogSchema() *schema.JSONSchema {
	return &schema.JSONSchema{
		Type:        "array",
		Description: "Products that may be invoiced",
		MinItems:    schema.IntPtr(1),
		Items: &schema.JSONSchema{
			Type:                 "object",
			Required:             []string{"sku", "name", "price"},
			AdditionalProperties: false,
			Properties: map[string]*schema.JSONSchema{
				"sku":   {Type: "string"},
				"name":  {Type: "string"},
				"price": {Type: "number", Minimum: schema.FloatPtr(0)},
			},
		},
	}
}

func loggingSchema() *schema.JSONSchema {
	return &schema.JSONSchema{
		Type:                 "object",
		AdditionalProperties: false,
		Properties: map[string]*schema.JSONSchema{
			"level": {
				Type:    "string",
				Enum:    []string{"debug", "info", "warn", "error"},
				Default: "warn",
			},
			"format": {
				Type:    "string",
				Enum:    []string{"json", "console"},
				Default: "console",
			},
		},
	}
}

func tracingSchema() *schema.JSONSchema {
	return &schema.JSONSchema{
		Type:                 "object",
		AdditionalProperties: false,
		Properties: map[string]*schema.JSONSchema{
			"enabled": {Type: "boolean"},
			"exporter": {
				Type:    "string",
				Enum:    []string{"otlp", "stdout", "noop"},
				Default: "noop",
			},
			"endpoint": {Type: "string", Description: "OTLP collector endpoint"},
			"insecure": {Type: "boolean"},
			"sample_rate": {
				Type:    "number",
				Minimum: schema.FloatPtr(0),
				Maximum: schema.FloatPtr(1),
				Default: 1.0,
			},
		},
	}
}
