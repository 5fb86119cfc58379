package config

import (
	"encoding/json"
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

func TestDefault(t *testing.T) {
	t.Parallel()

	cfg := Default()
	if cfg.Provider.Name != "openai" {
		t.Errorf("Provider.Name = %s, want openai", cfg.Provider.Name)
	}
	if cfg.Agent.MaxSteps != 20 || cfg.Agent.MaxTokens != 1000 || cfg.Agent.DecodeRetries != 1 {
		t.Errorf("Agent = %+v", cfg.Agent)
	}
	if len(cfg.Catalog) != 3 || cfg.Catalog[0].SKU != "SKU-205" {
		t.Errorf("Catalog = %+v", cfg.Catalog)
	}
	if cfg.Tracing.Rate() != 1.0 {
		t.Errorf("Rate() = %v, want 1.0", cfg.Tracing.Rate())
	}
}

func TestAppConfig_Products(t *testing.T) {
	t.Parallel()

	cfg := &AppConfig{Catalog: []ProductConfig{{SKU: "X-1", Name: "Widget", Price: 9.5}}}
	products := cfg.Products()
	if len(products) != 1 || products[0].SKU != "X-1" || products[0].Price != 9.5 {
		t.Errorf("Products() = %+v", products)
	}

	back := FromProducts(products)
	if back[0] != cfg.Catalog[0] {
		t.Errorf("FromProducts() = %+v", back)
	}
}

func TestDuration_JSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		want    time.Duration
		wantErr bool
	}{
		{name: "string", input: `"30s"`, want: 30 * time.Second},
		{name: "minutes", input: `"2m"`, want: 2 * time.Minute},
		{name: "null", input: `null`, want: 0},
		{name: "invalid", input: `"soon"`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var d Duration
			err := json.Unmarshal([]byte(tt.input), &d)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Unmarshal() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && d.Duration() != tt.want {
				t.Errorf("Duration() = %v, want %v", d.Duration(), tt.want)
			}
		})
	}

	out, err := json.Marshal(Duration(90 * time.Second))
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if string(out) != `"1m30s"` {
		t.Errorf("Marshal() = %s, want \"1m30s\"", out)
	}
}

func TestDuration_YAML(t *testing.T) {
	t.Parallel()

	var v struct {
		Timeout Duration `yaml:"timeout"`
	}
	if err := yaml.Unmarshal([]byte("timeout: 45s\n"), &v); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if v.Timeout.Duration() != 45*time.Second {
		t.Errorf("Timeout = %v, want 45s", v.Timeout.Duration())
	}

	out, err := yaml.Marshal(v)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if string(out) != "timeout: 45s\n" {
		t.Errorf("Marshal() = %q", out)
	}

	if err := yaml.Unmarshal([]byte("timeout: later\n"), &v); err == nil {
		t.Error("expected error for invalid duration")
	}
}
