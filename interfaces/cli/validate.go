package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	infraconfig "github.com/felixgeelhaar/sgr-go/infrastructure/config"
)

// validateOptions holds options for the validate command.
type validateOptions struct {
	strict bool
}

// newValidateCmd creates the validate command.
func (a *App) newValidateCmd() *cobra.Command {
	opts := &validateOptions{}

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a configuration file",
		Long: `Validate an sgr configuration file for correctness.

This command checks:
  - File format (YAML or JSON)
  - Unknown fields, field types and constraints
  - Catalog entries (unique SKUs, non-negative prices)
  - Environment variable references (in strict mode)
  - Provider construction, after environment overrides

Examples:
  # Validate a configuration file
  sgr validate -c sgr.yaml

  # Strict validation (fail on missing env vars)
  sgr validate -c sgr.yaml --strict`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.validateConfig(opts)
		},
	}

	cmd.Flags().BoolVar(&opts.strict, "strict", false, "Enable strict validation (fail on missing env vars)")

	return cmd
}

// validateConfig validates the configuration file.
func (a *App) validateConfig(opts *validateOptions) error {
	if a.configPath == "" {
		return fmt.Errorf("configuration file path is required (-c flag)")
	}

	loader := infraconfig.NewLoaderWithOptions(
		infraconfig.WithLookup(a.lookup),
		infraconfig.WithValidation(true),
		infraconfig.WithStrictEnv(opts.strict),
	)
	config, err := loader.LoadFile(a.configPath)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	if err := infraconfig.ApplyEnv(config, a.lookup); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	// Additional validation via the builder
	result, err := infraconfig.NewBuilder(config).Build()
	if err != nil {
		return fmt.Errorf("configuration build failed: %w", err)
	}

	fmt.Fprintf(a.stdout, "✓ Configuration is valid\n")
	if config.Name != "" {
		fmt.Fprintf(a.stdout, "  Name: %s\n", config.Name)
	}
	if config.Version != "" {
		fmt.Fprintf(a.stdout, "  Version: %s\n", config.Version)
	}

	// Summary
	fmt.Fprintf(a.stdout, "\nConfiguration summary:\n")
	fmt.Fprintf(a.stdout, "  Provider: %s", result.Provider.Name())
	if config.Provider.Model != "" {
		fmt.Fprintf(a.stdout, " (%s)", config.Provider.Model)
	}
	fmt.Fprintln(a.stdout)
	fmt.Fprintf(a.stdout, "  Max steps: %d\n", result.MaxSteps)
	fmt.Fprintf(a.stdout, "  Decode retries: %d\n", config.Agent.DecodeRetries)

	fmt.Fprintf(a.stdout, "  Catalog: %d products\n", len(result.Products))
	for _, p := range result.Products {
		fmt.Fprintf(a.stdout, "    - %s %s (%g)\n", p.SKU, p.Name, p.Price)
	}

	if len(result.Tasks) > 0 {
		fmt.Fprintf(a.stdout, "  Tasks: %d\n", len(result.Tasks))
	}

	if config.Tracing.Enabled {
		fmt.Fprintf(a.stdout, "  Tracing: enabled (%s)\n", config.Tracing.Exporter)
	}
	if config.Metrics.Enabled {
		fmt.Fprintf(a.stdout, "  Metrics: enabled\n")
	}

	return nil
}
