package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	infraconfig "github.com/felixgeelhaar/sgr-go/infrastructure/config"
	"github.com/felixgeelhaar/sgr-go/infrastructure/schema"
)

// schemaOptions holds options for the schema command.
type schemaOptions struct {
	outputPath string
	strict     bool
	config     bool
}

// newSchemaCmd creates the schema command.
func (a *App) newSchemaCmd() *cobra.Command {
	opts := &schemaOptions{}

	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the decision or configuration JSON schema",
		Long: `Print the JSON Schema the model must answer with at every step.

With --strict the schema is rewritten for strict structured-output mode:
every property is required and no additional properties are allowed.
With --config-schema the configuration file schema is printed instead, for IDE
validation and autocompletion.

Examples:
  # Print the decision schema
  sgr schema

  # Print the strict decision schema
  sgr schema --strict

  # Export the configuration schema to a file
  sgr schema --config-schema -o sgr.schema.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.exportSchema(opts)
		},
	}

	cmd.Flags().StringVarP(&opts.outputPath, "output", "o", "", "Output file path (default: stdout)")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "Print the strict decision schema")
	cmd.Flags().BoolVar(&opts.config, "config-schema", false, "Print the configuration schema")
	cmd.MarkFlagsMutuallyExclusive("strict", "config-schema")

	return cmd
}

// exportSchema writes the selected schema to stdout or a file.
func (a *App) exportSchema(opts *schemaOptions) error {
	var (
		data []byte
		err  error
	)
	if opts.config {
		data, err = infraconfig.GenerateSchemaJSON()
	} else {
		data, err = decisionSchemaJSON(opts.strict)
	}
	if err != nil {
		return fmt.Errorf("failed to generate schema: %w", err)
	}

	if opts.outputPath == "" {
		_, _ = fmt.Fprintln(a.stdout, string(data))
		return nil
	}

	// Write to file with restrictive permissions (G306)
	if err := os.WriteFile(opts.outputPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write schema file: %w", err)
	}

	_, _ = fmt.Fprintf(a.stdout, "Schema exported to %s\n", opts.outputPath)
	return nil
}

func decisionSchemaJSON(strict bool) ([]byte, error) {
	m, err := schema.NextStepMap(strict)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(m, "", "  ")
}
