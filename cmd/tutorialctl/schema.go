package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gonewx/clinicdesk/pkg/config"
)

var schemaOut string

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the JSON Schema of the step catalog",
	Args:  cobra.NoArgs,
	RunE:  runSchema,
}

func runSchema(cmd *cobra.Command, args []string) error {
	data, err := config.GenerateStepCatalogSchema()
	if err != nil {
		return err
	}
	if schemaOut == "" {
		_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return err
	}
	if err := os.WriteFile(schemaOut, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("write schema: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ schema written to %s\n", schemaOut)
	return nil
}

func init() {
	schemaCmd.Flags().StringVarP(&schemaOut, "out", "o", "", "write the schema to a file instead of stdout")
	rootCmd.AddCommand(schemaCmd)
}
