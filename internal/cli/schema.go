package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ppiankov/omen/internal/schema"
)

var schemaOut string

// schemaCmd prints the JSON schema of the report format
var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the JSON schema of omen reports",
	Long: `Print the JSON schema describing the reports written by scan, batch and analyze.

Example:
  omen schema
  omen schema --out report.schema.json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := schema.ReportSchema()
		if err != nil {
			return err
		}

		if schemaOut == "" {
			_, err = cmd.OutOrStdout().Write(data)
			return err
		}

		if err := os.WriteFile(schemaOut, data, 0644); err != nil {
			return fmt.Errorf("write schema: %w", err)
		}
		fmt.Fprintf(os.Stderr, "✓ Wrote schema: %s\n", schemaOut)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(schemaCmd)
	schemaCmd.Flags().StringVar(&schemaOut, "out", "", "write the schema to a file instead of stdout")
}
