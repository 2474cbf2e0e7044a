package app

import (
	"github.com/spf13/cobra"
)

// NewExportCommand creates the "export" subcommand.
func NewExportCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export <report>",
		Short: "Write the region forest of a report as JSON.",
		Long: `Write the file -> function -> region tree forest of a report as JSON.

The format is covtree's own and differs from the llvm-cov export format.
Exported files can be passed back to every covtree command.

Examples:
  covtree export results.zip -o results.covtree.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := loadReport(args[0], current.policy)
			if err != nil {
				return err
			}
			data, err := report.ToJSON()
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), output, data)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default stdout)")

	return cmd
}
