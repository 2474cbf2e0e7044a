package app

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/zjy-dev/covtree/internal/config"
)

// NewShowCommand creates the "show" subcommand.
func NewShowCommand() *cobra.Command {
	var (
		sourceDir string
		color     string
	)

	cmd := &cobra.Command{
		Use:   "show <report>",
		Short: "Print the sources annotated with region counts.",
		Long: `Print every file of the report with each line prefixed by its line
number and the dominant count of the regions spanning it.

Lines without a count are outside of any function. With color enabled,
code that was never executed is highlighted.

Examples:
  covtree show coverage.json --source-dir ~/src/project
  covtree show results.zip --color always | less -R`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("source-dir") {
				sourceDir = current.cfg.SourceDir
			}
			if !cmd.Flags().Changed("color") {
				color = current.cfg.Color
			}
			if err := config.ValidateColor(color); err != nil {
				return err
			}

			report, err := loadReport(args[0], current.policy)
			if err != nil {
				return err
			}
			annotator, err := newAnnotator(sourceDir, useColor(color, os.Stdout))
			if err != nil {
				return err
			}
			out, err := annotator.Show(report)
			if err != nil {
				return fmt.Errorf("failed to annotate %s: %w", args[0], err)
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), out)
			return err
		},
	}

	cmd.Flags().StringVar(&sourceDir, "source-dir", ".", "Checkout the coverage was measured on")
	cmd.Flags().StringVar(&color, "color", "auto", "Highlight output (auto, always, never)")

	return cmd
}
