package app

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/zjy-dev/covtree/internal/coverage"
)

// NewStatsCommand creates the "stats" subcommand.
func NewStatsCommand() *cobra.Command {
	var perFile bool

	cmd := &cobra.Command{
		Use:   "stats <report>",
		Short: "Print region coverage totals of a report.",
		Long: `Print the number of functions and code regions of a report and how many of
the regions were executed, followed by the documents the report was built
from and their BLAKE3 digests.

Examples:
  covtree stats results.zip
  covtree stats coverage.json --per-file`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := loadReport(args[0], current.policy)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "FILE\tFUNCTIONS\tREGIONS\tCOVERED\tPERCENT")
			if perFile {
				forest := report.Tree()
				for _, file := range forest.Files() {
					t := coverage.FilenameFunctionMapping{file: forest[file]}.Totals()
					fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%.2f%%\n", file, t.Functions, t.Regions, t.Covered, t.Percent())
				}
			}
			t := report.Totals()
			fmt.Fprintf(w, "TOTAL\t%d\t%d\t%d\t%.2f%%\n", t.Functions, t.Regions, t.Covered, t.Percent())
			if err := w.Flush(); err != nil {
				return err
			}

			if docs := report.Documents(); len(docs) > 0 {
				fmt.Fprintln(cmd.OutOrStdout())
				for _, d := range docs {
					fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", d.Digest, d.Name)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&perFile, "per-file", false, "Print a row per source file")

	return cmd
}
