package app

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/zjy-dev/covtree/internal/annotate"
	"github.com/zjy-dev/covtree/internal/logger"
	"github.com/zjy-dev/covtree/internal/report"
)

// NewDiffCommand creates the "diff" subcommand.
func NewDiffCommand() *cobra.Command {
	var (
		output    string
		show      bool
		unified   bool
		sourceDir string
		context   int
		reportDir string
	)

	cmd := &cobra.Command{
		Use:   "diff <baseline> <current>",
		Short: "Subtract the counts of a baseline report from another report.",
		Long: `Subtract the counts of <baseline> from <current> region by region and list
the functions whose counts changed. Both reports must have been produced by
the same binary: the region trees of every function have to line up.

Negative counts mean the baseline executed a region more often.

Examples:
  covtree diff before.json after.json
  covtree diff before.json after.json --show --source-dir ~/src/project
  covtree diff before.json after.json --unified
  covtree diff before.json after.json --report-dir reports/`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("source-dir") {
				sourceDir = current.cfg.SourceDir
			}

			baseline, err := loadReport(args[0], current.policy)
			if err != nil {
				return err
			}
			measured, err := loadReport(args[1], current.policy)
			if err != nil {
				return err
			}
			summary := &report.Diff{
				Baseline:       args[0],
				Current:        args[1],
				BaselineTotals: baseline.Totals(),
				CurrentTotals:  measured.Totals(),
			}

			var annotator *annotate.Annotator
			if show || unified {
				annotator, err = newAnnotator(sourceDir, useColor(current.cfg.Color, os.Stdout) && !unified)
				if err != nil {
					return err
				}
			}

			var before, after string
			if unified {
				if before, err = annotator.Show(baseline); err != nil {
					return err
				}
				if after, err = annotator.Show(measured); err != nil {
					return err
				}
			}

			if err := measured.Diff(baseline); err != nil {
				return err
			}

			summary.Changed = measured.Changed()
			logger.Info("%d of %d functions changed", len(summary.Changed), summary.CurrentTotals.Functions)

			out := cmd.OutOrStdout()
			switch {
			case unified:
				text, err := annotate.DiffShow(args[0], args[1], before, after, context)
				if err != nil {
					return err
				}
				summary.Annotated = text
				fmt.Fprint(out, text)
			case show:
				text, err := annotator.Show(measured)
				if err != nil {
					return err
				}
				summary.Annotated = text
				fmt.Fprint(out, text)
			case output == "":
				for _, key := range summary.Changed {
					fmt.Fprintln(out, key)
				}
			}

			if reportDir != "" {
				path, err := report.NewMarkdownReporter(reportDir).Save(summary)
				if err != nil {
					return fmt.Errorf("failed to save diff report: %w", err)
				}
				logger.Info("Diff report saved to %s", path)
			}

			if output != "" {
				data, err := measured.ToJSON()
				if err != nil {
					return err
				}
				return writeOutput(out, output, data)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the difference report as JSON")
	cmd.Flags().BoolVar(&show, "show", false, "Annotate the sources with the count differences")
	cmd.Flags().BoolVar(&unified, "unified", false, "Print a unified diff of both annotated renderings")
	cmd.Flags().StringVar(&sourceDir, "source-dir", ".", "Checkout the coverage was measured on")
	cmd.Flags().IntVar(&context, "context", 3, "Context lines of the unified diff")
	cmd.Flags().StringVar(&reportDir, "report-dir", "", "Also save a markdown summary into this directory")
	cmd.MarkFlagsMutuallyExclusive("show", "unified")

	return cmd
}
