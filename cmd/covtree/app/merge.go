package app

import (
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/zjy-dev/covtree/internal/coverage"
	"github.com/zjy-dev/covtree/internal/logger"
)

// NewMergeCommand creates the "merge" subcommand.
func NewMergeCommand() *cobra.Command {
	var (
		output string
		jobs   int
	)

	cmd := &cobra.Command{
		Use:   "merge <report> <report>...",
		Short: "Accumulate the counts of several measurements of one binary.",
		Long: `Merge reports of repeated runs of the same instrumented binary by adding
their counts region by region. Files are matched by basename, or by the
shortest path suffix that tells apart files sharing a basename, so reports
measured on checkouts at different paths can be merged.

Reports are loaded in parallel and merged one after another; the merge
fails without output if any report does not line up with the first.

Examples:
  covtree merge run1.json run2.json run3.json -o total.json`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if jobs < 1 {
				return fmt.Errorf("invalid --jobs %d: must be at least 1", jobs)
			}
			reports := make([]*coverage.Report, len(args))

			g := new(errgroup.Group)
			g.SetLimit(jobs)
			for i, path := range args {
				g.Go(func() error {
					r, err := loadReport(path, current.policy)
					if err != nil {
						return err
					}
					reports[i] = r
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}

			merged := reports[0]
			for _, r := range reports[1:] {
				if err := merged.Merge(r); err != nil {
					return err
				}
			}
			logger.Info("Merged %d reports: %d functions", len(reports), merged.Totals().Functions)

			data, err := merged.ToJSON()
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), output, data)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default stdout)")
	cmd.Flags().IntVarP(&jobs, "jobs", "j", 4, "Reports loaded in parallel")

	return cmd
}
