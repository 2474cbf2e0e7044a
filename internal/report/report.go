package report

import "github.com/zjy-dev/covtree/internal/coverage"

// Diff is the outcome of comparing a measurement against a baseline.
type Diff struct {
	Baseline string
	Current  string
	// Changed lists the functions whose counts differ.
	Changed []coverage.ReportKey
	// Totals of the baseline and current measurement before diffing.
	BaselineTotals coverage.Totals
	CurrentTotals  coverage.Totals
	// Annotated is the annotated rendering of the difference, if any.
	Annotated string
}

// Reporter defines the interface for saving diff reports.
type Reporter interface {
	Save(d *Diff) (string, error)
}
