package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/zjy-dev/covtree/internal/coverage"
)

// MarkdownReporter implements the Reporter interface by saving reports as markdown files.
type MarkdownReporter struct {
	outputDir string
}

// NewMarkdownReporter creates a new MarkdownReporter.
func NewMarkdownReporter(outputDir string) *MarkdownReporter {
	return &MarkdownReporter{
		outputDir: outputDir,
	}
}

// Save writes the diff to a new markdown file and returns its path.
func (r *MarkdownReporter) Save(d *Diff) (string, error) {
	if err := os.MkdirAll(r.outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}

	reportName := fmt.Sprintf("diff_%s_%d.md", stem(d.Current), time.Now().UnixNano())
	reportPath := filepath.Join(r.outputDir, reportName)

	var content strings.Builder
	fmt.Fprintf(&content, "# Coverage Diff: %s\n\n", filepath.Base(d.Current))
	fmt.Fprintf(&content, "**Baseline:** `%s`\n\n", d.Baseline)
	fmt.Fprintf(&content, "**Current:** `%s`\n\n", d.Current)

	content.WriteString("## Totals\n\n")
	content.WriteString("| | Functions | Regions | Covered | Percent |\n")
	content.WriteString("|---|---|---|---|---|\n")
	for _, row := range []struct {
		name   string
		totals coverage.Totals
	}{
		{"Baseline", d.BaselineTotals},
		{"Current", d.CurrentTotals},
	} {
		t := row.totals
		fmt.Fprintf(&content, "| %s | %d | %d | %d | %.2f%% |\n",
			row.name, t.Functions, t.Regions, t.Covered, t.Percent())
	}
	content.WriteString("\n")

	content.WriteString("## Changed Functions\n\n")
	if len(d.Changed) == 0 {
		content.WriteString("No function changed.\n\n")
	}
	for _, key := range d.Changed {
		fmt.Fprintf(&content, "- `%s` in `%s`\n", key.Function, key.File)
	}
	if len(d.Changed) > 0 {
		content.WriteString("\n")
	}

	if d.Annotated != "" {
		content.WriteString("## Annotated Sources\n\n")
		fmt.Fprintf(&content, "```\n%s```\n", d.Annotated)
	}

	if err := os.WriteFile(reportPath, []byte(content.String()), 0644); err != nil {
		return "", err
	}
	return reportPath, nil
}

func stem(path string) string {
	base := filepath.Base(path)
	if i := strings.IndexByte(base, '.'); i > 0 {
		base = base[:i]
	}
	return base
}
