package app

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/zjy-dev/covtree/internal/annotate"
	"github.com/zjy-dev/covtree/internal/coverage"
)

// loadReport opens an archive, an llvm-cov export document, or a report
// previously written by `covtree export`.
func loadReport(path string, policy coverage.DuplicatePolicy) (*coverage.Report, error) {
	opt := coverage.WithDuplicatePolicy(policy)

	lower := strings.ToLower(path)
	for _, ext := range []string{".zip", ".tar", ".tar.xz", ".txz"} {
		if strings.HasSuffix(lower, ext) {
			return coverage.FromReport(path, opt)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read report: %w", err)
	}
	if coverage.IsExportDocument(data) {
		r := coverage.NewReport(path, opt)
		if err := r.ImportDocument(filepath.Base(path), data); err != nil {
			return nil, err
		}
		return r, nil
	}
	return coverage.LoadJSON(path, data, opt)
}

// writeOutput writes data to path, or to stdout when path is empty or "-".
func writeOutput(stdout io.Writer, path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func newAnnotator(sourceDir string, color bool) (*annotate.Annotator, error) {
	sources, err := annotate.NewOSSourceReader(sourceDir, current.cfg.SourceCacheSize)
	if err != nil {
		return nil, err
	}
	return annotate.New(sources, annotate.Options{Color: color, TabSize: current.cfg.TabSize}), nil
}
