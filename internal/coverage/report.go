package coverage

import (
	"cmp"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/zeebo/blake3"

	"github.com/zjy-dev/covtree/internal/logger"
)

// Document records one export document imported into a report.
type Document struct {
	Name   string `json:"name"`
	Digest string `json:"blake3"`
	Totals Totals `json:"totals"`
}

// Report owns the file -> function -> region tree forest of one measurement
// or of the accumulation of several.
type Report struct {
	path      string
	tree      FilenameFunctionMapping
	documents []Document
	policy    DuplicatePolicy
}

// NewReport creates an empty report. path only identifies the report.
func NewReport(path string, opts ...Option) *Report {
	r := &Report{
		path: path,
		tree: make(FilenameFunctionMapping),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// FromJSON builds a report from a single llvm-cov export document.
func FromJSON(path string, opts ...Option) (*Report, error) {
	r := NewReport(path, opts...)
	if err := r.ImportFile(path); err != nil {
		return nil, err
	}
	return r, nil
}

// Path returns the file the report was created from.
func (r *Report) Path() string {
	return r.path
}

// Tree returns the forest of the report.
func (r *Report) Tree() FilenameFunctionMapping {
	return r.tree
}

// Documents returns the imported documents in import order.
func (r *Report) Documents() []Document {
	return slices.Clone(r.documents)
}

// Totals aggregates the whole forest.
func (r *Report) Totals() Totals {
	return r.tree.Totals()
}

// ImportFile reads and imports one export document.
func (r *Report) ImportFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read export document: %w", err)
	}
	return r.ImportDocument(filepath.Base(path), data)
}

// ImportDocument parses an export document, checks the result against the
// document's own totals and folds it into the report. On error the report
// is left unchanged.
func (r *Report) ImportDocument(name string, data []byte) error {
	doc, err := decodeExport(data)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}

	forest, err := doc.buildForest()
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	if err := sanityCheck(name, forest, doc.Data[0].Totals); err != nil {
		return err
	}

	sum := blake3.Sum256(data)
	digest := hex.EncodeToString(sum[:])
	for _, d := range r.documents {
		if d.Digest == digest {
			logger.Warn("Document %s is identical to already imported %s", name, d.Name)
			break
		}
	}

	if err := r.fold(name, forest); err != nil {
		return err
	}

	totals := forest.Totals()
	r.documents = append(r.documents, Document{Name: name, Digest: digest, Totals: totals})
	logger.Debug("Imported %s: %d functions, %d code regions", name, totals.Functions, totals.Regions)
	return nil
}

// fold adds a validated forest to the report according to the duplicate
// policy. All conflicts are detected before the report is touched.
func (r *Report) fold(name string, forest FilenameFunctionMapping) error {
	for _, file := range forest.Files() {
		for _, function := range forest[file].Functions() {
			existing, ok := r.tree.Get(file, function)
			if !ok {
				continue
			}
			switch r.policy {
			case DuplicateReject:
				return fmt.Errorf("%w: %s re-imports %s in %s", ErrDuplicateKey, name, function, file)
			case DuplicateMerge:
				if err := existing.CheckIsomorphic(forest[file][function]); err != nil {
					return fmt.Errorf("%s: cannot merge %s in %s: %w", name, function, file, err)
				}
			}
		}
	}

	for file, functions := range forest {
		for function, tree := range functions {
			existing, ok := r.tree.Get(file, function)
			switch {
			case !ok:
				r.tree.Set(file, function, tree)
			case r.policy == DuplicateMerge:
				if err := existing.Merge(tree); err != nil {
					return err
				}
			default:
				logger.Warn("%s overwrites %s in %s", name, function, file)
				r.tree.Set(file, function, tree)
			}
		}
	}
	return nil
}

type treePair struct {
	key         ReportKey
	mine, other *Tree
}

// pair matches the trees of both reports by ReportKey. The key sets must be
// identical and every pair isomorphic.
func (r *Report) pair(other *Report) ([]treePair, error) {
	mine, theirs := r.tree.Index(), other.tree.Index()

	for key := range theirs {
		if _, ok := mine[key]; !ok {
			return nil, fmt.Errorf("%w: %s only exists in %s", ErrStructuralMismatch, key, other.path)
		}
	}

	keys := make([]ReportKey, 0, len(mine))
	for key := range mine {
		keys = append(keys, key)
	}
	slices.SortFunc(keys, func(a, b ReportKey) int {
		return cmp.Or(cmp.Compare(a.File, b.File), cmp.Compare(a.Function, b.Function))
	})

	pairs := make([]treePair, 0, len(keys))
	for _, key := range keys {
		theirTree, ok := theirs[key]
		if !ok {
			return nil, fmt.Errorf("%w: %s only exists in %s", ErrStructuralMismatch, key, r.path)
		}
		if err := mine[key].CheckIsomorphic(theirTree); err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
		pairs = append(pairs, treePair{key: key, mine: mine[key], other: theirTree})
	}
	return pairs, nil
}

// Merge adds the counts of other to r. Files are matched by ReportKey. The
// report is only modified if every tree of both reports lines up.
func (r *Report) Merge(other *Report) error {
	pairs, err := r.pair(other)
	if err != nil {
		return fmt.Errorf("failed to merge %s into %s: %w", other.path, r.path, err)
	}
	for _, p := range pairs {
		if err := p.mine.Merge(p.other); err != nil {
			return fmt.Errorf("%s: %w", p.key, err)
		}
	}
	r.documents = append(r.documents, other.documents...)
	return nil
}

// Diff subtracts the counts of baseline from r, leaving the per-region
// change. Files are matched by ReportKey.
func (r *Report) Diff(baseline *Report) error {
	pairs, err := r.pair(baseline)
	if err != nil {
		return fmt.Errorf("failed to diff %s against %s: %w", r.path, baseline.path, err)
	}
	for _, p := range pairs {
		if err := p.mine.Diff(p.other); err != nil {
			return fmt.Errorf("%s: %w", p.key, err)
		}
	}
	return nil
}

// Equal reports whether both forests have the same shape, matching files by
// ReportKey and ignoring counts.
func (r *Report) Equal(other *Report) bool {
	_, err := r.pair(other)
	return err == nil
}

// IsIdentical is Equal plus equal counts everywhere.
func (r *Report) IsIdentical(other *Report) bool {
	pairs, err := r.pair(other)
	if err != nil {
		return false
	}
	for _, p := range pairs {
		if !p.mine.IsIdentical(p.other) {
			return false
		}
	}
	return true
}

// Changed returns the keys whose trees hold a non-zero count. After Diff
// these are the functions whose coverage changed.
func (r *Report) Changed() []ReportKey {
	var keys []ReportKey
	files := r.tree.keyFiles()
	for _, file := range r.tree.Files() {
		for _, function := range r.tree[file].Functions() {
			if !r.tree[file][function].IsZero() {
				keys = append(keys, ReportKey{File: files[file], Function: function})
			}
		}
	}
	return keys
}
