// Package coverage builds region trees from llvm-cov export documents.
//
// Every function of an export becomes a Tree of Regions. The trees of one
// measurement, or of several accumulated measurements, form the forest of a
// Report, keyed by file and function name. Reports can be merged (repeated
// runs), diffed against a baseline (regressions), serialized and annotated.
package coverage

import "fmt"

// DuplicatePolicy decides what happens when an import brings a (file,
// function) key that the report already holds.
type DuplicatePolicy int

const (
	// DuplicateMerge adds the counts of the new tree to the existing one.
	DuplicateMerge DuplicatePolicy = iota
	// DuplicateOverwrite replaces the existing tree.
	DuplicateOverwrite
	// DuplicateReject fails the import with ErrDuplicateKey.
	DuplicateReject
)

var policyNames = map[DuplicatePolicy]string{
	DuplicateMerge:     "merge",
	DuplicateOverwrite: "overwrite",
	DuplicateReject:    "reject",
}

func (p DuplicatePolicy) String() string {
	if name, ok := policyNames[p]; ok {
		return name
	}
	return fmt.Sprintf("DuplicatePolicy(%d)", int(p))
}

// ParseDuplicatePolicy converts a configuration value into a policy.
func ParseDuplicatePolicy(s string) (DuplicatePolicy, error) {
	for p, name := range policyNames {
		if name == s {
			return p, nil
		}
	}
	return DuplicateMerge, fmt.Errorf("unknown duplicate policy %q", s)
}

// Option configures a Report.
type Option func(*Report)

// WithDuplicatePolicy sets how re-imported keys are handled.
func WithDuplicatePolicy(p DuplicatePolicy) Option {
	return func(r *Report) {
		r.policy = p
	}
}
