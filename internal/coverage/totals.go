package coverage

import "fmt"

// Totals aggregates a forest the way llvm-cov reports its "totals" block.
// Only regions of kind Code are counted.
type Totals struct {
	Functions  int `json:"functions"`
	Regions    int `json:"regions"`
	Covered    int `json:"covered"`
	NotCovered int `json:"notcovered"`
}

// Percent returns the share of covered Code regions, 0-100.
func (t Totals) Percent() float64 {
	if t.Regions == 0 {
		return 0
	}
	return float64(t.Covered) * 100 / float64(t.Regions)
}

// Totals computes the aggregate counters of the forest.
func (m FilenameFunctionMapping) Totals() Totals {
	var totals Totals
	for _, functions := range m {
		for _, tree := range functions {
			totals.Functions++
			for _, n := range tree.nodes {
				if n.region.Kind != KindCode {
					continue
				}
				totals.Regions++
				if n.region.IsCovered() {
					totals.Covered++
				} else {
					totals.NotCovered++
				}
			}
		}
	}
	return totals
}

// sanityCheck compares a freshly built forest against the totals block of
// the document it was built from.
func sanityCheck(name string, forest FilenameFunctionMapping, reported exportTotals) error {
	got := forest.Totals()
	checks := []struct {
		what           string
		counted, total int
	}{
		{"functions", got.Functions, reported.Functions.Count},
		{"regions", got.Regions, reported.Regions.Count},
		{"covered regions", got.Covered, reported.Regions.Covered},
		{"not covered regions", got.NotCovered, reported.Regions.NotCovered},
	}
	for _, c := range checks {
		if c.counted != c.total {
			return fmt.Errorf("%w: %s: counted %d %s, document reports %d",
				ErrSanityCheck, name, c.counted, c.what, c.total)
		}
	}
	return nil
}
