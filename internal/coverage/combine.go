package coverage

import (
	"fmt"
	"iter"
)

// lockstep walks two trees breadth first in lock step. It stops at the end of the
// shorter one.
func lockstep(a, b *Tree) iter.Seq2[RegionID, RegionID] {
	return func(yield func(RegionID, RegionID) bool) {
		nextB, stop := iter.Pull(b.BreadthFirst(RootID))
		defer stop()
		for idA := range a.BreadthFirst(RootID) {
			idB, ok := nextB()
			if !ok || !yield(idA, idB) {
				return
			}
		}
	}
}

// CheckIsomorphic verifies that other has the same shape as t: same size and,
// for every pair of the breadth-first zip, equal regions with the same number
// of children.
func (t *Tree) CheckIsomorphic(other *Tree) error {
	if t.Len() != other.Len() {
		return fmt.Errorf("%w: %s has %d regions, other tree has %d",
			ErrStructuralMismatch, t.Root().Function, t.Len(), other.Len())
	}
	for a, b := range lockstep(t, other) {
		ra, rb := t.nodes[a].region, other.nodes[b].region
		if !ra.Equal(rb) {
			return fmt.Errorf("%w: %s differs from %s in %s",
				ErrStructuralMismatch, ra, rb, ra.Function)
		}
		if len(t.nodes[a].children) != len(other.nodes[b].children) {
			return fmt.Errorf("%w: %s has %d children, other has %d in %s",
				ErrStructuralMismatch, ra, len(t.nodes[a].children), len(other.nodes[b].children), ra.Function)
		}
	}
	return nil
}

// Merge adds the counts of other to t node by node. Nothing is modified
// unless both trees are isomorphic.
func (t *Tree) Merge(other *Tree) error {
	return t.combine(other, func(a, b int64) int64 { return a + b })
}

// Diff subtracts the counts of other from t node by node. Nothing is modified
// unless both trees are isomorphic.
func (t *Tree) Diff(other *Tree) error {
	return t.combine(other, func(a, b int64) int64 { return a - b })
}

func (t *Tree) combine(other *Tree, op func(a, b int64) int64) error {
	if err := t.CheckIsomorphic(other); err != nil {
		return err
	}
	for a, b := range lockstep(t, other) {
		t.nodes[a].region.Count = op(t.nodes[a].region.Count, other.nodes[b].region.Count)
	}
	return nil
}

// Equal reports structural equality, ignoring counts.
func (t *Tree) Equal(other *Tree) bool {
	return t.CheckIsomorphic(other) == nil
}

// IsIdentical reports structural equality including counts.
func (t *Tree) IsIdentical(other *Tree) bool {
	if !t.Equal(other) {
		return false
	}
	for a, b := range lockstep(t, other) {
		if t.nodes[a].region.Count != other.nodes[b].region.Count {
			return false
		}
	}
	return true
}

// IsZero reports whether every count in the tree is zero, as after diffing a
// tree against an identical measurement.
func (t *Tree) IsZero() bool {
	for _, n := range t.nodes {
		if n.region.Count != 0 {
			return false
		}
	}
	return true
}
