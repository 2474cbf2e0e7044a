package coverage

import (
	"fmt"
	"iter"
	"slices"
)

// RegionID addresses a region inside its Tree.
type RegionID int

// NoRegion is returned where a region is absent, e.g. as the parent of a root.
const NoRegion RegionID = -1

// RootID is the ID of the region a Tree was created with.
const RootID RegionID = 0

type node struct {
	region   Region
	parent   RegionID
	children []RegionID
}

// Tree is a containment tree of regions stored in an arena. Nodes refer to
// their parent and children by index, so the parent link never owns
// anything and serialization can simply skip it.
//
// Children of every node are kept sorted by start position and are strict
// subregions of their parent. A Tree is not safe for concurrent mutation.
type Tree struct {
	nodes []node
}

// NewTree creates a tree holding only root.
func NewTree(root Region) *Tree {
	return &Tree{nodes: []node{{region: root, parent: NoRegion}}}
}

// Len returns the number of regions in the tree.
func (t *Tree) Len() int {
	return len(t.nodes)
}

// Root returns the root region.
func (t *Tree) Root() Region {
	return t.nodes[RootID].region
}

// Region returns a copy of the region stored under id.
func (t *Tree) Region(id RegionID) Region {
	return t.nodes[id].region
}

// Parent returns the parent of id, or false for the root.
func (t *Tree) Parent(id RegionID) (RegionID, bool) {
	p := t.nodes[id].parent
	return p, p != NoRegion
}

// HasParent reports whether id is not the root.
func (t *Tree) HasParent(id RegionID) bool {
	return t.nodes[id].parent != NoRegion
}

// Children returns the children of id in order. The slice must not be modified.
func (t *Tree) Children(id RegionID) []RegionID {
	return t.nodes[id].children
}

// Insert inserts region below the root. See InsertAt.
func (t *Tree) Insert(region Region) (RegionID, error) {
	return t.InsertAt(RootID, region)
}

// InsertAt inserts region into the subtree rooted at at.
//
// The region is attached to the deepest node of the subtree that strictly
// contains it. Children of that node which fit into the new region are moved
// below it. Because the deepest container is unique, the resulting shape does
// not depend on the order regions are inserted in.
func (t *Tree) InsertAt(at RegionID, region Region) (RegionID, error) {
	if !t.nodes[at].region.IsSubregion(region) {
		return NoRegion, fmt.Errorf("%w: %s does not fit into %s",
			ErrNotSubregion, region, t.nodes[at].region)
	}
	if _, found := t.FindFrom(at, region); found {
		return NoRegion, fmt.Errorf("%w: %s in %s", ErrRegionExists, region, region.Function)
	}

	target := at
	for id := range t.PostOrder(at) {
		if t.nodes[id].region.IsSubregion(region) {
			target = id
			break
		}
	}

	newID := RegionID(len(t.nodes))
	t.nodes = append(t.nodes, node{region: region, parent: target})

	var kept, moved []RegionID
	for _, child := range t.nodes[target].children {
		if region.IsSubregion(t.nodes[child].region) {
			moved = append(moved, child)
			t.nodes[child].parent = newID
		} else {
			kept = append(kept, child)
		}
	}
	t.nodes[newID].children = moved
	t.sortChildren(newID)

	t.nodes[target].children = append(kept, newID)
	t.sortChildren(target)

	return newID, nil
}

func (t *Tree) sortChildren(id RegionID) {
	slices.SortStableFunc(t.nodes[id].children, func(a, b RegionID) int {
		return t.nodes[a].region.Start.Compare(t.nodes[b].region.Start)
	})
}

// Contains reports whether a structurally equal region is part of the tree.
func (t *Tree) Contains(region Region) bool {
	_, found := t.FindFrom(RootID, region)
	return found
}

// Find returns the ID of the region structurally equal to region.
func (t *Tree) Find(region Region) (RegionID, bool) {
	return t.FindFrom(RootID, region)
}

// FindFrom searches the subtree rooted at from breadth first.
func (t *Tree) FindFrom(from RegionID, region Region) (RegionID, bool) {
	for id := range t.BreadthFirst(from) {
		if t.nodes[id].region.Equal(region) {
			return id, true
		}
	}
	return NoRegion, false
}

// FindLocation returns the smallest region containing the location.
func (t *Tree) FindLocation(line, column int) (RegionID, bool) {
	if !t.nodes[RootID].region.IsLocationInside(line, column) {
		return NoRegion, false
	}
	for id := range t.PostOrder(RootID) {
		if t.nodes[id].region.IsLocationInside(line, column) {
			return id, true
		}
	}
	return NoRegion, false
}

// BreadthFirst yields the subtree rooted at from in level order.
func (t *Tree) BreadthFirst(from RegionID) iter.Seq[RegionID] {
	return func(yield func(RegionID) bool) {
		queue := []RegionID{from}
		for len(queue) > 0 {
			id := queue[0]
			queue = queue[1:]
			queue = append(queue, t.nodes[id].children...)
			if !yield(id) {
				return
			}
		}
	}
}

// PreOrder yields each node before its children.
func (t *Tree) PreOrder(from RegionID) iter.Seq[RegionID] {
	return func(yield func(RegionID) bool) {
		t.preorder(from, yield)
	}
}

func (t *Tree) preorder(id RegionID, yield func(RegionID) bool) bool {
	if !yield(id) {
		return false
	}
	for _, child := range t.nodes[id].children {
		if !t.preorder(child, yield) {
			return false
		}
	}
	return true
}

// PostOrder yields the children of each node, fully, before the node itself.
func (t *Tree) PostOrder(from RegionID) iter.Seq[RegionID] {
	return func(yield func(RegionID) bool) {
		t.postorder(from, yield)
	}
}

func (t *Tree) postorder(id RegionID, yield func(RegionID) bool) bool {
	for _, child := range t.nodes[id].children {
		if !t.postorder(child, yield) {
			return false
		}
	}
	return yield(id)
}

// Clone returns a deep copy of the tree.
func (t *Tree) Clone() *Tree {
	nodes := make([]node, len(t.nodes))
	for i, n := range t.nodes {
		nodes[i] = node{
			region:   n.region,
			parent:   n.parent,
			children: slices.Clone(n.children),
		}
	}
	return &Tree{nodes: nodes}
}
