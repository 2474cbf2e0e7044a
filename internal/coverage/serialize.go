package coverage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// regionJSON is the serialized form of a region subtree. The parent link is
// never written; it is implied by nesting.
type regionJSON struct {
	Start    Position     `json:"start"`
	End      Position     `json:"end"`
	Count    int64        `json:"count"`
	Kind     Kind         `json:"kind"`
	Function string       `json:"function"`
	Children []regionJSON `json:"children"`
}

func (t *Tree) toJSON(id RegionID) regionJSON {
	n := t.nodes[id]
	out := regionJSON{
		Start:    n.region.Start,
		End:      n.region.End,
		Count:    n.region.Count,
		Kind:     n.region.Kind,
		Function: n.region.Function,
		Children: make([]regionJSON, 0, len(n.children)),
	}
	for _, child := range n.children {
		out.Children = append(out.Children, t.toJSON(child))
	}
	return out
}

// MarshalJSON writes the tree as nested regions.
func (t *Tree) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.toJSON(RootID))
}

// UnmarshalJSON rebuilds a tree from its nested form and re-validates that
// every child fits strictly into its parent.
func (t *Tree) UnmarshalJSON(data []byte) error {
	var root regionJSON
	if err := json.Unmarshal(data, &root); err != nil {
		return err
	}
	tree := NewTree(root.region())
	if err := tree.attachAll(RootID, root.Children); err != nil {
		return err
	}
	*t = *tree
	return nil
}

func (r regionJSON) region() Region {
	return Region{Start: r.Start, End: r.End, Count: r.Count, Kind: r.Kind, Function: r.Function}
}

func (t *Tree) attachAll(parent RegionID, children []regionJSON) error {
	for _, child := range children {
		region := child.region()
		if !t.nodes[parent].region.IsSubregion(region) {
			return fmt.Errorf("%w: %s is not a subregion of %s", ErrFormat, region, t.nodes[parent].region)
		}
		id := RegionID(len(t.nodes))
		t.nodes = append(t.nodes, node{region: region, parent: parent})
		t.nodes[parent].children = append(t.nodes[parent].children, id)
		if err := t.attachAll(id, child.Children); err != nil {
			return err
		}
	}
	t.sortChildren(parent)
	return nil
}

// ToJSON serializes the forest as file -> function -> region tree. The
// format is specific to this tool and not compatible with llvm-cov export.
func (r *Report) ToJSON() ([]byte, error) {
	data, err := json.Marshal(r.tree)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal report: %w", err)
	}
	return data, nil
}

// Save writes the ToJSON form to path.
func (r *Report) Save(path string) error {
	data, err := r.ToJSON()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write report file: %w", err)
	}
	return nil
}

// LoadJSON reads a report previously written by ToJSON or Save.
func LoadJSON(path string, data []byte, opts ...Option) (*Report, error) {
	var forest FilenameFunctionMapping
	if err := json.Unmarshal(data, &forest); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrFormat, path, err)
	}
	r := NewReport(path, opts...)
	for file, functions := range forest {
		for function, tree := range functions {
			if tree == nil {
				return nil, fmt.Errorf("%w: %s: empty tree for %s in %s", ErrFormat, path, function, file)
			}
			r.tree.Set(file, function, tree)
		}
	}
	return r, nil
}
