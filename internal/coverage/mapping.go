package coverage

import (
	"maps"
	"path/filepath"
	"slices"
	"strings"
)

// FunctionRegionMapping maps a function name to the root of its region tree.
type FunctionRegionMapping map[string]*Tree

// FilenameFunctionMapping maps a source file path to the functions defined in it.
type FilenameFunctionMapping map[string]FunctionRegionMapping

// Functions returns the function names in sorted order.
func (m FunctionRegionMapping) Functions() []string {
	return slices.Sorted(maps.Keys(m))
}

// Equal compares both mappings structurally, ignoring counts.
func (m FunctionRegionMapping) Equal(other FunctionRegionMapping) bool {
	if len(m) != len(other) {
		return false
	}
	for name, tree := range m {
		otherTree, ok := other[name]
		if !ok || !tree.Equal(otherTree) {
			return false
		}
	}
	return true
}

// Files returns the file paths in sorted order.
func (m FilenameFunctionMapping) Files() []string {
	return slices.Sorted(maps.Keys(m))
}

// Equal compares both mappings structurally, ignoring counts. File paths must
// match exactly; use Report.Equal to match across checkouts.
func (m FilenameFunctionMapping) Equal(other FilenameFunctionMapping) bool {
	if len(m) != len(other) {
		return false
	}
	for file, functions := range m {
		otherFunctions, ok := other[file]
		if !ok || !functions.Equal(otherFunctions) {
			return false
		}
	}
	return true
}

// Get returns the tree stored for the file and function.
func (m FilenameFunctionMapping) Get(file, function string) (*Tree, bool) {
	functions, ok := m[file]
	if !ok {
		return nil, false
	}
	tree, ok := functions[function]
	return tree, ok
}

// Set stores tree for the file and function, replacing any previous tree.
func (m FilenameFunctionMapping) Set(file, function string, tree *Tree) {
	functions, ok := m[file]
	if !ok {
		functions = make(FunctionRegionMapping)
		m[file] = functions
	}
	functions[function] = tree
}

// ReportKey identifies a function tree across reports. Reports produced from
// checkouts at different locations only agree on the tail of file paths, so
// File holds the basename, or the shortest path suffix telling the file apart
// from the other files of its report when the basename is shared.
type ReportKey struct {
	File     string
	Function string
}

// NewReportKey canonicalizes path to its basename.
func NewReportKey(path, function string) ReportKey {
	return ReportKey{File: filepath.Base(path), Function: function}
}

func (k ReportKey) String() string {
	return k.File + ":" + k.Function
}

// keyFiles maps every file of m to the shortest trailing run of its path
// elements that no other file of m ends with. A file that is a suffix of
// another keeps its full path.
func (m FilenameFunctionMapping) keyFiles() map[string]string {
	files := m.Files()
	elems := make(map[string][]string, len(files))
	for _, file := range files {
		elems[file] = strings.Split(filepath.ToSlash(file), "/")
	}
	suffix := func(file string, n int) (string, bool) {
		e := elems[file]
		if n > len(e) {
			return "", false
		}
		return strings.Join(e[len(e)-n:], "/"), true
	}

	keys := make(map[string]string, len(files))
	for _, file := range files {
		keys[file] = filepath.ToSlash(file)
		for n := 1; n <= len(elems[file]); n++ {
			candidate, _ := suffix(file, n)
			shared := slices.ContainsFunc(files, func(other string) bool {
				s, ok := suffix(other, n)
				return other != file && ok && s == candidate
			})
			if !shared {
				keys[file] = candidate
				break
			}
		}
	}
	return keys
}

// Index returns the trees of m keyed by ReportKey.
func (m FilenameFunctionMapping) Index() map[ReportKey]*Tree {
	index := make(map[ReportKey]*Tree)
	for file, key := range m.keyFiles() {
		for function, tree := range m[file] {
			index[ReportKey{File: key, Function: function}] = tree
		}
	}
	return index
}
