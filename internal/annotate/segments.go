package annotate

import (
	"cmp"
	"slices"

	"github.com/zjy-dev/covtree/internal/coverage"
)

// Segment is a slice of one source line attributed to a region.
type Segment struct {
	Count    int64
	HasCount bool
	Text     string
}

// FileSegments holds the segments of every line of one file. Lines[i] are
// the segments of line i+1, in source order; concatenated they give the
// line back.
type FileSegments struct {
	File  string
	Lines [][]Segment
}

// buffer partitions the lines of a file front to back. Every fill continues
// where the previous one stopped.
type buffer struct {
	lines []string
	segs  [][]Segment
	last  int // last line number holding a segment, 0 if none
}

func newBuffer(lines []string) *buffer {
	return &buffer{lines: lines, segs: make([][]Segment, len(lines))}
}

// next returns the first position that is not yet part of a segment.
func (b *buffer) next() (int, int) {
	if b.last == 0 {
		return 1, 1
	}
	lineLen := len(b.lines[b.last-1])
	used := 0
	for _, s := range b.segs[b.last-1] {
		used += len(s.Text)
	}
	if used >= lineLen && b.last < len(b.lines) {
		return b.last + 1, 1
	}
	return b.last, used + 1
}

// previous returns the position right before line:column. Positions past
// the end of the file are clamped to its last character.
func (b *buffer) previous(line, column int) (int, int) {
	if column <= 1 {
		if line <= 1 || len(b.lines) == 0 {
			return 1, 1
		}
		prev := min(line-1, len(b.lines))
		return prev, len(b.lines[prev-1])
	}
	return line, column - 1
}

// fill attributes everything from next() up to, but excluding, endLine:endColumn.
func (b *buffer) fill(endLine, endColumn int, count int64, hasCount bool) {
	if len(b.lines) == 0 {
		return
	}
	if endLine > len(b.lines) {
		endLine = len(b.lines)
		endColumn = len(b.lines[endLine-1]) + 1
	}
	startLine, startColumn := b.next()
	if endLine < startLine || endLine == startLine && endColumn <= startColumn {
		return
	}

	for n := startLine; n <= endLine; n++ {
		line := b.lines[n-1]
		from, to := 0, len(line)
		if n == startLine {
			from = startColumn - 1
		}
		if n == endLine {
			to = endColumn - 1
		}
		from = min(max(from, 0), len(line))
		to = min(max(to, 0), len(line))
		if to <= from {
			continue
		}
		b.segs[n-1] = append(b.segs[n-1], Segment{Count: count, HasCount: hasCount, Text: line[from:to]})
		b.last = n
	}
}

// showsCount reports whether a region kind carries a meaningful count.
func showsCount(kind coverage.Kind) bool {
	return kind != coverage.KindSkipped && kind != coverage.KindBranch
}

// function adds one function tree: the gap before it without count, then
// the tree itself.
func (b *buffer) function(tree *coverage.Tree) {
	root := tree.Root()
	if root.Start.Line != 1 || root.Start.Column != 1 {
		line, column := b.previous(root.Start.Line, root.Start.Column)
		b.fill(line, column, 0, false)
	}
	b.region(tree, coverage.RootID)
}

// region fills the parts of a region that are not covered by its children
// with the region's own count, recursing into the children in order.
func (b *buffer) region(tree *coverage.Tree, id coverage.RegionID) {
	r := tree.Region(id)
	hasCount := showsCount(r.Kind)

	for _, child := range tree.Children(id) {
		start := tree.Region(child).Start
		line, column := b.previous(start.Line, start.Column)
		b.fill(line, column, r.Count, hasCount)
		b.region(tree, child)
	}
	b.fill(r.End.Line, r.End.Column, r.Count, hasCount)
}

// Segments partitions a source file by the region trees of its functions.
// Functions are laid out in source order; where two functions claim the
// same span, the first one wins. Lines after the last function get no count.
func Segments(file string, lines []string, functions coverage.FunctionRegionMapping) *FileSegments {
	trees := make([]*coverage.Tree, 0, len(functions))
	for _, name := range functions.Functions() {
		trees = append(trees, functions[name])
	}
	slices.SortStableFunc(trees, func(a, b *coverage.Tree) int {
		return cmp.Or(a.Root().Start.Compare(b.Root().Start), a.Root().End.Compare(b.Root().End))
	})

	b := newBuffer(lines)
	for _, tree := range trees {
		b.function(tree)
	}
	if len(lines) > 0 {
		b.fill(len(lines), len(lines[len(lines)-1])+1, 0, false)
	}
	return &FileSegments{File: file, Lines: b.segs}
}
