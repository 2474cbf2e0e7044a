package coverage

import (
	"cmp"
	"encoding/json"
	"fmt"
)

// Kind is the llvm coverage mapping region kind.
type Kind int

const (
	KindCode Kind = iota
	KindExpansion
	KindSkipped
	KindGap
	KindBranch
)

var kindNames = map[Kind]string{
	KindCode:      "Code",
	KindExpansion: "Expansion",
	KindSkipped:   "Skipped",
	KindGap:       "Gap",
	KindBranch:    "Branch",
}

// String returns the name llvm uses for the kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Valid reports whether k is one of the five known kinds.
func (k Kind) Valid() bool {
	_, ok := kindNames[k]
	return ok
}

// MarshalJSON encodes the kind by name.
func (k Kind) MarshalJSON() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("%w: unknown region kind %d", ErrFormat, int(k))
	}
	return json.Marshal(k.String())
}

// UnmarshalJSON accepts the kind name or its ordinal.
func (k *Kind) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		for kind, n := range kindNames {
			if n == name {
				*k = kind
				return nil
			}
		}
		return fmt.Errorf("%w: unknown region kind %q", ErrFormat, name)
	}

	var ordinal int
	if err := json.Unmarshal(data, &ordinal); err != nil {
		return fmt.Errorf("%w: region kind: %v", ErrFormat, err)
	}
	if !Kind(ordinal).Valid() {
		return fmt.Errorf("%w: unknown region kind %d", ErrFormat, ordinal)
	}
	*k = Kind(ordinal)
	return nil
}

// Position is a line/column location in a source file. Both are 1-based in
// llvm exports.
type Position struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// Compare orders positions by line, then column.
func (p Position) Compare(other Position) int {
	if c := cmp.Compare(p.Line, other.Line); c != 0 {
		return c
	}
	return cmp.Compare(p.Column, other.Column)
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Region is a single contiguous source span with its execution count.
//
// Equality and ordering only look at the span and the kind; Count is ignored
// so that two measurements of the same binary produce equal regions.
type Region struct {
	Start    Position
	End      Position
	Count    int64
	Kind     Kind
	Function string
}

// recordLen is the number of fields in an llvm-cov export region record:
// start line, start column, end line, end column, count, file id,
// expanded file id, kind.
const recordLen = 8

// FromList builds a childless region from a raw export record.
func FromList(record []int64, function string) (Region, error) {
	if len(record) != recordLen {
		return Region{}, fmt.Errorf("%w: region record of %s has %d fields, want %d",
			ErrFormat, function, len(record), recordLen)
	}
	if record[5] != 0 || record[6] != 0 {
		return Region{}, fmt.Errorf("%w: region record %v of %s has non-zero file ids",
			ErrFormat, record, function)
	}

	kind := Kind(record[7])
	if !kind.Valid() {
		return Region{}, fmt.Errorf("%w: region record %v of %s has unknown kind %d",
			ErrFormat, record, function, record[7])
	}

	r := Region{
		Start:    Position{Line: int(record[0]), Column: int(record[1])},
		End:      Position{Line: int(record[2]), Column: int(record[3])},
		Count:    record[4],
		Kind:     kind,
		Function: function,
	}
	if r.Start.Compare(r.End) > 0 {
		return Region{}, fmt.Errorf("%w: region %s of %s ends before it starts", ErrFormat, r, function)
	}
	return r, nil
}

func (r Region) String() string {
	return fmt.Sprintf("%s[%s-%s]#%d", r.Kind, r.Start, r.End, r.Count)
}

// Equal compares span and kind.
func (r Region) Equal(other Region) bool {
	return r.Start == other.Start && r.End == other.End && r.Kind == other.Kind
}

// Less orders regions by their start position only.
func (r Region) Less(other Region) bool {
	return r.Start.Compare(other.Start) < 0
}

// Greater is deliberately not the mirror of Less on the end position:
// a > b holds iff the regions differ and b < a.
func (r Region) Greater(other Region) bool {
	return !r.Equal(other) && other.Less(r)
}

// LessEqual reports r == other || r < other.
func (r Region) LessEqual(other Region) bool {
	return r.Equal(other) || r.Less(other)
}

// GreaterEqual reports r == other || r > other.
func (r Region) GreaterEqual(other Region) bool {
	return r.Equal(other) || r.Greater(other)
}

// IsSubregion reports whether other lies strictly inside r: it must start
// after r starts and end before r ends. Shared boundaries do not count.
func (r Region) IsSubregion(other Region) bool {
	return r.Start.Compare(other.Start) < 0 && r.End.Compare(other.End) > 0
}

// IsLocationInside reports whether the location falls into [Start, End).
func (r Region) IsLocationInside(line, column int) bool {
	loc := Position{Line: line, Column: column}
	return r.Start.Compare(loc) <= 0 && loc.Compare(r.End) < 0
}

// Overlaps reports whether the regions intersect without one containing the
// other.
func (r Region) Overlaps(other Region) bool {
	if r.IsSubregion(other) || other.IsSubregion(r) {
		return false
	}
	return r.IsLocationInside(other.Start.Line, other.Start.Column) !=
		other.IsLocationInside(r.Start.Line, r.Start.Column)
}

// IsCovered reports a non-zero count.
func (r Region) IsCovered() bool {
	return r.Count != 0
}
