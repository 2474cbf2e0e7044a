package coverage

import "errors"

var (
	// ErrFormat reports an unsupported export document or a malformed region record.
	ErrFormat = errors.New("coverage: unsupported or malformed format")

	// ErrNotSubregion is returned by Insert when the region does not fit strictly
	// into the insertion point.
	ErrNotSubregion = errors.New("coverage: region is not a subregion")

	// ErrRegionExists is returned by Insert when a structurally equal region is
	// already part of the tree.
	ErrRegionExists = errors.New("coverage: region exists already")

	// ErrStructuralMismatch is returned when two trees or two reports that are
	// combined node by node do not have the same shape.
	ErrStructuralMismatch = errors.New("coverage: structural mismatch")

	// ErrSanityCheck is returned when the parsed forest disagrees with the
	// totals reported by the export document itself.
	ErrSanityCheck = errors.New("coverage: sanity check failed")

	// ErrDuplicateKey is returned when a (file, function) key is imported twice
	// under DuplicateReject, or when a document defines a function twice.
	ErrDuplicateKey = errors.New("coverage: duplicate key")
)
