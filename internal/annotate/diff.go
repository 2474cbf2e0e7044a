package annotate

import (
	"github.com/pmezard/go-difflib/difflib"
)

// DiffShow returns a unified diff between two renderings, e.g. the
// annotated baseline and the annotated current measurement. context is the
// number of unchanged lines around each hunk; values below 1 mean 3.
func DiffShow(fromName, toName, from, to string, context int) (string, error) {
	if context < 1 {
		context = 3
	}
	return difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(from),
		B:        difflib.SplitLines(to),
		FromFile: fromName,
		ToFile:   toName,
		Context:  context,
	})
}
