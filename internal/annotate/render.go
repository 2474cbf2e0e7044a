package annotate

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/zjy-dev/covtree/internal/coverage"
)

const (
	colorCyan   = "\033[36m"
	colorRedBg  = "\033[41m"
	colorReset  = "\033[0m"
	defaultTabs = 8
)

// Options controls rendering.
type Options struct {
	// Color highlights the file header and zero-count code.
	Color bool
	// TabSize is the number of spaces a tab expands to. 0 means 8.
	TabSize int
}

// Line is one rendered source line.
type Line struct {
	Number   int
	Count    int64
	HasCount bool
	Text     string
}

// CountString returns the count column, empty for lines without count.
func (l Line) CountString() string {
	if !l.HasCount {
		return ""
	}
	return fmt.Sprintf("%d", l.Count)
}

// dominant picks the count with the largest absolute value; the first one
// wins on ties.
func dominant(segments []Segment) (int64, bool) {
	var best int64
	found := false
	for _, s := range segments {
		if !s.HasCount {
			continue
		}
		if !found || abs(s.Count) > abs(best) {
			best = s.Count
			found = true
		}
	}
	return best, found
}

func abs(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

func isBlank(s string) bool {
	return s != "" && strings.TrimFunc(s, unicode.IsSpace) == ""
}

// Table collapses the segments of every line into a single line with its
// dominant count.
func (f *FileSegments) Table(opts Options) []Line {
	tabs := opts.TabSize
	if tabs <= 0 {
		tabs = defaultTabs
	}

	out := make([]Line, 0, len(f.Lines))
	for i, segments := range f.Lines {
		segments = append([]Segment(nil), segments...)
		if n := len(segments); n > 1 {
			// A trailing newline, possibly after a lone ';', belongs to
			// whatever region ends the line and must not decide its count.
			last := segments[n-1]
			if strings.HasSuffix(last.Text, "\n") && isBlank(strings.Replace(last.Text, ";", "", 1)) {
				segments[n-1].HasCount = false
			}
		}

		count, hasCount := dominant(segments)

		var text strings.Builder
		for _, s := range segments {
			if opts.Color && s.HasCount && s.Count == 0 {
				text.WriteString(highlight(s.Text))
			} else {
				text.WriteString(s.Text)
			}
		}
		rendered := strings.ReplaceAll(text.String(), "\t", strings.Repeat(" ", tabs))
		rendered = strings.Replace(rendered, "\n", "", 1)

		out = append(out, Line{Number: i + 1, Count: count, HasCount: hasCount, Text: rendered})
	}
	return out
}

// highlight marks text with a red background. A leading "else" or ")" and
// whitespace in front of an opening brace stay unmarked, as does the line
// break.
func highlight(text string) string {
	rest := strings.TrimLeft(text, "else) \t\r\n\v\f")
	if !strings.HasPrefix(rest, "{") && rest != "" {
		rest = text
	}
	before := text[:len(text)-len(rest)]
	middle := strings.TrimRight(rest, "\n")
	after := rest[len(middle):]
	if middle == "" {
		return text
	}
	return before + colorRedBg + middle + colorReset + after
}

// Render formats the file as "{line:>5}|{count:>7}|{text}" lines below a
// header naming the file.
func (f *FileSegments) Render(opts Options) string {
	var b strings.Builder
	header := f.File + ":"
	if opts.Color {
		header = colorCyan + header + colorReset
	}
	b.WriteString(header)
	b.WriteString("\n")

	table := f.Table(opts)
	for i, line := range table {
		fmt.Fprintf(&b, "%5d|%7s|%s", line.Number, line.CountString(), line.Text)
		if i < len(table)-1 {
			b.WriteString("\n")
		}
	}
	if !strings.HasSuffix(b.String(), "\n") {
		b.WriteString("\n")
	}
	return b.String()
}

// Annotator renders reports against their sources.
type Annotator struct {
	sources *SourceReader
	opts    Options
}

// New creates an Annotator.
func New(sources *SourceReader, opts Options) *Annotator {
	return &Annotator{sources: sources, opts: opts}
}

// Segments computes the segments of every file of the report, in file order.
func (a *Annotator) Segments(report *coverage.Report) ([]*FileSegments, error) {
	forest := report.Tree()
	files := forest.Files()
	result := make([]*FileSegments, 0, len(files))
	for _, file := range files {
		lines, err := a.sources.Lines(file)
		if err != nil {
			return nil, err
		}
		result = append(result, Segments(file, lines, forest[file]))
	}
	return result, nil
}

// Show renders every file of the report, similar to `llvm-cov show`.
func (a *Annotator) Show(report *coverage.Report) (string, error) {
	files, err := a.Segments(report)
	if err != nil {
		return "", err
	}
	rendered := make([]string, 0, len(files))
	for _, f := range files {
		rendered = append(rendered, f.Render(a.opts))
	}
	return strings.Join(rendered, "\n") + "\n", nil
}
