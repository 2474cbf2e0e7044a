package annotate

import (
	"fmt"
	"path/filepath"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/spf13/afero"
)

// SourceReader loads source files as line tables. Files are looked up
// relative to a base directory and cached, so a file shared by many reports
// is only read once.
type SourceReader struct {
	fs      afero.Fs
	baseDir string
	cache   *lru.Cache[string, []string]
}

// NewSourceReader creates a reader over fs. cacheSize is the number of files
// kept in memory.
func NewSourceReader(fs afero.Fs, baseDir string, cacheSize int) (*SourceReader, error) {
	cache, err := lru.New[string, []string](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create source cache: %w", err)
	}
	return &SourceReader{fs: fs, baseDir: baseDir, cache: cache}, nil
}

// NewOSSourceReader reads sources from the local file system.
func NewOSSourceReader(baseDir string, cacheSize int) (*SourceReader, error) {
	return NewSourceReader(afero.NewOsFs(), baseDir, cacheSize)
}

// Resolve finds the file a report path refers to. Absolute paths are tried
// as-is first; otherwise the path is joined to the base directory, and as a
// last resort only its basename is.
func (s *SourceReader) Resolve(file string) (string, error) {
	var candidates []string
	if filepath.IsAbs(file) {
		candidates = append(candidates, file)
	} else {
		candidates = append(candidates, filepath.Join(s.baseDir, file))
	}
	candidates = append(candidates, filepath.Join(s.baseDir, filepath.Base(file)))

	for _, c := range candidates {
		if ok, _ := afero.Exists(s.fs, c); ok {
			return c, nil
		}
	}
	return "", fmt.Errorf("source file %s not found in %s", file, s.baseDir)
}

// Lines returns the lines of file, each keeping its trailing newline.
// Index 0 holds line 1.
func (s *SourceReader) Lines(file string) ([]string, error) {
	if lines, ok := s.cache.Get(file); ok {
		return lines, nil
	}

	path, err := s.Resolve(file)
	if err != nil {
		return nil, err
	}
	data, err := afero.ReadFile(s.fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read source file: %w", err)
	}

	lines := splitLines(string(data))
	s.cache.Add(file, lines)
	return lines, nil
}

func splitLines(content string) []string {
	if content == "" {
		return nil
	}
	lines := strings.SplitAfter(content, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
