package coverage

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/tidwall/gjson"
)

const (
	// ExportType is the "type" field of an llvm-cov export document.
	ExportType = "llvm.coverage.json.export"

	// ExportMajorVersion is the only supported major "version".
	ExportMajorVersion = "2"
)

// exportDocument mirrors the parts of `llvm-cov export` output we consume.
type exportDocument struct {
	Type    string       `json:"type"`
	Version string       `json:"version"`
	Data    []exportData `json:"data"`

	// AbsolutePath is not written by llvm-cov. Experiment tooling adds it so
	// filenames can be made relative to the checkout.
	AbsolutePath string `json:"absolute_path,omitempty"`
}

type exportData struct {
	Functions []exportFunction `json:"functions"`
	Totals    exportTotals     `json:"totals"`
}

type exportFunction struct {
	Name      string    `json:"name"`
	Count     int64     `json:"count"`
	Filenames []string  `json:"filenames"`
	Regions   [][]int64 `json:"regions"`
}

type exportTotals struct {
	Functions struct {
		Count int `json:"count"`
	} `json:"functions"`
	Regions struct {
		Count      int `json:"count"`
		Covered    int `json:"covered"`
		NotCovered int `json:"notcovered"`
	} `json:"regions"`
}

// CheckExportHeader verifies the type and major version of an export
// document without decoding the whole thing.
func CheckExportHeader(data []byte) error {
	if !gjson.ValidBytes(data) {
		return fmt.Errorf("%w: not a valid JSON document", ErrFormat)
	}
	header := gjson.GetManyBytes(data, "type", "version")
	if !header[0].Exists() || header[0].String() != ExportType {
		return fmt.Errorf("%w: unknown export type %q", ErrFormat, header[0].String())
	}
	major, _, _ := strings.Cut(header[1].String(), ".")
	if major != ExportMajorVersion {
		return fmt.Errorf("%w: unsupported export version %q", ErrFormat, header[1].String())
	}
	return nil
}

// IsExportDocument reports whether data looks like an llvm-cov export rather
// than this tool's own serialization.
func IsExportDocument(data []byte) bool {
	return gjson.GetBytes(data, "type").String() == ExportType
}

func decodeExport(data []byte) (*exportDocument, error) {
	if err := CheckExportHeader(data); err != nil {
		return nil, err
	}
	var doc exportDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	if len(doc.Data) == 0 {
		return nil, fmt.Errorf("%w: export has no data entries", ErrFormat)
	}
	return &doc, nil
}

// relativize strips the document's absolute_path prefix from filename when
// possible.
func (d *exportDocument) relativize(filename string) string {
	if d.AbsolutePath == "" {
		return filename
	}
	rel, err := filepath.Rel(d.AbsolutePath, filename)
	if err != nil || strings.HasPrefix(rel, "..") {
		return filename
	}
	return rel
}

// buildForest turns the functions of one document into a fresh forest. The
// first region record of a function becomes the root of its tree, every
// further record is inserted below it.
func (d *exportDocument) buildForest() (FilenameFunctionMapping, error) {
	forest := make(FilenameFunctionMapping)
	for _, fn := range d.Data[0].Functions {
		if len(fn.Filenames) != 1 {
			return nil, fmt.Errorf("%w: function %s references %d files, want 1",
				ErrFormat, fn.Name, len(fn.Filenames))
		}
		if len(fn.Regions) == 0 {
			return nil, fmt.Errorf("%w: function %s has no regions", ErrFormat, fn.Name)
		}
		filename := d.relativize(fn.Filenames[0])

		root, err := FromList(fn.Regions[0], fn.Name)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filename, err)
		}
		tree := NewTree(root)
		for _, record := range fn.Regions[1:] {
			region, err := FromList(record, fn.Name)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", filename, err)
			}
			if _, err := tree.Insert(region); err != nil {
				return nil, fmt.Errorf("%s: function %s: %w", filename, fn.Name, err)
			}
		}

		if _, exists := forest.Get(filename, fn.Name); exists {
			return nil, fmt.Errorf("%w: function %s defined twice in %s", ErrDuplicateKey, fn.Name, filename)
		}
		forest.Set(filename, fn.Name, tree)
	}
	return forest, nil
}
