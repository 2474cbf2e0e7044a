package coverage

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testFunction describes one function of a synthesized export document.
type testFunction struct {
	name    string
	file    string
	regions [][]int64
}

// scenarioRegions is a function whose regions nest two levels deep.
var scenarioRegions = [][]int64{
	{0, 0, 100, 100, 5, 0, 0, 0},
	{50, 0, 100, 99, 5, 0, 0, 0},
	{30, 0, 40, 100, 3, 0, 0, 0},
	{10, 0, 20, 100, 3, 0, 0, 0},
	{0, 1, 49, 100, 5, 0, 0, 0},
	{60, 0, 80, 100, 0, 0, 0, 0},
}

// exportDoc builds an llvm-cov export document with a consistent totals block.
func exportDoc(t *testing.T, functions ...testFunction) []byte {
	t.Helper()
	return exportDocWithTotals(t, nil, functions...)
}

// exportDocWithTotals is exportDoc with a hook to tamper with the totals.
func exportDocWithTotals(t *testing.T, tamper func(*exportTotals), functions ...testFunction) []byte {
	t.Helper()

	var data exportData
	data.Totals.Functions.Count = len(functions)
	for _, fn := range functions {
		data.Functions = append(data.Functions, exportFunction{
			Name:      fn.name,
			Filenames: []string{fn.file},
			Regions:   fn.regions,
		})
		for _, r := range fn.regions {
			// Malformed records are kept for buildForest to reject.
			if len(r) != recordLen || Kind(r[7]) != KindCode {
				continue
			}
			data.Totals.Regions.Count++
			if r[4] != 0 {
				data.Totals.Regions.Covered++
			} else {
				data.Totals.Regions.NotCovered++
			}
		}
	}
	if tamper != nil {
		tamper(&data.Totals)
	}

	doc := exportDocument{
		Type:    ExportType,
		Version: "2.0.1",
		Data:    []exportData{data},
	}
	out, err := json.Marshal(doc)
	require.NoError(t, err)
	return out
}

func TestExportDoc_KeepsMalformedRecords(t *testing.T) {
	data := exportDoc(t, testFunction{"main", "main.c", [][]int64{
		{1, 1, 2, 2, 0},
		{1, 1, 9, 2, 4, 0, 0, 0},
	}})

	var doc exportDocument
	require.NoError(t, json.Unmarshal(data, &doc))
	require.Len(t, doc.Data, 1)
	assert.Len(t, doc.Data[0].Functions[0].Regions, 2)
	assert.Equal(t, 1, doc.Data[0].Totals.Regions.Count)
	assert.Equal(t, 1, doc.Data[0].Totals.Regions.Covered)
}

func TestCheckExportHeader(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr bool
	}{
		{"current version", `{"type":"llvm.coverage.json.export","version":"2.0.1","data":[]}`, false},
		{"bare major", `{"type":"llvm.coverage.json.export","version":"2"}`, false},
		{"newer major", `{"type":"llvm.coverage.json.export","version":"3.0.0"}`, true},
		{"wrong type", `{"type":"gcovr","version":"2.0.1"}`, true},
		{"missing type", `{"version":"2.0.1"}`, true},
		{"not json", `{"type":`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckExportHeader([]byte(tt.data))
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrFormat)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestIsExportDocument(t *testing.T) {
	assert.True(t, IsExportDocument(exportDoc(t)))
	assert.False(t, IsExportDocument([]byte(`{"main.c":{}}`)))
}

func TestBuildForest_NestsRegions(t *testing.T) {
	doc, err := decodeExport(exportDoc(t, testFunction{"main", "/src/main.c", scenarioRegions}))
	require.NoError(t, err)

	forest, err := doc.buildForest()
	require.NoError(t, err)

	tree, ok := forest.Get("/src/main.c", "main")
	require.True(t, ok)
	assert.Equal(t, 6, tree.Len())
	assert.Equal(t, "main", tree.Root().Function)
	// left is inserted last and adopts both earlier regions
	assert.Len(t, tree.Children(RootID), 2)
}

func TestBuildForest_RelativizesAbsolutePath(t *testing.T) {
	var doc exportDocument
	require.NoError(t, json.Unmarshal(exportDoc(t,
		testFunction{"main", "/home/ci/project/src/main.c", scenarioRegions[:1]},
		testFunction{"puts", "/usr/include/stdio.h", scenarioRegions[:1]},
	), &doc))
	doc.AbsolutePath = "/home/ci/project"

	forest, err := doc.buildForest()
	require.NoError(t, err)
	assert.Equal(t, []string{"/usr/include/stdio.h", "src/main.c"}, forest.Files())
}

func TestBuildForest_Errors(t *testing.T) {
	tests := []struct {
		name      string
		functions []testFunction
		mutate    func(*exportDocument)
		wantErr   error
	}{
		{
			name:      "function without regions",
			functions: []testFunction{{"main", "main.c", nil}},
			wantErr:   ErrFormat,
		},
		{
			name:      "function in two files",
			functions: []testFunction{{"main", "main.c", scenarioRegions}},
			mutate: func(d *exportDocument) {
				d.Data[0].Functions[0].Filenames = []string{"main.c", "macro.h"}
			},
			wantErr: ErrFormat,
		},
		{
			name:      "short record",
			functions: []testFunction{{"main", "main.c", [][]int64{{1, 1, 2, 2, 0}}}},
			wantErr:   ErrFormat,
		},
		{
			name: "region outside of root",
			functions: []testFunction{{"main", "main.c", [][]int64{
				{10, 1, 20, 1, 1, 0, 0, 0},
				{30, 1, 40, 1, 1, 0, 0, 0},
			}}},
			wantErr: ErrNotSubregion,
		},
		{
			name: "repeated region",
			functions: []testFunction{{"main", "main.c", [][]int64{
				{10, 1, 20, 1, 1, 0, 0, 0},
				{12, 1, 14, 1, 1, 0, 0, 0},
				{12, 1, 14, 1, 7, 0, 0, 0},
			}}},
			wantErr: ErrRegionExists,
		},
		{
			name: "function defined twice",
			functions: []testFunction{
				{"main", "main.c", scenarioRegions[:1]},
				{"main", "main.c", scenarioRegions[:1]},
			},
			wantErr: ErrDuplicateKey,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var doc exportDocument
			require.NoError(t, json.Unmarshal(exportDoc(t, tt.functions...), &doc))
			if tt.mutate != nil {
				tt.mutate(&doc)
			}
			_, err := doc.buildForest()
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
