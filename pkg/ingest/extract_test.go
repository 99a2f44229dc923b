package ingest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type csvSource struct{ text string }

func (s csvSource) ExportCSV() (string, error) { return s.text, nil }

type gridSource struct {
	cols []string
	rows [][]string
}

func (s gridSource) ColumnNames() []string { return s.cols }
func (s gridSource) RowValues() [][]string { return s.rows }

type cellSource struct{ cells []Cell }

func (s cellSource) Cells() []Cell { return s.cells }

type textSource struct{ text string }

func (s textSource) ExportText() (string, error) { return s.text, nil }

// richSource exports CSV and exposes the grid; CSV must win the probe order.
type richSource struct {
	csvSource
	gridSource
}

func TestExtractTable_CSVProbe(t *testing.T) {
	table, ok := ExtractTable(csvSource{text: "region,revenue\nnorth,100\nsouth,200\n"})

	require.True(t, ok)
	assert.Equal(t, []string{"region", "revenue"}, table.Headers)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "north", table.Rows[0]["region"])
	assert.Equal(t, "200", table.Rows[1]["revenue"])
}

func TestExtractTable_ProbeOrder(t *testing.T) {
	src := richSource{
		csvSource:  csvSource{text: "a\n1\n"},
		gridSource: gridSource{cols: []string{"b"}, rows: [][]string{{"2"}}},
	}

	table, ok := ExtractTable(src)

	require.True(t, ok)
	assert.Equal(t, []string{"a"}, table.Headers, "CSV export is the most structured capability")
}

func TestExtractTable_GridProbe(t *testing.T) {
	table, ok := ExtractTable(gridSource{
		cols: []string{"region", ""},
		rows: [][]string{{"north", "100"}, {"south"}},
	})

	require.True(t, ok)
	assert.Equal(t, []string{"region", "col_1"}, table.Headers)
	assert.Equal(t, "100", table.Rows[0]["col_1"])
	assert.Equal(t, "", table.Rows[1]["col_1"], "short rows pad with empty cells")
}

func TestExtractTable_CellProbe(t *testing.T) {
	table, ok := ExtractTable(cellSource{cells: []Cell{
		{Row: 0, Col: 0, Text: "region"},
		{Row: 0, Col: 1, Text: "revenue"},
		{Row: 1, Col: 0, Text: "north"},
		{Row: 1, Col: 1, Text: "100"},
	}})

	require.True(t, ok)
	assert.Equal(t, []string{"region", "revenue"}, table.Headers)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, "north", table.Rows[0]["region"])
}

func TestExtractTable_CellProbeNoHeaderRow(t *testing.T) {
	table, ok := ExtractTable(cellSource{cells: []Cell{
		{Row: 0, Col: 0, Text: ""},
		{Row: 0, Col: 1, Text: ""},
		{Row: 1, Col: 0, Text: "north"},
	}})

	require.True(t, ok)
	assert.Equal(t, []string{"col_0", "col_1"}, table.Headers)
	assert.Len(t, table.Rows, 2, "no header row detected, all rows are data")
}

func TestExtractTable_TextProbe(t *testing.T) {
	md := strings.Join([]string{
		"Some prose before.",
		"",
		"| Region | Revenue |",
		"| ------ | ------: |",
		"| north  | 100     |",
		"| south  | 200     |",
	}, "\n")

	table, ok := ExtractTable(textSource{text: md})

	require.True(t, ok)
	assert.Equal(t, []string{"Region", "Revenue"}, table.Headers)
	assert.Equal(t, "100", table.Rows[0]["Revenue"])
}

func TestExtractTable_NoCapability(t *testing.T) {
	_, ok := ExtractTable(struct{}{})
	assert.False(t, ok)
}

func TestParsePipeTables_MultipleTables(t *testing.T) {
	md := "| a |\n| - |\n| 1 |\n\ntext\n\n| b |\n| - |\n| 2 |\n"

	tables := ParsePipeTables(md)

	require.Len(t, tables, 2)
	assert.Equal(t, []string{"a"}, tables[0].Headers)
	assert.Equal(t, []string{"b"}, tables[1].Headers)
}

func TestParseCSVTable_RaggedRows(t *testing.T) {
	table, err := ParseCSVTable(strings.NewReader("a,b,c\n1,2\n"))

	require.NoError(t, err)
	assert.Equal(t, map[string]string{"a": "1", "b": "2", "c": ""}, table.Rows[0])
}
