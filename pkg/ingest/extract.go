package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strings"
)

// Table is one extracted table in uniform shape: header names in order plus
// rows keyed by header.
type Table struct {
	Headers []string
	Rows    []map[string]string
}

// Extractor backends expose tables in whatever shape their parser produces.
// A source implements the richest capability it can; ExtractTable probes them
// from most to least structured.
type (
	// CSVExporter renders the table as CSV text.
	CSVExporter interface {
		ExportCSV() (string, error)
	}

	// GridTable exposes column names and row values directly.
	GridTable interface {
		ColumnNames() []string
		RowValues() [][]string
	}

	// Cell is one positioned cell of a CellTable.
	Cell struct {
		Row, Col int
		Text     string
	}

	// CellTable exposes individual cells with coordinates.
	CellTable interface {
		Cells() []Cell
	}

	// TextExporter renders the table as markdown-ish text with pipe rows.
	TextExporter interface {
		ExportText() (string, error)
	}
)

// ExtractTable converts a parser-specific table object into the uniform
// shape, probing capabilities from most to least structured: CSV export,
// direct column/row access, coordinate cells, then pipe-table text. Returns
// false when no probe yields a non-empty table.
func ExtractTable(src any) (Table, bool) {
	probes := []func(any) (Table, bool){
		probeCSV,
		probeGrid,
		probeCells,
		probeText,
	}
	for _, probe := range probes {
		if t, ok := probe(src); ok {
			return t, true
		}
	}
	return Table{}, false
}

func probeCSV(src any) (Table, bool) {
	exporter, ok := src.(CSVExporter)
	if !ok {
		return Table{}, false
	}
	text, err := exporter.ExportCSV()
	if err != nil || text == "" {
		return Table{}, false
	}
	t, err := ParseCSVTable(strings.NewReader(text))
	if err != nil {
		return Table{}, false
	}
	return t, len(t.Headers) > 0
}

func probeGrid(src any) (Table, bool) {
	grid, ok := src.(GridTable)
	if !ok {
		return Table{}, false
	}
	headers := grid.ColumnNames()
	if len(headers) == 0 {
		return Table{}, false
	}
	// Unnamed columns get positional names so row keys stay unique.
	named := make([]string, len(headers))
	for i, h := range headers {
		if strings.TrimSpace(h) == "" {
			h = fmt.Sprintf("col_%d", i)
		}
		named[i] = h
	}

	var rows []map[string]string
	for _, values := range grid.RowValues() {
		row := make(map[string]string, len(named))
		for i, h := range named {
			if i < len(values) {
				row[h] = values[i]
			} else {
				row[h] = ""
			}
		}
		rows = append(rows, row)
	}
	return Table{Headers: named, Rows: rows}, true
}

func probeCells(src any) (Table, bool) {
	table, ok := src.(CellTable)
	if !ok {
		return Table{}, false
	}
	cells := table.Cells()
	if len(cells) == 0 {
		return Table{}, false
	}

	grid := make(map[[2]int]string)
	maxRow, maxCol := -1, -1
	for _, c := range cells {
		if c.Row < 0 || c.Col < 0 {
			continue
		}
		grid[[2]int{c.Row, c.Col}] = c.Text
		if c.Row > maxRow {
			maxRow = c.Row
		}
		if c.Col > maxCol {
			maxCol = c.Col
		}
	}
	if maxRow < 0 || maxCol < 0 {
		return Table{}, false
	}

	// Row 0 serves as the header when any of its cells has text.
	headerLike := false
	headers := make([]string, maxCol+1)
	for j := 0; j <= maxCol; j++ {
		h := grid[[2]int{0, j}]
		if h != "" {
			headerLike = true
			headers[j] = h
		} else {
			headers[j] = fmt.Sprintf("col_%d", j)
		}
	}
	startRow := 0
	if headerLike {
		startRow = 1
	} else {
		for j := range headers {
			headers[j] = fmt.Sprintf("col_%d", j)
		}
	}

	var rows []map[string]string
	for i := startRow; i <= maxRow; i++ {
		row := make(map[string]string, len(headers))
		for j, h := range headers {
			row[h] = grid[[2]int{i, j}]
		}
		rows = append(rows, row)
	}
	return Table{Headers: headers, Rows: rows}, true
}

func probeText(src any) (Table, bool) {
	exporter, ok := src.(TextExporter)
	if !ok {
		return Table{}, false
	}
	text, err := exporter.ExportText()
	if err != nil || text == "" {
		return Table{}, false
	}
	tables := ParsePipeTables(text)
	if len(tables) == 0 {
		return Table{}, false
	}
	return tables[0], true
}

// ParseCSVTable reads one CSV document into a Table, first record as headers.
func ParseCSVTable(r io.Reader) (Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return Table{}, fmt.Errorf("parse csv: %w", err)
	}
	if len(records) == 0 {
		return Table{}, nil
	}

	headers := make([]string, len(records[0]))
	for i, h := range records[0] {
		headers[i] = strings.TrimSpace(h)
	}

	var rows []map[string]string
	for _, record := range records[1:] {
		row := make(map[string]string, len(headers))
		for i, h := range headers {
			if i < len(record) {
				row[h] = strings.TrimSpace(record[i])
			} else {
				row[h] = ""
			}
		}
		rows = append(rows, row)
	}
	return Table{Headers: headers, Rows: rows}, nil
}

var pipeSeparatorRe = regexp.MustCompile(`^\s*\|?\s*[:\-| ]+\|?\s*$`)

// ParsePipeTables extracts GitHub-style pipe tables from markdown-ish text:
// a header row, a dash separator row, then body rows.
func ParsePipeTables(text string) []Table {
	lines := strings.Split(text, "\n")
	var tables []Table

	i := 0
	for i < len(lines)-1 {
		header := strings.TrimSpace(lines[i])
		sep := strings.TrimSpace(lines[i+1])
		if !strings.HasPrefix(header, "|") || !strings.HasSuffix(header, "|") || !pipeSeparatorRe.MatchString(sep) {
			i++
			continue
		}

		headers := splitPipeRow(header)
		i += 2
		var rows []map[string]string
		for i < len(lines) && strings.HasPrefix(strings.TrimSpace(lines[i]), "|") {
			cols := splitPipeRow(lines[i])
			row := make(map[string]string, len(headers))
			for idx, h := range headers {
				if idx < len(cols) {
					row[h] = cols[idx]
				} else {
					row[h] = ""
				}
			}
			rows = append(rows, row)
			i++
		}
		if len(headers) > 0 && len(rows) > 0 {
			tables = append(tables, Table{Headers: headers, Rows: rows})
		}
	}
	return tables
}

func splitPipeRow(row string) []string {
	trimmed := strings.Trim(strings.TrimSpace(row), "|")
	parts := strings.Split(trimmed, "|")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
