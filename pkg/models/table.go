package models

import (
	"fmt"
	"strings"
)

// TableRef identifies one ingested table: a content-hash file key plus the
// 0-based index of the table within the source document.
type TableRef struct {
	FileKey    string `json:"file_key"`
	TableIndex int    `json:"table_index"`
}

func (t TableRef) String() string {
	return fmt.Sprintf("%s/%d", t.FileKey, t.TableIndex)
}

// ColumnKind is the inferred semantic type of a column. It is recomputed per
// analysis call from fresh samples and never persisted as ground truth.
type ColumnKind string

const (
	KindText     ColumnKind = "text"
	KindNumber   ColumnKind = "number"
	KindTemporal ColumnKind = "temporal"
	KindPeriodQ1 ColumnKind = "period_q1"
	KindPeriodQ2 ColumnKind = "period_q2"
	KindPeriodQ3 ColumnKind = "period_q3"
	KindPeriodQ4 ColumnKind = "period_q4"
)

// PeriodKind returns the fiscal-quarter kind for quarter 1-4.
func PeriodKind(quarter int) ColumnKind {
	return ColumnKind(fmt.Sprintf("period_q%d", quarter))
}

// IsPeriod reports whether the kind is a fiscal-quarter tag.
func (k ColumnKind) IsPeriod() bool {
	return strings.HasPrefix(string(k), "period_q")
}

// IsTemporal reports whether the kind may legally carry temporal filter
// values (a date/year column or a quarter tag).
func (k ColumnKind) IsTemporal() bool {
	return k == KindTemporal || k.IsPeriod()
}

// ColumnSchema describes one column of a resolved table. ID is the stable
// 0-based index into the table's header order.
type ColumnSchema struct {
	ID   int        `json:"id"`
	Name string     `json:"name"`
	Kind ColumnKind `json:"kind"`
}

// TableSchema is the per-request view of a resolved table: its identity plus
// the columns with freshly inferred kinds.
type TableSchema struct {
	Table   TableRef
	Columns []ColumnSchema
}

// ColumnByID returns the column with the given id.
func (s *TableSchema) ColumnByID(id int) (ColumnSchema, bool) {
	if id < 0 || id >= len(s.Columns) {
		return ColumnSchema{}, false
	}
	return s.Columns[id], true
}

// ColumnName resolves a column id to its header name, or "" when unknown.
func (s *TableSchema) ColumnName(id int) string {
	col, ok := s.ColumnByID(id)
	if !ok {
		return ""
	}
	return col.Name
}

// Headers returns the column names in id order.
func (s *TableSchema) Headers() []string {
	headers := make([]string, len(s.Columns))
	for i, col := range s.Columns {
		headers[i] = col.Name
	}
	return headers
}

// NumericIDs returns the ids of all number-kind columns.
func (s *TableSchema) NumericIDs() []int {
	var ids []int
	for _, col := range s.Columns {
		if col.Kind == KindNumber {
			ids = append(ids, col.ID)
		}
	}
	return ids
}

// IsNumeric reports whether the column id resolves to a number-kind column.
func (s *TableSchema) IsNumeric(id int) bool {
	col, ok := s.ColumnByID(id)
	return ok && col.Kind == KindNumber
}

// IsTemporal reports whether the column id resolves to a temporal or
// period-tagged column.
func (s *TableSchema) IsTemporal(id int) bool {
	col, ok := s.ColumnByID(id)
	return ok && col.Kind.IsTemporal()
}

// SampleRow maps column names to truncated string values. Used only as
// planning context, never echoed into results.
type SampleRow map[string]string

// CatalogEntry is one record of the tables catalog.
type CatalogEntry struct {
	FileKey     string
	TableIndex  int
	ColumnNames []string
	RowCount    int
	SourcePath  string
}

// ResultRow is one row of an executed analytics statement, keyed by column
// name or aggregate alias.
type ResultRow map[string]any
