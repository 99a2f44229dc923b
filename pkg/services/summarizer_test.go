package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/docquery-inc/docquery-engine/pkg/models"
)

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"small integer", float64(42), "42"},
		{"integral with separators", float64(1234567), "1,234,567"},
		{"fractional gets two decimals", 1234.5, "1,234.50"},
		{"negative", float64(-1234), "-1,234"},
		{"int64 count", int64(1200), "1,200"},
		{"numeric string", "9876.25", "9,876.25"},
		{"non numeric passes through", "n/a", "n/a"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatNumber(tt.in))
		})
	}
}

func TestSummarize_Scalar(t *testing.T) {
	plan := &models.Plan{
		Aggregates: []models.Aggregate{
			{Func: "sum", Column: "revenue_q1", Alias: "sum_revenue_q1"},
		},
	}
	rows := []models.ResultRow{{"sum_revenue_q1": float64(1234)}}

	assert.Equal(t, "Sum of revenue q1: 1,234", Summarize(plan, rows))
}

func TestSummarize_ScalarCount(t *testing.T) {
	plan := &models.Plan{
		Aggregates: []models.Aggregate{{Func: "count", Alias: "count_rows"}},
	}
	rows := []models.ResultRow{{"count_rows": int64(17)}}

	assert.Equal(t, "Count of rows: 17", Summarize(plan, rows))
}

func TestSummarize_Grouped(t *testing.T) {
	plan := &models.Plan{
		GroupColumns: []string{"region"},
		Aggregates: []models.Aggregate{
			{Func: "sum", Column: "revenue", Alias: "sum_revenue"},
		},
	}
	rows := []models.ResultRow{
		{"region": "north", "sum_revenue": float64(5000)},
		{"region": "south", "sum_revenue": float64(3000)},
	}

	got := Summarize(plan, rows)

	assert.Equal(t, "Top results:\n- region: north | SUM revenue: 5,000\n- region: south | SUM revenue: 3,000", got)
}

func TestSummarize_GroupedCapsAtFive(t *testing.T) {
	plan := &models.Plan{GroupColumns: []string{"region"}}
	rows := make([]models.ResultRow, 8)
	for i := range rows {
		rows[i] = models.ResultRow{"region": "r"}
	}

	got := Summarize(plan, rows)

	assert.Equal(t, 5, len(strings.Split(got, "\n"))-1, "header plus five result lines")
}

func TestSummarize_RowCount(t *testing.T) {
	plan := &models.Plan{}

	assert.Equal(t, "Found 42 rows.", Summarize(plan, []models.ResultRow{{"count_rows": int64(42)}}))
	assert.Equal(t, "Found 1 row.", Summarize(plan, []models.ResultRow{{"count_rows": int64(1)}}))
}

func TestSummarize_NoRows(t *testing.T) {
	plan := &models.Plan{
		Aggregates: []models.Aggregate{{Func: "sum", Column: "revenue", Alias: "sum_revenue"}},
	}

	assert.Equal(t, "No rows matched the conditions.", Summarize(plan, nil))
}

func TestSummarize_NullAggregateFallsThrough(t *testing.T) {
	// SUM over zero matching rows yields NULL; no scalar sentence applies.
	plan := &models.Plan{
		Aggregates: []models.Aggregate{{Func: "sum", Column: "revenue", Alias: "sum_revenue"}},
	}
	rows := []models.ResultRow{{"sum_revenue": nil}}

	assert.Equal(t, "No rows matched the conditions.", Summarize(plan, rows))
}
