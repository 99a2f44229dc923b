package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/docquery-inc/docquery-engine/pkg/models"
)

func intPtr(i int) *int { return &i }

func testSchema() *models.TableSchema {
	return &models.TableSchema{
		Table: models.TableRef{FileKey: "abc", TableIndex: 0},
		Columns: []models.ColumnSchema{
			{ID: 0, Name: "region", Kind: models.KindText},
			{ID: 1, Name: "revenue", Kind: models.KindNumber},
			{ID: 2, Name: "year", Kind: models.KindTemporal},
			{ID: 3, Name: "sales_q1", Kind: models.KindPeriodQ1},
		},
	}
}

func scalarValue(s string) models.FilterValue {
	return models.FilterValue{Values: []string{s}}
}

func listValue(vals ...string) models.FilterValue {
	return models.FilterValue{Values: vals, List: true}
}

func TestValidateAndNormalizePlan_RejectionReasons(t *testing.T) {
	tests := []struct {
		name string
		plan models.Plan
		want string
	}{
		{
			name: "unknown aggregate function",
			plan: models.Plan{Aggregates: []models.Aggregate{{Func: "median", ColumnID: intPtr(1)}}},
			want: "bad_agg_func",
		},
		{
			name: "aggregate without column id",
			plan: models.Plan{Aggregates: []models.Aggregate{{Func: "sum"}}},
			want: "missing_agg_col_id",
		},
		{
			name: "aggregate over text column",
			plan: models.Plan{Aggregates: []models.Aggregate{{Func: "sum", ColumnID: intPtr(0)}}},
			want: "agg_on_non_numeric:region",
		},
		{
			name: "aggregate over out-of-range id",
			plan: models.Plan{Aggregates: []models.Aggregate{{Func: "avg", ColumnID: intPtr(9)}}},
			want: "agg_on_non_numeric:",
		},
		{
			name: "unknown filter operator",
			plan: models.Plan{Filters: []models.Filter{{ColumnID: intPtr(0), Op: "like", Value: scalarValue("x")}}},
			want: "bad_filter_op",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ValidateAndNormalizePlan(&tt.plan, testSchema(), "irrelevant question")
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidateAndNormalizePlan_ResolvesColumnsAndAliases(t *testing.T) {
	plan := models.Plan{
		Aggregates: []models.Aggregate{
			{Func: "sum", ColumnID: intPtr(1)},
			{Func: "count"},
		},
		GroupBy: []int{0, 42}, // 42 silently dropped
	}

	got := ValidateAndNormalizePlan(&plan, testSchema(), "revenue per region")
	assert.Empty(t, got)

	assert.Equal(t, "revenue", plan.Aggregates[0].Column)
	assert.Equal(t, "sum_revenue", plan.Aggregates[0].Alias)
	assert.Empty(t, plan.Aggregates[1].Column)
	assert.Equal(t, "count_rows", plan.Aggregates[1].Alias)
	assert.Equal(t, []string{"region"}, plan.GroupColumns)
}

func TestValidateAndNormalizePlan_KeepsExplicitAlias(t *testing.T) {
	plan := models.Plan{
		Aggregates: []models.Aggregate{{Func: "max", ColumnID: intPtr(1), Alias: "peak"}},
	}

	ValidateAndNormalizePlan(&plan, testSchema(), "revenue per region")
	assert.Equal(t, "peak", plan.Aggregates[0].Alias)
}

func TestValidateAndNormalizePlan_FilterNormalization(t *testing.T) {
	plan := models.Plan{
		Filters: []models.Filter{
			{ColumnID: intPtr(0), Op: "contains", Value: scalarValue("north")},
			{Op: "=", Value: scalarValue("x")},              // no column id: dropped
			{ColumnID: intPtr(42), Op: "=", Value: scalarValue("x")}, // unknown id: dropped
		},
	}

	got := ValidateAndNormalizePlan(&plan, testSchema(), "rows for north")
	assert.Empty(t, got)
	assert.Len(t, plan.Filters, 1)
	assert.Equal(t, "region", plan.Filters[0].Column)
}

func TestValidateAndNormalizePlan_TemporalGuardrail(t *testing.T) {
	tests := []struct {
		name     string
		filter   models.Filter
		survives bool
	}{
		{
			name:     "year value on text column dropped",
			filter:   models.Filter{ColumnID: intPtr(0), Op: "=", Value: scalarValue("2023")},
			survives: false,
		},
		{
			name:     "quarter value on text column dropped",
			filter:   models.Filter{ColumnID: intPtr(0), Op: "=", Value: scalarValue("Q3")},
			survives: false,
		},
		{
			name:     "spelled-out quarter on text column dropped",
			filter:   models.Filter{ColumnID: intPtr(0), Op: "=", Value: scalarValue("quarter2")},
			survives: false,
		},
		{
			name:     "year value on temporal column kept",
			filter:   models.Filter{ColumnID: intPtr(2), Op: "=", Value: scalarValue("2023")},
			survives: true,
		},
		{
			name:     "quarter value on period column kept",
			filter:   models.Filter{ColumnID: intPtr(3), Op: "=", Value: scalarValue("q1")},
			survives: true,
		},
		{
			name:     "temporal-looking item in list on text column dropped",
			filter:   models.Filter{ColumnID: intPtr(0), Op: "in", Value: listValue("north", "2024")},
			survives: false,
		},
		{
			name:     "plain value on text column kept",
			filter:   models.Filter{ColumnID: intPtr(0), Op: "=", Value: scalarValue("north")},
			survives: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := models.Plan{Filters: []models.Filter{tt.filter}}
			got := ValidateAndNormalizePlan(&plan, testSchema(), "rows matching")
			assert.Empty(t, got)
			if tt.survives {
				assert.Len(t, plan.Filters, 1)
			} else {
				assert.Empty(t, plan.Filters)
			}
		})
	}
}

func TestValidateAndNormalizePlan_ScalarOverride(t *testing.T) {
	plan := models.Plan{
		Aggregates: []models.Aggregate{{Func: "sum", ColumnID: intPtr(1), Alias: "sum_revenue"}},
		GroupBy:    []int{0},
		OrderBy:    []models.OrderTerm{{Column: "region", Dir: "asc"}},
		Limit:      50,
	}

	got := ValidateAndNormalizePlan(&plan, testSchema(), "what is the total revenue")
	assert.Empty(t, got)

	assert.Empty(t, plan.GroupColumns, "scalar ask collapses grouping")
	assert.Equal(t, []models.OrderTerm{{Column: "sum_revenue", Dir: "desc"}}, plan.OrderBy)
	assert.Equal(t, 1, plan.Limit)
}

func TestValidateAndNormalizePlan_PerKeepsGrouping(t *testing.T) {
	plan := models.Plan{
		Aggregates: []models.Aggregate{{Func: "sum", ColumnID: intPtr(1)}},
		GroupBy:    []int{0},
	}

	got := ValidateAndNormalizePlan(&plan, testSchema(), "total revenue per region")
	assert.Empty(t, got)
	assert.Equal(t, []string{"region"}, plan.GroupColumns)
	assert.Zero(t, plan.Limit)
}

func TestValidateAndNormalizePlan_TopKKeepsDraftLimit(t *testing.T) {
	plan := models.Plan{
		Aggregates: []models.Aggregate{{Func: "sum", ColumnID: intPtr(1), Alias: "sum_revenue"}},
		GroupBy:    []int{0},
		OrderBy:    []models.OrderTerm{{Column: "sum_revenue", Dir: "desc"}},
		Limit:      5,
	}

	got := ValidateAndNormalizePlan(&plan, testSchema(), "top 5 revenue products")
	assert.Empty(t, got)

	// "top 5" is a breakdown, not a scalar ask: grouping and the drafted
	// limit survive, unlike "top 1".
	assert.Equal(t, []string{"region"}, plan.GroupColumns)
	assert.Equal(t, 5, plan.Limit)
	assert.Equal(t, []models.OrderTerm{{Column: "sum_revenue", Dir: "desc"}}, plan.OrderBy)
}

func TestWantsScalar(t *testing.T) {
	tests := []struct {
		question string
		want     bool
	}{
		{"what is the maximum revenue", true},
		{"total sales in 2023", true},
		{"average revenue per region", false},
		{"sum of revenue by quarter", false},
		{"revenue for each region", false},
		{"show me the rows", false},
		{"top 1 product", true},
		{"top 5 revenue products", false},
	}

	for _, tt := range tests {
		t.Run(tt.question, func(t *testing.T) {
			assert.Equal(t, tt.want, wantsScalar(tt.question))
		})
	}
}
