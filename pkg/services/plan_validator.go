package services

import (
	"fmt"
	"strings"

	"github.com/docquery-inc/docquery-engine/pkg/models"
)

// Validation reason codes. Empty string means the plan is usable.
const (
	ReasonBadAggFunc      = "bad_agg_func"
	ReasonMissingAggColID = "missing_agg_col_id"
	ReasonBadFilterOp     = "bad_filter_op"
)

var scalarAskWords = []string{
	"max", "maximum", "min", "minimum", "sum", "total",
	"avg", "average", "mean", "count", "top 1", "largest", "smallest",
}

var perGroupWords = []string{" per ", " by ", " each "}

// wantsScalar reports whether the question asks for a single value rather
// than a breakdown.
func wantsScalar(question string) bool {
	ql := strings.ToLower(question)
	hasScalarWord := false
	for _, w := range scalarAskWords {
		if strings.Contains(ql, w) {
			hasScalarWord = true
			break
		}
	}
	if !hasScalarWord {
		return false
	}
	for _, w := range perGroupWords {
		if strings.Contains(ql, w) {
			return false
		}
	}
	return true
}

// looksTemporalValue reports whether a filter value carries a year or a
// quarter tag, in which case it may only target temporal columns.
func looksTemporalValue(v models.FilterValue) bool {
	for _, s := range v.Values {
		if yearRe.MatchString(s) {
			return true
		}
		if quarterRe.MatchString(strings.ReplaceAll(s, "quarter", "q")) {
			return true
		}
	}
	return false
}

// ValidateAndNormalizePlan checks a drafted plan against the resolved schema
// and normalizes it in place. Returns "" when the plan is usable, or a
// reason code when it must be discarded.
//
// Hard rejections: unknown aggregate function, aggregate without a column id,
// aggregate over a non-numeric column, unknown filter operator. Lenient
// drops: group-by ids and filter column ids outside the schema, and filters
// whose value looks temporal but whose column is not. A scalar-sounding
// question collapses any grouping to a single ordered row.
func ValidateAndNormalizePlan(plan *models.Plan, schema *models.TableSchema, question string) string {
	for i := range plan.Aggregates {
		a := &plan.Aggregates[i]
		if !models.AllowedAggregateFuncs[a.Func] {
			return ReasonBadAggFunc
		}
		if a.Func == models.AggCount {
			a.Column = ""
		} else {
			if a.ColumnID == nil {
				return ReasonMissingAggColID
			}
			if !schema.IsNumeric(*a.ColumnID) {
				return fmt.Sprintf("agg_on_non_numeric:%s", schema.ColumnName(*a.ColumnID))
			}
			a.Column = schema.ColumnName(*a.ColumnID)
		}
		if a.Alias == "" {
			if a.Column == "" {
				a.Alias = a.Func + "_rows"
			} else {
				a.Alias = a.Func + "_" + a.Column
			}
		}
	}

	plan.GroupColumns = nil
	for _, id := range plan.GroupBy {
		if name := schema.ColumnName(id); name != "" {
			plan.GroupColumns = append(plan.GroupColumns, name)
		}
	}

	kept := plan.Filters[:0]
	for _, f := range plan.Filters {
		if !models.AllowedFilterOps[f.Op] {
			return ReasonBadFilterOp
		}
		if f.ColumnID == nil {
			continue
		}
		name := schema.ColumnName(*f.ColumnID)
		if name == "" {
			continue
		}
		if looksTemporalValue(f.Value) && !schema.IsTemporal(*f.ColumnID) {
			continue
		}
		f.Column = name
		kept = append(kept, f)
	}
	plan.Filters = kept

	if len(plan.Aggregates) > 0 && wantsScalar(question) {
		plan.GroupBy = nil
		plan.GroupColumns = nil
		plan.OrderBy = []models.OrderTerm{{Column: plan.Aggregates[0].Alias, Dir: "desc"}}
		plan.Limit = 1
	}

	return ""
}
