package services

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jinzhu/inflection"

	"github.com/docquery-inc/docquery-engine/pkg/models"
)

var prettyFuncNames = map[string]string{
	models.AggMax:   "Maximum",
	models.AggMin:   "Minimum",
	models.AggSum:   "Sum",
	models.AggAvg:   "Average",
	models.AggCount: "Count",
}

// Summarize renders executed rows as a short human answer: a scalar sentence
// for ungrouped aggregates, a top-5 list for grouped ones, a row count when
// only COUNT(*) ran, and a no-match message otherwise. Raw rows are never
// echoed.
func Summarize(plan *models.Plan, rows []models.ResultRow) string {
	if msg, ok := summarizeScalar(plan, rows); ok {
		return msg
	}
	if msg, ok := summarizeGrouped(plan, rows); ok {
		return msg
	}
	if len(rows) > 0 {
		if count, ok := rows[0]["count_rows"]; ok {
			return formatRowCount(count)
		}
	}
	return "No rows matched the conditions."
}

func summarizeScalar(plan *models.Plan, rows []models.ResultRow) (string, bool) {
	if len(rows) == 0 || len(plan.Aggregates) == 0 || len(plan.GroupColumns) > 0 {
		return "", false
	}
	a := plan.Aggregates[0]
	val, ok := rows[0][a.Alias]
	if !ok || val == nil {
		return "", false
	}

	pretty, ok := prettyFuncNames[a.Func]
	if !ok && a.Func != "" {
		pretty = strings.ToUpper(a.Func[:1]) + a.Func[1:]
	}
	return fmt.Sprintf("%s of %s: %s", pretty, spacedName(a.Column), formatNumber(val)), true
}

func summarizeGrouped(plan *models.Plan, rows []models.ResultRow) (string, bool) {
	if len(rows) == 0 || len(plan.GroupColumns) == 0 {
		return "", false
	}

	var agg *models.Aggregate
	if len(plan.Aggregates) > 0 {
		agg = &plan.Aggregates[0]
	}

	limit := len(rows)
	if limit > 5 {
		limit = 5
	}
	var lines []string
	for _, row := range rows[:limit] {
		var segs []string
		for _, g := range plan.GroupColumns {
			segs = append(segs, fmt.Sprintf("%s: %v", spacedName(g), row[g]))
		}
		if agg != nil {
			segs = append(segs, fmt.Sprintf("%s %s: %s",
				strings.ToUpper(agg.Func), spacedName(agg.Column), formatNumber(row[agg.Alias])))
		}
		lines = append(lines, "- "+strings.Join(segs, " | "))
	}
	return "Top results:\n" + strings.Join(lines, "\n"), true
}

func formatRowCount(count any) string {
	noun := "rows"
	if f, ok := toFloat64(count); ok && f == 1 {
		noun = inflection.Singular(noun)
	}
	return fmt.Sprintf("Found %v %s.", count, noun)
}

// spacedName renders a snake_case column name for prose, with "rows"
// standing in for the count-star pseudo column.
func spacedName(column string) string {
	if column == "" {
		column = "rows"
	}
	return strings.TrimSpace(strings.ReplaceAll(column, "_", " "))
}

// formatNumber renders a numeric value with thousands separators: integral
// values without decimals, others with two. Non-numeric values pass through.
func formatNumber(v any) string {
	f, ok := toFloat64(v)
	if !ok {
		return fmt.Sprintf("%v", v)
	}
	if f == float64(int64(f)) {
		return groupThousands(strconv.FormatInt(int64(f), 10))
	}
	return groupThousands(strconv.FormatFloat(f, 'f', 2, 64))
}

func toFloat64(v any) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case float32:
		return float64(val), true
	case int:
		return float64(val), true
	case int32:
		return float64(val), true
	case int64:
		return float64(val), true
	case string:
		f, err := strconv.ParseFloat(val, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// groupThousands inserts commas into the integer part of a formatted number.
func groupThousands(s string) string {
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign = "-"
		s = s[1:]
	}
	intPart, fracPart := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, fracPart = s[:i], s[i:]
	}

	n := len(intPart)
	if n <= 3 {
		return sign + intPart + fracPart
	}
	var b strings.Builder
	for i, ch := range intPart {
		if i > 0 && (n-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(ch)
	}
	return sign + b.String() + fracPart
}
