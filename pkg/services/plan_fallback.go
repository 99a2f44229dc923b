package services

import (
	"strings"

	"github.com/docquery-inc/docquery-engine/pkg/models"
)

var intentKeywords = []struct {
	intent string
	words  []string
}{
	{models.AggSum, []string{"sum", "total", "add up"}},
	{models.AggAvg, []string{"average", "avg", "mean"}},
	{models.AggMax, []string{"maximum", "max", "highest", "top 1"}},
	{models.AggMin, []string{"minimum", "min", "lowest", "bottom 1"}},
	{models.AggCount, []string{"count", "how many", "number of"}},
}

// detectIntent maps a question to an aggregate function, or "" when no
// intent keyword matches. First matching group wins.
func detectIntent(question string) string {
	ql := strings.ToLower(question)
	for _, group := range intentKeywords {
		for _, w := range group.words {
			if strings.Contains(ql, w) {
				return group.intent
			}
		}
	}
	return ""
}

// periodTag extracts a fiscal quarter tag ("q1".."q4") from the question,
// treating "quarter 3" like "q3".
func periodTag(question string) string {
	m := quarterRe.FindStringSubmatch(strings.ReplaceAll(question, "quarter", "q"))
	if m == nil {
		return ""
	}
	return "q" + m[1]
}

// chooseBestNumeric picks the numeric column whose name overlaps the
// question's tokens the most, with a tie-break bonus when the column name
// mentions the question's quarter tag. Reports false when the schema has no
// numeric column.
func chooseBestNumeric(schema *models.TableSchema, question, period string) (models.ColumnSchema, bool) {
	qtok := tokenSet(question)

	var best models.ColumnSchema
	found := false
	bestOverlap, bestBonus := -1, -1
	for _, id := range schema.NumericIDs() {
		col, ok := schema.ColumnByID(id)
		if !ok {
			continue
		}
		overlap := 0
		for _, tok := range normalizeTokens(col.Name) {
			if qtok[tok] {
				overlap++
			}
		}
		bonus := 0
		if period != "" && strings.Contains(strings.ToLower(col.Name), period) {
			bonus = 1
		}
		if overlap > bestOverlap || (overlap == bestOverlap && bonus > bestBonus) {
			bestOverlap, bestBonus = overlap, bonus
			best, found = col, true
		}
	}
	return best, found
}

// SynthesizeFallbackPlan builds a minimal single-aggregate plan from intent
// keywords when the draft is missing or unusable. OrderBy and Limit survive
// from the draft when one parsed; everything else is rebuilt. The result is
// normalized and always compiles.
func SynthesizeFallbackPlan(question string, schema *models.TableSchema, draft *models.Plan) *models.Plan {
	plan := &models.Plan{Table: schema.Table}
	if draft != nil {
		plan.OrderBy = draft.OrderBy
		plan.Limit = draft.Limit
	}

	intent := detectIntent(question)
	best, found := chooseBestNumeric(schema, question, periodTag(question))

	if intent == "" || intent == models.AggCount || !found {
		zero := 0
		plan.Aggregates = []models.Aggregate{{
			Func:     models.AggCount,
			ColumnID: &zero,
			Alias:    "count_rows",
		}}
	} else {
		id := best.ID
		plan.Aggregates = []models.Aggregate{{
			Func:     intent,
			ColumnID: &id,
			Alias:    intent + "_" + best.Name,
		}}
	}

	// A synthesized plan only references schema columns; normalization
	// cannot fail here.
	ValidateAndNormalizePlan(plan, schema, question)
	return plan
}
