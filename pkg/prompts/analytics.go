// Package prompts builds the LLM prompts used by the query engine.
package prompts

import (
	"fmt"
	"strings"
)

const classifyTemplate = `Classify this question into exactly one of these types:
- text: descriptive queries without numeric focus (e.g. "What is our business strategy?", "Describe our products", "Who are our competitors?")
- analytical: queries about numbers, statistics, calculations, comparisons (e.g. "What was revenue in Q4?", "Show top 5 products", "Calculate growth rate")
- hybrid: queries requesting both analysis AND explanation (e.g. "Why did revenue drop in Q4?", "Explain the sales trends", "What insights can you derive from the Q4 numbers?")

Respond with ONLY the type (analytical/hybrid/text).

Question: %s
Type:`

// BuildClassifyPrompt creates the question classification prompt.
func BuildClassifyPrompt(question string) string {
	return fmt.Sprintf(classifyTemplate, question)
}

// BuildPlanPrompt creates the plan drafting prompt. schemaJSON is the compact
// schema context: column ids, names, kinds, plus a few sample rows.
func BuildPlanPrompt(schemaJSON, question string) string {
	var prompt strings.Builder

	prompt.WriteString("You are a planner over JSON rows.\n")
	prompt.WriteString("Return STRICT JSON using ONLY column IDs.\n\n")

	prompt.WriteString("Available schema (IDs, names, kinds) and tiny samples:\n")
	prompt.WriteString(schemaJSON)
	prompt.WriteString("\n\n")

	prompt.WriteString("Return JSON keys:\n")
	prompt.WriteString(`table: {file_key: string, table_index: int}` + "\n")
	prompt.WriteString(`filters: array of {"col_id": integer, "op": one of [">=", "<=", ">", "<", "=", "!=","in","between","contains"], "value": string or [string,string]}` + "\n")
	prompt.WriteString("group_by: array of integers\n")
	prompt.WriteString(`aggregates: array of {"func": one of ["sum","avg","count","min","max"], "col_id": integer, "as": string}` + "\n")
	prompt.WriteString(`order_by: optional array of {"col_id": integer, "dir": "asc"|"desc"}` + "\n")
	prompt.WriteString("limit: optional int\n\n")

	prompt.WriteString("Rules:\n")
	prompt.WriteString("- Use ONLY provided column IDs. Do NOT invent columns.\n")
	prompt.WriteString("- Aggregations (sum/avg/min/max) MUST use numeric IDs.\n")
	prompt.WriteString("- Temporal filters (year/quarter/time) MUST use temporal IDs.\n")
	prompt.WriteString("- If unsure, OMIT filters rather than guessing.\n")
	prompt.WriteString("- DO NOT put final numbers in the JSON; we will compute.\n\n")

	prompt.WriteString(fmt.Sprintf("Question: %s\n", question))
	prompt.WriteString("STRICT JSON:\n")

	return prompt.String()
}

// BuildTextAnswerPrompt creates the retrieval-grounded answer prompt. The
// optional analyticalInsight carries a computed answer for hybrid questions.
func BuildTextAnswerPrompt(question, context, analyticalInsight string) string {
	var prompt strings.Builder

	prompt.WriteString("Use the context to answer:\n\n")
	if analyticalInsight != "" {
		prompt.WriteString(fmt.Sprintf("Analytical insight:\n%s\n\n", analyticalInsight))
	}
	prompt.WriteString(fmt.Sprintf("Context:\n%s\n\n", context))
	prompt.WriteString(fmt.Sprintf("Question: %s", question))

	return prompt.String()
}
