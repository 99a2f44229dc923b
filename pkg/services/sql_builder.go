package services

import (
	"fmt"
	"strings"

	"github.com/docquery-inc/docquery-engine/pkg/models"
	sqlutil "github.com/docquery-inc/docquery-engine/pkg/sql"
)

// numericExpr casts a JSONB text field to numeric, stripping thousands
// separators and currency symbols first.
func numericExpr(column string) string {
	return fmt.Sprintf("(REGEXP_REPLACE(REGEXP_REPLACE(data->>'%s', '[,]', ''), '[^0-9.-]', '', 'g'))::numeric", sqlutil.QuoteJSONKey(column))
}

// textExpr reads a JSONB field as text.
func textExpr(column string) string {
	return fmt.Sprintf("(data->>'%s')", sqlutil.QuoteJSONKey(column))
}

// CompilePlan deterministically compiles a validated plan into one
// parameterized SELECT over table_rows. Column names come only from the
// schema-resolved plan fields; every value binds as a positional parameter.
// The table identity pins are always the first two predicates, so a plan can
// never read outside its resolved table.
func CompilePlan(plan *models.Plan, schema *models.TableSchema) (string, []any) {
	var (
		sel     []string
		gbExprs []string
	)

	for _, g := range plan.GroupColumns {
		expr := textExpr(g)
		sel = append(sel, fmt.Sprintf("%s AS %s", expr, sqlutil.QuoteIdentifier(g)))
		gbExprs = append(gbExprs, expr)
	}

	for _, a := range plan.Aggregates {
		if a.Func == models.AggCount {
			sel = append(sel, fmt.Sprintf("COUNT(*) AS %s", sqlutil.QuoteIdentifier(a.Alias)))
		} else {
			sel = append(sel, fmt.Sprintf("%s(%s) AS %s",
				strings.ToUpper(a.Func), numericExpr(a.Column), sqlutil.QuoteIdentifier(a.Alias)))
		}
	}

	if len(sel) == 0 {
		sel = []string{"COUNT(*) AS count_rows"}
	}

	args := []any{plan.Table.FileKey, plan.Table.TableIndex}
	whereParts := []string{"file_key = $1", "table_index = $2"}

	bind := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	for _, f := range plan.Filters {
		switch f.Op {
		case ">=", "<=", ">", "<", "=", "!=":
			op := f.Op
			if op == "!=" {
				op = "<>"
			}
			whereParts = append(whereParts, fmt.Sprintf("%s %s %s", numericExpr(f.Column), op, bind(f.Value.First())))
		case "contains":
			whereParts = append(whereParts, fmt.Sprintf("%s ILIKE %s", textExpr(f.Column), bind("%"+f.Value.First()+"%")))
		case "in":
			if !f.Value.List || len(f.Value.Values) == 0 {
				continue
			}
			placeholders := make([]string, len(f.Value.Values))
			for i, v := range f.Value.Values {
				placeholders[i] = bind(v)
			}
			whereParts = append(whereParts, fmt.Sprintf("%s IN (%s)", textExpr(f.Column), strings.Join(placeholders, ",")))
		case "between":
			if !f.Value.List || len(f.Value.Values) != 2 {
				continue
			}
			lo := bind(f.Value.Values[0])
			hi := bind(f.Value.Values[1])
			whereParts = append(whereParts, fmt.Sprintf("%s BETWEEN %s AND %s", numericExpr(f.Column), lo, hi))
		}
	}

	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(strings.Join(sel, ", "))
	b.WriteString(" FROM table_rows WHERE ")
	b.WriteString(strings.Join(whereParts, " AND "))

	if len(gbExprs) > 0 {
		b.WriteString(" GROUP BY ")
		b.WriteString(strings.Join(gbExprs, ", "))
	}

	if column, dir, ok := resolveOrderBy(plan, schema); ok {
		b.WriteString(fmt.Sprintf(" ORDER BY %s %s", sqlutil.QuoteIdentifier(column), dir))
	}

	if plan.Limit > 0 {
		b.WriteString(fmt.Sprintf(" LIMIT %d", plan.Limit))
	}

	return b.String(), args
}

// resolveOrderBy maps the first ORDER BY term to a concrete identifier. A
// column id prefers the alias of the aggregate over that column, then falls
// back to the header name. Direction is constrained to ASC/DESC, defaulting
// to DESC.
func resolveOrderBy(plan *models.Plan, schema *models.TableSchema) (column, dir string, ok bool) {
	for _, term := range plan.OrderBy {
		name := term.Column
		if name == "" && term.ColumnID != nil {
			for _, a := range plan.Aggregates {
				if a.ColumnID != nil && *a.ColumnID == *term.ColumnID {
					name = a.Alias
					break
				}
			}
			if name == "" {
				name = schema.ColumnName(*term.ColumnID)
			}
		}
		if name == "" {
			continue
		}
		dir = "DESC"
		if strings.EqualFold(term.Dir, "asc") {
			dir = "ASC"
		}
		return name, dir, true
	}
	return "", "", false
}
