// Package sql provides SQL safety utilities for the dynamic query compiler.
package sql

import "strings"

// QuoteIdentifier renders a column or alias as a double-quoted SQL
// identifier, escaping embedded double quotes. Identifiers still must pass
// schema validation before reaching the compiler; quoting is the second
// layer, not the first.
func QuoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// QuoteJSONKey renders a column name for use inside a JSON-path expression
// (data->>'name'), escaping embedded single quotes.
func QuoteJSONKey(name string) string {
	return strings.ReplaceAll(name, `'`, `''`)
}
