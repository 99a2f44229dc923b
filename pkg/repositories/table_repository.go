// Package repositories provides data access for the document row store.
package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/docquery-inc/docquery-engine/pkg/apperrors"
	"github.com/docquery-inc/docquery-engine/pkg/database"
	"github.com/docquery-inc/docquery-engine/pkg/models"
)

// TableRepository provides access to the tables catalog and the generic
// key/value row store.
type TableRepository interface {
	// ColumnNames returns the catalogued header names of a table, in order.
	ColumnNames(ctx context.Context, ref models.TableRef) ([]string, error)

	// SampleRows returns up to n leading rows projected onto the given
	// columns, values stringified for planning context.
	SampleRows(ctx context.Context, ref models.TableRef, columns []string, n int) ([]models.SampleRow, error)

	// UpsertCatalog creates or updates a table's catalog record.
	UpsertCatalog(ctx context.Context, entry *models.CatalogEntry) error

	// ReplaceRows upserts a table's rows by (file_key, table_index, row_index).
	ReplaceRows(ctx context.Context, ref models.TableRef, rows []map[string]any) error

	// Query executes one compiled analytics statement and returns its rows.
	Query(ctx context.Context, sqlText string, args []any) ([]models.ResultRow, error)
}

type tableRepository struct {
	db *database.DB
}

// NewTableRepository creates a new TableRepository over the given pool.
func NewTableRepository(db *database.DB) TableRepository {
	return &tableRepository{db: db}
}

var _ TableRepository = (*tableRepository)(nil)

func (r *tableRepository) ColumnNames(ctx context.Context, ref models.TableRef) ([]string, error) {
	const query = `
		SELECT column_names
		FROM tables_catalog
		WHERE file_key = $1 AND table_index = $2`

	var names []string
	err := r.db.QueryRow(ctx, query, ref.FileKey, ref.TableIndex).Scan(&names)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("table %s: %w", ref, apperrors.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("fetch column names: %w", err)
	}
	return names, nil
}

func (r *tableRepository) SampleRows(ctx context.Context, ref models.TableRef, columns []string, n int) ([]models.SampleRow, error) {
	const query = `
		SELECT data
		FROM table_rows
		WHERE file_key = $1 AND table_index = $2
		ORDER BY row_index
		LIMIT $3`

	rows, err := r.db.Query(ctx, query, ref.FileKey, ref.TableIndex, n)
	if err != nil {
		return nil, fmt.Errorf("fetch sample rows: %w", err)
	}
	defer rows.Close()

	var samples []models.SampleRow
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan sample row: %w", err)
		}

		var data map[string]any
		if err := json.Unmarshal(raw, &data); err != nil {
			continue // skip rows with malformed documents
		}

		sample := make(models.SampleRow, len(columns))
		for _, col := range columns {
			sample[col] = stringifyCell(data[col])
		}
		samples = append(samples, sample)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sample rows: %w", err)
	}
	return samples, nil
}

func (r *tableRepository) UpsertCatalog(ctx context.Context, entry *models.CatalogEntry) error {
	const query = `
		INSERT INTO tables_catalog (file_key, table_index, column_names, n_rows, source_path)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (file_key, table_index) DO UPDATE SET
			column_names = EXCLUDED.column_names,
			n_rows       = EXCLUDED.n_rows,
			source_path  = EXCLUDED.source_path`

	_, err := r.db.Exec(ctx, query,
		entry.FileKey, entry.TableIndex, entry.ColumnNames, entry.RowCount, entry.SourcePath)
	if err != nil {
		return fmt.Errorf("upsert catalog entry: %w", err)
	}
	return nil
}

func (r *tableRepository) ReplaceRows(ctx context.Context, ref models.TableRef, rows []map[string]any) error {
	const query = `
		INSERT INTO table_rows (file_key, table_index, row_index, data)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (file_key, table_index, row_index) DO UPDATE SET
			data = EXCLUDED.data`

	for i, row := range rows {
		data, err := json.Marshal(row)
		if err != nil {
			return fmt.Errorf("marshal row %d: %w", i, err)
		}
		if _, err := r.db.Exec(ctx, query, ref.FileKey, ref.TableIndex, i, data); err != nil {
			return fmt.Errorf("insert row %d: %w", i, err)
		}
	}
	return nil
}

func (r *tableRepository) Query(ctx context.Context, sqlText string, args []any) ([]models.ResultRow, error) {
	rows, err := r.db.Query(ctx, sqlText, args...)
	if err != nil {
		return nil, fmt.Errorf("execute analytics statement: %w", err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	var results []models.ResultRow
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("read result row: %w", err)
		}
		row := make(models.ResultRow, len(fields))
		for i, field := range fields {
			row[string(field.Name)] = normalizeValue(values[i])
		}
		results = append(results, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate result rows: %w", err)
	}
	return results, nil
}

// normalizeValue converts driver-specific values (pgtype.Numeric from
// ::numeric casts) into plain Go values for the summarizer.
func normalizeValue(v any) any {
	switch val := v.(type) {
	case pgtype.Numeric:
		f, err := val.Float64Value()
		if err != nil || !f.Valid {
			return nil
		}
		return f.Float64
	default:
		return v
	}
}

// stringifyCell renders a JSON document value as the string the planner
// shows the drafting model.
func stringifyCell(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return fmt.Sprintf("%v", val)
	}
}
