package repositories

import (
	"context"

	"github.com/docquery-inc/docquery-engine/pkg/models"
)

// MockTableRepository is a configurable mock for testing services without a
// database. Set the function fields to control behavior in tests.
type MockTableRepository struct {
	ColumnNamesFunc   func(ctx context.Context, ref models.TableRef) ([]string, error)
	SampleRowsFunc    func(ctx context.Context, ref models.TableRef, columns []string, n int) ([]models.SampleRow, error)
	UpsertCatalogFunc func(ctx context.Context, entry *models.CatalogEntry) error
	ReplaceRowsFunc   func(ctx context.Context, ref models.TableRef, rows []map[string]any) error
	QueryFunc         func(ctx context.Context, sqlText string, args []any) ([]models.ResultRow, error)

	// Call tracking for verification
	QueryCalls   int
	LastQuerySQL string
	LastArgs     []any
}

// NewMockTableRepository creates a new mock repository.
func NewMockTableRepository() *MockTableRepository {
	return &MockTableRepository{}
}

func (m *MockTableRepository) ColumnNames(ctx context.Context, ref models.TableRef) ([]string, error) {
	if m.ColumnNamesFunc != nil {
		return m.ColumnNamesFunc(ctx, ref)
	}
	return nil, nil
}

func (m *MockTableRepository) SampleRows(ctx context.Context, ref models.TableRef, columns []string, n int) ([]models.SampleRow, error) {
	if m.SampleRowsFunc != nil {
		return m.SampleRowsFunc(ctx, ref, columns, n)
	}
	return nil, nil
}

func (m *MockTableRepository) UpsertCatalog(ctx context.Context, entry *models.CatalogEntry) error {
	if m.UpsertCatalogFunc != nil {
		return m.UpsertCatalogFunc(ctx, entry)
	}
	return nil
}

func (m *MockTableRepository) ReplaceRows(ctx context.Context, ref models.TableRef, rows []map[string]any) error {
	if m.ReplaceRowsFunc != nil {
		return m.ReplaceRowsFunc(ctx, ref, rows)
	}
	return nil
}

func (m *MockTableRepository) Query(ctx context.Context, sqlText string, args []any) ([]models.ResultRow, error) {
	m.QueryCalls++
	m.LastQuerySQL = sqlText
	m.LastArgs = args
	if m.QueryFunc != nil {
		return m.QueryFunc(ctx, sqlText, args)
	}
	return nil, nil
}

var _ TableRepository = (*MockTableRepository)(nil)
